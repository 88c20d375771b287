// Package protocol implements the text protocol spoken by Daikin humidifying
// air purifiers on their local HTTP endpoints.
//
// # Wire Format
//
// Every response body is a flat list of comma separated fields:
//
//	ret=OK,pow=1,mode=1,humd=2,airvol=3
//
// Each field is split on its first '=' only, so values may themselves contain
// '='. Keys and values are trimmed of surrounding whitespace. Fragments
// without an '=' are dropped.
//
// The parser never fails. Firmware in the field has been seen to emit
// truncated or quirky bodies, and a strict parser would make the client
// brittle against a peer this project does not control.
//
// # Requests
//
// Control requests are plain GETs with query parameters. Callers describe a
// change with conceptual parameter names and Serialize maps them onto the
// device's short codes:
//
//	power     -> pow
//	mode      -> mode
//	humidity  -> humd
//	fan_speed -> airvol
//
// # Usage Example
//
//	resp := protocol.Parse("ret=OK,pow=1,mode=1,humd=2,airvol=3")
//	if resp.Value(protocol.KeyPower) == "1" {
//	    fmt.Println("device is on")
//	}
//
//	query := protocol.Serialize(map[protocol.Param]string{
//	    protocol.ParamPower:    "1",
//	    protocol.ParamFanSpeed: "5",
//	})
//	// query.Encode() == "airvol=5&pow=1"
//
// # Thread Safety
//
// Response values are immutable after Parse returns and are safe to share
// between goroutines.
package protocol
