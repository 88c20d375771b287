// Package controls holds the device code tables for the humidifier's
// control attributes and the conversions between codes, names and
// percentages.
//
// Each attribute (power, mode, humidity level, fan speed) is a string type
// whose values are the literal codes the device sends and accepts. One table
// per attribute is the only place codes and names are paired; Name and the
// ParseX functions are both derived from it.
//
//	controls.ModeEco.Name()           // "eco"
//	controls.ParseFanSpeed("turbo")   // controls.FanTurbo ("5")
//
// # Percentages
//
// The fan scale excludes "auto":
//
//	silent  1-25
//	low     26-50
//	normal  51-75
//	turbo   76-100
//
// Target humidity uses fixed thresholds when writing (0 off, <=45 low,
// <=55 normal, else high) and fixed values when reading (0, 40, 50, 60).
// The asymmetry matches how the device's levels behave and is kept as is.
package controls
