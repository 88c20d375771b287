// Package deviceclient provides an HTTP client for the humidifier's local API.
//
// The device serves a small set of GET endpoints on plain HTTP. Each reply
// is a flat "key=value,key=value" body which the client parses with the
// protocol package:
//
//	/common/basic_info          name, MAC and firmware
//	/cleaner/get_model_info     model
//	/cleaner/get_control_info   power, mode, humidity level, fan speed
//	/cleaner/get_sensor_info    PM2.5, humidity, temperature
//	/cleaner/get_unit_status    filter sign
//	/cleaner/set_control_info   partial update via query parameters
//
// # Usage Example
//
//	client := deviceclient.NewClient("192.168.1.40", nil,
//	    deviceclient.WithLogger(logger),
//	)
//
//	resp, err := client.GetControlInfo(ctx)
//	if err != nil {
//	    fmt.Println(deviceclient.ShortMessage(err))
//	    return err
//	}
//	control := deviceclient.ControlInfoFrom(resp)
//	fmt.Println(control.Mode.Name())
//
//	// Turn on and select turbo, leaving mode and humidity as they are.
//	cmd := deviceclient.ControlCommand{}.
//	    WithPower(controls.PowerOn).
//	    WithFanSpeed(controls.FanTurbo)
//	_, err = client.SetControlInfo(ctx, cmd)
//
// # Error Handling
//
// Every operation returns a *Fault. Classification happens in this order:
//
//  1. HTTP 401 or 403 is an authentication fault; the body is not read.
//  2. Any other non-2xx status is a communication fault with StatusCode set.
//  3. Timeouts and cancellation are communication faults.
//  4. Transport failures (refused, reset, DNS, unreachable, truncated body)
//     are communication faults.
//  5. Anything else is a protocol fault.
//
// The underlying error is always reachable with errors.Unwrap. The client
// never retries; polling again is the caller's decision.
//
// # Thread Safety
//
// Client instances are safe for concurrent use. Each call is bounded by its
// own 10 second timeout on top of the caller's context.
package deviceclient
