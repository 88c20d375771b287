package deviceclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"syscall"
)

// FaultKind is the category of a failed device call.
type FaultKind int

const (
	// FaultAuthentication means the device answered 401 or 403.
	FaultAuthentication FaultKind = iota
	// FaultCommunication covers transport failures, timeouts and any other
	// non-2xx status.
	FaultCommunication
	// FaultProtocol covers everything else, such as a request that could not
	// be built.
	FaultProtocol
)

// String returns a human-readable name for the fault kind
func (k FaultKind) String() string {
	switch k {
	case FaultAuthentication:
		return "Authentication Error"
	case FaultCommunication:
		return "Communication Error"
	case FaultProtocol:
		return "Protocol Error"
	default:
		return fmt.Sprintf("FaultKind(%d)", k)
	}
}

// Cause narrows down a communication fault.
type Cause int

const (
	CauseGeneral Cause = iota
	CauseStatus
	CauseTimeout
	CauseCanceled
	CauseConnectionRefused
	CauseConnectionReset
	CauseDNS
	CauseHostUnreachable
	CauseNetworkUnreachable
	CauseReadBody
)

// Fault is the error returned by every Client operation.
type Fault struct {
	Kind       FaultKind // Category of fault
	Cause      Cause     // Narrower cause for communication faults
	Message    string    // Human-readable message
	StatusCode int       // HTTP status code, when the device answered
	Host       string    // Device host, for context
	Path       string    // Endpoint path, for context
	Err        error     // Underlying error, if any
}

// Error implements the error interface
func (f *Fault) Error() string {
	msg := fmt.Sprintf("%s: %s", f.Kind, f.Message)
	if f.Path != "" {
		msg = fmt.Sprintf("%s: %s (%s%s)", f.Kind, f.Message, f.Host, f.Path)
	}
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", msg, f.Err)
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection
func (f *Fault) Unwrap() error {
	return f.Err
}

// ErrRedirect is returned by the default client's redirect policy. The
// device serves its endpoints directly and never redirects.
var ErrRedirect = errors.New("device answered with a redirect")

// ClassifyTransportError turns an error from http.Client.Do, from reading a
// response body or from a done context into a communication fault. A
// refused redirect is a protocol fault. Errors it does not recognise are
// communication faults with CauseGeneral.
func ClassifyTransportError(err error, host, path string) *Fault {
	if err == nil {
		return nil
	}

	fault := &Fault{
		Kind:    FaultCommunication,
		Cause:   CauseGeneral,
		Message: "network error",
		Host:    host,
		Path:    path,
		Err:     err,
	}

	var netErr net.Error
	var dnsErr *net.DNSError

	switch {
	case errors.Is(err, ErrRedirect):
		fault.Kind = FaultProtocol
		fault.Message = "unexpected redirect"
	case errors.Is(err, context.Canceled):
		fault.Cause = CauseCanceled
		fault.Message = "request canceled"
	case errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) ||
		(errors.As(err, &netErr) && netErr.Timeout()):
		fault.Cause = CauseTimeout
		fault.Message = "request timed out"
	case errors.As(err, &dnsErr):
		fault.Cause = CauseDNS
		fault.Message = fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name)
	case errors.Is(err, syscall.ECONNREFUSED):
		fault.Cause = CauseConnectionRefused
		fault.Message = "device refused connection"
	case errors.Is(err, syscall.ECONNRESET):
		fault.Cause = CauseConnectionReset
		fault.Message = "connection reset by device"
	case errors.Is(err, syscall.EHOSTUNREACH):
		fault.Cause = CauseHostUnreachable
		fault.Message = "host unreachable"
	case errors.Is(err, syscall.ENETUNREACH):
		fault.Cause = CauseNetworkUnreachable
		fault.Message = "network unreachable"
	}

	return fault
}

func newAuthFault(status int, host, path string) *Fault {
	return &Fault{
		Kind:       FaultAuthentication,
		Message:    fmt.Sprintf("device rejected the request (HTTP %d)", status),
		StatusCode: status,
		Host:       host,
		Path:       path,
	}
}

func newStatusFault(status int, host, path string) *Fault {
	return &Fault{
		Kind:       FaultCommunication,
		Cause:      CauseStatus,
		Message:    fmt.Sprintf("unexpected status code: %d", status),
		StatusCode: status,
		Host:       host,
		Path:       path,
		Err:        errors.New(http.StatusText(status)),
	}
}

func newReadFault(err error, host, path string) *Fault {
	fault := ClassifyTransportError(err, host, path)
	if fault.Cause == CauseGeneral {
		fault.Cause = CauseReadBody
		fault.Message = "failed to read response body"
	}
	return fault
}

func newProtocolFault(message string, err error, host, path string) *Fault {
	return &Fault{
		Kind:    FaultProtocol,
		Message: message,
		Host:    host,
		Path:    path,
		Err:     err,
	}
}

// AsFault returns the Fault in err's chain, if any.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// IsAuthenticationFault checks if an error is an authentication fault
func IsAuthenticationFault(err error) bool {
	f, ok := AsFault(err)
	return ok && f.Kind == FaultAuthentication
}

// IsCommunicationFault checks if an error is a communication fault
func IsCommunicationFault(err error) bool {
	f, ok := AsFault(err)
	return ok && f.Kind == FaultCommunication
}

// IsProtocolFault checks if an error is a protocol fault
func IsProtocolFault(err error) bool {
	f, ok := AsFault(err)
	return ok && f.Kind == FaultProtocol
}

// IsRetryable reports whether trying the same call again later may succeed.
// The client itself never retries; pollers use this to decide how loudly to
// log. Client errors (4xx) and protocol faults are not retryable.
func IsRetryable(err error) bool {
	f, ok := AsFault(err)
	if !ok || f.Kind != FaultCommunication {
		return false
	}
	if f.Cause == CauseStatus {
		return f.StatusCode >= 500
	}
	return f.Cause != CauseDNS
}

// TroubleshootingHint returns user-friendly troubleshooting advice for an error
func TroubleshootingHint(err error) string {
	f, ok := AsFault(err)
	if !ok {
		return "An unexpected error occurred. Please try again."
	}

	switch f.Kind {
	case FaultAuthentication:
		return strings.Join([]string{
			"The device refused access.",
			"Troubleshooting:",
			"  • This client does not authenticate; the device may be locked by its app",
			"  • Check that the address belongs to the humidifier and not another device",
		}, "\n")

	case FaultProtocol:
		return strings.Join([]string{
			"The request could not be built or the response was not understood.",
			"Troubleshooting:",
			"  • Check the device address for typos",
			"  • Run with DAIKIN_HUMID_LOG_LEVEL=debug to see the raw exchange",
		}, "\n")
	}

	switch f.Cause {
	case CauseTimeout:
		return strings.Join([]string{
			"The device did not respond in time.",
			"Troubleshooting:",
			"  • Check that the unit is plugged in and its WiFi lamp is lit",
			"  • Verify the device is on the same network as this machine",
			"  • Weak WiFi often shows up as timeouts; try moving the access point closer",
		}, "\n")

	case CauseCanceled:
		return "The request was canceled before the device answered."

	case CauseConnectionRefused:
		return strings.Join([]string{
			"The device refused the connection.",
			"Troubleshooting:",
			"  • Verify the address points at the humidifier",
			"  • The unit's HTTP service may still be starting; wait a minute after power-on",
		}, "\n")

	case CauseDNS:
		return strings.Join([]string{
			"Could not resolve the device hostname.",
			"Troubleshooting:",
			"  • Use the IP address instead of hostname",
			"  • Check your network DNS settings",
		}, "\n")

	case CauseHostUnreachable, CauseNetworkUnreachable:
		return strings.Join([]string{
			"The device is not reachable on the network.",
			"Troubleshooting:",
			"  • Verify the device IP address is correct",
			"  • Give the unit a DHCP reservation so its address does not change",
			"  • Try pinging the device: ping " + f.Host,
		}, "\n")

	case CauseStatus:
		if f.StatusCode >= 500 {
			return strings.Join([]string{
				fmt.Sprintf("The device returned an error (HTTP %d).", f.StatusCode),
				"Troubleshooting:",
				"  • Power-cycle the unit",
				"  • Avoid polling more often than every few seconds",
			}, "\n")
		}
		return fmt.Sprintf("The device returned HTTP error %d. The endpoint may not exist on this model.", f.StatusCode)

	default:
		return strings.Join([]string{
			"Network communication failed.",
			"Troubleshooting:",
			"  • Check your network connection",
			"  • Verify the device is powered on",
		}, "\n")
	}
}

// ShortMessage returns a concise, user-friendly error message
func ShortMessage(err error) string {
	f, ok := AsFault(err)
	if !ok {
		return err.Error()
	}

	switch f.Kind {
	case FaultAuthentication:
		return fmt.Sprintf("Access denied by device (HTTP %d)", f.StatusCode)
	case FaultProtocol:
		return "Protocol error - " + f.Message
	}

	switch f.Cause {
	case CauseTimeout:
		return "Device not responding (timeout)"
	case CauseCanceled:
		return "Request canceled"
	case CauseConnectionRefused:
		return "Device refused connection"
	case CauseConnectionReset:
		return "Connection reset by device"
	case CauseDNS:
		return "Cannot resolve device hostname"
	case CauseHostUnreachable:
		return "Device unreachable - check network connection"
	case CauseNetworkUnreachable:
		return "Network unreachable"
	case CauseStatus:
		return fmt.Sprintf("Device error (HTTP %d)", f.StatusCode)
	case CauseReadBody:
		return "Response interrupted"
	default:
		return "Network error - check connection"
	}
}
