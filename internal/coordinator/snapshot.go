package coordinator

import (
	"time"

	"github.com/muurk/daikin-humid/internal/deviceclient"
	"github.com/muurk/daikin-humid/internal/protocol"
)

// Labels of the three responses held by a snapshot.
const (
	LabelControl = "control"
	LabelSensors = "sensors"
	LabelStatus  = "status"
)

// Labels lists the snapshot labels in fetch order.
var Labels = []string{LabelControl, LabelSensors, LabelStatus}

// Snapshot is the device state aggregated from one successful cycle.
//
// A Snapshot is complete by construction and never modified after creation,
// so it may be shared freely between goroutines.
type Snapshot struct {
	control   protocol.Response
	sensors   protocol.Response
	status    protocol.Response
	fetchedAt time.Time
}

// NewSnapshot assembles a snapshot from the three responses of a cycle.
func NewSnapshot(control, sensors, status protocol.Response, fetchedAt time.Time) *Snapshot {
	return &Snapshot{
		control:   control,
		sensors:   sensors,
		status:    status,
		fetchedAt: fetchedAt,
	}
}

// Response returns the raw response stored under label.
func (s *Snapshot) Response(label string) (protocol.Response, bool) {
	switch label {
	case LabelControl:
		return s.control, true
	case LabelSensors:
		return s.sensors, true
	case LabelStatus:
		return s.status, true
	default:
		return protocol.Response{}, false
	}
}

// Control returns the raw control info response.
func (s *Snapshot) Control() protocol.Response {
	return s.control
}

// Sensors returns the raw sensor info response.
func (s *Snapshot) Sensors() protocol.Response {
	return s.sensors
}

// Status returns the raw unit status response.
func (s *Snapshot) Status() protocol.Response {
	return s.status
}

// FetchedAt is when the cycle that produced the snapshot completed.
func (s *Snapshot) FetchedAt() time.Time {
	return s.fetchedAt
}

// ControlInfo decodes the control response.
func (s *Snapshot) ControlInfo() deviceclient.ControlInfo {
	return deviceclient.ControlInfoFrom(s.control)
}

// SensorInfo decodes the sensor response.
func (s *Snapshot) SensorInfo() deviceclient.SensorInfo {
	return deviceclient.SensorInfoFrom(s.sensors)
}

// UnitStatus decodes the status response.
func (s *Snapshot) UnitStatus() deviceclient.UnitStatus {
	return deviceclient.UnitStatusFrom(s.status)
}

// Map returns a copy of the snapshot as label to field map.
func (s *Snapshot) Map() map[string]map[string]string {
	return map[string]map[string]string{
		LabelControl: s.control.Map(),
		LabelSensors: s.sensors.Map(),
		LabelStatus:  s.status.Map(),
	}
}
