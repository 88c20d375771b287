package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/daikin-humid/internal/controls"
	"github.com/muurk/daikin-humid/internal/coordinator"
	"github.com/muurk/daikin-humid/internal/deviceclient"
)

// maxRequestBody bounds control request bodies.
const maxRequestBody = 4096

// StateDocument is the JSON view of the coordinator served by /api/state,
// /api/refresh and every websocket message.
type StateDocument struct {
	State     string            `json:"state"`
	FetchedAt *time.Time        `json:"fetched_at,omitempty"`
	Control   map[string]string `json:"control,omitempty"`
	Sensors   map[string]string `json:"sensors,omitempty"`
	Status    map[string]string `json:"status,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// NewStateDocument builds a document from a snapshot and status. A nil
// snapshot yields a document with only state and error.
func NewStateDocument(snap *coordinator.Snapshot, state coordinator.State, err error) StateDocument {
	doc := StateDocument{State: state.String()}
	if err != nil {
		doc.Error = err.Error()
	}
	if snap == nil {
		return doc
	}

	fetched := snap.FetchedAt().UTC()
	doc.FetchedAt = &fetched
	doc.Control = snap.Control().Map()
	doc.Sensors = snap.Sensors().Map()
	doc.Status = snap.Status().Map()
	return doc
}

// ControlRequest is the body of POST /api/control. Attributes are given by
// name; TargetHumidity and FanPercentage are alternatives to Humidity and
// FanSpeed.
type ControlRequest struct {
	Power          string `json:"power,omitempty"`
	Mode           string `json:"mode,omitempty"`
	Humidity       string `json:"humidity,omitempty"`
	FanSpeed       string `json:"fan_speed,omitempty"`
	TargetHumidity *int   `json:"target_humidity,omitempty"`
	FanPercentage  *int   `json:"fan_percentage,omitempty"`
}

// Command converts the request into a device command.
func (r ControlRequest) Command() (deviceclient.ControlCommand, error) {
	var cmd deviceclient.ControlCommand

	if r.Humidity != "" && r.TargetHumidity != nil {
		return cmd, errors.New("humidity and target_humidity are mutually exclusive")
	}
	if r.FanSpeed != "" && r.FanPercentage != nil {
		return cmd, errors.New("fan_speed and fan_percentage are mutually exclusive")
	}

	if r.Power != "" {
		p, err := controls.ParsePower(r.Power)
		if err != nil {
			return cmd, err
		}
		cmd = cmd.WithPower(p)
	}
	if r.Mode != "" {
		m, err := controls.ParseMode(r.Mode)
		if err != nil {
			return cmd, err
		}
		cmd = cmd.WithMode(m)
	}
	if r.Humidity != "" {
		h, err := controls.ParseHumidity(r.Humidity)
		if err != nil {
			return cmd, err
		}
		cmd = cmd.WithHumidity(h)
	}
	if r.TargetHumidity != nil {
		h, err := controls.HumidityForTarget(*r.TargetHumidity)
		if err != nil {
			return cmd, fmt.Errorf("target_humidity: %w", err)
		}
		cmd = cmd.WithHumidity(h)
	}
	if r.FanSpeed != "" {
		f, err := controls.ParseFanSpeed(r.FanSpeed)
		if err != nil {
			return cmd, err
		}
		cmd = cmd.WithFanSpeed(f)
	}
	if r.FanPercentage != nil {
		f, err := controls.PercentageToFanSpeed(*r.FanPercentage)
		if err != nil {
			return cmd, fmt.Errorf("fan_percentage: %w", err)
		}
		cmd = cmd.WithFanSpeed(f)
	}

	if cmd.IsEmpty() {
		return cmd, errors.New("no control attributes given")
	}
	return cmd, nil
}

// ControlResponse is the body returned by POST /api/control.
type ControlResponse struct {
	Result map[string]string `json:"result"`
	State  StateDocument     `json:"state"`
}

type errorBody struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// faultStatus maps a device fault to the API's status code.
func faultStatus(err error) int {
	switch {
	case deviceclient.IsAuthenticationFault(err):
		return http.StatusUnauthorized
	case deviceclient.IsCommunicationFault(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) currentDocument() StateDocument {
	status := s.coord.Status()
	return NewStateDocument(s.coord.CurrentSnapshot(), status.State, status.LastError)
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.currentDocument())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	u, err := s.coord.RequestRefresh(r.Context())
	if err != nil {
		s.logger.Debug("Refresh via API failed", zap.Error(err))
		writeJSON(w, faultStatus(err), NewStateDocument(u.Snapshot, s.coord.Status().State, err))
		return
	}
	writeJSON(w, http.StatusOK, NewStateDocument(u.Snapshot, u.State, nil))
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	var req ControlRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body: " + err.Error()})
		return
	}

	cmd, err := req.Command()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	s.logger.Info("Control command via API",
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("command", cmd.String()),
	)

	resp, err := s.coord.SetControl(r.Context(), cmd)
	if errors.Is(err, coordinator.ErrNoController) {
		writeJSON(w, http.StatusNotImplemented, errorBody{Error: err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, faultStatus(err), errorBody{
			Error: err.Error(),
			Hint:  deviceclient.TroubleshootingHint(err),
		})
		return
	}

	writeJSON(w, http.StatusOK, ControlResponse{
		Result: resp.Map(),
		State:  s.currentDocument(),
	})
}
