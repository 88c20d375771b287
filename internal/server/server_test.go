package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/muurk/daikin-humid/internal/coordinator"
	"github.com/muurk/daikin-humid/internal/deviceclient"
)

// fakeUnit serves the device endpoints with mutable state.
type fakeUnit struct {
	mu      sync.Mutex
	control map[string]string
	status  int
	queries []string
}

func newFakeUnit() *fakeUnit {
	return &fakeUnit{
		control: map[string]string{"pow": "1", "mode": "2", "humd": "2", "airvol": "3"},
		status:  http.StatusOK,
	}
}

func (u *fakeUnit) setStatus(code int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.status = code
}

func (u *fakeUnit) lastQuery() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.queries) == 0 {
		return ""
	}
	return u.queries[len(u.queries)-1]
}

func (u *fakeUnit) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.status != http.StatusOK {
		w.WriteHeader(u.status)
		return
	}

	switch r.URL.Path {
	case deviceclient.PathControlInfo:
		_, _ = io.WriteString(w, "ret=OK,pow="+u.control["pow"]+",mode="+u.control["mode"]+
			",humd="+u.control["humd"]+",airvol="+u.control["airvol"])
	case deviceclient.PathSensorInfo:
		_, _ = io.WriteString(w, "ret=OK,pm25=9,hhum=47,temp=22")
	case deviceclient.PathUnitStatus:
		_, _ = io.WriteString(w, "ret=OK,filter_sign=0")
	case deviceclient.PathSetControl:
		u.queries = append(u.queries, r.URL.RawQuery)
		for key, values := range r.URL.Query() {
			u.control[key] = values[0]
		}
		_, _ = io.WriteString(w, "ret=OK")
	default:
		http.NotFound(w, r)
	}
}

type testEnv struct {
	unit   *fakeUnit
	device *httptest.Server
	coord  *coordinator.Coordinator
	api    *httptest.Server
}

func newTestEnv(t *testing.T, gatherer prometheus.Gatherer) *testEnv {
	t.Helper()

	unit := newFakeUnit()
	device := httptest.NewServer(unit)
	t.Cleanup(device.Close)

	client := deviceclient.NewClient(device.URL, device.Client(), deviceclient.WithTimeout(2*time.Second))
	coord := coordinator.New(client)
	srv := New(&Config{Gatherer: gatherer}, coord)

	api := httptest.NewServer(srv.Handler())
	t.Cleanup(api.Close)

	return &testEnv{unit: unit, device: device, coord: coord, api: api}
}

func decodeDocument(t *testing.T, r io.Reader) StateDocument {
	t.Helper()
	var doc StateDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		t.Fatalf("decode state document: %v", err)
	}
	return doc
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, err := http.Get(env.api.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("healthz = %d %q", resp.StatusCode, body)
	}
}

func TestState_Idle(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, err := http.Get(env.api.URL + "/api/state")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	doc := decodeDocument(t, resp.Body)
	if doc.State != "idle" || doc.FetchedAt != nil || doc.Control != nil {
		t.Errorf("idle document = %+v", doc)
	}
}

func TestRefresh_Success(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, err := http.Post(env.api.URL+"/api/refresh", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	doc := decodeDocument(t, resp.Body)
	if doc.State != "ready" {
		t.Errorf("state = %q, want ready", doc.State)
	}
	if doc.FetchedAt == nil {
		t.Error("fetched_at missing")
	}
	if doc.Control["mode"] != "2" || doc.Sensors["hhum"] != "47" || doc.Status["filter_sign"] != "0" {
		t.Errorf("document = %+v", doc)
	}

	state, err := http.Get(env.api.URL + "/api/state")
	if err != nil {
		t.Fatal(err)
	}
	defer state.Body.Close()
	if got := decodeDocument(t, state.Body); got.Control["pow"] != "1" {
		t.Errorf("state after refresh = %+v", got)
	}
}

func TestRefresh_FaultStatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		deviceCode int
		want       int
	}{
		{"forbidden is auth", http.StatusForbidden, http.StatusUnauthorized},
		{"unauthorized is auth", http.StatusUnauthorized, http.StatusUnauthorized},
		{"server error is communication", http.StatusInternalServerError, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			env.unit.setStatus(tt.deviceCode)

			resp, err := http.Post(env.api.URL+"/api/refresh", "application/json", nil)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			doc := decodeDocument(t, resp.Body)
			if doc.State != "failed" || doc.Error == "" {
				t.Errorf("document = %+v", doc)
			}
		})
	}
}

func TestRefresh_UnreachableKeepsSnapshot(t *testing.T) {
	env := newTestEnv(t, nil)

	if _, err := env.coord.RequestRefresh(context.Background()); err != nil {
		t.Fatalf("initial refresh: %v", err)
	}
	env.device.Close()

	resp, err := http.Post(env.api.URL+"/api/refresh", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
	doc := decodeDocument(t, resp.Body)
	if doc.State != "failed" || doc.Control["mode"] != "2" {
		t.Errorf("document = %+v, want failed with previous snapshot", doc)
	}
}

func postControl(t *testing.T, env *testEnv, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(env.api.URL+"/api/control", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestControl_ByName(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := postControl(t, env, `{"power":"off","mode":"Pollen"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d body=%s", resp.StatusCode, b)
	}
	if got := env.unit.lastQuery(); got != "mode=3&pow=0" {
		t.Errorf("device query = %q, want mode=3&pow=0", got)
	}

	var out ControlResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Result["ret"] != "OK" {
		t.Errorf("result = %v", out.Result)
	}
	if out.State.State != "ready" || out.State.Control["pow"] != "0" || out.State.Control["mode"] != "3" {
		t.Errorf("state after control = %+v", out.State)
	}
}

func TestControl_Percentages(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := postControl(t, env, `{"target_humidity":45,"fan_percentage":100}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := env.unit.lastQuery(); got != "airvol=5&humd=1" {
		t.Errorf("device query = %q, want airvol=5&humd=1", got)
	}
}

func TestControl_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown mode", `{"mode":"turbo"}`},
		{"unknown fan", `{"fan_speed":"4"}`},
		{"fan percentage zero", `{"fan_percentage":0}`},
		{"target out of range", `{"target_humidity":101}`},
		{"both humidity forms", `{"humidity":"low","target_humidity":40}`},
		{"both fan forms", `{"fan_speed":"low","fan_percentage":40}`},
		{"empty", `{}`},
		{"unknown field", `{"airvol":"5"}`},
		{"not json", `pow=1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)

			resp := postControl(t, env, tt.body)
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if q := env.unit.lastQuery(); q != "" {
				t.Errorf("device received %q for a rejected request", q)
			}
		})
	}
}

func TestControl_DeviceFault(t *testing.T) {
	env := newTestEnv(t, nil)
	env.unit.setStatus(http.StatusForbidden)

	resp := postControl(t, env, `{"power":"on"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	var body errorBody
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body.Hint == "" {
		t.Error("fault response should carry a troubleshooting hint")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "daikin_humid_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	env := newTestEnv(t, reg)

	resp, err := http.Get(env.api.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(body, []byte("daikin_humid_test_total 1")) {
		t.Errorf("metrics body missing counter:\n%s", body)
	}

	noMetrics := newTestEnv(t, nil)
	resp2, err := http.Get(noMetrics.api.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("status without gatherer = %d, want 404", resp2.StatusCode)
	}
}

func TestStream(t *testing.T) {
	env := newTestEnv(t, nil)

	wsURL := "ws" + strings.TrimPrefix(env.api.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	defer conn.Close()

	read := func() StateDocument {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read ws: %v", err)
		}
		var doc StateDocument
		if err := json.Unmarshal(msg, &doc); err != nil {
			t.Fatalf("unmarshal: %v msg=%s", err, msg)
		}
		return doc
	}

	if first := read(); first.State != "idle" {
		t.Errorf("initial document state = %q, want idle", first.State)
	}

	if _, err := env.coord.RequestRefresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if doc := read(); doc.State != "ready" || doc.Sensors["pm25"] != "9" {
		t.Errorf("update document = %+v", doc)
	}

	env.unit.setStatus(http.StatusForbidden)
	_, _ = env.coord.RequestRefresh(context.Background())
	if doc := read(); doc.State != "failed" || doc.Error == "" || doc.Control == nil {
		t.Errorf("failure document = %+v, want failed with previous snapshot", doc)
	}
}

func TestStart_Shutdown(t *testing.T) {
	unit := newFakeUnit()
	device := httptest.NewServer(unit)
	defer device.Close()

	coord := coordinator.New(deviceclient.NewClient(device.URL, device.Client()))
	srv := New(&Config{}, coord)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, listener) }()

	base := "http://" + listener.Addr().String()
	wsURL := "ws://" + listener.Addr().String() + "/api/ws"

	var conn *websocket.Conn
	deadline := time.Now().Add(2 * time.Second)
	for {
		conn, _, err = websocket.DefaultDialer.Dial(wsURL, nil)
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("initial read: %v", err)
	}
	if n := srv.GetActiveStreams(); n != 1 {
		t.Errorf("GetActiveStreams() = %d, want 1", n)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}

	if n := srv.GetActiveStreams(); n != 0 {
		t.Errorf("GetActiveStreams() after shutdown = %d, want 0", n)
	}
	if _, err := http.Get(base + "/healthz"); err == nil {
		t.Error("server still accepting requests after shutdown")
	}
}
