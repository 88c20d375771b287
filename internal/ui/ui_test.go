package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/daikin-humid/internal/coordinator"
	"github.com/muurk/daikin-humid/internal/deviceclient"
	"github.com/muurk/daikin-humid/internal/protocol"
)

var fetchedAt = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func testSnapshot() *coordinator.Snapshot {
	return coordinator.NewSnapshot(
		protocol.Parse("ret=OK,pow=1,mode=4,humd=3,airvol=2"),
		protocol.Parse("ret=OK,pm25=7,hhum=44,temp=20.5"),
		protocol.Parse("ret=OK,filter_sign=1"),
		fetchedAt,
	)
}

func authFault() error {
	return &deviceclient.Fault{Kind: deviceclient.FaultAuthentication, Message: "forbidden", StatusCode: 401}
}

func TestTroubleshootingTips(t *testing.T) {
	tips := TroubleshootingTips(authFault())
	if len(tips) != 2 {
		t.Fatalf("tips = %q, want 2 entries", tips)
	}
	if !strings.Contains(tips[0], "does not authenticate") {
		t.Errorf("tips[0] = %q", tips[0])
	}

	canceled := &deviceclient.Fault{Kind: deviceclient.FaultCommunication, Cause: deviceclient.CauseCanceled}
	if tips := TroubleshootingTips(canceled); len(tips) != 1 || !strings.Contains(tips[0], "canceled") {
		t.Errorf("canceled tips = %q, want the hint as a single tip", tips)
	}

	if tips := TroubleshootingTips(nil); tips != nil {
		t.Errorf("nil error tips = %q, want nil", tips)
	}
	if tips := TroubleshootingTips(errors.New("boom")); len(tips) != 1 {
		t.Errorf("plain error tips = %q, want 1", tips)
	}
}

func TestResult_Failure(t *testing.T) {
	out := NewFaultResult("Could not read the device", authFault()).SetWidth(100).Render()

	for _, want := range []string{"FAILED", "Could not read the device", "Access denied by device (HTTP 401)", "Troubleshooting:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestResult_SuccessDetailsKeepOrder(t *testing.T) {
	out := NewSuccessResult("Control command sent").
		AddDetail("Mode", "eco").
		AddDetail("Fan", "low").
		SetWidth(80).
		Render()

	mode, fan := strings.Index(out, "Mode:"), strings.Index(out, "Fan:")
	if mode < 0 || fan < 0 || mode > fan {
		t.Errorf("details out of order:\n%s", out)
	}
}

func TestHeader_Render(t *testing.T) {
	out := NewHeader("Device State", "humid-cfg show",
		Param{Key: "Device", Value: "192.168.1.40"},
		Param{Key: "Timeout", Value: "10s"},
	).SetWidth(80).Render()

	if !strings.Contains(out, "DEVICE STATE") || !strings.Contains(out, "humid-cfg show") {
		t.Errorf("header missing title or command:\n%s", out)
	}
	if strings.Index(out, "Device:") > strings.Index(out, "Timeout:") {
		t.Errorf("params out of order:\n%s", out)
	}
}

func TestRenderSnapshot(t *testing.T) {
	out := RenderSnapshot("bedroom", testSnapshot(), 100, fetchedAt.Add(90*time.Second))

	for _, want := range []string{
		"BEDROOM",
		"moisturize",
		"high (target 60%)",
		"low 50%",
		"44%",
		"20.5°C",
		"7 µg/m³",
		"needs attention",
		"1m30s ago",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSnapshot_MissingAndUnknown(t *testing.T) {
	snap := coordinator.NewSnapshot(
		protocol.Parse("ret=OK,pow=0,mode=9,humd=0,airvol=0"),
		protocol.Parse("ret=OK"),
		protocol.Parse("ret=OK"),
		fetchedAt,
	)
	out := RenderSnapshot("unit", snap, 100, fetchedAt)

	for _, want := range []string{"unknown (9)", "auto", "off (target 0%)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "µg/m³") || strings.Contains(out, "°C") {
		t.Errorf("missing sensors should render as placeholders:\n%s", out)
	}

	if out := RenderSnapshot("unit", nil, 100, fetchedAt); !strings.Contains(out, "No data") {
		t.Errorf("nil snapshot output:\n%s", out)
	}
}

type fakeSource struct {
	mu        sync.Mutex
	observer  coordinator.Observer
	refreshes int
	unsubbed  bool
}

func (f *fakeSource) RequestRefresh(ctx context.Context) (coordinator.Update, error) {
	f.mu.Lock()
	f.refreshes++
	f.mu.Unlock()
	return coordinator.Update{}, nil
}

func (f *fakeSource) CurrentSnapshot() *coordinator.Snapshot { return nil }

func (f *fakeSource) Status() coordinator.Status {
	return coordinator.Status{State: coordinator.StateIdle}
}

func (f *fakeSource) Subscribe(o coordinator.Observer) coordinator.SubscriptionID {
	f.observer = o
	return 1
}

func (f *fakeSource) Unsubscribe(id coordinator.SubscriptionID) {
	f.unsubbed = true
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestWatchModel_Updates(t *testing.T) {
	src := &fakeSource{}
	m := NewWatchModel(context.Background(), src, "bedroom")
	m.width = 100
	m.now = func() time.Time { return fetchedAt }

	if !strings.Contains(m.View(), "No data") {
		t.Errorf("initial view:\n%s", m.View())
	}

	src.observer(coordinator.Update{Snapshot: testSnapshot(), State: coordinator.StateReady})
	msg := m.waitForUpdate()
	if _, ok := msg.(updateMsg); !ok {
		t.Fatalf("waitForUpdate() = %T, want updateMsg", msg)
	}
	_, cmd := m.Update(msg)
	if cmd == nil {
		t.Error("model should keep listening after an update")
	}
	if !strings.Contains(m.View(), "moisturize") || !strings.Contains(m.View(), "State: ready") {
		t.Errorf("view after update:\n%s", m.View())
	}

	fault := &deviceclient.Fault{Kind: deviceclient.FaultCommunication, Cause: deviceclient.CauseTimeout}
	m.Update(updateMsg{Snapshot: testSnapshot(), State: coordinator.StateFailed, Err: fault})
	view := m.View()
	if !strings.Contains(view, "Device not responding (timeout)") || !strings.Contains(view, "moisturize") {
		t.Errorf("failed view should show the fault and keep the snapshot:\n%s", view)
	}

	m.Close()
	if !src.unsubbed {
		t.Error("Close() should unsubscribe")
	}
}

func TestWatchModel_Keys(t *testing.T) {
	src := &fakeSource{}
	m := NewWatchModel(context.Background(), src, "bedroom")
	defer m.Close()

	_, cmd := m.Update(key("r"))
	if !m.refreshing || cmd == nil {
		t.Fatal("r should start a refresh")
	}
	if _, again := m.Update(key("r")); again != nil {
		t.Error("a second r while refreshing should be ignored")
	}
	if !strings.Contains(m.View(), "Refreshing") {
		t.Errorf("view while refreshing:\n%s", m.View())
	}

	done := cmd()
	if _, ok := done.(refreshDoneMsg); !ok {
		t.Fatalf("refresh cmd returned %T", done)
	}
	m.Update(done)
	if m.refreshing {
		t.Error("refreshing should clear when the refresh returns")
	}
	if src.refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", src.refreshes)
	}

	_, quit := m.Update(key("q"))
	if quit == nil {
		t.Fatal("q should quit")
	}
	if _, ok := quit().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}

func TestWatchModel_ContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewWatchModel(ctx, &fakeSource{}, "bedroom")
	defer m.Close()

	cancel()
	if _, ok := m.waitForUpdate().(tea.QuitMsg); !ok {
		t.Error("waitForUpdate should quit once the context is done")
	}
}

func TestGauge_Clamps(t *testing.T) {
	g := NewGauge(80)
	if got := g.Render(150, "150%"); !strings.HasSuffix(got, "150%") {
		t.Errorf("Render() = %q", got)
	}
	if got := g.Render(-5, "x"); !strings.HasSuffix(got, "x") {
		t.Errorf("Render() = %q", got)
	}
}
