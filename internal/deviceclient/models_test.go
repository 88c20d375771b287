package deviceclient

import (
	"testing"

	"github.com/muurk/daikin-humid/internal/controls"
	"github.com/muurk/daikin-humid/internal/protocol"
)

func TestControlInfoFrom(t *testing.T) {
	c := ControlInfoFrom(protocol.Parse(mockControlInfo))

	if !c.OK() {
		t.Error("OK() = false, want true")
	}
	if !c.IsOn() {
		t.Error("IsOn() = false, want true")
	}
	if c.Mode != controls.ModeEco {
		t.Errorf("Mode = %q, want %q", c.Mode, controls.ModeEco)
	}
	if c.Humidity != controls.HumidityNormal {
		t.Errorf("Humidity = %q, want %q", c.Humidity, controls.HumidityNormal)
	}
	if c.TargetHumidity() != 50 {
		t.Errorf("TargetHumidity() = %d, want 50", c.TargetHumidity())
	}
	if p, ok := c.FanPercentage(); !ok || p != 75 {
		t.Errorf("FanPercentage() = %d, %v, want 75, true", p, ok)
	}
}

func TestControlInfoFrom_UnknownCodesKept(t *testing.T) {
	c := ControlInfoFrom(protocol.Parse("ret=PARAM NG,pow=1,airvol=4,extra=x"))

	if c.OK() {
		t.Error("OK() = true, want false")
	}
	if c.FanSpeed != "4" {
		t.Errorf("FanSpeed = %q, want raw code 4", c.FanSpeed)
	}
	if c.FanSpeed.Name() != "" {
		t.Errorf("reserved code should have no name, got %q", c.FanSpeed.Name())
	}
	if _, ok := c.FanPercentage(); ok {
		t.Error("FanPercentage() should not be ok for reserved code")
	}
	if c.Raw.Value("extra") != "x" {
		t.Error("unknown keys should remain available through Raw")
	}
}

func TestSensorInfo_CurrentHumidity(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		want   string
		wantOK bool
	}{
		{"hhum only", "pm25=3,hhum=40,temp=21", "40", true},
		{"humi only", "pm25=3,humi=45,temp=21", "45", true},
		{"both prefers hhum", "hhum=41,humi=45", "41", true},
		{"neither", "pm25=3", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SensorInfoFrom(protocol.Parse(tt.body))
			got, ok := s.CurrentHumidity()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("CurrentHumidity() = %q, %v, want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSensorInfo_BothAliasesReportedAsIs(t *testing.T) {
	s := SensorInfoFrom(protocol.Parse("hhum=41,humi=45"))

	if s.HHum != "41" || s.Humi != "45" {
		t.Errorf("HHum, Humi = %q, %q, want 41, 45", s.HHum, s.Humi)
	}
}

func TestSensorInfo_NumericValues(t *testing.T) {
	s := SensorInfoFrom(protocol.Parse(mockSensorInfo))

	if v, ok := s.PM25Value(); !ok || v != 8 {
		t.Errorf("PM25Value() = %d, %v, want 8, true", v, ok)
	}
	// hhum is "-" on this firmware, so the numeric view falls back to humi.
	if v, ok := s.HumidityValue(); !ok || v != 45 {
		t.Errorf("HumidityValue() = %d, %v, want 45, true", v, ok)
	}
	if _, ok := SensorInfoFrom(protocol.Parse("hhum=-,humi=-")).HumidityValue(); ok {
		t.Error("HumidityValue() should not be ok when neither value is numeric")
	}
	if v, ok := s.TemperatureValue(); !ok || v != 23 {
		t.Errorf("TemperatureValue() = %v, %v, want 23, true", v, ok)
	}

	s = SensorInfoFrom(protocol.Parse("humi=45,temp=21.5"))
	if v, ok := s.HumidityValue(); !ok || v != 45 {
		t.Errorf("HumidityValue() = %d, %v, want 45, true", v, ok)
	}
	if v, _ := s.TemperatureValue(); v != 21.5 {
		t.Errorf("TemperatureValue() = %v, want 21.5", v)
	}
}

func TestUnitStatus_FilterNeedsAttention(t *testing.T) {
	if UnitStatusFrom(protocol.Parse("filter_sign=0")).FilterNeedsAttention() {
		t.Error("filter_sign=0 should not need attention")
	}
	if !UnitStatusFrom(protocol.Parse("filter_sign=1")).FilterNeedsAttention() {
		t.Error("filter_sign=1 should need attention")
	}
	if UnitStatusFrom(protocol.Parse("")).FilterNeedsAttention() {
		t.Error("missing filter_sign should not need attention")
	}
}

func TestBasicInfo_TitleAndUniqueID(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantTitle string
		wantID    string
	}{
		{"name and mac", "name=living,mac=AABB", "living", "AABB"},
		{"name only", "name=living", "living", "living"},
		{"mac only", "mac=AABB", "10.0.0.2", "AABB"},
		{"neither", "ret=OK", "10.0.0.2", "10.0.0.2"},
		{"encoded name", "name=Living%20Room", "Living Room", "Living Room"},
		{"bad encoding kept", "name=50%off", "50%off", "50%off"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := BasicInfoFrom(protocol.Parse(tt.body))
			if got := b.Title("10.0.0.2"); got != tt.wantTitle {
				t.Errorf("Title() = %q, want %q", got, tt.wantTitle)
			}
			if got := b.UniqueID("10.0.0.2"); got != tt.wantID {
				t.Errorf("UniqueID() = %q, want %q", got, tt.wantID)
			}
		})
	}
}

func TestModelInfoFrom(t *testing.T) {
	m := ModelInfoFrom(protocol.Parse(mockModelInfo))
	if m.Model != "MCK70Y" {
		t.Errorf("Model = %q, want MCK70Y", m.Model)
	}
}

func TestControlCommand_Fields(t *testing.T) {
	cmd := ControlCommand{}.
		WithPower(controls.PowerOn).
		WithMode(controls.ModePollen).
		WithHumidity(controls.HumidityLow).
		WithFanSpeed(controls.FanSilent)

	fields := cmd.Fields()
	want := map[protocol.Param]string{
		protocol.ParamPower:    "1",
		protocol.ParamMode:     "3",
		protocol.ParamHumidity: "1",
		protocol.ParamFanSpeed: "1",
	}
	if len(fields) != len(want) {
		t.Fatalf("Fields() = %v, want %v", fields, want)
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("Fields()[%s] = %q, want %q", k, fields[k], v)
		}
	}
	if cmd.String() != "airvol=1&humd=1&mode=3&pow=1" {
		t.Errorf("String() = %q", cmd.String())
	}
}

func TestControlCommand_WithDoesNotAlias(t *testing.T) {
	base := ControlCommand{}.WithPower(controls.PowerOff)
	next := base.WithPower(controls.PowerOn)

	if *base.Power != controls.PowerOff {
		t.Error("WithPower modified the receiver")
	}
	if *next.Power != controls.PowerOn {
		t.Error("WithPower did not set the copy")
	}
}

func TestControlCommand_IsEmpty(t *testing.T) {
	if !(ControlCommand{}).IsEmpty() {
		t.Error("zero command should be empty")
	}
	if (ControlCommand{}).WithMode(controls.ModeAuto).IsEmpty() {
		t.Error("command with mode should not be empty")
	}
	if len((ControlCommand{}).Fields()) != 0 {
		t.Error("empty command should have no fields")
	}
}
