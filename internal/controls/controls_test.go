package controls

import (
	"errors"
	"reflect"
	"testing"
)

func TestNames(t *testing.T) {
	tests := []struct {
		code string
		got  string
		want string
	}{
		{"pow=0", PowerOff.Name(), "off"},
		{"pow=1", PowerOn.Name(), "on"},
		{"mode=1", ModeAuto.Name(), "auto"},
		{"mode=2", ModeEco.Name(), "eco"},
		{"mode=3", ModePollen.Name(), "pollen"},
		{"mode=4", ModeMoisturize.Name(), "moisturize"},
		{"mode=5", ModeCirculator.Name(), "circulator"},
		{"humd=0", HumidityOff.Name(), "off"},
		{"humd=1", HumidityLow.Name(), "low"},
		{"humd=2", HumidityNormal.Name(), "normal"},
		{"humd=3", HumidityHigh.Name(), "high"},
		{"airvol=0", FanAuto.Name(), "auto"},
		{"airvol=1", FanSilent.Name(), "silent"},
		{"airvol=2", FanLow.Name(), "low"},
		{"airvol=3", FanNormal.Name(), "normal"},
		{"airvol=5", FanTurbo.Name(), "turbo"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s name = %q, want %q", tt.code, tt.got, tt.want)
		}
	}
}

func TestFanSpeed_ReservedCode(t *testing.T) {
	reserved := FanSpeed("4")

	if reserved.Valid() {
		t.Error("fan code 4 is reserved and should not be valid")
	}
	if reserved.Name() != "" {
		t.Errorf("fan code 4 name = %q, want empty", reserved.Name())
	}
}

func TestParse_RoundTrip(t *testing.T) {
	for _, name := range PowerNames() {
		code, err := ParsePower(name)
		if err != nil || code.Name() != name {
			t.Errorf("ParsePower(%q) = %q, %v", name, code, err)
		}
	}
	for _, name := range ModeNames() {
		code, err := ParseMode(name)
		if err != nil || code.Name() != name {
			t.Errorf("ParseMode(%q) = %q, %v", name, code, err)
		}
	}
	for _, name := range HumidityNames() {
		code, err := ParseHumidity(name)
		if err != nil || code.Name() != name {
			t.Errorf("ParseHumidity(%q) = %q, %v", name, code, err)
		}
	}
	for _, name := range FanSpeedNames() {
		code, err := ParseFanSpeed(name)
		if err != nil || code.Name() != name {
			t.Errorf("ParseFanSpeed(%q) = %q, %v", name, code, err)
		}
	}
}

func TestParse_CaseAndWhitespace(t *testing.T) {
	code, err := ParseMode("  ECO ")
	if err != nil {
		t.Fatalf("ParseMode() error = %v", err)
	}
	if code != ModeEco {
		t.Errorf("ParseMode(\"  ECO \") = %q, want %q", code, ModeEco)
	}
}

func TestParse_Unknown(t *testing.T) {
	_, err := ParseFanSpeed("ludicrous")
	if err == nil {
		t.Fatal("ParseFanSpeed() should fail for unknown name")
	}

	var unknown *UnknownError
	if !errors.As(err, &unknown) {
		t.Fatalf("error type = %T, want *UnknownError", err)
	}
	if unknown.Attribute != "fan speed" || unknown.Value != "ludicrous" {
		t.Errorf("UnknownError = %+v", unknown)
	}
}

func TestNameLists(t *testing.T) {
	if got := ModeNames(); !reflect.DeepEqual(got, []string{"auto", "eco", "pollen", "moisturize", "circulator"}) {
		t.Errorf("ModeNames() = %v", got)
	}
	if got := HumidityNames(); !reflect.DeepEqual(got, []string{"off", "low", "normal", "high"}) {
		t.Errorf("HumidityNames() = %v", got)
	}
	if got := FanSpeeds(); !reflect.DeepEqual(got, []FanSpeed{FanAuto, FanSilent, FanLow, FanNormal, FanTurbo}) {
		t.Errorf("FanSpeeds() = %v", got)
	}
}
