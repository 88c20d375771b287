package protocol

import (
	"testing"
)

func TestSerialize(t *testing.T) {
	tests := []struct {
		name   string
		fields map[Param]string
		want   string
	}{
		{
			name:   "nil map",
			fields: nil,
			want:   "",
		},
		{
			name:   "empty map",
			fields: map[Param]string{},
			want:   "",
		},
		{
			name:   "power only",
			fields: map[Param]string{ParamPower: "1"},
			want:   "pow=1",
		},
		{
			name: "all fields use device keys",
			fields: map[Param]string{
				ParamPower:    "1",
				ParamMode:     "2",
				ParamHumidity: "3",
				ParamFanSpeed: "5",
			},
			want: "airvol=5&humd=3&mode=2&pow=1",
		},
		{
			name:   "unknown param ignored",
			fields: map[Param]string{"brightness": "9", ParamFanSpeed: "0"},
			want:   "airvol=0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Serialize(tt.fields)
			if got.Encode() != tt.want {
				t.Errorf("Serialize() = %q, want %q", got.Encode(), tt.want)
			}
		})
	}
}

func TestSerialize_NoConceptualNames(t *testing.T) {
	values := Serialize(map[Param]string{ParamHumidity: "1", ParamFanSpeed: "2"})

	for _, conceptual := range []string{"power", "humidity", "fan_speed"} {
		if values.Has(conceptual) {
			t.Errorf("Serialize() leaked conceptual name %q", conceptual)
		}
	}
}

func TestParam_DeviceKey(t *testing.T) {
	want := map[Param]string{
		ParamPower:    "pow",
		ParamMode:     "mode",
		ParamHumidity: "humd",
		ParamFanSpeed: "airvol",
	}
	for p, key := range want {
		got, ok := p.DeviceKey()
		if !ok || got != key {
			t.Errorf("%s.DeviceKey() = %q, %v, want %q, true", p, got, ok, key)
		}
	}

	if _, ok := Param("nope").DeviceKey(); ok {
		t.Error("unknown param should have no device key")
	}
}

func TestFormat(t *testing.T) {
	resp := Parse("pow=1,ret=OK,mode=3")
	if got := Format(resp); got != "mode=3,pow=1,ret=OK" {
		t.Errorf("Format() = %q, want sorted wire format", got)
	}
}
