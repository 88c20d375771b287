package controls

import (
	"fmt"
)

// OrderedFanSpeeds is the percentage scale for the fan. "auto" is a preset,
// not a point on the scale.
var OrderedFanSpeeds = []FanSpeed{FanSilent, FanLow, FanNormal, FanTurbo}

// PresetAuto is the only fan preset.
const PresetAuto = "auto"

// Target humidity thresholds used when writing. Reading maps the levels back
// to 40/50/60, so a write followed by a read is not a round trip: 45 is
// written as low and read back as 40.
const (
	targetLowMax    = 45
	targetNormalMax = 55

	targetReadOff     = 0
	targetReadLow     = 40
	targetReadNormal  = 50
	targetReadHigh    = 60
	targetReadUnknown = 50
)

// RangeError is returned for percentages outside the accepted range.
type RangeError struct {
	Value    int
	Min, Max int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("percentage %d out of range [%d, %d]", e.Value, e.Min, e.Max)
}

// PercentageToFanSpeed maps p in [1, 100] onto the ordered fan scale.
//
// The range is split into len(OrderedFanSpeeds) equal buckets; bucket i has
// the upper bound (i+1)*100/n, so with four speeds 1-25 is silent, 26-50 low,
// 51-75 normal and 76-100 turbo. 0 is not a fan speed: turning the unit off
// goes through power.
func PercentageToFanSpeed(p int) (FanSpeed, error) {
	if p < 1 || p > 100 {
		return "", &RangeError{Value: p, Min: 1, Max: 100}
	}
	n := len(OrderedFanSpeeds)
	for i, speed := range OrderedFanSpeeds {
		if p <= (i+1)*100/n {
			return speed, nil
		}
	}
	return OrderedFanSpeeds[n-1], nil
}

// FanSpeedToPercentage returns the upper bound of f's bucket. It reports
// false for auto and unknown codes.
func FanSpeedToPercentage(f FanSpeed) (int, bool) {
	n := len(OrderedFanSpeeds)
	for i, speed := range OrderedFanSpeeds {
		if speed == f {
			return (i + 1) * 100 / n, true
		}
	}
	return 0, false
}

// FanPercentageStep is the percentage distance between adjacent speeds.
func FanPercentageStep() float64 {
	return 100 / float64(len(OrderedFanSpeeds))
}

// HumidityForTarget maps a target relative humidity onto a device level:
// 0 is off, up to 45 low, up to 55 normal, anything higher high.
func HumidityForTarget(p int) (Humidity, error) {
	switch {
	case p < 0 || p > 100:
		return "", &RangeError{Value: p, Min: 0, Max: 100}
	case p == 0:
		return HumidityOff, nil
	case p <= targetLowMax:
		return HumidityLow, nil
	case p <= targetNormalMax:
		return HumidityNormal, nil
	default:
		return HumidityHigh, nil
	}
}

// TargetForHumidity reports the target humidity for a device level:
// off 0, low 40, normal 50, high 60. Unknown codes read as 50.
func TargetForHumidity(h Humidity) int {
	switch h {
	case HumidityOff:
		return targetReadOff
	case HumidityLow:
		return targetReadLow
	case HumidityNormal:
		return targetReadNormal
	case HumidityHigh:
		return targetReadHigh
	default:
		return targetReadUnknown
	}
}
