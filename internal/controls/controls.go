package controls

import (
	"fmt"
	"strings"
)

// Power is the device code for the power attribute ("pow").
type Power string

// Mode is the device code for the operating mode ("mode").
type Mode string

// Humidity is the device code for the humidification level ("humd").
type Humidity string

// FanSpeed is the device code for the air volume ("airvol").
type FanSpeed string

const (
	PowerOff Power = "0"
	PowerOn  Power = "1"
)

const (
	ModeAuto       Mode = "1"
	ModeEco        Mode = "2"
	ModePollen     Mode = "3"
	ModeMoisturize Mode = "4"
	ModeCirculator Mode = "5"
)

const (
	HumidityOff    Humidity = "0"
	HumidityLow    Humidity = "1"
	HumidityNormal Humidity = "2"
	HumidityHigh   Humidity = "3"
)

// Fan speed code "4" is reserved by the device and never sent.
const (
	FanAuto   FanSpeed = "0"
	FanSilent FanSpeed = "1"
	FanLow    FanSpeed = "2"
	FanNormal FanSpeed = "3"
	FanTurbo  FanSpeed = "5"
)

// entry pairs a device code with its name.
type entry[C ~string] struct {
	code C
	name string
}

// table is the single source of truth for one attribute. Both lookup
// directions are derived from it.
type table[C ~string] []entry[C]

func (t table[C]) nameOf(code C) (string, bool) {
	for _, e := range t {
		if e.code == code {
			return e.name, true
		}
	}
	return "", false
}

func (t table[C]) codeOf(name string) (C, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, e := range t {
		if e.name == name {
			return e.code, true
		}
	}
	var zero C
	return zero, false
}

func (t table[C]) names() []string {
	out := make([]string, len(t))
	for i, e := range t {
		out[i] = e.name
	}
	return out
}

func (t table[C]) codes() []C {
	out := make([]C, len(t))
	for i, e := range t {
		out[i] = e.code
	}
	return out
}

var powerTable = table[Power]{
	{PowerOff, "off"},
	{PowerOn, "on"},
}

var modeTable = table[Mode]{
	{ModeAuto, "auto"},
	{ModeEco, "eco"},
	{ModePollen, "pollen"},
	{ModeMoisturize, "moisturize"},
	{ModeCirculator, "circulator"},
}

var humidityTable = table[Humidity]{
	{HumidityOff, "off"},
	{HumidityLow, "low"},
	{HumidityNormal, "normal"},
	{HumidityHigh, "high"},
}

var fanTable = table[FanSpeed]{
	{FanAuto, "auto"},
	{FanSilent, "silent"},
	{FanLow, "low"},
	{FanNormal, "normal"},
	{FanTurbo, "turbo"},
}

// UnknownError is returned when a name or code is not part of an
// attribute's table.
type UnknownError struct {
	Attribute string
	Value     string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Attribute, e.Value)
}

// Name returns the human readable name, or "" for unknown codes.
func (p Power) Name() string {
	n, _ := powerTable.nameOf(p)
	return n
}

// Valid reports whether p is a known power code.
func (p Power) Valid() bool {
	_, ok := powerTable.nameOf(p)
	return ok
}

// ParsePower resolves a power name ("on", "off") to its code.
func ParsePower(name string) (Power, error) {
	if c, ok := powerTable.codeOf(name); ok {
		return c, nil
	}
	return "", &UnknownError{Attribute: "power", Value: name}
}

// PowerNames lists the power names in code order.
func PowerNames() []string {
	return powerTable.names()
}

// Name returns the human readable name, or "" for unknown codes.
func (m Mode) Name() string {
	n, _ := modeTable.nameOf(m)
	return n
}

// Valid reports whether m is a known mode code.
func (m Mode) Valid() bool {
	_, ok := modeTable.nameOf(m)
	return ok
}

// ParseMode resolves a mode name to its code.
func ParseMode(name string) (Mode, error) {
	if c, ok := modeTable.codeOf(name); ok {
		return c, nil
	}
	return "", &UnknownError{Attribute: "mode", Value: name}
}

// ModeNames lists the mode names in code order.
func ModeNames() []string {
	return modeTable.names()
}

// Modes lists the mode codes in order.
func Modes() []Mode {
	return modeTable.codes()
}

// Name returns the human readable name, or "" for unknown codes.
func (h Humidity) Name() string {
	n, _ := humidityTable.nameOf(h)
	return n
}

// Valid reports whether h is a known humidity code.
func (h Humidity) Valid() bool {
	_, ok := humidityTable.nameOf(h)
	return ok
}

// ParseHumidity resolves a humidity level name to its code.
func ParseHumidity(name string) (Humidity, error) {
	if c, ok := humidityTable.codeOf(name); ok {
		return c, nil
	}
	return "", &UnknownError{Attribute: "humidity", Value: name}
}

// HumidityNames lists the humidity level names in code order.
func HumidityNames() []string {
	return humidityTable.names()
}

// Humidities lists the humidity codes in order.
func Humidities() []Humidity {
	return humidityTable.codes()
}

// Name returns the human readable name, or "" for unknown codes.
func (f FanSpeed) Name() string {
	n, _ := fanTable.nameOf(f)
	return n
}

// Valid reports whether f is a known fan speed code.
func (f FanSpeed) Valid() bool {
	_, ok := fanTable.nameOf(f)
	return ok
}

// ParseFanSpeed resolves a fan speed name to its code.
func ParseFanSpeed(name string) (FanSpeed, error) {
	if c, ok := fanTable.codeOf(name); ok {
		return c, nil
	}
	return "", &UnknownError{Attribute: "fan speed", Value: name}
}

// FanSpeedNames lists the fan speed names in code order, "auto" first.
func FanSpeedNames() []string {
	return fanTable.names()
}

// FanSpeeds lists the fan speed codes in order.
func FanSpeeds() []FanSpeed {
	return fanTable.codes()
}
