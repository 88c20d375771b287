package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
)

// Gauge renders a percentage value as a bar, e.g. current humidity or fan
// speed.
type Gauge struct {
	bar progress.Model
}

// NewGauge creates a gauge sized for the given terminal width.
func NewGauge(width int) Gauge {
	barWidth := width - 44 // Leave room for the key column and value
	if barWidth < 10 {
		barWidth = 10
	}
	if barWidth > 40 {
		barWidth = 40
	}
	return Gauge{
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(barWidth),
			progress.WithoutPercentage(),
		),
	}
}

// Render returns the bar for value in [0, 100] followed by its label.
// Values outside the range are clamped for the bar only.
func (g Gauge) Render(value int, label string) string {
	pct := float64(value) / 100
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}
	return fmt.Sprintf("%s  %s", g.bar.ViewAs(pct), label)
}
