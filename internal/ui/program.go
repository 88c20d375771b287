package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/muurk/daikin-humid/internal/coordinator"
)

// Printer provides methods for printing UI components to a writer.
// This is the primary way humid-cfg commands output styled content.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// WithWidth overrides the detected terminal width.
func (p *Printer) WithWidth(width int) *Printer {
	p.width = ClampWidth(width)
	return p
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Print writes content to the output
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params ...Param) {
	p.Println(NewHeader(title, command, params...).SetWidth(p.width).Render())
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details ...Param) {
	p.Println(NewSuccessResult(title, details...).SetWidth(p.width).Render())
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details ...Param) {
	p.Println(NewWarningResult(title, details...).SetWidth(p.width).Render())
}

// PrintFault prints a failure box with the troubleshooting tips for err.
func (p *Printer) PrintFault(title string, err error) {
	p.Println(NewFaultResult(title, err).SetWidth(p.width).Render())
}

// PrintSnapshot prints the state box for snap.
func (p *Printer) PrintSnapshot(title string, snap *coordinator.Snapshot) {
	p.Println(RenderSnapshot(title, snap, p.width, time.Now()))
}
