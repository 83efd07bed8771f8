// Package report formats search results for the terminal.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/zipforce/internal/model"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Printer writes user-facing messages, optionally styled.
type Printer struct {
	w      io.Writer
	styled bool
}

// NewPrinter returns a Printer writing to w. Styling is applied only when styled is set.
func NewPrinter(w io.Writer, styled bool) *Printer {
	return &Printer{w: w, styled: styled}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Infof prints a plain line.
func (p *Printer) Infof(format string, args ...any) {
	p.println(fmt.Sprintf(format, args...), lipgloss.Style{}, false)
}

// Warnf prints a warning line.
func (p *Printer) Warnf(format string, args ...any) {
	p.println(fmt.Sprintf(format, args...), warnStyle, true)
}

// Failf prints a failure line.
func (p *Printer) Failf(format string, args ...any) {
	p.println(fmt.Sprintf(format, args...), failStyle, true)
}

// Success prints the recovered password with timing and attempt count.
func (p *Printer) Success(r model.Result) {
	p.println(fmt.Sprintf("Success! The correct password is: '%s'.", r.Password), successStyle, true)
	p.Infof("Needed %s and %s tries.", FormatElapsed(r.Elapsed), FormatAttempts(r.Attempts))
}

func (p *Printer) println(line string, style lipgloss.Style, hasStyle bool) {
	if p.styled && hasStyle {
		line = style.Render(line)
	}
	if _, err := fmt.Fprintln(p.w, line); err != nil {
		// Best-effort terminal output.
		_ = err
	}
}

// FormatElapsed renders d in milliseconds below one second and in seconds otherwise.
func FormatElapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2f milliseconds", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2f seconds", d.Seconds())
}

// FormatAttempts renders n with thousands separators.
func FormatAttempts(n int64) string {
	return humanize.Comma(n)
}
