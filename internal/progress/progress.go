// Package progress tracks attempt counts and renders a throttled status line.
package progress

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// Window is the minimum time between two status line refreshes.
const Window = time.Second

// State holds the counters of one search.
type State struct {
	Total       int64
	InWindow    int64
	WindowStart time.Time
	RunStart    time.Time
}

// Tracker counts attempts and, when verbose, redraws one status line in place.
type Tracker struct {
	state     State
	out       io.Writer
	verbose   bool
	now       func() time.Time
	lastWidth int
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// NewTracker starts a tracker at the current time.
func NewTracker(out io.Writer, verbose bool, opts ...Option) *Tracker {
	t := &Tracker{out: out, verbose: verbose, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	start := t.now()
	t.state = State{WindowStart: start, RunStart: start}
	return t
}

// Record counts one attempt with candidate and refreshes the status line when a
// full window has elapsed since the last refresh.
func (t *Tracker) Record(candidate string) {
	t.state.Total++
	t.state.InWindow++
	if !t.verbose {
		return
	}
	now := t.now()
	elapsed := now.Sub(t.state.WindowStart)
	if elapsed < Window {
		return
	}
	rate := float64(t.state.InWindow) / elapsed.Seconds()
	t.draw(fmt.Sprintf("Password: '%s'. pw/s: %.0f", candidate, rate))
	t.state.InWindow = 0
	t.state.WindowStart = now
}

// Clear erases the status line if one was drawn.
func (t *Tracker) Clear() {
	if t.lastWidth == 0 {
		return
	}
	t.write("\r" + strings.Repeat(" ", t.lastWidth) + "\r")
	t.lastWidth = 0
}

// Attempts returns the number of recorded attempts.
func (t *Tracker) Attempts() int64 {
	return t.state.Total
}

// Elapsed returns the time since the tracker started.
func (t *Tracker) Elapsed() time.Duration {
	return t.now().Sub(t.state.RunStart)
}

// State returns a copy of the counters.
func (t *Tracker) State() State {
	return t.state
}

func (t *Tracker) draw(line string) {
	var b strings.Builder
	if t.lastWidth > 0 {
		b.WriteString("\r")
		b.WriteString(strings.Repeat(" ", t.lastWidth))
	}
	b.WriteString("\r")
	b.WriteString(line)
	t.write(b.String())
	t.lastWidth = runewidth.StringWidth(line)
}

func (t *Tracker) write(s string) {
	if _, err := io.WriteString(t.out, s); err != nil {
		// Best-effort status output.
		_ = err
	}
}
