// Package delay provides cancellable one-shot timers for bubbletea models.
//
// A [Timer] is owned by the component that schedules it. Scheduling returns a [tea.Cmd]
// that delivers a [FiredMsg] after the delay; cancelling or rescheduling bumps the timer's
// tag so any message already in flight is recognised as stale by [Timer.Fired].
package delay

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// FiredMsg is delivered when a scheduled timer elapses.
type FiredMsg struct {
	ID  int
	Tag int
}

// Timer is a cancellable one-shot delay.
type Timer struct {
	id       int
	tag      int
	duration time.Duration
	pending  bool
}

// New returns an idle timer with a process-unique id.
func New(d time.Duration) Timer {
	return Timer{id: nextID(), duration: d}
}

func (t Timer) ID() int                 { return t.id }
func (t Timer) Duration() time.Duration { return t.duration }
func (t Timer) Pending() bool           { return t.pending }

// Schedule supersedes any pending firing and starts a new one.
func (t *Timer) Schedule() tea.Cmd {
	t.tag++
	t.pending = true
	id, tag := t.id, t.tag
	return tea.Tick(t.duration, func(time.Time) tea.Msg {
		return FiredMsg{ID: id, Tag: tag}
	})
}

// Cancel drops the pending firing, if any.
func (t *Timer) Cancel() {
	if t.pending {
		t.tag++
		t.pending = false
	}
}

// Fired reports whether msg is the current firing of this timer and marks it consumed.
func (t *Timer) Fired(msg tea.Msg) bool {
	m, ok := msg.(FiredMsg)
	if !ok || m.ID != t.id || m.Tag != t.tag || !t.pending {
		return false
	}
	t.pending = false
	return true
}
