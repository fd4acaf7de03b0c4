// Package validate implements the debounced syntax check of the target URL field.
//
// [Validate] is the pure rule. [Model] wraps it the way bubbles components do: keystrokes
// go through [Model.SetValue], which schedules a debounced check, and an invalid result
// schedules a one-shot tooltip. Both timers are owned by the model and cancelled by the
// next keystroke, so a tooltip never appears for a value the user has since edited.
package validate

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/dumper/internal/delay"
)

// State is the outcome of checking the field.
type State int

const (
	Empty State = iota
	Invalid
	Valid
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Invalid:
		return "invalid"
	case Valid:
		return "valid"
	default:
		return ""
	}
}

// TooltipText explains an invalid value.
const TooltipText = "Please enter a valid URL starting with http:// or https://."

var schemes = []string{"http://", "https://"}

// Validate checks raw for a required http:// or https:// prefix.
func Validate(raw string) State {
	if raw == "" {
		return Empty
	}
	for _, s := range schemes {
		if strings.HasPrefix(raw, s) {
			return Valid
		}
	}
	return Invalid
}

// Model tracks the field's value, its last check and the tooltip.
type Model struct {
	value   string
	state   State
	current bool
	tooltip bool

	check delay.Timer
	hint  delay.Timer
}

// New returns a validator for an empty field.
func New(debounce, tooltipDelay time.Duration) Model {
	return Model{
		current: true,
		check:   delay.New(debounce),
		hint:    delay.New(tooltipDelay),
	}
}

func (m Model) Value() string        { return m.value }
func (m Model) State() State         { return m.state }
func (m Model) Decorated() bool      { return m.state == Invalid }
func (m Model) TooltipVisible() bool { return m.tooltip }

// CanSubmit reports whether the last check passed for the current value.
func (m Model) CanSubmit() bool {
	return m.current && m.state == Valid
}

// SetValue records a keystroke. Pending checks and tooltips are dropped and a fresh
// debounced check is scheduled.
func (m *Model) SetValue(v string) tea.Cmd {
	if v == m.value {
		return nil
	}
	m.value = v
	m.current = false
	m.tooltip = false
	m.hint.Cancel()
	return m.check.Schedule()
}

// Check validates the current value immediately, bypassing the debounce.
//
// An invalid result schedules the tooltip; any other result hides it.
func (m *Model) Check() (State, tea.Cmd) {
	m.check.Cancel()
	m.hint.Cancel()
	m.state = Validate(m.value)
	m.current = true

	if m.state != Invalid {
		m.tooltip = false
		return m.state, nil
	}
	if m.tooltip {
		return m.state, nil
	}
	return m.state, m.hint.Schedule()
}

// Load replaces the value and checks it at once, as when the field is populated from a location.
func (m *Model) Load(v string) (State, tea.Cmd) {
	m.value = v
	m.tooltip = false
	return m.Check()
}

// Clear empties the field and removes all decoration.
func (m *Model) Clear() {
	m.check.Cancel()
	m.hint.Cancel()
	m.value = ""
	m.state = Empty
	m.current = true
	m.tooltip = false
}

// Update handles the model's own timer firings and ignores every other message.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(delay.FiredMsg); !ok {
		return m, nil
	}

	switch {
	case m.check.Fired(msg):
		_, cmd := m.Check()
		return m, cmd
	case m.hint.Fired(msg):
		if m.current && m.state == Invalid {
			m.tooltip = true
		}
	}
	return m, nil
}
