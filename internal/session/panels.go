package session

import "github.com/desertthunder/dumper/internal/protocol"

// WarningGlyph prefixes rendered error text.
const WarningGlyph = "⚠"

// FailureText is shown when the connection itself fails.
const FailureText = WarningGlyph + " An error occurred."

// Panels is the visible state of the page.
type Panels struct {
	Output         bool // output section
	Submit         bool // submit control
	InputsDisabled bool
	Loading        bool

	StatusVisible bool
	Status        string

	ErrorVisible bool
	Error        string

	FileVisible bool
	File        protocol.FileRef

	ButtonsVisible bool
	Buttons        string // trusted fragment, verbatim
}

// Baseline is the pre-session page: output hidden, submit shown, inputs enabled.
func Baseline() Panels {
	return Panels{Submit: true}
}

// opening is the page right after a session starts.
func opening() Panels {
	return Panels{Output: true, InputsDisabled: true, Loading: true}
}
