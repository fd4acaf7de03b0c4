package protocol

import "strings"

// Kind classifies a decoded stream message.
type Kind int

const (
	UntaggedChunk Kind = iota
	Finished
	StatusChunk
	StatusFlush
	ErrorChunk
	ErrorFlush
	FileReady
	ButtonsReady
)

func (k Kind) String() string {
	switch k {
	case UntaggedChunk:
		return "untagged"
	case Finished:
		return "finished"
	case StatusChunk:
		return "status_chunk"
	case StatusFlush:
		return "status_flush"
	case ErrorChunk:
		return "error_chunk"
	case ErrorFlush:
		return "error_flush"
	case FileReady:
		return "file_ready"
	case ButtonsReady:
		return "buttons_ready"
	default:
		return ""
	}
}

// Section names the accumulation buffer an untagged line belongs to.
type Section int

const (
	SectionStatus Section = iota
	SectionError
)

func (s Section) String() string {
	if s == SectionError {
		return "error"
	}
	return "status"
}

// Wire tokens.
const (
	TokenFinished  = "SCRIPT_FINISHED"
	TokenStatus    = "STATUS:"
	TokenStatusEnd = "STATUS_END"
	TokenError     = "ERROR:"
	TokenErrorEnd  = "ERROR_END"
	TokenFile      = "FILE:"
	TokenButtons   = "BUTTONS:"
)

// Event is one decoded message.
type Event struct {
	Kind    Kind
	Payload string  // trimmed text after the token; the whole trimmed line for untagged messages
	Section Section // destination buffer, meaningful for UntaggedChunk only
}

// File returns the [FileRef] carried by a FileReady event.
func (e Event) File() FileRef {
	return ParseFileRef(e.Payload)
}

// rule pairs a token with the kind it produces; exact rules must match the whole line.
type rule struct {
	token string
	kind  Kind
	exact bool
}

// rules is the classification table in priority order.
var rules = []rule{
	{token: TokenFinished, kind: Finished, exact: true},
	{token: TokenStatus, kind: StatusChunk},
	{token: TokenStatusEnd, kind: StatusFlush},
	{token: TokenError, kind: ErrorChunk},
	{token: TokenErrorEnd, kind: ErrorFlush},
	{token: TokenFile, kind: FileReady},
	{token: TokenButtons, kind: ButtonsReady},
}

// Classify decodes line without section context; untagged lines are attributed to the status section.
func Classify(line string) Event {
	for _, r := range rules {
		if r.exact {
			if line == r.token {
				return Event{Kind: r.kind}
			}
			continue
		}
		if rest, ok := strings.CutPrefix(line, r.token); ok {
			switch r.kind {
			case StatusFlush, ErrorFlush:
				return Event{Kind: r.kind}
			}
			return Event{Kind: r.kind, Payload: strings.TrimSpace(rest)}
		}
	}
	return Event{Kind: UntaggedChunk, Payload: strings.TrimSpace(line)}
}

// Decoder classifies lines while tracking whether an error section is open.
//
// The zero value is ready to use and starts outside any error section.
type Decoder struct {
	InErrorSection bool
}

// Decode classifies line and updates the section flag: ErrorChunk opens the error section,
// ErrorFlush closes it, and UntaggedChunk is routed to the currently open section.
func (d *Decoder) Decode(line string) Event {
	ev := Classify(line)
	switch ev.Kind {
	case ErrorChunk:
		d.InErrorSection = true
	case ErrorFlush:
		d.InErrorSection = false
	case UntaggedChunk:
		if d.InErrorSection {
			ev.Section = SectionError
		}
	}
	return ev
}

// Reset leaves any open error section.
func (d *Decoder) Reset() {
	d.InErrorSection = false
}
