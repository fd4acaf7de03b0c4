package session

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/dumper/internal/models"
	"github.com/desertthunder/dumper/internal/protocol"
	"github.com/desertthunder/dumper/internal/shared"
	"github.com/desertthunder/dumper/internal/validate"
)

// Phase is the controller's position in the session lifecycle.
type Phase int

const (
	Idle Phase = iota
	Opening
	Streaming
	Finished
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Opening:
		return "opening"
	case Streaming:
		return "streaming"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

// Conn is the handle of an open stream.
type Conn interface {
	Close() error
}

// Ended reports a session that left the active slot.
type Ended struct {
	ID      string
	Outcome models.Outcome
	File    string
}

// Effect describes what a handled line asks the caller to do.
type Effect struct {
	Event    protocol.Event
	Download protocol.FileRef // non-zero when an automatic download is due
	Closed   bool             // the session reached a terminal state
}

// Option configures a [Controller].
type Option func(*Controller)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// OnEnd registers fn to be called whenever a session finishes, fails, is superseded or is reset.
func OnEnd(fn func(Ended)) Option {
	return func(c *Controller) { c.onEnd = fn }
}

var lineBreakRuns = regexp.MustCompile(`(\n\s*){2,}`)

// Controller drives the page through one session at a time.
type Controller struct {
	id        string
	partition string
	target    string
	conn      Conn
	closed    bool
	phase     Phase
	file      string

	decoder protocol.Decoder
	status  strings.Builder
	errText strings.Builder
	panels  Panels

	logger *log.Logger
	onEnd  func(Ended)
}

// New returns an idle controller showing the baseline page.
func New(opts ...Option) *Controller {
	c := &Controller{panels: Baseline(), closed: true, logger: log.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) ID() string        { return c.id }
func (c *Controller) Partition() string { return c.partition }
func (c *Controller) Target() string    { return c.target }
func (c *Controller) Phase() Phase      { return c.phase }
func (c *Controller) Panels() Panels    { return c.panels }

// Active reports whether a session is open and still reacting to events.
func (c *Controller) Active() bool {
	return c.id != "" && !c.closed
}

// Start supersedes any open session and begins a new one for target.
//
// target must pass [validate.Validate]; the previous handle is closed before the new id is
// returned so no two connections ever feed the controller.
func (c *Controller) Start(partition, target string) (string, error) {
	if validate.Validate(target) != validate.Valid {
		return "", fmt.Errorf("%w: %q", shared.ErrInvalidTarget, target)
	}

	c.end(models.OutcomeSuperseded)

	c.id = shared.GenerateID()
	c.partition = partition
	c.target = target
	c.conn = nil
	c.closed = false
	c.file = ""
	c.phase = Opening
	c.decoder.Reset()
	c.status.Reset()
	c.errText.Reset()
	c.panels = opening()

	c.logger.Debug("session started", "session", c.id, "partition", partition, "target", target)
	return c.id, nil
}

// Attach hands the open connection for session id to the controller.
//
// A handle for a stale or already closed session is closed immediately.
func (c *Controller) Attach(id string, conn Conn) error {
	if !c.current(id) {
		conn.Close()
		return fmt.Errorf("%w: session %s", shared.ErrStreamClosed, id)
	}
	c.conn = conn
	c.phase = Streaming
	return nil
}

// Handle decodes one message line for session id and applies it to the panels.
//
// The boolean is false when the line was dropped because the session is stale or closed.
func (c *Controller) Handle(id, line string) (Effect, bool) {
	if !c.current(id) {
		return Effect{}, false
	}
	if c.phase == Opening {
		c.phase = Streaming
	}

	ev := c.decoder.Decode(line)
	eff := Effect{Event: ev}

	switch ev.Kind {
	case protocol.StatusChunk:
		c.status.WriteString(ev.Payload)
	case protocol.ErrorChunk:
		c.errText.WriteString(ev.Payload + "\n")
	case protocol.UntaggedChunk:
		if ev.Section == protocol.SectionError {
			c.errText.WriteString(ev.Payload + "\n")
		} else {
			c.status.WriteString(ev.Payload + "\n")
		}
	case protocol.StatusFlush:
		c.panels.Status = CollapseLineBreaks(strings.TrimSpace(c.status.String()))
		c.panels.StatusVisible = true
		c.status.Reset()
	case protocol.ErrorFlush:
		c.panels.Error = WarningGlyph + " " + strings.TrimSpace(c.errText.String())
		c.panels.ErrorVisible = true
		c.panels.Loading = false
		c.errText.Reset()
	case protocol.FileReady:
		ref := ev.File()
		c.file = ref.Path
		c.panels.File = ref
		c.panels.FileVisible = true
		c.panels.Loading = false
		c.panels.StatusVisible = false
		c.panels.Status = ""
		c.status.Reset()
		eff.Download = ref
	case protocol.ButtonsReady:
		c.panels.Buttons = ev.Payload
		c.panels.ButtonsVisible = true
		c.panels.Loading = false
	case protocol.Finished:
		c.panels.Loading = false
		c.panels.StatusVisible = false
		c.panels.Status = ""
		c.status.Reset()
		c.phase = Finished
		c.end(models.OutcomeFinished)
		eff.Closed = true
	}
	return eff, true
}

// Fail reports a transport error on session id: the generic failure text is shown once and
// the connection is closed. No retry is attempted.
func (c *Controller) Fail(id string, err error) bool {
	if !c.current(id) {
		return false
	}
	c.logger.Warn("session failed", "session", id, "err", err)

	c.panels.Error = FailureText
	c.panels.ErrorVisible = true
	c.panels.Loading = false
	c.phase = Failed
	c.end(models.OutcomeFailed)
	return true
}

// Reset closes any open session and restores the baseline page.
func (c *Controller) Reset() {
	c.end(models.OutcomeReset)

	c.id = ""
	c.partition = ""
	c.target = ""
	c.file = ""
	c.phase = Idle
	c.decoder.Reset()
	c.status.Reset()
	c.errText.Reset()
	c.panels = Baseline()
}

// current reports whether id names the open session.
func (c *Controller) current(id string) bool {
	return id != "" && id == c.id && !c.closed
}

// end closes the open session, if any, and reports it with outcome.
func (c *Controller) end(outcome models.Outcome) {
	if !c.Active() {
		return
	}
	c.closed = true
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Debug("close failed", "session", c.id, "err", err)
		}
	}
	c.logger.Debug("session ended", "session", c.id, "outcome", outcome)

	if c.onEnd != nil {
		c.onEnd(Ended{ID: c.id, Outcome: outcome, File: c.file})
	}
}

// CollapseLineBreaks replaces every run of two or more line breaks, and the whitespace
// between them, with a single line break.
func CollapseLineBreaks(s string) string {
	return lineBreakRuns.ReplaceAllString(s, "\n")
}
