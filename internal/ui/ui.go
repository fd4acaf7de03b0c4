package ui

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/dumper/internal/delay"
	"github.com/desertthunder/dumper/internal/fragment"
	"github.com/desertthunder/dumper/internal/page"
	"github.com/desertthunder/dumper/internal/protocol"
	"github.com/desertthunder/dumper/internal/services"
	"github.com/desertthunder/dumper/internal/session"
	"github.com/desertthunder/dumper/internal/shared"
	"github.com/desertthunder/dumper/internal/theme"
	"github.com/desertthunder/dumper/internal/validate"
)

// Options carries the TUI's collaborators.
type Options struct {
	Streamer     services.Streamer
	Downloader   services.Downloader
	Theme        *theme.Controller
	Recorder     *session.Recorder
	Timing       shared.TimingConfig
	LocationPath string
	Location     *url.URL // initial location; defaults to LocationPath with no target
	Logger       *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	streamer     services.Streamer
	downloader   services.Downloader
	theme        *theme.Controller
	recorder     *session.Recorder
	locationPath string
	logger       *log.Logger

	history   *page.History
	session   *session.Controller
	validator validate.Model
	autoSave  delay.Timer
	pending   protocol.FileRef

	input   textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	buttons []fragment.Button
	focus   int // 0 is the URL field, i > 0 is buttons[i-1]
	notice  string
	width   int
	height  int
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.LocationPath == "" {
		opts.LocationPath = "/dump"
	}
	loc := opts.Location
	if loc == nil {
		loc = page.Location(opts.LocationPath, "")
	}

	input := textinput.New()
	input.Placeholder = "https://example.com/ota.zip"
	input.Prompt = "URL › "
	input.CharLimit = 2048
	input.Focus()

	m := &Model{
		ctx:          ctx,
		streamer:     opts.Streamer,
		downloader:   opts.Downloader,
		theme:        opts.Theme,
		recorder:     opts.Recorder,
		locationPath: opts.LocationPath,
		logger:       logger,
		history:      page.NewHistory(loc),
		validator:    validate.New(opts.Timing.ValidateDebounce(), opts.Timing.TooltipDelay()),
		autoSave:     delay.New(opts.Timing.AutoDownloadDelay()),
		input:        input,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:         help.New(),
		keys:         newKeyMap(),
	}
	m.session = session.New(session.WithLogger(logger), session.OnEnd(m.recorder.Ended))
	return m
}

// Init loads the initial location, as a page does on first render.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.navigate(m.history.Current()))
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-len(m.input.Prompt)-4, 20)
		m.help.Width = msg.Width
		return m, nil

	case tea.FocusMsg:
		return m, m.sampleTheme()

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case delay.FiredMsg:
		if m.autoSave.Fired(msg) {
			return m, m.download(m.pending)
		}
		var cmd tea.Cmd
		m.validator, cmd = m.validator.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		if !m.session.Panels().Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m, m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) tea.Cmd {
	switch msg.kind {
	case MsgStreamOpened:
		data := msg.data.(streamOpened)
		if data.err != nil {
			m.session.Fail(data.id, data.err)
			return nil
		}
		if err := m.session.Attach(data.id, data.stream); err != nil {
			m.logger.Debug("dropped stale stream", "session", data.id)
			return nil
		}
		return m.waitForLine(data.id, data.stream)

	case MsgStreamLine:
		data := msg.data.(streamLine)
		eff, ok := m.session.Handle(data.id, data.line)
		if !ok {
			return nil
		}

		var cmds []tea.Cmd
		switch eff.Event.Kind {
		case protocol.ButtonsReady:
			m.setButtons(eff.Event.Payload)
		case protocol.FileReady:
			m.pending = eff.Download
			cmds = append(cmds, m.autoSave.Schedule())
		}
		if !eff.Closed {
			cmds = append(cmds, m.waitForLine(data.id, data.stream))
		}
		return tea.Batch(cmds...)

	case MsgStreamEnded:
		data := msg.data.(streamEnded)
		m.session.Fail(data.id, data.err)
		return nil

	case MsgDownloaded:
		data := msg.data.(downloaded)
		if data.err != nil {
			m.logger.Warn("download failed", "file", data.ref.Name, "err", data.err)
			m.notice = fmt.Sprintf("%s download failed: %v", session.WarningGlyph, data.err)
			return nil
		}
		m.notice = fmt.Sprintf("%s → %s", data.ref.Name, data.dest)
		return nil

	case MsgThemeSignal:
		if m.theme != nil && m.theme.Apply(msg.data.(bool)) {
			m.logger.Debug("theme follows system", "resolved", m.theme.Resolved())
		}
	}
	return nil
}

// sampleTheme re-reads the system signal off the update loop; the terminal query can block.
func (m *Model) sampleTheme() tea.Cmd {
	if m.theme == nil || m.theme.Preference() != theme.System {
		return nil
	}
	ctrl := m.theme
	return func() tea.Msg {
		return themeSignalMsg(ctrl.Sample())
	}
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	panels := m.session.Panels()

	switch {
	case key.Matches(msg, m.keys.quit):
		m.session.Reset()
		return m, tea.Quit

	case key.Matches(msg, m.keys.theme):
		if m.theme != nil {
			if _, err := m.theme.Toggle(); err != nil {
				m.logger.Warn("failed to save theme", "err", err)
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.back):
		if loc, ok := m.history.Back(); ok {
			return m, m.navigate(loc)
		}
		return m, nil

	case key.Matches(msg, m.keys.forward):
		if loc, ok := m.history.Forward(); ok {
			return m, m.navigate(loc)
		}
		return m, nil

	case key.Matches(msg, m.keys.clear):
		loc := page.Location(m.locationPath, "")
		m.history.Push(loc)
		return m, m.navigate(loc)

	case key.Matches(msg, m.keys.download):
		if panels.FileVisible {
			return m, m.download(panels.File)
		}
		return m, nil

	case key.Matches(msg, m.keys.next):
		m.moveFocus(1)
		return m, nil

	case key.Matches(msg, m.keys.prev):
		m.moveFocus(-1)
		return m, nil

	case key.Matches(msg, m.keys.submit):
		if m.focus > 0 {
			return m, m.activate(m.buttons[m.focus-1])
		}
		return m, m.submit()
	}

	if m.focus > 0 || panels.InputsDisabled {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, tea.Batch(cmd, m.validator.SetValue(m.input.Value()))
}

// navigate applies loc the way a page load or history navigation does.
func (m *Model) navigate(loc *url.URL) tea.Cmd {
	target := page.Target(loc)
	if target == "" {
		m.input.SetValue("")
		m.validator.Clear()
		m.resetPage()
		return nil
	}

	m.input.SetValue(target)
	state, cmd := m.validator.Load(target)
	if state != validate.Valid {
		return cmd
	}
	return tea.Batch(cmd, m.start("", target))
}

// submit validates the field, records the location and starts a session without a partition.
func (m *Model) submit() tea.Cmd {
	if !m.session.Panels().Submit {
		return nil
	}
	state, cmd := m.validator.Check()
	if state != validate.Valid {
		return cmd
	}

	target := m.validator.Value()
	m.history.Push(page.Location(m.locationPath, target))
	return m.start("", target)
}

// activate starts a session for a partition button against the current field value.
func (m *Model) activate(b fragment.Button) tea.Cmd {
	state, cmd := m.validator.Load(m.input.Value())
	if state != validate.Valid {
		return cmd
	}
	return tea.Batch(cmd, m.start(b.Partition, m.validator.Value()))
}

func (m *Model) start(partition, target string) tea.Cmd {
	id, err := m.session.Start(partition, target)
	if err != nil {
		m.logger.Debug("start rejected", "err", err)
		return nil
	}
	m.recorder.Started(id, partition, target)

	m.autoSave.Cancel()
	m.pending = protocol.FileRef{}
	m.buttons = nil
	m.notice = ""
	m.setFocus(0)

	return tea.Batch(m.openStream(id, partition, target), m.spinner.Tick)
}

// resetPage returns to the pre-session baseline.
func (m *Model) resetPage() {
	m.session.Reset()
	m.autoSave.Cancel()
	m.pending = protocol.FileRef{}
	m.buttons = nil
	m.notice = ""
	m.setFocus(0)
}

func (m *Model) setButtons(raw string) {
	buttons, err := fragment.Parse(raw)
	if err != nil {
		m.logger.Warn("failed to parse buttons", "err", err)
	}
	m.buttons = buttons
	if m.focus > len(m.buttons) {
		m.setFocus(0)
	}
}

func (m *Model) moveFocus(step int) {
	if !m.session.Panels().ButtonsVisible || len(m.buttons) == 0 {
		return
	}
	n := len(m.buttons) + 1
	m.setFocus(((m.focus+step)%n + n) % n)
}

func (m *Model) setFocus(i int) {
	m.focus = i
	if i == 0 {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m *Model) openStream(id, partition, target string) tea.Cmd {
	return func() tea.Msg {
		stream, err := m.streamer.Stream(m.ctx, partition, target)
		return streamOpenedMsg(id, stream, err)
	}
}

func (m *Model) waitForLine(id string, stream *services.Stream) tea.Cmd {
	return func() tea.Msg {
		msg, err := stream.Next()
		if err != nil {
			return streamEndedMsg(id, err)
		}
		return streamLineMsg(id, stream, msg.Data)
	}
}

func (m *Model) download(ref protocol.FileRef) tea.Cmd {
	if ref.IsZero() || m.downloader == nil {
		return nil
	}
	return func() tea.Msg {
		dest, err := m.downloader.Download(m.ctx, ref)
		return downloadedMsg(ref, dest, err)
	}
}

// View renders the page.
func (m *Model) View() string {
	styles := m.styles()
	panels := m.session.Panels()

	var b strings.Builder
	b.WriteString(m.renderHeader(styles))
	b.WriteString("\n")
	b.WriteString(m.renderForm(styles, panels))

	if panels.Output {
		b.WriteString("\n")
		b.WriteString(m.renderOutput(styles, panels))
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func (m *Model) styles() *Palette {
	if m.theme == nil {
		return paletteFor(theme.Light)
	}
	return paletteFor(m.theme.Resolved())
}

func (m *Model) renderHeader(styles *Palette) string {
	icon := theme.System.Icon()
	if m.theme != nil {
		icon = m.theme.Icon()
	}
	title := styles.title.Render("dumper " + icon)
	return fmt.Sprintf("%s\n%s", title, styles.muted.Render(m.history.Current().String()))
}

func (m *Model) renderForm(styles *Palette, panels session.Panels) string {
	var b strings.Builder

	field := m.input.View()
	if panels.InputsDisabled {
		field = styles.muted.Render(m.input.Prompt + m.input.Value())
	}
	b.WriteString(field)
	if m.validator.Decorated() {
		b.WriteString(" " + styles.err.Render("✗"))
	}
	if m.validator.TooltipVisible() {
		b.WriteString("\n" + styles.warn.Render(validate.TooltipText))
	}

	if panels.Submit {
		label := "[ Submit ]"
		if m.validator.CanSubmit() {
			b.WriteString("\n" + styles.ok.Render(label))
		} else {
			b.WriteString("\n" + styles.muted.Render(label))
		}
	}
	return b.String()
}

func (m *Model) renderOutput(styles *Palette, panels session.Panels) string {
	var sections []string

	if panels.Loading {
		sections = append(sections, m.spinner.View()+" "+styles.text.Render("Working..."))
	}
	if panels.StatusVisible {
		sections = append(sections, styles.panel.Render(panels.Status))
	}
	if panels.ErrorVisible {
		sections = append(sections, styles.err.Render(panels.Error))
	}
	if panels.FileVisible {
		line := styles.ok.Render("File: "+panels.File.Name) + " " + styles.help.Render("(ctrl+s to download)")
		sections = append(sections, line)
	}
	if panels.ButtonsVisible {
		sections = append(sections, m.renderButtons(styles, panels.Buttons))
	}
	if m.notice != "" {
		sections = append(sections, styles.muted.Render(m.notice))
	}
	return strings.Join(sections, "\n")
}

func (m *Model) renderButtons(styles *Palette, raw string) string {
	if len(m.buttons) == 0 {
		return styles.text.Render(fragment.Text(raw))
	}

	rendered := make([]string, len(m.buttons))
	for i, btn := range m.buttons {
		style := styles.button
		if m.focus == i+1 {
			style = styles.active
		}
		rendered[i] = style.Render(btn.Label)
	}
	return strings.Join(rendered, " ")
}
