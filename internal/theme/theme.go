// Package theme keeps the light/dark/system preference and resolves it against the
// terminal's background.
package theme

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/dumper/internal/shared"
)

// Preference is the raw, persisted choice.
type Preference string

const (
	Light  Preference = "light"
	Dark   Preference = "dark"
	System Preference = "system"
)

// Key is the settings entry holding the preference.
const Key = "theme"

// EnvColorScheme overrides background detection with "light" or "dark".
const EnvColorScheme = "DUMPER_COLOR_SCHEME"

// Parse reads a preference, accepting any letter case.
func Parse(s string) (Preference, error) {
	switch p := Preference(strings.ToLower(strings.TrimSpace(s))); p {
	case Light, Dark, System:
		return p, nil
	}
	return "", fmt.Errorf("%w: theme %q (want light, dark or system)", shared.ErrInvalidArgument, s)
}

// Next cycles light → dark → system → light.
func (p Preference) Next() Preference {
	switch p {
	case Light:
		return Dark
	case Dark:
		return System
	default:
		return Light
	}
}

// Icon is the glyph shown on the toggle.
func (p Preference) Icon() string {
	switch p {
	case Light:
		return "☀"
	case Dark:
		return "☾"
	default:
		return "◐"
	}
}

func (p Preference) String() string { return string(p) }

// Resolve maps p onto Light or Dark; System follows dark.
func Resolve(p Preference, dark bool) Preference {
	if p == System {
		if dark {
			return Dark
		}
		return Light
	}
	return p
}

// Store persists the preference as a single key-value entry.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Detector reports whether the environment prefers a dark scheme.
type Detector func() bool

// DetectDark checks [EnvColorScheme], then COLORFGBG, then queries the terminal background.
//
// Every call samples again; a fresh renderer is used because the default one caches its answer.
func DetectDark() bool {
	return detectDark(os.Getenv, func() bool {
		return lipgloss.NewRenderer(os.Stdout).HasDarkBackground()
	})
}

func detectDark(getenv func(string) string, background func() bool) bool {
	switch strings.ToLower(getenv(EnvColorScheme)) {
	case "dark":
		return true
	case "light":
		return false
	}
	if dark, ok := parseColorFGBG(getenv("COLORFGBG")); ok {
		return dark
	}
	return background()
}

// parseColorFGBG reads the "fg;bg" form set by rxvt-style terminals. ANSI backgrounds 0-6 and 8 are dark.
func parseColorFGBG(v string) (dark, ok bool) {
	if v == "" {
		return false, false
	}
	fields := strings.Split(v, ";")
	bg, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil || bg < 0 || bg > 15 {
		return false, false
	}
	return bg < 7 || bg == 8, true
}

// Controller applies the preference and re-resolves it when the signal changes.
type Controller struct {
	store  Store
	detect Detector
	pref   Preference
	dark   bool
}

// NewController returns a controller with the System preference; call Load to read the stored one.
func NewController(store Store, detect Detector) *Controller {
	if detect == nil {
		detect = DetectDark
	}
	return &Controller{store: store, detect: detect, pref: System, dark: detect()}
}

// Load reads the stored preference. A missing or unreadable entry falls back to System.
func (c *Controller) Load() error {
	c.pref = System
	raw, err := c.store.Get(Key)
	if errors.Is(err, shared.ErrSettingNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	p, err := Parse(raw)
	if err != nil {
		return err
	}
	c.pref = p
	return nil
}

func (c *Controller) Preference() Preference { return c.pref }
func (c *Controller) Resolved() Preference   { return Resolve(c.pref, c.dark) }
func (c *Controller) Icon() string           { return c.pref.Icon() }
func (c *Controller) Dark() bool             { return c.Resolved() == Dark }

// Toggle advances to the next preference and persists it.
func (c *Controller) Toggle() (Preference, error) {
	next := c.pref.Next()
	return next, c.Set(next)
}

// Set applies p immediately and persists it; the new preference stays applied even if
// persisting fails.
func (c *Controller) Set(p Preference) error {
	c.pref = p
	c.dark = c.detect()
	if err := c.store.Set(Key, string(p)); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}

// Sample queries the detector without applying its answer. It may block on a terminal query.
func (c *Controller) Sample() bool { return c.detect() }

// Apply records a sampled signal and reports whether the resolved theme changed.
func (c *Controller) Apply(dark bool) bool {
	before := c.Resolved()
	c.dark = dark
	return c.Resolved() != before
}

// Refresh samples the signal again and reports whether the resolved theme changed.
func (c *Controller) Refresh() bool {
	return c.Apply(c.detect())
}
