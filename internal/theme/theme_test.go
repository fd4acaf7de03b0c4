package theme

import (
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/dumper/internal/repositories"
	"github.com/desertthunder/dumper/internal/shared"
)

type mapStore struct {
	values map[string]string
	setErr error
	sets   int
}

func newMapStore() *mapStore {
	return &mapStore{values: map[string]string{}}
}

func (s *mapStore) Get(key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", shared.ErrSettingNotFound, key)
	}
	return v, nil
}

func (s *mapStore) Set(key, value string) error {
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	return nil
}

// signal is a switchable dark/light detector.
type signal struct{ dark bool }

func (s *signal) detect() bool { return s.dark }

func TestParse(t *testing.T) {
	tt := []struct {
		in      string
		want    Preference
		wantErr bool
	}{
		{in: "light", want: Light},
		{in: "Dark", want: Dark},
		{in: " system ", want: System},
		{in: "sepia", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range tt {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if tc.wantErr {
				if !errors.Is(err, shared.ErrInvalidArgument) {
					t.Errorf("Parse(%q) error = %v, want ErrInvalidArgument", tc.in, err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Errorf("Parse(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
			}
		})
	}
}

func TestPreference(t *testing.T) {
	tt := []struct {
		pref Preference
		next Preference
		icon string
	}{
		{pref: Light, next: Dark, icon: "☀"},
		{pref: Dark, next: System, icon: "☾"},
		{pref: System, next: Light, icon: "◐"},
	}

	for _, tc := range tt {
		t.Run(tc.pref.String(), func(t *testing.T) {
			if got := tc.pref.Next(); got != tc.next {
				t.Errorf("Next() = %v, want %v", got, tc.next)
			}
			if got := tc.pref.Icon(); got != tc.icon {
				t.Errorf("Icon() = %q, want %q", got, tc.icon)
			}
		})
	}

	if Resolve(System, true) != Dark || Resolve(System, false) != Light {
		t.Error("system should follow the signal")
	}
	if Resolve(Light, true) != Light || Resolve(Dark, false) != Dark {
		t.Error("explicit preferences ignore the signal")
	}
}

func TestDetectDark(t *testing.T) {
	tt := []struct {
		name       string
		env        map[string]string
		background bool
		want       bool
	}{
		{name: "override dark", env: map[string]string{EnvColorScheme: "Dark"}, want: true},
		{name: "override light beats background", env: map[string]string{EnvColorScheme: "light"}, background: true, want: false},
		{name: "colorfgbg dark", env: map[string]string{"COLORFGBG": "15;0"}, want: true},
		{name: "colorfgbg light", env: map[string]string{"COLORFGBG": "0;15"}, background: true, want: false},
		{name: "colorfgbg with default field", env: map[string]string{"COLORFGBG": "15;default;8"}, want: true},
		{name: "malformed colorfgbg uses background", env: map[string]string{"COLORFGBG": "x"}, background: true, want: true},
		{name: "background only", env: map[string]string{}, background: false, want: false},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			getenv := func(k string) string { return tc.env[k] }
			got := detectDark(getenv, func() bool { return tc.background })
			if got != tc.want {
				t.Errorf("detectDark() = %v, want %v", got, tc.want)
			}
		})
	}

	t.Run("samples again on every call", func(t *testing.T) {
		t.Setenv(EnvColorScheme, "dark")
		if !DetectDark() {
			t.Fatal("expected dark from the override")
		}
		t.Setenv(EnvColorScheme, "light")
		if DetectDark() {
			t.Error("expected light after the signal changed")
		}
		t.Setenv(EnvColorScheme, "")
		t.Setenv("COLORFGBG", "0;15")
		if DetectDark() {
			t.Error("expected light from COLORFGBG")
		}
		t.Setenv("COLORFGBG", "15;0")
		if !DetectDark() {
			t.Error("expected dark after COLORFGBG changed")
		}
	})

	t.Run("controller follows a changing environment", func(t *testing.T) {
		t.Setenv(EnvColorScheme, "light")
		c := NewController(newMapStore(), DetectDark)
		if c.Resolved() != Light {
			t.Fatalf("expected light, got %v", c.Resolved())
		}
		t.Setenv(EnvColorScheme, "dark")
		if !c.Refresh() || c.Resolved() != Dark {
			t.Errorf("expected refresh to resolve dark, got %v", c.Resolved())
		}
	})
}

func TestController(t *testing.T) {
	t.Run("defaults to system", func(t *testing.T) {
		sig := &signal{dark: true}
		c := NewController(newMapStore(), sig.detect)
		if err := c.Load(); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if c.Preference() != System || c.Resolved() != Dark || c.Icon() != "◐" {
			t.Errorf("unexpected defaults pref=%v resolved=%v", c.Preference(), c.Resolved())
		}
	})

	t.Run("loads stored preference", func(t *testing.T) {
		store := newMapStore()
		store.values[Key] = "dark"
		c := NewController(store, (&signal{}).detect)
		if err := c.Load(); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if c.Preference() != Dark || !c.Dark() {
			t.Errorf("expected dark, got %v", c.Preference())
		}
	})

	t.Run("invalid stored value falls back to system", func(t *testing.T) {
		store := newMapStore()
		store.values[Key] = "neon"
		c := NewController(store, (&signal{}).detect)
		if err := c.Load(); err == nil {
			t.Error("expected an error for an unknown stored theme")
		}
		if c.Preference() != System {
			t.Errorf("expected system fallback, got %v", c.Preference())
		}
	})

	t.Run("toggle cycles and persists the raw preference", func(t *testing.T) {
		store := newMapStore()
		store.values[Key] = "light"
		c := NewController(store, (&signal{dark: true}).detect)
		if err := c.Load(); err != nil {
			t.Fatal(err)
		}

		for _, want := range []Preference{Dark, System, Light, Dark} {
			got, err := c.Toggle()
			if err != nil {
				t.Fatalf("Toggle() error = %v", err)
			}
			if got != want || c.Preference() != want {
				t.Errorf("Toggle() = %v, want %v", got, want)
			}
			if store.values[Key] != string(want) {
				t.Errorf("stored %q, want %q", store.values[Key], want)
			}
		}
		if store.sets != 4 {
			t.Errorf("expected one write per toggle, got %d", store.sets)
		}
	})

	t.Run("system re-resolves when the signal changes", func(t *testing.T) {
		sig := &signal{}
		c := NewController(newMapStore(), sig.detect)

		if c.Refresh() {
			t.Error("unchanged signal should not report a change")
		}
		sig.dark = true
		if !c.Refresh() || c.Resolved() != Dark {
			t.Error("system should follow the new dark signal")
		}

		if err := c.Set(Light); err != nil {
			t.Fatal(err)
		}
		sig.dark = false
		if c.Refresh() {
			t.Error("explicit light should not change with the signal")
		}
	})

	t.Run("apply records a sampled signal", func(t *testing.T) {
		sig := &signal{}
		c := NewController(newMapStore(), sig.detect)

		sig.dark = true
		if !c.Sample() {
			t.Error("Sample() should report the detector's answer")
		}
		if c.Resolved() != Light {
			t.Error("Sample() must not apply the signal")
		}
		if !c.Apply(true) || c.Resolved() != Dark {
			t.Error("Apply(true) should switch system to dark")
		}
		if c.Apply(true) {
			t.Error("repeated signal should not report a change")
		}
	})

	t.Run("failed save still applies", func(t *testing.T) {
		store := newMapStore()
		store.setErr = errors.New("disk full")
		c := NewController(store, (&signal{}).detect)

		if err := c.Set(Dark); err == nil {
			t.Error("expected save error")
		}
		if c.Preference() != Dark {
			t.Error("preference should be applied even when saving fails")
		}
	})

	t.Run("settings repository store", func(t *testing.T) {
		db, err := shared.OpenDatabase(shared.DatabaseConfig{Path: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1})
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		repo := repositories.NewSettingsRepository(db)
		c := NewController(repo, (&signal{}).detect)
		if err := c.Load(); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if _, err := c.Toggle(); err != nil {
			t.Fatalf("Toggle() error = %v", err)
		}

		reloaded := NewController(repo, (&signal{}).detect)
		if err := reloaded.Load(); err != nil {
			t.Fatal(err)
		}
		if reloaded.Preference() != Light {
			t.Errorf("expected persisted light, got %v", reloaded.Preference())
		}
	})
}
