package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/dumper/internal/models"
	"github.com/desertthunder/dumper/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.OpenDatabase(shared.DatabaseConfig{Path: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "sessions")
		if err != nil {
			t.Fatalf("NextSequence() error = %v", err)
		}
		if got != want {
			t.Errorf("NextSequence() = %d, want %d", got, want)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for table without a sequence")
	}
}

func TestSettingsRepository(t *testing.T) {
	t.Run("Get Missing", func(t *testing.T) {
		repo := NewSettingsRepository(setupTestDB(t))

		_, err := repo.Get("theme")
		if !errors.Is(err, shared.ErrSettingNotFound) {
			t.Errorf("expected ErrSettingNotFound, got %v", err)
		}
	})

	t.Run("Set And Get", func(t *testing.T) {
		repo := NewSettingsRepository(setupTestDB(t))

		if err := repo.Set("theme", "dark"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, err := repo.Get("theme")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got != "dark" {
			t.Errorf("Get() = %q, want dark", got)
		}
	})

	t.Run("Set Overwrites", func(t *testing.T) {
		repo := NewSettingsRepository(setupTestDB(t))

		for _, v := range []string{"light", "dark", "system"} {
			if err := repo.Set("theme", v); err != nil {
				t.Fatalf("Set(%q) error = %v", v, err)
			}
		}

		got, _ := repo.Get("theme")
		if got != "system" {
			t.Errorf("Get() = %q, want system", got)
		}

		settings, err := repo.List()
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(settings) != 1 {
			t.Errorf("expected a single row per key, got %d", len(settings))
		}
	})

	t.Run("Set Empty Key", func(t *testing.T) {
		repo := NewSettingsRepository(setupTestDB(t))

		if err := repo.Set("", "dark"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestSessionRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		record := models.NewSessionRecord("", "partA", "http://a.b/c")

		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
		if record.ID() == "" {
			t.Error("session ID should be set after creation")
		}
		if record.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", record.Sequence())
		}
	})

	t.Run("Create Invalid", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))

		if err := repo.Create(models.NewSessionRecord("id", "", "")); err == nil {
			t.Error("expected validation error for empty target")
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		record := models.NewSessionRecord("s-1", "", "http://a.b/c")
		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		got, err := repo.Get("s-1")
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if got.Target() != "http://a.b/c" {
			t.Errorf("expected target http://a.b/c, got %s", got.Target())
		}
		if got.Outcome() != models.OutcomeRunning {
			t.Errorf("expected running outcome, got %s", got.Outcome())
		}
		if got.EndedAt() != nil {
			t.Error("expected no end time for a running session")
		}

		if _, err := repo.Get("missing"); !errors.Is(err, shared.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		record := models.NewSessionRecord("s-1", "partA", "http://a.b/c")
		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		record.SetFile("/out/partA/result.zip")
		record.End(models.OutcomeFinished, time.Now())
		if err := repo.Update(record); err != nil {
			t.Fatalf("failed to update session: %v", err)
		}

		got, err := repo.Get("s-1")
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if got.Outcome() != models.OutcomeFinished {
			t.Errorf("expected finished outcome, got %s", got.Outcome())
		}
		if got.File() != "/out/partA/result.zip" {
			t.Errorf("expected file to be stored, got %q", got.File())
		}
		if got.EndedAt() == nil {
			t.Error("expected end time to be stored")
		}

		missing := models.NewSessionRecord("missing", "", "http://x")
		if err := repo.Update(missing); !errors.Is(err, shared.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		if err := repo.Create(models.NewSessionRecord("s-1", "", "http://a")); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		if err := repo.Delete("s-1"); err != nil {
			t.Fatalf("failed to delete session: %v", err)
		}
		if err := repo.Delete("s-1"); !errors.Is(err, shared.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound on second delete, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))

		outcomes := []models.Outcome{models.OutcomeFinished, models.OutcomeFailed, models.OutcomeFinished}
		for i, o := range outcomes {
			record := models.NewSessionRecord("", "", "http://a.b/c")
			if err := repo.Create(record); err != nil {
				t.Fatalf("failed to create session %d: %v", i, err)
			}
			record.End(o, time.Now())
			if err := repo.Update(record); err != nil {
				t.Fatalf("failed to update session %d: %v", i, err)
			}
		}

		tt := []struct {
			name     string
			criteria map[string]any
			want     int
			wantErr  bool
		}{
			{name: "all", criteria: nil, want: 3},
			{name: "limit", criteria: map[string]any{"limit": 2}, want: 2},
			{name: "by outcome", criteria: map[string]any{"outcome": models.OutcomeFinished}, want: 2},
			{name: "by target", criteria: map[string]any{"target": "http://other"}, want: 0},
			{name: "unsupported", criteria: map[string]any{"color": "red"}, wantErr: true},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				got, err := repo.List(tc.criteria)
				if (err != nil) != tc.wantErr {
					t.Fatalf("List() error = %v, wantErr %v", err, tc.wantErr)
				}
				if len(got) != tc.want {
					t.Errorf("List() returned %d records, want %d", len(got), tc.want)
				}
			})
		}

		all, _ := repo.List(nil)
		if all[0].Sequence() < all[len(all)-1].Sequence() {
			t.Error("expected newest sessions first")
		}
	})
}
