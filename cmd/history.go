package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/dumper/internal/formatter"
	"github.com/desertthunder/dumper/internal/models"
	"github.com/desertthunder/dumper/internal/repositories"
	"github.com/desertthunder/dumper/internal/shared"
	"github.com/urfave/cli/v3"
)

// historyEntry is the JSON shape of a [models.SessionRecord].
type historyEntry struct {
	ID        string     `json:"id"`
	Sequence  int        `json:"sequence"`
	Partition string     `json:"partition,omitempty"`
	Target    string     `json:"target"`
	Outcome   string     `json:"outcome"`
	File      string     `json:"file,omitempty"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

func newHistoryEntry(s *models.SessionRecord) historyEntry {
	return historyEntry{
		ID:        s.ID(),
		Sequence:  s.Sequence(),
		Partition: s.Partition(),
		Target:    s.Target(),
		Outcome:   s.Outcome().String(),
		File:      s.File(),
		StartedAt: s.StartedAt(),
		EndedAt:   s.EndedAt(),
	}
}

// History lists recorded sessions, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	criteria := map[string]any{"limit": cmd.Int("limit")}
	if raw := cmd.String("outcome"); raw != "" {
		outcome := models.Outcome(raw)
		if raw == "running" {
			outcome = models.OutcomeRunning
		}
		if !outcome.Valid() {
			return fmt.Errorf("%w: unknown outcome %q", shared.ErrInvalidArgument, raw)
		}
		criteria["outcome"] = outcome
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := repositories.NewSessionRepository(db).List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		entries := make([]historyEntry, len(records))
		for i, s := range records {
			entries[i] = newHistoryEntry(s)
		}
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}

	data, err := formatter.Export(cmd.String("format"), records)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
