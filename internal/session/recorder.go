package session

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/dumper/internal/models"
)

// Recorder writes session history. A nil repository makes every call a no-op.
type Recorder struct {
	repo   models.Repository[*models.SessionRecord]
	logger *log.Logger
}

// NewRecorder records into repo.
func NewRecorder(repo models.Repository[*models.SessionRecord], logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.Default()
	}
	return &Recorder{repo: repo, logger: logger}
}

// Started inserts a running record for a new session.
func (r *Recorder) Started(id, partition, target string) {
	if r == nil || r.repo == nil {
		return
	}
	if err := r.repo.Create(models.NewSessionRecord(id, partition, target)); err != nil {
		r.logger.Warn("failed to record session", "session", id, "err", err)
	}
}

// Ended stores the outcome and produced file of e. It has the shape [OnEnd] expects.
func (r *Recorder) Ended(e Ended) {
	if r == nil || r.repo == nil {
		return
	}
	record, err := r.repo.Get(e.ID)
	if err != nil {
		r.logger.Warn("failed to load session record", "session", e.ID, "err", err)
		return
	}

	record.End(e.Outcome, time.Now())
	if e.File != "" {
		record.SetFile(e.File)
	}
	if err := r.repo.Update(record); err != nil {
		r.logger.Warn("failed to update session record", "session", e.ID, "err", err)
	}
}
