package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/dumper/internal/models"
	"github.com/desertthunder/dumper/internal/shared"
)

// SessionRepository implements [models.Repository] for [models.SessionRecord] persistence.
type SessionRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.SessionRecord] = (*SessionRepository)(nil)

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a session record, assigning its sequence number (and an ID when unset).
func (r *SessionRepository) Create(record *models.SessionRecord) error {
	if record.ID() == "" {
		record.SetID(shared.GenerateID())
	}

	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "sessions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	record.SetSequence(sequence)

	query := `
		INSERT INTO sessions (id, sequence, partition, target, outcome, file, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		record.ID(), sequence, record.Partition(), record.Target(),
		string(record.Outcome()), record.File(), record.StartedAt(), nullTime(record.EndedAt()),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// Get retrieves a session record by ID.
func (r *SessionRepository) Get(id string) (*models.SessionRecord, error) {
	row := r.db.QueryRow(`
		SELECT id, sequence, partition, target, outcome, file, started_at, ended_at
		FROM sessions WHERE id = ?
	`, id)

	record, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return record, nil
}

// Update stores the outcome, file and end time of an existing record.
func (r *SessionRepository) Update(record *models.SessionRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	res, err := r.db.Exec(
		"UPDATE sessions SET outcome = ?, file = ?, ended_at = ? WHERE id = ?",
		string(record.Outcome()), record.File(), nullTime(record.EndedAt()), record.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return requireAffected(res, record.ID())
}

// Delete removes a session record.
func (r *SessionRepository) Delete(id string) error {
	res, err := r.db.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return requireAffected(res, id)
}

// List returns session records newest first.
//
// Supported criteria: "outcome" ([models.Outcome] or string), "target" (string), "limit" (int).
func (r *SessionRepository) List(criteria map[string]any) ([]*models.SessionRecord, error) {
	var (
		where []string
		args  []any
	)

	for key, value := range criteria {
		switch key {
		case "outcome":
			where = append(where, "outcome = ?")
			if o, ok := value.(models.Outcome); ok {
				value = string(o)
			}
			args = append(args, fmt.Sprint(value))
		case "target":
			where = append(where, "target = ?")
			args = append(args, value)
		case "limit":
		default:
			return nil, fmt.Errorf("%w: unsupported criteria %q", shared.ErrInvalidArgument, key)
		}
	}

	query := "SELECT id, sequence, partition, target, outcome, file, started_at, ended_at FROM sessions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY sequence DESC"
	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var records []*models.SessionRecord
	for rows.Next() {
		record, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(s scanner) (*models.SessionRecord, error) {
	var (
		id, partition, target, outcome, file string
		sequence                             int
		startedAt                            time.Time
		endedAt                              sql.NullTime
	)

	if err := s.Scan(&id, &sequence, &partition, &target, &outcome, &file, &startedAt, &endedAt); err != nil {
		return nil, err
	}

	record := models.NewSessionRecord(id, partition, target)
	record.SetSequence(sequence)
	record.SetOutcome(models.Outcome(outcome))
	record.SetFile(file)
	record.SetStartedAt(startedAt)
	if endedAt.Valid {
		record.SetEndedAt(&endedAt.Time)
	}
	return record, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id)
	}
	return nil
}
