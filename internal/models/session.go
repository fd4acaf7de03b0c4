package models

import (
	"fmt"
	"time"
)

// Outcome records how a stream session ended.
type Outcome string

const (
	OutcomeRunning    Outcome = ""
	OutcomeFinished   Outcome = "finished"
	OutcomeFailed     Outcome = "failed"
	OutcomeSuperseded Outcome = "superseded"
	OutcomeReset      Outcome = "reset"
)

// Valid reports whether o is a known outcome.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeRunning, OutcomeFinished, OutcomeFailed, OutcomeSuperseded, OutcomeReset:
		return true
	}
	return false
}

func (o Outcome) String() string {
	if o == OutcomeRunning {
		return "running"
	}
	return string(o)
}

// SessionRecord is the persisted history entry of one stream session.
type SessionRecord struct {
	id        string
	sequence  int
	partition string
	target    string
	outcome   Outcome
	file      string
	startedAt time.Time
	endedAt   *time.Time
}

var _ Model = (*SessionRecord)(nil)

// NewSessionRecord creates a running session record started now.
func NewSessionRecord(id, partition, target string) *SessionRecord {
	return &SessionRecord{
		id:        id,
		partition: partition,
		target:    target,
		startedAt: time.Now().UTC(),
	}
}

func (s *SessionRecord) ID() string           { return s.id }
func (s *SessionRecord) Sequence() int        { return s.sequence }
func (s *SessionRecord) Partition() string    { return s.partition }
func (s *SessionRecord) Target() string       { return s.target }
func (s *SessionRecord) Outcome() Outcome     { return s.outcome }
func (s *SessionRecord) File() string         { return s.file }
func (s *SessionRecord) StartedAt() time.Time { return s.startedAt }
func (s *SessionRecord) EndedAt() *time.Time  { return s.endedAt }
func (s *SessionRecord) CreatedAt() time.Time { return s.startedAt }

// UpdatedAt is the end time for finished sessions and the start time otherwise.
func (s *SessionRecord) UpdatedAt() time.Time {
	if s.endedAt != nil {
		return *s.endedAt
	}
	return s.startedAt
}

func (s *SessionRecord) SetID(id string)          { s.id = id }
func (s *SessionRecord) SetSequence(seq int)      { s.sequence = seq }
func (s *SessionRecord) SetStartedAt(t time.Time) { s.startedAt = t }
func (s *SessionRecord) SetEndedAt(t *time.Time)  { s.endedAt = t }
func (s *SessionRecord) SetFile(file string)      { s.file = file }
func (s *SessionRecord) SetOutcome(o Outcome)     { s.outcome = o }

// End marks the session finished with outcome o at time t.
func (s *SessionRecord) End(o Outcome, t time.Time) {
	s.outcome = o
	t = t.UTC()
	s.endedAt = &t
}

// Validate checks required fields.
func (s *SessionRecord) Validate() error {
	if s.id == "" {
		return fmt.Errorf("session id is required")
	}
	if s.target == "" {
		return fmt.Errorf("session target is required")
	}
	if !s.outcome.Valid() {
		return fmt.Errorf("unknown session outcome %q", s.outcome)
	}
	return nil
}
