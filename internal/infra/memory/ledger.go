package memory

import (
	"context"
	"sync"
	"time"

	"quizrelay/internal/domain"
)

// Ledger is an in-memory implementation of app.LedgerStore, used in tests and
// when no Postgres URL is configured. Appends hold the lock only long enough
// to grow the slice; reads copy, so queries never block concurrent appends
// beyond that.
type Ledger struct {
	mu      sync.RWMutex
	records []domain.AnswerRecord
}

func NewLedger() *Ledger {
	return &Ledger{}
}

func (l *Ledger) Append(_ context.Context, rec domain.AnswerRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
	return nil
}

// Since returns records with AnsweredAt at or after cutoff, oldest first.
// A zero cutoff returns everything.
func (l *Ledger) Since(_ context.Context, cutoff time.Time) ([]domain.AnswerRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.AnswerRecord, 0, len(l.records))
	for _, rec := range l.records {
		if !rec.AnsweredAt.Before(cutoff) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// ByRun returns records of one run, oldest first.
func (l *Ledger) ByRun(_ context.Context, runID string) ([]domain.AnswerRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.AnswerRecord, 0)
	for _, rec := range l.records {
		if rec.RunID == runID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Len reports the total number of records, for tests.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
