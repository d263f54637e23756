package app

import (
	"context"
	"fmt"
	"time"

	"quizrelay/internal/domain"
)

// LedgerStore abstracts the append-only answer ledger (in-memory, Postgres).
// Reads return records in ascending timestamp order.
type LedgerStore interface {
	Append(ctx context.Context, rec domain.AnswerRecord) error
	Since(ctx context.Context, cutoff time.Time) ([]domain.AnswerRecord, error)
	ByRun(ctx context.Context, runID string) ([]domain.AnswerRecord, error)
}

// Correlator matches inbound responses to outstanding prompts and appends the
// scored result to the ledger. It is the only writer of answer records.
type Correlator struct {
	prompts *PromptTable
	ledger  LedgerStore
	clock   func() time.Time
}

func NewCorrelator(prompts *PromptTable, ledger LedgerStore) *Correlator {
	return &Correlator{prompts: prompts, ledger: ledger, clock: time.Now}
}

// NewCorrelatorWithClock is for deterministic timestamps in tests.
func NewCorrelatorWithClock(prompts *PromptTable, ledger LedgerStore, now func() time.Time) *Correlator {
	return &Correlator{prompts: prompts, ledger: ledger, clock: now}
}

// HandleResponse scores one inbound response. Responses to unknown or expired
// prompts, and repeat responses from a responder already scored for the
// prompt, are dropped without error: late and replayed events are expected.
// A ledger write failure is surfaced; the response is then lost.
func (c *Correlator) HandleResponse(ctx context.Context, promptID, responderID, displayName string, chosenIndex int) error {
	correctIndex, runID, ok := c.prompts.Resolve(promptID, responderID)
	if !ok {
		return nil
	}

	rec := domain.AnswerRecord{
		ResponderID: responderID,
		DisplayName: displayName,
		Correct:     chosenIndex == correctIndex,
		RunID:       runID,
		AnsweredAt:  c.clock(),
	}
	if err := c.ledger.Append(ctx, rec); err != nil {
		return fmt.Errorf("append answer record: %w", err)
	}
	return nil
}
