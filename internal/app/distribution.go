package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"quizrelay/internal/domain"
	"quizrelay/internal/question"
)

// PromptSender is the transport boundary: it turns a canonical question into
// an interactive prompt visible to the audience and returns the prompt id the
// transport assigned to it.
type PromptSender interface {
	CreatePrompt(ctx context.Context, q domain.Question) (promptID string, err error)
}

// RowResult explains why one row was skipped.
type RowResult struct {
	SequenceNo int    `json:"sequence_no"`
	Reason     string `json:"reason"`
}

// Summary reports the outcome of one distribution batch.
type Summary struct {
	RunID      string      `json:"runId"`
	Dispatched int         `json:"dispatched"`
	Skipped    int         `json:"skipped"`
	Rows       []RowResult `json:"rows,omitempty"`
}

// DistributionService is the dispatch engine: it validates rows, creates one
// prompt per accepted question through the transport, and records the answer
// key of every prompt it dispatches.
type DistributionService struct {
	runs      *RunRegistry
	prompts   *PromptTable
	sender    PromptSender
	operators map[string]struct{}
	pace      time.Duration
	sleep     func(time.Duration)
}

// NewDistributionService wires the engine. operators is the fixed allow-list
// of caller ids permitted to start a distribution; pace is the minimum
// interval between successive prompt creations.
func NewDistributionService(runs *RunRegistry, prompts *PromptTable, sender PromptSender, operators []string, pace time.Duration) *DistributionService {
	allowed := make(map[string]struct{}, len(operators))
	for _, op := range operators {
		allowed[op] = struct{}{}
	}
	return &DistributionService{
		runs:      runs,
		prompts:   prompts,
		sender:    sender,
		operators: allowed,
		pace:      pace,
		sleep:     time.Sleep,
	}
}

// SetSleepFunc replaces the pacing sleep, for tests.
func (s *DistributionService) SetSleepFunc(fn func(time.Duration)) {
	s.sleep = fn
}

// Distribute runs one batch: start a fresh run, then validate and dispatch
// each row in order. Row-level failures are counted and the batch continues;
// the whole batch fails only on an unauthorized caller, a canceled context,
// or a transport failure before any prompt has succeeded.
func (s *DistributionService) Distribute(ctx context.Context, operatorID string, rows []domain.RawRow) (Summary, error) {
	if _, ok := s.operators[operatorID]; !ok {
		return Summary{}, domain.ErrUnauthorized
	}

	run := s.runs.StartRun()
	// Superseded run's prompts stop resolving from here on.
	s.prompts.Reset()

	summary := Summary{RunID: run.ID}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		q, err := question.Validate(row)
		if err != nil {
			summary.Skipped++
			summary.Rows = append(summary.Rows, RowResult{SequenceNo: row.SequenceNo, Reason: err.Error()})
			log.Printf("distribution %s: row %d rejected: %v", run.ID, row.SequenceNo, err)
			continue
		}

		if summary.Dispatched > 0 {
			s.sleep(s.pace)
			if err := ctx.Err(); err != nil {
				return summary, err
			}
		}

		promptID, err := s.sender.CreatePrompt(ctx, q)
		if err != nil {
			if summary.Dispatched == 0 {
				// Nothing has gone out yet: treat as transport setup failure.
				return summary, fmt.Errorf("%w: %v", domain.ErrTransport, err)
			}
			summary.Skipped++
			summary.Rows = append(summary.Rows, RowResult{SequenceNo: row.SequenceNo, Reason: "prompt creation failed: " + err.Error()})
			log.Printf("distribution %s: row %d prompt creation failed: %v", run.ID, row.SequenceNo, err)
			continue
		}

		s.prompts.Record(promptID, q.CorrectIndex, run.ID)
		summary.Dispatched++
	}

	log.Printf("distribution %s: dispatched=%d skipped=%d", run.ID, summary.Dispatched, summary.Skipped)
	return summary, nil
}
