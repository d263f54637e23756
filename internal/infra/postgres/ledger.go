package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizrelay/internal/domain"
)

// Ledger stores answer records in the answer_log table. Inserts are single
// statements and reads are plain SELECTs, so appends and leaderboard scans
// never block each other beyond row-level locking.
type Ledger struct {
	pool *pgxpool.Pool
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

func (l *Ledger) Append(ctx context.Context, rec domain.AnswerRecord) error {
	_, err := l.pool.Exec(ctx,
		`INSERT INTO answer_log (responder_id, display_name, is_correct, run_id, answered_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.ResponderID, rec.DisplayName, rec.Correct, rec.RunID, rec.AnsweredAt,
	)
	if err != nil {
		return fmt.Errorf("insert answer record: %w", err)
	}
	return nil
}

// Since returns records with answered_at at or after cutoff, oldest first.
// The inclusive >= matches the window semantics of the aggregator.
func (l *Ledger) Since(ctx context.Context, cutoff time.Time) ([]domain.AnswerRecord, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT responder_id, display_name, is_correct, run_id, answered_at
		 FROM answer_log WHERE answered_at >= $1 ORDER BY answered_at, id`,
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("query ledger since %s: %w", cutoff, err)
	}
	return scanRecords(rows)
}

func (l *Ledger) ByRun(ctx context.Context, runID string) ([]domain.AnswerRecord, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT responder_id, display_name, is_correct, run_id, answered_at
		 FROM answer_log WHERE run_id = $1 ORDER BY answered_at, id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query ledger for run %s: %w", runID, err)
	}
	return scanRecords(rows)
}

func scanRecords(rows pgx.Rows) ([]domain.AnswerRecord, error) {
	defer rows.Close()
	out := make([]domain.AnswerRecord, 0)
	for rows.Next() {
		var rec domain.AnswerRecord
		if err := rows.Scan(&rec.ResponderID, &rec.DisplayName, &rec.Correct, &rec.RunID, &rec.AnsweredAt); err != nil {
			return nil, fmt.Errorf("scan answer record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate answer records: %w", err)
	}
	return out, nil
}
