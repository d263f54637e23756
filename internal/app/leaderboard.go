package app

import (
	"context"
	"sort"
	"time"

	"quizrelay/internal/domain"
)

// MaxLeaderboardRows caps every leaderboard query.
const MaxLeaderboardRows = 100

// LeaderboardSource answers ranked-leaderboard queries. Implemented by
// LeaderboardService and by the Redis cache that can sit in front of it.
type LeaderboardSource interface {
	ByWindow(ctx context.Context, w domain.Window) ([]domain.LeaderboardRow, error)
	ByRun(ctx context.Context, runID string) ([]domain.LeaderboardRow, error)
}

// LeaderboardService recomputes rankings from the ledger on every query.
type LeaderboardService struct {
	ledger LedgerStore
	clock  func() time.Time
}

func NewLeaderboardService(ledger LedgerStore) *LeaderboardService {
	return &LeaderboardService{ledger: ledger, clock: time.Now}
}

// NewLeaderboardServiceWithClock is for deterministic window cutoffs in tests.
func NewLeaderboardServiceWithClock(ledger LedgerStore, now func() time.Time) *LeaderboardService {
	return &LeaderboardService{ledger: ledger, clock: now}
}

// ByWindow ranks responders over a relative time window. The cutoff is
// inclusive: a record at exactly now minus the window duration counts.
func (s *LeaderboardService) ByWindow(ctx context.Context, w domain.Window) ([]domain.LeaderboardRow, error) {
	d, ok := w.Duration()
	if !ok {
		return nil, domain.ErrUnknownWindow
	}
	var cutoff time.Time
	if d > 0 {
		cutoff = s.clock().Add(-d)
	}
	records, err := s.ledger.Since(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	return rank(records), nil
}

// ByRun ranks responders for one distribution run.
func (s *LeaderboardService) ByRun(ctx context.Context, runID string) ([]domain.LeaderboardRow, error) {
	records, err := s.ledger.ByRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	return rank(records), nil
}

type tally struct {
	displayName string
	correct     int
	wrong       int
}

// rank groups records by responder and orders the result by correct count
// descending, then wrong count ascending, then display name for stability.
// Records arrive in ascending timestamp order, so the last write of
// displayName is the most recently seen name for that responder.
func rank(records []domain.AnswerRecord) []domain.LeaderboardRow {
	byResponder := make(map[string]*tally)
	order := make([]string, 0)
	for _, rec := range records {
		t, ok := byResponder[rec.ResponderID]
		if !ok {
			t = &tally{}
			byResponder[rec.ResponderID] = t
			order = append(order, rec.ResponderID)
		}
		t.displayName = rec.DisplayName
		if rec.Correct {
			t.correct++
		} else {
			t.wrong++
		}
	}

	rows := make([]domain.LeaderboardRow, 0, len(order))
	for _, id := range order {
		t := byResponder[id]
		rows = append(rows, domain.LeaderboardRow{
			DisplayName: t.displayName,
			Correct:     t.correct,
			Wrong:       t.wrong,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Correct != rows[j].Correct {
			return rows[i].Correct > rows[j].Correct
		}
		if rows[i].Wrong != rows[j].Wrong {
			return rows[i].Wrong < rows[j].Wrong
		}
		return rows[i].DisplayName < rows[j].DisplayName
	})

	if len(rows) > MaxLeaderboardRows {
		rows = rows[:MaxLeaderboardRows]
	}
	return rows
}
