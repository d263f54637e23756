package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"quizrelay/internal/app"
	"quizrelay/internal/domain"
	"quizrelay/internal/infra/memory"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func appendRecord(t *testing.T, ledger *memory.Ledger, responder, name string, correct bool, runID string, at time.Time) {
	t.Helper()
	err := ledger.Append(context.Background(), domain.AnswerRecord{
		ResponderID: responder,
		DisplayName: name,
		Correct:     correct,
		RunID:       runID,
		AnsweredAt:  at,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	ledger := memory.NewLedger()
	svc := app.NewLeaderboardServiceWithClock(ledger, func() time.Time { return testNow })

	// Alice: 2 correct, 1 wrong. Bob: 2 correct, 0 wrong. Carol: 1 correct.
	appendRecord(t, ledger, "u1", "Alice", true, "run-1", testNow)
	appendRecord(t, ledger, "u1", "Alice", true, "run-1", testNow)
	appendRecord(t, ledger, "u1", "Alice", false, "run-1", testNow)
	appendRecord(t, ledger, "u2", "Bob", true, "run-1", testNow)
	appendRecord(t, ledger, "u2", "Bob", true, "run-1", testNow)
	appendRecord(t, ledger, "u3", "Carol", true, "run-1", testNow)

	rows, err := svc.ByWindow(context.Background(), domain.WindowAllTime)
	if err != nil {
		t.Fatalf("by window: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	// Bob beats Alice on the wrong-count tie-break.
	if rows[0].DisplayName != "Bob" || rows[1].DisplayName != "Alice" || rows[2].DisplayName != "Carol" {
		t.Fatalf("unexpected order: %+v", rows)
	}
	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1], rows[i]
		if prev.Correct < cur.Correct {
			t.Fatalf("rows out of order at %d: %+v", i, rows)
		}
		if prev.Correct == cur.Correct && prev.Wrong > cur.Wrong {
			t.Fatalf("tie-break violated at %d: %+v", i, rows)
		}
	}
}

func TestLeaderboardScopedToRun(t *testing.T) {
	ledger := memory.NewLedger()
	svc := app.NewLeaderboardService(ledger)

	appendRecord(t, ledger, "u1", "Alice", true, "run-1", testNow)
	appendRecord(t, ledger, "u2", "Bob", true, "run-2", testNow)

	rows, err := svc.ByRun(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("by run: %v", err)
	}
	if len(rows) != 1 || rows[0].DisplayName != "Alice" {
		t.Fatalf("expected only run-1 records, got %+v", rows)
	}
}

func TestLeaderboardDayWindowIsInclusive(t *testing.T) {
	ledger := memory.NewLedger()
	svc := app.NewLeaderboardServiceWithClock(ledger, func() time.Time { return testNow })

	appendRecord(t, ledger, "u1", "OnBoundary", true, "run-1", testNow.Add(-24*time.Hour))
	appendRecord(t, ledger, "u2", "TooOld", true, "run-1", testNow.Add(-24*time.Hour-time.Second))

	rows, err := svc.ByWindow(context.Background(), domain.WindowDay)
	if err != nil {
		t.Fatalf("by window: %v", err)
	}
	if len(rows) != 1 || rows[0].DisplayName != "OnBoundary" {
		t.Fatalf("expected the record at exactly now-24h and nothing older, got %+v", rows)
	}
}

func TestLeaderboardEmptyWhenNoRecords(t *testing.T) {
	svc := app.NewLeaderboardService(memory.NewLedger())

	rows, err := svc.ByWindow(context.Background(), domain.WindowWeek)
	if err != nil {
		t.Fatalf("by window: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", rows)
	}

	rows, err = svc.ByRun(context.Background(), "no-such-run")
	if err != nil {
		t.Fatalf("by run: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty result for unknown run, got %+v", rows)
	}
}

func TestLeaderboardUnknownWindow(t *testing.T) {
	svc := app.NewLeaderboardService(memory.NewLedger())
	if _, err := svc.ByWindow(context.Background(), domain.Window("fortnight")); !errors.Is(err, domain.ErrUnknownWindow) {
		t.Fatalf("expected ErrUnknownWindow, got %v", err)
	}
}

func TestLeaderboardTruncatesToTop100(t *testing.T) {
	ledger := memory.NewLedger()
	svc := app.NewLeaderboardService(ledger)

	for i := 0; i < app.MaxLeaderboardRows+5; i++ {
		id := fmt.Sprintf("u%03d", i)
		appendRecord(t, ledger, id, id, true, "run-1", testNow)
	}

	rows, err := svc.ByRun(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("by run: %v", err)
	}
	if len(rows) != app.MaxLeaderboardRows {
		t.Fatalf("expected %d rows, got %d", app.MaxLeaderboardRows, len(rows))
	}
}

func TestLeaderboardKeepsMostRecentDisplayName(t *testing.T) {
	ledger := memory.NewLedger()
	svc := app.NewLeaderboardService(ledger)

	appendRecord(t, ledger, "u1", "OldName", true, "run-1", testNow)
	appendRecord(t, ledger, "u1", "NewName", false, "run-1", testNow.Add(time.Minute))

	rows, err := svc.ByRun(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("by run: %v", err)
	}
	if len(rows) != 1 || rows[0].DisplayName != "NewName" {
		t.Fatalf("expected the most recently seen name, got %+v", rows)
	}
	if rows[0].Correct != 1 || rows[0].Wrong != 1 {
		t.Fatalf("expected both answers tallied, got %+v", rows[0])
	}
}
