package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quizrelay/internal/app"
	"quizrelay/internal/domain"
	"quizrelay/internal/infra/memory"
)

type stubSender struct {
	calls int
}

func (s *stubSender) CreatePrompt(_ context.Context, _ domain.Question) (string, error) {
	s.calls++
	return fmt.Sprintf("prompt-%d", s.calls), nil
}

func newAdminServer(t *testing.T) (*httptest.Server, *memory.Ledger, *app.PromptTable) {
	t.Helper()
	runs := app.NewRunRegistry()
	prompts := app.NewPromptTable()
	ledger := memory.NewLedger()

	distributor := app.NewDistributionService(runs, prompts, &stubSender{}, []string{"op-1"}, time.Second)
	distributor.SetSleepFunc(func(time.Duration) {})
	admin := NewAdminHandler(distributor, app.NewLeaderboardService(ledger))

	mux := http.NewServeMux()
	mux.HandleFunc("/distribute", admin.Distribute)
	mux.HandleFunc("/leaderboard", admin.Leaderboard)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, ledger, prompts
}

func rowsJSON() string {
	return `[
		{"sequence_no":1,"question_primary":"First?","options_primary":["a","b","c","d"],"answer_primary":"A"},
		{"sequence_no":2,"question_primary":"Second?","options_primary":["a","b","c",""],"answer_primary":"B"},
		{"sequence_no":3,"question_primary":"Third?","options_primary":["a","b","c","d"],"answer_primary":"D"}
	]`
}

func TestDistributeEndpoint(t *testing.T) {
	server, _, prompts := newAdminServer(t)

	req, _ := http.NewRequest(http.MethodPost, server.URL+"/distribute", strings.NewReader(rowsJSON()))
	req.Header.Set("X-Operator-Id", "op-1")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var summary app.Summary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Dispatched != 2 || summary.Skipped != 1 {
		t.Fatalf("expected 2 dispatched / 1 skipped, got %+v", summary)
	}
	if prompts.Len() != 2 {
		t.Fatalf("expected 2 prompt mappings, got %d", prompts.Len())
	}
}

func TestDistributeEndpointRejectsUnknownOperator(t *testing.T) {
	server, _, _ := newAdminServer(t)

	req, _ := http.NewRequest(http.MethodPost, server.URL+"/distribute", strings.NewReader(rowsJSON()))
	req.Header.Set("X-Operator-Id", "stranger")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestDistributeEndpointRejectsBadPayload(t *testing.T) {
	server, _, _ := newAdminServer(t)

	req, _ := http.NewRequest(http.MethodPost, server.URL+"/distribute", strings.NewReader("not json"))
	req.Header.Set("X-Operator-Id", "op-1")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	server, ledger, _ := newAdminServer(t)

	now := time.Now()
	_ = ledger.Append(context.Background(), domain.AnswerRecord{
		ResponderID: "u1", DisplayName: "Alice", Correct: true, RunID: "run-1", AnsweredAt: now,
	})
	_ = ledger.Append(context.Background(), domain.AnswerRecord{
		ResponderID: "u2", DisplayName: "Bob", Correct: false, RunID: "run-2", AnsweredAt: now,
	})

	resp, err := http.Get(server.URL + "/leaderboard?run=run-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var rows []domain.LeaderboardRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		t.Fatalf("decode rows: %v", err)
	}
	if len(rows) != 1 || rows[0].DisplayName != "Alice" || rows[0].Correct != 1 {
		t.Fatalf("expected Alice's run-1 row, got %+v", rows)
	}

	resp2, err := http.Get(server.URL + "/leaderboard?window=day")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp2.Body.Close()
	var windowed []domain.LeaderboardRow
	if err := json.NewDecoder(resp2.Body).Decode(&windowed); err != nil {
		t.Fatalf("decode rows: %v", err)
	}
	if len(windowed) != 2 {
		t.Fatalf("expected both responders in the day window, got %+v", windowed)
	}
}

func TestLeaderboardEndpointUnknownWindow(t *testing.T) {
	server, _, _ := newAdminServer(t)

	resp, err := http.Get(server.URL + "/leaderboard?window=century")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
