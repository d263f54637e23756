package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quizrelay/internal/app"
	"quizrelay/internal/domain"
)

// AdminHandler exposes the operator command surface: starting a distribution
// batch and querying leaderboards.
type AdminHandler struct {
	distributor  *app.DistributionService
	leaderboards app.LeaderboardSource
}

func NewAdminHandler(distributor *app.DistributionService, leaderboards app.LeaderboardSource) *AdminHandler {
	return &AdminHandler{distributor: distributor, leaderboards: leaderboards}
}

// Distribute handles POST /distribute. The caller identifies itself with the
// X-Operator-Id header and posts a JSON array of raw question-bank rows.
func (h *AdminHandler) Distribute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	operatorID := r.Header.Get("X-Operator-Id")
	var rows []domain.RawRow
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		http.Error(w, "invalid rows payload", http.StatusBadRequest)
		return
	}

	summary, err := h.distributor.Distribute(r.Context(), operatorID, rows)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	case errors.Is(err, domain.ErrTransport):
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	case err != nil:
		log.Printf("distribute failed: %v", err)
		http.Error(w, "distribution aborted", http.StatusInternalServerError)
		return
	}

	writeJSON(w, summary)
}

// Leaderboard handles GET /leaderboard?run=<id> or ?window=<day|week|month|all>.
// A run id takes precedence when both are supplied. No parameter means
// all-time, matching the default ranking of the original command.
func (h *AdminHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	if runID := r.URL.Query().Get("run"); runID != "" {
		rows, err := h.leaderboards.ByRun(ctx, runID)
		if err != nil {
			log.Printf("leaderboard by run %s failed: %v", runID, err)
			http.Error(w, "leaderboard unavailable", http.StatusInternalServerError)
			return
		}
		writeJSON(w, rows)
		return
	}

	name := r.URL.Query().Get("window")
	if name == "" {
		name = "all"
	}
	window, ok := domain.ParseWindow(name)
	if !ok {
		http.Error(w, "unknown window", http.StatusBadRequest)
		return
	}
	rows, err := h.leaderboards.ByWindow(ctx, window)
	if err != nil {
		log.Printf("leaderboard by window %s failed: %v", window, err)
		http.Error(w, "leaderboard unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
