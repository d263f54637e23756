package app

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"quizrelay/internal/domain"
)

// RunRegistry tracks the single currently-active distribution run. It is
// single-writer (the dispatch engine) and multi-reader; readers may observe a
// stale run briefly, which is harmless because every prompt mapping carries
// its own run id.
type RunRegistry struct {
	mu      sync.RWMutex
	current domain.Run
	has     bool
	clock   func() time.Time
}

func NewRunRegistry() *RunRegistry {
	return &RunRegistry{clock: time.Now}
}

// NewRunRegistryWithClock is for deterministic timestamps in tests.
func NewRunRegistryWithClock(now func() time.Time) *RunRegistry {
	return &RunRegistry{clock: now}
}

// StartRun activates a fresh run, implicitly deactivating the prior one.
// Ledger data of superseded runs is untouched.
func (r *RunRegistry) StartRun() domain.Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = domain.Run{
		ID:        uuid.NewString(),
		CreatedAt: r.clock(),
		Active:    true,
	}
	r.has = true
	return r.current
}

// CurrentRun returns the active run, if any. After a restart there is none
// until the next ingestion starts one.
func (r *RunRegistry) CurrentRun() (domain.Run, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current, r.has
}
