package app

import "sync"

// promptEntry is the answer key for one outstanding prompt plus the set of
// responders already scored against it.
type promptEntry struct {
	correctIndex int
	runID        string
	scored       map[string]struct{}
}

// PromptTable maps transport-assigned prompt ids to their answer key and run.
// It lives only in process memory for the lifetime of a run: entries are
// dropped when the run is superseded, and a restart empties it (late
// responses to pre-restart prompts are then silently dropped).
type PromptTable struct {
	mu      sync.RWMutex
	entries map[string]*promptEntry
}

func NewPromptTable() *PromptTable {
	return &PromptTable{entries: make(map[string]*promptEntry)}
}

// Record stores the answer key for a freshly dispatched prompt.
func (t *PromptTable) Record(promptID string, correctIndex int, runID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[promptID] = &promptEntry{
		correctIndex: correctIndex,
		runID:        runID,
		scored:       make(map[string]struct{}),
	}
}

// Resolve consumes one scoring attempt for responderID against promptID.
// ok is false when the prompt is unknown or the responder was already scored
// for it; each responder is scored at most once per prompt.
func (t *PromptTable) Resolve(promptID, responderID string) (correctIndex int, runID string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, found := t.entries[promptID]
	if !found {
		return 0, "", false
	}
	if _, seen := entry.scored[responderID]; seen {
		return 0, "", false
	}
	entry.scored[responderID] = struct{}{}
	return entry.correctIndex, entry.runID, true
}

// Reset drops all entries. Called when a new run supersedes the old one.
func (t *PromptTable) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[string]*promptEntry)
}

// Len reports the number of outstanding prompts.
func (t *PromptTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
