package domain

import "time"

// Limits on canonical question content, enforced by the validator before dispatch.
const (
	MaxPromptLen = 300
	MaxOptionLen = 100
	OptionCount  = 4
)

// RawRow is one row of the ingested question bank, as handed over by the
// upload surface. Fields carry both languages; secondary fields may be empty
// or hold a placeholder.
type RawRow struct {
	SequenceNo           int                 `json:"sequence_no"`
	QuestionPrimary      string              `json:"question_primary"`
	QuestionSecondary    string              `json:"question_secondary"`
	OptionsPrimary       [OptionCount]string `json:"options_primary"`
	OptionsSecondary     [OptionCount]string `json:"options_secondary"`
	ExplanationPrimary   string              `json:"explanation_primary"`
	ExplanationSecondary string              `json:"explanation_secondary"`
	AnswerPrimary        string              `json:"answer_primary"`
	AnswerSecondary      string              `json:"answer_secondary"`
}

// Question is a canonical, dispatch-ready question. Prompt, options, and
// explanation already hold the joined bilingual text.
type Question struct {
	Prompt       string              `json:"prompt"`
	Options      [OptionCount]string `json:"options"`
	CorrectIndex int                 `json:"correctIndex"`
	Explanation  string              `json:"explanation,omitempty"`
}

// Run is one distribution pass of a question set. At most one run is active
// at a time; historical runs stay queryable through the ledger.
type Run struct {
	ID        string
	CreatedAt time.Time
	Active    bool
}

// AnswerRecord is one scored response. Append-only: once written it is never
// updated or deleted, and it is the sole source of truth for leaderboards.
type AnswerRecord struct {
	ResponderID string
	DisplayName string
	Correct     bool
	RunID       string
	AnsweredAt  time.Time
}

// LeaderboardRow is a derived ranking entry, recomputed on every query.
type LeaderboardRow struct {
	DisplayName string `json:"name"`
	Correct     int    `json:"correct"`
	Wrong       int    `json:"wrong"`
}
