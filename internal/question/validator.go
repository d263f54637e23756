package question

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"quizrelay/internal/domain"
)

// placeholders are secondary-language cell values that mean "no translation".
var placeholders = map[string]struct{}{
	"-":   {},
	"--":  {},
	"n/a": {},
}

// answerRules maps answer-cell content to an option index. Rules are
// evaluated in order and the first rule whose glyph occurs in the cell wins,
// so the Amharic ordinals come first: a cell like "መልስ፦ ለ" contains both the
// answer glyph and letters of the word for "answer", and only priority
// ordering resolves it correctly.
var answerRules = []struct {
	glyph string
	index int
}{
	{"ሀ", 0},
	{"ለ", 1},
	{"ሐ", 2},
	{"መ", 3},
	{"a", 0},
	{"b", 1},
	{"c", 2},
	{"d", 3},
}

var optionLetters = [domain.OptionCount]string{"A", "B", "C", "D"}

// Validate turns one raw question-bank row into a canonical Question or
// rejects it with a *domain.ValidationError naming the offending field.
func Validate(row domain.RawRow) (domain.Question, error) {
	prompt := joinBilingual(row.QuestionPrimary, row.QuestionSecondary)
	if prompt == "" {
		return domain.Question{}, &domain.ValidationError{Field: "question", Reason: "empty after trimming"}
	}
	if n := utf8.RuneCountInString(prompt); n > domain.MaxPromptLen {
		return domain.Question{}, &domain.ValidationError{
			Field:  "question",
			Reason: fmt.Sprintf("combined text is %d characters, limit %d", n, domain.MaxPromptLen),
		}
	}

	var options [domain.OptionCount]string
	for i := 0; i < domain.OptionCount; i++ {
		opt := joinBilingual(row.OptionsPrimary[i], row.OptionsSecondary[i])
		if opt == "" {
			return domain.Question{}, &domain.ValidationError{
				Field:  "option " + optionLetters[i],
				Reason: "empty after trimming",
			}
		}
		if n := utf8.RuneCountInString(opt); n > domain.MaxOptionLen {
			return domain.Question{}, &domain.ValidationError{
				Field:  "option " + optionLetters[i],
				Reason: fmt.Sprintf("combined text is %d characters, limit %d", n, domain.MaxOptionLen),
			}
		}
		options[i] = opt
	}

	correct, err := answerIndex(row.AnswerPrimary, row.AnswerSecondary)
	if err != nil {
		return domain.Question{}, err
	}

	return domain.Question{
		Prompt:       prompt,
		Options:      options,
		CorrectIndex: correct,
		Explanation:  joinBilingual(row.ExplanationPrimary, row.ExplanationSecondary),
	}, nil
}

// joinBilingual concatenates the primary and secondary language variants of a
// field, separated by a blank line. A missing or placeholder secondary leaves
// just the primary; a missing primary leaves just the secondary.
func joinBilingual(primary, secondary string) string {
	p := strings.TrimSpace(primary)
	s := strings.TrimSpace(secondary)
	if _, ok := placeholders[strings.ToLower(s)]; ok {
		s = ""
	}
	switch {
	case p == "":
		return s
	case s == "":
		return p
	}
	return p + "\n\n" + s
}

// answerIndex resolves the correct option index. A primary-language letter
// A-D maps directly; otherwise the secondary-language cell is matched against
// the ordered rule table. A row whose answer matches no rule is rejected:
// guessing an index would silently corrupt the answer key.
func answerIndex(primary, secondary string) (int, error) {
	p := strings.ToUpper(strings.TrimSpace(primary))
	for i, letter := range optionLetters {
		if p == letter {
			return i, nil
		}
	}

	s := strings.ToLower(strings.TrimSpace(secondary))
	if s != "" {
		for _, rule := range answerRules {
			if strings.Contains(s, rule.glyph) {
				return rule.index, nil
			}
		}
	}
	return 0, &domain.ValidationError{Field: "answer", Reason: "no recognized answer letter"}
}
