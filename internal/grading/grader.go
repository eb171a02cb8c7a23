// Package grading scores submitted quiz answers against stored questions.
// Grading is pure: no I/O, no failure modes for well-formed input. Validating
// that the submitted payload is a mapping at all is the caller's job.
package grading

import (
	"reflect"
	"strconv"
	"strings"
)

// Q is the minimal view of a question the grader needs.
type Q struct {
	Type          string
	CorrectAnswer any
	Explanation   string
}

// QuestionResult is the per-question outcome, in question order.
type QuestionResult struct {
	QuestionID    int    `json:"question_id" bson:"question_id"`
	Correct       bool   `json:"correct" bson:"correct"`
	CorrectAnswer any    `json:"correct_answer" bson:"correct_answer"`
	Explanation   string `json:"explanation" bson:"explanation"`
}

// AttemptResult aggregates one graded submission.
type AttemptResult struct {
	Score      int              `json:"score"`
	Total      int              `json:"total_questions"`
	Percentage float64          `json:"percentage"`
	Results    []QuestionResult `json:"results"`
}

// strategy decides whether a submitted answer matches the stored one.
type strategy func(correct, submitted any) bool

var strategies = map[string]strategy{
	"multiple_choice": exactMatch,
	"true_false":      booleanMatch,
	"short_answer":    shortAnswerMatch,
}

// Grade scores answers keyed by decimal question index ("0", "1", ...).
// A missing or null answer is simply incorrect, never an error. Grading the
// same inputs twice yields identical results.
func Grade(questions []Q, answers map[string]any) AttemptResult {
	results := make([]QuestionResult, 0, len(questions))
	score := 0
	for i, q := range questions {
		correct := false
		if sub, ok := answers[strconv.Itoa(i)]; ok && sub != nil {
			if match, known := strategies[q.Type]; known {
				correct = match(q.CorrectAnswer, sub)
			}
		}
		if correct {
			score++
		}
		results = append(results, QuestionResult{
			QuestionID:    i,
			Correct:       correct,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}

	total := len(questions)
	pct := 0.0
	if total > 0 {
		pct = 100 * float64(score) / float64(total)
	}
	return AttemptResult{Score: score, Total: total, Percentage: pct, Results: results}
}

func exactMatch(correct, submitted any) bool {
	cs, cok := correct.(string)
	ss, sok := submitted.(string)
	if cok && sok {
		return cs == ss
	}
	return reflect.DeepEqual(correct, submitted)
}

// booleanMatch normalizes both sides: booleans as-is, the string "true"
// (any case) maps to true, every other value to false.
func booleanMatch(correct, submitted any) bool {
	return toBool(correct) == toBool(submitted)
}

func toBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	default:
		return false
	}
}

// shortAnswerMatch compares strings case-insensitively with surrounding
// whitespace trimmed; anything else falls back to raw equality.
func shortAnswerMatch(correct, submitted any) bool {
	cs, cok := correct.(string)
	ss, sok := submitted.(string)
	if cok && sok {
		return strings.EqualFold(strings.TrimSpace(cs), strings.TrimSpace(ss))
	}
	return reflect.DeepEqual(correct, submitted)
}
