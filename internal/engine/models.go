package engine

import (
	"errors"
	"fmt"
)

// Question types understood by the engine and the grader.
const (
	TypeMultipleChoice = "multiple_choice"
	TypeTrueFalse      = "true_false"
	TypeShortAnswer    = "short_answer"
)

// DefaultQuestionTypes is the mix used when the caller does not request one.
var DefaultQuestionTypes = []string{TypeMultipleChoice, TypeTrueFalse, TypeShortAnswer}

// Question is a single generated quiz question. CorrectAnswer holds a string
// for multiple_choice and short_answer questions and a bool for true_false.
type Question struct {
	Type          string   `json:"type" bson:"type"`
	Question      string   `json:"question" bson:"question"`
	Options       []string `json:"options,omitempty" bson:"options,omitempty"`
	CorrectAnswer any      `json:"correct_answer" bson:"correct_answer"`
	Explanation   string   `json:"explanation" bson:"explanation"`
}

// Validate checks the Question shape invariants.
func (q Question) Validate() error {
	if q.Question == "" {
		return errors.New("empty question text")
	}
	if q.Explanation == "" {
		return errors.New("empty explanation")
	}
	switch q.Type {
	case TypeMultipleChoice:
		ans, ok := q.CorrectAnswer.(string)
		if !ok {
			return fmt.Errorf("multiple_choice correct_answer must be a string, got %T", q.CorrectAnswer)
		}
		if len(q.Options) < 2 {
			return fmt.Errorf("multiple_choice needs at least 2 options, got %d", len(q.Options))
		}
		hits := 0
		for _, o := range q.Options {
			if o == ans {
				hits++
			}
		}
		if hits != 1 {
			return fmt.Errorf("options must contain the correct answer exactly once, found %d", hits)
		}
	case TypeTrueFalse:
		if _, ok := q.CorrectAnswer.(bool); !ok {
			return fmt.Errorf("true_false correct_answer must be a bool, got %T", q.CorrectAnswer)
		}
	case TypeShortAnswer:
		if _, ok := q.CorrectAnswer.(string); !ok {
			return fmt.Errorf("short_answer correct_answer must be a string, got %T", q.CorrectAnswer)
		}
	default:
		return fmt.Errorf("unknown question type %q", q.Type)
	}
	return nil
}
