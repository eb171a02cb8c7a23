package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// decodeQuestionArray recovers a question array from free-form model output.
// Generative models tend to wrap JSON in prose, so the contract is: take the
// substring from the first '[' to the last ']' and parse that. All of the
// brittleness of that recovery lives here.
func decodeQuestionArray(text string) ([]Question, error) {
	start := strings.IndexByte(text, '[')
	end := strings.LastIndexByte(text, ']')
	if start < 0 || end < start {
		return nil, errors.New("no JSON array in output")
	}

	var qs []Question
	if err := json.Unmarshal([]byte(text[start:end+1]), &qs); err != nil {
		return nil, fmt.Errorf("parse question array: %w", err)
	}

	for i := range qs {
		normalizeAnswer(&qs[i])
		if err := qs[i].Validate(); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
	}
	return qs, nil
}

// normalizeAnswer maps stringly-typed true/false answers to booleans before
// validation. Models frequently quote the boolean even when asked not to.
func normalizeAnswer(q *Question) {
	if q.Type != TypeTrueFalse {
		return
	}
	if s, ok := q.CorrectAnswer.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true":
			q.CorrectAnswer = true
		case "false":
			q.CorrectAnswer = false
		}
	}
}
