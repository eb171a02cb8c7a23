package engine

import (
	"fmt"
	"math/rand"
)

// FallbackSource deterministically synthesizes questions from extracted
// concepts. It exists to guarantee availability when the remote tier cannot
// deliver, not to produce pedagogically strong questions, and it never fails.
//
// Known limitation, kept on purpose: every true/false question it produces
// asserts a concept is important, so the correct answer is always true.
type FallbackSource struct{}

// Generate returns exactly n questions. Question i gets type
// types[i mod len(types)] anchored on concepts[i mod len(concepts)].
func (FallbackSource) Generate(concepts []string, n int, types []string) []Question {
	if len(types) == 0 {
		types = DefaultQuestionTypes
	}
	if len(concepts) == 0 {
		concepts = []string{"the material"}
	}
	if len(concepts) < 4 {
		// Repeat the list so distractor slots never collapse onto the anchor index.
		rep := make([]string, 0, len(concepts)*4)
		for i := 0; i < 4; i++ {
			rep = append(rep, concepts...)
		}
		concepts = rep
	}

	qs := make([]Question, 0, n)
	for i := 0; i < n; i++ {
		concept := concepts[i%len(concepts)]
		switch types[i%len(types)] {
		case TypeTrueFalse:
			qs = append(qs, Question{
				Type:          TypeTrueFalse,
				Question:      fmt.Sprintf("The concept '%s' is important in this context.", concept),
				CorrectAnswer: true,
				Explanation:   fmt.Sprintf("The material specifically mentions '%s' as important.", concept),
			})
		case TypeShortAnswer:
			qs = append(qs, Question{
				Type:          TypeShortAnswer,
				Question:      fmt.Sprintf("Explain the significance of '%s' in this context.", concept),
				CorrectAnswer: fmt.Sprintf("%s is a key concept that...", concept),
				Explanation:   fmt.Sprintf("A good answer would explain how %s relates to the main topic.", concept),
			})
		default: // multiple_choice
			options := []string{concept}
			for j := 0; j < 3; j++ {
				options = append(options, concepts[(i+j+1)%len(concepts)])
			}
			rand.Shuffle(len(options), func(a, b int) {
				options[a], options[b] = options[b], options[a]
			})
			qs = append(qs, Question{
				Type:          TypeMultipleChoice,
				Question:      "Which of these is most relevant to the study material?",
				Options:       options,
				CorrectAnswer: concept,
				Explanation:   fmt.Sprintf("%s was identified as a key concept in the material.", concept),
			})
		}
	}
	return qs
}
