package grading

import (
	"reflect"
	"testing"
)

func sampleQuiz() []Q {
	return []Q{
		{Type: "multiple_choice", CorrectAnswer: "Option 1", Explanation: "first"},
		{Type: "true_false", CorrectAnswer: true, Explanation: "second"},
		{Type: "short_answer", CorrectAnswer: "Paris", Explanation: "third"},
	}
}

func TestGradeAllCorrect(t *testing.T) {
	res := Grade(sampleQuiz(), map[string]any{
		"0": "Option 1",
		"1": true,
		"2": "Paris",
	})
	if res.Score != 3 || res.Total != 3 || res.Percentage != 100 {
		t.Fatalf("got score=%d total=%d pct=%v", res.Score, res.Total, res.Percentage)
	}
	for i, r := range res.Results {
		if r.QuestionID != i {
			t.Errorf("result %d has question_id %d", i, r.QuestionID)
		}
		if !r.Correct {
			t.Errorf("result %d marked incorrect", i)
		}
	}
}

func TestGradeUnansweredQuestionsAreIncorrect(t *testing.T) {
	res := Grade(sampleQuiz(), map[string]any{"0": "Option 1"})
	if res.Score != 1 {
		t.Fatalf("score = %d, want 1", res.Score)
	}
	if res.Results[1].Correct || res.Results[2].Correct {
		t.Fatal("unanswered questions must be incorrect")
	}
	if res.Results[1].CorrectAnswer != true || res.Results[1].Explanation != "second" {
		t.Fatal("unanswered result must still carry correct answer and explanation")
	}
}

func TestGradeNullAnswerIsUnanswered(t *testing.T) {
	res := Grade(sampleQuiz(), map[string]any{"1": nil})
	if res.Results[1].Correct {
		t.Fatal("null answer must not be correct")
	}
}

func TestGradeBooleanNormalization(t *testing.T) {
	q := []Q{{Type: "true_false", CorrectAnswer: true, Explanation: "e"}}
	for _, sub := range []any{"TRUE", "true", true} {
		if res := Grade(q, map[string]any{"0": sub}); res.Score != 1 {
			t.Errorf("submitted %#v not accepted as true", sub)
		}
	}
	for _, sub := range []any{"false", "FALSE", false, "yes", 1.0} {
		if res := Grade(q, map[string]any{"0": sub}); res.Score != 0 {
			t.Errorf("submitted %#v wrongly accepted as true", sub)
		}
	}

	qf := []Q{{Type: "true_false", CorrectAnswer: false, Explanation: "e"}}
	for _, sub := range []any{"false", false, "anything else"} {
		if res := Grade(qf, map[string]any{"0": sub}); res.Score != 1 {
			t.Errorf("submitted %#v not accepted as false", sub)
		}
	}
}

func TestGradeShortAnswerTrimAndCaseFold(t *testing.T) {
	q := []Q{{Type: "short_answer", CorrectAnswer: "Paris", Explanation: "e"}}
	for _, sub := range []string{"Paris", " paris ", "PARIS", "paris"} {
		if res := Grade(q, map[string]any{"0": sub}); res.Score != 1 {
			t.Errorf("submitted %q not accepted", sub)
		}
	}
	if res := Grade(q, map[string]any{"0": "London"}); res.Score != 0 {
		t.Error("wrong answer accepted")
	}
}

func TestGradeMultipleChoiceExactMatch(t *testing.T) {
	q := []Q{{Type: "multiple_choice", CorrectAnswer: "Option 1", Explanation: "e"}}
	if res := Grade(q, map[string]any{"0": "option 1"}); res.Score != 0 {
		t.Error("multiple_choice must be exact, not case-insensitive")
	}
	if res := Grade(q, map[string]any{"0": []any{"Option 1"}}); res.Score != 0 {
		t.Error("non-string submission must not match")
	}
}

func TestGradeEmptyQuiz(t *testing.T) {
	res := Grade(nil, map[string]any{"0": "x"})
	if res.Total != 0 || res.Score != 0 || res.Percentage != 0 {
		t.Fatalf("got %+v, want zeroes", res)
	}
}

func TestGradeIdempotent(t *testing.T) {
	answers := map[string]any{"0": "Option 1", "1": "TRUE", "2": " paris "}
	first := Grade(sampleQuiz(), answers)
	second := Grade(sampleQuiz(), answers)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("grading not idempotent: %+v vs %+v", first, second)
	}
}
