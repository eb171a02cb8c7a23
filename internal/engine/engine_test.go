package engine

import (
	"context"
	"errors"
	"testing"
)

type stubSource struct {
	qs    []Question
	err   error
	calls int
}

func (s *stubSource) Generate(_ context.Context, _ string, _ int, _ []string) ([]Question, error) {
	s.calls++
	return s.qs, s.err
}

func remoteBatch(n int) []Question {
	qs := make([]Question, n)
	for i := range qs {
		qs[i] = Question{
			Type:          TypeShortAnswer,
			Question:      "remote question",
			CorrectAnswer: "answer",
			Explanation:   "remote explanation",
		}
	}
	return qs
}

func TestEngineUsesRemoteWhenSufficient(t *testing.T) {
	stub := &stubSource{qs: remoteBatch(5)}
	e := New(stub)

	qs := e.GenerateQuestions(context.Background(), "content", 3, DefaultQuestionTypes)
	if len(qs) != 3 {
		t.Fatalf("expected truncation to 3, got %d", len(qs))
	}
	if qs[0].Explanation != "remote explanation" {
		t.Fatal("expected remote-sourced questions")
	}
	if stub.calls != 1 {
		t.Fatalf("remote tier called %d times, want 1", stub.calls)
	}
}

func TestEngineFallsBackOnRemoteError(t *testing.T) {
	stub := &stubSource{err: errors.New("boom")}
	e := New(stub)

	qs := e.GenerateQuestions(context.Background(), "mitosis enzyme mitosis membrane", 4, DefaultQuestionTypes)
	if len(qs) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(qs))
	}
	if stub.calls != 1 {
		t.Fatalf("remote tier called %d times, want exactly 1 (no retries)", stub.calls)
	}
}

func TestEngineFallsBackOnInsufficientQuestions(t *testing.T) {
	stub := &stubSource{qs: remoteBatch(2)}
	e := New(stub)

	qs := e.GenerateQuestions(context.Background(), "gravity inertia momentum velocity", 5, DefaultQuestionTypes)
	if len(qs) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(qs))
	}
	// No partial merge: the short remote batch is discarded entirely.
	for i, q := range qs {
		if q.Explanation == "remote explanation" {
			t.Fatalf("question %d is remote-sourced in a fallback quiz", i)
		}
	}
}

func TestEngineWithoutRemoteTier(t *testing.T) {
	e := New(nil)
	qs := e.GenerateQuestions(context.Background(), "osmosis diffusion osmosis transport", 3, DefaultQuestionTypes)
	if len(qs) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(qs))
	}
}

func TestEngineDefaults(t *testing.T) {
	e := New(nil)
	qs := e.GenerateQuestions(context.Background(), "entropy enthalpy entropy energy", 0, nil)
	if len(qs) != DefaultNumQuestions {
		t.Fatalf("expected default of %d questions, got %d", DefaultNumQuestions, len(qs))
	}
}

func TestNewFromConfigWithoutKeyDisablesRemote(t *testing.T) {
	e := NewFromConfig(RemoteConfig{})
	if e.remote != nil {
		t.Fatal("expected remote tier to be disabled without an API key")
	}
}
