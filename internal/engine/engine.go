package engine

import (
	"context"
	"log"
)

// DefaultNumQuestions is used when the caller does not request a count.
const DefaultNumQuestions = 5

// maxConcepts bounds how many keywords the fallback tier draws from.
const maxConcepts = 10

// Source is a question-generation tier.
type Source interface {
	Generate(ctx context.Context, content string, n int, types []string) ([]Question, error)
}

// Engine tries the remote tier once and falls back to local synthesis. Each
// tier runs at most once per call; a quiz is either fully remote-sourced or
// fully fallback-sourced.
type Engine struct {
	remote   Source // nil when the remote tier is disabled
	fallback FallbackSource
}

// New builds an Engine around a remote tier. A nil remote disables the tier
// entirely; generation then always uses the fallback.
func New(remote Source) *Engine {
	return &Engine{remote: remote}
}

// NewFromConfig wires the remote tier from configuration. Without an API key
// the remote tier is skipped and only fallback questions are available.
func NewFromConfig(cfg RemoteConfig) *Engine {
	if cfg.APIKey == "" {
		log.Printf("engine: no API key configured, remote question source disabled")
		return New(nil)
	}
	return New(NewRemoteSource(cfg))
}

// GenerateQuestions returns exactly n questions for the given content. It
// cannot fail: any remote-tier problem (unavailable, malformed, fewer
// questions than requested) is logged and absorbed by the fallback tier.
func (e *Engine) GenerateQuestions(ctx context.Context, content string, n int, types []string) []Question {
	if n < 1 {
		n = DefaultNumQuestions
	}
	if len(types) == 0 {
		types = DefaultQuestionTypes
	}

	if e.remote != nil {
		qs, err := e.remote.Generate(ctx, content, n, types)
		switch {
		case err != nil:
			log.Printf("engine: remote tier failed, using fallback: %v", err)
		case len(qs) < n:
			log.Printf("engine: remote tier returned %d of %d questions, using fallback", len(qs), n)
		default:
			return qs[:n]
		}
	}

	return e.fallback.Generate(ExtractConcepts(content, maxConcepts), n, types)
}
