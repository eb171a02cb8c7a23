package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// maxPromptContent bounds how much study material is embedded in the prompt.
const maxPromptContent = 3000

// RemoteConfig configures the remote question source.
type RemoteConfig struct {
	APIKey  string
	Model   string
	BaseURL string        // optional override, also used by tests
	Timeout time.Duration // per-call bound so fallback is never stalled
}

// RemoteSource generates questions with an OpenAI-compatible chat model.
// It never retries; retry/fallback policy belongs to the Engine.
type RemoteSource struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewRemoteSource(cfg RemoteConfig) *RemoteSource {
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RemoteSource{
		client:  openai.NewClientWithConfig(cc),
		model:   model,
		timeout: timeout,
	}
}

// Generate asks the model for exactly n questions over the given content.
// Fails with ErrRemoteUnavailable on transport errors and ErrRemoteMalformed
// when the reply cannot be parsed into valid questions.
func (s *RemoteSource) Generate(ctx context.Context, content string, n int, types []string) ([]Question, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert quiz question generator. Respond with JSON only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(content, n, types),
			},
		},
		Temperature: 0.7,
		TopP:        0.9,
		MaxTokens:   2048,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion", ErrRemoteMalformed)
	}

	qs, err := decodeQuestionArray(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteMalformed, err)
	}
	return qs, nil
}

func buildPrompt(content string, n int, types []string) string {
	if r := []rune(content); len(r) > maxPromptContent {
		content = string(r[:maxPromptContent])
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate exactly %d quiz questions based on the following content.\n", n)
	fmt.Fprintf(&sb, "Include these question types: %s.\n", strings.Join(types, ", "))
	sb.WriteString("Return ONLY a JSON array with this exact structure:\n\n")
	sb.WriteString(`[
    {
        "type": "multiple_choice",
        "question": "Question text here",
        "options": ["Option 1", "Option 2", "Option 3", "Option 4"],
        "correct_answer": "Option 1",
        "explanation": "Explanation why this is correct"
    },
    {
        "type": "true_false",
        "question": "Statement here",
        "correct_answer": true,
        "explanation": "Explanation here"
    },
    {
        "type": "short_answer",
        "question": "Question here",
        "correct_answer": "Expected answer",
        "explanation": "Explanation here"
    }
]
`)
	sb.WriteString("\nCONTENT TO BASE QUESTIONS ON:\n")
	sb.WriteString(content)
	return sb.String()
}
