package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_client.go -package=mocks hearsight/internal/rag ChatClient

import (
	"context"
	"strings"

	"hearsight/internal/contextutil"
	"hearsight/internal/domain"
	"hearsight/internal/llm"
)

// Generation parameters for answers.
const (
	AnswerTemperature = 0.7
	AnswerMaxTokens   = 2000
)

// ChatClient is the chat-completion call the synthesizer needs.
type ChatClient interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// SynthesizerOptions holds the prompt texts.
type SynthesizerOptions struct {
	Persona string
	// FormatInstructions may contain {language}.
	FormatInstructions string
	Language           string
	EmptyAnswer        string
}

// Synthesizer produces an answer from a composed context with one LLM call.
type Synthesizer struct {
	client ChatClient
	opts   SynthesizerOptions
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(client ChatClient, opts SynthesizerOptions) *Synthesizer {
	return &Synthesizer{client: client, opts: opts}
}

// SystemPrompt combines persona, context and answer-format instructions.
// An empty persona falls back to the configured one.
func (s *Synthesizer) SystemPrompt(contextText, persona string) string {
	if strings.TrimSpace(persona) == "" {
		persona = s.opts.Persona
	}
	instructions := strings.ReplaceAll(s.opts.FormatInstructions, "{language}", s.opts.Language)

	parts := make([]string, 0, 3)
	for _, p := range []string{persona, contextText, instructions} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Answer issues a single chat completion. Failures are not retried and come
// back as an UpstreamError; blank content yields the fallback answer.
func (s *Synthesizer) Answer(ctx context.Context, query, contextText, systemPrompt string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: s.SystemPrompt(contextText, systemPrompt)},
		{Role: llm.RoleUser, Content: query},
	}

	answer, err := s.client.ChatWithMessages(ctx, messages, llm.ChatParams{
		Temperature: AnswerTemperature,
		MaxTokens:   AnswerMaxTokens,
	})
	if err != nil {
		logger.ErrorContext(ctx, "chat completion failed", "error", err)
		return "", &domain.UpstreamError{Service: "chat completion", Err: err}
	}

	if strings.TrimSpace(answer) == "" {
		logger.WarnContext(ctx, "chat completion returned empty content")
		return s.opts.EmptyAnswer, nil
	}
	return answer, nil
}
