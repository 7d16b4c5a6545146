package continuity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/continuity-backend/internal/platform/logger"
	"github.com/yungbote/continuity-backend/internal/platform/openai"
	"github.com/yungbote/continuity-backend/internal/prompts"
)

// FallbackSummary is stored when the reasoning service returns no content.
const FallbackSummary = "Failed to generate summary"

var ErrEmptyTranscript = errors.New("transcript is empty")

// Summarizer turns an exit interview transcript into free text.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

type reasoningSummarizer struct {
	ai     openai.Client
	prompt prompts.Prompt
	log    *logger.Logger
}

func NewSummarizer(ai openai.Client, catalog *prompts.Catalog, log *logger.Logger) (Summarizer, error) {
	if ai == nil {
		return nil, fmt.Errorf("reasoning client required")
	}
	p, ok := catalog.Get(prompts.HandoverSummary)
	if !ok {
		return nil, fmt.Errorf("missing prompt %s", prompts.HandoverSummary)
	}
	return &reasoningSummarizer{ai: ai, prompt: p, log: log.With("module", "HandoverSummarizer")}, nil
}

func (s *reasoningSummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", ErrEmptyTranscript
	}
	text, err := s.ai.Chat(ctx, openai.ChatRequest{
		System:      s.prompt.System,
		User:        transcript,
		Temperature: s.prompt.Temperature,
		MaxTokens:   s.prompt.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReasoningFailed, err)
	}
	if text == "" {
		s.log.Warn("Summary response was empty; storing fallback")
		return FallbackSummary, nil
	}
	return text, nil
}
