package continuity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/continuity-backend/internal/platform/ctxutil"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
	"github.com/yungbote/continuity-backend/internal/platform/openai"
	"github.com/yungbote/continuity-backend/internal/prompts"
)

// ErrReasoningFailed wraps any transport or service-level failure of the reasoning call.
var ErrReasoningFailed = errors.New("reasoning service call failed")

// Assessor scores SPOF risk for aggregated bundles.
type Assessor interface {
	Assess(ctx context.Context, bundles []UserBundle) ([]Analysis, error)
}

type reasoningAssessor struct {
	ai     openai.Client
	prompt prompts.Prompt
	log    *logger.Logger
}

func NewAssessor(ai openai.Client, catalog *prompts.Catalog, log *logger.Logger) (Assessor, error) {
	if ai == nil {
		return nil, fmt.Errorf("reasoning client required")
	}
	p, ok := catalog.Get(prompts.SPOFDetection)
	if !ok {
		return nil, fmt.Errorf("missing prompt %s", prompts.SPOFDetection)
	}
	return &reasoningAssessor{ai: ai, prompt: p, log: log.With("module", "SPOFAssessor")}, nil
}

func (a *reasoningAssessor) Assess(ctx context.Context, bundles []UserBundle) ([]Analysis, error) {
	if len(bundles) == 0 {
		return []Analysis{}, nil
	}
	payload, err := json.Marshal(bundles)
	if err != nil {
		return nil, fmt.Errorf("encode bundles: %w", err)
	}

	text, err := a.ai.Chat(ctx, openai.ChatRequest{
		System:      a.prompt.System,
		User:        string(payload),
		Temperature: a.prompt.Temperature,
		MaxTokens:   a.prompt.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReasoningFailed, err)
	}

	known := make(map[uuid.UUID]bool, len(bundles))
	for _, b := range bundles {
		known[b.User.ID] = true
	}

	analyses, rejected, ok := ParseAnalyses(text, known)
	fields := ctxutil.LogFields(ctx)
	if !ok {
		a.log.Warn("SPOF response was not a JSON array; treating as no findings",
			append([]interface{}{"response_bytes", len(text)}, fields...)...)
		return []Analysis{}, nil
	}
	for _, r := range rejected {
		a.log.Warn("Dropped SPOF analysis entry",
			append([]interface{}{"index", r.Index, "reason", r.Reason}, fields...)...)
	}
	a.log.Info("SPOF assessment parsed",
		append([]interface{}{"bundles", len(bundles), "accepted", len(analyses), "rejected", len(rejected)}, fields...)...)
	return analyses, nil
}
