package app

import (
	"context"
	"time"

	"github.com/yungbote/continuity-backend/internal/modules/continuity"
	"github.com/yungbote/continuity-backend/internal/observability"
	"github.com/yungbote/continuity-backend/internal/prompts"
)

type instrumentedAssessor struct {
	inner   continuity.Assessor
	metrics *observability.Metrics
}

func instrumentAssessor(inner continuity.Assessor, metrics *observability.Metrics) continuity.Assessor {
	if inner == nil || metrics == nil {
		return inner
	}
	return &instrumentedAssessor{inner: inner, metrics: metrics}
}

func (a *instrumentedAssessor) Assess(ctx context.Context, bundles []continuity.UserBundle) ([]continuity.Analysis, error) {
	start := time.Now()
	out, err := a.inner.Assess(ctx, bundles)
	a.metrics.ObserveReasoning(prompts.SPOFDetection, statusOf(err), time.Since(start))
	return out, err
}

type instrumentedSummarizer struct {
	inner   continuity.Summarizer
	metrics *observability.Metrics
}

func instrumentSummarizer(inner continuity.Summarizer, metrics *observability.Metrics) continuity.Summarizer {
	if inner == nil || metrics == nil {
		return inner
	}
	return &instrumentedSummarizer{inner: inner, metrics: metrics}
}

func (s *instrumentedSummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	start := time.Now()
	out, err := s.inner.Summarize(ctx, transcript)
	s.metrics.ObserveReasoning(prompts.HandoverSummary, statusOf(err), time.Since(start))
	return out, err
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
