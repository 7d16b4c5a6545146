package continuity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/continuity-backend/internal/platform/logger"
)

func TestSummarizeReturnsTextVerbatim(t *testing.T) {
	stub := &stubChat{reply: "  Key systems: billing.\n"}
	s, err := NewSummarizer(stub, catalog(t), logger.Nop())
	require.NoError(t, err)

	got, err := s.Summarize(context.Background(), "we talked about billing")
	require.NoError(t, err)
	assert.Equal(t, "  Key systems: billing.\n", got)

	require.Len(t, stub.calls, 1)
	assert.Equal(t, 0.5, stub.calls[0].Temperature)
	assert.Equal(t, 2048, stub.calls[0].MaxTokens)
	assert.Equal(t, "we talked about billing", stub.calls[0].User)
}

func TestSummarizeEmptyContentFallsBack(t *testing.T) {
	s, err := NewSummarizer(&stubChat{}, catalog(t), logger.Nop())
	require.NoError(t, err)

	got, err := s.Summarize(context.Background(), "transcript")
	require.NoError(t, err)
	assert.Equal(t, FallbackSummary, got)
}

func TestSummarizeEmptyTranscriptSkipsCall(t *testing.T) {
	stub := &stubChat{reply: "x"}
	s, err := NewSummarizer(stub, catalog(t), logger.Nop())
	require.NoError(t, err)

	_, err = s.Summarize(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyTranscript)
	assert.Empty(t, stub.calls)
}

func TestSummarizeTransportFailure(t *testing.T) {
	s, err := NewSummarizer(&stubChat{err: errors.New("boom")}, catalog(t), logger.Nop())
	require.NoError(t, err)

	_, err = s.Summarize(context.Background(), "transcript")
	assert.ErrorIs(t, err, ErrReasoningFailed)
}
