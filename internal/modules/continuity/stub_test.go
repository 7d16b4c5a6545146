package continuity

import (
	"context"
	"sync"

	"github.com/yungbote/continuity-backend/internal/platform/openai"
)

type stubChat struct {
	mu    sync.Mutex
	reply string
	err   error
	calls []openai.ChatRequest
}

func (s *stubChat) Chat(_ context.Context, req openai.ChatRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	return s.reply, s.err
}

func (s *stubChat) Model() string { return "stub" }
