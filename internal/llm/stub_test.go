package llm

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sevigo/repo-pilot/internal/config"
)

type stubGenerator struct {
	mu       sync.Mutex
	requests []Request
	respond  func(req Request) (string, error)
}

func (s *stubGenerator) Generate(_ context.Context, req Request) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	return s.respond(req)
}

func (s *stubGenerator) last() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

func testAIConfig() config.AIConfig {
	return config.AIConfig{
		IssueModel:  config.DefaultFastModel,
		TriageModel: config.DefaultFastModel,
		ReviewModel: config.DefaultProModel,
		CIModel:     config.DefaultProModel,
		DocsModel:   config.DefaultProModel,
	}
}

func newTestEngine(t *testing.T, respond func(req Request) (string, error)) (*Engine, *stubGenerator) {
	t.Helper()
	pm, err := NewPromptManager()
	require.NoError(t, err)
	gen := &stubGenerator{respond: respond}
	return NewEngine(pm, gen, testAIConfig(), slog.New(slog.DiscardHandler)), gen
}
