package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/repo-pilot/internal/config"
	"github.com/sevigo/repo-pilot/internal/core"
	"github.com/sevigo/repo-pilot/internal/fixer"
	"github.com/sevigo/repo-pilot/internal/github"
	"github.com/sevigo/repo-pilot/internal/llm"
	"github.com/sevigo/repo-pilot/internal/storage"
	"github.com/sevigo/repo-pilot/mocks"
)

var testSession = core.Session{GitHubToken: "ghp_test", AIAPIKey: "ai-test"}

// contentGenerator answers each request from its prompt.
type contentGenerator struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	respond func(t *testing.T, prompt string) string
	t       *testing.T
}

func (g *contentGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	g.mu.Lock()
	g.calls++
	g.prompts = append(g.prompts, req.Prompt)
	g.mu.Unlock()
	return g.respond(g.t, req.Prompt), nil
}

type fixture struct {
	svc   *Service
	gh    *mocks.MockClient
	gen   *contentGenerator
	store storage.Store
}

func newFixture(t *testing.T, respond func(t *testing.T, prompt string) string) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	gh := mocks.NewMockClient(ctrl)

	if respond == nil {
		respond = func(t *testing.T, _ string) string {
			t.Fatal("the model must not be called")
			return ""
		}
	}
	gen := &contentGenerator{respond: respond, t: t}

	pm, err := llm.NewPromptManager()
	require.NoError(t, err)
	logger := slog.New(slog.DiscardHandler)
	engine := llm.NewEngine(pm, gen, config.AIConfig{
		IssueModel:  config.DefaultFastModel,
		TriageModel: config.DefaultFastModel,
		ReviewModel: config.DefaultProModel,
		CIModel:     config.DefaultProModel,
		DocsModel:   config.DefaultProModel,
	}, logger)

	factory := github.ClientFactoryFunc(func(_ context.Context, token string) github.Client {
		require.Equal(t, testSession.GitHubToken, token)
		return gh
	})
	store := storage.NewMemoryStore()
	return &fixture{
		svc:   NewService(factory, engine, fixer.NewPublisher(logger), store, logger),
		gh:    gh,
		gen:   gen,
		store: store,
	}
}

// expectNoRepoConfig answers the repository config lookup with "not found".
func (f *fixture) expectNoRepoConfig(ref string) {
	f.gh.EXPECT().GetFileContent(gomock.Any(), "octo", "app", RepoConfigPath, ref).Return(core.FileContent{}, nil)
}

func issue(number int, author, body string, labels ...string) *core.Issue {
	i := &core.Issue{Number: number, Title: "Issue " + body, Body: body, State: "open", User: core.User{Login: author}}
	for _, l := range labels {
		i.Labels = append(i.Labels, core.Label{Name: l})
	}
	return i
}

func comment(author string) *core.Comment {
	return &core.Comment{Body: "...", User: core.User{Login: author}}
}
