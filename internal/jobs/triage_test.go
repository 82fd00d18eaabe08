package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/repo-pilot/internal/config"
	"github.com/sevigo/repo-pilot/internal/core"
)

type fakeTriager struct {
	sess   core.Session
	number int
	err    error
}

func (f *fakeTriager) TriageIssue(_ context.Context, sess core.Session, _, _ string, number int) (*core.TriageResult, error) {
	f.sess = sess
	f.number = number
	if f.err != nil {
		return nil, f.err
	}
	return &core.TriageResult{NeedsInfo: true}, nil
}

type fakeTokens struct {
	calls int
}

func (f *fakeTokens) InstallationToken(_ context.Context, id int64) (string, error) {
	f.calls++
	if id == 13 {
		return "", errors.New("installation suspended")
	}
	return "ghs_installation", nil
}

func newTestConfig(withApp bool) *config.Config {
	cfg := &config.Config{}
	cfg.GitHub.Token = "ghp_fallback"
	cfg.AI.APIKey = "ai-key"
	if withApp {
		cfg.GitHub.AppID = 42
		cfg.GitHub.PrivateKeyPath = "/keys/app.pem"
	}
	return cfg
}

func TestTriageJob_Credentials(t *testing.T) {
	tests := []struct {
		name       string
		withApp    bool
		event      *core.IssueEvent
		wantToken  string
		wantMinted int
	}{
		{
			name:       "installation token when the app is configured",
			withApp:    true,
			event:      &core.IssueEvent{RepoOwner: "octo", RepoName: "app", IssueNumber: 4, InstallationID: 7},
			wantToken:  "ghs_installation",
			wantMinted: 1,
		},
		{
			name:      "configured token without an app",
			event:     &core.IssueEvent{RepoOwner: "octo", RepoName: "app", IssueNumber: 4, InstallationID: 7},
			wantToken: "ghp_fallback",
		},
		{
			name:      "configured token without an installation",
			withApp:   true,
			event:     &core.IssueEvent{RepoOwner: "octo", RepoName: "app", IssueNumber: 4},
			wantToken: "ghp_fallback",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			triager := &fakeTriager{}
			tokens := &fakeTokens{}
			job := NewTriageJob(newTestConfig(tt.withApp), tokens, triager, slog.New(slog.DiscardHandler))

			require.NoError(t, job.Run(context.Background(), tt.event))
			assert.Equal(t, core.Session{GitHubToken: tt.wantToken, AIAPIKey: "ai-key"}, triager.sess)
			assert.Equal(t, 4, triager.number)
			assert.Equal(t, tt.wantMinted, tokens.calls)
		})
	}
}

func TestTriageJob_Failures(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	t.Run("invalid event", func(t *testing.T) {
		job := NewTriageJob(newTestConfig(false), nil, &fakeTriager{}, logger)
		assert.ErrorContains(t, job.Run(context.Background(), &core.IssueEvent{RepoOwner: "octo", RepoName: "app"}), "issue number must be positive")
		assert.Error(t, job.Run(context.Background(), nil))
	})

	t.Run("token minting fails", func(t *testing.T) {
		job := NewTriageJob(newTestConfig(true), &fakeTokens{}, &fakeTriager{}, logger)
		err := job.Run(context.Background(), &core.IssueEvent{RepoOwner: "octo", RepoName: "app", IssueNumber: 1, InstallationID: 13})
		assert.ErrorContains(t, err, "installation suspended")
	})

	t.Run("no token at all", func(t *testing.T) {
		cfg := newTestConfig(false)
		cfg.GitHub.Token = ""
		job := NewTriageJob(cfg, nil, &fakeTriager{}, logger)
		err := job.Run(context.Background(), &core.IssueEvent{RepoOwner: "octo", RepoName: "app", IssueNumber: 1})
		var cfgErr *core.ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("triage error is returned", func(t *testing.T) {
		job := NewTriageJob(newTestConfig(false), nil, &fakeTriager{err: &core.AIProviderError{Message: "quota"}}, logger)
		err := job.Run(context.Background(), &core.IssueEvent{RepoOwner: "octo", RepoName: "app", IssueNumber: 1})
		var aiErr *core.AIProviderError
		assert.ErrorAs(t, err, &aiErr)
	})
}
