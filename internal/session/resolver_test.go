package session

import (
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/repo-pilot/internal/config"
	"github.com/sevigo/repo-pilot/internal/core"
	"github.com/sevigo/repo-pilot/internal/storage"
)

func newTestResolver(t *testing.T, c *Cipher) (*Resolver, storage.Store) {
	t.Helper()
	cfg := &config.Config{}
	cfg.GitHub.Token = "env-token"
	cfg.AI.APIKey = "env-ai-key"
	store := storage.NewMemoryStore()
	return NewResolver(cfg, store, c, slog.New(slog.DiscardHandler)), store
}

func TestOverridesFromHeader(t *testing.T) {
	h := http.Header{}
	h.Set(HeaderUser, " alice ")
	h.Set(HeaderGitHubToken, "ghp_header")
	h.Set(HeaderAIModel, "gemini-3-pro-preview")

	assert.Equal(t, Overrides{
		UserID:      "alice",
		GitHubToken: "ghp_header",
		AIModel:     "gemini-3-pro-preview",
	}, OverridesFromHeader(h))
}

func TestResolve_Precedence(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestResolver(t, newTestCipher(t))
	require.NoError(t, r.SaveSettings(ctx, "alice", Settings{
		GitHubPAT:    "stored-token",
		GeminiAPIKey: "stored-ai-key",
		GeminiModel:  "stored-model",
	}))

	tests := []struct {
		name      string
		overrides Overrides
		want      core.Session
	}{
		{
			name: "config defaults without a user",
			want: core.Session{GitHubToken: "env-token", AIAPIKey: "env-ai-key"},
		},
		{
			name:      "stored profile beats config",
			overrides: Overrides{UserID: "alice"},
			want:      core.Session{GitHubToken: "stored-token", AIAPIKey: "stored-ai-key", AIModel: "stored-model"},
		},
		{
			name:      "request overrides beat the profile",
			overrides: Overrides{UserID: "alice", GitHubToken: "req-token", AIModel: "req-model"},
			want:      core.Session{GitHubToken: "req-token", AIAPIKey: "stored-ai-key", AIModel: "req-model"},
		},
		{
			name:      "unknown user falls back to config",
			overrides: Overrides{UserID: "bob"},
			want:      core.Session{GitHubToken: "env-token", AIAPIKey: "env-ai-key"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(ctx, tt.overrides)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveRequest_SkipsConfigDefaults(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestResolver(t, newTestCipher(t))
	require.NoError(t, r.SaveSettings(ctx, "alice", Settings{GitHubPAT: "stored-token"}))

	tests := []struct {
		name      string
		overrides Overrides
		want      core.Session
	}{
		{name: "no credentials", want: core.Session{}},
		{name: "unknown user", overrides: Overrides{UserID: "bob"}, want: core.Session{}},
		{
			name:      "stored profile without AI key",
			overrides: Overrides{UserID: "alice"},
			want:      core.Session{GitHubToken: "stored-token"},
		},
		{
			name:      "headers",
			overrides: Overrides{GitHubToken: "req-token", AIAPIKey: "req-ai-key"},
			want:      core.Session{GitHubToken: "req-token", AIAPIKey: "req-ai-key"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveRequest(ctx, tt.overrides)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := r.ResolveRequest(ctx, Overrides{})
	require.NoError(t, err)
	var cfgErr *core.ConfigurationError
	require.ErrorAs(t, got.RequireGitHub(), &cfgErr)
}

func TestSaveSettings_StoresCiphertextAndKeepsUnsetFields(t *testing.T) {
	ctx := context.Background()
	r, store := newTestResolver(t, newTestCipher(t))

	require.NoError(t, r.SaveSettings(ctx, "alice", Settings{GitHubPAT: "ghp_secret", GeminiModel: "m1"}))
	require.NoError(t, r.SaveSettings(ctx, "alice", Settings{GeminiAPIKey: "ai_secret"}))

	p, err := store.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "ghp_secret", p.GitHubPAT)
	assert.Contains(t, p.GitHubPAT, ":")
	assert.Equal(t, "m1", p.GeminiModel)

	sess, err := r.Resolve(ctx, Overrides{UserID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "ghp_secret", sess.GitHubToken)
	assert.Equal(t, "ai_secret", sess.AIAPIKey)
}

func TestSaveSettings_SecretsNeedEncryptionKey(t *testing.T) {
	r, _ := newTestResolver(t, nil)

	err := r.SaveSettings(context.Background(), "alice", Settings{GitHubPAT: "ghp"})
	var cfgErr *core.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	assert.NoError(t, r.SaveSettings(context.Background(), "alice", Settings{GeminiModel: "m"}))
}
