package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sevigo/repo-pilot/internal/config"
	"github.com/sevigo/repo-pilot/internal/core"
	"github.com/sevigo/repo-pilot/internal/storage"
)

// Request headers that override stored and configured credentials.
const (
	HeaderUser        = "X-Repo-Pilot-User"
	HeaderGitHubToken = "X-GitHub-Token"
	HeaderAIKey       = "X-Gemini-Key"
	HeaderAIModel     = "X-Gemini-Model"
)

// Overrides are credentials supplied with a single request or CLI invocation.
// UserID selects the stored profile.
type Overrides struct {
	UserID      string
	GitHubToken string
	AIAPIKey    string
	AIModel     string
}

// OverridesFromHeader reads Overrides from request headers.
func OverridesFromHeader(h http.Header) Overrides {
	return Overrides{
		UserID:      strings.TrimSpace(h.Get(HeaderUser)),
		GitHubToken: strings.TrimSpace(h.Get(HeaderGitHubToken)),
		AIAPIKey:    strings.TrimSpace(h.Get(HeaderAIKey)),
		AIModel:     strings.TrimSpace(h.Get(HeaderAIModel)),
	}
}

// Settings are the plaintext values a user can store in their profile. Empty
// fields leave the stored value unchanged.
type Settings struct {
	GitHubPAT    string `json:"githubPat"`
	GeminiAPIKey string `json:"geminiApiKey"`
	GeminiModel  string `json:"geminiModel"`
}

// Resolver builds a core.Session from overrides, then the stored profile, and
// for local tools the process configuration.
type Resolver struct {
	store    storage.Store
	cipher   *Cipher
	defaults core.Session
	logger   *slog.Logger
}

// NewResolver creates a Resolver. The cipher may be nil when no encryption key
// is configured, in which case stored secrets are ignored and cannot be saved.
func NewResolver(cfg *config.Config, store storage.Store, c *Cipher, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		cipher: c,
		defaults: core.Session{
			GitHubToken: cfg.GitHub.Token,
			AIAPIKey:    cfg.AI.APIKey,
		},
		logger: logger,
	}
}

// Resolve returns the session for a CLI or terminal invocation: overrides, then
// the stored profile, then the process configuration. It never validates that
// the credentials are present; pipelines do that before any I/O.
func (r *Resolver) Resolve(ctx context.Context, o Overrides) (core.Session, error) {
	return r.resolve(ctx, o, r.defaults)
}

// ResolveRequest returns the session for an HTTP request. Only the caller's
// headers and stored profile count, so a request without credentials fails with
// a ConfigurationError instead of running on the server's own tokens.
func (r *Resolver) ResolveRequest(ctx context.Context, o Overrides) (core.Session, error) {
	return r.resolve(ctx, o, core.Session{})
}

func (r *Resolver) resolve(ctx context.Context, o Overrides, defaults core.Session) (core.Session, error) {
	var stored core.Session
	if o.UserID != "" {
		p, err := r.store.GetProfile(ctx, o.UserID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			r.logger.Debug("no stored profile", "user", o.UserID)
		case err != nil:
			return core.Session{}, fmt.Errorf("failed to load profile: %w", err)
		default:
			stored = r.decryptProfile(p)
		}
	}

	return core.Session{
		GitHubToken: firstNonEmpty(o.GitHubToken, stored.GitHubToken, defaults.GitHubToken),
		AIAPIKey:    firstNonEmpty(o.AIAPIKey, stored.AIAPIKey, defaults.AIAPIKey),
		AIModel:     firstNonEmpty(o.AIModel, stored.AIModel),
	}, nil
}

func (r *Resolver) decryptProfile(p *storage.Profile) core.Session {
	s := core.Session{AIModel: p.GeminiModel}
	if r.cipher == nil {
		if p.GitHubPAT != "" || p.GeminiAPIKey != "" {
			r.logger.Warn("stored secrets ignored, no encryption key configured", "user", p.UserID)
		}
		return s
	}
	s.GitHubToken = r.cipher.Decrypt(p.GitHubPAT)
	s.AIAPIKey = r.cipher.Decrypt(p.GeminiAPIKey)
	return s
}

// SaveSettings encrypts and stores the non-empty fields of s for userID.
func (r *Resolver) SaveSettings(ctx context.Context, userID string, s Settings) error {
	if userID == "" {
		return &core.ValidationError{Reason: "user id is required"}
	}
	if (s.GitHubPAT != "" || s.GeminiAPIKey != "") && r.cipher == nil {
		return &core.ConfigurationError{Field: "encryption key"}
	}

	p, err := r.store.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		p = &storage.Profile{UserID: userID}
	} else if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	if s.GitHubPAT != "" {
		if p.GitHubPAT, err = r.cipher.Encrypt(s.GitHubPAT); err != nil {
			return fmt.Errorf("failed to encrypt GitHub token: %w", err)
		}
	}
	if s.GeminiAPIKey != "" {
		if p.GeminiAPIKey, err = r.cipher.Encrypt(s.GeminiAPIKey); err != nil {
			return fmt.Errorf("failed to encrypt Gemini API key: %w", err)
		}
	}
	if s.GeminiModel != "" {
		p.GeminiModel = s.GeminiModel
	}

	if err := r.store.SaveProfile(ctx, p); err != nil {
		return err
	}
	r.logger.Info("profile settings saved", "user", userID)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
