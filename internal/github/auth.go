package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/sevigo/repo-pilot/internal/config"
)

// ClientFactory builds a Client bound to one credential. Clients are created per
// request and never shared between callers.
type ClientFactory interface {
	ForToken(ctx context.Context, token string) Client
}

// ClientFactoryFunc adapts a function to ClientFactory.
type ClientFactoryFunc func(ctx context.Context, token string) Client

func (f ClientFactoryFunc) ForToken(ctx context.Context, token string) Client {
	return f(ctx, token)
}

// Factory creates token-scoped clients and, when a GitHub App is configured,
// installation-scoped clients for webhook work.
type Factory struct {
	cfg     config.GitHubConfig
	baseURL *url.URL
	logger  *slog.Logger
}

// NewFactory creates a Factory for the public GitHub API.
func NewFactory(cfg *config.Config, logger *slog.Logger) *Factory {
	return &Factory{cfg: cfg.GitHub, logger: logger}
}

// WithBaseURL points every client at a different API root, such as a GitHub
// Enterprise host or a test server. The URL must end with a slash.
func (f *Factory) WithBaseURL(raw string) (*Factory, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GitHub base URL %q: %w", raw, err)
	}
	clone := *f
	clone.baseURL = u
	return &clone, nil
}

// ForToken returns a client authenticated with a personal access or installation token.
func (f *Factory) ForToken(ctx context.Context, token string) Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return NewGitHubClient(f.newGitHub(oauth2.NewClient(ctx, ts)), f.logger)
}

// InstallationToken mints a short-lived token for an application installation.
func (f *Factory) InstallationToken(ctx context.Context, installationID int64) (string, error) {
	if !f.cfg.AppConfigured() {
		return "", fmt.Errorf("GitHub App is not configured")
	}
	f.logger.Info("Creating GitHub installation token", "installation_id", installationID)

	privateKey, err := os.ReadFile(f.cfg.PrivateKeyPath)
	if err != nil {
		return "", fmt.Errorf("failed to read private key from %s: %w", f.cfg.PrivateKeyPath, err)
	}

	// The apps transport signs JWTs for the GitHub App API, which mints installation tokens.
	appTransport, err := ghinstallation.NewAppsTransport(http.DefaultTransport, f.cfg.AppID, privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to create GitHub App transport: %w", err)
	}
	appClient := f.newGitHub(&http.Client{Transport: appTransport})

	token, resp, err := appClient.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return "", remoteError(fmt.Sprintf("create installation token for %d", installationID), resp, err)
	}
	if token.GetToken() == "" {
		return "", fmt.Errorf("received an empty installation token")
	}
	f.logger.Info("Successfully created installation token", "installation_id", installationID, "expires_at", token.GetExpiresAt())
	return token.GetToken(), nil
}

func (f *Factory) newGitHub(httpClient *http.Client) *github.Client {
	client := github.NewClient(httpClient)
	if f.baseURL != nil {
		client.BaseURL = f.baseURL
	}
	return client
}
