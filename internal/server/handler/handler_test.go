package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/repo-pilot/internal/config"
	"github.com/sevigo/repo-pilot/internal/core"
	"github.com/sevigo/repo-pilot/internal/pipeline"
	"github.com/sevigo/repo-pilot/internal/storage"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"fix application", &core.FixApplicationError{Step: "create_branch", Err: errors.New("exists")}, http.StatusConflict},
		{"incomplete proposal", &core.FixApplicationError{Step: "validate", Err: &core.ValidationError{Reason: "no changes"}}, http.StatusConflict},
		{"configuration", &core.ConfigurationError{Field: "GitHub token"}, http.StatusBadRequest},
		{"validation", &core.ValidationError{Reason: "bad"}, http.StatusBadRequest},
		{"not stored", fmt.Errorf("lookup: %w", storage.ErrNotFound), http.StatusNotFound},
		{"no proposal", pipeline.ErrNoProposal, http.StatusNotFound},
		{"remote host", &core.RemoteHostError{Status: 403}, http.StatusBadGateway},
		{"provider", &core.AIProviderError{Message: "quota"}, http.StatusBadGateway},
		{"unparseable model output", &core.AIResponseParseError{Raw: "{"}, http.StatusBadGateway},
		{"anything else", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestRequireCronSecret(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name   string
		secret string
		header string
		want   int
	}{
		{"no secret configured", "", "", http.StatusOK},
		{"matching bearer", "s3cret", "Bearer s3cret", http.StatusOK},
		{"wrong bearer", "s3cret", "Bearer nope", http.StatusUnauthorized},
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"not a bearer", "s3cret", "s3cret", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/weekly-scan", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			RequireCronSecret(tt.secret)(next).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

type fakeDispatcher struct {
	events []*core.IssueEvent
	err    error
}

func (d *fakeDispatcher) Dispatch(_ context.Context, event *core.IssueEvent) error {
	if d.err != nil {
		return d.err
	}
	d.events = append(d.events, event)
	return nil
}

func (d *fakeDispatcher) Stop() {}

const webhookSecret = "hook-secret"

func signedRequest(t *testing.T, eventType, body, secret string) *http.Request {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	_, err := mac.Write([]byte(body))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/github", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", eventType)
	req.Header.Set("X-Hub-Signature-256", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	return req
}

const openedIssue = `{
	"action": "opened",
	"issue": {"number": 12, "title": "Crash"},
	"repository": {"name": "app", "full_name": "octo/app", "owner": {"login": "octo"}},
	"sender": {"login": "alice"},
	"installation": {"id": 77}
}`

func newWebhookHandler(d *fakeDispatcher) *WebhookHandler {
	cfg := &config.Config{Server: config.ServerConfig{WebhookSecret: webhookSecret}}
	return NewWebhookHandler(cfg, d, slog.New(slog.DiscardHandler))
}

func TestWebhook_RejectsBadSignature(t *testing.T) {
	d := &fakeDispatcher{}
	rec := httptest.NewRecorder()
	newWebhookHandler(d).Handle(rec, signedRequest(t, "issues", openedIssue, "wrong-secret"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, d.events)
}

func TestWebhook_DispatchesOpenedIssue(t *testing.T) {
	d := &fakeDispatcher{}
	rec := httptest.NewRecorder()
	newWebhookHandler(d).Handle(rec, signedRequest(t, "issues", openedIssue, webhookSecret))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, d.events, 1)
	assert.Equal(t, &core.IssueEvent{
		RepoOwner:      "octo",
		RepoName:       "app",
		RepoFullName:   "octo/app",
		IssueNumber:    12,
		Sender:         "alice",
		InstallationID: 77,
	}, d.events[0])
}

func TestWebhook_IgnoresOtherActions(t *testing.T) {
	d := &fakeDispatcher{}
	body := strings.Replace(openedIssue, `"opened"`, `"closed"`, 1)
	rec := httptest.NewRecorder()
	newWebhookHandler(d).Handle(rec, signedRequest(t, "issues", body, webhookSecret))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Event ignored", rec.Body.String())
	assert.Empty(t, d.events)
}

func TestWebhook_TriageCommentDispatches(t *testing.T) {
	body := `{
		"action": "created",
		"issue": {"number": 5},
		"comment": {"body": " /triage ", "user": {"login": "bob"}},
		"repository": {"name": "app", "full_name": "octo/app", "owner": {"login": "octo"}}
	}`
	d := &fakeDispatcher{}
	rec := httptest.NewRecorder()
	newWebhookHandler(d).Handle(rec, signedRequest(t, "issue_comment", body, webhookSecret))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, d.events, 1)
	assert.Equal(t, "bob", d.events[0].Sender)
	assert.Equal(t, 5, d.events[0].IssueNumber)
}

func TestWebhook_QueueFull(t *testing.T) {
	d := &fakeDispatcher{err: errors.New("job queue is full")}
	rec := httptest.NewRecorder()
	newWebhookHandler(d).Handle(rec, signedRequest(t, "issues", openedIssue, webhookSecret))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWebhook_UnhandledEventType(t *testing.T) {
	d := &fakeDispatcher{}
	rec := httptest.NewRecorder()
	newWebhookHandler(d).Handle(rec, signedRequest(t, "ping", `{"zen": "Keep it logically awesome."}`, webhookSecret))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Event type not handled", rec.Body.String())
}
