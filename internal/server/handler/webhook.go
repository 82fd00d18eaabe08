// Package handler provides HTTP handlers for the repo-pilot server.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/repo-pilot/internal/config"
	"github.com/sevigo/repo-pilot/internal/core"
)

// WebhookHandler processes incoming webhooks from GitHub.
type WebhookHandler struct {
	cfg        *config.Config
	dispatcher core.JobDispatcher
	logger     *slog.Logger
}

// NewWebhookHandler creates a new webhook handler with the given configuration and dispatcher.
func NewWebhookHandler(cfg *config.Config, dispatcher core.JobDispatcher, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		cfg:        cfg,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle processes GitHub webhook requests.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := github.ValidatePayload(r, []byte(h.cfg.Server.WebhookSecret))
	if err != nil {
		h.logger.Error("invalid webhook payload signature", "error", err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	event, err := github.ParseWebHook(github.WebHookType(r), payload)
	if err != nil {
		h.logger.Error("could not parse webhook", "error", err)
		http.Error(w, "Could not parse webhook", http.StatusBadRequest)
		return
	}

	switch e := event.(type) {
	case *github.IssuesEvent:
		issueEvent, err := core.EventFromIssues(e)
		if err != nil {
			h.logger.Debug("ignoring issues event", "reason", err.Error(), "repo", e.GetRepo().GetFullName())
			_, _ = fmt.Fprint(w, "Event ignored")
			return
		}
		h.dispatch(r.Context(), w, issueEvent)
	case *github.IssueCommentEvent:
		issueEvent, err := core.EventFromIssueComment(e)
		if err != nil {
			h.logger.Debug("ignoring issue comment", "reason", err.Error(), "repo", e.GetRepo().GetFullName())
			_, _ = fmt.Fprint(w, "Comment ignored")
			return
		}
		h.dispatch(r.Context(), w, issueEvent)
	default:
		h.logger.Debug("ignoring unhandled webhook event type", "type", github.WebHookType(r))
		_, _ = fmt.Fprint(w, "Event type not handled")
	}
}

func (h *WebhookHandler) dispatch(ctx context.Context, w http.ResponseWriter, event *core.IssueEvent) {
	if err := h.dispatcher.Dispatch(ctx, event); err != nil {
		h.logger.Error("failed to dispatch triage job", "error", err, "repo", event.RepoFullName)
		http.Error(w, "Failed to start triage job", http.StatusServiceUnavailable)
		return
	}

	h.logger.Info("triage job dispatched successfully", "repo", event.RepoFullName, "issue", event.IssueNumber)
	w.WriteHeader(http.StatusAccepted)
	_, _ = fmt.Fprint(w, "Triage job accepted")
}
