package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sevigo/repo-pilot/internal/core"
	"github.com/sevigo/repo-pilot/internal/pipeline"
	"github.com/sevigo/repo-pilot/internal/session"
	"github.com/sevigo/repo-pilot/internal/storage"
)

// Pipeline is the set of operations exposed over HTTP.
type Pipeline interface {
	ListIssues(ctx context.Context, sess core.Session, owner, repo string) ([]*core.Issue, error)
	ListPullRequests(ctx context.Context, sess core.Session, owner, repo string) ([]*core.PullRequest, error)
	ListWorkflowRuns(ctx context.Context, sess core.Session, owner, repo string) ([]*core.WorkflowRun, error)
	AnalyzeIssue(ctx context.Context, sess core.Session, owner, repo string, number int, feedback string) (*core.IssueAnalysis, error)
	TriageIssue(ctx context.Context, sess core.Session, owner, repo string, number int) (*core.TriageResult, error)
	ReviewPullRequest(ctx context.Context, sess core.Session, owner, repo string, number int) (*core.PRReview, error)
	AnalyzeWorkflowRun(ctx context.Context, sess core.Session, owner, repo string, runID int64) (*core.CIAnalysis, error)
	GenerateDocumentation(ctx context.Context, sess core.Session, owner, repo string) (*core.Documentation, error)
	ApplyFix(ctx context.Context, sess core.Session, owner, repo string, proposal *core.FixProposal) (*core.PublishResult, error)
	StoredProposal(ctx context.Context, owner, repo string, source pipeline.ProposalSource, number int64) (*core.FixProposal, error)
	RunTriagePass(ctx context.Context, sess core.Session, owner, repo string) (*core.ScanReport, error)
	RunWeeklyScan(ctx context.Context, sess core.Session, owner, repo string) (*core.ScanReport, error)
}

// SessionResolver turns request overrides into a session.
type SessionResolver interface {
	ResolveRequest(ctx context.Context, o session.Overrides) (core.Session, error)
	SaveSettings(ctx context.Context, userID string, s session.Settings) error
}

// APIHandler serves the repository analysis endpoints.
type APIHandler struct {
	pipeline Pipeline
	sessions SessionResolver
	store    storage.Store
	logger   *slog.Logger
}

func NewAPIHandler(p Pipeline, sessions SessionResolver, store storage.Store, logger *slog.Logger) *APIHandler {
	return &APIHandler{pipeline: p, sessions: sessions, store: store, logger: logger}
}

type repoRequest struct {
	owner string
	repo  string
	sess  core.Session
}

// begin resolves the repository path parameters and the caller's session.
func (h *APIHandler) begin(w http.ResponseWriter, r *http.Request) (repoRequest, bool) {
	sess, err := h.sessions.ResolveRequest(r.Context(), session.OverridesFromHeader(r.Header))
	if err != nil {
		writeError(w, h.logger, err)
		return repoRequest{}, false
	}
	return repoRequest{owner: chi.URLParam(r, "owner"), repo: chi.URLParam(r, "repo"), sess: sess}, true
}

func numberParam(r *http.Request, name string) (int64, error) {
	n, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || n <= 0 {
		return 0, &core.ValidationError{Reason: name + " must be a positive integer"}
	}
	return n, nil
}

func (h *APIHandler) ListIssues(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r)
	if !ok {
		return
	}
	issues, err := h.pipeline.ListIssues(r.Context(), req.sess, req.owner, req.repo)
	h.respond(w, issues, err)
}

func (h *APIHandler) ListPullRequests(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r)
	if !ok {
		return
	}
	prs, err := h.pipeline.ListPullRequests(r.Context(), req.sess, req.owner, req.repo)
	h.respond(w, prs, err)
}

func (h *APIHandler) ListWorkflowRuns(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r)
	if !ok {
		return
	}
	runs, err := h.pipeline.ListWorkflowRuns(r.Context(), req.sess, req.owner, req.repo)
	h.respond(w, runs, err)
}

type analyzeIssueRequest struct {
	Feedback string `json:"feedback"`
}

func (h *APIHandler) AnalyzeIssue(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r)
	if !ok {
		return
	}
	number, err := numberParam(r, "number")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var body analyzeIssueRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, h.logger, err)
		return
	}
	analysis, err := h.pipeline.AnalyzeIssue(r.Context(), req.sess, req.owner, req.repo, int(number), body.Feedback)
	h.respond(w, analysis, err)
}

func (h *APIHandler) TriageIssue(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r)
	if !ok {
		return
	}
	number, err := numberParam(r, "number")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	result, err := h.pipeline.TriageIssue(r.Context(), req.sess, req.owner, req.repo, int(number))
	h.respond(w, result, err)
}

func (h *APIHandler) ReviewPullRequest(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r)
	if !ok {
		return
	}
	number, err := numberParam(r, "number")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	review, err := h.pipeline.ReviewPullRequest(r.Context(), req.sess, req.owner, req.repo, int(number))
	h.respond(w, review, err)
}

func (h *APIHandler) AnalyzeWorkflowRun(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r)
	if !ok {
		return
	}
	runID, err := numberParam(r, "runID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	analysis, err := h.pipeline.AnalyzeWorkflowRun(r.Context(), req.sess, req.owner, req.repo, runID)
	h.respond(w, analysis, err)
}

func (h *APIHandler) GenerateDocumentation(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r)
	if !ok {
		return
	}
	doc, err := h.pipeline.GenerateDocumentation(r.Context(), req.sess, req.owner, req.repo)
	h.respond(w, doc, err)
}

// applyFixRequest carries either an inline proposal or a reference to the
// stored analysis that holds one.
type applyFixRequest struct {
	Proposal *core.FixProposal       `json:"proposal,omitempty"`
	Source   pipeline.ProposalSource `json:"source,omitempty"`
	Number   int64                   `json:"number,omitempty"`
}

func (h *APIHandler) ApplyFix(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r)
	if !ok {
		return
	}
	var body applyFixRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, h.logger, err)
		return
	}

	proposal := body.Proposal
	if proposal == nil {
		if body.Source == "" || body.Number <= 0 {
			writeError(w, h.logger, &core.ValidationError{Reason: "either proposal or source and number are required"})
			return
		}
		var err error
		if proposal, err = h.pipeline.StoredProposal(r.Context(), req.owner, req.repo, body.Source, body.Number); err != nil {
			writeError(w, h.logger, err)
			return
		}
	}

	result, err := h.pipeline.ApplyFix(r.Context(), req.sess, req.owner, req.repo, proposal)
	h.respondStatus(w, http.StatusCreated, result, err)
}

func (h *APIHandler) RunTriagePass(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r)
	if !ok {
		return
	}
	report, err := h.pipeline.RunTriagePass(r.Context(), req.sess, req.owner, req.repo)
	h.respond(w, report, err)
}

func (h *APIHandler) RunWeeklyScan(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r)
	if !ok {
		return
	}
	report, err := h.pipeline.RunWeeklyScan(r.Context(), req.sess, req.owner, req.repo)
	h.respond(w, report, err)
}

func (h *APIHandler) respond(w http.ResponseWriter, v any, err error) {
	h.respondStatus(w, http.StatusOK, v, err)
}

func (h *APIHandler) respondStatus(w http.ResponseWriter, status int, v any, err error) {
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, status, v)
}
