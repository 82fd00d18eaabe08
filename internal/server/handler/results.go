package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sevigo/repo-pilot/internal/session"
)

// Stored results are read without credentials; they were produced by an
// authenticated call.

func (h *APIHandler) GetIssueAnalysis(w http.ResponseWriter, r *http.Request) {
	number, err := numberParam(r, "number")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	rec, err := h.store.GetIssueAnalysis(r.Context(), chi.URLParam(r, "owner"), chi.URLParam(r, "repo"), int(number))
	h.respond(w, rec, err)
}

func (h *APIHandler) ListIssueAnalyses(w http.ResponseWriter, r *http.Request) {
	recs, err := h.store.ListIssueAnalyses(r.Context(), chi.URLParam(r, "owner"), chi.URLParam(r, "repo"))
	h.respond(w, recs, err)
}

func (h *APIHandler) GetPRReview(w http.ResponseWriter, r *http.Request) {
	number, err := numberParam(r, "number")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	rec, err := h.store.GetPRReview(r.Context(), chi.URLParam(r, "owner"), chi.URLParam(r, "repo"), int(number))
	h.respond(w, rec, err)
}

func (h *APIHandler) ListPRReviews(w http.ResponseWriter, r *http.Request) {
	recs, err := h.store.ListPRReviews(r.Context(), chi.URLParam(r, "owner"), chi.URLParam(r, "repo"))
	h.respond(w, recs, err)
}

func (h *APIHandler) GetCIAnalysis(w http.ResponseWriter, r *http.Request) {
	runID, err := numberParam(r, "runID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	rec, err := h.store.GetCIAnalysis(r.Context(), chi.URLParam(r, "owner"), chi.URLParam(r, "repo"), runID)
	h.respond(w, rec, err)
}

func (h *APIHandler) ListCIAnalyses(w http.ResponseWriter, r *http.Request) {
	recs, err := h.store.ListCIAnalyses(r.Context(), chi.URLParam(r, "owner"), chi.URLParam(r, "repo"))
	h.respond(w, recs, err)
}

func (h *APIHandler) GetDocumentation(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.GetDocumentation(r.Context(), chi.URLParam(r, "owner"), chi.URLParam(r, "repo"))
	h.respond(w, rec, err)
}

// SaveProfile stores the caller's settings. Secrets are encrypted before they
// reach the store and are never echoed back.
func (h *APIHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var body session.Settings
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, h.logger, err)
		return
	}
	user := chi.URLParam(r, "user")
	if err := h.sessions.SaveSettings(r.Context(), user, body); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
