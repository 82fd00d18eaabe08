package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sevigo/repo-pilot/internal/core"
	"github.com/sevigo/repo-pilot/internal/pipeline"
	"github.com/sevigo/repo-pilot/internal/storage"
)

type errorBody struct {
	Error string `json:"error"`
	Step  string `json:"step,omitempty"`
}

// StatusFor maps an error to the HTTP status returned to the caller.
func StatusFor(err error) int {
	var (
		cfgErr   *core.ConfigurationError
		valErr   *core.ValidationError
		hostErr  *core.RemoteHostError
		provErr  *core.AIProviderError
		parseErr *core.AIResponseParseError
		fixErr   *core.FixApplicationError
	)
	switch {
	case errors.As(err, &fixErr):
		return http.StatusConflict
	case errors.As(err, &cfgErr), errors.As(err, &valErr):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, pipeline.ErrNoProposal):
		return http.StatusNotFound
	case errors.As(err, &hostErr), errors.As(err, &provErr), errors.As(err, &parseErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := StatusFor(err)
	body := errorBody{Error: err.Error()}
	var fixErr *core.FixApplicationError
	if errors.As(err, &fixErr) {
		body.Step = fixErr.Step
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, body)
}

func decodeJSON(r *http.Request, v any) error {
	if r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &core.ValidationError{Reason: "invalid request body: " + err.Error()}
	}
	return nil
}
