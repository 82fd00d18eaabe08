package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sevigo/repo-pilot/internal/config"
	"github.com/sevigo/repo-pilot/internal/core"
	"github.com/sevigo/repo-pilot/internal/server/handler"
	"github.com/sevigo/repo-pilot/internal/storage"
)

// requestTimeout bounds a single API call, including the model round trip.
const requestTimeout = 5 * time.Minute

// NewRouter creates and configures a new HTTP router with middleware and API routes.
func NewRouter(cfg *config.Config, dispatcher core.JobDispatcher, p handler.Pipeline, sessions handler.SessionResolver, store storage.Store, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Configure middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	api := handler.NewAPIHandler(p, sessions, store, logger)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		webhookHandler := handler.NewWebhookHandler(cfg, dispatcher, logger)
		r.Post("/webhook/github", webhookHandler.Handle)

		r.Put("/profile/{user}", api.SaveProfile)

		r.Route("/repos/{owner}/{repo}", func(r chi.Router) {
			r.Get("/issues", api.ListIssues)
			r.Post("/issues/{number}/analyze", api.AnalyzeIssue)
			r.Post("/issues/{number}/triage", api.TriageIssue)
			r.Get("/issues/{number}/analysis", api.GetIssueAnalysis)

			r.Get("/pulls", api.ListPullRequests)
			r.Post("/pulls/{number}/review", api.ReviewPullRequest)
			r.Get("/pulls/{number}/review", api.GetPRReview)

			r.Get("/runs", api.ListWorkflowRuns)
			r.Post("/runs/{runID}/analyze", api.AnalyzeWorkflowRun)
			r.Get("/runs/{runID}/analysis", api.GetCIAnalysis)

			r.Get("/analyses/issues", api.ListIssueAnalyses)
			r.Get("/analyses/pulls", api.ListPRReviews)
			r.Get("/analyses/runs", api.ListCIAnalyses)

			r.Post("/docs", api.GenerateDocumentation)
			r.Get("/docs", api.GetDocumentation)

			r.Post("/fixes", api.ApplyFix)

			r.Group(func(r chi.Router) {
				r.Use(handler.RequireCronSecret(cfg.Server.CronSecret))
				r.Post("/triage", api.RunTriagePass)
				r.Post("/weekly-scan", api.RunWeeklyScan)
			})
		})
	})

	return r
}
