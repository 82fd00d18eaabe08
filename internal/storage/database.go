// Package storage persists analysis results and user profiles.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/sevigo/repo-pilot/internal/core"
)

// ErrNotFound is returned when no row matches the requested key.
var ErrNotFound = errors.New("not found")

type (
	IssueAnalysisRecord = core.StoredAnalysis[*core.IssueAnalysis]
	PRReviewRecord      = core.StoredAnalysis[*core.PRReview]
	CIAnalysisRecord    = core.StoredAnalysis[*core.CIAnalysis]
	DocumentationRecord = core.StoredAnalysis[*core.Documentation]
)

// Profile holds per-user settings. GitHubPAT and GeminiAPIKey are stored
// encrypted and are never decrypted by this package.
type Profile struct {
	UserID       string    `db:"id" json:"userId"`
	GitHubPAT    string    `db:"github_pat" json:"-"`
	GeminiAPIKey string    `db:"gemini_api_key" json:"-"`
	GeminiModel  string    `db:"gemini_model" json:"geminiModel"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Store defines the interface for all database operations. Saves are
// last-write-wins upserts keyed by repository and item number.
type Store interface {
	SaveIssueAnalysis(ctx context.Context, owner, name string, number int, a *core.IssueAnalysis) error
	GetIssueAnalysis(ctx context.Context, owner, name string, number int) (*IssueAnalysisRecord, error)
	ListIssueAnalyses(ctx context.Context, owner, name string) ([]*IssueAnalysisRecord, error)

	SavePRReview(ctx context.Context, owner, name string, number int, r *core.PRReview) error
	GetPRReview(ctx context.Context, owner, name string, number int) (*PRReviewRecord, error)
	ListPRReviews(ctx context.Context, owner, name string) ([]*PRReviewRecord, error)

	SaveCIAnalysis(ctx context.Context, owner, name string, runID int64, a *core.CIAnalysis) error
	GetCIAnalysis(ctx context.Context, owner, name string, runID int64) (*CIAnalysisRecord, error)
	ListCIAnalyses(ctx context.Context, owner, name string) ([]*CIAnalysisRecord, error)

	SaveDocumentation(ctx context.Context, owner, name string, doc *core.Documentation) error
	GetDocumentation(ctx context.Context, owner, name string) (*DocumentationRecord, error)

	GetProfile(ctx context.Context, userID string) (*Profile, error)
	SaveProfile(ctx context.Context, p *Profile) error
}
