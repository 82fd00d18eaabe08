package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sevigo/repo-pilot/internal/core"
)

// analysisTable describes one JSONB result table. Names are constants, never user input.
type analysisTable struct {
	name      string
	keyColumn string
}

var (
	issueTable = analysisTable{name: "issue_analyses", keyColumn: "issue_number"}
	prTable    = analysisTable{name: "pr_analyses", keyColumn: "pr_number"}
	ciTable    = analysisTable{name: "ci_analyses", keyColumn: "run_id"}
)

const docsTable = "repo_documentation"

type analysisRow struct {
	RepoOwner string    `db:"repo_owner"`
	RepoName  string    `db:"repo_name"`
	Number    int64     `db:"number"`
	Result    []byte    `db:"result"`
	UpdatedAt time.Time `db:"updated_at"`
}

type postgresStore struct {
	db *sqlx.DB
}

// NewStore creates a Postgres-backed Store.
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) saveAnalysis(ctx context.Context, t analysisTable, owner, name string, number int64, result any) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode %s result: %w", t.name, err)
	}
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (repo_owner, repo_name, %[2]s, result, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (repo_owner, repo_name, %[2]s)
		DO UPDATE SET result = EXCLUDED.result, updated_at = EXCLUDED.updated_at`, t.name, t.keyColumn)
	if _, err := s.db.ExecContext(ctx, query, owner, name, number, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save %s for %s/%s#%d: %w", t.name, owner, name, number, err)
	}
	return nil
}

func getAnalysis[T any](ctx context.Context, db *sqlx.DB, t analysisTable, owner, name string, number int64) (*core.StoredAnalysis[T], error) {
	query := fmt.Sprintf(`
		SELECT repo_owner, repo_name, %[2]s AS number, result, updated_at
		FROM %[1]s
		WHERE repo_owner = $1 AND repo_name = $2 AND %[2]s = $3`, t.name, t.keyColumn)

	var row analysisRow
	if err := db.GetContext(ctx, &row, query, owner, name, number); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load %s for %s/%s#%d: %w", t.name, owner, name, number, err)
	}
	return decodeRow[T](t, row)
}

func listAnalyses[T any](ctx context.Context, db *sqlx.DB, t analysisTable, owner, name string) ([]*core.StoredAnalysis[T], error) {
	query := fmt.Sprintf(`
		SELECT repo_owner, repo_name, %[2]s AS number, result, updated_at
		FROM %[1]s
		WHERE repo_owner = $1 AND repo_name = $2
		ORDER BY updated_at DESC`, t.name, t.keyColumn)

	var rows []analysisRow
	if err := db.SelectContext(ctx, &rows, query, owner, name); err != nil {
		return nil, fmt.Errorf("failed to list %s for %s/%s: %w", t.name, owner, name, err)
	}
	out := make([]*core.StoredAnalysis[T], 0, len(rows))
	for _, row := range rows {
		rec, err := decodeRow[T](t, row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func decodeRow[T any](t analysisTable, row analysisRow) (*core.StoredAnalysis[T], error) {
	var result T
	if err := json.Unmarshal(row.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to decode %s row: %w", t.name, err)
	}
	return &core.StoredAnalysis[T]{
		RepoOwner: row.RepoOwner,
		RepoName:  row.RepoName,
		Number:    row.Number,
		Result:    result,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (s *postgresStore) SaveIssueAnalysis(ctx context.Context, owner, name string, number int, a *core.IssueAnalysis) error {
	return s.saveAnalysis(ctx, issueTable, owner, name, int64(number), a)
}

func (s *postgresStore) GetIssueAnalysis(ctx context.Context, owner, name string, number int) (*IssueAnalysisRecord, error) {
	return getAnalysis[*core.IssueAnalysis](ctx, s.db, issueTable, owner, name, int64(number))
}

func (s *postgresStore) ListIssueAnalyses(ctx context.Context, owner, name string) ([]*IssueAnalysisRecord, error) {
	return listAnalyses[*core.IssueAnalysis](ctx, s.db, issueTable, owner, name)
}

func (s *postgresStore) SavePRReview(ctx context.Context, owner, name string, number int, r *core.PRReview) error {
	return s.saveAnalysis(ctx, prTable, owner, name, int64(number), r)
}

func (s *postgresStore) GetPRReview(ctx context.Context, owner, name string, number int) (*PRReviewRecord, error) {
	return getAnalysis[*core.PRReview](ctx, s.db, prTable, owner, name, int64(number))
}

func (s *postgresStore) ListPRReviews(ctx context.Context, owner, name string) ([]*PRReviewRecord, error) {
	return listAnalyses[*core.PRReview](ctx, s.db, prTable, owner, name)
}

func (s *postgresStore) SaveCIAnalysis(ctx context.Context, owner, name string, runID int64, a *core.CIAnalysis) error {
	return s.saveAnalysis(ctx, ciTable, owner, name, runID, a)
}

func (s *postgresStore) GetCIAnalysis(ctx context.Context, owner, name string, runID int64) (*CIAnalysisRecord, error) {
	return getAnalysis[*core.CIAnalysis](ctx, s.db, ciTable, owner, name, runID)
}

func (s *postgresStore) ListCIAnalyses(ctx context.Context, owner, name string) ([]*CIAnalysisRecord, error) {
	return listAnalyses[*core.CIAnalysis](ctx, s.db, ciTable, owner, name)
}

// SaveDocumentation upserts the generated documentation for a repository.
func (s *postgresStore) SaveDocumentation(ctx context.Context, owner, name string, doc *core.Documentation) error {
	query := `
		INSERT INTO repo_documentation (repo_owner, repo_name, content, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (repo_owner, repo_name)
		DO UPDATE SET content = EXCLUDED.content, updated_at = EXCLUDED.updated_at`
	if _, err := s.db.ExecContext(ctx, query, owner, name, doc.Content, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save documentation for %s/%s: %w", owner, name, err)
	}
	return nil
}

func (s *postgresStore) GetDocumentation(ctx context.Context, owner, name string) (*DocumentationRecord, error) {
	query := `
		SELECT repo_owner, repo_name, content, updated_at
		FROM repo_documentation
		WHERE repo_owner = $1 AND repo_name = $2`

	var row struct {
		RepoOwner string    `db:"repo_owner"`
		RepoName  string    `db:"repo_name"`
		Content   string    `db:"content"`
		UpdatedAt time.Time `db:"updated_at"`
	}
	if err := s.db.GetContext(ctx, &row, query, owner, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load documentation for %s/%s: %w", owner, name, err)
	}
	return &DocumentationRecord{
		RepoOwner: row.RepoOwner,
		RepoName:  row.RepoName,
		Result:    &core.Documentation{Content: row.Content},
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (s *postgresStore) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	query := `SELECT id, github_pat, gemini_api_key, gemini_model, updated_at FROM profiles WHERE id = $1`

	var p Profile
	if err := s.db.GetContext(ctx, &p, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load profile %s: %w", userID, err)
	}
	return &p, nil
}

// SaveProfile replaces the stored profile row.
func (s *postgresStore) SaveProfile(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO profiles (id, github_pat, gemini_api_key, gemini_model, updated_at)
		VALUES (:id, :github_pat, :gemini_api_key, :gemini_model, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			github_pat = EXCLUDED.github_pat,
			gemini_api_key = EXCLUDED.gemini_api_key,
			gemini_model = EXCLUDED.gemini_model,
			updated_at = EXCLUDED.updated_at`

	row := *p
	row.UpdatedAt = time.Now().UTC()
	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to save profile %s: %w", p.UserID, err)
	}
	return nil
}
