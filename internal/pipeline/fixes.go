package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/sevigo/repo-pilot/internal/core"
	"github.com/sevigo/repo-pilot/internal/fixer"
	"github.com/sevigo/repo-pilot/internal/storage"
)

// ProposalSource names the kind of stored analysis a fix is read from.
type ProposalSource string

const (
	SourceIssue ProposalSource = "issue"
	SourcePR    ProposalSource = "pr"
	SourceCI    ProposalSource = "ci"
)

// ErrNoProposal is returned when a stored analysis carries no actionable fix.
var ErrNoProposal = errors.New("analysis has no fix proposal")

// ApplyFix publishes a proposal as a pull request against the default branch.
func (s *Service) ApplyFix(ctx context.Context, sess core.Session, owner, repo string, proposal *core.FixProposal) (*core.PublishResult, error) {
	gh, err := s.githubClient(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := proposal.Validate(); err != nil {
		return nil, &core.FixApplicationError{Step: fixer.StepValidate, Err: err}
	}

	repository, err := gh.GetRepository(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}
	result, err := s.publisher.Apply(ctx, gh, *repository, proposal)
	if err != nil {
		return nil, err
	}
	s.logger.Info("fix published", "repo", repository.DisplayName(), "pr_url", result.PRURL)
	return result, nil
}

// StoredProposal loads the fix carried by a previously stored analysis.
func (s *Service) StoredProposal(ctx context.Context, owner, repo string, source ProposalSource, number int64) (*core.FixProposal, error) {
	var (
		fix *core.FixProposal
		err error
	)
	switch source {
	case SourceIssue:
		var rec *storage.IssueAnalysisRecord
		if rec, err = s.store.GetIssueAnalysis(ctx, owner, repo, int(number)); err == nil {
			fix = rec.Result.Fix
		}
	case SourcePR:
		var rec *storage.PRReviewRecord
		if rec, err = s.store.GetPRReview(ctx, owner, repo, int(number)); err == nil {
			fix = rec.Result.Fix
		}
	case SourceCI:
		var rec *storage.CIAnalysisRecord
		if rec, err = s.store.GetCIAnalysis(ctx, owner, repo, number); err == nil {
			fix = rec.Result.Fix
		}
	default:
		return nil, &core.ValidationError{Reason: fmt.Sprintf("unknown proposal source %q", source)}
	}
	if err != nil {
		return nil, err
	}
	if fix == nil {
		return nil, ErrNoProposal
	}
	return fix, nil
}
