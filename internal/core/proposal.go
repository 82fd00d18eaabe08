package core

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

// FileChange replaces the whole content of one file. Partial patches are never produced.
type FileChange struct {
	FilePath   string `json:"filePath" jsonschema:"required,description=The repository path of the file to modify." validate:"required"`
	NewContent string `json:"newContent" jsonschema:"required,description=The full and complete new content of the file after the fix."`
}

// FixProposal is an AI-generated set of full-file replacements plus the commit,
// branch and pull request metadata needed to publish it.
type FixProposal struct {
	CommitMessage string       `json:"commitMessage" jsonschema:"required,description=A concise commit message following conventional commit standards (e.g. 'fix: ...')." validate:"required"`
	BranchName    string       `json:"branchName" jsonschema:"required,description=A descriptive and unique branch name for the new pull request." validate:"required"`
	PRTitle       string       `json:"prTitle" jsonschema:"required,description=A title for the new pull request that implements the fix." validate:"required"`
	PRBody        string       `json:"prBody" jsonschema:"required,description=A markdown body for the new pull request explaining what was changed and why." validate:"required"`
	Changes       []FileChange `json:"changes" jsonschema:"required" validate:"required,min=1,dive"`
}

// PublishResult is returned once a proposal has been turned into a pull request.
type PublishResult struct {
	Success    bool   `json:"success"`
	PRURL      string `json:"prUrl"`
	BranchName string `json:"branchName,omitempty"`
	CommitSHA  string `json:"commitSha,omitempty"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks that the proposal is structurally complete.
func (p *FixProposal) Validate() error {
	if p == nil {
		return &ValidationError{Reason: "proposal is missing"}
	}
	if err := structValidator().Struct(p); err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	return nil
}

// IsComplete is Validate as a predicate.
func (p *FixProposal) IsComplete() bool {
	return p.Validate() == nil
}

// ValidateResult checks the enum and range constraints of a decoded result. The
// fix is left to EnforceActionable, which drops an incomplete one.
func ValidateResult(result AnalysisResult) error {
	if result == nil {
		return &ValidationError{Reason: "result is missing"}
	}
	if _, ok := result.(*Documentation); ok {
		return nil
	}
	if err := structValidator().Struct(result); err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	return nil
}

// Proposable is implemented by results that may carry a FixProposal.
type Proposable interface {
	AnalysisResult
	Proposal() (*FixProposal, bool)
	dropProposal()
}

// EnforceActionable forces ShouldProposeFix to false and drops the fix whenever the
// model signalled confidence without a complete proposal. A proposal without the
// confidence flag is dropped too, so a returned fix is always actionable.
func EnforceActionable(result AnalysisResult) AnalysisResult {
	switch r := result.(type) {
	case *IssueAnalysis, *PRReview, *CIAnalysis:
		p := r.(Proposable)
		fix, confident := p.Proposal()
		if !confident || !fix.IsComplete() {
			p.dropProposal()
		}
	case *TriageResult, *Documentation:
	}
	return result
}
