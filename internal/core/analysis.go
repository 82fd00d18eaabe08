package core

import "time"

// Task selects which analysis the engine performs.
type Task string

const (
	TaskIssueAnalysis Task = "issue_analysis"
	TaskPRReview      Task = "pr_review"
	TaskCIAnalysis    Task = "ci_analysis"
	TaskDocumentation Task = "documentation"
	TaskTriage        Task = "triage"
)

// Complexity is the estimated size of an issue fix.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// ReviewStatus is the verdict of a pull request review.
type ReviewStatus string

const (
	ReviewApprove        ReviewStatus = "approve"
	ReviewRequestChanges ReviewStatus = "request_changes"
	ReviewComment        ReviewStatus = "comment"
)

// AnalysisResult is the closed set of shapes the engine can return. The unexported
// method keeps implementations inside this package.
type AnalysisResult interface {
	Task() Task
	sealed()
}

type IssueAnalysis struct {
	Analysis         string       `json:"analysis" jsonschema:"required,description=Brief analysis of the issue context."`
	SuggestedFix     string       `json:"suggestedFix" jsonschema:"required,description=Markdown formatted implementation plan or code snippet."`
	Complexity       Complexity   `json:"complexity" jsonschema:"required,enum=low,enum=medium,enum=high" validate:"oneof=low medium high"`
	ShouldProposeFix bool         `json:"shouldProposeFix" jsonschema:"required,description=True if a confident fix can be proposed."`
	Fix              *FixProposal `json:"fix,omitempty" validate:"-"`
}

func (*IssueAnalysis) Task() Task { return TaskIssueAnalysis }
func (*IssueAnalysis) sealed()    {}

func (a *IssueAnalysis) Proposal() (*FixProposal, bool) { return a.Fix, a.ShouldProposeFix }

func (a *IssueAnalysis) dropProposal() {
	a.ShouldProposeFix = false
	a.Fix = nil
}

type PRReview struct {
	Status           ReviewStatus `json:"status" jsonschema:"required,enum=approve,enum=request_changes,enum=comment" validate:"oneof=approve request_changes comment"`
	Feedback         string       `json:"feedback" jsonschema:"required,description=Detailed markdown feedback for the developer."`
	Score            int          `json:"score" jsonschema:"required,minimum=0,maximum=100,description=A quality score from 0 to 100." validate:"min=0,max=100"`
	CriticalIssues   []string     `json:"criticalIssues"`
	ShouldProposeFix bool         `json:"shouldProposeFix" jsonschema:"required,description=True if a confident fix can be proposed."`
	Fix              *FixProposal `json:"fix,omitempty" validate:"-"`
}

func (*PRReview) Task() Task { return TaskPRReview }
func (*PRReview) sealed()    {}

func (r *PRReview) Proposal() (*FixProposal, bool) { return r.Fix, r.ShouldProposeFix }

func (r *PRReview) dropProposal() {
	r.ShouldProposeFix = false
	r.Fix = nil
}

type CIAnalysis struct {
	Analysis         string       `json:"analysis" jsonschema:"required,description=Brief analysis of why the workflow failed."`
	SuggestedFix     string       `json:"suggestedFix" jsonschema:"required,description=Markdown formatted implementation plan or code snippet."`
	ShouldProposeFix bool         `json:"shouldProposeFix" jsonschema:"required,description=True if a confident fix can be proposed."`
	Fix              *FixProposal `json:"fix,omitempty" validate:"-"`
}

func (*CIAnalysis) Task() Task { return TaskCIAnalysis }
func (*CIAnalysis) sealed()    {}

func (a *CIAnalysis) Proposal() (*FixProposal, bool) { return a.Fix, a.ShouldProposeFix }

func (a *CIAnalysis) dropProposal() {
	a.ShouldProposeFix = false
	a.Fix = nil
}

// TriageResult decides whether an issue has enough information to be worked on.
type TriageResult struct {
	NeedsInfo         bool   `json:"needsInfo" jsonschema:"required,description=True if the issue lacks sufficient information."`
	MissingInfoReason string `json:"missingInfoReason" jsonschema:"required,description=Internal reason why info is missing."`
	Question          string `json:"question" jsonschema:"required,description=Polite question asking the author for more details. Address them directly."`
}

func (*TriageResult) Task() Task { return TaskTriage }
func (*TriageResult) sealed()    {}

// Documentation is free-form generated text. It is never schema constrained.
type Documentation struct {
	Content string `json:"content"`
}

func (*Documentation) Task() Task { return TaskDocumentation }
func (*Documentation) sealed()    {}

// Item statuses reported by the batch scans.
const (
	ScanStatusNeedsInfo      = "needs-info"
	ScanStatusTriaged        = "triaged"
	ScanStatusUpdated        = "updated"
	ScanStatusNoUserResponse = "no-user-response"
	ScanStatusError          = "error"

	ScanActionRemovedLabel = "removed-label"
)

// ScanItem is the outcome for a single issue of a batch scan.
type ScanItem struct {
	Issue  int    `json:"issue"`
	Status string `json:"status"`
	Action string `json:"action,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// ScanReport enumerates per-item outcomes. Earlier items stay applied when a later one fails.
type ScanReport struct {
	Processed int        `json:"processed"`
	Results   []ScanItem `json:"results"`
}

// Add appends an item and keeps Processed in sync.
func (r *ScanReport) Add(item ScanItem) {
	r.Results = append(r.Results, item)
	r.Processed = len(r.Results)
}

// StoredAnalysis wraps a persisted result with its key and timestamp.
type StoredAnalysis[T any] struct {
	RepoOwner string    `json:"repoOwner" db:"repo_owner"`
	RepoName  string    `json:"repoName" db:"repo_name"`
	Number    int64     `json:"number" db:"number"`
	Result    T         `json:"result"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
