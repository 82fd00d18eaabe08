package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/sevigo/repo-pilot/internal/core"
)

// The terminal renders everything as markdown through glamour; these build it.

func issuesMarkdown(repo string, issues []*core.Issue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Open issues in %s\n\n", repo)
	if len(issues) == 0 {
		b.WriteString("_No open issues._\n")
		return b.String()
	}
	b.WriteString("| # | Title | Author | Labels |\n|---|---|---|---|\n")
	for _, i := range issues {
		labels := make([]string, 0, len(i.Labels))
		for _, l := range i.Labels {
			labels = append(labels, "`"+l.Name+"`")
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", i.Number, cell(i.Title), i.User.Login, strings.Join(labels, " "))
	}
	return b.String()
}

func pullsMarkdown(repo string, prs []*core.PullRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Open pull requests in %s\n\n", repo)
	if len(prs) == 0 {
		b.WriteString("_No open pull requests._\n")
		return b.String()
	}
	b.WriteString("| # | Title | Author | Branch |\n|---|---|---|---|\n")
	for _, pr := range prs {
		fmt.Fprintf(&b, "| %d | %s | %s | `%s` → `%s` |\n", pr.Number, cell(pr.Title), pr.User.Login, pr.HeadRef, pr.BaseRef)
	}
	return b.String()
}

func runsMarkdown(repo string, runs []*core.WorkflowRun) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Recent workflow runs in %s\n\n", repo)
	if len(runs) == 0 {
		b.WriteString("_No workflow runs._\n")
		return b.String()
	}
	b.WriteString("| Run ID | Workflow | Branch | Conclusion | Started |\n|---|---|---|---|---|\n")
	for _, r := range runs {
		conclusion := r.Conclusion
		if conclusion == "" {
			conclusion = r.Status
		}
		if conclusion == "failure" {
			conclusion = "**failure**"
		}
		fmt.Fprintf(&b, "| %d | %s | `%s` | %s | %s |\n", r.ID, cell(r.Name), r.HeadBranch, conclusion, r.CreatedAt.Format(time.RFC822))
	}
	return b.String()
}

func issueAnalysisMarkdown(number int, a *core.IssueAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Issue #%d · complexity: %s\n\n%s\n\n### Suggested fix\n\n%s\n", number, a.Complexity, a.Analysis, a.SuggestedFix)
	b.WriteString(proposalMarkdown(a.Fix, "issue", int64(number)))
	b.WriteString("\n_Type feedback to refine this analysis._\n")
	return b.String()
}

func reviewMarkdown(number int, r *core.PRReview) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Pull request #%d · %s · %d/100\n\n%s\n", number, r.Status, r.Score, r.Feedback)
	if len(r.CriticalIssues) > 0 {
		b.WriteString("\n### Critical issues\n\n")
		for _, issue := range r.CriticalIssues {
			fmt.Fprintf(&b, "- %s\n", issue)
		}
	}
	b.WriteString(proposalMarkdown(r.Fix, "pr", int64(number)))
	return b.String()
}

func ciMarkdown(runID int64, a *core.CIAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Workflow run %d\n\n%s\n", runID, a.Analysis)
	if a.SuggestedFix != "" {
		fmt.Fprintf(&b, "\n### Suggested fix\n\n%s\n", a.SuggestedFix)
	}
	b.WriteString(proposalMarkdown(a.Fix, "ci", runID))
	return b.String()
}

func triageMarkdown(number int, t *core.TriageResult) string {
	if !t.NeedsInfo {
		return fmt.Sprintf("## Triage #%d\n\nThe issue has enough information to be worked on.\n", number)
	}
	return fmt.Sprintf("## Triage #%d · needs more information\n\n_%s_\n\n> %s\n", number, t.MissingInfoReason, t.Question)
}

func scanMarkdown(title string, r *core.ScanReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s · %d processed\n\n", title, r.Processed)
	if len(r.Results) == 0 {
		b.WriteString("_Nothing to do._\n")
		return b.String()
	}
	b.WriteString("| Issue | Status | Action | Reason |\n|---|---|---|---|\n")
	for _, item := range r.Results {
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", item.Issue, item.Status, item.Action, cell(item.Reason))
	}
	return b.String()
}

func publishMarkdown(r *core.PublishResult) string {
	return fmt.Sprintf("## Fix published\n\n- Pull request: %s\n- Branch: `%s`\n- Commit: `%s`\n", r.PRURL, r.BranchName, shortSHA(r.CommitSHA))
}

func proposalMarkdown(fix *core.FixProposal, source string, number int64) string {
	if fix == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n### Proposed fix\n\n**%s** on `%s`\n\n", fix.PRTitle, fix.BranchName)
	for _, c := range fix.Changes {
		fmt.Fprintf(&b, "- `%s`\n", c.FilePath)
	}
	fmt.Fprintf(&b, "\nPublish with `/apply %s %d`.\n", source, number)
	return b.String()
}

// cell keeps a value on one table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
