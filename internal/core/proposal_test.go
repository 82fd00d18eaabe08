package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeProposal() *FixProposal {
	return &FixProposal{
		CommitMessage: "fix: handle nil config",
		BranchName:    "ai-fix/issue-7-nil-config",
		PRTitle:       "Handle nil config",
		PRBody:        "Guards against a nil config on startup.",
		Changes: []FileChange{
			{FilePath: "cmd/main.go", NewContent: "package main\n"},
		},
	}
}

func TestFixProposal_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *FixProposal)
		wantErr bool
	}{
		{name: "complete", mutate: func(*FixProposal) {}},
		{name: "missing commit message", mutate: func(p *FixProposal) { p.CommitMessage = "" }, wantErr: true},
		{name: "missing branch", mutate: func(p *FixProposal) { p.BranchName = "" }, wantErr: true},
		{name: "missing title", mutate: func(p *FixProposal) { p.PRTitle = "" }, wantErr: true},
		{name: "missing body", mutate: func(p *FixProposal) { p.PRBody = "" }, wantErr: true},
		{name: "no changes", mutate: func(p *FixProposal) { p.Changes = nil }, wantErr: true},
		{name: "change without path", mutate: func(p *FixProposal) { p.Changes[0].FilePath = "" }, wantErr: true},
		{name: "empty new content is allowed", mutate: func(p *FixProposal) { p.Changes[0].NewContent = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := completeProposal()
			tt.mutate(p)
			err := p.Validate()
			if tt.wantErr {
				var vErr *ValidationError
				require.ErrorAs(t, err, &vErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	var nilProposal *FixProposal
	assert.Error(t, nilProposal.Validate())
}

func TestEnforceActionable(t *testing.T) {
	incomplete := completeProposal()
	incomplete.Changes = nil

	tests := []struct {
		name        string
		result      Proposable
		wantPropose bool
	}{
		{name: "issue confident without fix", result: &IssueAnalysis{ShouldProposeFix: true}},
		{name: "issue confident with incomplete fix", result: &IssueAnalysis{ShouldProposeFix: true, Fix: incomplete}},
		{name: "issue confident with complete fix", result: &IssueAnalysis{ShouldProposeFix: true, Fix: completeProposal()}, wantPropose: true},
		{name: "issue fix without confidence", result: &IssueAnalysis{ShouldProposeFix: false, Fix: completeProposal()}},
		{name: "review confident without fix", result: &PRReview{ShouldProposeFix: true, Status: ReviewComment}},
		{name: "review confident with complete fix", result: &PRReview{ShouldProposeFix: true, Fix: completeProposal()}, wantPropose: true},
		{name: "ci confident without fix", result: &CIAnalysis{ShouldProposeFix: true}},
		{name: "ci confident with incomplete fix", result: &CIAnalysis{ShouldProposeFix: true, Fix: &FixProposal{BranchName: "x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := EnforceActionable(tt.result).(Proposable)
			fix, confident := out.Proposal()
			assert.Equal(t, tt.wantPropose, confident)
			if tt.wantPropose {
				assert.NotNil(t, fix)
			} else {
				assert.Nil(t, fix)
			}
		})
	}
}

func TestEnforceActionable_NonProposable(t *testing.T) {
	triage := &TriageResult{NeedsInfo: true, Question: "Can you share the logs?"}
	assert.Same(t, triage, EnforceActionable(triage))

	docs := &Documentation{Content: "# Docs"}
	assert.Same(t, docs, EnforceActionable(docs))
}
