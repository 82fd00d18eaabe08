package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/repo-pilot/internal/core"
)

func TestIssuesMarkdown(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		md := issuesMarkdown("acme/api", nil)
		assert.Contains(t, md, "acme/api")
		assert.Contains(t, md, "_No open issues._")
	})

	t.Run("escapes table cells", func(t *testing.T) {
		md := issuesMarkdown("acme/api", []*core.Issue{{
			Number: 12,
			Title:  "crash | on\nstartup",
			User:   core.User{Login: "octo"},
			Labels: []core.Label{{Name: "bug"}},
		}})
		assert.Contains(t, md, `| 12 | crash \| on startup | octo | `+"`bug`"+` |`)
	})
}

func TestIssueAnalysisMarkdown(t *testing.T) {
	a := &core.IssueAnalysis{
		Analysis:         "Nil map write.",
		SuggestedFix:     "Initialise the map.",
		Complexity:       core.Complexity("low"),
		ShouldProposeFix: true,
		Fix: &core.FixProposal{
			PRTitle:    "fix: init map",
			BranchName: "fix/init-map",
			Changes:    []core.FileChange{{FilePath: "main.go", NewContent: "package main"}},
		},
	}

	md := issueAnalysisMarkdown(7, a)
	assert.Contains(t, md, "## Issue #7 · complexity: low")
	assert.Contains(t, md, "- `main.go`")
	assert.Contains(t, md, "/apply issue 7")
	assert.Contains(t, md, "Type feedback")
}

func TestProposalMarkdownWithoutFix(t *testing.T) {
	assert.Empty(t, proposalMarkdown(nil, "ci", 1))
}

func TestTriageMarkdown(t *testing.T) {
	ok := triageMarkdown(3, &core.TriageResult{})
	assert.Contains(t, ok, "enough information")

	missing := triageMarkdown(3, &core.TriageResult{NeedsInfo: true, MissingInfoReason: "no logs", Question: "Can you share logs?"})
	assert.Contains(t, missing, "needs more information")
	assert.Contains(t, missing, "> Can you share logs?")
}

func TestScanMarkdown(t *testing.T) {
	report := &core.ScanReport{}
	assert.Contains(t, scanMarkdown("Weekly scan", report), "_Nothing to do._")

	report.Add(core.ScanItem{Issue: 4, Status: "commented", Action: "triage", Reason: "missing\nsteps"})
	md := scanMarkdown("Weekly scan", report)
	assert.Contains(t, md, "## Weekly scan · 1 processed")
	assert.Contains(t, md, "| 4 | commented | triage | missing steps |")
}

func TestShortSHA(t *testing.T) {
	assert.Equal(t, "abc1234", shortSHA("abc1234def"))
	assert.Equal(t, "abc", shortSHA("abc"))
}

func TestNewRendererFallsBackToDefaultTheme(t *testing.T) {
	assert.NotNil(t, newRenderer(ThemeName("unknown"), 5))
	assert.Len(t, ListThemes(), len(palettes))
}
