package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"

	"github.com/sevigo/repo-pilot/internal/core"
)

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
	boldColor    = color.New(color.Bold)
)

const separatorWidth = 60

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func printTitle(title string) {
	separator := strings.Repeat("═", separatorWidth)
	fmt.Println()
	titleColor.Println(separator)
	titleColor.Println(title)
	titleColor.Println(separator)
	fmt.Println()
}

func printSection(title string) {
	fmt.Println()
	warnColor.Println(strings.Repeat("─", separatorWidth))
	warnColor.Println(title)
	warnColor.Println(strings.Repeat("─", separatorWidth))
}

// printMarkdown renders model output for the terminal, falling back to the raw
// text when rendering fails.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}

func printProposal(fix *core.FixProposal) {
	if fix == nil {
		return
	}
	printSection(fmt.Sprintf("PROPOSED FIX (%d files)", len(fix.Changes)))
	boldColor.Printf("Branch: %s\n", fix.BranchName)
	boldColor.Printf("PR:     %s\n", fix.PRTitle)
	dimColor.Printf("Commit: %s\n", fix.CommitMessage)
	for _, c := range fix.Changes {
		dimColor.Printf("   └── %s\n", c.FilePath)
	}
	fmt.Println()
	dimColor.Println("Publish it with: repo-pilot apply <owner/repo> --from <source> --number <n>")
}

func printIssueAnalysis(a *core.IssueAnalysis) {
	printTitle("ISSUE ANALYSIS")
	printComplexityBadge(a.Complexity)
	fmt.Println()
	printMarkdown(a.Analysis)
	printSection("SUGGESTED FIX")
	printMarkdown(a.SuggestedFix)
	printProposal(a.Fix)
}

func printReview(r *core.PRReview) {
	printTitle("PULL REQUEST REVIEW")
	printStatusBadge(r.Status)
	boldColor.Printf(" Score: %d/100\n", r.Score)
	fmt.Println()
	printMarkdown(r.Feedback)

	if len(r.CriticalIssues) == 0 {
		successColor.Println("✅ No critical issues found!")
	} else {
		printSection(fmt.Sprintf("CRITICAL ISSUES (%d)", len(r.CriticalIssues)))
		for _, issue := range r.CriticalIssues {
			errorColor.Printf(" • %s\n", issue)
		}
	}
	printProposal(r.Fix)
}

func printCIAnalysis(a *core.CIAnalysis) {
	printTitle("CI FAILURE ANALYSIS")
	printMarkdown(a.Analysis)
	if a.SuggestedFix != "" {
		printSection("SUGGESTED FIX")
		printMarkdown(a.SuggestedFix)
	}
	printProposal(a.Fix)
}

func printTriage(number int, t *core.TriageResult) {
	printTitle(fmt.Sprintf("TRIAGE #%d", number))
	if !t.NeedsInfo {
		successColor.Println("✅ The issue has enough information to be worked on.")
		return
	}
	warnColor.Println("⚠ The issue needs more information.")
	dimColor.Printf("   Reason: %s\n", t.MissingInfoReason)
	fmt.Println()
	printMarkdown(t.Question)
}

func printScanReport(title string, r *core.ScanReport) {
	printTitle(fmt.Sprintf("%s (%d processed)", title, r.Processed))
	if len(r.Results) == 0 {
		dimColor.Println("Nothing to do.")
		return
	}
	for _, item := range r.Results {
		fmt.Printf("#%-6d ", item.Issue)
		printScanStatus(item.Status)
		if item.Action != "" {
			dimColor.Printf(" %s", item.Action)
		}
		if item.Reason != "" {
			dimColor.Printf(" (%s)", item.Reason)
		}
		fmt.Println()
	}
}

func printComplexityBadge(c core.Complexity) {
	switch c {
	case core.ComplexityHigh:
		color.New(color.BgRed, color.FgWhite, color.Bold).Printf(" %s ", c)
	case core.ComplexityMedium:
		color.New(color.BgYellow, color.FgBlack).Printf(" %s ", c)
	default:
		color.New(color.BgGreen, color.FgWhite).Printf(" %s ", c)
	}
}

func printStatusBadge(s core.ReviewStatus) {
	switch s {
	case core.ReviewApprove:
		color.New(color.BgGreen, color.FgWhite, color.Bold).Printf(" %s ", s)
	case core.ReviewRequestChanges:
		color.New(color.BgRed, color.FgWhite, color.Bold).Printf(" %s ", s)
	default:
		color.New(color.BgWhite, color.FgBlack).Printf(" %s ", s)
	}
}

func printScanStatus(status string) {
	switch status {
	case core.ScanStatusError:
		errorColor.Print(status)
	case core.ScanStatusNeedsInfo, core.ScanStatusNoUserResponse:
		warnColor.Print(status)
	default:
		successColor.Print(status)
	}
}
