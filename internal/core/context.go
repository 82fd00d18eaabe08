package core

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Character budgets applied to each context field before it is embedded in a prompt.
const (
	MaxIssueStructureChars = 30000
	MaxDiffChars           = 30000
	MaxFileContextChars    = 80000
	MaxLogChars            = 50000
	MaxCIStructureChars    = 20000
	MaxReadmeChars         = 50000
)

// ContextBundle is the context assembled for a single analysis call. It is built
// fresh by the pipeline that owns it and dropped once the call returns.
type ContextBundle struct {
	Repo      Repository
	Issue     *Issue
	PR        *PullRequest
	Diff      string
	Files     []FileContext
	Logs      string
	Structure string
	Readme    string
	Feedback  string

	// Instructions come from the repository's .repo-pilot.yml.
	Instructions []string
}

// Truncate cuts s to at most limit characters. It never fails and never splits a rune.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(s) <= limit {
		return s
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

// FormatFiles renders changed file contents in the block format the review prompt expects.
func FormatFiles(files []FileContext) string {
	if len(files) == 0 {
		return "No file content available."
	}
	var b strings.Builder
	for _, f := range files {
		fmt.Fprintf(&b, "\n--- File: %s ---\n%s\n---\n", f.FilePath, f.Content)
	}
	return b.String()
}

// TruncatedStructure returns the structure capped for the given task.
func (b *ContextBundle) TruncatedStructure(task Task) string {
	if task == TaskCIAnalysis {
		return Truncate(b.Structure, MaxCIStructureChars)
	}
	return Truncate(b.Structure, MaxIssueStructureChars)
}

func (b *ContextBundle) TruncatedDiff() string {
	return Truncate(b.Diff, MaxDiffChars)
}

func (b *ContextBundle) TruncatedFiles() string {
	return Truncate(FormatFiles(b.Files), MaxFileContextChars)
}

func (b *ContextBundle) TruncatedLogs() string {
	return Truncate(b.Logs, MaxLogChars)
}

func (b *ContextBundle) TruncatedReadme() string {
	return Truncate(b.Readme, MaxReadmeChars)
}
