package github

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/sevigo/repo-pilot/internal/core"
)

func TestFormatStructure_UsesTypeOnly(t *testing.T) {
	entries := []core.TreeEntry{
		{Path: "docs", Type: core.EntryTypeTree},
		{Path: "v1.2", Type: core.EntryTypeTree},
		{Path: "Makefile", Type: core.EntryTypeBlob},
		{Path: "docs/guide.md", Type: core.EntryTypeBlob},
		{Path: "vendor.d", Type: "commit"},
	}

	want := "[DIR] docs\n[DIR] v1.2\n[FILE] Makefile\n[FILE] docs/guide.md\n[FILE] vendor.d"
	assert.Equal(t, want, FormatStructure(entries))
	assert.Empty(t, FormatStructure(nil))
}

func TestExcludeDirs(t *testing.T) {
	entries := []core.TreeEntry{
		{Path: "vendor", Type: core.EntryTypeTree},
		{Path: "vendor/lib.go", Type: core.EntryTypeBlob},
		{Path: "vendored.go", Type: core.EntryTypeBlob},
		{Path: "main.go", Type: core.EntryTypeBlob},
	}

	got := ExcludeDirs(entries, []string{"vendor/", ""})
	want := []core.TreeEntry{
		{Path: "vendored.go", Type: core.EntryTypeBlob},
		{Path: "main.go", Type: core.EntryTypeBlob},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ExcludeDirs() mismatch (-want +got):\n%s", diff)
	}
}

func TestChangedPaths(t *testing.T) {
	diff := "diff --git a/cmd/main.go b/cmd/main.go\n" +
		"index 111..222 100644\n" +
		"--- a/cmd/main.go\n" +
		"+++ b/cmd/main.go\n" +
		"@@ -1 +1 @@\n" +
		"-diff --git a/not/a/header b/not/a/header\n" +
		"+package main\n" +
		"diff --git a/old/name.go b/new/name.go\n" +
		"similarity index 100%\n" +
		"diff --git a/README.md b/README.md\r\n"

	want := []string{"cmd/main.go", "new/name.go", "README.md"}
	if got := ChangedPaths(diff); !cmp.Equal(want, got) {
		t.Errorf("ChangedPaths() mismatch (-want +got):\n%s", cmp.Diff(want, got))
	}
	assert.Empty(t, ChangedPaths(DiffUnavailable))
}

func TestTriageQuestionComment(t *testing.T) {
	got := TriageQuestionComment("alice", "Which version are you running?")
	assert.Equal(t, "Hi @alice, thanks for opening this issue! \n\nWhich version are you running?\n\n*Determined by Gemini Triage AI*", got)
}
