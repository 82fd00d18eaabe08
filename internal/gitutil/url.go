// Package gitutil parses the repository references accepted on the command line.
package gitutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind says what a Target points at.
type Kind string

const (
	KindRepo  Kind = "repo"
	KindIssue Kind = "issue"
	KindPull  Kind = "pull"
	KindRun   Kind = "run"
)

// Target is a repository, optionally narrowed to one issue, pull request or
// workflow run.
type Target struct {
	Owner  string
	Repo   string
	Kind   Kind
	Number int64
}

// FullName returns "owner/repo".
func (t Target) FullName() string {
	return t.Owner + "/" + t.Repo
}

var (
	shortRegex = regexp.MustCompile(`^([\w.-]+)/([\w.-]+)(?:#(\d+))?$`)
	urlRegex   = regexp.MustCompile(`github\.com/([^/]+)/([^/]+?)(?:\.git)?(?:/(issues|pull|actions/runs)/(\d+))?$`)
)

// ParseTarget accepts "owner/repo", "owner/repo#12" or a github.com URL for a
// repository, issue, pull request or workflow run. The short form with a
// number is an issue. Job paths under a run are stripped.
func ParseTarget(ref string) (Target, error) {
	ref = strings.TrimSuffix(strings.TrimSpace(ref), "/")
	if i := strings.Index(ref, "/job/"); i > 0 {
		ref = ref[:i]
	}

	if m := shortRegex.FindStringSubmatch(ref); m != nil && !strings.Contains(ref, "github.com") {
		t := Target{Owner: m[1], Repo: m[2], Kind: KindRepo}
		if m[3] != "" {
			n, err := parseNumber(m[3])
			if err != nil {
				return Target{}, err
			}
			t.Kind, t.Number = KindIssue, n
		}
		return t, nil
	}

	m := urlRegex.FindStringSubmatch(ref)
	if m == nil {
		return Target{}, fmt.Errorf("invalid repository reference: %s", ref)
	}
	t := Target{Owner: m[1], Repo: m[2], Kind: KindRepo}
	if m[3] == "" {
		return t, nil
	}
	n, err := parseNumber(m[4])
	if err != nil {
		return Target{}, err
	}
	t.Number = n
	switch m[3] {
	case "issues":
		t.Kind = KindIssue
	case "pull":
		t.Kind = KindPull
	default:
		t.Kind = KindRun
	}
	return t, nil
}

// Expect checks that t points at kind, or at a bare repository when a number
// is supplied separately.
func (t Target) Expect(kind Kind, number int64) (Target, error) {
	switch {
	case t.Kind == kind:
		return t, nil
	case t.Kind == KindRepo && number > 0:
		t.Kind, t.Number = kind, number
		return t, nil
	case t.Kind == KindRepo:
		return Target{}, fmt.Errorf("%s number is required for %s", kind, t.FullName())
	default:
		return Target{}, fmt.Errorf("%s points at a %s, not a %s", t.FullName(), t.Kind, kind)
	}
}

func parseNumber(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid number '%s'", s)
	}
	return n, nil
}
