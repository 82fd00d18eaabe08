package gitutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		want    Target
		wantErr bool
	}{
		{
			name: "Short repository form",
			ref:  "sevigo/repo-pilot",
			want: Target{Owner: "sevigo", Repo: "repo-pilot", Kind: KindRepo},
		},
		{
			name: "Short issue form",
			ref:  "sevigo/repo-pilot#42",
			want: Target{Owner: "sevigo", Repo: "repo-pilot", Kind: KindIssue, Number: 42},
		},
		{
			name: "Repository URL with .git suffix",
			ref:  "https://github.com/sevigo/repo-pilot.git",
			want: Target{Owner: "sevigo", Repo: "repo-pilot", Kind: KindRepo},
		},
		{
			name: "Pull request URL with trailing slash",
			ref:  "https://github.com/sevigo/repo-pilot/pull/789/",
			want: Target{Owner: "sevigo", Repo: "repo-pilot", Kind: KindPull, Number: 789},
		},
		{
			name: "Issue URL without scheme",
			ref:  "github.com/sevigo/repo-pilot/issues/7",
			want: Target{Owner: "sevigo", Repo: "repo-pilot", Kind: KindIssue, Number: 7},
		},
		{
			name: "Workflow job URL",
			ref:  "https://github.com/sevigo/repo-pilot/actions/runs/123456/job/987",
			want: Target{Owner: "sevigo", Repo: "repo-pilot", Kind: KindRun, Number: 123456},
		},
		{
			name:    "Invalid PR ID",
			ref:     "https://github.com/sevigo/repo-pilot/pull/abc",
			wantErr: true,
		},
		{
			name:    "Too many segments",
			ref:     "https://github.com/sevigo/repo-pilot/pull/123/files",
			wantErr: true,
		},
		{
			name:    "Zero issue number",
			ref:     "sevigo/repo-pilot#0",
			wantErr: true,
		},
		{
			name:    "Not a reference",
			ref:     "repo-pilot",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTarget(tt.ref)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTarget_Expect(t *testing.T) {
	repo := Target{Owner: "octo", Repo: "app", Kind: KindRepo}

	got, err := repo.Expect(KindPull, 5)
	require.NoError(t, err)
	assert.Equal(t, Target{Owner: "octo", Repo: "app", Kind: KindPull, Number: 5}, got)

	_, err = repo.Expect(KindRun, 0)
	assert.ErrorContains(t, err, "run number is required for octo/app")

	issue := Target{Owner: "octo", Repo: "app", Kind: KindIssue, Number: 3}
	got, err = issue.Expect(KindIssue, 0)
	require.NoError(t, err)
	assert.Equal(t, issue, got)

	_, err = issue.Expect(KindPull, 0)
	assert.ErrorContains(t, err, "points at a issue, not a pull")
}
