package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/repo-pilot/internal/core"
)

func TestValidateEvent(t *testing.T) {
	valid := func() *core.IssueEvent {
		return &core.IssueEvent{RepoOwner: "octo", RepoName: "app", IssueNumber: 4, InstallationID: 77}
	}

	tests := []struct {
		name    string
		mutate  func(e *core.IssueEvent) *core.IssueEvent
		wantErr string
	}{
		{name: "valid", mutate: func(e *core.IssueEvent) *core.IssueEvent { return e }},
		{name: "nil event", mutate: func(*core.IssueEvent) *core.IssueEvent { return nil }, wantErr: "event cannot be nil"},
		{name: "missing owner", mutate: func(e *core.IssueEvent) *core.IssueEvent { e.RepoOwner = ""; return e }, wantErr: "owner"},
		{name: "missing name", mutate: func(e *core.IssueEvent) *core.IssueEvent { e.RepoName = ""; return e }, wantErr: "name"},
		{name: "zero issue", mutate: func(e *core.IssueEvent) *core.IssueEvent { e.IssueNumber = 0; return e }, wantErr: "got: 0"},
		{name: "negative installation", mutate: func(e *core.IssueEvent) *core.IssueEvent { e.InstallationID = -1; return e }, wantErr: "installation ID"},
		{name: "no installation", mutate: func(e *core.IssueEvent) *core.IssueEvent { e.InstallationID = 0; return e }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateEvent(tt.mutate(valid()))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
