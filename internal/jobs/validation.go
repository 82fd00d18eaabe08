package jobs

import (
	"fmt"

	"github.com/sevigo/repo-pilot/internal/core"
)

// validateEvent ensures the event contains all required fields.
func validateEvent(event *core.IssueEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.RepoOwner == "" {
		return fmt.Errorf("repository owner cannot be empty")
	}
	if event.RepoName == "" {
		return fmt.Errorf("repository name cannot be empty")
	}
	if event.IssueNumber <= 0 {
		return fmt.Errorf("issue number must be positive, got: %d", event.IssueNumber)
	}
	if event.InstallationID < 0 {
		return fmt.Errorf("installation ID cannot be negative, got: %d", event.InstallationID)
	}
	return nil
}
