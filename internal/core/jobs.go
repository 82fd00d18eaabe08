package core

import (
	"context"
)

// JobDispatcher accepts background jobs for asynchronous processing. It decouples
// the webhook handler from the job execution mechanism.
type JobDispatcher interface {
	// Dispatch queues the event. It returns an error when the queue is full.
	Dispatch(ctx context.Context, event *IssueEvent) error
	Stop()
}

// Job is a single unit of work run by the dispatcher for an IssueEvent.
type Job interface {
	Run(ctx context.Context, event *IssueEvent) error
}
