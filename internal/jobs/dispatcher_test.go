package jobs

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/repo-pilot/internal/core"
)

type recordingJob struct {
	mu     sync.Mutex
	seen   []int
	block  chan struct{}
	result error
}

func (j *recordingJob) Run(_ context.Context, event *core.IssueEvent) error {
	if j.block != nil {
		<-j.block
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.seen = append(j.seen, event.IssueNumber)
	return j.result
}

func TestDispatcher_RunsQueuedEventsBeforeStop(t *testing.T) {
	job := &recordingJob{}
	d := NewDispatcher(job, 3, slog.New(slog.DiscardHandler))

	for i := 1; i <= 10; i++ {
		require.NoError(t, d.Dispatch(context.Background(), &core.IssueEvent{RepoFullName: "octo/app", IssueNumber: i}))
	}
	d.Stop()

	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, job.seen)
}

func TestDispatcher_QueueFull(t *testing.T) {
	job := &recordingJob{block: make(chan struct{})}
	d := NewDispatcher(job, 1, slog.New(slog.DiscardHandler))

	// one event is held by the worker, QueueSize more fill the buffer
	var err error
	for i := 0; i < QueueSize+2 && err == nil; i++ {
		err = d.Dispatch(context.Background(), &core.IssueEvent{IssueNumber: i + 1})
	}
	assert.ErrorContains(t, err, "job queue is full")

	close(job.block)
	d.Stop()
}
