// Package jobs runs webhook-triggered work on a bounded pool of workers.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sevigo/repo-pilot/internal/core"
)

// QueueSize is the number of events that can wait for a free worker.
const QueueSize = 100

// dispatcher implements core.JobDispatcher and manages a pool of worker goroutines
// for processing issue events as triage jobs.
type dispatcher struct {
	job        core.Job              // Job implementation executed by each worker.
	jobQueue   chan *core.IssueEvent // Queue of incoming issue events.
	maxWorkers int                   // Number of concurrent workers.
	wg         sync.WaitGroup        // Tracks active workers for graceful shutdown.
	logger     *slog.Logger          // Logger instance for the dispatcher.
}

// NewDispatcher initializes a dispatcher with a worker pool.
// If maxWorkers is 0 or negative, it defaults to 1.
func NewDispatcher(job core.Job, maxWorkers int, logger *slog.Logger) core.JobDispatcher {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	d := &dispatcher{
		job:        job,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan *core.IssueEvent, QueueSize),
		logger:     logger,
	}
	d.startWorkers()
	return d
}

// startWorkers launches maxWorkers goroutines to process jobs from the queue.
func (d *dispatcher) startWorkers() {
	for i := range d.maxWorkers {
		d.wg.Add(1)
		go d.startWorker(i)
	}
}

// startWorker processes events from the queue until it's closed.
func (d *dispatcher) startWorker(workerID int) {
	defer d.wg.Done()
	d.logger.Info("starting triage worker", "id", workerID)

	for event := range d.jobQueue {
		d.processEvent(workerID, event)
	}

	d.logger.Info("shutting down triage worker", "id", workerID)
}

// processEvent logs and runs a triage job for an issue event.
func (d *dispatcher) processEvent(workerID int, event *core.IssueEvent) {
	d.logger.Info("worker processing job",
		"worker_id", workerID,
		"repo", event.RepoFullName,
		"issue", event.IssueNumber,
	)

	err := d.job.Run(context.Background(), event)
	if err != nil {
		d.logger.Error("triage job failed",
			"repo", event.RepoFullName,
			"issue", event.IssueNumber,
			"error", err,
		)
	}
}

// Dispatch queues an issue event for processing by a worker.
func (d *dispatcher) Dispatch(_ context.Context, event *core.IssueEvent) error {
	d.logger.Info("queuing triage job", "repo", event.RepoFullName, "issue", event.IssueNumber)

	select {
	case d.jobQueue <- event:
		return nil
	default:
		return fmt.Errorf("job queue is full, cannot accept new triage job")
	}
}

// Stop gracefully shuts down the dispatcher, waiting for all workers to finish.
func (d *dispatcher) Stop() {
	d.logger.Info("stopping dispatcher and waiting for jobs to finish")
	close(d.jobQueue)
	d.wg.Wait()
	d.logger.Info("all triage jobs have finished")
}
