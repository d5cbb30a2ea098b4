package persistence

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultWriteQueueCapacity = 256
	writeMaxAttempts          = 3
	writeRetryBase            = 300 * time.Millisecond
)

type writeJob struct {
	name string
	run  func(context.Context) error
}

// WriterQueue serializes cache writes on a single goroutine.
type WriterQueue struct {
	logger *slog.Logger
	jobs   chan writeJob
}

func NewWriterQueue(logger *slog.Logger, capacity int) *WriterQueue {
	if capacity <= 0 {
		capacity = defaultWriteQueueCapacity
	}

	return &WriterQueue{
		logger: logger,
		jobs:   make(chan writeJob, capacity),
	}
}

// Enqueue never blocks the caller. When the queue is full the job is
// handed to a goroutine that waits for room.
func (w *WriterQueue) Enqueue(name string, run func(context.Context) error) {
	job := writeJob{name: name, run: run}
	select {
	case w.jobs <- job:
	default:
		go func() { w.jobs <- job }()
	}
}

func (w *WriterQueue) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case job := <-w.jobs:
				w.runWithRetry(ctx, job)
			}
		}
	}()
}

// runWithRetry gives a failing job a few attempts with a growing delay,
// then drops it.
func (w *WriterQueue) runWithRetry(ctx context.Context, job writeJob) {
	for attempt := 1; attempt <= writeMaxAttempts; attempt++ {
		err := job.run(ctx)
		if err == nil {
			return
		}

		w.logger.Error("db write failed", "job", job.name, "attempt", attempt, "error", err)
		if attempt == writeMaxAttempts {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * writeRetryBase):
		}
	}
}
