package worker

import (
	"context"
	"time"

	"github.com/dmitrijs2005/autonotes/internal/logging"
)

const sweepBatchSize = 100

// StuckLister is the slice of the note repository the sweeper needs.
type StuckLister interface {
	ListStuck(ctx context.Context, olderThan time.Time, limit int) ([]string, error)
}

// Sweeper periodically re-enqueues notes that have been sitting in PROCESSING
// longer than the processing timeout. This is the restart/recovery point after
// a crash or a dropped task: a re-enqueued note either processes normally or
// lands in FAILED through the regular task path.
type Sweeper struct {
	repo     StuckLister
	queue    *Queue
	interval time.Duration
	timeout  time.Duration
	logger   logging.Logger
}

func NewSweeper(repo StuckLister, queue *Queue, interval, timeout time.Duration, logger logging.Logger) *Sweeper {
	return &Sweeper{
		repo:     repo,
		queue:    queue,
		interval: interval,
		timeout:  timeout,
		logger:   logger.With("module", "sweeper"),
	}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {

	threshold := time.Now().Add(-s.timeout)

	ids, err := s.repo.ListStuck(ctx, threshold, sweepBatchSize)
	if err != nil {
		s.logger.Error(ctx, "failed to list stuck notes", "error", err.Error())
		return
	}

	for _, id := range ids {
		if !s.queue.Enqueue(id) {
			s.logger.Warn(ctx, "queue full, deferring stuck notes to next sweep", "note_id", id)
			return
		}
		s.logger.Info(ctx, "re-enqueued stuck note", "note_id", id)
	}
}
