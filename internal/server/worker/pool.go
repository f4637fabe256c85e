package worker

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/autonotes/internal/logging"
)

// Processor handles one processing task. Implemented by the note service.
type Processor interface {
	Process(ctx context.Context, noteID string) error
}

// Pool consumes the queue with a fixed number of goroutines.
type Pool struct {
	queue     *Queue
	processor Processor
	logger    logging.Logger
	workers   int
}

func NewPool(queue *Queue, processor Processor, logger logging.Logger, workers int) *Pool {
	return &Pool{
		queue:     queue,
		processor: processor,
		logger:    logger.With("module", "worker_pool"),
		workers:   workers,
	}
}

// Run blocks until ctx is cancelled and all workers have stopped.
func (p *Pool) Run(ctx context.Context) {

	var wg sync.WaitGroup

	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.work(ctx)
		}()
	}

	wg.Wait()
}

func (p *Pool) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case noteID := <-p.queue.tasks:
			if err := p.processor.Process(ctx, noteID); err != nil {
				p.logger.Error(ctx, "processing task failed", "note_id", noteID, "error", err.Error())
			}
		}
	}
}
