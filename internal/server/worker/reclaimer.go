package worker

import (
	"context"
	"time"

	"github.com/dmitrijs2005/autonotes/internal/logging"
)

const reclaimBatchSize = 500

// BlobStore is the slice of object storage the reclaimer needs.
type BlobStore interface {
	ListKeys(ctx context.Context, olderThan time.Time, limit int) ([]string, error)
	Delete(ctx context.Context, key string) error
}

// KeyChecker reports whether an object key is still referenced by a note.
type KeyChecker interface {
	IsReferenced(ctx context.Context, objectKey string) (bool, error)
}

// Reclaimer periodically deletes blobs that no note references anymore:
// leftovers of failed submission rollbacks and of deletes whose blob cleanup
// failed. The grace period keeps it away from submissions still in flight,
// whose blobs are uploaded before the note record commits.
type Reclaimer struct {
	store    BlobStore
	repo     KeyChecker
	interval time.Duration
	grace    time.Duration
	logger   logging.Logger
}

func NewReclaimer(store BlobStore, repo KeyChecker, interval, grace time.Duration, logger logging.Logger) *Reclaimer {
	return &Reclaimer{
		store:    store,
		repo:     repo,
		interval: interval,
		grace:    grace,
		logger:   logger.With("module", "reclaimer"),
	}
}

// Run blocks until ctx is cancelled.
func (r *Reclaimer) Run(ctx context.Context) {

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reclaim(ctx)
		}
	}
}

func (r *Reclaimer) reclaim(ctx context.Context) {

	threshold := time.Now().Add(-r.grace)

	keys, err := r.store.ListKeys(ctx, threshold, reclaimBatchSize)
	if err != nil {
		r.logger.Error(ctx, "failed to list stored blobs", "error", err.Error())
		return
	}

	for _, key := range keys {
		referenced, err := r.repo.IsReferenced(ctx, key)
		if err != nil {
			r.logger.Error(ctx, "failed to check blob reference, stopping sweep", "object_key", key, "error", err.Error())
			return
		}
		if referenced {
			continue
		}
		if err := r.store.Delete(ctx, key); err != nil {
			r.logger.Error(ctx, "failed to delete orphaned blob", "object_key", key, "error", err.Error())
			continue
		}
		r.logger.Info(ctx, "reclaimed orphaned blob", "object_key", key)
	}
}
