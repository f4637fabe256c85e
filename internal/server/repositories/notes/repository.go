package notes

import (
	"context"
	"time"

	"github.com/dmitrijs2005/autonotes/internal/server/models"
)

// Repository is the durable store for notes and their image refs.
//
// UpdateStatus applies optimistic concurrency: the write succeeds only if the
// stored status still equals expected; otherwise common.ErrConflict is
// returned (or common.ErrorNotFound if the record is gone).
type Repository interface {
	// CreateWithImages persists the note and its images in one transaction.
	CreateWithImages(ctx context.Context, note *models.Note, images []*models.ImageRef) (*models.Note, error)

	// FindByID returns the note with hydrated images, scoped to its owner.
	FindByID(ctx context.Context, ownerID, id string) (*models.Note, error)

	// FindForProcessing returns the note with hydrated images regardless of
	// owner. Used by the asynchronous processing path, which only knows the
	// note id.
	FindForProcessing(ctx context.Context, id string) (*models.Note, error)

	// ListByOwner returns the owner's notes ordered by creation time
	// descending. Images are not hydrated.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Note, error)

	// UpdateStatus transitions the note from expected to next, setting the
	// summary text and bumping updated_at.
	UpdateStatus(ctx context.Context, id string, expected, next models.NoteStatus, summary string) error

	// Delete removes the note and (via cascade) its image refs.
	Delete(ctx context.Context, ownerID, id string) error

	// ListStuck returns ids of notes still in PROCESSING whose updated_at
	// predates olderThan, up to limit.
	ListStuck(ctx context.Context, olderThan time.Time, limit int) ([]string, error)

	// IsReferenced reports whether any image ref still points at objectKey.
	// Used by the blob reclaimer to detect orphaned objects.
	IsReferenced(ctx context.Context, objectKey string) (bool, error)
}
