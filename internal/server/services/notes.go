// Package services contains the processing orchestrator: it validates
// submissions, persists blobs and records, schedules asynchronous
// summarization and drives the note lifecycle to a terminal state.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/autonotes/internal/common"
	"github.com/dmitrijs2005/autonotes/internal/logging"
	"github.com/dmitrijs2005/autonotes/internal/server/cache"
	"github.com/dmitrijs2005/autonotes/internal/server/models"
	"github.com/dmitrijs2005/autonotes/internal/server/repositories/notes"
	"github.com/dmitrijs2005/autonotes/internal/server/storage"
	"github.com/dmitrijs2005/autonotes/internal/server/summarizer"
)

// File is one uploaded file of a submission, in page order.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Scheduler hands a note id to the asynchronous processing path.
// Implemented by worker.Queue.
type Scheduler interface {
	Enqueue(noteID string) bool
}

type NoteService struct {
	repo      notes.Repository
	store     storage.ObjectStore
	gateway   summarizer.Summarizer
	cache     *cache.NoteCache
	scheduler Scheduler
	logger    logging.Logger
}

func NewNoteService(repo notes.Repository, store storage.ObjectStore, gateway summarizer.Summarizer,
	nc *cache.NoteCache, scheduler Scheduler, logger logging.Logger) *NoteService {
	return &NoteService{
		repo:      repo,
		store:     store,
		gateway:   gateway,
		cache:     nc,
		scheduler: scheduler,
		logger:    logger.With("module", "note_service"),
	}
}

// Submit validates the submission, stores the blobs, creates the note in
// PROCESSING state and schedules asynchronous summarization. It returns the
// note id as soon as the record is durable; the caller never waits for
// summarization.
func (s *NoteService) Submit(ctx context.Context, ownerID, title string, files []File) (string, error) {

	if ownerID == "" {
		return "", fmt.Errorf("%w: missing owner", common.ErrValidation)
	}
	if strings.TrimSpace(title) == "" {
		return "", fmt.Errorf("%w: title must not be empty", common.ErrValidation)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%w: at least one file is required", common.ErrValidation)
	}

	// Pre-validate every file before touching the store, so a rejected input
	// never causes a partial upload.
	for _, f := range files {
		if err := storage.ValidateUpload(int64(len(f.Data)), f.ContentType); err != nil {
			return "", fmt.Errorf("file %q: %w", f.Name, err)
		}
	}

	var keys []string
	for _, f := range files {
		key, err := s.store.Put(ctx, f.Data, f.ContentType)
		if err != nil {
			s.logger.Error(ctx, "blob upload failed, rolling back stored blobs",
				"owner_id", ownerID, "stored", len(keys), "error", err.Error())
			s.rollbackUploads(ctx, keys)
			return "", fmt.Errorf("%w: %v", common.ErrSubmissionFailed, err)
		}
		keys = append(keys, key)
	}

	note := &models.Note{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Title:   title,
		Status:  models.StatusProcessing,
	}

	images := make([]*models.ImageRef, len(files))
	for i, f := range files {
		images[i] = &models.ImageRef{
			ID:               uuid.NewString(),
			NoteID:           note.ID,
			ObjectKey:        keys[i],
			OriginalFileName: f.Name,
			ContentType:      f.ContentType,
			OrderIndex:       i,
			SizeBytes:        int64(len(f.Data)),
		}
	}

	if _, err := s.repo.CreateWithImages(ctx, note, images); err != nil {
		s.logger.Error(ctx, "note creation failed, rolling back stored blobs",
			"owner_id", ownerID, "error", err.Error())
		s.rollbackUploads(ctx, keys)
		return "", fmt.Errorf("%w: %v", common.ErrSubmissionFailed, err)
	}

	s.cache.InvalidateOwner(ownerID)

	if !s.scheduler.Enqueue(note.ID) {
		// The record is durable; the sweeper will re-enqueue it.
		s.logger.Warn(ctx, "task queue full, note deferred to sweeper", "note_id", note.ID)
	}

	s.logger.Info(ctx, "note submitted", "note_id", note.ID, "owner_id", ownerID, "images", len(images))

	return note.ID, nil
}

// rollbackUploads is best effort: the submission already failed and the
// reclaimer sweeps orphaned blobs later, so failures are only logged.
func (s *NoteService) rollbackUploads(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Error(ctx, "failed to delete blob during rollback", "object_key", key, "error", err.Error())
		}
	}
}

// Process runs one asynchronous processing task: fetch the blobs in page
// order, call the summarization gateway and transition the note to a terminal
// state. A duplicate task, or a task racing a delete, is a no-op.
func (s *NoteService) Process(ctx context.Context, noteID string) error {

	note, err := s.repo.FindForProcessing(ctx, noteID)
	if errors.Is(err, common.ErrorNotFound) {
		s.logger.Info(ctx, "note gone before processing, discarding task", "note_id", noteID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetching note for processing: %w", err)
	}

	if note.Status != models.StatusProcessing {
		s.logger.Info(ctx, "note already in terminal state, discarding duplicate task",
			"note_id", noteID, "status", string(note.Status))
		return nil
	}

	blobs := make([]summarizer.Image, 0, len(note.Images))
	for _, img := range note.Images {
		data, err := s.store.Get(ctx, img.ObjectKey)
		if err != nil {
			s.logger.Error(ctx, "blob fetch failed", "note_id", noteID, "object_key", img.ObjectKey, "error", err.Error())
			s.transition(ctx, note, models.StatusFailed, "")
			return nil
		}
		blobs = append(blobs, summarizer.Image{Data: data, ContentType: img.ContentType})
	}

	summary, err := s.gateway.Summarize(ctx, blobs)
	if err != nil {
		s.logger.Error(ctx, "summarization failed", "note_id", noteID, "error", err.Error())
		s.transition(ctx, note, models.StatusFailed, "")
		return nil
	}

	s.transition(ctx, note, models.StatusCompleted, summary)
	return nil
}

// transition applies a lifecycle transition through the repository's
// optimistic check. A Conflict or NotFound outcome means another writer (or a
// delete) got there first; both are logged and swallowed.
func (s *NoteService) transition(ctx context.Context, note *models.Note, next models.NoteStatus, summary string) {

	if !note.Status.CanTransitionTo(next) {
		s.logger.Error(ctx, "refusing illegal transition",
			"note_id", note.ID, "from", string(note.Status), "to", string(next),
			"error", models.ErrIllegalTransition.Error())
		return
	}

	err := s.repo.UpdateStatus(ctx, note.ID, note.Status, next, summary)
	switch {
	case err == nil:
		s.cache.InvalidateOwner(note.OwnerID)
		s.logger.Info(ctx, "note transitioned", "note_id", note.ID, "status", string(next))
	case errors.Is(err, common.ErrConflict), errors.Is(err, common.ErrorNotFound):
		s.logger.Info(ctx, "transition lost the race, discarding",
			"note_id", note.ID, "to", string(next), "outcome", err.Error())
	default:
		s.logger.Error(ctx, "status update failed", "note_id", note.ID, "error", err.Error())
	}
}

// Get returns the owner's note, serving from the read-side cache when fresh.
func (s *NoteService) Get(ctx context.Context, ownerID, id string) (*models.Note, error) {

	if note, ok := s.cache.GetNote(ownerID, id); ok {
		return note, nil
	}

	note, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	s.cache.SetNote(note)
	return note, nil
}

// List returns the owner's notes, newest first.
func (s *NoteService) List(ctx context.Context, ownerID string) ([]*models.Note, error) {

	if list, ok := s.cache.GetList(ownerID); ok {
		return list, nil
	}

	list, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	s.cache.SetList(ownerID, list)
	return list, nil
}

// Delete removes the note record and its blobs. Blob deletion is best effort;
// the record's removal is the authoritative deletion signal, and a blob that
// survives it is an accepted inconsistency until the reclaimer removes it.
func (s *NoteService) Delete(ctx context.Context, ownerID, id string) error {

	note, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		return err
	}

	for _, img := range note.Images {
		if err := s.store.Delete(ctx, img.ObjectKey); err != nil {
			s.logger.Error(ctx, "failed to delete blob, leaving orphan for reclamation",
				"note_id", id, "object_key", img.ObjectKey, "error", err.Error())
		}
	}

	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	s.cache.InvalidateOwner(ownerID)
	s.logger.Info(ctx, "note deleted", "note_id", id, "owner_id", ownerID)

	return nil
}
