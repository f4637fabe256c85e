// Package models defines server-side data models persisted in the database.
package models

import (
	"errors"
	"time"
)

// NoteStatus is the lifecycle state of a note.
//
// The only legal transitions are PROCESSING -> COMPLETED and
// PROCESSING -> FAILED. Both COMPLETED and FAILED are terminal.
type NoteStatus string

const (
	StatusProcessing NoteStatus = "PROCESSING"
	StatusCompleted  NoteStatus = "COMPLETED"
	StatusFailed     NoteStatus = "FAILED"
)

// ErrIllegalTransition is returned when a requested status transition is not
// permitted by the lifecycle state machine.
var ErrIllegalTransition = errors.New("illegal status transition")

// Valid reports whether s is a known status value.
func (s NoteStatus) Valid() bool {
	switch s {
	case StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition out of s is legal.
func (s NoteStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo reports whether the transition s -> next is legal.
func (s NoteStatus) CanTransitionTo(next NoteStatus) bool {
	return s == StatusProcessing && next.IsTerminal()
}

// Note is one user submission: a titled, ordered collection of photographed
// pages plus the summary derived from them.
type Note struct {
	ID      string
	OwnerID string
	Title   string
	Status  NoteStatus

	// SummaryText is non-empty if and only if Status is COMPLETED.
	SummaryText string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Images is a query-time projection ordered by OrderIndex; it is not
	// hydrated by listing queries.
	Images []*ImageRef
}

// ImageRef describes one stored blob belonging to a note. The note owns its
// image refs exclusively; deleting the note removes them.
type ImageRef struct {
	ID     string
	NoteID string

	// ObjectKey is the key of the blob in object storage.
	ObjectKey string

	// OriginalFileName is the user-supplied name, kept for display only.
	OriginalFileName string

	// ContentType is the declared media type validated at upload time.
	ContentType string

	// OrderIndex is the zero-based page position within the note.
	// Values are contiguous and unique per note.
	OrderIndex int

	SizeBytes int64
}
