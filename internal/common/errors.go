// Package common defines shared sentinel errors used across the note
// processing pipeline. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrConflict   = errors.New("status conflict")

	// Blob storage errors.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrPayloadRejected    = errors.New("payload rejected")

	// Submission errors, surfaced synchronously to the caller.
	ErrValidation       = errors.New("validation error")
	ErrSubmissionFailed = errors.New("submission failed")
)
