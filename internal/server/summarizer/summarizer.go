// Package summarizer talks to the external AI summarization capability.
//
// Client is the raw HTTP client; Gateway wraps any Summarizer with timeout,
// retry-with-backoff, a circuit breaker and an admission limit so stalls in
// the external capability cannot cascade into the pipeline.
package summarizer

import (
	"context"
	"errors"
)

// Image is one page/board photo, in presentation order.
type Image struct {
	Data        []byte
	ContentType string
}

// Summarizer produces a textual summary for an ordered sequence of images.
type Summarizer interface {
	Summarize(ctx context.Context, images []Image) (string, error)
}

var (
	// ErrTransient marks failures worth retrying: network errors, timeouts,
	// 5xx-equivalent responses.
	ErrTransient = errors.New("transient summarization failure")

	// ErrPermanent marks failures that retrying cannot fix: rejected content,
	// exceeded quota, malformed responses.
	ErrPermanent = errors.New("permanent summarization failure")

	// ErrCircuitOpen is returned when the gateway short-circuits calls during
	// a cooldown period.
	ErrCircuitOpen = errors.New("summarization circuit open")
)
