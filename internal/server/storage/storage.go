// Package storage provides uniform put/get/delete of binary blobs keyed by an
// opaque identifier, backed by an S3-compatible service. An in-memory
// implementation exists for tests and local development.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/autonotes/internal/common"
)

// MaxObjectSizeBytes is the largest accepted blob size.
const MaxObjectSizeBytes = 50 << 20

var acceptedContentTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"image/heic":      {},
	"application/pdf": {},
}

// ObjectStore is the blob storage contract. Put assigns a fresh key on every
// call; Delete of an absent key succeeds silently.
type ObjectStore interface {
	Put(ctx context.Context, data []byte, contentType string) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// ValidateUpload applies the acceptance checks (size limit, accepted content
// types) without touching the store, so callers can pre-validate a whole
// submission before uploading anything.
func ValidateUpload(sizeBytes int64, contentType string) error {
	if sizeBytes <= 0 {
		return fmt.Errorf("%w: empty payload", common.ErrPayloadRejected)
	}
	if sizeBytes > MaxObjectSizeBytes {
		return fmt.Errorf("%w: payload of %d bytes exceeds limit of %d", common.ErrPayloadRejected, sizeBytes, MaxObjectSizeBytes)
	}
	if _, ok := acceptedContentTypes[strings.ToLower(strings.TrimSpace(contentType))]; !ok {
		return fmt.Errorf("%w: unsupported content type %q", common.ErrPayloadRejected, contentType)
	}
	return nil
}
