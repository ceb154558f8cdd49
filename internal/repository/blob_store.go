package repository

import (
	"context"

	"martapp/kiosk/internal/model"
)

// BlobStore is the binary half of the durable store. Keys are opaque
// strings chosen by the uploader; uniqueness is the caller's burden.
// Get reports a missing key as ErrBlobMissing. List returns metadata only,
// with Data left empty.
type BlobStore interface {
	Get(ctx context.Context, key string) (*model.BlobRecord, error)
	Put(ctx context.Context, record *model.BlobRecord) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]model.BlobRecord, error)
	Clear(ctx context.Context) error
}
