package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"martapp/kiosk/internal/blob"
	"martapp/kiosk/internal/repository"
	"martapp/kiosk/pkg/response"
)

// MediaHandler serves stored blobs (product images) through the resolver so
// repeated requests hit the memoized on-disk copy, and lists stored blob
// metadata so an operator can see what is eating the quota.
type MediaHandler struct {
	resolver *blob.Resolver
	blobs    repository.BlobStore
}

func NewMediaHandler(resolver *blob.Resolver, blobs repository.BlobStore) *MediaHandler {
	return &MediaHandler{resolver: resolver, blobs: blobs}
}

func (h *MediaHandler) ServeImage(c *gin.Context) {
	handle, err := h.resolver.Resolve(c.Request.Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, repository.ErrBlobMissing) {
			response.NotFound(c, "image not found")
			return
		}
		storageError(c, err)
		return
	}

	path, err := handle.Path()
	if err != nil {
		response.NotFound(c, "image no longer available")
		return
	}
	c.File(path)
}

func (h *MediaHandler) ListBlobs(c *gin.Context) {
	records, err := h.blobs.List(c.Request.Context())
	if err != nil {
		storageError(c, err)
		return
	}

	var total int64
	for _, r := range records {
		total += r.Size
	}
	response.Success(c, gin.H{"blobs": records, "total_size": total})
}
