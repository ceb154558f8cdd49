// Package blob turns stored blob records into transient local file handles
// usable by the media player and image endpoints.
package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"martapp/kiosk/internal/repository"
)

// ErrHandleRevoked is returned by Handle.Path after the handle was released.
var ErrHandleRevoked = errors.New("blob handle revoked")

// Handle is a session-local, revocable reference to a blob's bytes,
// materialized as a temporary file. A handle is created at most once per
// key while in use and revoked exactly once.
type Handle struct {
	key  string
	path string

	mu      sync.Mutex
	revoked bool
}

// Key returns the blob key this handle resolves.
func (h *Handle) Key() string { return h.key }

// Path returns the local file path backing the handle.
func (h *Handle) Path() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.revoked {
		return "", ErrHandleRevoked
	}
	return h.path, nil
}

func (h *Handle) revoke() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.revoked {
		return nil
	}
	h.revoked = true
	return os.Remove(h.path)
}

// Resolver memoizes one Handle per blob key for the lifetime of the
// session. Only the resolver mutates the cache; a handle is always revoked
// before it is evicted.
type Resolver struct {
	store  repository.BlobStore
	logger *zap.Logger
	dir    string

	mu       sync.Mutex
	handles  map[string]*Handle
	inflight map[string]chan struct{}
}

// NewResolver creates a Resolver that materializes blobs under dir. An
// empty dir falls back to the system temp directory.
func NewResolver(store repository.BlobStore, logger *zap.Logger, dir string) *Resolver {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "kiosk-blobs")
	}
	return &Resolver{
		store:    store,
		logger:   logger,
		dir:      dir,
		handles:  make(map[string]*Handle),
		inflight: make(map[string]chan struct{}),
	}
}

// Resolve returns the cached handle for key, fetching and materializing the
// blob on first use. Concurrent resolves of the same key share one fetch.
// A missing record is reported as repository.ErrBlobMissing.
func (r *Resolver) Resolve(ctx context.Context, key string) (*Handle, error) {
	for {
		r.mu.Lock()
		if h, ok := r.handles[key]; ok {
			r.mu.Unlock()
			return h, nil
		}
		if wait, ok := r.inflight[key]; ok {
			r.mu.Unlock()
			select {
			case <-wait:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			continue
		}
		done := make(chan struct{})
		r.inflight[key] = done
		r.mu.Unlock()

		h, err := r.materialize(ctx, key)

		r.mu.Lock()
		delete(r.inflight, key)
		close(done)
		if err == nil {
			r.handles[key] = h
		}
		r.mu.Unlock()
		return h, err
	}
}

func (r *Resolver) materialize(ctx context.Context, key string) (*Handle, error) {
	record, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create handle dir: %w", err)
	}
	f, err := os.CreateTemp(r.dir, "blob-*"+filepath.Ext(record.Name))
	if err != nil {
		return nil, fmt.Errorf("create handle file: %w", err)
	}
	if _, err := f.Write(record.Data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("write handle file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("close handle file: %w", err)
	}

	return &Handle{key: key, path: f.Name()}, nil
}

// Release revokes and evicts the handle for key, if one is cached. Used
// when a blob is deleted so a later Resolve cannot serve stale bytes.
func (r *Resolver) Release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.handles[key]
	if !ok {
		return
	}
	if err := h.revoke(); err != nil {
		r.logger.Warn("failed to remove blob handle file", zap.String("key", key), zap.Error(err))
	}
	delete(r.handles, key)
}

// ReleaseAll revokes every cached handle. Called once at teardown.
func (r *Resolver) ReleaseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, h := range r.handles {
		if err := h.revoke(); err != nil {
			r.logger.Warn("failed to remove blob handle file", zap.String("key", key), zap.Error(err))
		}
		delete(r.handles, key)
	}
}
