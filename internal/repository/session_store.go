package repository

import (
	"context"
	"time"
)

// SessionStore tracks issued admin session IDs. The login gate is cosmetic
// rather than a trust boundary, so sessions are plain opaque IDs with a TTL.
// Implementations: Redis (shared kiosk fleet) or in-memory (single kiosk).
type SessionStore interface {
	Put(ctx context.Context, sessionID string, ttl time.Duration) error
	Valid(ctx context.Context, sessionID string) (bool, error)
	Delete(ctx context.Context, sessionID string) error
}
