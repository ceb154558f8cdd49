// Package binding provides persistent state cells: in-memory values that
// load their initial state from the durable store and persist every later
// mutation asynchronously.
package binding

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"martapp/kiosk/internal/repository"
)

type cellState int

const (
	stateUninitialized cellState = iota
	stateLoading
	stateReady
)

const persistTimeout = 10 * time.Second

// Cell binds one store key to an in-memory value of type T.
//
// Until Load completes the cell holds its default value. A Set issued
// during the load window is applied to memory immediately and wins over
// whatever the load returns, so the initial read can never clobber a value
// the user already changed. From ready onward every Set updates memory
// synchronously and schedules a best-effort persist; rapid writes coalesce
// and only the newest value reaches the store. Persist failures are logged,
// never retried, and never roll back the in-memory value.
type Cell[T any] struct {
	key     string
	store   repository.KVStore
	logger  *zap.Logger
	onQuota func(error)

	mu        sync.Mutex
	value     T
	state     cellState
	wroteEver bool
	dirty     bool

	ready     chan struct{}
	wake      chan struct{}
	closed    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a cell holding defaultValue. Call Load to adopt a previously
// stored value; the persist worker starts immediately but stays idle until
// the cell is ready.
func New[T any](store repository.KVStore, logger *zap.Logger, key string, defaultValue T) *Cell[T] {
	c := &Cell[T]{
		key:    key,
		store:  store,
		logger: logger,
		value:  defaultValue,
		ready:  make(chan struct{}),
		wake:   make(chan struct{}, 1),
		closed: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go c.persistLoop()
	return c
}

// OnQuota registers a callback invoked when a persist fails with
// ErrQuotaExceeded, so the UI layer can warn the user. Set before Load.
func (c *Cell[T]) OnQuota(fn func(error)) { c.onQuota = fn }

// Key returns the store key the cell is bound to.
func (c *Cell[T]) Key() string { return c.key }

// Ready is closed once the initial load has completed.
func (c *Cell[T]) Ready() <-chan struct{} { return c.ready }

// Load reads the stored value, if any. A read failure or a missing key
// keeps the default; a write that raced the load keeps the written value.
// Load is idempotent; only the first call performs the read.
func (c *Cell[T]) Load(ctx context.Context) {
	c.mu.Lock()
	if c.state != stateUninitialized {
		c.mu.Unlock()
		return
	}
	c.state = stateLoading
	c.mu.Unlock()

	raw, err := c.store.Get(ctx, c.key)

	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.wroteEver:
		// The user changed the value while the load was in flight. The
		// written value is the truth; persist it now that we are ready.
		c.dirty = true
		c.signalLocked()
	case err != nil:
		c.logger.Warn("failed to load stored value, using default",
			zap.String("key", c.key), zap.Error(err))
	case raw != nil:
		var v T
		if uerr := json.Unmarshal(raw, &v); uerr != nil {
			c.logger.Warn("stored value is corrupt, using default",
				zap.String("key", c.key), zap.Error(uerr))
		} else {
			c.value = v
		}
	}
	c.state = stateReady
	close(c.ready)
}

// Get returns the current in-memory value.
func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set replaces the value. The in-memory update is immediate; persistence
// is asynchronous. The untouched default is never written to the store.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
	c.wroteEver = true
	c.dirty = true
	if c.state == stateReady {
		c.signalLocked()
	}
}

// Update applies fn to the current value and stores the result as one
// atomic read-modify-write.
func (c *Cell[T]) Update(fn func(T) T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = fn(c.value)
	c.wroteEver = true
	c.dirty = true
	if c.state == stateReady {
		c.signalLocked()
	}
	return c.value
}

// Close stops the persist worker after flushing any pending write.
func (c *Cell[T]) Close() {
	c.closeOnce.Do(func() { close(c.closed) })
	<-c.done
}

func (c *Cell[T]) signalLocked() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Cell[T]) persistLoop() {
	defer close(c.done)

	// A write must never be persisted before the initial load completes;
	// otherwise the not-yet-read stored value would be clobbered.
	select {
	case <-c.ready:
	case <-c.closed:
		return
	}

	for {
		select {
		case <-c.wake:
			c.persistPending()
		case <-c.closed:
			c.persistPending()
			return
		}
	}
}

// persistPending writes the newest value while the cell stays dirty. The
// single worker serializes persists, so a stale intermediate value can be
// skipped but can never land after a newer one.
func (c *Cell[T]) persistPending() {
	for {
		c.mu.Lock()
		if !c.dirty {
			c.mu.Unlock()
			return
		}
		c.dirty = false
		v := c.value
		c.mu.Unlock()

		raw, err := json.Marshal(v)
		if err != nil {
			c.logger.Error("failed to encode value for persistence",
				zap.String("key", c.key), zap.Error(err))
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		err = c.store.Set(ctx, c.key, raw)
		cancel()
		if err != nil {
			if errors.Is(err, repository.ErrQuotaExceeded) && c.onQuota != nil {
				c.onQuota(err)
			}
			c.logger.Error("failed to persist value",
				zap.String("key", c.key), zap.Error(err))
		}
	}
}
