package binding

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"martapp/kiosk/internal/repository"
)

// gatedStore wraps a KVStore and blocks Get until the gate is opened, so
// tests can interleave writes with an in-flight load.
type gatedStore struct {
	repository.KVStore
	gate chan struct{}
}

func (s *gatedStore) Get(ctx context.Context, key string) ([]byte, error) {
	<-s.gate
	return s.KVStore.Get(ctx, key)
}

// failingStore rejects every write with the given error.
type failingStore struct {
	repository.KVStore
	err error
}

func (s *failingStore) Set(ctx context.Context, key string, value []byte) error {
	return s.err
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func storedString(t *testing.T, store repository.KVStore, key string) (string, bool) {
	t.Helper()
	raw, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("store get: %v", err)
	}
	if raw == nil {
		return "", false
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("unmarshal stored value: %v", err)
	}
	return v, true
}

func TestLoadAdoptsStoredValue(t *testing.T) {
	store := repository.NewMemoryKVStore()
	raw, _ := json.Marshal("stored")
	if err := store.Set(context.Background(), "greeting", raw); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	c := New(store, zap.NewNop(), "greeting", "default")
	defer c.Close()

	c.Load(context.Background())
	if got := c.Get(); got != "stored" {
		t.Fatalf("Get() = %q, want %q", got, "stored")
	}
}

func TestLoadKeepsDefaultOnMissingKey(t *testing.T) {
	store := repository.NewMemoryKVStore()
	c := New(store, zap.NewNop(), "greeting", "default")
	defer c.Close()

	c.Load(context.Background())
	if got := c.Get(); got != "default" {
		t.Fatalf("Get() = %q, want %q", got, "default")
	}

	// The untouched default must never be written back.
	c.Close()
	if _, ok := storedString(t, store, "greeting"); ok {
		t.Fatal("default value was persisted without a write")
	}
}

func TestLoadKeepsDefaultOnCorruptValue(t *testing.T) {
	store := repository.NewMemoryKVStore()
	if err := store.Set(context.Background(), "greeting", []byte("{not json")); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	c := New(store, zap.NewNop(), "greeting", "default")
	defer c.Close()

	c.Load(context.Background())
	if got := c.Get(); got != "default" {
		t.Fatalf("Get() = %q, want %q", got, "default")
	}
}

func TestWriteDuringLoadWins(t *testing.T) {
	inner := repository.NewMemoryKVStore()
	raw, _ := json.Marshal("stale")
	if err := inner.Set(context.Background(), "greeting", raw); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	store := &gatedStore{KVStore: inner, gate: make(chan struct{})}

	c := New(store, zap.NewNop(), "greeting", "default")
	defer c.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Load(context.Background())
	}()

	// Write while the load is still blocked on the store.
	c.Set("fresh")
	close(store.gate)
	wg.Wait()

	if got := c.Get(); got != "fresh" {
		t.Fatalf("Get() = %q, want the written value %q", got, "fresh")
	}

	// The racing write must reach the store once the cell is ready.
	waitFor(t, "written value to persist", func() bool {
		v, ok := storedString(t, inner, "greeting")
		return ok && v == "fresh"
	})
}

func TestSetIsVisibleBeforePersist(t *testing.T) {
	store := repository.NewMemoryKVStore()
	c := New(store, zap.NewNop(), "greeting", "default")
	defer c.Close()
	c.Load(context.Background())

	c.Set("updated")
	if got := c.Get(); got != "updated" {
		t.Fatalf("Get() = %q immediately after Set, want %q", got, "updated")
	}
}

func TestCloseFlushesNewestValue(t *testing.T) {
	store := repository.NewMemoryKVStore()
	c := New(store, zap.NewNop(), "counter", 0)
	c.Load(context.Background())

	for i := 1; i <= 50; i++ {
		c.Set(i)
	}
	c.Close()

	raw, err := store.Get(context.Background(), "counter")
	if err != nil || raw == nil {
		t.Fatalf("stored value missing after close: %v", err)
	}
	var v int
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v != 50 {
		t.Fatalf("stored value = %d, want the newest write 50", v)
	}
}

func TestUpdateReadModifyWrite(t *testing.T) {
	store := repository.NewMemoryKVStore()
	c := New(store, zap.NewNop(), "counter", 0)
	defer c.Close()
	c.Load(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Update(func(n int) int { return n + 1 })
			}
		}()
	}
	wg.Wait()

	if got := c.Get(); got != 1000 {
		t.Fatalf("Get() = %d after 1000 increments, want 1000", got)
	}
}

func TestQuotaCallbackFires(t *testing.T) {
	store := &failingStore{
		KVStore: repository.NewMemoryKVStore(),
		err:     repository.ErrQuotaExceeded,
	}

	c := New[string](store, zap.NewNop(), "greeting", "default")
	defer c.Close()

	quota := make(chan error, 1)
	c.OnQuota(func(err error) {
		select {
		case quota <- err:
		default:
		}
	})

	c.Load(context.Background())
	c.Set("value")

	select {
	case <-quota:
	case <-time.After(2 * time.Second):
		t.Fatal("quota callback never fired")
	}

	// A persist failure must not roll back the in-memory value.
	if got := c.Get(); got != "value" {
		t.Fatalf("Get() = %q after failed persist, want %q", got, "value")
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	store := repository.NewMemoryKVStore()
	raw, _ := json.Marshal("stored")
	if err := store.Set(context.Background(), "greeting", raw); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	c := New(store, zap.NewNop(), "greeting", "default")
	defer c.Close()

	c.Load(context.Background())
	c.Set("changed")
	c.Load(context.Background()) // must not re-read and clobber

	if got := c.Get(); got != "changed" {
		t.Fatalf("Get() = %q after second Load, want %q", got, "changed")
	}
}
