package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestDatabaseOpensLazily(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lazy.db")
	d := NewDatabase("file:" + path)

	// No file may exist before the first Get.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("database file created before first use: %v", err)
	}

	if _, err := d.Get(context.Background()); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file missing after first use: %v", err)
	}
}

func TestDatabaseSharedAcrossCallers(t *testing.T) {
	d := newTestDatabase(t)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = d.Get(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d: %v", i, err)
		}
	}
}

func TestDatabaseMemoizesFailedOpen(t *testing.T) {
	// A directory path cannot be opened as a database file.
	d := NewDatabase("file:" + t.TempDir())

	_, first := d.Get(context.Background())
	if !errors.Is(first, ErrNotAvailable) {
		t.Fatalf("first Get error = %v, want ErrNotAvailable", first)
	}

	// The failure is memoized; later calls never retry the open.
	_, second := d.Get(context.Background())
	if !errors.Is(second, ErrNotAvailable) {
		t.Fatalf("second Get error = %v, want ErrNotAvailable", second)
	}
}

func TestStoresReportUnavailableDatabase(t *testing.T) {
	d := NewDatabase("file:" + t.TempDir())
	kv := NewSQLiteKVStore(d)
	blobs := NewSQLiteBlobStore(d)

	if _, err := kv.Get(context.Background(), "k"); !errors.Is(err, ErrNotAvailable) {
		t.Fatalf("kv Get error = %v, want ErrNotAvailable", err)
	}
	if err := kv.Set(context.Background(), "k", []byte("v")); !errors.Is(err, ErrNotAvailable) {
		t.Fatalf("kv Set error = %v, want ErrNotAvailable", err)
	}
	if _, err := blobs.Get(context.Background(), "k"); !errors.Is(err, ErrNotAvailable) {
		t.Fatalf("blob Get error = %v, want ErrNotAvailable", err)
	}
}
