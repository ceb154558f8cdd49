package repository

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"martapp/kiosk/internal/model"
)

func blobStores(t *testing.T) map[string]BlobStore {
	t.Helper()
	return map[string]BlobStore{
		"sqlite": NewSQLiteBlobStore(newTestDatabase(t)),
		"memory": NewMemoryBlobStore(),
	}
}

func TestBlobGetMissingKey(t *testing.T) {
	for name, store := range blobStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get(context.Background(), "absent"); !errors.Is(err, ErrBlobMissing) {
				t.Fatalf("Get(absent) error = %v, want ErrBlobMissing", err)
			}
		})
	}
}

func TestBlobPutGetRoundTrip(t *testing.T) {
	for name, store := range blobStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			in := &model.BlobRecord{
				Key:      "track",
				Name:     "song.mp3",
				MIMEType: "audio/mpeg",
				Data:     []byte{0x49, 0x44, 0x33, 0x04},
			}
			if err := store.Put(ctx, in); err != nil {
				t.Fatalf("Put: %v", err)
			}

			out, err := store.Get(ctx, "track")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if out.Name != "song.mp3" || out.MIMEType != "audio/mpeg" {
				t.Fatalf("Get = %+v, want stored metadata", out)
			}
			if !bytes.Equal(out.Data, in.Data) {
				t.Fatalf("Get data = %v, want %v", out.Data, in.Data)
			}
			if out.Size != int64(len(in.Data)) {
				t.Fatalf("Size = %d, want %d", out.Size, len(in.Data))
			}
		})
	}
}

func TestBlobPutOverwrites(t *testing.T) {
	for name, store := range blobStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Put(ctx, &model.BlobRecord{Key: "k", Name: "a", Data: []byte("old")}); err != nil {
				t.Fatalf("first Put: %v", err)
			}
			if err := store.Put(ctx, &model.BlobRecord{Key: "k", Name: "b", Data: []byte("newer")}); err != nil {
				t.Fatalf("second Put: %v", err)
			}

			out, err := store.Get(ctx, "k")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if out.Name != "b" || string(out.Data) != "newer" || out.Size != 5 {
				t.Fatalf("Get = %+v, want overwritten record", out)
			}
		})
	}
}

func TestBlobListMetadataOnly(t *testing.T) {
	for name, store := range blobStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Put(ctx, &model.BlobRecord{Key: "a", Name: "first.mp3", MIMEType: "audio/mpeg", Data: []byte("aaaa")}); err != nil {
				t.Fatalf("Put: %v", err)
			}
			if err := store.Put(ctx, &model.BlobRecord{Key: "b", Name: "second.png", MIMEType: "image/png", Data: []byte("bb")}); err != nil {
				t.Fatalf("Put: %v", err)
			}

			records, err := store.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(records) != 2 {
				t.Fatalf("List returned %d records, want 2", len(records))
			}
			sizes := map[string]int64{}
			for _, r := range records {
				if len(r.Data) != 0 {
					t.Fatalf("List record %q carries %d data bytes, want none", r.Key, len(r.Data))
				}
				sizes[r.Key] = r.Size
			}
			if sizes["a"] != 4 || sizes["b"] != 2 {
				t.Fatalf("List sizes = %v, want a=4 b=2", sizes)
			}
		})
	}
}

func TestBlobDelete(t *testing.T) {
	for name, store := range blobStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Put(ctx, &model.BlobRecord{Key: "k", Data: []byte("v")}); err != nil {
				t.Fatalf("Put: %v", err)
			}
			if err := store.Delete(ctx, "k"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrBlobMissing) {
				t.Fatalf("Get after Delete = %v, want ErrBlobMissing", err)
			}
		})
	}
}
