package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rhuss/procunit/pkg/api"
	"github.com/rhuss/procunit/pkg/storage"
)

func openTestCache(t *testing.T) (*Cache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.db")
	c, err := Open(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, path
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), "  ", nil); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestPutAndGet(t *testing.T) {
	c, _ := openTestCache(t)
	ctx := context.Background()

	err := c.Put(ctx, &api.CacheEntry{
		ID:       "result-abc",
		Data:     []byte("SAMPLE_RESULT_DATA"),
		Format:   "json",
		Metadata: map[string]any{"engine": "default"},
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := c.Get(ctx, "result-abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got.Data) != "SAMPLE_RESULT_DATA" {
		t.Errorf("Data = %q", got.Data)
	}
	if got.Format != "json" {
		t.Errorf("Format = %q, want json", got.Format)
	}
	if got.Metadata["engine"] != "default" {
		t.Errorf("Metadata = %v", got.Metadata)
	}
}

func TestGetNotFound(t *testing.T) {
	c, _ := openTestCache(t)
	if _, err := c.Get(context.Background(), "result-missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPutConflict(t *testing.T) {
	c, _ := openTestCache(t)
	ctx := context.Background()

	e := &api.CacheEntry{ID: "result-dup", Data: []byte("x"), Format: "wav"}
	if err := c.Put(ctx, e); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	if err := c.Put(ctx, e); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestEmptyPayloadAndMetadata(t *testing.T) {
	c, _ := openTestCache(t)
	ctx := context.Background()

	if err := c.Put(ctx, &api.CacheEntry{ID: "result-empty", Format: "wav"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := c.Get(ctx, "result-empty")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Data) != 0 {
		t.Errorf("Data = %q, want empty", got.Data)
	}
	if got.Metadata == nil || len(got.Metadata) != 0 {
		t.Errorf("Metadata = %v, want empty map", got.Metadata)
	}
}

func TestReopenKeepsResults(t *testing.T) {
	c, path := openTestCache(t)
	ctx := context.Background()

	c.Put(ctx, &api.CacheEntry{ID: "result-persist", Data: []byte("kept"), Format: "mp3"})
	c.Close()

	reopened, err := Open(ctx, path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, "result-persist")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if string(got.Data) != "kept" {
		t.Errorf("Data = %q, want kept", got.Data)
	}
}

func TestConcurrentPut(t *testing.T) {
	c, _ := openTestCache(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("result-%d", i)
			if err := c.Put(ctx, &api.CacheEntry{ID: id, Data: []byte("x"), Format: "wav"}); err != nil {
				t.Errorf("Put(%s): %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	n, err := c.Len(ctx)
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 20 {
		t.Errorf("Len() = %d, want 20", n)
	}
}

func TestHealthCheck(t *testing.T) {
	c, _ := openTestCache(t)
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck: %v", err)
	}
}
