package memory

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"sharehub/core"
)

func TestPutAndGet(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	payload := []byte("hello world")

	id, err := store.Put(ctx, payload)
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a non-empty content id")
	}

	data, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("expected %q, got %q", payload, data)
	}
}

func TestPutCopiesInput(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	payload := []byte("original")

	id, err := store.Put(ctx, payload)
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	payload[0] = 'X'

	data, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(data) != "original" {
		t.Errorf("stored bytes aliased caller slice: %q", data)
	}
}

func TestUniqueIDs(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id, err := store.Put(ctx, []byte("data"))
		if err != nil {
			t.Fatalf("put %d failed: %v", i, err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate content id %s", id)
		}
		seen[id] = struct{}{}
	}
}

func TestGetMissing(t *testing.T) {
	store := NewStore()

	_, err := store.Get(context.Background(), "nonexistent")
	if !errors.Is(err, core.ErrContentNotFound) {
		t.Errorf("expected ErrContentNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	id, err := store.Put(ctx, []byte("data"))
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Get(ctx, id); !errors.Is(err, core.ErrContentNotFound) {
		t.Errorf("expected content gone after delete, got %v", err)
	}
	if err := store.Delete(ctx, id); !errors.Is(err, core.ErrContentNotFound) {
		t.Errorf("expected ErrContentNotFound on double delete, got %v", err)
	}
}

func TestConcurrentPuts(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	count := 100

	done := make(chan string, count)
	for i := 0; i < count; i++ {
		go func() {
			id, err := store.Put(ctx, []byte("concurrent"))
			if err != nil {
				t.Errorf("concurrent put failed: %v", err)
			}
			done <- id
		}()
	}

	for i := 0; i < count; i++ {
		id := <-done
		if _, err := store.Get(ctx, id); err != nil {
			t.Errorf("content %s not retrievable: %v", id, err)
		}
	}
}
