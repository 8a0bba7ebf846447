package relay

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRouterRecordAndResolve(t *testing.T) {
	ctx := context.Background()
	r := NewRouter(NewMemoryForwardingStore(), staffChat, 0)

	if _, ok := r.Resolve(ctx, 1); ok {
		t.Fatal("empty router resolved a message")
	}
	if err := r.RecordForward(ctx, 1, 100, 5); err != nil {
		t.Fatal(err)
	}
	if err := r.RecordForward(ctx, 1, 200, 6); err != nil {
		t.Fatal(err)
	}
	chatID, ok := r.Resolve(ctx, 1)
	if !ok || chatID != 200 {
		t.Fatalf("Resolve = %d, %v; want last write 200", chatID, ok)
	}
}

func TestRouterIsolatesStaffChats(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryForwardingStore()
	a := NewRouter(store, -1, 0)
	b := NewRouter(store, -2, 0)
	_ = a.RecordForward(ctx, 10, 100, 1)
	if _, ok := b.Resolve(ctx, 10); ok {
		t.Fatal("record leaked across staff chats")
	}
}

func TestRouterPrune(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryForwardingStore()
	r := NewRouter(store, staffChat, time.Hour)
	now := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

	r.now = func() time.Time { return now.Add(-2 * time.Hour) }
	_ = r.RecordForward(ctx, 1, 100, 1)
	r.now = func() time.Time { return now.Add(-30 * time.Minute) }
	_ = r.RecordForward(ctx, 2, 100, 2)

	r.now = func() time.Time { return now }
	n, err := r.Prune(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Prune = %d, %v; want 1", n, err)
	}
	if _, ok := r.Resolve(ctx, 1); ok {
		t.Fatal("expired record survived")
	}
	if _, ok := r.Resolve(ctx, 2); !ok {
		t.Fatal("fresh record pruned")
	}
}

func TestRouterPruneDisabled(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryForwardingStore()
	r := NewRouter(store, staffChat, 0)
	r.now = func() time.Time { return time.Now().Add(-1000 * time.Hour) }
	_ = r.RecordForward(ctx, 1, 100, 1)
	r.now = time.Now
	if n, err := r.Prune(ctx); err != nil || n != 0 {
		t.Fatalf("Prune = %d, %v", n, err)
	}
	if store.Len() != 1 {
		t.Fatal("zero retention must keep records")
	}
}

type brokenStore struct{ MemoryForwardingStore }

func (*brokenStore) Lookup(context.Context, int64, int) (Forward, bool, error) {
	return Forward{}, false, errors.New("db down")
}

func TestResolveStoreErrorIsNotFound(t *testing.T) {
	r := NewRouter(&brokenStore{}, staffChat, 0)
	if _, ok := r.Resolve(context.Background(), 1); ok {
		t.Fatal("lookup error reported as found")
	}
}
