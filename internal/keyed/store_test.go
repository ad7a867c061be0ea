package keyed

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreTrySet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	won, err := store.TrySet(ctx, "pending_mute:g1:u1", "1", 0)
	if err != nil || !won {
		t.Fatalf("first TrySet: won=%t err=%v", won, err)
	}
	won, err = store.TrySet(ctx, "pending_mute:g1:u1", "1", 0)
	if err != nil || won {
		t.Fatalf("second TrySet should lose: won=%t err=%v", won, err)
	}

	if err := store.Delete(ctx, "pending_mute:g1:u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	won, err = store.TrySet(ctx, "pending_mute:g1:u1", "1", 0)
	if err != nil || !won {
		t.Fatalf("TrySet after delete: won=%t err=%v", won, err)
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "k", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k"); !ok {
		t.Fatalf("expected value before ttl")
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatalf("expected value expired after ttl")
	}
}
