package redis

import (
	"context"
	"testing"
	"time"
)

func TestIdempotencyCheckAndSetNewKey(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	exists, cached, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if exists {
		t.Fatalf("expected new key to not exist")
	}
	if cached != nil {
		t.Fatalf("expected no cached response, got %s", cached)
	}

	// The placeholder locks the key for the in-flight request.
	val, err := mr.Get("idempotency:key-1")
	if err != nil {
		t.Fatalf("expected placeholder key: %v", err)
	}
	if val != "processing" {
		t.Fatalf("expected processing placeholder, got %s", val)
	}
}

func TestIdempotencyCheckAndSetExistingKey(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if _, _, err := store.CheckAndSet(ctx, "key-1", []byte(`{"ok":true}`), time.Minute); err != nil {
		t.Fatalf("first check failed: %v", err)
	}

	exists, cached, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("second check failed: %v", err)
	}
	if !exists {
		t.Fatalf("expected key to exist on second check")
	}
	if string(cached) != `{"ok":true}` {
		t.Fatalf("expected cached response, got %s", cached)
	}
}

func TestIdempotencyUpdate(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if _, _, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute); err != nil {
		t.Fatalf("check failed: %v", err)
	}

	if err := store.Update(ctx, "key-1", []byte(`{"done":true}`), time.Minute); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	exists, cached, err := store.CheckAndSet(ctx, "key-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !exists || string(cached) != `{"done":true}` {
		t.Fatalf("expected updated response, got exists=%v body=%s", exists, cached)
	}
}
