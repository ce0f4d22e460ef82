package redis

import (
	"context"
	"testing"
	"time"
)

func TestIdempotencyStore_CheckAndSet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	t.Run("new key takes the processing lock", func(t *testing.T) {
		exists, resp, err := store.CheckAndSet(ctx, "fresh", nil, time.Minute)
		if err != nil || exists || resp != nil {
			t.Fatalf("unexpected result: exists=%v resp=%v err=%v", exists, resp, err)
		}

		val, err := client.Get(ctx, store.prefix+"fresh").Result()
		if err != nil || val != "processing" {
			t.Fatalf("expected placeholder lock, got val=%s err=%v", val, err)
		}
	})

	t.Run("existing key returns the cached response", func(t *testing.T) {
		if err := client.Set(ctx, store.prefix+"seen", "cached", time.Minute).Err(); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		exists, resp, err := store.CheckAndSet(ctx, "seen", nil, time.Minute)
		if err != nil {
			t.Fatalf("CheckAndSet failed: %v", err)
		}
		if !exists || string(resp) != "cached" {
			t.Fatalf("expected cached response, got exists=%v resp=%s", exists, resp)
		}
	})

	t.Run("expired key behaves like a new one", func(t *testing.T) {
		if _, _, err := store.CheckAndSet(ctx, "short", nil, time.Second); err != nil {
			t.Fatalf("CheckAndSet failed: %v", err)
		}

		mr.FastForward(2 * time.Second)

		exists, _, err := store.CheckAndSet(ctx, "short", nil, time.Minute)
		if err != nil || exists {
			t.Fatalf("expected expired key to be reusable, got exists=%v err=%v", exists, err)
		}
	})
}

func TestIdempotencyStore_Update(t *testing.T) {
	client, _ := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if err := store.Update(ctx, "complete", []byte("done"), time.Minute); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	val, err := client.Get(ctx, store.prefix+"complete").Result()
	if err != nil || val != "done" {
		t.Fatalf("expected stored response, got val=%s err=%v", val, err)
	}
}
