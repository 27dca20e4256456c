package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	r, err := New("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("failed to connect to miniredis: %v", err)
	}
	t.Cleanup(r.Close)

	return r, mr
}

func TestIncrement_CountsWithinWindow(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := r.Increment(ctx, "ratelimit:ip:1.2.3.4", 15*time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Fatalf("expected counter %d, got %d", want, got)
		}
	}
}

func TestIncrement_WindowAnchoredAtFirstRequest(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()
	window := 15 * time.Minute

	if _, err := r.Increment(ctx, "ratelimit:ip:1.2.3.4", window); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Later hits must not push the expiry out; the window is fixed from
	// the first request.
	mr.FastForward(10 * time.Minute)
	if _, err := r.Increment(ctx, "ratelimit:ip:1.2.3.4", window); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mr.FastForward(5*time.Minute + time.Second)

	got, err := r.Increment(ctx, "ratelimit:ip:1.2.3.4", window)
	if err != nil {
		t.Fatalf("unexpected error after expiry: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected counter to restart at 1 after the window elapsed, got %d", got)
	}
}

func TestSetGet_RoundTrip(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	type record struct {
		Name string `json:"name"`
		Hits int    `json:"hits"`
	}

	r.Set(ctx, "user:abc", record{Name: "alice", Hits: 3}, time.Minute)

	var got record
	if !r.Get(ctx, "user:abc", &got) {
		t.Fatal("expected cache hit")
	}
	if got.Name != "alice" || got.Hits != 3 {
		t.Fatalf("unexpected cached value: %+v", got)
	}

	mr.FastForward(2 * time.Minute)
	if r.Get(ctx, "user:abc", &got) {
		t.Fatal("expected cache miss after TTL")
	}
}

func TestNew_RejectsBadURL(t *testing.T) {
	if _, err := New("not-a-url"); err == nil {
		t.Fatal("expected error for invalid redis url")
	}
}
