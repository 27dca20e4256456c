package broker

import (
	"context"
	"testing"
	"time"

	"edge/pkg/cache"
	"edge/pkg/envelope"

	"github.com/alicebob/miniredis/v2"
)

func TestPublishEvent_DeliversToSubscriber(t *testing.T) {
	mr := miniredis.RunT(t)
	r, err := cache.New("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("failed to connect to miniredis: %v", err)
	}
	t.Cleanup(r.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := New(r, "identity")

	received := make(chan envelope.Envelope, 1)
	b.Subscribe(ctx, func(env envelope.Envelope) {
		received <- env
	}, "user.registered")

	// Give the subscriber goroutine a moment to attach.
	time.Sleep(50 * time.Millisecond)

	b.PublishEvent(ctx, "user.registered", map[string]interface{}{
		"uuid": "abc", "username": "alice",
	})

	select {
	case env := <-received:
		if env.Event != "user.registered" || env.Service != "identity" {
			t.Fatalf("unexpected envelope: %+v", env)
		}
		data, err := envelope.ParseData[map[string]string](env)
		if err != nil {
			t.Fatalf("failed to parse event data: %v", err)
		}
		if data["username"] != "alice" {
			t.Fatalf("unexpected event data: %v", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}
