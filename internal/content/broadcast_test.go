package content

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type countingRefresher struct {
	calls atomic.Int32
}

func (c *countingRefresher) Refresh(context.Context) error {
	c.calls.Add(1)
	return nil
}

func TestBroadcaster_RefreshesOtherInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	clientA := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	clientB := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = clientA.Close()
		_ = clientB.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	self := &countingRefresher{}
	peer := &countingRefresher{}
	a := NewBroadcaster(clientA, "test", "instance-a")
	b := NewBroadcaster(clientB, "test", "instance-b")
	go a.Listen(ctx, self)
	go b.Listen(ctx, peer)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if errPublish := a.Publish(ctx); errPublish != nil {
			t.Fatalf("publish: %v", errPublish)
		}
		if peer.calls.Load() > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected peer refresh")
		}
		time.Sleep(20 * time.Millisecond)
	}
	if self.calls.Load() != 0 {
		t.Fatalf("expected publisher to ignore its own signal, got %d", self.calls.Load())
	}
}

func TestNotifier_NilBroadcaster(t *testing.T) {
	target := &countingRefresher{}
	NewNotifier(target, NewBroadcaster(nil, "", "x")).Changed(context.Background())
	if target.calls.Load() != 1 {
		t.Fatalf("expected local refresh, got %d", target.calls.Load())
	}
}
