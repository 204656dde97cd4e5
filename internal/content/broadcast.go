package content

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// refreshChannel carries "content changed" signals between instances.
const refreshChannel = "content:refresh"

// Refresher is anything that can reload its content snapshot.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Broadcaster fans refresh signals out over Redis pub/sub so every
// instance reloads after an admin write on any of them.
type Broadcaster struct {
	client  *redis.Client
	channel string
	origin  string
}

// NewBroadcaster constructs a Broadcaster. A nil client yields a no-op broadcaster.
func NewBroadcaster(client *redis.Client, prefix, origin string) *Broadcaster {
	channel := refreshChannel
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		channel = prefix + ":" + refreshChannel
	}
	return &Broadcaster{client: client, channel: channel, origin: origin}
}

// Publish announces that content changed.
func (b *Broadcaster) Publish(ctx context.Context) error {
	if b == nil || b.client == nil {
		return nil
	}
	return b.client.Publish(ctx, b.channel, b.origin).Err()
}

// Listen refreshes target whenever another instance publishes, until ctx is done.
func (b *Broadcaster) Listen(ctx context.Context, target Refresher) {
	if b == nil || b.client == nil || target == nil {
		return
	}
	sub := b.client.Subscribe(ctx, b.channel)
	defer func() {
		_ = sub.Close()
	}()
	if _, errReceive := sub.Receive(ctx); errReceive != nil {
		log.WithError(errReceive).Warn("content: refresh subscription failed")
		return
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Payload == b.origin {
				continue
			}
			refreshCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			_ = target.Refresh(refreshCtx)
			cancel()
		}
	}
}

// Notifier refreshes the local snapshot and tells other instances to do the same.
type Notifier struct {
	loader      Refresher
	broadcaster *Broadcaster
}

// NewNotifier constructs a Notifier.
func NewNotifier(loader Refresher, broadcaster *Broadcaster) *Notifier {
	return &Notifier{loader: loader, broadcaster: broadcaster}
}

// Changed is called after every content write.
func (n *Notifier) Changed(ctx context.Context) {
	if n == nil {
		return
	}
	if n.loader != nil {
		_ = n.loader.Refresh(ctx)
	}
	if errPublish := n.broadcaster.Publish(ctx); errPublish != nil {
		log.WithError(errPublish).Warn("content: publish refresh failed")
	}
}
