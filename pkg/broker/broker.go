// Package broker publishes service events over redis pub/sub so other
// cluster services can react without a direct call path.
package broker

import (
	"context"
	"log"

	"edge/pkg/cache"
	"edge/pkg/envelope"
)

type HandlerFunc func(envelope.Envelope)

type Broker struct {
	redis   *cache.Redis
	service string
}

func New(r *cache.Redis, service string) *Broker {
	return &Broker{redis: r, service: service}
}

// PublishEvent is fire-and-forget: a bus failure is logged and never
// affects the HTTP outcome of the request that produced the event.
func (b *Broker) PublishEvent(ctx context.Context, event string, data interface{}) {
	env, err := envelope.NewEvent(event, b.service, data)
	if err != nil {
		log.Printf("[%s] Event marshal failed: %v", b.service, err)
		return
	}
	payload, err := env.Marshal()
	if err != nil {
		log.Printf("[%s] Event marshal failed: %v", b.service, err)
		return
	}
	if err := b.redis.Publish(ctx, event, payload); err != nil {
		log.Printf("[%s] Event publish failed: %v", b.service, err)
	}
}

// Subscribe delivers every envelope published on the given channels to
// handler until ctx is cancelled.
func (b *Broker) Subscribe(ctx context.Context, handler HandlerFunc, channels ...string) {
	sub := b.redis.Subscribe(ctx, channels...)
	ch := sub.Channel()

	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				env, err := envelope.Unmarshal([]byte(msg.Payload))
				if err != nil {
					log.Printf("[%s] Dropping malformed event: %v", b.service, err)
					continue
				}
				handler(env)
			}
		}
	}()
}
