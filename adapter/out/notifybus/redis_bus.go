// Package notifybus bridges the C6 subscription bus across processes:
// a publish anywhere is fanned out to every process's local bus via Redis
// Pub/Sub, so an SMTP ingress node and an HTTP server node can be
// different processes. Adapted from the teacher's Redis stream producer,
// swapped from consumer-group streams to Pub/Sub since notification
// delivery here is fire-and-forget, not a durable work queue.
package notifybus

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"easyncd/pkg/logger"
)

const channel = "eas:notify"

type event struct {
	UserID       int64  `json:"user_id"`
	CollectionID string `json:"collection_id"`
}

// local is the subset of core/service/ping.Bus that RedisBus forwards into.
type local interface {
	Notify(userID int64, collectionID string)
}

// RedisBus implements out.Notifier. Publish goes over Redis so every
// subscribed process's local bus wakes its own parked Ping calls.
type RedisBus struct {
	client *redis.Client
	log    *logger.Logger
}

func NewRedisBus(client *redis.Client, log *logger.Logger) *RedisBus {
	return &RedisBus{client: client, log: log}
}

func (b *RedisBus) Notify(userID int64, collectionID string) {
	payload, err := json.Marshal(event{UserID: userID, CollectionID: collectionID})
	if err != nil {
		b.log.WithError(err).Warn("notifybus_marshal_failed")
		return
	}
	if err := b.client.Publish(context.Background(), channel, payload).Err(); err != nil {
		b.log.WithError(err).Warn("notifybus_publish_failed")
	}
}

// Listen subscribes to the shared channel and forwards every event into
// the process-local bus until ctx is cancelled. Run it once at startup in
// its own goroutine.
func (b *RedisBus) Listen(ctx context.Context, localBus local) {
	sub := b.client.Subscribe(ctx, channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.WithError(err).Warn("notifybus_decode_failed")
				continue
			}
			localBus.Notify(ev.UserID, ev.CollectionID)
		}
	}
}
