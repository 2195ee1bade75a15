// Package notifyhub fans committed lifecycle events out to realtime
// subscribers. The lifecycle engine publishes to Redis pub/sub through the
// Broker; every portal instance runs a HubService that subscribes to the
// topic patterns and forwards events to its connected websocket clients.
package notifyhub

import (
	"context"
	"encoding/json"

	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/models"

	"github.com/redis/go-redis/v9"
)

// Topic patterns the hub listens on.
var topicPatterns = []string{"complaint_*", "user_*", "division_*"}

// Broker publishes events to Redis pub/sub, one channel per topic. It is
// the concrete Notifier wired into the lifecycle engine.
type Broker struct {
	Redis *redis.Client
	Ctx   context.Context
}

// NewBroker Constructor
func NewBroker(rdb *redis.Client) *Broker {
	return &Broker{Redis: rdb, Ctx: context.Background()}
}

// Publish serializes the event and publishes it to its topic channel.
func (b *Broker) Publish(ev models.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.Redis.Publish(b.Ctx, ev.Topic, payload).Err()
}

// Subscribe opens a pattern subscription covering every notification topic.
func (b *Broker) Subscribe() *redis.PubSub {
	return b.Redis.PSubscribe(b.Ctx, topicPatterns...)
}

// SubscribeUserTopics opens a pattern subscription for per-user
// notifications only (used by the Telegram relay).
func (b *Broker) SubscribeUserTopics() *redis.PubSub {
	return b.Redis.PSubscribe(b.Ctx, "user_*")
}
