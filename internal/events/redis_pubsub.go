package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// subscriberBuffer bounds how far a slow handler may fall behind before
// go-redis starts dropping messages.
const subscriberBuffer = 256

// RedisBus fans events out across API replicas and the worker over Redis
// pub/sub. Delivery is at most once; missed events are not replayed.
type RedisBus struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisBus(client *redis.Client, log *zap.Logger) *RedisBus {
	return &RedisBus{client: client, log: log}
}

func (b *RedisBus) Publish(ctx context.Context, stream string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	receivers, err := b.client.Publish(ctx, stream, data).Result()
	if err != nil {
		b.log.Warn("publish event failed", zap.String("type", event.Type), zap.Error(err))
		return err
	}
	b.log.Debug("event published",
		zap.String("stream", stream),
		zap.String("type", event.Type),
		zap.Int64("receivers", receivers),
	)
	return nil
}

// Subscribe confirms the subscription, then dispatches messages on a goroutine
// until ctx is cancelled. A panicking handler loses only its own event.
func (b *RedisBus) Subscribe(ctx context.Context, stream string, handler func(Event)) error {
	pubsub := b.client.Subscribe(ctx, stream)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", stream, err)
	}
	ch := pubsub.Channel(redis.WithChannelSize(subscriberBuffer))

	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				b.dispatch(stream, msg.Payload, handler)
			}
		}
	}()

	return nil
}

func (b *RedisBus) dispatch(stream, payload string, handler func(Event)) {
	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		b.log.Error("failed to decode event", zap.String("stream", stream), zap.Error(err))
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked", zap.String("type", event.Type), zap.Any("panic", r))
		}
	}()
	handler(event)
}
