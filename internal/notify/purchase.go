// Package notify announces completed purchases to interested parties over Redis pub/sub.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PurchaseEvent is published after stock was taken for a buy
type PurchaseEvent struct {
	ID        string    `json:"id"`
	ProductID int64     `json:"product_id"`
	UserID    int64     `json:"user_id"`
	Count     int       `json:"count"`
	Remaining int       `json:"remaining"`
	At        time.Time `json:"at"`
}

// NewPurchaseEvent stamps an event with a fresh id and the current time
func NewPurchaseEvent(productID, userID int64, count, remaining int) PurchaseEvent {
	return PurchaseEvent{
		ID:        uuid.NewString(),
		ProductID: productID,
		UserID:    userID,
		Count:     count,
		Remaining: remaining,
		At:        time.Now().UTC(),
	}
}

// Publisher delivers purchase events
type Publisher interface {
	PublishPurchase(ctx context.Context, event PurchaseEvent) error
}

// RedisPublisher publishes events as JSON on one Redis channel
type RedisPublisher struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisPublisher creates a publisher for the given channel
func NewRedisPublisher(client *redis.Client, channel string, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		channel: channel,
		logger:  logger.Named("notify"),
	}
}

func (p *RedisPublisher) PublishPurchase(ctx context.Context, event PurchaseEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode purchase event: %w", err)
	}

	receivers, err := p.client.Publish(ctx, p.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("failed to publish purchase event: %w", err)
	}

	p.logger.Debug("Purchase event published",
		zap.String("event_id", event.ID),
		zap.Int64("product_id", event.ProductID),
		zap.Int64("receivers", receivers),
	)
	return nil
}

// NopPublisher drops every event; used when Redis is disabled
type NopPublisher struct{}

func (NopPublisher) PublishPurchase(context.Context, PurchaseEvent) error { return nil }

// Subscribe delivers every event arriving on channel to handle until ctx is cancelled.
// Messages that are not valid events are logged and skipped.
func Subscribe(ctx context.Context, client *redis.Client, channel string, logger *zap.Logger, handle func(PurchaseEvent)) error {
	sub := client.Subscribe(ctx, channel)
	defer sub.Close()

	// Wait for the subscription to be confirmed
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			var event PurchaseEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				logger.Warn("Skipping malformed purchase event", zap.Error(err), zap.String("channel", msg.Channel))
				continue
			}
			handle(event)
		}
	}
}
