package orders

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/Keiter0309/EcomGrove/internal/kafka"
	"github.com/Keiter0309/EcomGrove/internal/redisx"
)

// StatusCacheWorker consumes order lifecycle events and keeps the redis
// order-status cache warm, so status reads on the API rarely hit postgres.
// Events are deduplicated by event id; replays are harmless.
type StatusCacheWorker struct {
	Redis *redis.Client
	Log   *zap.Logger
}

// Handle is installed as the kafka consumer handler.
func (w *StatusCacheWorker) Handle(ctx context.Context, m kafkago.Message) error {
	var env Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		w.Log.Warn("dropping undecodable event", zap.Error(err))
		return nil // poison message, do not block the partition
	}

	status, ok := StatusOf(env.EventType)
	if !ok {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, "status-cache", env.EventID)
	if exists, _ := redisx.Exists(ctx, w.Redis, dkey); exists {
		return nil
	}
	_ = w.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	// The cache key is scoped to the order's owner, so the owner has to come
	// out of the event payload.
	var userID, orderID int64
	switch env.EventType {
	case EventOrderCreated:
		p, err := kafkax.UnwrapPayload[OrderCreatedPayload](env.Payload)
		if err != nil {
			w.Log.Warn("dropping event with undecodable payload", zap.Error(err))
			return nil
		}
		userID, orderID = p.UserID, p.OrderID
	case EventOrderCancelled:
		p, err := kafkax.UnwrapPayload[OrderCancelledPayload](env.Payload)
		if err != nil {
			w.Log.Warn("dropping event with undecodable payload", zap.Error(err))
			return nil
		}
		userID, orderID = p.UserID, p.OrderID
		w.Log.Info("stock returned by cancellation",
			zap.Int64("order_id", p.OrderID), zap.Int("quantity", p.QuantityFreed))
	}

	key := fmt.Sprintf(redisx.KeyOrderStatus, userID, orderID)
	body, _ := json.Marshal(map[string]any{"status": status, "updated_at": env.OccurredAt})
	if err := w.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err(); err != nil {
		return err
	}
	w.Log.Debug("order status cached",
		zap.Int64("order_id", orderID), zap.String("status", string(status)))
	return nil
}
