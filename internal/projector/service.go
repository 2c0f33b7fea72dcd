package projector

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-food-orders/internal/kafka"
	"github.com/ariefcatur/go-food-orders/internal/orders"
	"github.com/ariefcatur/go-food-orders/internal/redisx"
)

// Service projects the order event stream into the Redis status read model
// that backs fast GET /orders/{code} responses.
type Service struct {
	Redis       *redis.Client
	ServiceName string
}

// HandleOrderEvent is installed as the consumer handler for order.events.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup by event id; redeliveries after a rebalance are expected
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}

	var doc orders.StatusDoc
	var code string
	switch env.EventType {
	case orders.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		code = p.Order.Code
		doc = orders.StatusDoc{
			UserID: p.Order.UserID, ShopID: p.Order.ShopID,
			Status: p.Order.Status, PaymentStatus: p.Order.PaymentStatus, UpdatedAt: env.OccurredAt,
		}
	case orders.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		code = p.OrderCode
		doc = orders.StatusDoc{
			UserID: p.UserID, ShopID: p.ShopID,
			Status: p.Status, PaymentStatus: p.PaymentStatus, UpdatedAt: env.OccurredAt,
		}
	default:
		return nil // ignore foreign event types
	}

	key := fmt.Sprintf(redisx.KeyOrderStatus, code)
	if err := s.Redis.Set(ctx, key, kafkax.MustMarshal(doc), redisx.TTLStatusCache).Err(); err != nil {
		return err
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	return nil
}
