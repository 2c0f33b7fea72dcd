package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-food-orders/internal/kafka"
	"github.com/ariefcatur/go-food-orders/internal/orders"
)

// broadcaster is the in-process fan-out surface of the notify registry.
type broadcaster interface {
	BroadcastToShop(ctx context.Context, shopID string, event []byte) []string
	BroadcastToStaff(staffID string, event []byte)
}

// stream is the outbound event stream (Kafka producer).
type stream interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Emitter fans every domain event out to the live staff connections and onto
// the order event stream. Both paths are fire-and-forget: a slow client or a
// down broker never rolls back the state transition that emitted the event.
type Emitter struct {
	Registry broadcaster
	Producer stream
	Service  string
}

func (e *Emitter) OrderCreated(ctx context.Context, o orders.Order, details []orders.Detail) {
	payload := kafkax.MustMarshal(orders.OrderCreatedPayload{Order: o, Details: details})
	e.Registry.BroadcastToShop(ctx, o.ShopID, payload)
	e.publish(orders.EventOrderCreated, o.Code, payload)
}

// OrderUpdated broadcasts a status change to the shop's managers. When the
// acting staff member is not among the resolved managers (stale directory
// cache right after a reassignment), they still get a direct push.
func (e *Emitter) OrderUpdated(ctx context.Context, o orders.Order, actorStaffID string) {
	payload := kafkax.MustMarshal(orders.OrderStatusChangedPayload{
		OrderCode:     o.Code,
		ShopID:        o.ShopID,
		UserID:        o.UserID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Total:         o.Total,
		Actor:         actorStaffID,
	})
	delivered := e.Registry.BroadcastToShop(ctx, o.ShopID, payload)
	if actorStaffID != "" && !contains(delivered, actorStaffID) {
		e.Registry.BroadcastToStaff(actorStaffID, payload)
	}
	e.publish(orders.EventOrderStatusChanged, o.Code, payload)
}

func (e *Emitter) publish(eventType, orderCode string, payload []byte) {
	env := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      e.Service,
		CorrelationID: orderCode,
		Payload:       payload,
	}
	e.Producer.Publish(orders.PartitionKey(orderCode), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
