package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order code
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	Order   Order    `json:"order"`
	Details []Detail `json:"details"`
}

// StatusDoc is the order-status read model kept in Redis by the projector.
// Owner and shop ids travel with it so the polling endpoint can authorize
// from the cache alone.
type StatusDoc struct {
	UserID        string        `json:"user_id"`
	ShopID        string        `json:"shop_id"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type OrderStatusChangedPayload struct {
	OrderCode     string        `json:"order_code"`
	ShopID        string        `json:"shop_id"`
	UserID        string        `json:"user_id"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Total         int64         `json:"total"`
	Actor         string        `json:"actor,omitempty"`
}
