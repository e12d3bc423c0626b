package orders

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Keiter0309/EcomGrove/internal/domain"
)

const (
	EventOrderCreated   = "OrderCreated"
	EventOrderCancelled = "OrderCancelled"
)

// Envelope wraps every order event on the wire.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID     int64           `json:"order_id"`
	UserID      int64           `json:"user_id"`
	ProductID   int64           `json:"product_id"`
	Quantity    int             `json:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type OrderCancelledPayload struct {
	OrderID       int64 `json:"order_id"`
	UserID        int64 `json:"user_id"`
	ProductID     int64 `json:"product_id"`
	QuantityFreed int   `json:"quantity_freed"`
}

// StatusOf maps an event type to the order status it implies.
func StatusOf(eventType string) (domain.Status, bool) {
	switch eventType {
	case EventOrderCreated:
		return domain.StatusCreated, true
	case EventOrderCancelled:
		return domain.StatusCancelled, true
	}
	return "", false
}
