package checkout

import (
	"encoding/json"
	"time"
)

const (
	EventCheckoutCompleted = "CheckoutCompleted"

	TopicCheckoutCompleted = "cart.checkout.completed"
)

// Envelope is the wire format shared with the other storefront services.
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

type CheckoutItem struct {
	MedicineID string  `json:"medicineId"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

type CheckoutCompletedPayload struct {
	OrderID     string         `json:"order_id"`
	CustomerID  string         `json:"customer_id"`
	Mode        Mode           `json:"mode"`
	Items       []CheckoutItem `json:"items"`
	TotalAmount float64        `json:"total_amount"`
}

// PartitionKey keeps all events of one order on one partition so they
// stay ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
