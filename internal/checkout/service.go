package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/medistore/cart-api/internal/cart"
	"github.com/medistore/cart-api/internal/cartstore"
	"github.com/medistore/cart-api/internal/catalog"
	kafkax "github.com/medistore/cart-api/internal/kafka"
	"github.com/medistore/cart-api/internal/orderapi"
)

// GenericFailureMessage covers transport-level order failures; semantic
// rejections carry the upstream message verbatim instead.
const GenericFailureMessage = "Failed to place order."

// ErrLoginRequired means no customer identity was supplied. The handler
// turns it into a login redirect that preserves the checkout path.
var ErrLoginRequired = errors.New("login required")

// ValidationError is a pre-network rejection (empty address, empty
// selection). Nothing was mutated and nothing was sent upstream.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// RejectionError carries a success:false message from the order service,
// passed through verbatim. The cart is left untouched so the user can
// retry.
type RejectionError struct {
	Message string
}

func (e *RejectionError) Error() string { return e.Message }

// OrderCreator is the slice of the order API client the service needs.
type OrderCreator interface {
	Create(ctx context.Context, token string, p orderapi.CreateOrderPayload) (orderapi.CreateOrderResult, error)
}

// EventPublisher matches the kafka producer's fire-and-forget publish.
type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Service is the order submission adapter: it resolves the selection,
// checks preconditions, submits the order and applies the mode-specific
// cart cleanup.
type Service struct {
	Store    cartstore.Store
	Resolver *SelectionResolver
	Orders   OrderCreator
	Events   EventPublisher
	Producer string // service name stamped on events
	Log      *zap.Logger
}

type PlaceOrderInput struct {
	CustomerID      string
	Token           string
	ShippingAddress string
	Request         Request
	TraceID         string
}

type PlaceOrderResult struct {
	OrderID string
	Message string
}

// PlaceOrder runs the full submission flow. It performs no retries.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (PlaceOrderResult, error) {
	if in.CustomerID == "" {
		return PlaceOrderResult{}, ErrLoginRequired
	}

	address := strings.TrimSpace(in.ShippingAddress)
	if address == "" {
		return PlaceOrderResult{}, &ValidationError{Message: "Please provide your shipping address."}
	}

	sel, err := s.Resolver.Resolve(ctx, in.CustomerID, in.Request)
	if err != nil {
		var le *catalog.LookupError
		if errors.As(err, &le) {
			return PlaceOrderResult{}, &ValidationError{Message: le.Message}
		}
		s.Log.Error("resolve checkout selection", zap.Error(err))
		return PlaceOrderResult{}, fmt.Errorf("resolve selection: %w", err)
	}
	if len(sel.Lines) == 0 {
		return PlaceOrderResult{}, &ValidationError{Message: sel.EmptyMessage()}
	}

	totals := computeSelectionTotal(sel)
	payload := orderapi.CreateOrderPayload{
		CustomerID:      in.CustomerID,
		PaymentMethod:   orderapi.PaymentMethodCOD,
		ShippingAddress: address,
		TotalAmount:     totals,
		Items:           make([]orderapi.OrderItem, 0, len(sel.Lines)),
	}
	for _, l := range sel.Lines {
		payload.Items = append(payload.Items, orderapi.OrderItem{
			MedicineID: l.ID,
			Quantity:   l.Quantity,
			Price:      l.Price,
		})
	}

	res, err := s.Orders.Create(ctx, in.Token, payload)
	if err != nil {
		s.Log.Error("order submission transport failure",
			zap.String("customer_id", in.CustomerID),
			zap.String("mode", string(sel.Mode)),
			zap.Error(err))
		return PlaceOrderResult{}, &RejectionError{Message: GenericFailureMessage}
	}
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = GenericFailureMessage
		}
		return PlaceOrderResult{}, &RejectionError{Message: msg}
	}

	s.cleanup(ctx, in.CustomerID, sel)
	s.publishCompleted(in, sel, res.OrderID, totals)

	msg := res.Message
	if msg == "" {
		msg = "Order created successfully."
	}
	return PlaceOrderResult{OrderID: res.OrderID, Message: msg}, nil
}

// cleanup applies the mode-specific consequence of a successful order:
// full-cart clears the slot, subset removes exactly the submitted IDs and
// keeps the rest in order, buy-now leaves the slot untouched.
func (s *Service) cleanup(ctx context.Context, customerID string, sel Selection) {
	if sel.Mode == ModeBuyNow {
		return
	}

	snap, err := s.Store.Load(ctx, customerID)
	if err != nil {
		s.Log.Warn("post-order cart load failed", zap.String("customer_id", customerID), zap.Error(err))
		return
	}
	if sel.Mode == ModeFullCart {
		snap = snap.Clear()
	} else {
		for _, l := range sel.Lines {
			snap = snap.Remove(l.ID)
		}
	}
	if err := s.Store.Save(ctx, customerID, snap); err != nil {
		// The order already succeeded; a stale cart is recoverable.
		s.Log.Warn("post-order cart save failed", zap.String("customer_id", customerID), zap.Error(err))
	}
}

func (s *Service) publishCompleted(in PlaceOrderInput, sel Selection, orderID string, total float64) {
	if s.Events == nil {
		return
	}

	items := make([]CheckoutItem, 0, len(sel.Lines))
	for _, l := range sel.Lines {
		items = append(items, CheckoutItem{MedicineID: l.ID, Quantity: l.Quantity, Price: l.Price})
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventCheckoutCompleted,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.Producer,
		TraceID:       in.TraceID,
		CorrelationID: orderID,
		Payload: kafkax.MustMarshal(CheckoutCompletedPayload{
			OrderID:     orderID,
			CustomerID:  in.CustomerID,
			Mode:        sel.Mode,
			Items:       items,
			TotalAmount: total,
		}),
	}
	s.Events.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventCheckoutCompleted)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// computeSelectionTotal mirrors the storefront order summary: subtotal
// plus flat shipping under the free-shipping threshold, rounded to two
// decimals for the payload.
func computeSelectionTotal(sel Selection) float64 {
	t := cart.ComputeTotals(sel.Lines)
	return math.Round(t.Total*100) / 100
}
