// Package cartstore persists one durable cart slot per customer.
//
// Writes are whole-slot overwrites: two writers racing on the same slot
// resolve to last-write-wins with no merge. That limitation is accepted,
// the cart has no cross-session coordination.
package cartstore

import (
	"context"

	"github.com/medistore/cart-api/internal/cart"
)

// Store reads and writes the serialized snapshot for a customer slot.
//
// Load returns an empty snapshot for a missing or corrupt slot; an error
// is only returned when the backend itself is unreachable. Save replaces
// the prior content entirely.
type Store interface {
	Load(ctx context.Context, customerID string) (cart.Snapshot, error)
	Save(ctx context.Context, customerID string, snap cart.Snapshot) error
}
