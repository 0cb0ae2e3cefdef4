package cart

import "math"

const (
	// ShippingCost is the flat delivery fee in BDT.
	ShippingCost = 120
	// FreeShippingThreshold waives the fee once the subtotal reaches it
	// (inclusive).
	FreeShippingThreshold = 1000
)

// Totals are derived from a set of lines. The computation is selection
// agnostic: callers feed it the full cart, a selected subset or a single
// buy-now line.
type Totals struct {
	Subtotal            float64 `json:"subtotal"`
	Shipping            float64 `json:"shipping"`
	Total               float64 `json:"total"`
	ItemCount           int     `json:"itemCount"`
	LeftForFreeShipping float64 `json:"leftForFreeShipping"`
}

// ComputeTotals is pure and deterministic. An empty line set yields all
// zeroes: shipping is never charged on an empty cart.
func ComputeTotals(lines []Line) Totals {
	var t Totals
	for _, l := range lines {
		t.Subtotal += l.Price * float64(l.Quantity)
		t.ItemCount += l.Quantity
	}
	if len(lines) > 0 && t.Subtotal < FreeShippingThreshold {
		t.Shipping = ShippingCost
	}
	t.Total = t.Subtotal + t.Shipping
	t.LeftForFreeShipping = math.Max(FreeShippingThreshold-t.Subtotal, 0)
	return t
}
