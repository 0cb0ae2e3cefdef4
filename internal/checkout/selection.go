package checkout

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/medistore/cart-api/internal/cart"
	"github.com/medistore/cart-api/internal/cartstore"
	"github.com/medistore/cart-api/internal/catalog"
)

// Mode is how the user arrived at checkout. It is resolved once per
// request from the query string and never transitions afterwards.
type Mode string

const (
	ModeFullCart Mode = "FULL_CART"
	ModeSubset   Mode = "SUBSET"
	ModeBuyNow   Mode = "BUY_NOW"
)

// Request captures the checkout query contract:
//
//	buyNow=<id>&qty=<n>       -> BuyNow
//	items=<id>&items=<id>...  -> Subset
//	neither                   -> FullCart
//
// This is a page-level convention kept from the storefront, not a
// versioned external API.
type Request struct {
	BuyNowID  string
	BuyNowQty int
	ItemIDs   []string
}

func ParseRequest(q url.Values) Request {
	req := Request{
		BuyNowID:  strings.TrimSpace(q.Get("buyNow")),
		BuyNowQty: 1,
	}
	if n, err := strconv.Atoi(q.Get("qty")); err == nil && n > 1 {
		req.BuyNowQty = n
	}
	for _, raw := range q["items"] {
		if id := strings.TrimSpace(raw); id != "" {
			req.ItemIDs = append(req.ItemIDs, id)
		}
	}
	return req
}

func (r Request) Mode() Mode {
	switch {
	case r.BuyNowID != "":
		return ModeBuyNow
	case len(r.ItemIDs) > 0:
		return ModeSubset
	default:
		return ModeFullCart
	}
}

// Path rebuilds the checkout path for this request, used as the redirect
// target when an anonymous user must log in first.
func (r Request) Path() string {
	q := url.Values{}
	switch r.Mode() {
	case ModeBuyNow:
		q.Set("buyNow", r.BuyNowID)
		q.Set("qty", strconv.Itoa(r.BuyNowQty))
	case ModeSubset:
		for _, id := range r.ItemIDs {
			q.Add("items", id)
		}
	}
	if len(q) == 0 {
		return "/checkout"
	}
	return "/checkout?" + q.Encode()
}

// Selection is the definitive ordered line list to submit, independent of
// how the user got here.
type Selection struct {
	Mode  Mode
	Lines []cart.Line
}

// EmptyMessage distinguishes the three empty states: a stale subset, a
// plain empty cart and a failed buy-now all guide the user differently.
func (s Selection) EmptyMessage() string {
	switch s.Mode {
	case ModeBuyNow:
		return "Please return to shop and choose Buy Now again."
	case ModeSubset:
		return "No selected products found for checkout."
	default:
		return "Your cart is empty."
	}
}

// CatalogLookup matches the single catalog call the resolver needs.
type CatalogLookup interface {
	MedicineByID(ctx context.Context, id string) (*catalog.Medicine, error)
}

// SelectionResolver turns a checkout request into a Selection. BuyNow
// resolution goes straight to the catalog and never touches the cart
// store; the item may never have been in the cart.
type SelectionResolver struct {
	store   cartstore.Store
	catalog CatalogLookup
}

func NewResolver(store cartstore.Store, lookup CatalogLookup) *SelectionResolver {
	return &SelectionResolver{store: store, catalog: lookup}
}

// Resolve produces the line list for the request. For BuyNow, a semantic
// catalog rejection surfaces its message via *catalog.LookupError and the
// selection stays empty; the caller shows the message and offers retry.
func (r *SelectionResolver) Resolve(ctx context.Context, customerID string, req Request) (Selection, error) {
	mode := req.Mode()

	if mode == ModeBuyNow {
		med, err := r.catalog.MedicineByID(ctx, req.BuyNowID)
		if err != nil {
			return Selection{Mode: ModeBuyNow}, err
		}
		qty := req.BuyNowQty
		if qty < 1 {
			qty = 1
		}
		return Selection{Mode: ModeBuyNow, Lines: []cart.Line{{
			ID:           med.ID,
			Name:         med.Name,
			Price:        med.Price,
			Manufacturer: med.Manufacturer,
			Category:     med.Category,
			Quantity:     qty,
		}}}, nil
	}

	snap, err := r.store.Load(ctx, customerID)
	if err != nil {
		return Selection{Mode: mode}, err
	}
	if mode == ModeSubset {
		return Selection{Mode: ModeSubset, Lines: snap.Filter(req.ItemIDs)}, nil
	}
	return Selection{Mode: ModeFullCart, Lines: snap}, nil
}
