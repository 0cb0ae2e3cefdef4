package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/medistore/cart-api/internal/cart"
	"github.com/medistore/cart-api/internal/cartstore"
	"github.com/medistore/cart-api/internal/stock"
)

type CartHandler struct {
	Store cartstore.Store
	Stock *stock.Reconciler
	Log   *zap.Logger
}

func (h *CartHandler) Register(r chi.Router) {
	r.Get("/cart", h.getCart)
	r.Post("/cart/items", h.addItem)
	r.Patch("/cart/items/{id}", h.setQuantity)
	r.Delete("/cart/items/{id}", h.removeItem)
	r.Delete("/cart", h.clearCart)
}

type cartLineView struct {
	cart.Line
	Stock        *int `json:"stock"`
	OutOfStock   bool `json:"outOfStock"`
	OverQuantity bool `json:"overQuantity"`
}

type cartView struct {
	Items       []cartLineView `json:"items"`
	Totals      cart.Totals    `json:"totals"`
	CanCheckout bool           `json:"canCheckout"`
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	snap, err := h.Store.Load(ctx, CustomerID(ctx))
	if err != nil {
		h.Log.Error("load cart", zap.Error(err))
		fail(w, http.StatusServiceUnavailable, "Cart is temporarily unavailable.")
		return
	}

	view := h.Stock.Refresh(ctx, snap.IDs())
	ok(w, buildCartView(snap, view))
}

func buildCartView(snap cart.Snapshot, view stock.View) cartView {
	out := cartView{
		Items:       make([]cartLineView, 0, len(snap)),
		Totals:      cart.ComputeTotals(snap),
		CanCheckout: stock.CanCheckout(snap, view),
	}
	for _, l := range snap {
		st := view[l.ID]
		out.Items = append(out.Items, cartLineView{
			Line:         l,
			Stock:        st.Stock,
			OutOfStock:   st.OutOfStock(),
			OverQuantity: st.OverQuantity(l.Quantity),
		})
	}
	return out
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var c cart.Candidate
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		fail(w, http.StatusBadRequest, "invalid json")
		return
	}
	if c.ID == "" || c.Name == "" {
		fail(w, http.StatusBadRequest, "missing fields")
		return
	}

	h.mutate(w, r, func(snap cart.Snapshot) cart.Snapshot {
		return snap.Add(c)
	})
}

func (h *CartHandler) setQuantity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		fail(w, http.StatusBadRequest, "invalid json")
		return
	}

	// A quantity below 1 is silently rejected: the snapshot comes back
	// unchanged. Removal is the only path to an empty line.
	h.mutate(w, r, func(snap cart.Snapshot) cart.Snapshot {
		return snap.SetQuantity(id, body.Quantity)
	})
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, func(snap cart.Snapshot) cart.Snapshot {
		return snap.Remove(id)
	})
}

func (h *CartHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(snap cart.Snapshot) cart.Snapshot {
		return snap.Clear()
	})
}

// mutate runs one load -> pure mutation -> save cycle. Every mutation
// persists the new snapshot; handlers never skip the save.
func (h *CartHandler) mutate(w http.ResponseWriter, r *http.Request, fn func(cart.Snapshot) cart.Snapshot) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	customerID := CustomerID(ctx)
	snap, err := h.Store.Load(ctx, customerID)
	if err != nil {
		h.Log.Error("load cart", zap.Error(err))
		fail(w, http.StatusServiceUnavailable, "Cart is temporarily unavailable.")
		return
	}

	next := fn(snap)
	if err := h.Store.Save(ctx, customerID, next); err != nil {
		h.Log.Error("save cart", zap.Error(err))
		fail(w, http.StatusServiceUnavailable, "Cart is temporarily unavailable.")
		return
	}

	view := h.Stock.Refresh(ctx, next.IDs())
	ok(w, buildCartView(next, view))
}
