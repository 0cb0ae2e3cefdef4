package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/medistore/cart-api/internal/cart"
	"github.com/medistore/cart-api/internal/catalog"
	"github.com/medistore/cart-api/internal/checkout"
	"github.com/medistore/cart-api/internal/stock"
)

type CheckoutHandler struct {
	Resolver *checkout.SelectionResolver
	Service  *checkout.Service
	Stock    *stock.Reconciler
	Log      *zap.Logger
}

func (h *CheckoutHandler) Register(r chi.Router) {
	r.Get("/checkout", h.preview)
	r.Post("/checkout", h.placeOrder)
}

type checkoutView struct {
	Mode        checkout.Mode `json:"mode"`
	Items       []cart.Line   `json:"items"`
	Totals      cart.Totals   `json:"totals"`
	CanCheckout bool          `json:"canCheckout"`
	Notice      string        `json:"notice,omitempty"`
}

// preview resolves the selection for the current query mode and returns
// the lines, totals and the stock gate the order button hangs off.
func (h *CheckoutHandler) preview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	req := checkout.ParseRequest(r.URL.Query())
	sel, err := h.Resolver.Resolve(ctx, CustomerID(ctx), req)
	if err != nil {
		var le *catalog.LookupError
		if errors.As(err, &le) {
			fail(w, http.StatusOK, le.Message)
			return
		}
		h.Log.Error("resolve checkout", zap.Error(err))
		fail(w, http.StatusBadGateway, "Failed to load checkout.")
		return
	}

	view := h.Stock.Refresh(ctx, lineIDs(sel.Lines))
	out := checkoutView{
		Mode:        sel.Mode,
		Items:       sel.Lines,
		Totals:      cart.ComputeTotals(sel.Lines),
		CanCheckout: stock.CanCheckout(sel.Lines, view),
	}
	if len(sel.Lines) == 0 {
		out.Notice = sel.EmptyMessage()
	}
	ok(w, out)
}

type placeOrderRequest struct {
	ShippingAddress string `json:"shippingAddress"`
}

type placeOrderData struct {
	OrderID  string `json:"orderId,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

func (h *CheckoutHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var body placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		fail(w, http.StatusBadRequest, "invalid json")
		return
	}

	req := checkout.ParseRequest(r.URL.Query())
	in := checkout.PlaceOrderInput{
		Token:           TokenFrom(ctx),
		ShippingAddress: body.ShippingAddress,
		Request:         req,
		TraceID:         chimw.GetReqID(ctx),
	}
	if u := UserFrom(ctx); u != nil {
		in.CustomerID = u.ID
	}

	res, err := h.Service.PlaceOrder(ctx, in)
	if err != nil {
		h.respondPlaceOrderError(w, req, err)
		return
	}

	okMessage(w, res.Message, placeOrderData{OrderID: res.OrderID, Redirect: "/orders"})
}

func (h *CheckoutHandler) respondPlaceOrderError(w http.ResponseWriter, req checkout.Request, err error) {
	var ve *checkout.ValidationError
	var re *checkout.RejectionError

	switch {
	case errors.Is(err, checkout.ErrLoginRequired):
		writeJSON(w, http.StatusUnauthorized, response{
			Success: false,
			Message: "Please login again to continue checkout.",
			Data:    placeOrderData{Redirect: "/login?redirect=" + url.QueryEscape(req.Path())},
		})
	case errors.As(err, &ve):
		fail(w, http.StatusBadRequest, ve.Message)
	case errors.As(err, &re):
		// Covers both upstream rejection (verbatim message) and transport
		// failure (generic message); the caller sees no difference.
		fail(w, http.StatusBadGateway, re.Message)
	default:
		h.Log.Error("place order", zap.Error(err))
		fail(w, http.StatusInternalServerError, checkout.GenericFailureMessage)
	}
}

func lineIDs(lines []cart.Line) []string {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ID)
	}
	return ids
}
