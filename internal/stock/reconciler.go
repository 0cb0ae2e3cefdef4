// Package stock reconciles cart lines against live catalog stock counts.
//
// Stock here is advisory: a failed or pending lookup never blocks checkout,
// the authoritative check happens server-side when the order is submitted.
package stock

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/medistore/cart-api/internal/cart"
	"github.com/medistore/cart-api/internal/catalog"
)

// Lookup is the slice of the catalog client the reconciler needs.
type Lookup interface {
	MedicineByID(ctx context.Context, id string) (*catalog.Medicine, error)
}

// Status is the reconciled state of one line. A nil Stock means the lookup
// failed or has not completed; that is distinct from zero.
type Status struct {
	Stock *int `json:"stock"`
}

func (s Status) Known() bool { return s.Stock != nil }

func (s Status) OutOfStock() bool { return s.Stock != nil && *s.Stock <= 0 }

func (s Status) OverQuantity(qty int) bool {
	return s.Stock != nil && *s.Stock > 0 && qty > *s.Stock
}

// View maps line ID to its reconciled status.
type View map[string]Status

// CanCheckout gates a selection: it needs at least one line and no line
// that is out of stock or over the available quantity. Unknown stock does
// not block (optimistic default).
func CanCheckout(lines []cart.Line, v View) bool {
	if len(lines) == 0 {
		return false
	}
	for _, l := range lines {
		st := v[l.ID]
		if st.OutOfStock() || st.OverQuantity(l.Quantity) {
			return false
		}
	}
	return true
}

// viewTTL bounds how long an unchanged ID set may reuse its view.
// Quantity-only cart edits within the window skip the fan-out, but a
// stable cart still re-reads stock often enough to catch a sell-out.
const viewTTL = 15 * time.Second

// Reconciler fans out one uncached lookup per line ID and aggregates the
// results. Each fan-out batch carries a generation tag tied to the ID set:
// quantity-only cart edits reuse the previous view without refetching, and
// results that arrive after the set changed again are discarded.
type Reconciler struct {
	lookup  Lookup
	log     *zap.Logger
	timeout time.Duration
	ttl     time.Duration

	mu        sync.Mutex
	gen       uint64
	ids       map[string]struct{}
	view      View
	fetchedAt time.Time
}

func NewReconciler(lookup Lookup, log *zap.Logger, perLookupTimeout time.Duration) *Reconciler {
	if perLookupTimeout <= 0 {
		perLookupTimeout = 3 * time.Second
	}
	return &Reconciler{
		lookup:  lookup,
		log:     log,
		timeout: perLookupTimeout,
		ttl:     viewTTL,
		ids:     map[string]struct{}{},
		view:    View{},
	}
}

// Refresh brings the view up to date for the given ID set and returns a
// copy of it. When the set matches the previous generation and the view is
// still within its TTL the cached view is returned as-is; an expired view
// triggers a fresh fan-out even for an unchanged set.
func (r *Reconciler) Refresh(ctx context.Context, ids []string) View {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	r.mu.Lock()
	if sameSet(r.ids, set) && time.Since(r.fetchedAt) < r.ttl {
		v := r.snapshotLocked()
		r.mu.Unlock()
		return v
	}
	r.gen++
	gen := r.gen
	r.ids = set
	r.view = View{}
	if len(set) == 0 {
		r.fetchedAt = time.Now()
		r.mu.Unlock()
		return View{}
	}
	r.mu.Unlock()

	results := make(View, len(set))
	var resMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for id := range set {
		id := id
		g.Go(func() error {
			lctx, cancel := context.WithTimeout(gctx, r.timeout)
			defer cancel()

			st := Status{}
			med, err := r.lookup.MedicineByID(lctx, id)
			if err != nil {
				// Unknown, not zero. Logged for diagnostics only.
				r.log.Warn("stock lookup failed", zap.String("medicine_id", id), zap.Error(err))
			} else {
				st.Stock = med.Stock
			}
			resMu.Lock()
			results[id] = st
			resMu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // lookups never fail the batch

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != gen {
		// A newer batch superseded this one while it was in flight.
		return r.snapshotLocked()
	}
	for id, st := range results {
		if _, ok := r.ids[id]; ok {
			r.view[id] = st
		}
	}
	r.fetchedAt = time.Now()
	return r.snapshotLocked()
}

func (r *Reconciler) snapshotLocked() View {
	out := make(View, len(r.view))
	for id, st := range r.view {
		out[id] = st
	}
	return out
}

func sameSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
