package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/medistore/cart-api/internal/cart"
	"github.com/medistore/cart-api/internal/catalog"
	"github.com/medistore/cart-api/internal/session"
	"github.com/medistore/cart-api/internal/stock"
)

type memStore struct {
	mu    sync.Mutex
	slots map[string]cart.Snapshot
}

func (m *memStore) Load(_ context.Context, customerID string) (cart.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slots[customerID], nil
}

func (m *memStore) Save(_ context.Context, customerID string, snap cart.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[customerID] = snap
	return nil
}

type stubSessions struct {
	users map[string]*session.User
}

func (s *stubSessions) UserFromToken(_ context.Context, token string) (*session.User, error) {
	return s.users[token], nil
}

type stubCatalog struct {
	stock map[string]int
}

func (s *stubCatalog) MedicineByID(_ context.Context, id string) (*catalog.Medicine, error) {
	if n, ok := s.stock[id]; ok {
		return &catalog.Medicine{ID: id, Stock: &n}, nil
	}
	return nil, &catalog.LookupError{Message: "Medicine not found"}
}

func newTestServer(t *testing.T) (*httptest.Server, *memStore) {
	t.Helper()

	store := &memStore{slots: map[string]cart.Snapshot{}}
	sessions := &stubSessions{users: map[string]*session.User{
		"cust-token":  {ID: "u1", Role: "customer"},
		"admin-token": {ID: "adm", Role: "admin"},
	}}
	reconciler := stock.NewReconciler(&stubCatalog{stock: map[string]int{"m1": 10, "m2": 0}}, zap.NewNop(), time.Second)

	auth := &Authenticator{Sessions: sessions, Log: zap.NewNop()}
	h := &CartHandler{Store: store, Stock: reconciler, Log: zap.NewNop()}

	router := NewRouter("cart-api-test")
	router.Group(func(r chi.Router) {
		r.Use(auth.Identity, RequireAccess)
		h.Register(r)
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, store
}

func do(t *testing.T, method, url, token string, body any) (*http.Response, response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func cartViewOf(t *testing.T, out response) cartView {
	t.Helper()
	raw, err := json.Marshal(out.Data)
	require.NoError(t, err)
	var view cartView
	require.NoError(t, json.Unmarshal(raw, &view))
	return view
}

func TestCartRoutesRequireCustomer(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := do(t, http.MethodGet, srv.URL+"/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/cart", "admin-token", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAddItemMergesAndPersists(t *testing.T) {
	srv, store := newTestServer(t)
	item := cart.Candidate{ID: "m1", Name: "Napa", Price: 2.5}

	for i := 0; i < 3; i++ {
		resp, _ := do(t, http.MethodPost, srv.URL+"/cart/items", "cust-token", item)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	_, out := do(t, http.MethodGet, srv.URL+"/cart", "cust-token", nil)
	view := cartViewOf(t, out)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, 3, view.Totals.ItemCount)

	snap, err := store.Load(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, 3, snap[0].Quantity)
}

func TestSetQuantityBelowOneIsSilentNoOp(t *testing.T) {
	srv, _ := newTestServer(t)
	do(t, http.MethodPost, srv.URL+"/cart/items", "cust-token", cart.Candidate{ID: "m1", Name: "Napa", Price: 2.5})

	resp, out := do(t, http.MethodPatch, srv.URL+"/cart/items/m1", "cust-token", map[string]int{"quantity": 0})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := cartViewOf(t, out)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 1, view.Items[0].Quantity)

	_, out = do(t, http.MethodPatch, srv.URL+"/cart/items/m1", "cust-token", map[string]int{"quantity": 5})
	assert.Equal(t, 5, cartViewOf(t, out).Items[0].Quantity)
}

func TestRemoveAndClear(t *testing.T) {
	srv, _ := newTestServer(t)
	do(t, http.MethodPost, srv.URL+"/cart/items", "cust-token", cart.Candidate{ID: "m1", Name: "Napa", Price: 2.5})
	do(t, http.MethodPost, srv.URL+"/cart/items", "cust-token", cart.Candidate{ID: "m2", Name: "Seclo", Price: 7})

	_, out := do(t, http.MethodDelete, srv.URL+"/cart/items/m1", "cust-token", nil)
	view := cartViewOf(t, out)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "m2", view.Items[0].ID)

	_, out = do(t, http.MethodDelete, srv.URL+"/cart", "cust-token", nil)
	assert.Empty(t, cartViewOf(t, out).Items)
}

func TestCartViewFlagsOutOfStock(t *testing.T) {
	srv, _ := newTestServer(t)
	do(t, http.MethodPost, srv.URL+"/cart/items", "cust-token", cart.Candidate{ID: "m2", Name: "Seclo", Price: 7})

	_, out := do(t, http.MethodGet, srv.URL+"/cart", "cust-token", nil)
	view := cartViewOf(t, out)
	require.Len(t, view.Items, 1)
	assert.True(t, view.Items[0].OutOfStock)
	assert.False(t, view.CanCheckout)
}
