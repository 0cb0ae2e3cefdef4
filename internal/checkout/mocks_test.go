package checkout

import (
	"context"
	"errors"
	"net/url"
	"sync"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/medistore/cart-api/internal/cart"
	"github.com/medistore/cart-api/internal/catalog"
	"github.com/medistore/cart-api/internal/orderapi"
)

type memStore struct {
	mu    sync.Mutex
	slots map[string]cart.Snapshot
	loads int
}

func newMemStore() *memStore {
	return &memStore{slots: map[string]cart.Snapshot{}}
}

func (m *memStore) Load(_ context.Context, customerID string) (cart.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	snap, ok := m.slots[customerID]
	if !ok {
		return cart.Snapshot{}, nil
	}
	return snap, nil
}

func (m *memStore) Save(_ context.Context, customerID string, snap cart.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[customerID] = snap
	return nil
}

func (m *memStore) loadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads
}

type mockCatalog struct {
	meds map[string]*catalog.Medicine
	err  error
}

func (m *mockCatalog) MedicineByID(_ context.Context, id string) (*catalog.Medicine, error) {
	if m.err != nil {
		return nil, m.err
	}
	med, ok := m.meds[id]
	if !ok {
		return nil, &catalog.LookupError{Message: "Medicine not found"}
	}
	return med, nil
}

type mockOrders struct {
	mu       sync.Mutex
	result   orderapi.CreateOrderResult
	err      error
	payloads []orderapi.CreateOrderPayload
	tokens   []string
}

func (m *mockOrders) Create(_ context.Context, token string, p orderapi.CreateOrderPayload) (orderapi.CreateOrderResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = append(m.payloads, p)
	m.tokens = append(m.tokens, token)
	if m.err != nil {
		return orderapi.CreateOrderResult{}, m.err
	}
	return m.result, nil
}

func (m *mockOrders) lastPayload() orderapi.CreateOrderPayload {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payloads[len(m.payloads)-1]
}

type mockEvents struct {
	mu        sync.Mutex
	published []publishedEvent
}

type publishedEvent struct {
	key   []byte
	value []byte
}

func (m *mockEvents) Publish(key, value []byte, _ ...kafkago.Header) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, publishedEvent{key: key, value: value})
}

func (m *mockEvents) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.published)
}

var errNetwork = errors.New("connection refused")

func queryOf(raw string) url.Values {
	q, _ := url.ParseQuery(raw)
	return q
}
