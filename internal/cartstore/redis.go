package cartstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medistore/cart-api/internal/cart"
)

// Slot key per customer: cart:slot:{customer_id} -> versioned JSON envelope.
const keyCartSlot = "cart:slot:%s"

func NewRedisClient(addr string) *redis.Client {
	r := redis.NewClient(&redis.Options{Addr: addr})
	_ = r.WithTimeout(2 * time.Second)
	return r
}

// RedisStore keeps each cart slot in a Redis string with no TTL; the slot
// is durable state, not a cache.
type RedisStore struct {
	RDB *redis.Client
}

func (s *RedisStore) Load(ctx context.Context, customerID string) (cart.Snapshot, error) {
	raw, err := s.RDB.Get(ctx, fmt.Sprintf(keyCartSlot, customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart slot: %w", err)
	}
	return Decode(raw), nil
}

func (s *RedisStore) Save(ctx context.Context, customerID string, snap cart.Snapshot) error {
	raw, err := Encode(snap)
	if err != nil {
		return fmt.Errorf("encode cart slot: %w", err)
	}
	if err := s.RDB.Set(ctx, fmt.Sprintf(keyCartSlot, customerID), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set cart slot: %w", err)
	}
	return nil
}
