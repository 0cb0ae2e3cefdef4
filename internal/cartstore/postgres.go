package cartstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medistore/cart-api/internal/cart"
)

// PostgresStore keeps one row per customer slot:
//
//	CREATE TABLE cart_slots (
//	    customer_id TEXT PRIMARY KEY,
//	    payload     JSONB NOT NULL,
//	    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresStore struct {
	DB *pgxpool.Pool
}

func (s *PostgresStore) Load(ctx context.Context, customerID string) (cart.Snapshot, error) {
	var raw []byte
	err := s.DB.QueryRow(ctx,
		`SELECT payload FROM cart_slots WHERE customer_id=$1`, customerID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return cart.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select cart slot: %w", err)
	}
	return Decode(raw), nil
}

func (s *PostgresStore) Save(ctx context.Context, customerID string, snap cart.Snapshot) error {
	raw, err := Encode(snap)
	if err != nil {
		return fmt.Errorf("encode cart slot: %w", err)
	}
	_, err = s.DB.Exec(ctx, `
		INSERT INTO cart_slots(customer_id, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (customer_id) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = now()
	`, customerID, raw)
	if err != nil {
		return fmt.Errorf("upsert cart slot: %w", err)
	}
	return nil
}
