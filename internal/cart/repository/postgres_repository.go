package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// postgresRepository stores one row per user with the items as a single
// JSONB column; there is no item-level storage granularity.
type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) CartRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) FindByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	query := `SELECT id, user_id, items, version, created_at, updated_at
	          FROM carts WHERE user_id = $1`

	var cart domain.Cart
	var itemsJSON []byte
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&cart.ID,
		&cart.UserID,
		&itemsJSON,
		&cart.Version,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query cart by user: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &cart.Items); err != nil {
		return nil, fmt.Errorf("unmarshal cart items: %w", err)
	}
	return &cart, nil
}

func (r *postgresRepository) Create(ctx context.Context, userID string) (*domain.Cart, error) {
	query := `INSERT INTO carts (id, user_id, items, version, created_at, updated_at)
	          VALUES ($1, $2, '[]'::jsonb, 0, NOW(), NOW())
	          RETURNING created_at, updated_at`

	cart := &domain.Cart{
		ID:     uuid.NewString(),
		UserID: userID,
		Items:  []domain.CartItem{},
	}
	err := r.db.QueryRowContext(ctx, query, cart.ID, userID).Scan(&cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			// Another request created the cart first; caller re-reads.
			return nil, ErrVersionConflict
		}
		return nil, fmt.Errorf("insert cart: %w", err)
	}
	return cart, nil
}

func (r *postgresRepository) Replace(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	itemsJSON, err := json.Marshal(cart.Items)
	if err != nil {
		return nil, fmt.Errorf("marshal cart items: %w", err)
	}

	query := `UPDATE carts
	          SET items = $1, version = version + 1, updated_at = NOW()
	          WHERE user_id = $2 AND version = $3
	          RETURNING version, updated_at`

	updated := *cart
	err = r.db.QueryRowContext(ctx, query, itemsJSON, cart.UserID, cart.Version).
		Scan(&updated.Version, &updated.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVersionConflict
	}
	if err != nil {
		return nil, fmt.Errorf("replace cart: %w", err)
	}
	return &updated, nil
}

func (r *postgresRepository) Delete(ctx context.Context, userID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete cart rows affected: %w", err)
	}
	if rows == 0 {
		return ErrCartNotFound
	}
	return nil
}
