package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Danielbclr/E-commerce-API/internal/domain"
)

type CartRepository struct {
	q sqlx.ExtContext
}

func (r *CartRepository) CreateCart(ctx context.Context, cart *domain.Cart) error {
	query := `INSERT INTO carts (id, user_id, created_at) VALUES ($1, $2, $3)`
	if _, err := r.q.ExecContext(ctx, query, cart.ID, cart.UserID, cart.CreatedAt); err != nil {
		return fmt.Errorf("insert cart: %w", err)
	}
	return nil
}

// GetCartByUserID loads the user's cart together with its line items.
func (r *CartRepository) GetCartByUserID(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	var cart domain.Cart
	query := `SELECT id, user_id, created_at FROM carts WHERE user_id = $1`
	if err := sqlx.GetContext(ctx, r.q, &cart, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("query cart by user: %w", err)
	}

	cart.Items = []domain.CartItem{}
	itemsQuery := `SELECT id, cart_id, product_id, quantity FROM cart_items WHERE cart_id = $1 ORDER BY id`
	if err := sqlx.SelectContext(ctx, r.q, &cart.Items, itemsQuery, cart.ID); err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	return &cart, nil
}

func (r *CartRepository) GetCartItem(ctx context.Context, itemID uuid.UUID) (*domain.CartItem, error) {
	var item domain.CartItem
	query := `SELECT id, cart_id, product_id, quantity FROM cart_items WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.q, &item, query, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("query cart item: %w", err)
	}
	return &item, nil
}

func (r *CartRepository) AddCartItem(ctx context.Context, item *domain.CartItem) error {
	query := `INSERT INTO cart_items (id, cart_id, product_id, quantity) VALUES ($1, $2, $3, $4)`
	if _, err := r.q.ExecContext(ctx, query, item.ID, item.CartID, item.ProductID, item.Quantity); err != nil {
		return fmt.Errorf("insert cart item: %w", err)
	}
	return nil
}

func (r *CartRepository) UpdateCartItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $2 WHERE id = $1`, itemID, quantity)
	if err != nil {
		return fmt.Errorf("update cart item quantity: %w", err)
	}
	return requireAffected(result, ErrCartItemNotFound)
}

func (r *CartRepository) DeleteCartItem(ctx context.Context, itemID uuid.UUID) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	return requireAffected(result, ErrCartItemNotFound)
}

// ClearCart removes every line item; the cart row itself persists.
func (r *CartRepository) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
