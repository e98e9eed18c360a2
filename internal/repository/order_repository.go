package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Danielbclr/E-commerce-API/internal/domain"
)

type OrderRepository struct {
	q sqlx.ExtContext
}

const orderColumns = `
	id, user_id, total_amount, order_date, order_status,
	shipping_street, shipping_city, shipping_state, shipping_postal_code, shipping_country,
	payment_method, payment_status, payment_transaction_id, payment_date,
	billing_street, billing_city, billing_state, billing_postal_code, billing_country
`

// CreateOrder persists the order row and all of its line items.
func (r *OrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err := r.q.ExecContext(ctx, query,
		order.ID, order.UserID, order.TotalAmount, order.OrderDate, order.Status,
		order.ShippingAddress.Street, order.ShippingAddress.City, order.ShippingAddress.State,
		order.ShippingAddress.PostalCode, order.ShippingAddress.Country,
		order.Payment.Method, order.Payment.Status,
		nullableString(order.Payment.TransactionID), order.Payment.PaymentDate,
		order.Payment.BillingAddress.Street, order.Payment.BillingAddress.City,
		order.Payment.BillingAddress.State, order.Payment.BillingAddress.PostalCode,
		order.Payment.BillingAddress.Country,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, product_name, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i := range order.Items {
		item := &order.Items[i]
		if _, err := r.q.ExecContext(ctx, itemQuery,
			item.ID, item.OrderID, item.ProductID, item.ProductName,
			item.Quantity, item.UnitPrice, item.Subtotal); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (r *OrderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetOrderByIDAndUser is the ownership-scoped lookup. A missing order and an
// order owned by someone else both come back as ErrOrderNotFound.
func (r *OrderRepository) GetOrderByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND user_id = $2`
	return r.getOne(ctx, query, id, userID)
}

func (r *OrderRepository) getOne(ctx context.Context, query string, args ...interface{}) (*domain.Order, error) {
	row := r.q.QueryRowxContext(ctx, query, args...)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("query order: %w", err)
	}
	if err := r.loadItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrderRepository) GetOrdersByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY order_date DESC`
	rows, err := r.q.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrder persists the mutable part of an order: lifecycle status and
// payment details. Line items are frozen at creation and never touched here.
func (r *OrderRepository) UpdateOrder(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE orders
		SET order_status = $2, payment_status = $3, payment_transaction_id = $4, payment_date = $5
		WHERE id = $1
	`
	result, err := r.q.ExecContext(ctx, query,
		order.ID, order.Status, order.Payment.Status,
		nullableString(order.Payment.TransactionID), order.Payment.PaymentDate)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return requireAffected(result, ErrOrderNotFound)
}

func (r *OrderRepository) loadItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(orders))
	byID := make(map[uuid.UUID]*domain.Order, len(orders))
	for i, order := range orders {
		ids[i] = order.ID
		byID[order.ID] = order
		order.Items = []domain.OrderLineItem{}
	}

	query := `
		SELECT id, order_id, product_id, product_name, quantity, unit_price, subtotal
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`
	var items []domain.OrderLineItem
	if err := sqlx.SelectContext(ctx, r.q, &items, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	for _, item := range items {
		order := byID[item.OrderID]
		order.Items = append(order.Items, item)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var transactionID sql.NullString
	var paymentDate sql.NullTime

	err := row.Scan(
		&order.ID, &order.UserID, &order.TotalAmount, &order.OrderDate, &order.Status,
		&order.ShippingAddress.Street, &order.ShippingAddress.City, &order.ShippingAddress.State,
		&order.ShippingAddress.PostalCode, &order.ShippingAddress.Country,
		&order.Payment.Method, &order.Payment.Status, &transactionID, &paymentDate,
		&order.Payment.BillingAddress.Street, &order.Payment.BillingAddress.City,
		&order.Payment.BillingAddress.State, &order.Payment.BillingAddress.PostalCode,
		&order.Payment.BillingAddress.Country,
	)
	if err != nil {
		return nil, err
	}

	if transactionID.Valid {
		order.Payment.TransactionID = transactionID.String
	}
	if paymentDate.Valid {
		t := paymentDate.Time
		order.Payment.PaymentDate = &t
	}
	return &order, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
