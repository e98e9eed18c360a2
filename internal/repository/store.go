package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Danielbclr/E-commerce-API/internal/domain"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrProductNotFound  = errors.New("product not found")
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrOrderNotFound    = errors.New("order not found")
)

type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	EnsureRole(ctx context.Context, name string) (*domain.Role, error)
	AssignRole(ctx context.Context, userID uuid.UUID, roleID int64) error
}

type ProductStore interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) error
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type CartStore interface {
	CreateCart(ctx context.Context, cart *domain.Cart) error
	GetCartByUserID(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	GetCartItem(ctx context.Context, itemID uuid.UUID) (*domain.CartItem, error)
	AddCartItem(ctx context.Context, item *domain.CartItem) error
	UpdateCartItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteCartItem(ctx context.Context, itemID uuid.UUID) error
	ClearCart(ctx context.Context, cartID uuid.UUID) error
}

type OrderStore interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetOrderByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*domain.Order, error)
	GetOrdersByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	UpdateOrder(ctx context.Context, order *domain.Order) error
}

// TxStore bundles the per-aggregate stores bound to a single execution scope,
// either the shared pool or one transaction.
type TxStore interface {
	Users() UserStore
	Products() ProductStore
	Carts() CartStore
	Orders() OrderStore
}

// Store is the root persistence handle. WithinTx runs fn against a TxStore
// whose every operation joins one SQL transaction; if fn returns an error the
// transaction rolls back and nothing persists.
type Store interface {
	TxStore
	WithinTx(ctx context.Context, fn func(TxStore) error) error
}

// SQLStore implements Store over Postgres via sqlx.
type SQLStore struct {
	db       *sqlx.DB
	users    *UserRepository
	products *ProductRepository
	carts    *CartRepository
	orders   *OrderRepository
}

func NewStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{
		db:       db,
		users:    &UserRepository{q: db},
		products: &ProductRepository{q: db},
		carts:    &CartRepository{q: db},
		orders:   &OrderRepository{q: db},
	}
}

func (s *SQLStore) Users() UserStore       { return s.users }
func (s *SQLStore) Products() ProductStore { return s.products }
func (s *SQLStore) Carts() CartStore       { return s.carts }
func (s *SQLStore) Orders() OrderStore     { return s.orders }

// txStore is a TxStore whose repositories share one open transaction.
type txStore struct {
	tx *sqlx.Tx
}

func (t *txStore) Users() UserStore       { return &UserRepository{q: t.tx} }
func (t *txStore) Products() ProductStore { return &ProductRepository{q: t.tx} }
func (t *txStore) Carts() CartStore       { return &CartRepository{q: t.tx} }
func (t *txStore) Orders() OrderStore     { return &OrderRepository{q: t.tx} }

func (s *SQLStore) WithinTx(ctx context.Context, fn func(TxStore) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&txStore{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
