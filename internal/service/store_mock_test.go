package service

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Danielbclr/E-commerce-API/internal/domain"
	"github.com/Danielbclr/E-commerce-API/internal/repository"
)

// memStore is an in-memory repository.Store. WithinTx snapshots all state up
// front and restores it when fn fails, mirroring the rollback behavior of the
// SQL implementation.
type memStore struct {
	mu sync.Mutex

	users      map[uuid.UUID]*domain.User
	emails     map[string]uuid.UUID
	roles      map[string]*domain.Role
	userRoles  map[uuid.UUID][]int64
	products   map[uuid.UUID]*domain.Product
	carts      map[uuid.UUID]*domain.Cart
	cartByUser map[uuid.UUID]uuid.UUID
	cartItems  map[uuid.UUID]*domain.CartItem
	orders     map[uuid.UUID]*domain.Order

	nextRoleID int64
}

func newMemStore() *memStore {
	return &memStore{
		users:      make(map[uuid.UUID]*domain.User),
		emails:     make(map[string]uuid.UUID),
		roles:      make(map[string]*domain.Role),
		userRoles:  make(map[uuid.UUID][]int64),
		products:   make(map[uuid.UUID]*domain.Product),
		carts:      make(map[uuid.UUID]*domain.Cart),
		cartByUser: make(map[uuid.UUID]uuid.UUID),
		cartItems:  make(map[uuid.UUID]*domain.CartItem),
		orders:     make(map[uuid.UUID]*domain.Order),
	}
}

func (s *memStore) Users() repository.UserStore       { return s }
func (s *memStore) Products() repository.ProductStore { return s }
func (s *memStore) Carts() repository.CartStore       { return s }
func (s *memStore) Orders() repository.OrderStore     { return s }

func (s *memStore) WithinTx(_ context.Context, fn func(repository.TxStore) error) error {
	snap := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	users      map[uuid.UUID]*domain.User
	emails     map[string]uuid.UUID
	roles      map[string]*domain.Role
	userRoles  map[uuid.UUID][]int64
	products   map[uuid.UUID]*domain.Product
	carts      map[uuid.UUID]*domain.Cart
	cartByUser map[uuid.UUID]uuid.UUID
	cartItems  map[uuid.UUID]*domain.CartItem
	orders     map[uuid.UUID]*domain.Order
	nextRoleID int64
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := memSnapshot{
		users:      make(map[uuid.UUID]*domain.User, len(s.users)),
		emails:     make(map[string]uuid.UUID, len(s.emails)),
		roles:      make(map[string]*domain.Role, len(s.roles)),
		userRoles:  make(map[uuid.UUID][]int64, len(s.userRoles)),
		products:   make(map[uuid.UUID]*domain.Product, len(s.products)),
		carts:      make(map[uuid.UUID]*domain.Cart, len(s.carts)),
		cartByUser: make(map[uuid.UUID]uuid.UUID, len(s.cartByUser)),
		cartItems:  make(map[uuid.UUID]*domain.CartItem, len(s.cartItems)),
		orders:     make(map[uuid.UUID]*domain.Order, len(s.orders)),
		nextRoleID: s.nextRoleID,
	}
	for id, u := range s.users {
		snap.users[id] = copyUser(u)
	}
	for email, id := range s.emails {
		snap.emails[email] = id
	}
	for name, r := range s.roles {
		rc := *r
		snap.roles[name] = &rc
	}
	for id, roleIDs := range s.userRoles {
		snap.userRoles[id] = append([]int64(nil), roleIDs...)
	}
	for id, p := range s.products {
		pc := *p
		snap.products[id] = &pc
	}
	for id, c := range s.carts {
		cc := *c
		snap.carts[id] = &cc
	}
	for userID, cartID := range s.cartByUser {
		snap.cartByUser[userID] = cartID
	}
	for id, item := range s.cartItems {
		ic := *item
		snap.cartItems[id] = &ic
	}
	for id, o := range s.orders {
		snap.orders[id] = copyOrder(o)
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = snap.users
	s.emails = snap.emails
	s.roles = snap.roles
	s.userRoles = snap.userRoles
	s.products = snap.products
	s.carts = snap.carts
	s.cartByUser = snap.cartByUser
	s.cartItems = snap.cartItems
	s.orders = snap.orders
	s.nextRoleID = snap.nextRoleID
}

func copyUser(u *domain.User) *domain.User {
	uc := *u
	uc.Roles = append([]domain.Role(nil), u.Roles...)
	return &uc
}

func copyOrder(o *domain.Order) *domain.Order {
	oc := *o
	oc.Items = append([]domain.OrderLineItem(nil), o.Items...)
	return &oc
}

// UserStore

func (s *memStore) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emails[user.Email]; exists {
		return repository.ErrDuplicateEmail
	}
	s.users[user.ID] = copyUser(user)
	s.emails[user.Email] = user.ID
	return nil
}

func (s *memStore) GetUserByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return s.withRoles(copyUser(u)), nil
}

func (s *memStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.emails[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return s.withRoles(copyUser(s.users[id])), nil
}

func (s *memStore) withRoles(u *domain.User) *domain.User {
	u.Roles = nil
	for _, roleID := range s.userRoles[u.ID] {
		for _, r := range s.roles {
			if r.ID == roleID {
				u.Roles = append(u.Roles, *r)
			}
		}
	}
	return u
}

func (s *memStore) EnsureRole(_ context.Context, name string) (*domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.roles[name]; ok {
		rc := *r
		return &rc, nil
	}
	s.nextRoleID++
	r := &domain.Role{ID: s.nextRoleID, Name: name}
	s.roles[name] = r
	rc := *r
	return &rc, nil
}

func (s *memStore) AssignRole(_ context.Context, userID uuid.UUID, roleID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.userRoles[userID] {
		if existing == roleID {
			return nil
		}
	}
	s.userRoles[userID] = append(s.userRoles[userID], roleID)
	return nil
}

// ProductStore

func (s *memStore) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, *p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (s *memStore) GetProductByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	pc := *p
	return &pc, nil
}

func (s *memStore) CreateProduct(_ context.Context, product *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pc := *product
	s.products[product.ID] = &pc
	return nil
}

func (s *memStore) UpdateProduct(_ context.Context, product *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	pc := *product
	s.products[product.ID] = &pc
	return nil
}

func (s *memStore) DeleteProduct(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

// CartStore

func (s *memStore) CreateCart(_ context.Context, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cc := *cart
	cc.Items = nil
	s.carts[cart.ID] = &cc
	s.cartByUser[cart.UserID] = cart.ID
	return nil
}

func (s *memStore) GetCartByUserID(_ context.Context, userID uuid.UUID) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cartID, ok := s.cartByUser[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	cc := *s.carts[cartID]
	cc.Items = nil
	for _, item := range s.cartItems {
		if item.CartID == cartID {
			cc.Items = append(cc.Items, *item)
		}
	}
	sort.Slice(cc.Items, func(i, j int) bool {
		return cc.Items[i].ID.String() < cc.Items[j].ID.String()
	})
	return &cc, nil
}

func (s *memStore) GetCartItem(_ context.Context, itemID uuid.UUID) (*domain.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.cartItems[itemID]
	if !ok {
		return nil, repository.ErrCartItemNotFound
	}
	ic := *item
	return &ic, nil
}

func (s *memStore) AddCartItem(_ context.Context, item *domain.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ic := *item
	s.cartItems[item.ID] = &ic
	return nil
}

func (s *memStore) UpdateCartItemQuantity(_ context.Context, itemID uuid.UUID, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.cartItems[itemID]
	if !ok {
		return repository.ErrCartItemNotFound
	}
	item.Quantity = quantity
	return nil
}

func (s *memStore) DeleteCartItem(_ context.Context, itemID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cartItems[itemID]; !ok {
		return repository.ErrCartItemNotFound
	}
	delete(s.cartItems, itemID)
	return nil
}

func (s *memStore) ClearCart(_ context.Context, cartID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, item := range s.cartItems {
		if item.CartID == cartID {
			delete(s.cartItems, id)
		}
	}
	return nil
}

// OrderStore

func (s *memStore) CreateOrder(_ context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[order.ID] = copyOrder(order)
	return nil
}

func (s *memStore) GetOrderByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (s *memStore) GetOrderByIDAndUser(_ context.Context, id, userID uuid.UUID) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok || o.UserID != userID {
		return nil, repository.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (s *memStore) GetOrdersByUser(_ context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var orders []*domain.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			orders = append(orders, copyOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderDate.After(orders[j].OrderDate) })
	return orders, nil
}

// UpdateOrder persists the mutable fields only, like the SQL implementation:
// line items are immutable after creation.
func (s *memStore) UpdateOrder(_ context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.orders[order.ID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	existing.Status = order.Status
	existing.Payment.Status = order.Payment.Status
	existing.Payment.TransactionID = order.Payment.TransactionID
	existing.Payment.PaymentDate = order.Payment.PaymentDate
	return nil
}

// recordingDispatcher captures settlement dispatches instead of running them.
type recordingDispatcher struct {
	mu     sync.Mutex
	orders []*domain.Order
}

func (d *recordingDispatcher) Dispatch(order *domain.Order) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.orders = append(d.orders, order)
}

func (d *recordingDispatcher) dispatched() []*domain.Order {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*domain.Order(nil), d.orders...)
}
