package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Danielbclr/E-commerce-API/internal/domain"
	"github.com/Danielbclr/E-commerce-API/internal/repository"
)

func seedUserWithCart(t *testing.T, store *memStore) *domain.User {
	t.Helper()

	user := domain.NewUser("Test User", uuid.New().String()+"@example.com", "hash")
	require.NoError(t, store.CreateUser(context.Background(), user))
	require.NoError(t, store.CreateCart(context.Background(), domain.NewCart(user.ID)))
	return user
}

func seedProduct(t *testing.T, store *memStore, name string, price string, stock int) *domain.Product {
	t.Helper()

	product := domain.NewProduct(name, "", decimal.RequireFromString(price), stock)
	require.NoError(t, store.CreateProduct(context.Background(), product))
	return product
}

func addToCart(t *testing.T, store *memStore, user *domain.User, product *domain.Product, quantity int) {
	t.Helper()

	cart, err := store.GetCartByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NoError(t, store.AddCartItem(context.Background(), &domain.CartItem{
		ID:        uuid.New(),
		CartID:    cart.ID,
		ProductID: product.ID,
		Quantity:  quantity,
	}))
}

func testAddress() domain.Address {
	return domain.Address{
		Street:     "1 Main St",
		City:       "Springfield",
		State:      "IL",
		PostalCode: "62701",
		Country:    "US",
	}
}

func TestCreateOrder_SnapshotsCartAndClearsIt(t *testing.T) {
	store := newMemStore()
	dispatcher := &recordingDispatcher{}
	svc := NewOrderService(store, dispatcher)

	user := seedUserWithCart(t, store)
	product := seedProduct(t, store, "Mechanical Keyboard", "100.00", 10)
	addToCart(t, store, user, product, 3)

	order, err := svc.CreateOrder(context.Background(), user, testAddress(),
		domain.PaymentMethodCreditCard, testAddress())
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPendingPayment, order.Status)
	assert.Equal(t, domain.PaymentStatusPending, order.Payment.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, product.ID, order.Items[0].ProductID)
	assert.Equal(t, "Mechanical Keyboard", order.Items[0].ProductName)
	assert.True(t, order.Items[0].Subtotal.Equal(decimal.RequireFromString("300.00")),
		"subtotal was %s", order.Items[0].Subtotal)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("300.00")),
		"total was %s", order.TotalAmount)

	// The order is durable and the cart is empty afterwards.
	persisted, err := store.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, persisted.ID)

	cart, err := store.GetCartByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	// Stock is checked, never decremented.
	refreshed, err := store.GetProductByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, refreshed.StockQuantity)

	dispatched := dispatcher.dispatched()
	require.Len(t, dispatched, 1)
	assert.Equal(t, order.ID, dispatched[0].ID)
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	store := newMemStore()
	dispatcher := &recordingDispatcher{}
	svc := NewOrderService(store, dispatcher)

	user := seedUserWithCart(t, store)

	_, err := svc.CreateOrder(context.Background(), user, testAddress(),
		domain.PaymentMethodPayPal, testAddress())
	require.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Empty(t, dispatcher.dispatched())
}

func TestCreateOrder_InsufficientStockRollsBackEverything(t *testing.T) {
	store := newMemStore()
	dispatcher := &recordingDispatcher{}
	svc := NewOrderService(store, dispatcher)

	user := seedUserWithCart(t, store)
	inStock := seedProduct(t, store, "USB Cable", "10.00", 100)
	scarce := seedProduct(t, store, "Graphics Card", "700.00", 2)
	addToCart(t, store, user, inStock, 2)
	addToCart(t, store, user, scarce, 5)

	_, err := svc.CreateOrder(context.Background(), user, testAddress(),
		domain.PaymentMethodCreditCard, testAddress())

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, scarce.ID, stockErr.ProductID)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 2, stockErr.Available)

	// Nothing happened: no order, cart intact, no dispatch.
	orders, err := store.GetOrdersByUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)

	cart, err := store.GetCartByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)

	assert.Empty(t, dispatcher.dispatched())
}

func TestCreateOrder_MissingCartIsAnInconsistency(t *testing.T) {
	store := newMemStore()
	svc := NewOrderService(store, &recordingDispatcher{})

	// Registered user, but no cart was ever created.
	user := domain.NewUser("No Cart", "nocart@example.com", "hash")
	require.NoError(t, store.CreateUser(context.Background(), user))

	_, err := svc.CreateOrder(context.Background(), user, testAddress(),
		domain.PaymentMethodCreditCard, testAddress())

	var incErr *domain.InconsistencyError
	require.ErrorAs(t, err, &incErr)
}

func TestCreateOrder_MultipleItemsTotal(t *testing.T) {
	store := newMemStore()
	svc := NewOrderService(store, &recordingDispatcher{})

	user := seedUserWithCart(t, store)
	first := seedProduct(t, store, "Monitor", "249.99", 5)
	second := seedProduct(t, store, "Desk Mat", "19.50", 50)
	addToCart(t, store, user, first, 2)
	addToCart(t, store, user, second, 1)

	order, err := svc.CreateOrder(context.Background(), user, testAddress(),
		domain.PaymentMethodBankTransfer, testAddress())
	require.NoError(t, err)

	require.Len(t, order.Items, 2)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("519.48")),
		"total was %s", order.TotalAmount)
}

func TestHandlePaymentSuccess(t *testing.T) {
	store := newMemStore()
	svc := NewOrderService(store, &recordingDispatcher{})

	user := seedUserWithCart(t, store)
	product := seedProduct(t, store, "Headphones", "80.00", 4)
	addToCart(t, store, user, product, 1)

	order, err := svc.CreateOrder(context.Background(), user, testAddress(),
		domain.PaymentMethodCreditCard, testAddress())
	require.NoError(t, err)

	require.NoError(t, svc.HandlePaymentSuccess(context.Background(), order.ID, "TXN_1_test"))

	updated, err := store.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, updated.Status)
	assert.Equal(t, domain.PaymentStatusCompleted, updated.Payment.Status)
	assert.Equal(t, "TXN_1_test", updated.Payment.TransactionID)
	require.NotNil(t, updated.Payment.PaymentDate)
}

func TestHandlePaymentSuccess_DuplicateDeliveryKeepsFirstTransaction(t *testing.T) {
	store := newMemStore()
	svc := NewOrderService(store, &recordingDispatcher{})

	user := seedUserWithCart(t, store)
	product := seedProduct(t, store, "Webcam", "55.00", 8)
	addToCart(t, store, user, product, 1)

	order, err := svc.CreateOrder(context.Background(), user, testAddress(),
		domain.PaymentMethodDebitCard, testAddress())
	require.NoError(t, err)

	require.NoError(t, svc.HandlePaymentSuccess(context.Background(), order.ID, "TXN_first"))
	require.NoError(t, svc.HandlePaymentSuccess(context.Background(), order.ID, "TXN_second"))

	updated, err := store.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "TXN_first", updated.Payment.TransactionID)
	assert.Equal(t, domain.OrderStatusProcessing, updated.Status)
}

func TestHandlePaymentSuccess_UnknownOrder(t *testing.T) {
	store := newMemStore()
	svc := NewOrderService(store, &recordingDispatcher{})

	err := svc.HandlePaymentSuccess(context.Background(), uuid.New(), "TXN_ghost")

	var incErr *domain.InconsistencyError
	require.ErrorAs(t, err, &incErr)
	assert.True(t, errors.Is(err, repository.ErrOrderNotFound))
}

func TestMarkPaymentFailed_OrderStaysPendingPayment(t *testing.T) {
	store := newMemStore()
	svc := NewOrderService(store, &recordingDispatcher{})

	user := seedUserWithCart(t, store)
	product := seedProduct(t, store, "Speaker", "120.00", 3)
	addToCart(t, store, user, product, 1)

	order, err := svc.CreateOrder(context.Background(), user, testAddress(),
		domain.PaymentMethodCreditCard, testAddress())
	require.NoError(t, err)

	require.NoError(t, svc.MarkPaymentFailed(context.Background(), order.ID))

	updated, err := store.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusFailed, updated.Payment.Status)
	assert.Empty(t, updated.Payment.TransactionID)
	// The order itself is not cancelled: retrying or cancelling is a
	// separate flow.
	assert.Equal(t, domain.OrderStatusPendingPayment, updated.Status)
}

func TestMarkPaymentFailed_IgnoredAfterCompletion(t *testing.T) {
	store := newMemStore()
	svc := NewOrderService(store, &recordingDispatcher{})

	user := seedUserWithCart(t, store)
	product := seedProduct(t, store, "Microphone", "95.00", 2)
	addToCart(t, store, user, product, 1)

	order, err := svc.CreateOrder(context.Background(), user, testAddress(),
		domain.PaymentMethodCreditCard, testAddress())
	require.NoError(t, err)

	require.NoError(t, svc.HandlePaymentSuccess(context.Background(), order.ID, "TXN_done"))
	require.NoError(t, svc.MarkPaymentFailed(context.Background(), order.ID))

	updated, err := store.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, updated.Payment.Status)
	assert.Equal(t, domain.OrderStatusProcessing, updated.Status)
}

func TestFindOrderByIDAndUser_OwnershipIsOpaque(t *testing.T) {
	store := newMemStore()
	svc := NewOrderService(store, &recordingDispatcher{})

	owner := seedUserWithCart(t, store)
	other := seedUserWithCart(t, store)
	product := seedProduct(t, store, "Router", "60.00", 9)
	addToCart(t, store, owner, product, 1)

	order, err := svc.CreateOrder(context.Background(), owner, testAddress(),
		domain.PaymentMethodCreditCard, testAddress())
	require.NoError(t, err)

	found, err := svc.FindOrderByIDAndUser(context.Background(), order.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	// Someone else's order and a nonexistent order look identical.
	_, err = svc.FindOrderByIDAndUser(context.Background(), order.ID, other)
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
	_, err = svc.FindOrderByIDAndUser(context.Background(), uuid.New(), other)
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
}

func TestFindAllOrdersByUser_ScopedToOwner(t *testing.T) {
	store := newMemStore()
	svc := NewOrderService(store, &recordingDispatcher{})

	first := seedUserWithCart(t, store)
	second := seedUserWithCart(t, store)
	product := seedProduct(t, store, "Charger", "25.00", 20)

	addToCart(t, store, first, product, 1)
	_, err := svc.CreateOrder(context.Background(), first, testAddress(),
		domain.PaymentMethodCreditCard, testAddress())
	require.NoError(t, err)

	addToCart(t, store, first, product, 2)
	_, err = svc.CreateOrder(context.Background(), first, testAddress(),
		domain.PaymentMethodCreditCard, testAddress())
	require.NoError(t, err)

	firstOrders, err := svc.FindAllOrdersByUser(context.Background(), first)
	require.NoError(t, err)
	assert.Len(t, firstOrders, 2)

	secondOrders, err := svc.FindAllOrdersByUser(context.Background(), second)
	require.NoError(t, err)
	assert.Empty(t, secondOrders)
}
