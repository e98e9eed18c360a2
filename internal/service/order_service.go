package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Danielbclr/E-commerce-API/internal/domain"
	"github.com/Danielbclr/E-commerce-API/internal/repository"
)

// SettlementDispatcher hands a durable order to the asynchronous payment
// settlement path. Dispatch must return immediately.
type SettlementDispatcher interface {
	Dispatch(order *domain.Order)
}

type OrderService struct {
	store      repository.Store
	dispatcher SettlementDispatcher
}

func NewOrderService(store repository.Store, dispatcher SettlementDispatcher) *OrderService {
	return &OrderService{store: store, dispatcher: dispatcher}
}

// SetDispatcher wires the settlement path after construction. The simulator
// needs this service as its failure sink, so one of the two is attached late.
func (s *OrderService) SetDispatcher(dispatcher SettlementDispatcher) {
	s.dispatcher = dispatcher
}

// CreateOrder converts the user's cart into an immutable order snapshot.
//
// Stock check, order persistence and cart clearing all run inside a single
// transaction: either the whole order exists and the cart is empty, or
// nothing changed. Settlement is handed off only after the transaction has
// committed, so the settlement path never observes an order that might still
// roll back. Stock is verified against current live quantities but not
// decremented or reserved here, so concurrent checkouts of the same product
// can both pass the check.
func (s *OrderService) CreateOrder(ctx context.Context, user *domain.User, shippingAddress domain.Address,
	method domain.PaymentMethod, billingAddress domain.Address) (*domain.Order, error) {

	log.Info().Str("user_id", user.ID.String()).Msg("Attempting to create order")

	var order *domain.Order
	err := s.store.WithinTx(ctx, func(tx repository.TxStore) error {
		cart, err := tx.Carts().GetCartByUserID(ctx, user.ID)
		if err != nil {
			return &domain.InconsistencyError{
				Message: fmt.Sprintf("shopping cart not found for user %s", user.Email),
				Err:     err,
			}
		}
		if cart.IsEmpty() {
			log.Warn().Str("user_id", user.ID.String()).Msg("Order creation failed: cart is empty")
			return domain.ErrEmptyCart
		}

		order = domain.NewOrder(user.ID, shippingAddress, method, billingAddress)

		for _, cartItem := range cart.Items {
			product, err := tx.Products().GetProductByID(ctx, cartItem.ProductID)
			if err != nil {
				return &domain.InconsistencyError{
					Message: fmt.Sprintf("cart references missing product %s", cartItem.ProductID),
					Err:     err,
				}
			}
			if err := VerifyStockAvailability(product, cartItem.Quantity); err != nil {
				return err
			}
			order.AddItem(product, cartItem.Quantity)
		}

		order.CalculateTotal()

		if err := tx.Orders().CreateOrder(ctx, order); err != nil {
			return err
		}
		return tx.Carts().ClearCart(ctx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", user.ID.String()).
		Str("total_amount", order.TotalAmount.String()).
		Str("status", string(order.Status)).
		Msg("Order created, dispatching payment settlement")

	// Fire-and-forget: the caller gets the order back in PENDING_PAYMENT and
	// never waits for settlement.
	s.dispatcher.Dispatch(order)

	return order, nil
}

// HandlePaymentSuccess is the settlement success callback. Delivery is
// at-least-once, so the handler is idempotent: once a payment is COMPLETED,
// later deliveries are ignored and the first transaction id is retained.
func (s *OrderService) HandlePaymentSuccess(ctx context.Context, orderID uuid.UUID, transactionID string) error {
	log.Info().Str("order_id", orderID.String()).Msg("Handling successful payment settlement")

	order, err := s.store.Orders().GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			// Order ids are never reused; a missing order here is a bug, not
			// a retryable condition.
			incErr := &domain.InconsistencyError{
				Message: fmt.Sprintf("settlement callback for unknown order %s", orderID),
				Err:     err,
			}
			log.Error().Err(incErr).Msg("Payment success callback failed")
			return incErr
		}
		return err
	}

	if order.Payment.Status == domain.PaymentStatusCompleted {
		log.Warn().Str("order_id", orderID.String()).Msg("Payment already completed, ignoring duplicate settlement")
		return nil
	}

	order.Payment.MarkCompleted(transactionID)
	order.Status = domain.OrderStatusProcessing

	if err := s.store.Orders().UpdateOrder(ctx, order); err != nil {
		return err
	}
	log.Info().
		Str("order_id", orderID.String()).
		Str("transaction_id", transactionID).
		Msg("Order updated after successful payment")
	return nil
}

// MarkPaymentFailed records a failed settlement. The order deliberately stays
// in PENDING_PAYMENT; moving it to CANCELLED is owned by a separate flow.
func (s *OrderService) MarkPaymentFailed(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.store.Orders().GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			incErr := &domain.InconsistencyError{
				Message: fmt.Sprintf("failed-settlement callback for unknown order %s", orderID),
				Err:     err,
			}
			log.Error().Err(incErr).Msg("Payment failure callback failed")
			return incErr
		}
		return err
	}

	if order.Payment.Status != domain.PaymentStatusPending {
		log.Warn().
			Str("order_id", orderID.String()).
			Str("payment_status", string(order.Payment.Status)).
			Msg("Payment no longer pending, ignoring failure outcome")
		return nil
	}

	order.Payment.MarkFailed()
	if err := s.store.Orders().UpdateOrder(ctx, order); err != nil {
		return err
	}
	log.Warn().Str("order_id", orderID.String()).Msg("Payment marked as failed")
	return nil
}

// FindOrderByIDAndUser never reveals whether an order exists under another
// owner: both cases surface as repository.ErrOrderNotFound.
func (s *OrderService) FindOrderByIDAndUser(ctx context.Context, orderID uuid.UUID, user *domain.User) (*domain.Order, error) {
	return s.store.Orders().GetOrderByIDAndUser(ctx, orderID, user.ID)
}

// FindAllOrdersByUser returns the user's orders, newest first.
func (s *OrderService) FindAllOrdersByUser(ctx context.Context, user *domain.User) ([]*domain.Order, error) {
	return s.store.Orders().GetOrdersByUser(ctx, user.ID)
}
