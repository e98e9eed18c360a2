// Package payment simulates an external payment gateway. Each dispatched
// order gets exactly one asynchronous settlement attempt; the success path
// routes through a notifier so the workflow's idempotent handler applies it,
// while failures are written back directly.
package payment

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Danielbclr/E-commerce-API/internal/domain"
)

// Orders above this amount get extra scrutiny from the simulated gateway and
// fail more often.
var largeAmountThreshold = decimal.NewFromInt(500)

// SuccessNotifier delivers a successful settlement outcome to the order
// workflow. Implementations may publish a queue task or call the handler
// directly; delivery is at-least-once either way.
type SuccessNotifier interface {
	NotifyPaymentSuccess(ctx context.Context, orderID uuid.UUID, transactionID string) error
}

// FailureMarker records a failed settlement against the order's payment
// state.
type FailureMarker interface {
	MarkPaymentFailed(ctx context.Context, orderID uuid.UUID) error
}

// Simulator stands in for a real payment gateway integration. It knows
// nothing about order line items, only id, total amount and payment state.
type Simulator struct {
	notifier SuccessNotifier
	orders   FailureMarker

	// Injection points for deterministic tests.
	intn  func(n int) int
	sleep func(d time.Duration)
	now   func() time.Time
}

func NewSimulator(notifier SuccessNotifier, orders FailureMarker) *Simulator {
	return &Simulator{
		notifier: notifier,
		orders:   orders,
		intn:     rand.Intn,
		sleep:    time.Sleep,
		now:      time.Now,
	}
}

// Dispatch starts one settlement attempt for the order on its own goroutine
// and returns immediately.
func (s *Simulator) Dispatch(order *domain.Order) {
	if order == nil || order.ID == uuid.Nil {
		log.Error().Msg("Settlement dispatch received an order without an id")
		return
	}
	go s.process(order.ID, order.TotalAmount)
}

func (s *Simulator) process(orderID uuid.UUID, amount decimal.Decimal) {
	ctx := context.Background()

	// Simulation must never crash the async path; anything unexpected is
	// treated as a failed payment.
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("order_id", orderID.String()).
				Interface("panic", r).
				Msg("Unexpected error during payment settlement")
			s.markFailed(ctx, orderID)
		}
	}()

	delay := time.Duration(s.intn(3)+2) * time.Second
	log.Debug().
		Str("order_id", orderID.String()).
		Dur("delay", delay).
		Msg("Simulating payment gateway latency")
	s.sleep(delay)

	if s.decideOutcome(amount) {
		transactionID := s.transactionID(orderID)
		log.Info().
			Str("order_id", orderID.String()).
			Str("transaction_id", transactionID).
			Msg("Payment settlement succeeded")
		if err := s.notifier.NotifyPaymentSuccess(ctx, orderID, transactionID); err != nil {
			log.Error().Err(err).
				Str("order_id", orderID.String()).
				Msg("Failed to deliver settlement success, treating as failed payment")
			s.markFailed(ctx, orderID)
		}
		return
	}

	log.Warn().Str("order_id", orderID.String()).Msg("Payment settlement failed")
	s.markFailed(ctx, orderID)
}

// decideOutcome succeeds with 70% probability above the large-amount
// threshold and 90% below it.
func (s *Simulator) decideOutcome(amount decimal.Decimal) bool {
	if amount.GreaterThan(largeAmountThreshold) {
		return s.intn(10) < 7
	}
	return s.intn(10) < 9
}

// transactionID builds a synthetic gateway reference unique per invocation.
func (s *Simulator) transactionID(orderID uuid.UUID) string {
	return fmt.Sprintf("TXN_%d_%s", s.now().UnixMilli(), orderID)
}

func (s *Simulator) markFailed(ctx context.Context, orderID uuid.UUID) {
	if err := s.orders.MarkPaymentFailed(ctx, orderID); err != nil {
		log.Error().Err(err).
			Str("order_id", orderID.String()).
			Msg("Could not record failed settlement")
	}
}
