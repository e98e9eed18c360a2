package payment

import (
	"context"

	"github.com/google/uuid"
)

// SuccessHandlerFunc matches the order workflow's settlement success handler.
type SuccessHandlerFunc func(ctx context.Context, orderID uuid.UUID, transactionID string) error

// DirectNotifier delivers settlement successes with a direct in-process call.
// Used when no message broker is configured, and in tests.
type DirectNotifier struct {
	handler SuccessHandlerFunc
}

func NewDirectNotifier(handler SuccessHandlerFunc) *DirectNotifier {
	return &DirectNotifier{handler: handler}
}

func (n *DirectNotifier) NotifyPaymentSuccess(ctx context.Context, orderID uuid.UUID, transactionID string) error {
	return n.handler(ctx, orderID, transactionID)
}
