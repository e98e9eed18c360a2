package domain

import (
	"fmt"
	"strings"
	"time"
)

type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard    PaymentMethod = "DEBIT_CARD"
	PaymentMethodPayPal       PaymentMethod = "PAYPAL"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodUnknown      PaymentMethod = "UNKNOWN"
)

// ParsePaymentMethod maps a client-supplied string onto a known payment method.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(strings.ToUpper(s)) {
	case PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodPayPal,
		PaymentMethodBankTransfer, PaymentMethodUnknown:
		return PaymentMethod(strings.ToUpper(s)), nil
	default:
		return PaymentMethodUnknown, fmt.Errorf("unknown payment method: %q", s)
	}
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// PaymentDetails is the payment sub-state embedded in an order. It is created
// PENDING and transitions to COMPLETED or FAILED exactly once, driven by the
// settlement simulator.
type PaymentDetails struct {
	Method         PaymentMethod `json:"method" db:"payment_method"`
	Status         PaymentStatus `json:"status" db:"payment_status"`
	TransactionID  string        `json:"transaction_id,omitempty" db:"payment_transaction_id"`
	PaymentDate    *time.Time    `json:"settled_at,omitempty" db:"payment_date"`
	BillingAddress Address       `json:"billing_address"`
}

func NewPaymentDetails(method PaymentMethod, billingAddress Address) PaymentDetails {
	return PaymentDetails{
		Method:         method,
		Status:         PaymentStatusPending,
		BillingAddress: billingAddress,
	}
}

// MarkCompleted records the gateway transaction id and stamps the settlement
// time.
func (p *PaymentDetails) MarkCompleted(transactionID string) {
	now := time.Now()
	p.Status = PaymentStatusCompleted
	p.TransactionID = transactionID
	p.PaymentDate = &now
}

// MarkFailed stamps the settlement time; no transaction id exists for a failed
// settlement.
func (p *PaymentDetails) MarkFailed() {
	now := time.Now()
	p.Status = PaymentStatusFailed
	p.PaymentDate = &now
}
