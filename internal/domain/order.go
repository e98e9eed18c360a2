package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	// OrderStatusPendingPayment means the order exists but settlement has not
	// completed yet.
	OrderStatusPendingPayment OrderStatus = "PENDING_PAYMENT"
	// OrderStatusProcessing means payment settled and the order is being
	// prepared for shipment.
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// Order is an immutable-after-creation snapshot of a purchase with a mutable
// lifecycle status and payment sub-state.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"user_id" db:"user_id"`
	Items           []OrderLineItem `json:"items"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	OrderDate       time.Time       `json:"order_date" db:"order_date"`
	ShippingAddress Address         `json:"shipping_address"`
	Payment         PaymentDetails  `json:"payment_details"`
	Status          OrderStatus     `json:"status" db:"order_status"`
}

// OrderLineItem freezes a product's id, name, unit price and quantity at
// order-creation time so the order stays historically accurate even if the
// catalog record changes later.
type OrderLineItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID   uuid.UUID       `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal" db:"subtotal"`
}

func NewOrder(userID uuid.UUID, shippingAddress Address, method PaymentMethod, billingAddress Address) *Order {
	return &Order{
		ID:              uuid.New(),
		UserID:          userID,
		TotalAmount:     decimal.Zero,
		OrderDate:       time.Now(),
		ShippingAddress: shippingAddress,
		Payment:         NewPaymentDetails(method, billingAddress),
		Status:          OrderStatusPendingPayment,
	}
}

// AddItem snapshots the product into a new line item and recomputes the order
// total.
func (o *Order) AddItem(product *Product, quantity int) {
	item := OrderLineItem{
		ID:          uuid.New(),
		OrderID:     o.ID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   product.Price,
	}
	item.CalculateSubtotal()
	o.Items = append(o.Items, item)
	o.CalculateTotal()
}

// CalculateTotal recomputes the order total as the sum of line-item subtotals.
// An order with no items totals zero.
func (o *Order) CalculateTotal() {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].Subtotal)
	}
	o.TotalAmount = total
}

// CalculateSubtotal derives the line subtotal from quantity and unit price.
// Invalid quantities yield a zero subtotal rather than a negative amount.
func (li *OrderLineItem) CalculateSubtotal() {
	if li.Quantity <= 0 {
		li.Subtotal = decimal.Zero
		return
	}
	li.Subtotal = li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}
