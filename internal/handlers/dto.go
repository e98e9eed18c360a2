package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Danielbclr/E-commerce-API/internal/domain"
)

type CreateOrderRequest struct {
	ShippingAddress domain.Address `json:"shipping_address" validate:"required"`
	BillingAddress  domain.Address `json:"billing_address" validate:"required"`
	PaymentMethod   string         `json:"payment_method" validate:"required"`
}

type OrderResponse struct {
	ID              uuid.UUID              `json:"id"`
	UserID          uuid.UUID              `json:"user_id"`
	Items           []OrderItemResponse    `json:"items"`
	TotalAmount     decimal.Decimal        `json:"total_amount"`
	OrderDate       time.Time              `json:"order_date"`
	ShippingAddress domain.Address         `json:"shipping_address"`
	PaymentDetails  PaymentDetailsResponse `json:"payment_details"`
	Status          string                 `json:"status"`
}

type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type PaymentDetailsResponse struct {
	Method         string         `json:"method"`
	Status         string         `json:"status"`
	TransactionID  string         `json:"transaction_id,omitempty"`
	SettledAt      *time.Time     `json:"settled_at,omitempty"`
	BillingAddress domain.Address `json:"billing_address"`
}

func mapOrder(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		}
	}
	return OrderResponse{
		ID:              order.ID,
		UserID:          order.UserID,
		Items:           items,
		TotalAmount:     order.TotalAmount,
		OrderDate:       order.OrderDate,
		ShippingAddress: order.ShippingAddress,
		PaymentDetails: PaymentDetailsResponse{
			Method:         string(order.Payment.Method),
			Status:         string(order.Payment.Status),
			TransactionID:  order.Payment.TransactionID,
			SettledAt:      order.Payment.PaymentDate,
			BillingAddress: order.Payment.BillingAddress,
		},
		Status: string(order.Status),
	}
}

func mapOrders(orders []*domain.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i, order := range orders {
		responses[i] = mapOrder(order)
	}
	return responses
}

type ProductRequest struct {
	Name          string          `json:"name" validate:"required"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price" validate:"required"`
	StockQuantity int             `json:"stock_quantity" validate:"min=0"`
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type CartResponse struct {
	ID     uuid.UUID         `json:"id"`
	UserID uuid.UUID         `json:"user_id"`
	Items  []domain.CartItem `json:"items"`
}

func mapCart(cart *domain.Cart) CartResponse {
	items := cart.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return CartResponse{ID: cart.ID, UserID: cart.UserID, Items: items}
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

func mapUser(user *domain.User) UserResponse {
	roles := make([]string, len(user.Roles))
	for i, role := range user.Roles {
		roles[i] = role.Name
	}
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Roles:     roles,
		CreatedAt: user.CreatedAt,
	}
}
