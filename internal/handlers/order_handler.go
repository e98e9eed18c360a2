package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Danielbclr/E-commerce-API/internal/domain"
	"github.com/Danielbclr/E-commerce-API/internal/httpx"
	"github.com/Danielbclr/E-commerce-API/internal/repository"
)

// OrderPlacer is the slice of the order workflow the HTTP layer needs.
type OrderPlacer interface {
	CreateOrder(ctx context.Context, user *domain.User, shippingAddress domain.Address,
		method domain.PaymentMethod, billingAddress domain.Address) (*domain.Order, error)
	FindOrderByIDAndUser(ctx context.Context, orderID uuid.UUID, user *domain.User) (*domain.Order, error)
	FindAllOrdersByUser(ctx context.Context, user *domain.User) ([]*domain.Order, error)
}

type OrderHandler struct {
	orders OrderPlacer
}

func NewOrderHandler(orders OrderPlacer) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// CreateOrder handles POST /orders. The response carries the order in
// PENDING_PAYMENT state; settlement happens after the response is sent.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	user := CurrentUser(c)

	var request CreateOrderRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequest(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	method, err := domain.ParsePaymentMethod(request.PaymentMethod)
	if err != nil {
		return httpx.BadRequest(c, "Invalid payment method", map[string]interface{}{
			"payment_method": request.PaymentMethod,
		})
	}

	order, err := h.orders.CreateOrder(c.UserContext(), user, request.ShippingAddress, method, request.BillingAddress)
	if err != nil {
		var stockErr *domain.InsufficientStockError
		switch {
		case errors.Is(err, domain.ErrEmptyCart):
			return httpx.BadRequest(c, "Cannot create order from an empty shopping cart", nil)
		case errors.As(err, &stockErr):
			return httpx.BadRequest(c, stockErr.Error(), map[string]interface{}{
				"product_id": stockErr.ProductID,
				"requested":  stockErr.Requested,
				"available":  stockErr.Available,
			})
		default:
			log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Order creation failed")
			return httpx.InternalServerError(c, "Order creation failed")
		}
	}

	return httpx.Created(c, "Order created successfully", mapOrder(order))
}

// GetOrderByID handles GET /orders/:id. Missing and foreign-owned orders are
// both 404.
func (h *OrderHandler) GetOrderByID(c *fiber.Ctx) error {
	user := CurrentUser(c)

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httpx.BadRequest(c, "Invalid order ID", map[string]interface{}{
			"order_id": c.Params("id"),
		})
	}

	order, err := h.orders.FindOrderByIDAndUser(c.UserContext(), orderID, user)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return httpx.NotFound(c, "Order not found")
		}
		log.Error().Err(err).Str("order_id", orderID.String()).Msg("Order lookup failed")
		return httpx.InternalServerError(c, "Order lookup failed")
	}

	return httpx.Success(c, "Order retrieved successfully", mapOrder(order))
}

// GetOrders handles GET /orders: all of the caller's orders, newest first.
func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	user := CurrentUser(c)

	orders, err := h.orders.FindAllOrdersByUser(c.UserContext(), user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Orders retrieval failed")
		return httpx.InternalServerError(c, "Orders retrieval failed")
	}

	return httpx.Success(c, "Orders retrieved successfully", mapOrders(orders))
}
