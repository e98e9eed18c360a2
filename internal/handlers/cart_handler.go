package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Danielbclr/E-commerce-API/internal/domain"
	"github.com/Danielbclr/E-commerce-API/internal/httpx"
	"github.com/Danielbclr/E-commerce-API/internal/repository"
	"github.com/Danielbclr/E-commerce-API/internal/service"
)

type CartHandler struct {
	carts *service.CartService
}

func NewCartHandler(carts *service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	user := CurrentUser(c)

	cart, err := h.carts.GetCartByUser(c.UserContext(), user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Cart retrieval failed")
		return httpx.InternalServerError(c, "Cart retrieval failed")
	}
	return httpx.Success(c, "Cart retrieved successfully", mapCart(cart))
}

func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	user := CurrentUser(c)

	var request AddCartItemRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequest(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}
	if request.ProductID == uuid.Nil || request.Quantity <= 0 {
		return httpx.BadRequest(c, "Product ID and a positive quantity are required", nil)
	}

	err := h.carts.AddItemToCart(c.UserContext(), user, request.ProductID, request.Quantity)
	if err != nil {
		return h.cartError(c, user, err, "Could not add item to cart")
	}
	return httpx.Success(c, "Item added to cart", nil)
}

func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	user := CurrentUser(c)

	itemID, err := uuid.Parse(c.Params("itemId"))
	if err != nil {
		return httpx.BadRequest(c, "Invalid cart item ID", map[string]interface{}{
			"item_id": c.Params("itemId"),
		})
	}

	var request UpdateCartItemRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequest(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}
	if request.Quantity <= 0 {
		return httpx.BadRequest(c, "Quantity must be positive; use remove to drop an item", nil)
	}

	if err := h.carts.UpdateItemQuantity(c.UserContext(), user, itemID, request.Quantity); err != nil {
		return h.cartError(c, user, err, "Could not update cart item")
	}
	return httpx.Success(c, "Cart item updated", nil)
}

func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	user := CurrentUser(c)

	itemID, err := uuid.Parse(c.Params("itemId"))
	if err != nil {
		return httpx.BadRequest(c, "Invalid cart item ID", map[string]interface{}{
			"item_id": c.Params("itemId"),
		})
	}

	if err := h.carts.RemoveItemFromCart(c.UserContext(), user, itemID); err != nil {
		return h.cartError(c, user, err, "Could not remove cart item")
	}
	return httpx.Success(c, "Cart item removed", nil)
}

func (h *CartHandler) cartError(c *fiber.Ctx, user *domain.User, err error, fallback string) error {
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		return httpx.BadRequest(c, stockErr.Error(), map[string]interface{}{
			"product_id": stockErr.ProductID,
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		})
	case errors.Is(err, repository.ErrProductNotFound):
		return httpx.NotFound(c, "Product not found")
	case errors.Is(err, repository.ErrCartItemNotFound):
		return httpx.NotFound(c, "Cart item not found")
	default:
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg(fallback)
		return httpx.InternalServerError(c, fallback)
	}
}
