package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Danielbclr/E-commerce-API/internal/httpx"
	"github.com/Danielbclr/E-commerce-API/internal/repository"
	"github.com/Danielbclr/E-commerce-API/internal/service"
)

type ProductHandler struct {
	products *service.ProductService
}

func NewProductHandler(products *service.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.products.ListProducts(c.UserContext())
	if err != nil {
		log.Error().Err(err).Msg("Product listing failed")
		return httpx.InternalServerError(c, "Product listing failed")
	}
	return httpx.Success(c, "Products retrieved successfully", products)
}

func (h *ProductHandler) GetProductByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httpx.BadRequest(c, "Invalid product ID", map[string]interface{}{
			"product_id": c.Params("id"),
		})
	}

	product, err := h.products.GetProductByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return httpx.NotFound(c, "Product not found")
		}
		log.Error().Err(err).Msg("Product lookup failed")
		return httpx.InternalServerError(c, "Product lookup failed")
	}
	return httpx.Success(c, "Product retrieved successfully", product)
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var request ProductRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequest(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}
	if request.Name == "" || request.Price.IsNegative() || request.StockQuantity < 0 {
		return httpx.BadRequest(c, "Name is required; price and stock must be non-negative", nil)
	}

	product, err := h.products.CreateProduct(c.UserContext(),
		request.Name, request.Description, request.Price, request.StockQuantity)
	if err != nil {
		log.Error().Err(err).Msg("Product creation failed")
		return httpx.InternalServerError(c, "Product creation failed")
	}
	return httpx.Created(c, "Product created successfully", product)
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httpx.BadRequest(c, "Invalid product ID", map[string]interface{}{
			"product_id": c.Params("id"),
		})
	}

	var request ProductRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequest(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}
	if request.Name == "" || request.Price.IsNegative() || request.StockQuantity < 0 {
		return httpx.BadRequest(c, "Name is required; price and stock must be non-negative", nil)
	}

	product, err := h.products.GetProductByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return httpx.NotFound(c, "Product not found")
		}
		return httpx.InternalServerError(c, "Product lookup failed")
	}

	product.Name = request.Name
	product.Description = request.Description
	product.Price = request.Price
	product.StockQuantity = request.StockQuantity

	if err := h.products.UpdateProduct(c.UserContext(), product); err != nil {
		log.Error().Err(err).Msg("Product update failed")
		return httpx.InternalServerError(c, "Product update failed")
	}
	return httpx.Success(c, "Product updated successfully", product)
}

func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httpx.BadRequest(c, "Invalid product ID", map[string]interface{}{
			"product_id": c.Params("id"),
		})
	}

	if err := h.products.DeleteProduct(c.UserContext(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return httpx.NotFound(c, "Product not found")
		}
		log.Error().Err(err).Msg("Product deletion failed")
		return httpx.InternalServerError(c, "Product deletion failed")
	}
	return httpx.Success(c, "Product deleted successfully", nil)
}
