package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Danielbclr/E-commerce-API/internal/domain"
	"github.com/Danielbclr/E-commerce-API/internal/repository"
)

type ProductService struct {
	store repository.Store
}

func NewProductService(store repository.Store) *ProductService {
	return &ProductService{store: store}
}

func (s *ProductService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.store.Products().ListProducts(ctx)
}

func (s *ProductService) GetProductByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.store.Products().GetProductByID(ctx, id)
}

func (s *ProductService) CreateProduct(ctx context.Context, name, description string, price decimal.Decimal, stock int) (*domain.Product, error) {
	product := domain.NewProduct(name, description, price, stock)
	if err := s.store.Products().CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	log.Info().Str("product_id", product.ID.String()).Str("name", name).Msg("Product created")
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, product *domain.Product) error {
	return s.store.Products().UpdateProduct(ctx, product)
}

func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	log.Warn().Str("product_id", id.String()).Msg("Deleting product")
	return s.store.Products().DeleteProduct(ctx, id)
}

// VerifyStockAvailability checks the requested quantity against current live
// stock. Stock is only checked here, never reserved or decremented.
func VerifyStockAvailability(product *domain.Product, quantity int) error {
	if quantity > product.StockQuantity {
		return &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   quantity,
			Available:   product.StockQuantity,
		}
	}
	return nil
}
