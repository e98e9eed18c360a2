package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Danielbclr/E-commerce-API/internal/domain"
	"github.com/Danielbclr/E-commerce-API/internal/repository"
)

// ErrItemNotInCart rejects mutations of a cart item that exists but belongs
// to another user's cart. Indistinguishable from a missing item on purpose.
var ErrItemNotInCart = repository.ErrCartItemNotFound

type CartService struct {
	store repository.Store
}

func NewCartService(store repository.Store) *CartService {
	return &CartService{store: store}
}

// GetCartByUser returns the user's cart. A registered user without a cart is
// a broken invariant, not a normal miss.
func (s *CartService) GetCartByUser(ctx context.Context, user *domain.User) (*domain.Cart, error) {
	cart, err := s.store.Carts().GetCartByUserID(ctx, user.ID)
	if err != nil {
		return nil, &domain.InconsistencyError{
			Message: fmt.Sprintf("shopping cart not found for user %s", user.Email),
			Err:     err,
		}
	}
	return cart, nil
}

// AddItemToCart adds quantity of a product to the user's cart, folding into an
// existing line for the same product. The requested total is validated against
// current stock.
func (s *CartService) AddItemToCart(ctx context.Context, user *domain.User, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}

	return s.store.WithinTx(ctx, func(tx repository.TxStore) error {
		cart, err := tx.Carts().GetCartByUserID(ctx, user.ID)
		if err != nil {
			return &domain.InconsistencyError{
				Message: fmt.Sprintf("shopping cart not found for user %s", user.Email),
				Err:     err,
			}
		}

		product, err := tx.Products().GetProductByID(ctx, productID)
		if err != nil {
			return err
		}

		if existing := cart.FindItemByProductID(productID); existing != nil {
			requestedTotal := existing.Quantity + quantity
			if err := VerifyStockAvailability(product, requestedTotal); err != nil {
				return err
			}
			return tx.Carts().UpdateCartItemQuantity(ctx, existing.ID, requestedTotal)
		}

		if err := VerifyStockAvailability(product, quantity); err != nil {
			return err
		}
		item := &domain.CartItem{
			ID:        uuid.New(),
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
		}
		return tx.Carts().AddCartItem(ctx, item)
	})
}

// UpdateItemQuantity sets an existing cart line to the given quantity after a
// stock check. The item must belong to the calling user's cart.
func (s *CartService) UpdateItemQuantity(ctx context.Context, user *domain.User, itemID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive; use remove to drop an item")
	}

	return s.store.WithinTx(ctx, func(tx repository.TxStore) error {
		item, err := s.ownedItem(ctx, tx, user, itemID)
		if err != nil {
			return err
		}

		product, err := tx.Products().GetProductByID(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if err := VerifyStockAvailability(product, quantity); err != nil {
			return err
		}
		return tx.Carts().UpdateCartItemQuantity(ctx, itemID, quantity)
	})
}

// RemoveItemFromCart deletes a single line from the user's cart.
func (s *CartService) RemoveItemFromCart(ctx context.Context, user *domain.User, itemID uuid.UUID) error {
	return s.store.WithinTx(ctx, func(tx repository.TxStore) error {
		if _, err := s.ownedItem(ctx, tx, user, itemID); err != nil {
			return err
		}
		return tx.Carts().DeleteCartItem(ctx, itemID)
	})
}

// ClearCart removes all items; the cart row itself persists.
func (s *CartService) ClearCart(ctx context.Context, user *domain.User) error {
	cart, err := s.GetCartByUser(ctx, user)
	if err != nil {
		return err
	}
	if err := s.store.Carts().ClearCart(ctx, cart.ID); err != nil {
		return err
	}
	log.Info().Str("cart_id", cart.ID.String()).Str("user_id", user.ID.String()).Msg("Cart cleared")
	return nil
}

// ownedItem resolves a cart item and verifies it lives in the caller's cart.
func (s *CartService) ownedItem(ctx context.Context, tx repository.TxStore, user *domain.User, itemID uuid.UUID) (*domain.CartItem, error) {
	cart, err := tx.Carts().GetCartByUserID(ctx, user.ID)
	if err != nil {
		return nil, &domain.InconsistencyError{
			Message: fmt.Sprintf("shopping cart not found for user %s", user.Email),
			Err:     err,
		}
	}

	item, err := tx.Carts().GetCartItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.CartID != cart.ID {
		log.Warn().
			Str("user_id", user.ID.String()).
			Str("item_id", itemID.String()).
			Msg("Attempt to mutate a cart item from another cart")
		return nil, ErrItemNotInCart
	}
	return item, nil
}
