package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the per-user collection of pending purchase intentions. One cart is
// created at registration time and lives for the user's lifetime; it is only
// ever emptied, never deleted.
type Cart struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

type CartItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CartID    uuid.UUID `json:"cart_id" db:"cart_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
}

func NewCart(userID uuid.UUID) *Cart {
	return &Cart{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: time.Now(),
	}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// FindItemByProductID returns the cart line for the given product, if present.
func (c *Cart) FindItemByProductID(productID uuid.UUID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}
