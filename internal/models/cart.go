package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one persisted product line of a user's in-progress order.
// At most one row exists per (user_id, product_id); the database enforces
// this with a unique constraint and the repository folds duplicate adds
// into a quantity increment.
type CartItem struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

type Cart struct {
	UserID string     `json:"user_id"`
	Items  []CartItem `json:"items"`
}

func (c *Cart) TotalItems() int {
	var total int

	for _, item := range c.Items {
		total += item.Quantity
	}

	return total
}

func (c *Cart) ItemQuantity(productID int64) int {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}

	return 0
}

func (c *Cart) Contains(productID int64) bool {
	return c.ItemQuantity(productID) > 0
}

type CartAction string

const (
	CartActionAdded     CartAction = "added"
	CartActionIncreased CartAction = "increased"
)

type CartActionResult struct {
	Action  CartAction `json:"action"`
	Message string     `json:"message"`
	Item    *CartItem  `json:"item"`
}

type AddToCartRequest struct {
	ProductID int64 `json:"product_id" validate:"required"`
}

// Quantity is deliberately unbounded below: zero or negative means remove.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	Cart       *Cart   `json:"cart"`
	TotalItems int     `json:"total_items"`
	Total      float64 `json:"total"`
}
