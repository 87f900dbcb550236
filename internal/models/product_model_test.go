package models_test

import (
	"testing"

	"github.com/furnicove/storefront-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestDiscountedPrice(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		discount float64
		want     float64
	}{
		{"no discount", 100, 0, 100},
		{"ten percent", 100, 10, 90},
		{"twenty five percent", 899.99, 25, 674.9925},
		{"negative treated as none", 100, -5, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &models.Product{Price: tt.price, Discount: tt.discount}

			assert.InDelta(t, tt.want, p.DiscountedPrice(), 0.0001)
		})
	}
}

func TestCartTotals(t *testing.T) {
	cart := &models.Cart{
		UserID: "user_2abc",
		Items: []models.CartItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	}

	assert.Equal(t, 3, cart.TotalItems())
	assert.Equal(t, 2, cart.ItemQuantity(1))
	assert.True(t, cart.Contains(2))
	assert.False(t, cart.Contains(99))
	assert.Zero(t, cart.ItemQuantity(99))
}
