package models

import "time"

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Product struct {
	ID          int64     `json:"id"`
	CategoryID  int64     `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Discount    float64   `json:"discount"` // percentage, 0-100
	Stock       int       `json:"stock"`
	ImageURLs   []string  `json:"image_urls"`
	Rating      float64   `json:"rating"`
	ReviewCount int       `json:"review_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Category    *Category `json:"category,omitempty"`
}

// DiscountedPrice is the single source of truth for what a unit of this
// product costs. Cart totals and checkout both go through it.
func (p *Product) DiscountedPrice() float64 {
	if p.Discount <= 0 {
		return p.Price
	}

	return p.Price - p.Price*p.Discount/100
}

type CreateProductRequest struct {
	CategoryID  int64    `json:"category_id" validate:"required"`
	Name        string   `json:"name" validate:"required,min=3,max=200"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Discount    float64  `json:"discount,omitempty" validate:"omitempty,gte=0,lt=100"`
	Stock       int      `json:"stock" validate:"gte=0"`
	ImageURLs   []string `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
}

type UpdateProductRequest struct {
	CategoryID  *int64    `json:"category_id,omitempty"`
	Name        *string   `json:"name,omitempty" validate:"omitempty,min=3,max=200"`
	Description *string   `json:"description,omitempty"`
	Price       *float64  `json:"price,omitempty" validate:"omitempty,gt=0"`
	Discount    *float64  `json:"discount,omitempty" validate:"omitempty,gte=0,lt=100"`
	Stock       *int      `json:"stock,omitempty" validate:"omitempty,gte=0"`
	ImageURLs   *[]string `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
}
