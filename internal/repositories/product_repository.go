package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/furnicove/storefront-api/internal/models"
	"github.com/furnicove/storefront-api/internal/utils"
)

type ProductRepository interface {
	ListProducts(ctx context.Context) ([]*models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	UpdateRating(ctx context.Context, id int64, rating float64, reviewCount int) error
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

// image_urls is stored as a JSON-encoded text column, matching the shape
// the storefront has always persisted.
func marshalImageURLs(urls []string) (string, error) {
	if urls == nil {
		urls = []string{}
	}

	data, err := json.Marshal(urls)
	if err != nil {
		return "", fmt.Errorf("failed to marshal image urls: %w", err)
	}

	return string(data), nil
}

func unmarshalImageURLs(raw sql.NullString, dest *[]string) error {
	if !raw.Valid || raw.String == "" {
		*dest = nil
		return nil
	}

	if err := json.Unmarshal([]byte(raw.String), dest); err != nil {
		return fmt.Errorf("failed to unmarshal image urls: %w", err)
	}

	return nil
}

func (r *productRepository) ListProducts(ctx context.Context) ([]*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT p.id, p.category_id, p.name, p.description, p.price, p.discount,
		       p.stock, p.image_urls, p.rating, p.review_count, p.created_at, p.updated_at,
		       c.id, c.name, c.slug, c.description
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		ORDER BY p.id
	`

	rows, err := r.DB.QueryContext(dbCtx, query)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}

	defer rows.Close()

	var products []*models.Product

	for rows.Next() {
		product := &models.Product{}
		category := &models.Category{}

		var imageURLs sql.NullString

		err := rows.Scan(&product.ID, &product.CategoryID, &product.Name, &product.Description,
			&product.Price, &product.Discount, &product.Stock, &imageURLs,
			&product.Rating, &product.ReviewCount, &product.CreatedAt, &product.UpdatedAt,
			&category.ID, &category.Name, &category.Slug, &category.Description)
		if err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}

		if err := unmarshalImageURLs(imageURLs, &product.ImageURLs); err != nil {
			return nil, err
		}

		product.Category = category
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT p.id, p.category_id, p.name, p.description, p.price, p.discount,
		       p.stock, p.image_urls, p.rating, p.review_count, p.created_at, p.updated_at,
		       c.id, c.name, c.slug, c.description
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE p.id = $1
	`

	product := &models.Product{}
	category := &models.Category{}

	var imageURLs sql.NullString

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(&product.ID, &product.CategoryID,
		&product.Name, &product.Description, &product.Price, &product.Discount,
		&product.Stock, &imageURLs, &product.Rating, &product.ReviewCount,
		&product.CreatedAt, &product.UpdatedAt,
		&category.ID, &category.Name, &category.Slug, &category.Description)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying product: %w", err)
	}

	if err := unmarshalImageURLs(imageURLs, &product.ImageURLs); err != nil {
		return nil, err
	}

	product.Category = category

	return product, nil
}

func (r *productRepository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT id, name, slug, description, created_at FROM categories ORDER BY name`

	rows, err := r.DB.QueryContext(dbCtx, query)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}

	defer rows.Close()

	var categories []*models.Category

	for rows.Next() {
		category := &models.Category{}

		if err := rows.Scan(&category.ID, &category.Name, &category.Slug, &category.Description, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning category row: %w", err)
		}

		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	imageURLs, err := marshalImageURLs(product.ImageURLs)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (category_id, name, description, price, discount, stock, image_urls)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query, product.CategoryID, product.Name, product.Description,
		product.Price, product.Discount, product.Stock, imageURLs).
		Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
}

// UpdateProduct writes the full row straight through; last writer wins.
func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	imageURLs, err := marshalImageURLs(product.ImageURLs)
	if err != nil {
		return err
	}

	query := `
		UPDATE products
		SET category_id = $1, name = $2, description = $3, price = $4, discount = $5,
		    stock = $6, image_urls = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query, product.CategoryID, product.Name, product.Description,
		product.Price, product.Discount, product.Stock, imageURLs, product.ID).
		Scan(&product.UpdatedAt)
}

func (r *productRepository) DeleteProduct(ctx context.Context, id int64) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *productRepository) UpdateRating(ctx context.Context, id int64, rating float64, reviewCount int) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `UPDATE products SET rating = $1, review_count = $2, updated_at = NOW() WHERE id = $3`

	_, err := r.DB.ExecContext(dbCtx, query, rating, reviewCount, id)
	if err != nil {
		return fmt.Errorf("updating product rating: %w", err)
	}

	return nil
}
