package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/furnicove/storefront-api/internal/cache"
	"github.com/furnicove/storefront-api/internal/errors"
	"github.com/furnicove/storefront-api/internal/models"
	repository "github.com/furnicove/storefront-api/internal/repositories"
	"github.com/furnicove/storefront-api/pkg/storage"
	"github.com/google/uuid"
)

type ProductService interface {
	ListProducts(ctx context.Context) ([]*models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	UploadProductImage(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

type productService struct {
	repo       repository.ProductRepository
	cache      cache.Cache
	storage    storage.Client
	catalogTTL time.Duration
}

func NewProductService(repo repository.ProductRepository, c cache.Cache, store storage.Client, catalogTTL time.Duration) ProductService {
	return &productService{
		repo:       repo,
		cache:      c,
		storage:    store,
		catalogTTL: catalogTTL,
	}
}

// The catalog is read far more than it changes; list reads go through a
// short-TTL cache which admin writes invalidate wholesale.
func (s *productService) ListProducts(ctx context.Context) ([]*models.Product, error) {

	var products []*models.Product

	if hit, err := s.cache.Get(ctx, cache.ProductsKey, &products); err == nil && hit {
		return products, nil
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch products").WithError(err)
	}

	s.cache.Set(ctx, cache.ProductsKey, products, s.catalogTTL)

	return products, nil
}

func (s *productService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, errors.NotFoundError("Product not found").WithError(err)
	}

	return product, nil
}

func (s *productService) ListCategories(ctx context.Context) ([]*models.Category, error) {

	var categories []*models.Category

	if hit, err := s.cache.Get(ctx, cache.CategoriesKey, &categories); err == nil && hit {
		return categories, nil
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch categories").WithError(err)
	}

	s.cache.Set(ctx, cache.CategoriesKey, categories, s.catalogTTL)

	return categories, nil
}

func (s *productService) invalidateCatalog(ctx context.Context) {
	s.cache.Delete(ctx, cache.ProductsKey)
	s.cache.Delete(ctx, cache.CategoriesKey)
}

func (s *productService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {

	product := &models.Product{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Discount:    req.Discount,
		Stock:       req.Stock,
		ImageURLs:   req.ImageURLs,
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, errors.DatabaseError("Failed to create product").WithError(err)
	}

	s.invalidateCatalog(ctx)

	return product, nil
}

// UpdateProduct applies the provided fields over the current row and
// writes the result straight through; last writer wins.
func (s *productService) UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, error) {

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, errors.NotFoundError("Product not found").WithError(err)
	}

	if req.CategoryID != nil {
		product.CategoryID = *req.CategoryID
	}

	if req.Name != nil {
		product.Name = *req.Name
	}

	if req.Description != nil {
		product.Description = *req.Description
	}

	if req.Price != nil {
		product.Price = *req.Price
	}

	if req.Discount != nil {
		product.Discount = *req.Discount
	}

	if req.Stock != nil {
		product.Stock = *req.Stock
	}

	if req.ImageURLs != nil {
		product.ImageURLs = *req.ImageURLs
	}

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, errors.DatabaseError("Failed to update product").WithError(err)
	}

	s.invalidateCatalog(ctx)

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id int64) error {

	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return errors.NotFoundError("Product not found").WithError(err)
	}

	s.invalidateCatalog(ctx)

	return nil
}

// UploadProductImage pushes the image bytes to the object store under a
// collision-free name and returns the public URL to save on the product.
func (s *productService) UploadProductImage(ctx context.Context, filename, contentType string, data []byte) (string, error) {

	if len(data) == 0 {
		return "", errors.BadRequestError("Image file is empty")
	}

	path := fmt.Sprintf("%d-%s%s", time.Now().Unix(), uuid.NewString()[:8], filepath.Ext(filename))

	url, err := s.storage.Upload(ctx, path, contentType, data)
	if err != nil {
		return "", errors.ThirdPartyError("Failed to upload image").WithError(err)
	}

	return url, nil
}
