package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/furnicove/storefront-api/internal/api/middleware"
	"github.com/furnicove/storefront-api/internal/errors"
	"github.com/furnicove/storefront-api/internal/models"
	service "github.com/furnicove/storefront-api/internal/services"
	"github.com/furnicove/storefront-api/internal/utils"
	"github.com/furnicove/storefront-api/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

const maxImageUploadBytes = 10 << 20

type ProductHandler struct {
	productService service.ProductService
	validator      *validator.Validate
}

func NewProductHandler(s service.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: s,
		validator:      validator.New(),
	}
}

func (h *ProductHandler) ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		products, err := h.productService.ListProducts(r.Context())
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, products)
	}
}

func (h *ProductHandler) GetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, ok := int64PathValue(w, r, "id")
		if !ok {
			return
		}

		product, err := h.productService.GetProduct(r.Context(), id)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

func (h *ProductHandler) ListCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		categories, err := h.productService.ListCategories(r.Context())
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, categories)
	}
}

func (h *ProductHandler) CreateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.CreateProductRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		product, err := h.productService.CreateProduct(r.Context(), &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		logger.Info("Product created", slog.Int64("product_id", product.ID))
		response.Success(w, http.StatusCreated, product)
	}
}

func (h *ProductHandler) UpdateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, ok := int64PathValue(w, r, "id")
		if !ok {
			return
		}

		var req models.UpdateProductRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		product, err := h.productService.UpdateProduct(r.Context(), id, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

func (h *ProductHandler) DeleteProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, ok := int64PathValue(w, r, "id")
		if !ok {
			return
		}

		if err := h.productService.DeleteProduct(r.Context(), id); err != nil {
			response.Error(w, err)
			return
		}

		logger.Info("Product deleted", slog.Int64("product_id", id))
		response.Success(w, http.StatusOK, map[string]string{"message": "Product deleted"})
	}
}

// UploadImage accepts a multipart "image" file, pushes it to the object
// store and returns the public URL to save on the product.
func (h *ProductHandler) UploadImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
			response.Error(w, errors.BadRequestError("Invalid multipart form").WithError(err))
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			response.Error(w, errors.BadRequestError("Image file is required").WithError(err))
			return
		}

		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxImageUploadBytes))
		if err != nil {
			response.Error(w, errors.InternalError("Failed to read image file").WithError(err))
			return
		}

		url, err := h.productService.UploadProductImage(r.Context(), header.Filename, header.Header.Get("Content-Type"), data)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusCreated, map[string]string{"url": url})
	}
}
