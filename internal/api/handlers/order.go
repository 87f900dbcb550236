package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/furnicove/storefront-api/internal/api/middleware"
	"github.com/furnicove/storefront-api/internal/models"
	"github.com/furnicove/storefront-api/internal/receipt"
	service "github.com/furnicove/storefront-api/internal/services"
	"github.com/furnicove/storefront-api/internal/utils"
	"github.com/furnicove/storefront-api/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type OrderHandler struct {
	orderService service.OrderService
	validator    *validator.Validate
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: s,
		validator:    validator.New(),
	}
}

// GetSummary prices the current cart without creating anything, for the
// checkout page's order summary panel.
func (h *OrderHandler) GetSummary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := claimsFromRequest(w, r)
		if !ok {
			return
		}

		summary, err := h.orderService.BuildSummary(r.Context(), claims.UserID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, summary)
	}
}

func (h *OrderHandler) Checkout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := claimsFromRequest(w, r)
		if !ok {
			return
		}

		var req models.CheckoutRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.orderService.Checkout(r.Context(), claims.UserID, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		logger.Info("Order placed",
			slog.String("order_id", order.ID.String()),
			slog.String("payment_method", string(order.PaymentMethod)),
			slog.Float64("total", order.Total))
		response.Success(w, http.StatusCreated, order)
	}
}

func (h *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := claimsFromRequest(w, r)
		if !ok {
			return
		}

		orders, err := h.orderService.ListOrdersByUser(r.Context(), claims.UserID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.OrderListResponse{Orders: orders, Total: len(orders)})
	}
}

func (h *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := claimsFromRequest(w, r)
		if !ok {
			return
		}

		id, ok := uuidPathValue(w, r, "id")
		if !ok {
			return
		}

		order, err := h.orderService.GetOrder(r.Context(), claims, id)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, order)
	}
}

// DownloadReceipt streams the order as a plain-text attachment.
func (h *OrderHandler) DownloadReceipt() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := claimsFromRequest(w, r)
		if !ok {
			return
		}

		id, ok := uuidPathValue(w, r, "id")
		if !ok {
			return
		}

		order, err := h.orderService.GetOrder(r.Context(), claims, id)
		if err != nil {
			response.Error(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=order-%s.txt", order.ID))
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, receipt.Render(order))
	}
}

// Admin surface below: list everything, flip statuses, last writer wins.

func (h *OrderHandler) ListAllOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		orders, err := h.orderService.ListAllOrders(r.Context())
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.OrderListResponse{Orders: orders, Total: len(orders)})
	}
}

func (h *OrderHandler) UpdateOrderStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, ok := uuidPathValue(w, r, "id")
		if !ok {
			return
		}

		var req models.UpdateOrderStatusRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.orderService.UpdateOrderStatus(r.Context(), id, req.Status)
		if err != nil {
			response.Error(w, err)
			return
		}

		logger.Info("Order status updated",
			slog.String("order_id", id.String()),
			slog.String("status", string(req.Status)))
		response.Success(w, http.StatusOK, order)
	}
}

func (h *OrderHandler) UpdatePaymentStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, ok := uuidPathValue(w, r, "id")
		if !ok {
			return
		}

		var req models.UpdatePaymentStatusRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.orderService.UpdatePaymentStatus(r.Context(), id, req.PaymentStatus)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, order)
	}
}
