package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/furnicove/storefront-api/internal/api/handlers"
	"github.com/furnicove/storefront-api/internal/errors"
	"github.com/furnicove/storefront-api/internal/models"
	"github.com/furnicove/storefront-api/internal/services/mocks"
	"github.com/furnicove/storefront-api/internal/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func checkoutBody(t *testing.T, method models.PaymentMethod) *bytes.Buffer {
	t.Helper()

	payload := map[string]any{
		"email":          "jordan@example.com",
		"first_name":     "Jordan",
		"last_name":      "Reyes",
		"phone":          "555-0134",
		"address":        "12 Elm Street",
		"city":           "Portland",
		"state":          "OR",
		"zip_code":       "97201",
		"country":        "USA",
		"payment_method": string(method),
	}

	if method == models.PaymentMethodCard {
		payload["card_number"] = "4242424242424242"
		payload["card_expiry"] = "12/28"
		payload["card_cvc"] = "123"
		payload["card_name"] = "Jordan Reyes"
	}

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	return bytes.NewBuffer(body)
}

func TestCheckout(t *testing.T) {
	orderService := new(mocks.MockOrderService)
	handler := handlers.NewOrderHandler(orderService)

	order := &models.Order{
		ID:            uuid.New(),
		UserID:        testUserID,
		Total:         248.40,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		PaymentMethod: models.PaymentMethodCOD,
	}

	orderService.On("Checkout", mock.Anything, testUserID, mock.Anything).Return(order, nil)

	req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/orders",
		checkoutBody(t, models.PaymentMethodCOD), testUserID, nil)
	rec := httptest.NewRecorder()

	handler.Checkout()(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
}

func TestCheckout_CardFieldsRequired(t *testing.T) {
	orderService := new(mocks.MockOrderService)
	handler := handlers.NewOrderHandler(orderService)

	// card method without any card fields must fail validation
	body := checkoutBody(t, models.PaymentMethodCOD)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(body.Bytes(), &payload))
	payload["payment_method"] = "card"

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/orders",
		bytes.NewBuffer(raw), testUserID, nil)
	rec := httptest.NewRecorder()

	handler.Checkout()(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Please fill in all required fields", resp.Error.Message)

	orderService.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckout_EmptyCartRejected(t *testing.T) {
	orderService := new(mocks.MockOrderService)
	handler := handlers.NewOrderHandler(orderService)

	orderService.On("Checkout", mock.Anything, testUserID, mock.Anything).
		Return(nil, errors.BadRequestError("Cannot place an order with an empty cart"))

	req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/orders",
		checkoutBody(t, models.PaymentMethodCOD), testUserID, nil)
	rec := httptest.NewRecorder()

	handler.Checkout()(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSummary(t *testing.T) {
	orderService := new(mocks.MockOrderService)
	handler := handlers.NewOrderHandler(orderService)

	summary := &models.OrderSummary{Subtotal: 230, Shipping: 0, Tax: 18.40, Total: 248.40}

	orderService.On("BuildSummary", mock.Anything, testUserID).Return(summary, nil)

	req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/checkout/summary", nil, testUserID, nil)
	rec := httptest.NewRecorder()

	handler.GetSummary()(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListOrders(t *testing.T) {
	orderService := new(mocks.MockOrderService)
	handler := handlers.NewOrderHandler(orderService)

	orders := []models.Order{{ID: uuid.New(), UserID: testUserID}}

	orderService.On("ListOrdersByUser", mock.Anything, testUserID).Return(orders, nil)

	req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/orders", nil, testUserID, nil)
	rec := httptest.NewRecorder()

	handler.ListOrders()(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool                     `json:"success"`
		Data    models.OrderListResponse `json:"data"`
	}

	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Data.Total)
}

func TestDownloadReceipt(t *testing.T) {
	orderService := new(mocks.MockOrderService)
	handler := handlers.NewOrderHandler(orderService)

	id := uuid.New()
	order := &models.Order{
		ID:            id,
		UserID:        testUserID,
		CustomerName:  "Jordan Reyes",
		CustomerEmail: "jordan@example.com",
		Items: []models.OrderItem{
			{ProductID: 1, ProductName: "Oak Table", Quantity: 2, UnitPrice: 100, TotalPrice: 200},
		},
		Subtotal:      230,
		Tax:           18.40,
		Total:         248.40,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPaid,
		PaymentMethod: models.PaymentMethodCard,
	}

	orderService.On("GetOrder", mock.Anything, mock.Anything, id).Return(order, nil)

	req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/orders/"+id.String()+"/receipt", nil,
		testUserID, map[string]string{"id": id.String()})
	rec := httptest.NewRecorder()

	handler.DownloadReceipt()(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=order-"+id.String()+".txt", rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.Contains(rec.Body.String(), "Oak Table"))
	assert.True(t, strings.Contains(rec.Body.String(), id.String()))
}

func TestUpdateOrderStatusHandler(t *testing.T) {
	orderService := new(mocks.MockOrderService)
	handler := handlers.NewOrderHandler(orderService)

	id := uuid.New()
	order := &models.Order{ID: id, Status: models.OrderStatusShipped}

	orderService.On("UpdateOrderStatus", mock.Anything, id, models.OrderStatusShipped).Return(order, nil)

	body := bytes.NewBufferString(`{"status": "shipped"}`)
	req := testutils.CreateAdminTestRequest(http.MethodPatch, "/api/v1/admin/orders/"+id.String()+"/status", body,
		"admin_1", map[string]string{"id": id.String()})
	rec := httptest.NewRecorder()

	handler.UpdateOrderStatus()(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateOrderStatusHandler_UnknownStatus(t *testing.T) {
	orderService := new(mocks.MockOrderService)
	handler := handlers.NewOrderHandler(orderService)

	id := uuid.New()

	body := bytes.NewBufferString(`{"status": "teleported"}`)
	req := testutils.CreateAdminTestRequest(http.MethodPatch, "/api/v1/admin/orders/"+id.String()+"/status", body,
		"admin_1", map[string]string{"id": id.String()})
	rec := httptest.NewRecorder()

	handler.UpdateOrderStatus()(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	orderService.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdatePaymentStatusHandler(t *testing.T) {
	orderService := new(mocks.MockOrderService)
	handler := handlers.NewOrderHandler(orderService)

	id := uuid.New()
	order := &models.Order{ID: id, PaymentStatus: models.PaymentStatusPaid}

	orderService.On("UpdatePaymentStatus", mock.Anything, id, models.PaymentStatusPaid).Return(order, nil)

	body := bytes.NewBufferString(`{"payment_status": "paid"}`)
	req := testutils.CreateAdminTestRequest(http.MethodPatch, "/api/v1/admin/orders/"+id.String()+"/payment-status", body,
		"admin_1", map[string]string{"id": id.String()})
	rec := httptest.NewRecorder()

	handler.UpdatePaymentStatus()(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
