package service_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/furnicove/storefront-api/internal/config"
	"github.com/furnicove/storefront-api/internal/errors"
	"github.com/furnicove/storefront-api/internal/models"
	repomocks "github.com/furnicove/storefront-api/internal/repositories/mocks"
	service "github.com/furnicove/storefront-api/internal/services"
	servicemocks "github.com/furnicove/storefront-api/internal/services/mocks"
	"github.com/furnicove/storefront-api/pkg/stripe"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPaymentClient struct {
	mock.Mock
}

func (m *mockPaymentClient) ChargeCard(amount int64, currency, description string, card stripe.CardDetails) (string, error) {
	args := m.Called(amount, currency, description, card)

	return args.String(0), args.Error(1)
}

type mockEmailService struct {
	mock.Mock
}

func (m *mockEmailService) Send(ctx context.Context, to, subject, plainContent, htmlContent string) error {
	args := m.Called(ctx, to, subject, plainContent, htmlContent)

	return args.Error(0)
}

type orderFixture struct {
	orderRepo   *repomocks.MockOrderRepository
	cartRepo    *repomocks.MockCartRepository
	productRepo *repomocks.MockProductRepository
	cartService *servicemocks.MockCartService
	payments    *mockPaymentClient
	email       *mockEmailService
	svc         service.OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orderRepo:   new(repomocks.MockOrderRepository),
		cartRepo:    new(repomocks.MockCartRepository),
		productRepo: new(repomocks.MockProductRepository),
		cartService: new(servicemocks.MockCartService),
		payments:    new(mockPaymentClient),
		email:       new(mockEmailService),
	}

	cfg := &config.Checkout{
		ShippingFee:           4.99,
		FreeShippingThreshold: 50,
		TaxRate:               0.08,
		Currency:              "usd",
	}

	f.email.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	f.svc = service.NewOrderService(f.orderRepo, f.cartRepo, f.productRepo, f.cartService, f.payments, f.email, cfg)

	return f
}

// two units at $100 and one at $30, no discounts
func (f *orderFixture) stockStandardCart() {
	items := []models.CartItem{
		{ID: uuid.New(), UserID: testUserID, ProductID: 1, Quantity: 2},
		{ID: uuid.New(), UserID: testUserID, ProductID: 2, Quantity: 1},
	}

	products := []*models.Product{
		{ID: 1, Name: "Oak Table", Price: 100, ImageURLs: []string{"https://cdn.example.com/oak.jpg"}},
		{ID: 2, Name: "Side Stool", Price: 30},
	}

	f.cartRepo.On("ListByUser", mock.Anything, testUserID).Return(items, nil)
	f.productRepo.On("ListProducts", mock.Anything).Return(products, nil)
}

func validCheckoutRequest(method models.PaymentMethod) *models.CheckoutRequest {
	req := &models.CheckoutRequest{
		Email:         "jordan@example.com",
		FirstName:     "Jordan",
		LastName:      "Reyes",
		Phone:         "555-0134",
		Address:       "12 Elm Street",
		City:          "Portland",
		State:         "OR",
		ZipCode:       "97201",
		Country:       "USA",
		PaymentMethod: method,
	}

	if method == models.PaymentMethodCard {
		req.CardNumber = "4242424242424242"
		req.CardExpiry = "12/28"
		req.CardCVC = "123"
		req.CardName = "Jordan Reyes"
	}

	return req
}

func TestBuildSummary_PricingRules(t *testing.T) {
	f := newOrderFixture()
	f.stockStandardCart()

	summary, err := f.svc.BuildSummary(context.Background(), testUserID)

	require.NoError(t, err)
	assert.InDelta(t, 230.0, summary.Subtotal, 0.001)
	assert.Zero(t, summary.Shipping) // free above the threshold
	assert.InDelta(t, 18.40, summary.Tax, 0.001)
	assert.InDelta(t, 248.40, summary.Total, 0.001)
	assert.InDelta(t, summary.Subtotal+summary.Shipping+summary.Tax, summary.Total, 0.001)
}

func TestBuildSummary_ShippingChargedBelowThreshold(t *testing.T) {
	f := newOrderFixture()

	items := []models.CartItem{{ID: uuid.New(), UserID: testUserID, ProductID: 2, Quantity: 1}}
	products := []*models.Product{{ID: 2, Name: "Side Stool", Price: 30}}

	f.cartRepo.On("ListByUser", mock.Anything, testUserID).Return(items, nil)
	f.productRepo.On("ListProducts", mock.Anything).Return(products, nil)

	summary, err := f.svc.BuildSummary(context.Background(), testUserID)

	require.NoError(t, err)
	assert.InDelta(t, 4.99, summary.Shipping, 0.001)
	assert.InDelta(t, 30+4.99+2.40, summary.Total, 0.001)
}

func TestBuildSummary_AppliesDiscounts(t *testing.T) {
	f := newOrderFixture()

	items := []models.CartItem{{ID: uuid.New(), UserID: testUserID, ProductID: 1, Quantity: 2}}
	products := []*models.Product{{ID: 1, Name: "Oak Table", Price: 100, Discount: 25}}

	f.cartRepo.On("ListByUser", mock.Anything, testUserID).Return(items, nil)
	f.productRepo.On("ListProducts", mock.Anything).Return(products, nil)

	summary, err := f.svc.BuildSummary(context.Background(), testUserID)

	require.NoError(t, err)
	assert.InDelta(t, 150.0, summary.Subtotal, 0.001)
	assert.InDelta(t, 50.0, summary.Discount, 0.001)
	require.Len(t, summary.Items, 1)
	assert.InDelta(t, 75.0, summary.Items[0].UnitPrice, 0.001)
}

func TestBuildSummary_DropsMissingProducts(t *testing.T) {
	f := newOrderFixture()

	items := []models.CartItem{
		{ID: uuid.New(), UserID: testUserID, ProductID: 1, Quantity: 1},
		{ID: uuid.New(), UserID: testUserID, ProductID: 99, Quantity: 3},
	}

	f.cartRepo.On("ListByUser", mock.Anything, testUserID).Return(items, nil)
	f.productRepo.On("ListProducts", mock.Anything).Return([]*models.Product{{ID: 1, Name: "Oak Table", Price: 100}}, nil)

	summary, err := f.svc.BuildSummary(context.Background(), testUserID)

	require.NoError(t, err)
	assert.Len(t, summary.Items, 1)
	assert.InDelta(t, 100.0, summary.Subtotal, 0.001)
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newOrderFixture()

	f.cartRepo.On("ListByUser", mock.Anything, testUserID).Return([]models.CartItem{}, nil)
	f.productRepo.On("ListProducts", mock.Anything).Return([]*models.Product{}, nil)

	_, err := f.svc.Checkout(context.Background(), testUserID, validCheckoutRequest(models.PaymentMethodCOD))

	require.Error(t, err)

	appErr, ok := errors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeBadRequest, appErr.Code)

	f.orderRepo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCheckout_CardPaymentMarksOrderPaid(t *testing.T) {
	f := newOrderFixture()
	f.stockStandardCart()

	f.payments.On("ChargeCard", int64(24840), "usd", mock.Anything, mock.Anything).Return("pi_3abc", nil)
	f.orderRepo.On("CreateOrder", mock.Anything, mock.Anything).Return(nil)
	f.cartService.On("ClearCart", mock.Anything, testUserID).Return(nil)

	order, err := f.svc.Checkout(context.Background(), testUserID, validCheckoutRequest(models.PaymentMethodCard))

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, models.PaymentMethodCard, order.PaymentMethod)
	assert.Equal(t, "Jordan Reyes", order.CustomerName)
	assert.InDelta(t, 248.40, order.Total, 0.001)

	f.cartService.AssertCalled(t, "ClearCart", mock.Anything, testUserID)
}

func TestCheckout_CashOnDeliveryStaysPending(t *testing.T) {
	f := newOrderFixture()
	f.stockStandardCart()

	f.orderRepo.On("CreateOrder", mock.Anything, mock.Anything).Return(nil)
	f.cartService.On("ClearCart", mock.Anything, testUserID).Return(nil)

	order, err := f.svc.Checkout(context.Background(), testUserID, validCheckoutRequest(models.PaymentMethodCOD))

	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)

	f.payments.AssertNotCalled(t, "ChargeCard", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckout_DeclinedCard(t *testing.T) {
	f := newOrderFixture()
	f.stockStandardCart()

	f.payments.On("ChargeCard", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", assert.AnError)

	_, err := f.svc.Checkout(context.Background(), testUserID, validCheckoutRequest(models.PaymentMethodCard))

	require.Error(t, err)

	appErr, ok := errors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodePaymentFailed, appErr.Code)

	f.orderRepo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCheckout_MalformedCardExpiry(t *testing.T) {
	f := newOrderFixture()
	f.stockStandardCart()

	req := validCheckoutRequest(models.PaymentMethodCard)
	req.CardExpiry = "13/28"

	_, err := f.svc.Checkout(context.Background(), testUserID, req)

	require.Error(t, err)

	appErr, ok := errors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidation, appErr.Code)
}

func TestCheckout_NullConstraintViolationMessage(t *testing.T) {
	f := newOrderFixture()
	f.stockStandardCart()

	f.orderRepo.On("CreateOrder", mock.Anything, mock.Anything).Return(&pq.Error{Code: "23502"})

	_, err := f.svc.Checkout(context.Background(), testUserID, validCheckoutRequest(models.PaymentMethodCOD))

	require.Error(t, err)

	appErr, ok := errors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidation, appErr.Code)
	assert.Equal(t, "Missing required information. Please check all fields and try again.", appErr.Message)
}

func TestCheckout_GenericStoreFailureMessage(t *testing.T) {
	f := newOrderFixture()
	f.stockStandardCart()

	f.orderRepo.On("CreateOrder", mock.Anything, mock.Anything).Return(sql.ErrConnDone)

	_, err := f.svc.Checkout(context.Background(), testUserID, validCheckoutRequest(models.PaymentMethodCOD))

	require.Error(t, err)

	appErr, ok := errors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeDatabaseError, appErr.Code)
	assert.Equal(t, "Failed to process order. Please try again.", appErr.Message)
}

func TestCheckout_SucceedsEvenIfCartClearFails(t *testing.T) {
	f := newOrderFixture()
	f.stockStandardCart()

	f.orderRepo.On("CreateOrder", mock.Anything, mock.Anything).Return(nil)
	f.cartService.On("ClearCart", mock.Anything, testUserID).Return(errors.DatabaseError("Failed to clear cart"))

	order, err := f.svc.Checkout(context.Background(), testUserID, validCheckoutRequest(models.PaymentMethodCOD))

	require.NoError(t, err)
	assert.NotNil(t, order)
}

func TestGetOrder_OwnerCanRead(t *testing.T) {
	f := newOrderFixture()

	id := uuid.New()
	f.orderRepo.On("GetOrderByID", mock.Anything, id).Return(&models.Order{ID: id, UserID: testUserID}, nil)

	order, err := f.svc.GetOrder(context.Background(), &models.Claims{UserID: testUserID}, id)

	require.NoError(t, err)
	assert.Equal(t, id, order.ID)
}

func TestGetOrder_OtherUserForbidden(t *testing.T) {
	f := newOrderFixture()

	id := uuid.New()
	f.orderRepo.On("GetOrderByID", mock.Anything, id).Return(&models.Order{ID: id, UserID: "someone_else"}, nil)

	_, err := f.svc.GetOrder(context.Background(), &models.Claims{UserID: testUserID}, id)

	require.Error(t, err)

	appErr, ok := errors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeForbidden, appErr.Code)
}

func TestGetOrder_AdminCanReadAny(t *testing.T) {
	f := newOrderFixture()

	id := uuid.New()
	f.orderRepo.On("GetOrderByID", mock.Anything, id).Return(&models.Order{ID: id, UserID: "someone_else"}, nil)

	claims := &models.Claims{UserID: testUserID, Role: models.RoleAdmin}

	_, err := f.svc.GetOrder(context.Background(), claims, id)

	require.NoError(t, err)
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newOrderFixture()

	id := uuid.New()
	stored := &models.Order{ID: id, UserID: testUserID, Status: models.OrderStatusPending}

	f.orderRepo.On("GetOrderByID", mock.Anything, id).Return(stored, nil)
	f.orderRepo.On("UpdateStatus", mock.Anything, id, models.OrderStatusShipped).
		Run(func(mock.Arguments) { stored.Status = models.OrderStatusShipped }).
		Return(nil)

	order, err := f.svc.UpdateOrderStatus(context.Background(), id, models.OrderStatusShipped)

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, order.Status)
}

func TestUpdateOrderStatus_UnknownOrder(t *testing.T) {
	f := newOrderFixture()

	id := uuid.New()
	f.orderRepo.On("GetOrderByID", mock.Anything, id).Return(nil, sql.ErrNoRows)

	_, err := f.svc.UpdateOrderStatus(context.Background(), id, models.OrderStatusShipped)

	require.Error(t, err)

	appErr, ok := errors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNotFound, appErr.Code)

	f.orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdatePaymentStatus(t *testing.T) {
	f := newOrderFixture()

	id := uuid.New()
	stored := &models.Order{ID: id, UserID: testUserID, PaymentStatus: models.PaymentStatusPending}

	f.orderRepo.On("GetOrderByID", mock.Anything, id).Return(stored, nil)
	f.orderRepo.On("UpdatePaymentStatus", mock.Anything, id, models.PaymentStatusPaid).
		Run(func(mock.Arguments) { stored.PaymentStatus = models.PaymentStatusPaid }).
		Return(nil)

	order, err := f.svc.UpdatePaymentStatus(context.Background(), id, models.PaymentStatusPaid)

	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
}
