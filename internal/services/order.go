package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/furnicove/storefront-api/internal/api/middleware"
	"github.com/furnicove/storefront-api/internal/config"
	"github.com/furnicove/storefront-api/internal/errors"
	"github.com/furnicove/storefront-api/internal/models"
	repository "github.com/furnicove/storefront-api/internal/repositories"
	"github.com/furnicove/storefront-api/pkg/sendgrid"
	"github.com/furnicove/storefront-api/pkg/stripe"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type OrderService interface {
	BuildSummary(ctx context.Context, userID string) (*models.OrderSummary, error)
	Checkout(ctx context.Context, userID string, req *models.CheckoutRequest) (*models.Order, error)
	GetOrder(ctx context.Context, claims *models.Claims, id uuid.UUID) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListAllOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) (*models.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	cartService CartService
	payments    stripe.Client
	email       sendgrid.EmailService
	cfg         *config.Checkout
}

func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository,
	productRepo repository.ProductRepository, cartService CartService,
	payments stripe.Client, email sendgrid.EmailService, cfg *config.Checkout) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		cartService: cartService,
		payments:    payments,
		email:       email,
		cfg:         cfg,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// BuildSummary prices the current cart against the catalog: per-line
// discounted prices, aggregate discount, flat shipping waived above the
// free-shipping threshold, and flat-rate tax on the subtotal. Cart rows
// whose product no longer exists are dropped from the summary.
func (s *orderService) BuildSummary(ctx context.Context, userID string) (*models.OrderSummary, error) {

	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	products, err := s.productRepo.ListProducts(ctx)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch products").WithError(err)
	}

	byID := make(map[int64]*models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	summary := &models.OrderSummary{}

	for _, item := range items {

		product, ok := byID[item.ProductID]
		if !ok {
			continue
		}

		unitPrice := product.DiscountedPrice()
		lineTotal := unitPrice * float64(item.Quantity)
		lineDiscount := (product.Price - unitPrice) * float64(item.Quantity)

		var imageURL string
		if len(product.ImageURLs) > 0 {
			imageURL = product.ImageURLs[0]
		}

		summary.Items = append(summary.Items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   unitPrice,
			TotalPrice:  lineTotal,
			Discount:    lineDiscount,
			ImageURL:    imageURL,
		})

		summary.Subtotal += lineTotal
		summary.Discount += lineDiscount
	}

	if summary.Subtotal > s.cfg.FreeShippingThreshold {
		summary.Shipping = 0
	} else {
		summary.Shipping = s.cfg.ShippingFee
	}

	summary.Tax = summary.Subtotal * s.cfg.TaxRate
	summary.Total = summary.Subtotal + summary.Shipping + summary.Tax

	return summary, nil
}

func (s *orderService) Checkout(ctx context.Context, userID string, req *models.CheckoutRequest) (*models.Order, error) {

	logger := middleware.LoggerFromContext(ctx)

	summary, err := s.BuildSummary(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(summary.Items) == 0 {
		return nil, errors.BadRequestError("Cannot place an order with an empty cart")
	}

	paymentStatus := models.PaymentStatusPending

	if req.PaymentMethod == models.PaymentMethodCard {
		if err := s.chargeCard(summary.Total, req); err != nil {
			return nil, err
		}

		paymentStatus = models.PaymentStatusPaid
	}

	order := &models.Order{
		ID:            uuid.New(),
		UserID:        userID,
		CustomerName:  req.FirstName + " " + req.LastName,
		CustomerEmail: req.Email,
		CustomerPhone: req.Phone,
		ShippingAddress: models.ShippingAddress{
			Address: req.Address,
			City:    req.City,
			State:   req.State,
			ZipCode: req.ZipCode,
			Country: req.Country,
		},
		Items:         summary.Items,
		Subtotal:      round2(summary.Subtotal),
		Discount:      round2(summary.Discount),
		Shipping:      round2(summary.Shipping),
		Tax:           round2(summary.Tax),
		Total:         round2(summary.Total),
		Status:        models.OrderStatusPending,
		PaymentStatus: paymentStatus,
		PaymentMethod: req.PaymentMethod,
	}

	if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		return nil, mapOrderStoreError(err)
	}

	if err := s.cartService.ClearCart(ctx, userID); err != nil {
		// the order exists; an uncleared cart is an annoyance, not a failure
		logger.Warn("Failed to clear cart after checkout",
			slog.String("order_id", order.ID.String()),
			slog.String("error", err.Error()))
	}

	s.sendConfirmation(ctx, order)

	return order, nil
}

// mapOrderStoreError turns store failures into the distinct user-facing
// messages the storefront has always shown.
func mapOrderStoreError(err error) *errors.AppError {

	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) && pqErr.Code == "23502" {
		return errors.ValidationError("Missing required information. Please check all fields and try again.").WithError(err)
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return errors.ThirdPartyError("Network error. Please check your connection and try again.").WithError(err)
	}

	return errors.DatabaseError("Failed to process order. Please try again.").WithError(err)
}

func (s *orderService) chargeCard(total float64, req *models.CheckoutRequest) error {

	expMonth, expYear, err := parseCardExpiry(req.CardExpiry)
	if err != nil {
		return errors.ValidationError("Invalid card expiry date").WithError(err)
	}

	amount := int64(math.Round(total * 100))

	_, err = s.payments.ChargeCard(amount, s.cfg.Currency, "Furnicove order", stripe.CardDetails{
		Number:   req.CardNumber,
		ExpMonth: expMonth,
		ExpYear:  expYear,
		CVC:      req.CardCVC,
	})
	if err != nil {
		return errors.PaymentFailedError("Card payment failed").WithError(err)
	}

	return nil
}

// parseCardExpiry accepts MM/YY or MM/YYYY.
func parseCardExpiry(expiry string) (int64, int64, error) {

	parts := strings.Split(strings.TrimSpace(expiry), "/")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expiry %q is not in MM/YY format", expiry)
	}

	month, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid expiry month %q", parts[0])
	}

	year, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid expiry year %q", parts[1])
	}

	if year < 100 {
		year += 2000
	}

	return month, year, nil
}

func (s *orderService) sendConfirmation(ctx context.Context, order *models.Order) {

	logger := middleware.LoggerFromContext(ctx)

	subject := fmt.Sprintf("Order confirmed: %s", order.ID)
	body := fmt.Sprintf("Hi %s,\n\nThank you for your purchase. Your order %s has been received and is now %s.\n\nOrder total: $%.2f\n\nFurnicove",
		order.CustomerName, order.ID, order.Status, order.Total)

	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.email.Send(sendCtx, order.CustomerEmail, subject, body, ""); err != nil {
		logger.Warn("Failed to send order confirmation email",
			slog.String("order_id", order.ID.String()),
			slog.String("error", err.Error()))
	}
}

func (s *orderService) GetOrder(ctx context.Context, claims *models.Claims, id uuid.UUID) (*models.Order, error) {

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, errors.NotFoundError("Order not found").WithError(err)
	}

	if order.UserID != claims.UserID && !claims.IsAdmin() {
		return nil, errors.ForbiddenError("Order belongs to another user")
	}

	return order, nil
}

func (s *orderService) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {

	orders, err := s.orderRepo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return orders, nil
}

func (s *orderService) ListAllOrders(ctx context.Context) ([]models.Order, error) {

	orders, err := s.orderRepo.ListAllOrders(ctx)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return orders, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {

	if _, err := s.orderRepo.GetOrderByID(ctx, id); err != nil {
		return nil, errors.NotFoundError("Order not found").WithError(err)
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, errors.DatabaseError("Failed to update order status").WithError(err)
	}

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, errors.DatabaseError("Failed to reload order").WithError(err)
	}

	return order, nil
}

func (s *orderService) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) (*models.Order, error) {

	if _, err := s.orderRepo.GetOrderByID(ctx, id); err != nil {
		return nil, errors.NotFoundError("Order not found").WithError(err)
	}

	if err := s.orderRepo.UpdatePaymentStatus(ctx, id, status); err != nil {
		return nil, errors.DatabaseError("Failed to update payment status").WithError(err)
	}

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, errors.DatabaseError("Failed to reload order").WithError(err)
	}

	return order, nil
}
