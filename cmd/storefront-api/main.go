package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/furnicove/storefront-api/internal/api/handlers"
	"github.com/furnicove/storefront-api/internal/api/middleware"
	"github.com/furnicove/storefront-api/internal/cache"
	"github.com/furnicove/storefront-api/internal/config"
	"github.com/furnicove/storefront-api/internal/health"
	"github.com/furnicove/storefront-api/internal/metrics"
	repository "github.com/furnicove/storefront-api/internal/repositories"
	service "github.com/furnicove/storefront-api/internal/services"
	"github.com/furnicove/storefront-api/pkg/identity"
	"github.com/furnicove/storefront-api/pkg/sendgrid"
	"github.com/furnicove/storefront-api/pkg/storage"
	"github.com/furnicove/storefront-api/pkg/stripe"
)

func main() {

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.MustLoad()

	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
		}
	}()

	redisClient, err := repository.NewRedisClient(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", slog.String("error", err.Error()))
		os.Exit(1)
	}

	appCache := cache.NewRedisCache(redisClient, &cfg.Cache)

	stripeClient := stripe.NewStripeClient(cfg.Stripe.APIKey)
	emailService := sendgrid.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	identityClient := identity.NewClient(cfg.Identity.BaseURL, cfg.Identity.APIKey)
	storageClient := storage.NewClient(cfg.Storage.BaseURL, cfg.Storage.APIKey, cfg.Storage.Bucket)

	productService := service.NewProductService(repos.Product, appCache, storageClient, cfg.Cache.CatalogTTL)
	productHandler := handlers.NewProductHandler(productService)
	cartService := service.NewCartService(repos.Cart, repos.Product, appCache)
	cartHandler := handlers.NewCartHandler(cartService)
	orderService := service.NewOrderService(repos.Order, repos.Cart, repos.Product, cartService, stripeClient, emailService, &cfg.Checkout)
	orderHandler := handlers.NewOrderHandler(orderService)
	reviewService := service.NewReviewService(repos.Review, repos.Product, appCache)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	userService := service.NewUserService(identityClient, appCache)
	userHandler := handlers.NewUserHandler(userService)
	authMiddleware := middleware.NewAuthMiddleware([]byte(cfg.Security.JWTKey))

	healthHandler, err := health.NewHealthHandler(cfg)
	if err != nil {
		slog.Error("❌ Error creating health handler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("application initialized", slog.String("env", cfg.Env), slog.String("version", "1.0.0"))

	auth := authMiddleware.Authenticate
	admin := func(next http.Handler) http.HandlerFunc {
		return authMiddleware.Authenticate(authMiddleware.RequireAdmin(next))
	}

	routerMux := http.NewServeMux()

	// catalog
	routerMux.HandleFunc("GET /api/v1/products", productHandler.ListProducts())
	routerMux.HandleFunc("GET /api/v1/products/{id}", productHandler.GetProduct())
	routerMux.HandleFunc("GET /api/v1/categories", productHandler.ListCategories())
	routerMux.HandleFunc("GET /api/v1/products/{id}/reviews", reviewHandler.ListReviews())

	// cart
	routerMux.HandleFunc("GET /api/v1/cart", auth(cartHandler.GetCart()))
	routerMux.HandleFunc("POST /api/v1/cart/items", auth(cartHandler.AddItem()))
	routerMux.HandleFunc("PUT /api/v1/cart/items/{id}", auth(cartHandler.UpdateQuantity()))
	routerMux.HandleFunc("DELETE /api/v1/cart/items/{id}", auth(cartHandler.RemoveItem()))
	routerMux.HandleFunc("DELETE /api/v1/cart", auth(cartHandler.ClearCart()))

	// checkout and orders
	routerMux.HandleFunc("GET /api/v1/checkout/summary", auth(orderHandler.GetSummary()))
	routerMux.HandleFunc("POST /api/v1/orders", auth(orderHandler.Checkout()))
	routerMux.HandleFunc("GET /api/v1/orders", auth(orderHandler.ListOrders()))
	routerMux.HandleFunc("GET /api/v1/orders/{id}", auth(orderHandler.GetOrder()))
	routerMux.HandleFunc("GET /api/v1/orders/{id}/receipt", auth(orderHandler.DownloadReceipt()))

	// reviews
	routerMux.HandleFunc("POST /api/v1/reviews", auth(reviewHandler.CreateReview()))

	// admin console
	routerMux.HandleFunc("GET /api/v1/admin/orders", admin(orderHandler.ListAllOrders()))
	routerMux.HandleFunc("PATCH /api/v1/admin/orders/{id}/status", admin(orderHandler.UpdateOrderStatus()))
	routerMux.HandleFunc("PATCH /api/v1/admin/orders/{id}/payment-status", admin(orderHandler.UpdatePaymentStatus()))
	routerMux.HandleFunc("POST /api/v1/admin/products", admin(productHandler.CreateProduct()))
	routerMux.HandleFunc("PUT /api/v1/admin/products/{id}", admin(productHandler.UpdateProduct()))
	routerMux.HandleFunc("DELETE /api/v1/admin/products/{id}", admin(productHandler.DeleteProduct()))
	routerMux.HandleFunc("POST /api/v1/admin/products/images", admin(productHandler.UploadImage()))
	routerMux.HandleFunc("GET /api/v1/admin/users/{id}", admin(userHandler.GetUser()))

	// operational endpoints
	routerMux.Handle("GET /health", healthHandler.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler())

	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)

	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.String("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}
}
