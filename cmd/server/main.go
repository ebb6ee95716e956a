// Package main runs the restaurant menu SaaS HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/menumesa/backend/config"
	"github.com/menumesa/backend/internal/auth"
	"github.com/menumesa/backend/internal/billing"
	"github.com/menumesa/backend/internal/menu"
	"github.com/menumesa/backend/internal/middleware"
	"github.com/menumesa/backend/internal/payments"
	"github.com/menumesa/backend/internal/restaurants"
	"github.com/menumesa/backend/internal/subscription"
	"github.com/menumesa/backend/internal/webhooks"
	"github.com/menumesa/backend/internal/worker"
	"github.com/menumesa/backend/pkg/database"
	"github.com/menumesa/backend/pkg/queue"
	"github.com/menumesa/backend/pkg/redis"
	"github.com/menumesa/backend/pkg/response"
	"github.com/menumesa/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			PhotosBucket:    cfg.AWS.PhotosBucket,
			CDNBaseURL:      cfg.AWS.CDNBaseURL,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	billingClient := billing.NewClient(cfg.Stripe.SecretKey, logger)

	// Subscription ledger and reconciliation engine
	subRepo := subscription.NewRepository(pool)
	subService := subscription.NewService(subRepo, logger)
	ledger := subService.Ledger()

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Menu
	menuRepo := menu.NewRepository(pool)
	menuCache := menu.NewCache(rdb, logger)
	menuHandler := menu.NewHandler(menuRepo, s3Client, jobQueue, menuCache, logger)

	// Restaurants (profile, public menu, QR, billing portal)
	restaurantRepo := restaurants.NewRepository(pool)
	restaurantHandler := restaurants.NewHandler(restaurantRepo, menuRepo, menuCache, ledger,
		s3Client, jobQueue, billingClient, cfg.Frontend.BaseURL, cfg.Stripe.PriceID, logger)

	// Payments (manual renewal) and gateway webhooks
	paymentHandler := payments.NewHandler(subService, payments.UPIHandles{
		GPay:    cfg.Billing.UPIHandleGPay,
		PhonePe: cfg.Billing.UPIHandlePhonePe,
	}, logger)
	webhookHandler := webhooks.NewHandler(subService, cfg.Stripe.WebhookSecret, logger)

	// Photo cleanup worker, embedded when S3 is configured
	cleanupProcessor := worker.NewPhotoCleanupProcessor(s3Client, jobQueue, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public: menu payload for diners (no auth)
	router.GET("/public/:slug/menu", restaurantHandler.PublicMenu)

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// Protected API (JWT required). Billing routes stay reachable for lapsed
	// tenants; everything touching the menu also requires an active subscription.
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/restaurants/me", restaurantHandler.Me)
		api.GET("/restaurants/me/qr", restaurantHandler.QRCode)
		api.POST("/restaurants/me/checkout-session", restaurantHandler.CheckoutSession)
		api.POST("/restaurants/me/billing-portal", restaurantHandler.BillingPortal)

		api.POST("/payments/initiate", paymentHandler.Initiate)
		api.GET("/payments/subscription-status", paymentHandler.Status)
		api.GET("/payments/history", paymentHandler.History)

		paid := api.Group("")
		paid.Use(middleware.RequireActiveSubscription(ledger))
		{
			paid.PUT("/restaurants/me", restaurantHandler.UpdateMe)
			paid.POST("/restaurants/me/menu-photo", restaurantHandler.UploadMenuPhoto)

			paid.GET("/menu/categories", menuHandler.ListCategories)
			paid.POST("/menu/categories", menuHandler.CreateCategory)
			paid.PUT("/menu/categories/:id", menuHandler.UpdateCategory)
			paid.DELETE("/menu/categories/:id", middleware.RequireRole("admin"), menuHandler.DeleteCategory)

			paid.GET("/menu/items", menuHandler.ListItems)
			paid.POST("/menu/items", menuHandler.CreateItem)
			paid.PUT("/menu/items/:id", menuHandler.UpdateItem)
			paid.DELETE("/menu/items/:id", middleware.RequireRole("admin"), menuHandler.DeleteItem)
			paid.POST("/menu/items/:id/photo", menuHandler.UploadItemPhoto)
		}
	}

	// Gateway-facing callbacks (no JWT). Confirm is scoped by payment id +
	// pending-status guard; webhooks verify the gateway signature.
	router.POST("/payments/confirm", paymentHandler.Confirm)
	router.POST("/webhooks/billing", webhookHandler.Receive)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Background worker (photo cleanup)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if s3Client != nil {
		go cleanupProcessor.Run(workerCtx)
		logger.Info("photo cleanup worker started")
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
