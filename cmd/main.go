package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-service/internal/handler"
	mid "storefront-service/internal/middleware"
	"storefront-service/internal/notifier"
	"storefront-service/internal/service"
	"storefront-service/pkg/config"
	"storefront-service/pkg/database"
	"storefront-service/pkg/jwtutil"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load .env file; env vars from the environment win when absent.
	godotenv.Load()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting storefront-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	err = database.InitDB(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	db := database.GetDB()

	// Notification sinks run in the background and never block order
	// creation.
	dispatcher := notifier.NewDispatcher(log,
		notifier.NewEmailSink(&appConfig.SMTP, log),
		notifier.NewWhatsAppSink(&appConfig.WhatsApp, log),
		notifier.NewMetaSink(&appConfig.Meta, log),
	)
	dispatcher.Start()

	orderService := service.NewOrderService(db, &appConfig.Order, log)
	orderHandler := handler.NewOrderHandler(orderService, dispatcher)
	tenantResolver := mid.NewTenantResolver(db, &appConfig.Domain)

	// Initialize Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)
	e.Use(tenantResolver.Middleware)

	// Routes
	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoints
	e.GET("/health", handler.Health)
	e.GET("/api/v1/health", handler.Health)

	api := e.Group("/api/v1")

	// Auth routes
	api.POST("/auth/register", handler.Register)
	api.POST("/auth/login", handler.Login)
	api.GET("/auth/me", handler.Me, mid.AuthMiddleware)

	// Tenant routes
	tenantAPI := api.Group("/tenants", mid.AuthMiddleware)
	tenantAPI.POST("", handler.CreateTenant)
	tenantAPI.GET("", handler.ListTenants)
	tenantAPI.GET("/:id", handler.GetTenant)
	tenantAPI.PUT("/:id", handler.UpdateTenant)
	api.GET("/tenants/slug/:slug", handler.GetTenantBySlug)

	// Product routes; storefront reads are public, writes are owner-only
	api.GET("/products", handler.ListProducts)
	api.GET("/products/:id", handler.GetProduct)
	api.GET("/products/slug/:slug", handler.GetProductBySlug)
	api.POST("/products", handler.CreateProduct, mid.AuthMiddleware)
	api.PUT("/products/:id", handler.UpdateProduct, mid.AuthMiddleware)
	api.DELETE("/products/:id", handler.DeleteProduct, mid.AuthMiddleware)

	// Shipping class routes
	api.GET("/shipping-classes", handler.ListShippingClasses)
	api.GET("/shipping-classes/:id", handler.GetShippingClass)
	api.POST("/shipping-classes", handler.CreateShippingClass, mid.AuthMiddleware)
	api.PUT("/shipping-classes/:id", handler.UpdateShippingClass, mid.AuthMiddleware)
	api.DELETE("/shipping-classes/:id", handler.DeleteShippingClass, mid.AuthMiddleware)

	// Order routes; checkout is public, management is owner-only
	api.POST("/orders", orderHandler.CreateOrder)
	api.GET("/orders", orderHandler.ListOrders, mid.AuthMiddleware)
	api.GET("/orders/:id", orderHandler.GetOrder, mid.AuthMiddleware)
	api.PUT("/orders/:id", orderHandler.UpdateOrder, mid.AuthMiddleware)

	// Analytics routes
	api.GET("/analytics/dashboard", handler.Dashboard, mid.AuthMiddleware)
	api.GET("/analytics/orders/trend", handler.OrdersTrend, mid.AuthMiddleware)

	// Start server
	go func() {
		port := appConfig.Server.Port
		log.Info("Starting server", zap.String("port", port))
		if err := e.Start(":" + port); err != nil {
			log.Info("Server stopped", zap.Error(err))
		}
	}()

	// Wait for interrupt, then drain in-flight requests and pending
	// notifications.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	dispatcher.Stop()
	log.Info("Shutdown complete")
}
