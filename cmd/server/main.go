package main

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"societypay_echo/internal/handlers"
	authMiddleware "societypay_echo/internal/middleware"
	"societypay_echo/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := services.InitDB(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	// Redis is optional; dashboards fall back to direct queries
	var cache *services.RedisCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cache, err = services.NewRedisCache(redisURL)
		if err != nil {
			log.Printf("Warning: Redis initialization failed: %v", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	// Gateway clients and domain services
	midtransClient := services.NewMidtransService()
	razorpayClient := services.NewRazorpayService()
	tokens := services.NewTokenService(jwtSecret)
	dues := services.NewDuesService(db)
	payments := services.NewPaymentService(db, dues, midtransClient, razorpayClient)
	stats := services.NewStatsService(db, dues)

	// Create Echo instance
	e := echo.New()
	e.HTTPErrorHandler = authMiddleware.JSONErrorHandler

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "*"
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     strings.Split(corsOrigins, ","),
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, tokens)
	flatHandler := handlers.NewFlatHandler(db)
	chargeHandler := handlers.NewChargeHandler(db)
	paymentHandler := handlers.NewPaymentHandler(payments)
	dashboardHandler := handlers.NewDashboardHandler(stats, cache)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// Webhooks authenticate themselves by signature, not bearer token
	api.POST("/webhook/midtrans", paymentHandler.CheckoutWebhook)
	api.POST("/webhook/razorpay", paymentHandler.OrderWebhook)

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth(tokens))

	protected.GET("/auth/me", authHandler.Me)

	protected.GET("/flats", flatHandler.List)
	protected.GET("/charges", chargeHandler.List)
	protected.GET("/payments", paymentHandler.List)

	protected.POST("/payments/checkout", paymentHandler.CreateCheckout)
	protected.GET("/payments/checkout/status/:session_id", paymentHandler.CheckoutStatus)
	protected.POST("/payments/razorpay/create-order", paymentHandler.CreateOrder)
	protected.POST("/payments/razorpay/verify", paymentHandler.VerifyOrder)

	protected.GET("/dashboard/resident", dashboardHandler.ResidentDashboard)

	// Admin-only routes
	admin := protected.Group("")
	admin.Use(authMiddleware.RequireAdmin())

	admin.POST("/flats", flatHandler.Create)
	admin.PUT("/flats/:id", flatHandler.Update)
	admin.DELETE("/flats/:id", flatHandler.Delete)
	admin.POST("/charges", chargeHandler.Create)
	admin.POST("/payments", paymentHandler.Record)
	admin.GET("/dashboard/stats", dashboardHandler.AdminStats)
	admin.GET("/admins/pending", authHandler.ListPendingAdmins)
	admin.POST("/admins/:id/approve", authHandler.ApproveAdmin)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
