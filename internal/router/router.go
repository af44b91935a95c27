// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/tianguisbeats/tianguis-backend/internal/config"
	"github.com/tianguisbeats/tianguis-backend/internal/handlers"
	"github.com/tianguisbeats/tianguis-backend/internal/middleware"
	"github.com/tianguisbeats/tianguis-backend/internal/services"
	"github.com/tianguisbeats/tianguis-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Warn("Storage unavailable, contract uploads will fail")
	}
	notificationService := services.NewNotificationService(cfg)
	contractService := services.NewContractService(db, cfg, storageService)

	authService := services.NewAuthService(db, cfg)
	beatService := services.NewBeatService(db)
	couponService := services.NewCouponService(db)
	subscriptionService := services.NewSubscriptionService(db)
	checkoutService := services.NewCheckoutService(db, cfg, couponService, subscriptionService, contractService, notificationService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, db)
	beatHandler := handlers.NewBeatHandler(beatService)
	couponHandler := handlers.NewCouponHandler(couponService, checkoutService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	orderHandler := handlers.NewOrderHandler(checkoutService, contractService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	verificationHandler := handlers.NewVerificationHandler()

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		// Catalog routes
		beats := v1.Group("/beats")
		{
			beats.GET("", middleware.OptionalAuth(), beatHandler.List)
			beats.GET("/mine", middleware.AuthRequired(), middleware.ProducerRequired(), beatHandler.MyBeats)
			beats.GET("/:id", middleware.OptionalAuth(), beatHandler.Get)
			beats.GET("/:id/licenses", beatHandler.Licenses)
			beats.POST("/:id/play", beatHandler.Play)
		}

		// Coupon routes
		coupons := v1.Group("/coupons")
		{
			coupons.POST("/validate", middleware.OptionalAuth(), couponHandler.Validate)

			protected := coupons.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.GET("/mine", middleware.ProducerRequired(), couponHandler.ListMine)
				protected.POST("", middleware.ProducerRequired(), couponHandler.Create)
				protected.POST("/admin", middleware.AdminRequired(), couponHandler.CreateAdmin)
				protected.DELETE("/:id", couponHandler.Deactivate)
			}
		}

		// Checkout routes
		checkout := v1.Group("/checkout")
		checkout.Use(middleware.AuthRequired(), middleware.CheckoutRateLimit())
		{
			checkout.POST("", checkoutHandler.Create)
			checkout.POST("/:orderKey/confirm", checkoutHandler.Confirm)
		}

		// Order history
		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.GET("", orderHandler.List)
			orders.GET("/:id", orderHandler.Get)
			orders.GET("/items/:itemId/contract", orderHandler.ContractDownload)
		}

		// Subscription plans
		subscriptions := v1.Group("/subscriptions")
		{
			subscriptions.GET("/plans", subscriptionHandler.Plans)
			subscriptions.GET("/mine", middleware.AuthRequired(), subscriptionHandler.Mine)
			subscriptions.POST("/cancel", middleware.AuthRequired(), subscriptionHandler.Cancel)
		}

		// Public contract verification
		v1.POST("/verify/contract", verificationHandler.VerifyContract)
	}

	return r
}
