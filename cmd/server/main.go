package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/workhaven/coworking-backend/internal/config"
	"github.com/workhaven/coworking-backend/internal/database"
	"github.com/workhaven/coworking-backend/internal/handlers"
	"github.com/workhaven/coworking-backend/internal/middleware"
	"github.com/workhaven/coworking-backend/internal/models"
	"github.com/workhaven/coworking-backend/internal/services"
	"github.com/workhaven/coworking-backend/pkg/jwt"
	"github.com/workhaven/coworking-backend/pkg/paygate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(cfg)

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Repositories
	userRepo := database.NewUserRepository(db)
	spaceRepo := database.NewSpaceRepository(db)
	bookingRepo := database.NewBookingRepository(db)
	paymentRepo := database.NewPaymentRepository(db)
	auditRepo := database.NewPaymentAuditRepository(db)

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	gateway := paygate.NewClient(paygate.Config{
		BaseURL:       cfg.Payment.BaseURL,
		SecretKey:     cfg.Payment.SecretKey,
		WebhookSecret: cfg.Payment.WebhookSecret,
		Timeout:       cfg.Payment.Timeout,
	})

	// Services
	authService := services.NewAuthService(userRepo, jwtManager, cfg.Security.BcryptCost, logger)
	spaceService := services.NewSpaceService(spaceRepo, cfg.Booking.DefaultCurrency, logger)
	availabilityService := services.NewAvailabilityService(bookingRepo, spaceRepo, logger)
	bookingService := services.NewBookingService(bookingRepo, spaceRepo, cfg.Booking.DefaultCurrency, logger)
	paymentService := services.NewPaymentService(paymentRepo, bookingRepo, auditRepo, gateway, cfg.Server.Environment, logger)

	cronService := services.NewCronService(bookingService, cfg.Booking.CompletionSweepSpec, logger)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}
	defer cronService.Stop()

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, logger)
	spaceHandler := handlers.NewSpaceHandler(spaceService, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, availabilityService, logger)
	paymentHandler := handlers.NewPaymentHandler(paymentService, logger)

	router := setupRouter(cfg, logger, db, jwtManager,
		authHandler, spaceHandler, bookingHandler, paymentHandler)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port":        cfg.Server.Port,
			"environment": cfg.Server.Environment,
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Forced shutdown: %v", err)
	}
	logger.Info("Server stopped")
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})

	level, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

func setupRouter(
	cfg *config.Config,
	logger *logrus.Logger,
	db database.DB,
	jwtManager *jwt.Manager,
	authHandler *handlers.AuthHandler,
	spaceHandler *handlers.SpaceHandler,
	bookingHandler *handlers.BookingHandler,
	paymentHandler *handlers.PaymentHandler,
) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(middleware.RequestLogger(logger))
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		dbStatus := "up"
		if err := db.Ping(); err != nil {
			status = http.StatusServiceUnavailable
			dbStatus = "down"
		}
		c.JSON(status, gin.H{"status": "ok", "database": dbStatus})
	})

	auth := middleware.AuthMiddleware(jwtManager, logger)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/login", authHandler.Login)

		// The processor calls this; it authenticates with its signature,
		// not a bearer token
		v1.POST("/payments/webhook", paymentHandler.Webhook)

		v1.GET("/spaces", spaceHandler.List)
		v1.GET("/spaces/:id", spaceHandler.Get)

		authed := v1.Group("")
		authed.Use(auth)
		{
			authed.GET("/users/me", authHandler.GetProfile)
			authed.PUT("/users/me", authHandler.UpdateProfile)
			authed.GET("/users", middleware.RequireRole(models.RoleAdmin), authHandler.ListUsers)

			managers := authed.Group("")
			managers.Use(middleware.RequireRole(models.RoleManager, models.RoleAdmin))
			{
				managers.POST("/spaces", spaceHandler.Create)
				managers.GET("/spaces/mine", spaceHandler.ListMine)
				managers.PUT("/spaces/:id", spaceHandler.Update)
				managers.DELETE("/spaces/:id", spaceHandler.Archive)
				managers.GET("/spaces/:id/bookings", bookingHandler.ListForSpace)
			}

			authed.GET("/bookings/check-availability", bookingHandler.CheckAvailability)
			authed.POST("/bookings", bookingHandler.Create)
			authed.GET("/bookings", bookingHandler.ListMine)
			authed.GET("/bookings/:id", bookingHandler.Get)
			authed.PUT("/bookings/:id", bookingHandler.Update)
			authed.POST("/bookings/:id/confirm", bookingHandler.Confirm)
			authed.POST("/bookings/:id/cancel", bookingHandler.Cancel)
			authed.GET("/bookings/:id/payment-audit", paymentHandler.AuditTrail)

			authed.POST("/payments/create-intent", paymentHandler.CreateIntent)
			authed.POST("/payments/confirm", paymentHandler.ConfirmTest)
		}
	}

	return router
}
