package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/drivehub/service-booking/internal/adapter"
	"github.com/drivehub/service-booking/internal/application"
	"github.com/drivehub/service-booking/internal/auth"
	"github.com/drivehub/service-booking/internal/config"
	"github.com/drivehub/service-booking/internal/database"
	bookingEvents "github.com/drivehub/service-booking/internal/events"
	"github.com/drivehub/service-booking/internal/handler"
	"github.com/drivehub/service-booking/internal/jobs"
	"github.com/drivehub/service-booking/internal/kafka"
	"github.com/drivehub/service-booking/internal/logger"
	"github.com/drivehub/service-booking/internal/middleware"
	"github.com/drivehub/service-booking/internal/repository"
	"github.com/drivehub/service-booking/internal/saga"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewNamed(cfg.AppEnv, "service-booking")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting service-booking",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DB, cfg.AppEnv)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.TenantModel{},
			&repository.PaymentMethodModel{},
			&repository.VehicleModel{},
			&repository.PricingRuleModel{},
			&repository.ExtraOptionModel{},
			&repository.InsuranceTypeModel{},
			&repository.LocationModel{},
			&repository.DiscountCodeModel{},
			&repository.ReservationModel{},
			&repository.ReservationExtraLineModel{},
			&repository.AvailabilityBlockModel{},
		); err != nil {
			zapLogger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		zapLogger.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.Migrate(cfg.DB, "migrations", zapLogger); err != nil {
			zapLogger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers, zapLogger)
	defer kafkaProducer.Close()

	// Initialize payment provider adapter (mock for development)
	paymentProvider := adapter.NewMockPaymentProvider(zapLogger)

	// Initialize repositories
	unitOfWork := repository.NewUnitOfWork(db)
	tenantRepo := repository.NewGormTenantRepository(db)
	fleetRepo := repository.NewGormFleetRepository(db)
	pricingRepo := repository.NewGormPricingRepository(db)
	discountRepo := repository.NewGormDiscountRepository(db)
	reservationRepo := repository.NewGormReservationRepository(db)

	// Initialize saga service
	sagaService := saga.NewBookingSagaService(reservationRepo, unitOfWork, paymentProvider, kafkaProducer, zapLogger)

	// Initialize application services
	quoteService := application.NewQuoteService(tenantRepo, fleetRepo, pricingRepo, discountRepo, zapLogger)
	bookingService := application.NewBookingService(
		reservationRepo, unitOfWork, tenantRepo, discountRepo,
		quoteService, sagaService, cfg.Reservation.HoldWindow, zapLogger,
	)
	discountService := application.NewDiscountService(discountRepo, zapLogger)

	// Initialize Kafka consumer for payment events
	paymentConsumer := bookingEvents.NewPaymentEventConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.ConsumerGroup,
		cfg.Kafka.PaymentTopic,
		bookingService,
		zapLogger,
	)
	defer paymentConsumer.Close()

	// Start Kafka consumer in a goroutine
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	go func() {
		zapLogger.Info("starting payment event consumer")
		if err := paymentConsumer.Start(consumerCtx); err != nil {
			if consumerCtx.Err() == nil {
				zapLogger.Error("payment event consumer failed", zap.Error(err))
			}
		}
	}()

	// Start the expiry sweeper
	sweeper := jobs.NewExpirySweeper(bookingService, cfg.Reservation.SweepSchedule, zapLogger)
	if err := sweeper.Start(consumerCtx); err != nil {
		zapLogger.Fatal("failed to start expiry sweeper", zap.Error(err))
	}
	defer sweeper.Stop()

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	quoteHandler := handler.NewQuoteHandler(quoteService)
	discountHandler := handler.NewDiscountHandler(discountService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.Recovery(zapLogger))
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())

	// Register health check routes
	healthHandler := handler.NewHealthHandler(db, "service-booking")
	healthHandler.RegisterRoutes(router)

	// Register API routes
	apiV1 := router.Group("/api/v1")
	bookingHandler.RegisterRoutes(apiV1, jwtManager)
	quoteHandler.RegisterRoutes(apiV1, jwtManager)
	discountHandler.RegisterRoutes(apiV1, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down service-booking...")

	// Cancel background workers
	consumerCancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("service-booking stopped")
}
