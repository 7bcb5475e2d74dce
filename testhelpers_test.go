//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/drivehub/service-booking/internal/adapter"
	"github.com/drivehub/service-booking/internal/application"
	bookingEvents "github.com/drivehub/service-booking/internal/events"
	"github.com/drivehub/service-booking/internal/kafka"
	"github.com/drivehub/service-booking/internal/repository"
	"github.com/drivehub/service-booking/internal/saga"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// bookingStack holds wired-up booking service components.
type bookingStack struct {
	Bookings        *application.BookingService
	Quotes          *application.QuoteService
	Consumer        *bookingEvents.PaymentEventConsumer
	CleanupProducer func()
}

// testFixture is the seeded reference data a booking needs.
type testFixture struct {
	TenantID   uuid.UUID
	VehicleID  uuid.UUID
	CategoryID uuid.UUID
	PickupLoc  uuid.UUID
	DropoffLoc uuid.UUID
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	// Start PostgreSQL container with log-based wait strategy.
	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_booking sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error)
	require.NoError(t, db.AutoMigrate(
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
	))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create required topics.
	createTopics(t, kafkaBrokers, bookingEvents.TopicBookingEvents, bookingEvents.TopicPaymentEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupBookingStack wires up the full booking service stack.
func setupBookingStack(t *testing.T, db *gorm.DB, brokers []string, holdWindow time.Duration) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	reservationRepo := repository.NewGormReservationRepository(db)
	tenantRepo := repository.NewGormTenantRepository(db)
	fleetRepo := repository.NewGormFleetRepository(db)
	pricingRepo := repository.NewGormPricingRepository(db)
	discountRepo := repository.NewGormDiscountRepository(db)
	uow := repository.NewUnitOfWork(db)

	producer := kafka.NewProducer(brokers, logger)
	provider := adapter.NewMockPaymentProvider(logger)
	sagaSvc := saga.NewBookingSagaService(reservationRepo, uow, provider, producer, logger)

	quoteSvc := application.NewQuoteService(tenantRepo, fleetRepo, pricingRepo, discountRepo, logger)
	bookingSvc := application.NewBookingService(
		reservationRepo, uow, tenantRepo, discountRepo, quoteSvc, sagaSvc, holdWindow, logger,
	)

	groupID := fmt.Sprintf("test-booking-%s", uuid.New().String()[:8])
	consumer := bookingEvents.NewPaymentEventConsumer(
		brokers, groupID, bookingEvents.TopicPaymentEvents, bookingSvc, logger,
	)

	return &bookingStack{
		Bookings:        bookingSvc,
		Quotes:          quoteSvc,
		Consumer:        consumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedFixture inserts an active tenant, one vehicle and two locations. The
// tenant rents at 50.00/day with 24% VAT.
func seedFixture(t *testing.T, db *gorm.DB) testFixture {
	t.Helper()
	fix := testFixture{
		TenantID:   uuid.New(),
		VehicleID:  uuid.New(),
		CategoryID: uuid.New(),
		PickupLoc:  uuid.New(),
		DropoffLoc: uuid.New(),
	}
	now := time.Now().UTC()

	require.NoError(t, db.Create(&repository.TenantModel{
		ID:                    fix.TenantID,
		Name:                  "Integration Rentals",
		Status:                "active",
		Currency:              "EUR",
		TaxRate:               decimal.NewFromFloat(0.24),
		DefaultDailyRateCents: 5000,
		CreatedAt:             now,
		UpdatedAt:             now,
	}).Error, "failed to seed tenant")

	require.NoError(t, db.Create(&repository.VehicleModel{
		ID:         fix.VehicleID,
		TenantID:   fix.TenantID,
		CategoryID: fix.CategoryID,
		Make:       "Skoda",
		Model:      "Octavia",
		Plate:      "INT-001",
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}).Error, "failed to seed vehicle")

	require.NoError(t, db.Create(&repository.LocationModel{
		ID:        fix.PickupLoc,
		TenantID:  fix.TenantID,
		Name:      "Airport",
		CreatedAt: now,
	}).Error, "failed to seed pickup location")
	require.NoError(t, db.Create(&repository.LocationModel{
		ID:        fix.DropoffLoc,
		TenantID:  fix.TenantID,
		Name:      "Downtown",
		CreatedAt: now,
	}).Error, "failed to seed dropoff location")

	return fix
}

// seedVehicle adds one more active vehicle to the tenant's fleet.
func seedVehicle(t *testing.T, db *gorm.DB, fix testFixture, plate string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	require.NoError(t, db.Create(&repository.VehicleModel{
		ID:         id,
		TenantID:   fix.TenantID,
		CategoryID: fix.CategoryID,
		Make:       "Skoda",
		Model:      "Fabia",
		Plate:      plate,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}).Error, "failed to seed vehicle")
	return id
}

// seedDiscountCode inserts an active percentage code.
func seedDiscountCode(t *testing.T, db *gorm.DB, tenantID uuid.UUID, code string, percent int64, maxUses int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	require.NoError(t, db.Create(&repository.DiscountCodeModel{
		ID:           id,
		TenantID:     tenantID,
		Code:         code,
		DiscountType: "percentage",
		Value:        percent,
		MaxUses:      maxUses,
		TimesUsed:    0,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}).Error, "failed to seed discount code")
	return id
}

// bookingRequest builds a 3-day request against the fixture's vehicle.
func bookingRequest(fix testFixture, email string) application.CreateReservationRequest {
	return application.CreateReservationRequest{
		QuoteRequest: application.QuoteRequest{
			VehicleID:         fix.VehicleID,
			PickupDate:        "2026-09-10",
			DropoffDate:       "2026-09-13",
			PickupTime:        "10:00",
			DropoffTime:       "10:00",
			PickupLocationID:  fix.PickupLoc,
			DropoffLocationID: fix.DropoffLoc,
		},
		Customer: application.CustomerDTO{
			FirstName: "Test",
			LastName:  "Renter",
			Email:     email,
			Phone:     "+358401234567",
		},
	}
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForReservationStatus polls the reservations table until the status matches.
func waitForReservationStatus(t *testing.T, db *gorm.DB, reservationID uuid.UUID, expectedStatus string, timeout time.Duration) repository.ReservationModel {
	t.Helper()
	var result repository.ReservationModel
	require.Eventually(t, func() bool {
		var model repository.ReservationModel
		err := db.Where("id = ?", reservationID).First(&model).Error
		if err != nil {
			return false
		}
		if model.Status == expectedStatus {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "reservation did not transition to %s", expectedStatus)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
