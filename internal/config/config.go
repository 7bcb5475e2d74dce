package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds the Postgres connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN renders the GORM Postgres connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// MigrateURL renders the connection URL consumed by golang-migrate.
func (c DatabaseConfig) MigrateURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// KafkaConfig holds the broker and topic settings.
type KafkaConfig struct {
	Brokers       []string
	ConsumerGroup string
	PaymentTopic  string
	BookingTopic  string
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// ReservationConfig holds booking lifecycle tunables.
type ReservationConfig struct {
	HoldWindow    time.Duration
	SweepSchedule string
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port        string
	AppEnv      string
	DB          DatabaseConfig
	Kafka       KafkaConfig
	JWT         JWTConfig
	Reservation ReservationConfig
}

// Load reads configuration from the environment, falling back to a local
// .env file when present. Missing JWT secret is fatal.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	// .env is optional in containerized deployments
	_ = v.ReadInConfig()
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "booking")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_BROKERS", []string{"localhost:9092"})
	v.SetDefault("KAFKA_CONSUMER_GROUP", "booking-service")
	v.SetDefault("KAFKA_PAYMENT_TOPIC", "payment.events")
	v.SetDefault("KAFKA_BOOKING_TOPIC", "booking.events")
	v.SetDefault("JWT_EXPIRY", "24h")
	v.SetDefault("RESERVATION_HOLD_WINDOW", "30m")
	v.SetDefault("RESERVATION_SWEEP_SCHEDULE", "*/5 * * * *")

	secret := v.GetString("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &ServiceConfig{
		Port:   v.GetString("SERVICE_PORT"),
		AppEnv: v.GetString("APP_ENV"),
		DB: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Kafka: KafkaConfig{
			Brokers:       v.GetStringSlice("KAFKA_BROKERS"),
			ConsumerGroup: v.GetString("KAFKA_CONSUMER_GROUP"),
			PaymentTopic:  v.GetString("KAFKA_PAYMENT_TOPIC"),
			BookingTopic:  v.GetString("KAFKA_BOOKING_TOPIC"),
		},
		JWT: JWTConfig{
			Secret: secret,
			Expiry: v.GetDuration("JWT_EXPIRY"),
		},
		Reservation: ReservationConfig{
			HoldWindow:    v.GetDuration("RESERVATION_HOLD_WINDOW"),
			SweepSchedule: v.GetString("RESERVATION_SWEEP_SCHEDULE"),
		},
	}, nil
}
