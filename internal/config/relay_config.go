package config

import (
	"errors"
	"os"
)

// RelayConfig holds configuration for the booking event relay.
// It only includes what the relay needs.
type RelayConfig struct {
	DatabaseURL      string
	RabbitMQURL      string
	BookingQueueName string
	HealthPort       string
}

func LoadRelayConfig() (*RelayConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	dbURL := os.Getenv("DB_CONNECTION_STRING")
	if dbURL == "" {
		return nil, errors.New("DB_CONNECTION_STRING environment variable is required")
	}

	rabbitURL := os.Getenv("RABBITMQ_URL")
	if rabbitURL == "" {
		return nil, errors.New("RABBITMQ_URL environment variable is required")
	}

	return &RelayConfig{
		DatabaseURL:      dbURL,
		RabbitMQURL:      rabbitURL,
		BookingQueueName: getenv("BOOKING_QUEUE_NAME", "", "booking-events"),
		HealthPort:       getenv("RELAY_HEALTH_PORT", "", "8081"),
	}, nil
}
