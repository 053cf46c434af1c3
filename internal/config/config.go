package config

import (
	"os"
	"strings"

	"github.com/tair/inventory-engine/pkg/database"
)

// Config holds the reservation engine configuration
type Config struct {
	ServiceName string
	Environment string
	LogLevel    string
	HTTPPort    string

	DB database.Config

	KafkaBrokers []string
	KafkaGroupID string

	RedisAddr string

	// AllOrNothingOrders makes a declined SKU trigger compensating releases
	// for the order's confirmed siblings
	AllOrNothingOrders bool
}

// Load reads the configuration from the environment
func Load() *Config {
	return &Config{
		ServiceName: getEnv("OTEL_SERVICE_NAME", "inventory-reservation-engine"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		HTTPPort:    getEnv("HTTP_PORT", "8084"),
		DB: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "inventorydb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		KafkaBrokers:       splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaGroupID:       getEnv("KAFKA_GROUP_ID", "inventory-reservation-engine"),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		AllOrNothingOrders: getEnv("ALL_OR_NOTHING_ORDERS", "true") == "true",
	}
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
