package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	Env              string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	// Payment gateway (hosted payment page API)
	GatewayBaseURL      string
	GatewaySecretKey    string
	GatewayCategoryCode string

	// Base URL used to derive webhook/return URLs when the request host is
	// not usable (e.g. behind a proxy without forwarded headers).
	AppBaseURL string

	FreeShippingThreshold float64

	JWTSecret string

	// Optional integrations; empty values disable them.
	KafkaBrokers      string
	PaymentEventTopic string
	RedisAddr         string
}

func LoadConfig() (*Config, error) {
	// .env is optional; system environment wins in deployed environments.
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("APP_ENV", "development"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "Asia/Kuala_Lumpur"),

		GatewayBaseURL:      getEnv("GATEWAY_BASE_URL", "https://dev.toyyibpay.com"),
		GatewaySecretKey:    os.Getenv("GATEWAY_SECRET_KEY"),
		GatewayCategoryCode: os.Getenv("GATEWAY_CATEGORY_CODE"),

		AppBaseURL: getEnv("APP_BASE_URL", "http://localhost:8080"),

		FreeShippingThreshold: getEnvFloat("FREE_SHIPPING_THRESHOLD", 300),

		JWTSecret: os.Getenv("JWT_SECRET"),

		KafkaBrokers:      os.Getenv("KAFKA_BROKERS"),
		PaymentEventTopic: getEnv("PAYMENT_EVENT_TOPIC", "payment.events"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	if cfg.GatewaySecretKey == "" || cfg.GatewayCategoryCode == "" {
		return nil, fmt.Errorf("payment gateway config incomplete")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}
