package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Application settings
type Config struct {
	Server  ServerConfig
	Logging LoggingConfig
	Store   StoreConfig
	Client  ClientConfig
	Intake  IntakeConfig
}

// Server settings
type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

// Logging settings
type LoggingConfig struct {
	Level string
}

// Row store / metadata cache backend selection
type StoreConfig struct {
	Backend     string // memory | postgres | rest
	PostgresDSN string
	RESTBaseURL string
	RESTAPIKey  string
}

// Settings for outbound calls to the managed datastore
type ClientConfig struct {
	RequestTimeout     time.Duration
	RateLimitPerSecond int
	RateBurst          int
}

// Kafka intake settings; intake is disabled when Brokers is empty
type IntakeConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendREST     = "rest"
)

func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", "15s"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Backend:     getEnv("STORE_BACKEND", BackendMemory),
			PostgresDSN: getEnv("POSTGRES_DSN", ""),
			RESTBaseURL: getEnv("REST_STORE_URL", ""),
			RESTAPIKey:  getEnv("REST_STORE_API_KEY", ""),
		},
		Client: ClientConfig{
			RequestTimeout:     getDurationEnv("REQUEST_TIMEOUT", "30s"),
			RateLimitPerSecond: getIntEnv("RATE_LIMIT_PER_SECOND", 100),
			RateBurst:          getIntEnv("RATE_BURST", 10),
		},
		Intake: IntakeConfig{
			Brokers: getListEnv("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_TOPIC", "metric-rows"),
			GroupID: getEnv("KAFKA_GROUP_ID", "insights-intake"),
		},
	}

	switch config.Store.Backend {
	case BackendMemory:
	case BackendPostgres:
		if config.Store.PostgresDSN == "" {
			return nil, fmt.Errorf("POSTGRES_DSN is required when STORE_BACKEND=postgres")
		}
	case BackendREST:
		if config.Store.RESTBaseURL == "" {
			return nil, fmt.Errorf("REST_STORE_URL is required when STORE_BACKEND=rest")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", config.Store.Backend)
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
