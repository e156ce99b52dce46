package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// InsecureDevSecret signs tokens when no JWT_SECRET is set and the server
// runs in debug mode. It must never reach production: Load refuses an empty
// secret outside debug mode.
const InsecureDevSecret = "insecure-dev-secret-do-not-deploy"

// Config holds application configuration
type Config struct {
	MongoURI      string
	MongoDatabase string

	JWTSecret       string
	UsingDevSecret  bool
	TokenTTL        time.Duration
	ServerPort      string
	FrontendURL     string
	RedisURL        string
	ChartCacheTTL   time.Duration
	OpenAPIDir      string
	EnableHSTS      bool
	ServerDebugMode bool
	OTELEnabled     bool
	OTELEndpoint    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		MongoURI:        getEnv("MONGODB_CONNECTION_STRING", ""),
		MongoDatabase:   getEnv("MONGODB_DATABASE", "acaimar"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		TokenTTL:        time.Duration(getEnvInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		FrontendURL:     getEnv("FRONTEND_URL", "*"),
		RedisURL:        getEnv("REDIS_URL", ""),
		ChartCacheTTL:   time.Duration(getEnvInt("CHART_CACHE_TTL_SECONDS", 60)) * time.Second,
		OpenAPIDir:      getEnv("OPENAPI_DIR", "api/openapi"),
		EnableHSTS:      getEnvBool("ENABLE_HSTS", false),
		ServerDebugMode: getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:     getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGODB_CONNECTION_STRING is required")
	}

	if cfg.JWTSecret == "" {
		if !cfg.ServerDebugMode {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
		cfg.JWTSecret = InsecureDevSecret
		cfg.UsingDevSecret = true
	}

	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRATION_HOURS must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
