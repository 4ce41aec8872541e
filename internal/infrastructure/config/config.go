// internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// PostgreSQL
	PostgresDSN string

	// MongoDB
	MongoURI string
	MongoDB  string

	// Gateway
	GatewayBaseURL  string
	GatewayUsername string
	GatewayPassword string
	GatewayTimeout  time.Duration
	GatewayTokenTTL time.Duration

	// Sync
	SyncInterval       time.Duration
	SyncWorkers        int
	MinLookback        int
	DefaultTakeoffTime time.Duration // clock offset into the day for legacy records
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	defaultTakeoff, err := parseClockOffset(getEnv("DEFAULT_TAKEOFF_TIME", "10:00"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_TAKEOFF_TIME: %w", err)
	}

	// Set defaults and override with env vars
	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		PostgresDSN: getEnv("POSTGRES_DSN", "host=localhost user=logsync dbname=logsync port=5432 sslmode=disable"),

		MongoURI: getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "logsync"),

		GatewayBaseURL:  getEnv("GATEWAY_BASE_URL", "https://aetos.kanardia.eu:8088"),
		GatewayUsername: getEnv("GATEWAY_USERNAME", ""),
		GatewayPassword: getEnv("GATEWAY_PASSWORD", ""),
		GatewayTimeout:  time.Duration(getEnvAsInt("GATEWAY_TIMEOUT", 30)) * time.Second,
		GatewayTokenTTL: time.Duration(getEnvAsInt("GATEWAY_TOKEN_TTL", 900)) * time.Second,

		SyncInterval:       time.Duration(getEnvAsInt("SYNC_INTERVAL", 300)) * time.Second,
		SyncWorkers:        getEnvAsInt("SYNC_WORKERS", 4),
		MinLookback:        getEnvAsInt("MIN_LOOKBACK", 20),
		DefaultTakeoffTime: defaultTakeoff,
	}

	return config, nil
}

// parseClockOffset converts an HH:MM string into an offset from midnight
func parseClockOffset(value string) (time.Duration, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return 0, err
	}
	return time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
