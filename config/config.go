package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	ServerPort string
	ServerEnv  string

	// MongoDB
	MongoURI      string
	MongoDatabase string

	// Redis
	RedisAddr string
	RedisDB   int

	// JWT
	JWTSecret      string
	JWTExpireHours int

	CORSAllowedOrigins []string

	// OpenTelemetry collector, empty disables tracing
	OTelEndpoint string

	UserCacheTTL time.Duration
}

// Load reads an optional .env file and then the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "5000"),
		ServerEnv:  getEnv("SERVER_ENV", "development"),

		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "hoardings_db"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvAsInt("REDIS_DB", 0),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTExpireHours: getEnvAsInt("JWT_EXPIRE_HOURS", 24),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:19000",
			"http://localhost:19006",
			"http://localhost:8081",
		}),

		OTelEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", ""),

		UserCacheTTL: time.Duration(getEnvAsInt("USER_CACHE_TTL_MINUTES", 24*60)) * time.Minute,
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is not set")
	}
	if c.JWTExpireHours <= 0 {
		return errors.New("JWT_EXPIRE_HOURS must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.ServerEnv == "production"
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpireHours) * time.Hour
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
