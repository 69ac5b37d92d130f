package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	MongoDB MongoDBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	OTEL    OTELConfig
	Log     LogConfig
	Workout WorkoutConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        string
	BodyLimitKB int
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Driver string // mongo or memory
}

// MongoDBConfig holds MongoDB connection configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds bearer token settings
type JWTConfig struct {
	Secret string
	Expiry time.Duration // lifetime of tokens issued by dev tooling
}

// OTELConfig holds OpenTelemetry exporter configuration
type OTELConfig struct {
	Enabled        bool
	Endpoint       string
	Token          string
	Insecure       bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	InstanceID     string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	File   string // empty logs to stdout only
	JSON   bool
	Stdout bool // also log to stdout when File is set
}

// WorkoutConfig tunes session execution and background work
type WorkoutConfig struct {
	RecordWorkers   int
	RecordQueueSize int
	SummaryCacheTTL time.Duration
	RecordsCacheTTL time.Duration
	RoutineCacheTTL time.Duration
	IdempotencyTTL  time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables
// It attempts to load from .env file first, then falls back to system env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not found)
	_ = godotenv.Load()

	hostname, _ := os.Hostname()

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			BodyLimitKB: getEnvAsInt("BODY_LIMIT_KB", 256),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "workout"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Expiry: getEnvAsDuration("JWT_EXPIRY", 24*time.Hour),
		},
		OTEL: OTELConfig{
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			Token:          getEnv("OTEL_EXPORTER_OTLP_TOKEN", ""),
			Insecure:       getEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "workout-api"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("ENVIRONMENT", "development"),
			InstanceID:     getEnv("OTEL_SERVICE_INSTANCE_ID", hostname),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			File:   getEnv("LOG_FILE", ""),
			JSON:   getEnvAsBool("LOG_JSON", false),
			Stdout: getEnvAsBool("LOG_STDOUT", true),
		},
		Workout: WorkoutConfig{
			RecordWorkers:   getEnvAsInt("WORKOUT_RECORD_WORKERS", 2),
			RecordQueueSize: getEnvAsInt("WORKOUT_RECORD_QUEUE_SIZE", 256),
			SummaryCacheTTL: getEnvAsDuration("WORKOUT_SUMMARY_CACHE_TTL", 24*time.Hour),
			RecordsCacheTTL: getEnvAsDuration("WORKOUT_RECORDS_CACHE_TTL", 10*time.Minute),
			RoutineCacheTTL: getEnvAsDuration("WORKOUT_ROUTINE_CACHE_TTL", 5*time.Minute),
			IdempotencyTTL:  getEnvAsDuration("WORKOUT_IDEMPOTENCY_TTL", 24*time.Hour),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Store.Driver != StoreMongo && c.Store.Driver != StoreMemory {
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMongo, StoreMemory, c.Store.Driver)
	}
	if c.Store.Driver == StoreMongo && c.MongoDB.URI == "" {
		return fmt.Errorf("MONGODB_URI is required for the mongo store")
	}
	if c.Workout.RecordWorkers < 1 || c.Workout.RecordQueueSize < 1 {
		return fmt.Errorf("WORKOUT_RECORD_WORKERS and WORKOUT_RECORD_QUEUE_SIZE must be positive")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go duration strings such as "90s" or "5m"
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
