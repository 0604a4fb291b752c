package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL        string
	Port               string
	GoEnv              string
	Auth0Domain        string
	Auth0Audience      string
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	LogLevel           string

	// Pay-later window applied to new orders. Lapsed orders are marked
	// expired lazily, on the next read.
	PayLaterWindow time.Duration

	// DefaultCurrency is the currency recorded on payment attempts.
	DefaultCurrency string

	// StrictPricing makes unknown pricing selections a validation error
	// instead of pricing them at zero.
	StrictPricing bool
}

var configInstance *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	// Determine which environment file to load
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		// If environment-specific file doesn't exist, try .env
		if err := godotenv.Load(); err != nil {
			// In production, environment variables are set directly
			// so it's okay if .env files don't exist
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	config := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		Port:               getEnv("PORT", "8080"),
		GoEnv:              getEnv("GO_ENV", "development"),
		Auth0Domain:        getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:      getEnv("AUTH0_AUDIENCE", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		PayLaterWindow:     time.Duration(getEnvInt("PAY_LATER_WINDOW_HOURS", 24)) * time.Hour,
		DefaultCurrency:    getEnv("DEFAULT_CURRENCY", "USD"),
		StrictPricing:      getEnvBool("STRICT_PRICING", false),
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	configInstance = config
	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.PayLaterWindow <= 0 {
		return fmt.Errorf("PAY_LATER_WINDOW_HOURS must be positive")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// GetConfig returns the loaded configuration instance
func GetConfig() *Config {
	return configInstance
}

// SetConfig sets the configuration instance (primarily for testing)
func SetConfig(c *Config) {
	configInstance = c
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Invalid boolean for %s: %q, using default %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
