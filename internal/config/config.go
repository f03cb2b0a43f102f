/**
 * @description
 * This package handles the configuration management for the service. It uses the
 * Viper library to read configuration from environment variables, providing a
 * centralized and straightforward way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the payments-review-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort           string `mapstructure:"SERVER_PORT"`
	DatabaseURL          string `mapstructure:"DATABASE_URL"`
	RedisURL             string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL          string `mapstructure:"RABBITMQ_URL"`
	PaymentCreatedQueue  string `mapstructure:"PAYMENT_CREATED_QUEUE"`
	JWKSURL              string `mapstructure:"JWKS_URL"`
	SwiftDataFile        string `mapstructure:"SWIFT_DATA_FILE"`
	SwiftDataURL         string `mapstructure:"SWIFT_DATA_URL"`
	SwiftDataAPIKey      string `mapstructure:"SWIFT_DATA_API_KEY"`

	VerifyAccountRateLimitPerMinute int `mapstructure:"VERIFY_ACCOUNT_RATE_LIMIT_PER_MINUTE"`
	VerifySwiftRateLimitPerMinute   int `mapstructure:"VERIFY_SWIFT_RATE_LIMIT_PER_MINUTE"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "5001")
	viper.SetDefault("PAYMENT_CREATED_QUEUE", "payments_review.payment_created")
	viper.SetDefault("SWIFT_DATA_FILE", "AllCountries_v3.json")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "paybridge:rate_limit")
	viper.SetDefault("VERIFY_ACCOUNT_RATE_LIMIT_PER_MINUTE", 60)
	viper.SetDefault("VERIFY_SWIFT_RATE_LIMIT_PER_MINUTE", 120)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL", "REDIS_URL", "REVIEW_REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("PAYMENT_CREATED_QUEUE")
	_ = viper.BindEnv("JWKS_URL", "JWKS_URL", "AUTH_JWKS_URL")
	_ = viper.BindEnv("SWIFT_DATA_FILE")
	_ = viper.BindEnv("SWIFT_DATA_URL")
	_ = viper.BindEnv("SWIFT_DATA_API_KEY")
	_ = viper.BindEnv("VERIFY_ACCOUNT_RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("VERIFY_SWIFT_RATE_LIMIT_PER_MINUTE")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can ignore the error.
		// For other errors, we should return them.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	if strings.TrimSpace(config.JWKSURL) == "" {
		config.JWKSURL = strings.TrimSpace(os.Getenv("AUTH_JWKS_URL"))
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "paybridge:rate_limit"
	}
	config.SwiftDataFile = strings.TrimSpace(config.SwiftDataFile)
	config.SwiftDataURL = strings.TrimSpace(config.SwiftDataURL)

	if config.VerifyAccountRateLimitPerMinute < 0 {
		log.Printf("level=warn component=config msg=\"negative account-check rate limit; disabling\" limit=%d", config.VerifyAccountRateLimitPerMinute)
		config.VerifyAccountRateLimitPerMinute = 0
	}
	if config.VerifySwiftRateLimitPerMinute < 0 {
		log.Printf("level=warn component=config msg=\"negative swift-check rate limit; disabling\" limit=%d", config.VerifySwiftRateLimitPerMinute)
		config.VerifySwiftRateLimitPerMinute = 0
	}

	return
}
