/**
 * @description
 * This package handles the configuration management for the service. It uses the
 * Viper library to read configuration from environment variables, providing a
 * centralized and straightforward way to manage application settings.
 *
 * The nearby-query ceilings and defaults are deliberate policy values, kept
 * here as configuration rather than literals in the query code.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort                string  `mapstructure:"SERVER_PORT"`
	DatabaseURL               string  `mapstructure:"DATABASE_URL"`
	RedisURL                  string  `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix      string  `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL               string  `mapstructure:"RABBITMQ_URL"`
	BillingEventExchange      string  `mapstructure:"BILLING_EVENT_EXCHANGE"`
	JWKSURL                   string  `mapstructure:"JWKS_URL"`
	MollieAPIBaseURL          string  `mapstructure:"MOLLIE_API_BASE_URL"`
	MollieAPIKey              string  `mapstructure:"MOLLIE_API_KEY"`
	PublicBaseURL             string  `mapstructure:"PUBLIC_BASE_URL"`
	CheckoutRedirectURL       string  `mapstructure:"CHECKOUT_REDIRECT_URL"`
	PaymentCurrency           string  `mapstructure:"PAYMENT_CURRENCY"`
	NearbyMaxRadiusKm         float64 `mapstructure:"NEARBY_MAX_RADIUS_KM"`
	NearbyDefaultRadius       float64 `mapstructure:"NEARBY_DEFAULT_RADIUS_KM"`
	NearbyMaxResults          int     `mapstructure:"NEARBY_MAX_RESULTS"`
	NearbyDefaultResults      int     `mapstructure:"NEARBY_DEFAULT_RESULTS"`
	NearbyRateLimitPerMinute  int     `mapstructure:"NEARBY_RATE_LIMIT_PER_MINUTE"`
	SubscriptionLapseSchedule string  `mapstructure:"SUBSCRIPTION_LAPSE_SCHEDULE"`
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
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("BILLING_EVENT_EXCHANGE", "billing_events")
	viper.SetDefault("MOLLIE_API_BASE_URL", "https://api.mollie.com")
	viper.SetDefault("PAYMENT_CURRENCY", "EUR")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "geosentinel:rate_limit")
	viper.SetDefault("NEARBY_MAX_RADIUS_KM", 100.0)
	viper.SetDefault("NEARBY_DEFAULT_RADIUS_KM", 10.0)
	viper.SetDefault("NEARBY_MAX_RESULTS", 200)
	viper.SetDefault("NEARBY_DEFAULT_RESULTS", 50)
	viper.SetDefault("NEARBY_RATE_LIMIT_PER_MINUTE", 120)
	viper.SetDefault("SUBSCRIPTION_LAPSE_SCHEDULE", "*/15 * * * *")

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT", "SERVER_PORT", "PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("BILLING_EVENT_EXCHANGE")
	_ = viper.BindEnv("JWKS_URL")
	_ = viper.BindEnv("MOLLIE_API_BASE_URL")
	_ = viper.BindEnv("MOLLIE_API_KEY")
	_ = viper.BindEnv("PUBLIC_BASE_URL")
	_ = viper.BindEnv("CHECKOUT_REDIRECT_URL")
	_ = viper.BindEnv("PAYMENT_CURRENCY")
	_ = viper.BindEnv("NEARBY_MAX_RADIUS_KM")
	_ = viper.BindEnv("NEARBY_DEFAULT_RADIUS_KM")
	_ = viper.BindEnv("NEARBY_MAX_RESULTS")
	_ = viper.BindEnv("NEARBY_DEFAULT_RESULTS")
	_ = viper.BindEnv("NEARBY_RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("SUBSCRIPTION_LAPSE_SCHEDULE")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	return config, err
}
