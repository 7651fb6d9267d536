/**
 * @description
 * This file handles configuration management for the integration-service.
 * It uses the 'viper' library to load configuration from environment
 * variables, providing a centralized and consistent way to manage settings.
 *
 * @notes
 * - STATTAQ_WEBHOOK_SECRET is intentionally optional: when it is unset the
 *   signature verifier runs in skip mode so local development works without
 *   provider credentials. Skipped verification is flagged in logs and
 *   metrics, never silently treated as verified.
 */
package config

import (
	"errors"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	ServerPort  string `mapstructure:"SERVER_PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	AMQPURL     string `mapstructure:"AMQP_URL"`
	JWKSURL     string `mapstructure:"JWKS_URL"`

	StatTaqWebhookSecret string `mapstructure:"STATTAQ_WEBHOOK_SECRET"`
	StatTaqClientID      string `mapstructure:"STATTAQ_CLIENT_ID"`
	StatTaqClientSecret  string `mapstructure:"STATTAQ_CLIENT_SECRET"`
	StatTaqAPIBaseURL    string `mapstructure:"STATTAQ_API_BASE_URL"`
	StatTaqCallbackURL   string `mapstructure:"STATTAQ_CALLBACK_URL"`

	ReplayJobSchedule string `mapstructure:"REPLAY_JOB_SCHEDULE"`
	ReplayBatchSize   int    `mapstructure:"REPLAY_BATCH_SIZE"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("SERVER_PORT", "8087")
	viper.SetDefault("STATTAQ_API_BASE_URL", "https://api.stattaq.com")
	viper.SetDefault("REPLAY_JOB_SCHEDULE", "*/10 * * * *")
	viper.SetDefault("REPLAY_BATCH_SIZE", 100)
	viper.AutomaticEnv()

	// Bind environment variables explicitly so they appear in Unmarshal.
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("AMQP_URL")
	_ = viper.BindEnv("JWKS_URL")
	_ = viper.BindEnv("STATTAQ_WEBHOOK_SECRET")
	_ = viper.BindEnv("STATTAQ_CLIENT_ID")
	_ = viper.BindEnv("STATTAQ_CLIENT_SECRET")
	_ = viper.BindEnv("STATTAQ_API_BASE_URL")
	_ = viper.BindEnv("STATTAQ_CALLBACK_URL")
	_ = viper.BindEnv("REPLAY_JOB_SCHEDULE")
	_ = viper.BindEnv("REPLAY_BATCH_SIZE")

	if err = viper.Unmarshal(&config); err != nil {
		return
	}

	if config.DatabaseURL == "" {
		err = errors.New("DATABASE_URL is required")
	}
	return
}
