package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hidecraft/storefront-webhooks/internal/types"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment   DeploymentConfig   `validate:"required"`
	Server       ServerConfig       `validate:"required"`
	Logging      LoggingConfig      `validate:"required"`
	Postgres     PostgresConfig     `validate:"required"`
	Shopify      ShopifyConfig      `validate:"required"`
	Payment      PaymentConfig      `validate:"required"`
	Telegram     TelegramConfig     `validate:"required"`
	Notification NotificationConfig `validate:"required"`
	Sentry       SentryConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ShopifyConfig holds the storefront's Shopify connection. WebhookSecret may
// be left empty: order-webhook verification then runs in open mode, which is
// announced loudly at startup.
type ShopifyConfig struct {
	ShopDomain       string `mapstructure:"shop_domain"`
	AdminAPIVersion  string `mapstructure:"admin_api_version"`
	AdminAccessToken string `mapstructure:"admin_access_token"`
	WebhookSecret    string `mapstructure:"webhook_secret"`
}

// PaymentConfig holds the Grow gateway webhook secret. Unlike Shopify, an
// empty secret fails closed: no header ever equals an unset secret.
type PaymentConfig struct {
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type TelegramConfig struct {
	Enabled  bool
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

type NotificationConfig struct {
	Cooldown      time.Duration
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	ThrottleStore bool          `mapstructure:"throttle_store"`
}

type SentryConfig struct {
	Enabled     bool
	DSN         string
	Environment string
	SampleRate  float64 `mapstructure:"sample_rate"`
}

func NewConfig() (*Configuration, error) {
	// Local development keeps secrets in a .env file
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/hidecraft")

	// Set up environment variables support
	v.SetEnvPrefix("HIDECRAFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Notification.Cooldown == 0 {
		config.Notification.Cooldown = 60 * time.Second
	}
	if config.Notification.CacheTTL == 0 {
		config.Notification.CacheTTL = 15 * time.Second
	}
	if config.Shopify.AdminAPIVersion == "" {
		config.Shopify.AdminAPIVersion = "2024-07"
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Shopify:    ShopifyConfig{AdminAPIVersion: "2024-07"},
		Notification: NotificationConfig{
			Cooldown: 60 * time.Second,
			CacheTTL: 15 * time.Second,
		},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
