package config

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/comanda/comanda/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/cockroachdb/errors"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig
	Postgres   PostgresConfig `validate:"required"`
	Secrets    SecretsConfig  `validate:"required"`
	Gateway    GatewayConfig  `validate:"required"`
	Webhook    WebhookConfig
	Email      EmailConfig
	Sentry     SentryConfig
}

type DeploymentConfig struct {
	Mode string `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
	// PublicURL is the externally reachable base URL, used for gateway
	// notification and redirect URLs
	PublicURL string
}

type LoggingConfig struct {
	Level string
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN builds the postgres connection string
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// SecretsConfig carries the process-wide secret material. EncryptionKey is
// the credential vault master key: a 32-byte secret encoded as 64 hex chars
// or standard base64. WebhookSecret signs inbound processor notifications;
// when empty, signature verification is bypassed (non-production only).
// FallbackAccessToken is the platform-wide gateway credential tried when no
// tenant credential matches.
type SecretsConfig struct {
	EncryptionKey       string `validate:"required"`
	WebhookSecret       string
	FallbackAccessToken string
}

type GatewayConfig struct {
	BaseURL string `validate:"required"`
	// Timeout bounds a single payment-detail lookup so one unresponsive
	// credential cannot stall reconciliation of unrelated notifications
	Timeout time.Duration
}

type WebhookConfig struct {
	Topic  string
	PubSub types.PubSubType
	// PendingWindow bounds the credential resolver's scan over recent
	// pending checkout sessions
	PendingWindow time.Duration
}

type EmailConfig struct {
	Enabled     bool
	APIKey      string
	FromAddress string
	ReplyTo     string
}

type SentryConfig struct {
	Enabled     bool
	DSN         string
	Environment string
	SampleRate  float64
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/comanda")

	v.SetEnvPrefix("COMANDA")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", "local")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", "info")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("gateway.baseurl", "https://api.mercadopago.com")
	v.SetDefault("gateway.timeout", 10*time.Second)
	v.SetDefault("webhook.topic", "events")
	v.SetDefault("webhook.pubsub", string(types.MemoryPubSub))
	v.SetDefault("webhook.pendingwindow", 24*time.Hour)
	v.SetDefault("sentry.samplerate", 1.0)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	// Fail fast on unusable key material rather than at first encrypt call
	if _, err := c.Secrets.DecodeEncryptionKey(); err != nil {
		return err
	}
	return nil
}

// DecodeEncryptionKey decodes the configured master key and enforces the
// 32-byte length required for AES-256. Accepts 64 hex chars or base64.
func (s SecretsConfig) DecodeEncryptionKey() ([]byte, error) {
	if s.EncryptionKey == "" {
		return nil, errors.New("credential vault encryption key not configured")
	}

	if key, err := hex.DecodeString(s.EncryptionKey); err == nil {
		if len(key) != 32 {
			return nil, errors.Newf("credential vault encryption key must be 32 bytes, got %d", len(key))
		}
		return key, nil
	}

	key, err := base64.StdEncoding.DecodeString(s.EncryptionKey)
	if err != nil {
		return nil, errors.New("credential vault encryption key must be hex or base64 encoded")
	}
	if len(key) != 32 {
		return nil, errors.Newf("credential vault encryption key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// GetDefaultConfig returns a default configuration for tests and scripts
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: "local"},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: "debug"},
		Secrets: SecretsConfig{
			// 32 zero bytes, hex encoded; never use outside tests
			EncryptionKey: strings.Repeat("00", 32),
		},
		Gateway: GatewayConfig{
			BaseURL: "https://api.mercadopago.com",
			Timeout: 10 * time.Second,
		},
		Webhook: WebhookConfig{
			Topic:         "events",
			PubSub:        types.MemoryPubSub,
			PendingWindow: 24 * time.Hour,
		},
	}
}
