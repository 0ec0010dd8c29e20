package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v6"
)

type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	Production  Environment = "production"
)

type StoreBackend string

const (
	FileStore     StoreBackend = "file"
	PostgresStore StoreBackend = "postgres"
	RedisStore    StoreBackend = "redis"
)

type DeliveryBackend string

const (
	LogDelivery      DeliveryBackend = "log"
	SESDelivery      DeliveryBackend = "ses"
	RabbitMQDelivery DeliveryBackend = "rabbitmq"
)

// DevelopmentSecret signs tokens when SECRET is not set in development.
const DevelopmentSecret = "resetkit-development-secret"

type Config struct {
	Environment Environment `env:"ENVIRONMENT" envDefault:"production"`
	Port        int         `env:"PORT" envDefault:"8888"`
	Secret      string      `env:"SECRET"`
	LogLevel    string      `env:"LOG_LEVEL" envDefault:"info"`

	StoreBackend   StoreBackend `env:"STORE_BACKEND" envDefault:"file"`
	UsersFile      string       `env:"USERS_FILE" envDefault:"data/users.json"`
	PostgresqlURL  string       `env:"POSTGRESQL_URL"`
	MigrationsPath string       `env:"MIGRATIONS_PATH"`
	RedisURL       string       `env:"REDIS_URL"`

	StoreRetryCount     uint64        `env:"STORE_RETRY_COUNT" envDefault:"3"`
	StoreRetryBaseDelay time.Duration `env:"STORE_RETRY_BASE_DELAY" envDefault:"50ms"`

	BcryptHasherCost           int           `env:"BCRYPT_HASHER_COST" envDefault:"10"`
	PasswordResetValidDuration time.Duration `env:"PASSWORD_RESET_VALID_DURATION" envDefault:"1h"`
	PasswordResetBaseURL       url.URL       `env:"PASSWORD_RESET_BASE_URL" envDefault:"http://localhost:8888/reset-password.html"`

	DeliveryBackend            DeliveryBackend `env:"DELIVERY_BACKEND" envDefault:"log"`
	AwsRegion                  string          `env:"AWS_REGION"`
	AwsAccessKey               string          `env:"AWS_ACCESS_KEY"`
	AwsSecretKey               string          `env:"AWS_SECRET_KEY"`
	EmailSender                string          `env:"EMAIL_SENDER" envDefault:"no-reply@resetkit.dev"`
	PasswordResetEmailTemplate string          `env:"PASSWORD_RESET_EMAIL_TEMPLATE" envDefault:"password-reset"`
	RabbitmqURL                string          `env:"RABBITMQ_URL"`
	RabbitmqExchange           string          `env:"RABBITMQ_EXCHANGE" envDefault:"password-reset"`
	RabbitmqQueue              string          `env:"RABBITMQ_QUEUE" envDefault:"password-reset-tokens"`
	RabbitmqRoutingKey         string          `env:"RABBITMQ_ROUTING_KEY" envDefault:"token"`

	// DemoAccounts live outside the store, in "email:username,..." form.
	DemoAccounts   string   `env:"DEMO_ACCOUNTS"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// UsesDevelopmentSecret is true when tokens are signed with DevelopmentSecret.
func (c *Config) UsesDevelopmentSecret() bool {
	return c.Secret == DevelopmentSecret
}

func Load() (*Config, error) {
	return load(env.Options{})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg, opts); err != nil {
		return nil, fmt.Errorf("could not parse config: %w", err)
	}
	if cfg.Secret == "" && cfg.IsDevelopment() {
		cfg.Secret = DevelopmentSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Environment {
	case Development, Test, Production:
	default:
		return fmt.Errorf("invalid ENVIRONMENT value: %q", c.Environment)
	}

	if c.Secret == "" {
		return errors.New("SECRET must be set")
	}
	if c.Environment == Production && c.UsesDevelopmentSecret() {
		return errors.New("SECRET must not be the development secret in production")
	}

	switch c.StoreBackend {
	case FileStore:
		if c.UsersFile == "" {
			return errors.New("USERS_FILE must be set")
		}
	case PostgresStore:
		if c.PostgresqlURL == "" {
			return errors.New("POSTGRESQL_URL must be set")
		}
	case RedisStore:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL must be set")
		}
	default:
		return fmt.Errorf("invalid STORE_BACKEND value: %q", c.StoreBackend)
	}

	switch c.DeliveryBackend {
	case LogDelivery:
	case SESDelivery:
		if c.AwsRegion == "" || c.AwsAccessKey == "" || c.AwsSecretKey == "" {
			return errors.New("AWS_REGION, AWS_ACCESS_KEY and AWS_SECRET_KEY must be set")
		}
	case RabbitMQDelivery:
		if c.RabbitmqURL == "" {
			return errors.New("RABBITMQ_URL must be set")
		}
	default:
		return fmt.Errorf("invalid DELIVERY_BACKEND value: %q", c.DeliveryBackend)
	}

	if c.BcryptHasherCost < 4 || c.BcryptHasherCost > 31 {
		return fmt.Errorf("invalid BCRYPT_HASHER_COST value: %d", c.BcryptHasherCost)
	}
	if c.PasswordResetValidDuration <= 0 {
		return errors.New("PASSWORD_RESET_VALID_DURATION must be positive")
	}
	if c.StoreRetryBaseDelay <= 0 {
		return errors.New("STORE_RETRY_BASE_DELAY must be positive")
	}
	if c.PasswordResetBaseURL.Scheme == "" || c.PasswordResetBaseURL.Host == "" {
		return errors.New("PASSWORD_RESET_BASE_URL must be an absolute URL")
	}
	return nil
}
