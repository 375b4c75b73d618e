package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	StoreMemory   = "memory"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"

	PaymentSimulated = "simulated"
	PaymentStripe    = "stripe"
	PaymentOmise     = "omise"
)

type App struct {
	// Service
	ServiceName string `envconfig:"SERVICE_NAME" default:"minishop"`
	Env         string `envconfig:"ENV" default:"dev"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	LogFile     string `envconfig:"LOG_FILE"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// Per-IP limit on the unauthenticated identity issuance route. Zero disables it.
	IssueRateRPS   float64 `envconfig:"ISSUE_RATE_RPS" default:"5"`
	IssueRateBurst int     `envconfig:"ISSUE_RATE_BURST" default:"10"`
	// Honour X-Forwarded-For / X-Real-IP. Enable only behind a proxy that sets them.
	TrustProxyHeaders bool `envconfig:"TRUST_PROXY_HEADERS" default:"false"`

	// Identity tokens
	TokenSecret string        `envconfig:"TOKEN_SECRET" required:"true"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	// Store
	StoreDriver   string `envconfig:"STORE_DRIVER" default:"memory"`
	MongoURI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"minishop"`
	PostgresDSN   string `envconfig:"POSTGRES_DSN"`

	// Payment
	PaymentProvider      string  `envconfig:"PAYMENT_PROVIDER" default:"simulated"`
	PaymentCurrency      string  `envconfig:"PAYMENT_CURRENCY" default:"usd"`
	StripeSecretKey      string  `envconfig:"STRIPE_SECRET_KEY"`
	OmisePublicKey       string  `envconfig:"OMISE_PUBLIC_KEY"`
	OmiseSecretKey       string  `envconfig:"OMISE_SECRET_KEY"`
	SimulatedSuccessRate float64 `envconfig:"PAYMENT_SIMULATED_SUCCESS_RATE" default:"0.7"`

	// Events
	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"minishop.events"`

	// Tracing
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

func Load() (App, error) {
	var c App
	if err := envconfig.Process("", &c); err != nil {
		return c, err
	}
	return c, c.Validate()
}

// Validate checks cross-field requirements envconfig cannot express.
func (c App) Validate() error {
	if strings.TrimSpace(c.TokenSecret) == "" {
		return fmt.Errorf("config: TOKEN_SECRET is required")
	}

	switch c.StoreDriver {
	case StoreMemory, StoreMongo:
	case StorePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("config: POSTGRES_DSN is required for store driver %q", c.StoreDriver)
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.PaymentProvider {
	case PaymentSimulated:
	case PaymentStripe:
		if c.StripeSecretKey == "" {
			return fmt.Errorf("config: STRIPE_SECRET_KEY is required for payment provider %q", c.PaymentProvider)
		}
	case PaymentOmise:
		if c.OmisePublicKey == "" || c.OmiseSecretKey == "" {
			return fmt.Errorf("config: OMISE_PUBLIC_KEY and OMISE_SECRET_KEY are required for payment provider %q", c.PaymentProvider)
		}
	default:
		return fmt.Errorf("config: unknown PAYMENT_PROVIDER %q", c.PaymentProvider)
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("config: TOKEN_TTL must be positive")
	}
	return nil
}
