package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Pricing      PricingConfig
	Checkout     CheckoutConfig
	FeatureFlags FeatureFlagsConfig
	Outbox       OutboxConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Kafka        KafkaConfig
	Telemetry    TelemetryConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	if _, err := c.Pricing.TaxRateDecimal(); err != nil {
		return err
	}
	if c.Pricing.FreeShippingThresholdCents < 0 || c.Pricing.FlatShippingFeeCents < 0 {
		return fmt.Errorf("%s and %s must not be negative", EnvFreeShippingThreshold, EnvFlatShippingFee)
	}
	if c.Checkout.OrderNumberAttempts <= 0 {
		return fmt.Errorf("%s must be positive", EnvOrderNumberAttempts)
	}
	switch c.App.LogFormat {
	case "", "json", "console":
	default:
		return fmt.Errorf("%s must be json or console", EnvLogFormat)
	}
	switch c.Outbox.Sink {
	case OutboxSinkPubSub, OutboxSinkKafka:
	default:
		return fmt.Errorf("%s must be one of %q or %q", EnvOutboxSink, OutboxSinkPubSub, OutboxSinkKafka)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
	// LogFormat is "json" or "console".
	LogFormat string `envconfig:"STOREFRONT_LOG_FORMAT" default:"json"`
	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string `envconfig:"STOREFRONT_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"STOREFRONT_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"STOREFRONT_DB_DSN"`
	Driver string `envconfig:"STOREFRONT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOREFRONT_DB_HOST"`
	LegacyPort     int    `envconfig:"STOREFRONT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOREFRONT_DB_USER"`
	LegacyPassword string `envconfig:"STOREFRONT_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOREFRONT_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOREFRONT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	// SlowQuery logs statements slower than this at warn level. Zero disables it.
	SlowQuery time.Duration `envconfig:"STOREFRONT_DB_SLOW_QUERY" default:"200ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL" required:"true"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig verifies access tokens minted by the identity service.
type JWTConfig struct {
	Secret string `envconfig:"STOREFRONT_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"STOREFRONT_JWT_ISSUER" required:"true"`
	// ExpirationMinutes is only used when this service mints tokens (seed and tests).
	ExpirationMinutes int `envconfig:"STOREFRONT_JWT_EXPIRATION_MINUTES" default:"60"`
}

// PricingConfig amounts are in cents; the tax rate is a decimal fraction ("0.20").
type PricingConfig struct {
	TaxRate                    string `envconfig:"STOREFRONT_TAX_RATE" default:"0.20"`
	FreeShippingThresholdCents int64  `envconfig:"STOREFRONT_FREE_SHIPPING_THRESHOLD_CENTS" default:"10000"`
	FlatShippingFeeCents       int64  `envconfig:"STOREFRONT_FLAT_SHIPPING_FEE_CENTS" default:"1000"`
}

// TaxRateDecimal parses TaxRate and rejects values outside [0, 1].
func (p PricingConfig) TaxRateDecimal() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(p.TaxRate))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", EnvTaxRate, err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("%s must be between 0 and 1, got %s", EnvTaxRate, rate)
	}
	return rate, nil
}

type CheckoutConfig struct {
	OrderNumberAttempts int           `envconfig:"STOREFRONT_ORDER_NUMBER_ATTEMPTS" default:"5"`
	RateLimitWindow     time.Duration `envconfig:"STOREFRONT_CHECKOUT_RATE_LIMIT_WINDOW" default:"1m"`
	RateLimitPerUser    int           `envconfig:"STOREFRONT_CHECKOUT_RATE_LIMIT_PER_USER" default:"10"`
	IdempotencyTTL      time.Duration `envconfig:"STOREFRONT_CHECKOUT_IDEMPOTENCY_TTL" default:"24h"`
	// PendingOrderTTL cancels unpaid pending orders older than this; zero disables expiry.
	PendingOrderTTL time.Duration `envconfig:"STOREFRONT_PENDING_ORDER_TTL" default:"0"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STOREFRONT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
}

const (
	OutboxSinkPubSub = "pubsub"
	OutboxSinkKafka  = "kafka"
)

type OutboxConfig struct {
	Sink           string        `envconfig:"STOREFRONT_OUTBOX_SINK" default:"pubsub"`
	BatchSize      int           `envconfig:"STOREFRONT_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"STOREFRONT_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"STOREFRONT_OUTBOX_MAX_ATTEMPTS" default:"10"`
	Retention      time.Duration `envconfig:"STOREFRONT_OUTBOX_RETENTION" default:"720h"`
	RetentionBatch int           `envconfig:"STOREFRONT_OUTBOX_RETENTION_BATCH" default:"500"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"STOREFRONT_GCP_PROJECT_ID"`
	// PubSubEndpoint points the client at an emulator when set.
	PubSubEndpoint string `envconfig:"STOREFRONT_PUBSUB_ENDPOINT"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"STOREFRONT_PUBSUB_ORDERS_TOPIC" default:"storefront-order-events"`
	OrdersSubscription string `envconfig:"STOREFRONT_PUBSUB_ORDERS_SUBSCRIPTION"`
}

type KafkaConfig struct {
	Brokers     []string `envconfig:"STOREFRONT_KAFKA_BROKERS"`
	OrdersTopic string   `envconfig:"STOREFRONT_KAFKA_ORDERS_TOPIC" default:"storefront.order-events"`
}

type TelemetryConfig struct {
	// OTLPEndpoint enables OpenTelemetry tracing when set (host:port of an OTLP gRPC collector).
	OTLPEndpoint string  `envconfig:"STOREFRONT_OTLP_ENDPOINT"`
	SampleRatio  float64 `envconfig:"STOREFRONT_TRACE_SAMPLE_RATIO" default:"1"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"STOREFRONT_CRON_INTERVAL" default:"1m"`
	LockTTL  time.Duration `envconfig:"STOREFRONT_CRON_LOCK_TTL" default:"5m"`
}

func (db *DBConfig) ensureDSN(sqliteAllowed bool) error {
	if db.DSN != "" {
		return nil
	}
	if sqliteAllowed {
		db.Driver = "sqlite"
		db.DSN = "file:storefront.db?_busy_timeout=5000&_txlock=immediate"
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}
	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
