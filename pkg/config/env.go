package config

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv    = "STOREFRONT_APP_ENV"
	EnvPort      = "STOREFRONT_APP_PORT"
	EnvLogLevel  = "STOREFRONT_LOG_LEVEL"
	EnvLogFormat = "STOREFRONT_LOG_FORMAT"

	EnvDBDSN  = "STOREFRONT_DB_DSN"
	EnvDBHost = "STOREFRONT_DB_HOST"
	EnvDBUser = "STOREFRONT_DB_USER"
	EnvDBName = "STOREFRONT_DB_NAME"

	EnvRedisURL  = "STOREFRONT_REDIS_URL"
	EnvJWTSecret = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer = "STOREFRONT_JWT_ISSUER"

	EnvTaxRate               = "STOREFRONT_TAX_RATE"
	EnvFreeShippingThreshold = "STOREFRONT_FREE_SHIPPING_THRESHOLD_CENTS"
	EnvFlatShippingFee       = "STOREFRONT_FLAT_SHIPPING_FEE_CENTS"
	EnvOrderNumberAttempts   = "STOREFRONT_ORDER_NUMBER_ATTEMPTS"
	EnvPendingOrderTTL       = "STOREFRONT_PENDING_ORDER_TTL"

	EnvOutboxSink   = "STOREFRONT_OUTBOX_SINK"
	EnvKafkaBrokers = "STOREFRONT_KAFKA_BROKERS"
	EnvUseSQLite    = "STOREFRONT_USE_SQLITE"
	EnvOTLPEndpoint = "STOREFRONT_OTLP_ENDPOINT"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
