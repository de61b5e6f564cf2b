package config

// EnvPrefix is handed to envconfig; every field carries its full variable name.
const EnvPrefix = "COMPTOIR"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StoreBackendSQL    = "sql"
	StoreBackendRedis  = "redis"
	StoreBackendMemory = "memory"

	FeedDriverLocal = "local"
	FeedDriverRedis = "redis"
	FeedDriverAMQP  = "amqp"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv       = "COMPTOIR_APP_ENV"
	EnvPort         = "COMPTOIR_APP_PORT"
	EnvTimezone     = "COMPTOIR_TIMEZONE"
	EnvStoreBackend = "COMPTOIR_STORE_BACKEND"
	EnvFeedDriver   = "COMPTOIR_FEED_DRIVER"
	EnvDBDSN        = "COMPTOIR_DB_DSN"
	EnvDBDriver     = "COMPTOIR_DB_DRIVER"
	EnvDBHost       = "COMPTOIR_DB_HOST"
	EnvDBUser       = "COMPTOIR_DB_USER"
	EnvDBName       = "COMPTOIR_DB_NAME"
	EnvRedisURL     = "COMPTOIR_REDIS_URL"
	EnvAMQPURL      = "COMPTOIR_AMQP_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
