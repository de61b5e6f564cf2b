package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	Store        StoreConfig
	DB           DBConfig
	Redis        RedisConfig
	AMQP         AMQPConfig
	Access       AccessConfig
	Catalog      CatalogConfig
	CORS         CORSConfig
	Cron         CronConfig
	Archive      ArchiveConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Store.validate(); err != nil {
		return nil, err
	}
	if cfg.Store.UsesSQL() {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if cfg.Store.Backend == StoreBackendRedis && cfg.Redis.URL == "" && cfg.Redis.Address == "" {
		return nil, fmt.Errorf("%s is required for the redis store backend", EnvRedisURL)
	}
	if err := cfg.Store.validateFeed(cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.App.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"COMPTOIR_APP_ENV" required:"true"`
	Port         string `envconfig:"COMPTOIR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"COMPTOIR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COMPTOIR_LOG_WARN_STACK" default:"false"`
	Timezone     string `envconfig:"COMPTOIR_TIMEZONE" default:"Africa/Libreville"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Location resolves the business timezone used for calendar-day comparisons.
func (a AppConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(a.Timezone)
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", EnvTimezone, name, err)
	}
	return loc, nil
}

type ServiceConfig struct {
	Kind string `envconfig:"COMPTOIR_SERVICE_KIND" default:"api"`
}

type StoreConfig struct {
	Backend string `envconfig:"COMPTOIR_STORE_BACKEND" default:"sql"`
	Feed    string `envconfig:"COMPTOIR_FEED_DRIVER" default:"local"`
}

// UsesSQL reports whether documents live in the relational database.
func (s StoreConfig) UsesSQL() bool {
	return strings.EqualFold(s.Backend, StoreBackendSQL)
}

func (s StoreConfig) validate() error {
	switch strings.ToLower(s.Backend) {
	case StoreBackendSQL, StoreBackendRedis, StoreBackendMemory:
		return nil
	default:
		return fmt.Errorf("unsupported %s %q", EnvStoreBackend, s.Backend)
	}
}

func (s StoreConfig) validateFeed(cfg Config) error {
	switch strings.ToLower(s.Feed) {
	case FeedDriverLocal:
		return nil
	case FeedDriverRedis:
		if cfg.Redis.URL == "" && cfg.Redis.Address == "" {
			return fmt.Errorf("%s is required for the redis feed", EnvRedisURL)
		}
		return nil
	case FeedDriverAMQP:
		if cfg.AMQP.URL == "" {
			return fmt.Errorf("%s is required for the amqp feed", EnvAMQPURL)
		}
		return nil
	default:
		return fmt.Errorf("unsupported %s %q", EnvFeedDriver, s.Feed)
	}
}

type DBConfig struct {
	DSN    string `envconfig:"COMPTOIR_DB_DSN"`
	Driver string `envconfig:"COMPTOIR_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"COMPTOIR_DB_HOST"`
	LegacyPort     int    `envconfig:"COMPTOIR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"COMPTOIR_DB_USER"`
	LegacyPassword string `envconfig:"COMPTOIR_DB_PASSWORD"`
	LegacyName     string `envconfig:"COMPTOIR_DB_NAME"`
	LegacySSLMode  string `envconfig:"COMPTOIR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"COMPTOIR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COMPTOIR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COMPTOIR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COMPTOIR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"COMPTOIR_REDIS_URL"`
	Address      string        `envconfig:"COMPTOIR_REDIS_ADDR"`
	Password     string        `envconfig:"COMPTOIR_REDIS_PASSWORD"`
	DB           int           `envconfig:"COMPTOIR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COMPTOIR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COMPTOIR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COMPTOIR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COMPTOIR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COMPTOIR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type AMQPConfig struct {
	URL      string `envconfig:"COMPTOIR_AMQP_URL"`
	Exchange string `envconfig:"COMPTOIR_AMQP_EXCHANGE" default:"comptoir.changes"`
}

type AccessConfig struct {
	PatronCode   string `envconfig:"COMPTOIR_ACCESS_PATRON_CODE" default:"123456"`
	Gerante1Code string `envconfig:"COMPTOIR_ACCESS_GERANTE1_CODE" default:"111111"`
	Gerante2Code string `envconfig:"COMPTOIR_ACCESS_GERANTE2_CODE" default:"222222"`
}

// DefaultCodes returns the manager default codes keyed by role id.
func (a AccessConfig) DefaultCodes() map[string]string {
	return map[string]string{
		"patron":   a.PatronCode,
		"gerante1": a.Gerante1Code,
		"gerante2": a.Gerante2Code,
	}
}

type CatalogConfig struct {
	Seed              bool `envconfig:"COMPTOIR_CATALOG_SEED" default:"false"`
	LowStockThreshold int  `envconfig:"COMPTOIR_LOW_STOCK_THRESHOLD" default:"10"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"COMPTOIR_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"COMPTOIR_CRON_INTERVAL" default:"15m"`
	LockTTL  time.Duration `envconfig:"COMPTOIR_CRON_LOCK_TTL" default:"5m"`
}

type ArchiveConfig struct {
	S3Bucket        string `envconfig:"COMPTOIR_ARCHIVE_S3_BUCKET"`
	S3Region        string `envconfig:"COMPTOIR_ARCHIVE_S3_REGION" default:"eu-west-3"`
	S3Prefix        string `envconfig:"COMPTOIR_ARCHIVE_S3_PREFIX" default:"reports/stock"`
	AccessKeyID     string `envconfig:"COMPTOIR_ARCHIVE_AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"COMPTOIR_ARCHIVE_AWS_SECRET_ACCESS_KEY"`
}

// Enabled reports whether report archiving was configured.
func (a ArchiveConfig) Enabled() bool {
	return strings.TrimSpace(a.S3Bucket) != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"COMPTOIR_AUTO_MIGRATE" default:"false"`
	Idempotency bool `envconfig:"COMPTOIR_FEATURE_IDEMPOTENCY" default:"true"`
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"COMPTOIR_EVENTING_IDEMPOTENCY_TTL" default:"24h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
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
