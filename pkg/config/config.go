package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Catalog      CatalogConfig
	Orders       OrdersConfig
	Cart         CartConfig
	Checkout     CheckoutConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Cart.Backend == CartBackendDB || cfg.FeatureFlags.AutoMigrate {
		if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GRENGCRY_APP_ENV" required:"true"`
	Port         string `envconfig:"GRENGCRY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GRENGCRY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GRENGCRY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GRENGCRY_DB_DSN"`
	Driver string `envconfig:"GRENGCRY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GRENGCRY_DB_HOST"`
	LegacyPort     int    `envconfig:"GRENGCRY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GRENGCRY_DB_USER"`
	LegacyPassword string `envconfig:"GRENGCRY_DB_PASSWORD"`
	LegacyName     string `envconfig:"GRENGCRY_DB_NAME"`
	LegacySSLMode  string `envconfig:"GRENGCRY_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"GRENGCRY_DB_SQLITE_PATH" default:"grengcry.db"`

	MaxOpenConns    int           `envconfig:"GRENGCRY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GRENGCRY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GRENGCRY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GRENGCRY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GRENGCRY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GRENGCRY_REDIS_ADDR"`
	Password     string        `envconfig:"GRENGCRY_REDIS_PASSWORD"`
	DB           int           `envconfig:"GRENGCRY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GRENGCRY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GRENGCRY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GRENGCRY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GRENGCRY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GRENGCRY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CatalogConfig points at the product catalog API the storefront reads from.
type CatalogConfig struct {
	BaseURL string        `envconfig:"GRENGCRY_CATALOG_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"GRENGCRY_CATALOG_TIMEOUT" default:"5s"`
}

// OrdersConfig points at the order API checkout submits to.
type OrdersConfig struct {
	BaseURL string        `envconfig:"GRENGCRY_ORDERS_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"GRENGCRY_ORDERS_TIMEOUT" default:"10s"`
}

const (
	CartBackendRedis = "redis"
	CartBackendDB    = "db"
)

type CartConfig struct {
	Backend     string        `envconfig:"GRENGCRY_CART_BACKEND" default:"redis"`
	SnapshotTTL time.Duration `envconfig:"GRENGCRY_CART_SNAPSHOT_TTL" default:"720h"`
}

type CheckoutConfig struct {
	RateLimitWindow time.Duration `envconfig:"GRENGCRY_CHECKOUT_RATE_LIMIT_WINDOW" default:"1m"`
	RateLimitMax    int64         `envconfig:"GRENGCRY_CHECKOUT_RATE_LIMIT_MAX" default:"10"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GRENGCRY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GRENGCRY_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite || strings.EqualFold(db.Driver, "sqlite") {
		db.Driver = "sqlite"
		if db.DSN == "" {
			db.DSN = db.SQLitePath
		}
		return nil
	}

	if db.DSN != "" {
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
