package config

const (
	EnvPrefix = "grengcry"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv     = "GRENGCRY_APP_ENV"
	EnvPort       = "GRENGCRY_APP_PORT"
	EnvDBDSN      = "GRENGCRY_DB_DSN"
	EnvDBDriver   = "GRENGCRY_DB_DRIVER"
	EnvDBHost     = "GRENGCRY_DB_HOST"
	EnvDBUser     = "GRENGCRY_DB_USER"
	EnvDBName     = "GRENGCRY_DB_NAME"
	EnvRedisURL   = "GRENGCRY_REDIS_URL"
	EnvCatalogURL = "GRENGCRY_CATALOG_BASE_URL"
	EnvOrdersURL  = "GRENGCRY_ORDERS_BASE_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
