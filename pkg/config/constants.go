package config

const (
	// EnvPrefix namespaces every environment variable consumed by the service.
	EnvPrefix = "WAYHAUL"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "WAYHAUL_APP_ENV"
	EnvPort     = "WAYHAUL_APP_PORT"
	EnvRedisURL = "WAYHAUL_REDIS_URL"

	EnvDBDSN  = "WAYHAUL_DB_DSN"
	EnvDBHost = "WAYHAUL_DB_HOST"
	EnvDBUser = "WAYHAUL_DB_USER"
	EnvDBName = "WAYHAUL_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
