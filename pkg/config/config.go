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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Presence     PresenceConfig
	Trips        TripsConfig
	FeatureFlags FeatureFlagsConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WAYHAUL_APP_ENV" required:"true"`
	Port         string `envconfig:"WAYHAUL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WAYHAUL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WAYHAUL_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"WAYHAUL_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"WAYHAUL_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"WAYHAUL_DB_DSN"`
	Driver string `envconfig:"WAYHAUL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WAYHAUL_DB_HOST"`
	LegacyPort     int    `envconfig:"WAYHAUL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WAYHAUL_DB_USER"`
	LegacyPassword string `envconfig:"WAYHAUL_DB_PASSWORD"`
	LegacyName     string `envconfig:"WAYHAUL_DB_NAME"`
	LegacySSLMode  string `envconfig:"WAYHAUL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WAYHAUL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WAYHAUL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WAYHAUL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WAYHAUL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WAYHAUL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WAYHAUL_REDIS_ADDR"`
	Password     string        `envconfig:"WAYHAUL_REDIS_PASSWORD"`
	DB           int           `envconfig:"WAYHAUL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WAYHAUL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WAYHAUL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WAYHAUL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WAYHAUL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WAYHAUL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// PresenceConfig tunes the location check-in geofence.
type PresenceConfig struct {
	GeofenceToleranceKm float64 `envconfig:"WAYHAUL_PRESENCE_GEOFENCE_TOLERANCE_KM" default:"0.5"`
}

// TripsConfig tunes trip lifecycle housekeeping.
type TripsConfig struct {
	DepartureGrace time.Duration `envconfig:"WAYHAUL_TRIPS_DEPARTURE_GRACE" default:"24h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"WAYHAUL_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"WAYHAUL_AUTO_MIGRATE" default:"false"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"WAYHAUL_CRON_INTERVAL" default:"1h"`
}

func (db *DBConfig) ensureDSN() error {
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
