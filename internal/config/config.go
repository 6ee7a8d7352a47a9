package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	LogLevel  string
	LogFormat string

	DBType        string
	DBPath        string
	DBHost        string
	DBPort        string
	DBName        string
	DBUser        string
	DBPassword    string
	DBSSLMode     string
	DBMaxIdleConn int
	DBMaxOpenConn int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ForecastCacheTTL time.Duration
	LockTTL          time.Duration

	MetricsEnabled  bool
	MetricsEndpoint string
	MetricsProtocol string

	AuthRequired      bool
	BootstrapUsername string
	BootstrapPassword string

	SnowflakeNode int64
}

const (
	DBTypeSQLite    = "sqlite"
	DBTypeSQLiteCGO = "sqlite3"
	DBTypePostgres  = "postgres"
	DBTypeMySQL     = "mysql"
)

var (
	ErrUnsupportedDBType = errors.New("unsupported_db_type")
	ErrInvalidTTL        = errors.New("invalid_ttl")
)

// Module provides Config loaded from the environment and stockroom.yml.
var Module = fx.Module("config",
	fx.Provide(Load),
)

// Load reads configuration from .env, STOCKROOM_* environment variables and an
// optional stockroom.yml.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("stockroom")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/stockroom")
	v.AddConfigPath("/etc/stockroom")

	v.SetEnvPrefix("STOCKROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		AppName:     v.GetString("app.name"),
		AppVersion:  v.GetString("app.version"),
		Environment: v.GetString("app.env"),

		LogLevel:  strings.ToLower(strings.TrimSpace(v.GetString("log.level"))),
		LogFormat: strings.ToLower(strings.TrimSpace(v.GetString("log.format"))),

		DBType:        strings.ToLower(strings.TrimSpace(v.GetString("db.type"))),
		DBPath:        strings.TrimSpace(v.GetString("db.path")),
		DBHost:        v.GetString("db.host"),
		DBPort:        v.GetString("db.port"),
		DBName:        v.GetString("db.name"),
		DBUser:        v.GetString("db.user"),
		DBPassword:    v.GetString("db.password"),
		DBSSLMode:     v.GetString("db.sslmode"),
		DBMaxIdleConn: v.GetInt("db.max_idle_conn"),
		DBMaxOpenConn: v.GetInt("db.max_open_conn"),

		RedisAddr:     strings.TrimSpace(v.GetString("redis.addr")),
		RedisPassword: v.GetString("redis.password"),
		RedisDB:       v.GetInt("redis.db"),

		ForecastCacheTTL: v.GetDuration("cache.forecast_ttl"),
		LockTTL:          v.GetDuration("lock.ttl"),

		MetricsEnabled:  v.GetBool("metrics.enabled"),
		MetricsEndpoint: strings.TrimSpace(v.GetString("metrics.endpoint")),
		MetricsProtocol: strings.TrimSpace(v.GetString("metrics.protocol")),

		AuthRequired:      v.GetBool("auth.required"),
		BootstrapUsername: strings.TrimSpace(v.GetString("auth.bootstrap_username")),
		BootstrapPassword: v.GetString("auth.bootstrap_password"),

		SnowflakeNode: v.GetInt64("snowflake.node"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "stockroom")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("db.type", DBTypeSQLite)
	v.SetDefault("db.path", "inventory.db")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.name", "stockroom")
	v.SetDefault("db.user", "stockroom")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_idle_conn", 2)
	v.SetDefault("db.max_open_conn", 1)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.forecast_ttl", 5*time.Minute)
	v.SetDefault("lock.ttl", 30*time.Second)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.protocol", "grpc")
	v.SetDefault("auth.required", false)
	v.SetDefault("snowflake.node", 1)
}

// Validate rejects settings the rest of the application cannot work with.
func (c Config) Validate() error {
	switch c.DBType {
	case DBTypeSQLite, DBTypeSQLiteCGO, DBTypePostgres, DBTypeMySQL:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedDBType, c.DBType)
	}
	if c.ForecastCacheTTL <= 0 {
		return fmt.Errorf("%w: cache.forecast_ttl=%s", ErrInvalidTTL, c.ForecastCacheTTL)
	}
	if c.LockTTL <= 0 {
		return fmt.Errorf("%w: lock.ttl=%s", ErrInvalidTTL, c.LockTTL)
	}
	return nil
}

// IsSQLite reports whether the configured database is a local sqlite file.
func (c Config) IsSQLite() bool {
	return c.DBType == DBTypeSQLite || c.DBType == DBTypeSQLiteCGO
}
