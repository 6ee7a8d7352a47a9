package db

import (
	"time"

	"github.com/smallbiznis/stockroom/internal/config"
)

type Config struct {
	Type            string
	Path            string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxIdleConn     int
	MaxOpenConn     int
	ConnMaxLifetime time.Duration
}

// FromAppConfig narrows the application config to the database settings.
func FromAppConfig(cfg config.Config) Config {
	return Config{
		Type:        cfg.DBType,
		Path:        cfg.DBPath,
		Host:        cfg.DBHost,
		Port:        cfg.DBPort,
		Name:        cfg.DBName,
		User:        cfg.DBUser,
		Password:    cfg.DBPassword,
		SSLMode:     cfg.DBSSLMode,
		MaxIdleConn: cfg.DBMaxIdleConn,
		MaxOpenConn: cfg.DBMaxOpenConn,
	}
}

func (c Config) isSQLite() bool {
	return c.Type == config.DBTypeSQLite || c.Type == config.DBTypeSQLiteCGO
}
