// Package config loads the service configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all tunables of the service. Invalid values fall back to the
// defaults below rather than aborting startup.
type Config struct {
	Port           int
	MaxUploadBytes int64
	RequestTimeout time.Duration
	BatchCap       int
	PageSizeDef    int
	PageSizeMax    int

	DBUser string
	DBPwd  string
	DBHost string
	DBName string
}

const (
	defaultPort           = 8080
	defaultMaxUploadBytes = 10 << 20 // 10 MiB
	defaultRequestTimeout = 30 * time.Second
	defaultBatchCap       = 1000
	defaultPageSize       = 25
	defaultPageSizeMax    = 200
)

// Load reads the configuration from the environment. It never fails: values
// that do not parse, or that are out of range, are replaced by their default.
func Load() Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", defaultPort)
	v.SetDefault("MAX_UPLOAD_BYTES", int64(defaultMaxUploadBytes))
	v.SetDefault("REQUEST_TIMEOUT", defaultRequestTimeout)
	v.SetDefault("IMPORT_BATCH_CAP", defaultBatchCap)
	v.SetDefault("PAGE_SIZE_DEFAULT", defaultPageSize)
	v.SetDefault("PAGE_SIZE_MAX", defaultPageSizeMax)
	v.SetDefault("DBNAME", "test")

	cfg := Config{
		Port:           v.GetInt("PORT"),
		MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),
		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
		BatchCap:       v.GetInt("IMPORT_BATCH_CAP"),
		PageSizeDef:    v.GetInt("PAGE_SIZE_DEFAULT"),
		PageSizeMax:    v.GetInt("PAGE_SIZE_MAX"),
		DBUser:         v.GetString("DBUSER"),
		DBPwd:          v.GetString("DBPWD"),
		DBHost:         v.GetString("DBHOST"),
		DBName:         v.GetString("DBNAME"),
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		cfg.Port = defaultPort
	}
	if cfg.MaxUploadBytes < 1 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.BatchCap < 1 {
		cfg.BatchCap = defaultBatchCap
	}
	if cfg.PageSizeDef < 1 {
		cfg.PageSizeDef = defaultPageSize
	}
	if cfg.PageSizeMax < cfg.PageSizeDef {
		cfg.PageSizeMax = defaultPageSizeMax
	}
	return cfg
}

// DSN builds the MySQL data source name from the database settings.
func (c Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true", c.DBUser, c.DBPwd, c.DBHost, c.DBName)
}
