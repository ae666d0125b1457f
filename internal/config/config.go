// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	CatalogMySQL = "mysql"
	CatalogHTTP  = "http"

	StockRedis = "redis"
	StockMySQL = "mysql"
	StockHTTP  = "http"

	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

type Config struct {
	HTTPAddr string
	GRPCAddr string

	MySQLDSN   string
	RedisAddr  string
	SQLitePath string
	APIBaseURL string
	APITimeout time.Duration

	CatalogBackend string
	StockBackend   string
	StorageBackend string

	// Session names the cart snapshot key.
	Session string

	LogLevel         string
	LogDevelopment   bool
	OTLPEndpoint     string
	TraceStdout      bool
	TraceProbability float64
	NotificationCap  int
}

// Load reads the environment, falling back to local development defaults.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		GRPCAddr:       getenv("GRPC_ADDR", ":50051"),
		MySQLDSN:       getenv("MYSQL_DSN", "root:root@tcp(localhost:3306)/shopcart?parseTime=true"),
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		SQLitePath:     getenv("SQLITE_PATH", "shopcart.db"),
		APIBaseURL:     getenv("API_BASE_URL", "http://localhost:3333"),
		CatalogBackend: getenv("CATALOG_BACKEND", CatalogMySQL),
		StockBackend:   getenv("STOCK_BACKEND", StockRedis),
		StorageBackend: getenv("STORAGE_BACKEND", StorageSQLite),
		Session:        getenv("CART_SESSION", "default"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	var err error
	if cfg.APITimeout, err = durationEnv("API_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.LogDevelopment, err = boolEnv("LOG_DEVELOPMENT", false); err != nil {
		return Config{}, err
	}
	if cfg.TraceStdout, err = boolEnv("TRACE_STDOUT", false); err != nil {
		return Config{}, err
	}
	if cfg.TraceProbability, err = floatEnv("TRACE_PROBABILITY", 1.0); err != nil {
		return Config{}, err
	}
	if cfg.NotificationCap, err = intEnv("NOTIFICATION_CAP", 50); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if err := oneOf("CATALOG_BACKEND", c.CatalogBackend, CatalogMySQL, CatalogHTTP); err != nil {
		return err
	}
	if err := oneOf("STOCK_BACKEND", c.StockBackend, StockRedis, StockMySQL, StockHTTP); err != nil {
		return err
	}
	if err := oneOf("STORAGE_BACKEND", c.StorageBackend, StorageSQLite, StorageRedis); err != nil {
		return err
	}
	if c.Session == "" {
		return fmt.Errorf("CART_SESSION must not be empty")
	}
	if c.TraceProbability < 0 || c.TraceProbability > 1 {
		return fmt.Errorf("TRACE_PROBABILITY must be within [0, 1], got %v", c.TraceProbability)
	}
	return nil
}

// UsesMySQL reports whether any backend needs the MySQL connection.
func (c Config) UsesMySQL() bool {
	return c.CatalogBackend == CatalogMySQL || c.StockBackend == StockMySQL
}

// UsesRedis reports whether any backend needs the Redis connection.
func (c Config) UsesRedis() bool {
	return c.StockBackend == StockRedis || c.StorageBackend == StorageRedis
}

func oneOf(name, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s: unsupported value %q (want one of %v)", name, value, allowed)
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
