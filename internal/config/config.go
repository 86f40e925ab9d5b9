package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string

	CatalogSource         string // static, http or sqlite
	CatalogURL            string
	CatalogDBPath         string
	CatalogMigrationsPath string

	OrderEndpoint string
	SubmitTimeout time.Duration

	StorageBackend string // memory, redis, mongo or postgres
	CartKey        string
	OrdersKey      string

	RedisAddr     string
	RedisPassword string
	RedisPrefix   string

	MongoURI    string
	MongoDBName string

	Postgres PostgresConfig

	KafkaBrokers []string
	KafkaTopic   string
}

type PostgresConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	DBName         string
	MigrationsPath string
}

func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CatalogSource:   getEnv("CATALOG_SOURCE", "static"),
		CatalogURL:      getEnv("CATALOG_URL", "https://supersimplebackend.dev/products"),
		CatalogDBPath:   getEnv("CATALOG_DB_PATH", "./catalog.db"),
		OrderEndpoint:   getEnv("ORDER_ENDPOINT", "https://supersimplebackend.dev/orders"),
		StorageBackend:  getEnv("STORAGE_BACKEND", "memory"),
		CartKey:         getEnv("CART_KEY", "cart"),
		OrdersKey:       getEnv("ORDERS_KEY", "orders"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisPrefix:     getEnv("REDIS_PREFIX", "storefront"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "storefront"),
		KafkaBrokers:    splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "orders-placed"),
		ShutdownTimeout: 10 * time.Second,

		CatalogMigrationsPath: getEnv("CATALOG_MIGRATIONS_PATH", "./internal/catalog/migrations"),
	}

	var err error
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.SubmitTimeout, err = getDuration("SUBMIT_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	pgPort, err := getInt("POSTGRES_PORT", 5432)
	if err != nil {
		return nil, err
	}
	cfg.Postgres = PostgresConfig{
		Host:           getEnv("POSTGRES_HOST", "localhost"),
		Port:           pgPort,
		User:           getEnv("POSTGRES_USER", "postgres"),
		Password:       getEnv("POSTGRES_PASSWORD", "postgres"),
		DBName:         getEnv("POSTGRES_DB", "storefront"),
		MigrationsPath: getEnv("POSTGRES_MIGRATIONS_PATH", "./internal/storage/migrations"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.CatalogSource {
	case "static", "http", "sqlite":
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.CatalogSource)
	}
	switch c.StorageBackend {
	case "memory", "redis", "mongo", "postgres":
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.CartKey == c.OrdersKey {
		return fmt.Errorf("CART_KEY and ORDERS_KEY must differ, both are %q", c.CartKey)
	}
	if c.SubmitTimeout <= 0 {
		return fmt.Errorf("SUBMIT_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
