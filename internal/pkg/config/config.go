package config

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageFile   = "file"
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageMongo  = "mongo"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	StaticDir string `env:"STATIC_DIR"`

	Backend BackendConfig
	Storage StorageConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Session SessionConfig
}

type BackendConfig struct {
	// URL is the API base, e.g. http://localhost:8000/api.
	URL string `env:"API_URL, default=http://localhost:8000/api"`
	// Timeout of zero keeps the transport default.
	Timeout time.Duration `env:"API_TIMEOUT, default=0s"`
}

type StorageConfig struct {
	Driver    string `env:"STORAGE_DRIVER,    default=file"`
	Path      string `env:"STORAGE_PATH,      default=.agrocean/session.json"`
	Namespace string `env:"STORAGE_NAMESPACE, default=agrocean"`
	// Secret is a hex encoded 32 byte key. When set the bearer token is
	// sealed before it reaches durable storage.
	Secret string `env:"STORAGE_SECRET"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=agrocean_console"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type SessionConfig struct {
	AlertPollInterval time.Duration `env:"ALERT_POLL_INTERVAL,  default=30s"`
	RefreshWindow     time.Duration `env:"TOKEN_REFRESH_WINDOW, default=5m"`
	ReferenceCacheTTL time.Duration `env:"REFERENCE_CACHE_TTL,  default=5m"`
}

// Load reads an optional .env file and then the environment.
func Load(ctx context.Context) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("config: load .env: %w", err)
		}
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageFile, StorageMemory, StorageRedis, StorageMongo:
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Storage.Namespace == "" {
		return fmt.Errorf("config: STORAGE_NAMESPACE must not be empty")
	}
	if c.Storage.Secret != "" {
		if _, err := c.SealingKey(); err != nil {
			return err
		}
	}
	return nil
}

// SealingKey decodes STORAGE_SECRET. It returns nil when sealing is disabled.
func (c *Config) SealingKey() ([]byte, error) {
	if c.Storage.Secret == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.Storage.Secret)
	if err != nil || len(key) != 32 {
		return nil, fmt.Errorf("config: STORAGE_SECRET must be 64 hex characters")
	}
	return key, nil
}

// IsDevelopment reports whether pretty console logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
