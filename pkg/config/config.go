package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StorePostgres = "postgres"
	StoreDynamoDB = "dynamodb"
	StoreMemory   = "memory"
)

var Empty = new(Config)

type Config struct {
	AppEnv       string `envconfig:"APP_ENV"`
	Port         int    `envconfig:"PORT" default:"8080"`
	SentryDSN    string `envconfig:"SENTRY_DSN"`
	AllowOrigins string `envconfig:"ALLOW_ORIGINS"`
	StoreDriver  string `envconfig:"STORE_DRIVER" default:"postgres"`

	DB struct {
		Name      string `envconfig:"DB_NAME"`
		Host      string `envconfig:"DB_HOST"`
		Port      int    `envconfig:"DB_PORT" default:"5432"`
		User      string `envconfig:"DB_USER"`
		Pass      string `envconfig:"DB_PASS"`
		EnableSSL bool   `envconfig:"ENABLE_SSL"`
	}
	DynamoDB struct {
		Region       string `envconfig:"DDB_REGION"`
		Endpoint     string `envconfig:"DDB_ENDPOINT"`
		AccessKey    string `envconfig:"DDB_ACCESS_KEY"`
		SecretKey    string `envconfig:"DDB_SECRET_KEY"`
		SessionToken string `envconfig:"DDB_SESSION_TOKEN"`
		MoviesTable  string `envconfig:"DDB_MOVIES_TABLE" default:"movies"`
	}
	Auth struct {
		JWTSecret string `envconfig:"AUTH_JWT_SECRET"`
	}
	OMDb struct {
		APIKey     string        `envconfig:"OMDB_API_KEY"`
		BaseURL    string        `envconfig:"OMDB_BASE_URL" default:"https://www.omdbapi.com/"`
		Timeout    time.Duration `envconfig:"OMDB_TIMEOUT" default:"10s"`
		RatePerSec float64       `envconfig:"OMDB_RATE_PER_SEC" default:"5"`
	}
	Cache struct {
		LRUSize   int           `envconfig:"CACHE_LRU_SIZE" default:"1024"`
		// SearchTTL of zero or less turns the search cache off.
		SearchTTL time.Duration `envconfig:"SEARCH_CACHE_TTL" default:"5m"`
	}
}

func LoadConfig() (*Config, error) {
	// load default .env file, ignore the error
	_ = godotenv.Load()

	cfg := new(Config)
	err := envconfig.Process("", cfg)
	if err != nil {
		return nil, fmt.Errorf("load config error: %v", err)
	}

	switch cfg.StoreDriver {
	case StorePostgres, StoreDynamoDB, StoreMemory:
	default:
		return nil, fmt.Errorf("load config error: unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	// Tokens signed with an empty HMAC key can be forged by anyone.
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, fmt.Errorf("load config error: AUTH_JWT_SECRET is required")
	}

	return cfg, nil
}
