package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

var (
	ErrMissingSecret  = errors.New("JWT_SECRET must be set")
	ErrMissingExpiry  = errors.New("JWT_EXPIRY must be set")
	ErrInvalidExpiry  = errors.New("JWT_EXPIRY must be a positive duration such as 2h")
	ErrInvalidStorage = errors.New("STORAGE must be mysql or memory")
)

const (
	StorageMySQL  = "mysql"
	StorageMemory = "memory"
)

type Config struct {
	Port        string
	Env         string
	Storage     string
	DatabaseDSN string
	JWTSecret   string
	JWTExpiry   time.Duration
	CatalogURL  string
	CatalogRPS  float64
}

// Load reads configuration from the environment. The signing secret and the
// token validity have no defaults; the server must not start without them.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		Storage:     getEnv("STORAGE", StorageMySQL),
		DatabaseDSN: getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/bookshelf?parseTime=true"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		CatalogURL:  getEnv("CATALOG_URL", "https://www.googleapis.com/books/v1"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, ErrMissingSecret
	}

	expiry := os.Getenv("JWT_EXPIRY")
	if expiry == "" {
		return Config{}, ErrMissingExpiry
	}
	d, err := time.ParseDuration(expiry)
	if err != nil || d <= 0 {
		return Config{}, ErrInvalidExpiry
	}
	cfg.JWTExpiry = d

	if cfg.Storage != StorageMySQL && cfg.Storage != StorageMemory {
		return Config{}, ErrInvalidStorage
	}

	rps, err := strconv.ParseFloat(getEnv("CATALOG_RPS", "5"), 64)
	if err != nil || rps <= 0 {
		return Config{}, fmt.Errorf("CATALOG_RPS must be a positive number: %q", os.Getenv("CATALOG_RPS"))
	}
	cfg.CatalogRPS = rps

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
