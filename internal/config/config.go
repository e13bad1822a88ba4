package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"qrmenu/internal/repository"
)

type Config struct {
	Port           string
	GinMode        string
	DBDriver       string
	DBSource       string
	DBLogSQL       bool
	DeletePolicy   repository.DeletePolicy
	PublicOrigin   string
	UploadDir      string
	UploadMaxBytes int64
	SweepCron      string
	CORSOrigins    []string
	SlowRequest    time.Duration
	SeedDemo       bool
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "9091"),
		GinMode:      getEnv("GIN_MODE", "debug"),
		DBDriver:     getEnv("DB_DRIVER", "sqlite"),
		DBSource:     getEnv("DB_SOURCE", "qrmenu.db"),
		PublicOrigin: getEnv("PUBLIC_ORIGIN", "http://localhost:9091"),
		UploadDir:    getEnv("UPLOAD_DIR", "./uploads"),
		SweepCron:    getEnv("UPLOAD_SWEEP_CRON", ""),
	}

	switch cfg.DBDriver {
	case "sqlite", "postgres", "memory":
	default:
		return nil, fmt.Errorf("DB_DRIVER: unsupported driver %q", cfg.DBDriver)
	}

	policy, err := repository.ParseDeletePolicy(getEnv("DELETE_POLICY", string(repository.DeleteCascade)))
	if err != nil {
		return nil, fmt.Errorf("DELETE_POLICY: %w", err)
	}
	cfg.DeletePolicy = policy

	if cfg.DBLogSQL, err = getBool("DB_LOG_SQL", false); err != nil {
		return nil, err
	}
	if cfg.SeedDemo, err = getBool("SEED_DEMO", false); err != nil {
		return nil, err
	}

	maxBytes, err := strconv.ParseInt(getEnv("UPLOAD_MAX_BYTES", "5242880"), 10, 64)
	if err != nil || maxBytes <= 0 {
		return nil, fmt.Errorf("UPLOAD_MAX_BYTES: want a positive integer")
	}
	cfg.UploadMaxBytes = maxBytes

	slow, err := strconv.Atoi(getEnv("SLOW_REQUEST_MS", "200"))
	if err != nil || slow < 0 {
		return nil, fmt.Errorf("SLOW_REQUEST_MS: want a non-negative integer")
	}
	cfg.SlowRequest = time.Duration(slow) * time.Millisecond

	for _, o := range strings.Split(getEnv("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
