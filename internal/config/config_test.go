package config

import (
	"testing"
	"time"

	"qrmenu/internal/repository"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DELETE_POLICY", "UPLOAD_MAX_BYTES", "CORS_ORIGINS", "SLOW_REQUEST_MS", "SEED_DEMO"} {
		t.Setenv(k, "")
	}
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if cfg.Port != "9091" || cfg.DBDriver != "sqlite" || cfg.DeletePolicy != repository.DeleteCascade {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.UploadMaxBytes != 5<<20 || cfg.SlowRequest != 200*time.Millisecond {
		t.Fatalf("numeric defaults: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" || cfg.SeedDemo {
		t.Fatalf("cors/seed defaults: %+v", cfg)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("DELETE_POLICY", "restrict")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SEED_DEMO", "true")
	t.Setenv("DB_DRIVER", "postgres")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("overrides: %v", err)
	}
	if cfg.DeletePolicy != repository.DeleteRestrict || !cfg.SeedDemo || cfg.DBDriver != "postgres" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("cors: %v", cfg.CORSOrigins)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	t.Setenv("DELETE_POLICY", "orphan")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected policy error")
	}
	t.Setenv("DELETE_POLICY", "")
	t.Setenv("DB_DRIVER", "mysql")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected driver error")
	}
	t.Setenv("DB_DRIVER", "memory")
	if _, err := FromEnv(); err != nil {
		t.Fatalf("memory driver: %v", err)
	}
	t.Setenv("UPLOAD_MAX_BYTES", "lots")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected size error")
	}
}
