// server/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsAndEnvOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/lumina")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want default 8080", cfg.Port)
	}
	if cfg.ClockSkew != 60*time.Second {
		t.Errorf("clock skew = %v, want 60s default", cfg.ClockSkew)
	}

	t.Setenv("LUMINA_PORT", "9000")
	t.Setenv("CLOCK_SKEW_SECONDS", "30")

	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("port = %q, want 9000", cfg.Port)
	}
	if cfg.ClockSkew != 30*time.Second {
		t.Errorf("clock skew = %v, want 30s", cfg.ClockSkew)
	}
}

func TestLoadYAMLFileThenEnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte("port: \"7000\"\ndatabase_url: postgres://file/db\njwt_secret: from-file\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7000" || cfg.DatabaseURL != "postgres://file/db" {
		t.Errorf("file values not applied: %+v", cfg)
	}

	t.Setenv("DATABASE_URL", "postgres://env/db")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://env/db" {
		t.Errorf("env should override file, got %q", cfg.DatabaseURL)
	}
}

func TestLoadRequiresDatabaseAndSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(""); err == nil {
		t.Error("missing database URL should fail")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/lumina")
	if _, err := Load(""); err == nil {
		t.Error("missing JWT secret should fail")
	}
}

func TestLoadMissingFileIsFine(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/lumina")
	t.Setenv("JWT_SECRET", "s3cret")

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
		t.Errorf("missing config file should not fail: %v", err)
	}
}
