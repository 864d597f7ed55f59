package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SERVER_MODE", "")
	t.Setenv("DATABASE_DRIVER", "")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != "mysql" {
		t.Errorf("Database.Driver = %q, want mysql", cfg.Database.Driver)
	}
	if cfg.JWT.ExpireTime != 24*time.Hour {
		t.Errorf("JWT.ExpireTime = %v, want 24h", cfg.JWT.ExpireTime)
	}
	if cfg.Reorder.DebounceWindow() != 400*time.Millisecond {
		t.Errorf("Reorder.DebounceWindow() = %v, want 400ms", cfg.Reorder.DebounceWindow())
	}
	if cfg.Storage.Type != "local" {
		t.Errorf("Storage.Type = %q, want local", cfg.Storage.Type)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: "9090"
  mode: debug
database:
  driver: sqlite
  path: test.db
reorder:
  debounce_ms: 250
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SERVER_MODE", "")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Path != "test.db" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Reorder.DebounceMS != 250 {
		t.Errorf("Reorder.DebounceMS = %d, want 250", cfg.Reorder.DebounceMS)
	}
	if cfg.JWT.Secret != "from-env" {
		t.Errorf("JWT.Secret = %q, want from-env", cfg.JWT.Secret)
	}
}

func TestLoadConfig_ReleaseRequiresStrongSecret(t *testing.T) {
	t.Setenv("SERVER_MODE", "release")
	t.Setenv("JWT_SECRET", "short")

	if _, err := LoadConfig(t.TempDir()); err == nil {
		t.Fatal("LoadConfig() should reject a short secret in release mode")
	}
}
