package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	// Empty values are ignored by viper.
	t.Setenv("PORT", "")
	t.Setenv("DATA_DIR", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.Addr() != "127.0.0.1:3001" {
		t.Fatalf("unexpected addr %q", cfg.Addr())
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: "9000"
backend: sqlite
sqlite_driver: sqlite3
autosave_delay: 2s
watch: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9000" || cfg.Backend != "sqlite" || cfg.SQLiteDriver != "sqlite3" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.AutosaveDelay != 2*time.Second {
		t.Fatalf("expected 2s autosave delay, got %v", cfg.AutosaveDelay)
	}
	if cfg.Watch {
		t.Fatal("expected watch disabled")
	}
}

func TestLoadEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PORT", "4242")
	t.Setenv("DATA_DIR", "/tmp/prompts")
	t.Setenv("PROMPTKEEPER_LOG_MODE", "prod")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "4242" {
		t.Fatalf("expected PORT honoured, got %q", cfg.Port)
	}
	if cfg.DataDir != "/tmp/prompts" {
		t.Fatalf("expected DATA_DIR honoured, got %q", cfg.DataDir)
	}
	if cfg.LogMode != "prod" {
		t.Fatalf("expected log mode prod, got %q", cfg.LogMode)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("port: [unclosed"), 0644)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = "redis"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg = DefaultConfig()
	cfg.SQLiteDriver = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown driver")
	}

	cfg = DefaultConfig()
	cfg.Backend = "remote"
	cfg.RemoteURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for remote backend without url")
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Errorf("restore working directory: %v", err)
		}
	})
}
