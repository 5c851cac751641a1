package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/zhengjing-huang/lighthouse/pkg/viewer"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Host != viewer.DefaultHost {
		t.Errorf("Host = %q, want %q", cfg.Host, viewer.DefaultHost)
	}
	if cfg.Port != viewer.DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, viewer.DefaultPort)
	}
	if cfg.SessionStore != storeMemory {
		t.Errorf("SessionStore = %q, want %q", cfg.SessionStore, storeMemory)
	}
	if cfg.Open {
		t.Error("Open should default to false")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := loadConfig(quietLogger())
	if cfg != defaultConfig() {
		t.Errorf("missing config file should yield defaults, got %+v", cfg)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	appDir := filepath.Join(dir, appName)
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `
formats = "html,json"
view = "unused-bytes"
port = 8080
open = true
session_store = "redis"
redis_addr = "localhost:6379"
`
	if err := os.WriteFile(filepath.Join(appDir, configFile), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := loadConfig(quietLogger())

	if cfg.Formats != "html,json" {
		t.Errorf("Formats = %q, want %q", cfg.Formats, "html,json")
	}
	if cfg.View != "unused-bytes" {
		t.Errorf("View = %q, want %q", cfg.View, "unused-bytes")
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if !cfg.Open {
		t.Error("Open should be true")
	}
	if cfg.SessionStore != storeRedis {
		t.Errorf("SessionStore = %q, want %q", cfg.SessionStore, storeRedis)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q, want %q", cfg.RedisAddr, "localhost:6379")
	}

	// Unset fields keep their defaults.
	if cfg.Host != viewer.DefaultHost {
		t.Errorf("Host = %q, want default %q", cfg.Host, viewer.DefaultHost)
	}
}

func TestLoadConfigMalformedFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	appDir := filepath.Join(dir, appName)
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(appDir, configFile), []byte("not [valid toml"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Malformed config must not break the CLI.
	cfg := loadConfig(quietLogger())
	if cfg.Port != viewer.DefaultPort {
		t.Errorf("Port = %d, want default %d", cfg.Port, viewer.DefaultPort)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(envPrefix+"VIEW", "duplicate-modules")
	t.Setenv(envPrefix+"PORT", "9000")
	t.Setenv(envPrefix+"OPEN", "true")
	t.Setenv(envPrefix+"ARCHIVE_URI", "mongodb://localhost:27017")

	cfg := defaultConfig()
	applyEnv(&cfg)

	if cfg.View != "duplicate-modules" {
		t.Errorf("View = %q, want %q", cfg.View, "duplicate-modules")
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	if !cfg.Open {
		t.Error("Open should be true")
	}
	if cfg.ArchiveURI != "mongodb://localhost:27017" {
		t.Errorf("ArchiveURI = %q, want %q", cfg.ArchiveURI, "mongodb://localhost:27017")
	}
}

func TestApplyEnvBadValuesIgnored(t *testing.T) {
	t.Setenv(envPrefix+"PORT", "not-a-number")
	t.Setenv(envPrefix+"OPEN", "not-a-bool")

	cfg := defaultConfig()
	applyEnv(&cfg)

	if cfg.Port != viewer.DefaultPort {
		t.Errorf("Port = %d, unparseable value should be ignored", cfg.Port)
	}
	if cfg.Open {
		t.Error("Open should stay false on unparseable value")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	appDir := filepath.Join(dir, appName)
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(appDir, configFile), []byte(`port = 8080`), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(envPrefix+"PORT", "9000")

	cfg := loadConfig(quietLogger())
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, environment should override the config file", cfg.Port)
	}
}
