package cli

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/zhengjing-huang/lighthouse/pkg/viewer"
)

// configFile is the file read from the config directory.
const configFile = "config.toml"

// envPrefix is prepended to every environment override, e.g.
// LIGHTHOUSE_TREEMAP_PORT=8080.
const envPrefix = "LIGHTHOUSE_TREEMAP_"

// Config carries the persistent CLI settings. Every field seeds a flag
// default, so precedence is: built-in default < config file < environment
// < flag.
type Config struct {
	// Formats is the default render format set ("html,json").
	Formats string `toml:"formats"`

	// View is the default initial view mode.
	View string `toml:"view"`

	// Locale overrides the report's locale for number formatting.
	Locale string `toml:"locale"`

	// CacheDir overrides the XDG cache directory.
	CacheDir string `toml:"cache_dir"`

	// Host and Port are the viewer bind address.
	Host string `toml:"host"`
	Port int    `toml:"port"`

	// Open launches the browser when the viewer starts.
	Open bool `toml:"open"`

	// SessionStore selects the viewer session backend: memory, file, redis.
	SessionStore string `toml:"session_store"`

	// RedisAddr is the Redis address for session_store = "redis".
	RedisAddr string `toml:"redis_addr"`

	// ArchiveURI is the MongoDB connection string for report archiving.
	// Empty keeps archiving in memory.
	ArchiveURI string `toml:"archive_uri"`
}

// defaultConfig returns the built-in settings used when neither the config
// file nor the environment says otherwise.
func defaultConfig() Config {
	return Config{
		Host:         viewer.DefaultHost,
		Port:         viewer.DefaultPort,
		SessionStore: storeMemory,
	}
}

// loadConfig resolves the effective configuration: defaults, then the
// config file if present, then environment overrides. A missing file is
// normal; a malformed one is logged and skipped so the CLI still runs.
func loadConfig(logger *log.Logger) Config {
	cfg := defaultConfig()

	if dir, err := configDir(); err == nil {
		path := filepath.Join(dir, configFile)
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !os.IsNotExist(err) {
			logger.Warn("ignoring malformed config file", "path", path, "err", err)
		}
	}

	applyEnv(&cfg)
	return cfg
}

// applyEnv overlays LIGHTHOUSE_TREEMAP_* environment variables onto cfg.
// Unparseable numeric or boolean values are ignored rather than erroring;
// the environment should never brick the CLI.
func applyEnv(cfg *Config) {
	envString := func(name string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}

	envString("FORMATS", &cfg.Formats)
	envString("VIEW", &cfg.View)
	envString("LOCALE", &cfg.Locale)
	envString("CACHE_DIR", &cfg.CacheDir)
	envString("HOST", &cfg.Host)
	envString("SESSION_STORE", &cfg.SessionStore)
	envString("REDIS_ADDR", &cfg.RedisAddr)
	envString("ARCHIVE_URI", &cfg.ArchiveURI)

	if v, ok := os.LookupEnv(envPrefix + "PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v, ok := os.LookupEnv(envPrefix + "OPEN"); ok {
		if open, err := strconv.ParseBool(v); err == nil {
			cfg.Open = open
		}
	}
}
