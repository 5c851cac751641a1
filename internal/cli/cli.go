// Package cli implements the lighthouse-treemap command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/zhengjing-huang/lighthouse/pkg/buildinfo"
	"github.com/zhengjing-huang/lighthouse/pkg/cache"
	"github.com/zhengjing-huang/lighthouse/pkg/httputil"
	"github.com/zhengjing-huang/lighthouse/pkg/lhreport"
	"github.com/zhengjing-huang/lighthouse/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "lighthouse-treemap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config
}

// New creates a new CLI instance with a default logger and the resolved
// configuration (config file overlaid with environment variables).
// Configuration problems are logged, never fatal: a broken config file
// means defaults, not a dead binary.
func New(w io.Writer, level log.Level) *CLI {
	c := &CLI{
		Logger: newLogger(w, level),
	}
	c.Config = loadConfig(c.Logger)
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Visualize audit report script sizes as a treemap",
		Long:         `lighthouse-treemap turns a web-performance audit report into an interactive treemap: every script in the page becomes a nested rectangle sized by its bytes, colored by bundle, with unused code and duplicate modules called out.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Carry the logger on the context so run functions and the pipeline
	// see the level main.go settles on.
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.reportsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Pipeline results land in
// the file cache under the app cache dir; raw HTTP bodies for URL sources
// get their own corner of the same directory.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	store, err := newCache(c.Config.CacheDir, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(store, nil, c.Logger)

	if !noCache {
		if dir, err := cacheDir(c.Config.CacheDir); err == nil {
			if hc, err := httputil.NewCache(filepath.Join(dir, "http"), cache.DefaultReportTTL); err == nil {
				runner.Fetcher = lhreport.NewFetcher(hc)
			}
		}
	}
	return runner, nil
}

func newCache(configured string, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir(configured)
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory: the configured path when set,
// otherwise the XDG standard (~/.cache/lighthouse-treemap/).
func cacheDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the config directory using XDG standard
// (~/.config/lighthouse-treemap/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.DefaultFormat}
	}
	parts := strings.Split(s, ",")
	formats := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			formats = append(formats, p)
		}
	}
	return formats
}
