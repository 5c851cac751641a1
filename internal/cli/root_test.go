package cli

import (
	"io"
	"testing"

	"github.com/zhengjing-huang/lighthouse/pkg/buildinfo"
)

// testCLI builds a CLI isolated from the developer's real config and cache.
func testCLI(t *testing.T) *CLI {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	return New(io.Discard, LogWarn)
}

func TestRootCommand(t *testing.T) {
	c := testCLI(t)
	root := c.RootCommand()

	if root.Use != appName {
		t.Errorf("root Use = %q, want %q", root.Use, appName)
	}
	if !root.SilenceUsage {
		t.Error("root command should silence usage on errors")
	}

	want := []string{"render", "serve", "inspect", "reports", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command is missing subcommand %q", name)
		}
	}
}

func TestRootCommandVersion(t *testing.T) {
	c := testCLI(t)
	root := c.RootCommand()

	if root.Version != buildinfo.Version {
		t.Errorf("root Version = %q, want %q", root.Version, buildinfo.Version)
	}
}
