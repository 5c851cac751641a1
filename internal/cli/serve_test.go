package cli

import (
	"context"
	"strings"
	"testing"
)

func TestNewSessionStoresMemory(t *testing.T) {
	c := testCLI(t)

	for _, kind := range []string{storeMemory, ""} {
		sessions, tokens, err := c.newSessionStores(context.Background(), kind, "")
		if err != nil {
			t.Fatalf("newSessionStores(%q) error: %v", kind, err)
		}
		// Nil stores tell the viewer to supply its own in-memory ones.
		if sessions != nil || tokens != nil {
			t.Errorf("newSessionStores(%q) should return nil stores", kind)
		}
	}
}

func TestNewSessionStoresFile(t *testing.T) {
	c := testCLI(t)
	t.Setenv("HOME", t.TempDir())

	sessions, tokens, err := c.newSessionStores(context.Background(), storeFile, "")
	if err != nil {
		t.Fatalf("newSessionStores(file) error: %v", err)
	}
	if sessions == nil {
		t.Error("file kind should return a session store")
	}
	if tokens != nil {
		t.Error("file kind should leave tokens in-memory")
	}
}

func TestNewSessionStoresRedisUnreachable(t *testing.T) {
	c := testCLI(t)

	// Port 1 refuses immediately; the CLI degrades to memory instead of
	// failing startup.
	sessions, tokens, err := c.newSessionStores(context.Background(), storeRedis, "127.0.0.1:1")
	if err != nil {
		t.Fatalf("newSessionStores(redis) should degrade, got error: %v", err)
	}
	if sessions != nil || tokens != nil {
		t.Error("unreachable redis should degrade to nil (in-memory) stores")
	}
}

func TestNewSessionStoresUnknownKind(t *testing.T) {
	c := testCLI(t)

	_, _, err := c.newSessionStores(context.Background(), "postgres", "")
	if err == nil {
		t.Fatal("unknown session store kind should error")
	}
	if !strings.Contains(err.Error(), "postgres") {
		t.Errorf("error should name the bad kind, got %q", err)
	}
}

func TestNewArchiveStoreUnconfigured(t *testing.T) {
	c := testCLI(t)

	if store := c.newArchiveStore(context.Background(), ""); store != nil {
		t.Error("no URI should mean no archive store")
	}
}

func TestOpenArchiveUnconfigured(t *testing.T) {
	c := testCLI(t)

	_, err := c.openArchive(context.Background(), "")
	if err == nil {
		t.Fatal("reports commands need a configured archive")
	}
}
