package cache

import (
	"context"
	"time"
)

// Default TTLs for the two cached artifact classes. Report bodies change
// whenever a new audit runs, rendered artifacts only when the report or
// render options change.
const (
	DefaultReportTTL   = 24 * time.Hour
	DefaultArtifactTTL = 7 * 24 * time.Hour
)

// Cache is the storage interface used by the pipeline and the viewer to
// memoize expensive stages: fetched report bodies and
// rendered artifacts.
//
// Implementations must be safe for concurrent use. A miss is reported via
// the boolean, not an error; errors are reserved for I/O failures.
type Cache interface {
	// Get retrieves a value. The boolean reports whether the key was found
	// and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 means the entry
	// never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Keyer derives cache keys for the pipeline stages. Keys chain: the report
// hash feeds the artifact key, so a changed report invalidates every
// rendered artifact downstream.
type Keyer interface {
	// ReportKey identifies a fetched report body by its source (file path
	// or URL).
	ReportKey(source string) string

	// ArtifactKey identifies a rendered artifact produced from the report
	// with the given hash.
	ArtifactKey(reportHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts captures the render inputs that affect artifact bytes.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	View     string  `json:"view"`
	Locale   string  `json:"locale"`
	Title    string  `json:"title,omitempty"`
	Detailed bool    `json:"detailed,omitempty"`
	MaxDepth int     `json:"max_depth,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
	Debug    bool    `json:"debug,omitempty"`
}

// DefaultKeyer is the standard key derivation used by the CLI and server.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ReportKey generates a key for report body caching.
func (k *DefaultKeyer) ReportKey(source string) string {
	return hashKey("report", source)
}

// ArtifactKey generates a key for rendered artifact caching.
func (k *DefaultKeyer) ArtifactKey(reportHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", reportHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
