package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/zhengjing-huang/lighthouse/pkg/cache"
	"github.com/zhengjing-huang/lighthouse/pkg/lhreport"
	"github.com/zhengjing-huang/lighthouse/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and viewer server can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, fetcher, and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Fetcher *lhreport.Fetcher
	Logger  *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
//
// The fetcher defaults to one without an HTTP body cache; the runner's own
// cache already keeps the decoded document per source. Callers that fetch
// the same URLs outside the pipeline can set Fetcher to share one.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Fetcher: lhreport.NewFetcher(nil),
		Logger:  logger,
	}
}

// Execute runs the complete load → build → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	o, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Report = o.Report
	result.ReportHash = cache.Hash(o.LHR)
	result.Stats.LoadTime = time.Since(loadStart)
	result.CacheInfo.LoadHit = loadHit

	r.Logger.Info("loaded report",
		"source", opts.Source,
		"url", o.Report.URL(),
		"duration", result.Stats.LoadTime)

	// The options document and the report fill whatever the caller left
	// open, so artifact cache keys see the effective values.
	if opts.View == "" {
		opts.View = o.View()
	}
	if opts.Locale == "" {
		opts.Locale = o.Report.Locale()
	}

	// Stage 2: Build
	buildStart := time.Now()
	tree, err := r.Build(ctx, o, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Root = tree.Root
	result.Colors = tree.Colors
	result.Duplicates = tree.Duplicates
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.ContainerCount = tree.Containers
	result.Stats.NodeCount = tree.Root.CountNodes()
	result.Stats.TotalBytes = tree.Root.ResourceBytes
	result.Stats.UnusedBytes = tree.Root.UnusedBytes

	r.Logger.Info("built tree",
		"containers", tree.Containers,
		"nodes", result.Stats.NodeCount,
		"duration", result.Stats.BuildTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, tree, o, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo loads the options document with caching and returns cache hit info.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (*lhreport.Options, bool, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, opts.Source)

	cacheKey := r.Keyer.ReportKey(opts.Source)

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if o, err := lhreport.DecodeOptions(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "report")
				observability.Pipeline().OnLoadComplete(ctx, opts.Source, len(data), time.Since(start), nil)
				return o, true, nil // Cache hit
			}
			// Corrupt entries fall through to a fresh fetch.
		}
		observability.Cache().OnCacheMiss(ctx, "report")
	}

	o, err := Load(ctx, r.Fetcher, opts)
	if err != nil {
		observability.Pipeline().OnLoadComplete(ctx, opts.Source, 0, time.Since(start), err)
		return nil, false, err
	}

	// Cache the validated document; marshaling an Options reproduces the
	// debug-file shape DecodeOptions accepts.
	if data, err := json.Marshal(o); err == nil {
		if r.Cache.Set(ctx, cacheKey, data, cache.DefaultReportTTL) == nil {
			observability.Cache().OnCacheSet(ctx, "report", len(data))
		}
	}

	observability.Pipeline().OnLoadComplete(ctx, opts.Source, len(o.LHR), time.Since(start), nil)
	return o, false, nil // Cache miss
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*lhreport.Options, error) {
	o, _, err := r.LoadWithCacheInfo(ctx, opts)
	return o, err
}

// Build aggregates and colorizes the loaded report. Build results are
// never cached: aggregation is cheap and pure, and recomputing it keeps
// the color assignment attached to the tree it describes.
func (r *Runner) Build(ctx context.Context, o *lhreport.Options, opts Options) (*Tree, error) {
	r.applyLogger(&opts)

	start := time.Now()
	observability.Pipeline().OnBuildStart(ctx, opts.View)

	tree, err := Build(o, opts)
	observability.Pipeline().OnBuildComplete(ctx, opts.View, time.Since(start), err)
	return tree, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// Artifacts are keyed by the report hash plus the render options, so a
// changed report invalidates every cached rendering of it.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, tree *Tree, o *lhreport.Options, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)

	reportHash := cache.Hash(o.LHR)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(reportHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
		return artifacts, true, nil // All artifacts from cache
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	// Render all formats
	rendered, err := Render(tree, o, opts)
	if err != nil {
		observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(reportHash, opts.ArtifactKeyOpts(format))
		if r.Cache.Set(ctx, cacheKey, data, cache.DefaultArtifactTTL) == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, tree *Tree, o *lhreport.Options, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, tree, o, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
