// Package pipeline provides the core treemap pipeline.
//
// This package implements the complete load → build → render pipeline that
// can be used by CLI and viewer server components. By centralizing this
// logic, we ensure consistent behavior across all entry points and avoid
// code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Fetch and decode the report options document (file or URL)
//  2. Build: Aggregate the root containers into one tree, assign colors,
//     and scan for duplicate modules
//  3. Render: Generate output in various formats (HTML, JSON, DOT, SVG,
//     PNG, PDF)
//
// Each stage can be run independently or as part of the complete pipeline.
// Load results and rendered artifacts are cached; the build stage is pure
// and recomputed on every run.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Source:  "debug.json",
//	    Formats: []string{"html"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	page := result.Artifacts["html"]
//
// Run individual stages:
//
//	// Load only
//	o, err := runner.Load(ctx, opts)
//
//	// Build with loaded options
//	tree, err := runner.Build(ctx, o, opts)
//
//	// Render with existing tree
//	artifacts, err := runner.Render(ctx, tree, o, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/zhengjing-huang/lighthouse/pkg/cache"
	"github.com/zhengjing-huang/lighthouse/pkg/lhreport"
	"github.com/zhengjing-huang/lighthouse/pkg/treemap"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Viewer
// =============================================================================

const (
	// DefaultDotDepth caps the node-link outline depth. Bundle trees nest
	// source-map paths many levels deep; a full outline is unreadable, so
	// the cap keeps the diagram at the bundle/directory level. Callers can
	// lift it with a negative MaxDepth.
	DefaultDotDepth = 4

	// DefaultPNGScale is the resolution multiplier for PNG export.
	DefaultPNGScale = 2.0
)

// DefaultView is the view mode used when neither the caller nor the
// options document picks one.
const DefaultView = lhreport.ViewAll

// Format constants for output formats.
const (
	FormatHTML = "html"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// DefaultFormat is the format rendered when none is requested.
const DefaultFormat = FormatHTML

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatHTML: true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the treemap pipeline.
// This struct supports JSON serialization for viewer push requests.
type Options struct {
	// Load options
	Source  string `json:"source"`            // report file path or URL
	Refresh bool   `json:"refresh,omitempty"` // bypass cached report documents

	// Build options
	RootName string `json:"root_name,omitempty"` // overrides the combined root's name
	View     string `json:"view,omitempty"`      // view mode; empty defers to the options document
	Locale   string `json:"locale,omitempty"`    // BCP 47 locale; empty defers to the report

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Title    string   `json:"title,omitempty"`     // HTML page title; empty uses the root name
	Detailed bool     `json:"detailed,omitempty"`  // byte counts in outline labels
	MaxDepth int      `json:"max_depth,omitempty"` // outline depth limit; negative lifts the cap
	Scale    float64  `json:"scale,omitempty"`     // PNG resolution multiplier
	Debug    bool     `json:"debug,omitempty"`     // inline the options document into the HTML page

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Report is the decoded report the tree was built from.
	Report *lhreport.Report

	// ReportHash is the content hash of the raw report document.
	ReportHash string

	// Root is the combined resource tree.
	Root *treemap.Node

	// Colors is the per-bundle color assignment.
	Colors map[string]treemap.Color

	// Duplicates lists modules bundled more than once, most expensive first.
	Duplicates []treemap.Duplicate

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ContainerCount int
	NodeCount      int
	TotalBytes     int64
	UnusedBytes    int64
	LoadTime       time.Duration
	BuildTime      time.Duration
	RenderTime     time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage. The build stage is
// pure and recomputed every run, so it has no hit flag.
type CacheInfo struct {
	LoadHit   bool // Whether the report document came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: html, json, dot, svg, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateView checks that a view mode is valid.
func ValidateView(view string) error {
	if !lhreport.ValidViews[view] {
		return fmt.Errorf("invalid view: %q (must be one of: all, unused-bytes, duplicate-modules)", view)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading.
func (o *Options) ValidateForLoad() error {
	if o.Source == "" {
		return fmt.Errorf("source is required")
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Scale == 0 {
		o.Scale = DefaultPNGScale
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultDotDepth
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.View != "" {
		return ValidateView(o.View)
	}
	return nil
}

// OutlineDepth returns the effective node-link outline depth limit.
// Zero means unlimited.
func (o *Options) OutlineDepth() int {
	if o.MaxDepth < 0 {
		return 0
	}
	return o.MaxDepth
}

// NeedsOutline returns true if any requested format goes through the DOT
// outline path.
func (o *Options) NeedsOutline() bool {
	for _, f := range o.Formats {
		switch f {
		case FormatDOT, FormatSVG, FormatPNG, FormatPDF:
			return true
		}
	}
	return false
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		View:     o.View,
		Locale:   o.Locale,
		Title:    o.Title,
		Detailed: o.Detailed,
		MaxDepth: o.MaxDepth,
		Scale:    o.Scale,
		Debug:    o.Debug,
	}
}
