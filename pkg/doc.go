// Package pkg provides the core libraries for Lighthouse treemap visualization.
//
// # Overview
//
// lighthouse-treemap turns a web-performance audit report into a treemap of
// the page's JavaScript: every script becomes a nested rectangle sized by its
// bytes, colored by bundle, with unused code and duplicate modules called
// out. The pkg directory is organized into four main areas:
//
//  1. [treemap] - Domain logic (tree aggregation, coloring, duplicate detection)
//  2. [lhreport] - Report decoding and fetching
//  3. [pipeline] - Orchestration (load → build → render) with caching
//  4. [viewer] - Interactive local server with live reload and archiving
//
// # Architecture
//
// The typical data flow:
//
//	Report document (file, URL, stdin)
//	         ↓
//	    [lhreport] package (decode viewer options or bare report)
//	         ↓
//	    [treemap] package (aggregate containers + colorize + find duplicates)
//	         ↓
//	    [render/html] / [render/nodelink] packages (artifacts)
//	         ↓
//	    HTML/JSON/DOT/SVG/PNG/PDF output
//
// # Quick Start
//
// Render a report to an interactive HTML page:
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/zhengjing-huang/lighthouse/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil) // no cache, default logger
//	defer runner.Close()
//
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    Source:  "debug.json",
//	    Formats: []string{"html"},
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("treemap.html", result.Artifacts["html"], 0o644)
//
// # Main Packages
//
// ## Domain Logic
//
// [treemap] - The resource tree model. [treemap.Aggregate] merges one tree
// per top-level script into a single rooted tree, [treemap.Colorizer]
// assigns each bundle a stable hue, and [treemap.FindDuplicates] surfaces
// modules bundled more than once.
//
// [lhreport] - Report documents. Decodes both viewer options documents (the
// debug.json convention) and bare audit reports, and fetches them from
// files, URLs, or stdin with caching and retry.
//
// ## Orchestration
//
// [pipeline] - The load → build → render pipeline used by every entry
// point. Loaded reports and rendered artifacts are cached content-addressed;
// the build stage is pure computation and always runs.
//
// [cache] - Cache backends (file, memory, null) plus the key derivation:
// report keys hash the source, artifact keys chain the report's content
// hash with the render options.
//
// [httputil] - HTTP fetching with a file-backed body cache and
// retry-with-backoff for flaky report hosts.
//
// ## Rendering
//
// [render/html] - The interactive treemap page: squarified layout, view
// modes, locale-aware labels, optional live-reload socket.
//
// [render/nodelink] - Tree outlines as directed graphs via Graphviz (DOT,
// SVG, PNG, PDF).
//
// [render] - Format conversion utilities (SVG to PDF/PNG).
//
// [io] - Artifact writers for options documents and debug bundles.
//
// ## Serving
//
// [viewer] - The local viewer host: one current report, a token-protected
// push API for report pages, WebSocket reload for open tabs, and an archive
// of everything loaded.
//
// [session] - Viewer sessions and single-use handshake tokens, with memory,
// Redis, and file backends.
//
// [archive] - The report archive, with memory and MongoDB backends.
//
// ## Support
//
// [errors] - Coded errors distinguishing invalid input, missing data,
// network failure, and internal faults.
//
// [buildinfo] - Version metadata injected at build time.
//
// # Common Workflows
//
// Build a tree without rendering:
//
//	o, _ := runner.Load(ctx, pipeline.Options{Source: "debug.json"})
//	tree, _ := runner.Build(ctx, o, pipeline.Options{View: "unused-bytes"})
//	tree.Root.SortBySize()
//
// Serve a report interactively:
//
//	srv, _ := viewer.New(ctx, viewer.Config{Port: 7333}, runner, base, viewer.Stores{}, logger)
//	srv.SetReport(ctx, o)
//	srv.Start(ctx)
//
// Inspect duplicates directly:
//
//	for _, d := range treemap.FindDuplicates(tree.Root) {
//	    fmt.Printf("%s: %d copies, %s wasted\n",
//	        d.Source, len(d.Nodes), treemap.FormatBytes(d.WastedBytes))
//	}
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/treemap/...      # Specific package
//	go test -run Example           # Examples only
//
// [treemap]: https://pkg.go.dev/github.com/zhengjing-huang/lighthouse/pkg/treemap
// [lhreport]: https://pkg.go.dev/github.com/zhengjing-huang/lighthouse/pkg/lhreport
// [pipeline]: https://pkg.go.dev/github.com/zhengjing-huang/lighthouse/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/zhengjing-huang/lighthouse/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/zhengjing-huang/lighthouse/pkg/httputil
// [render]: https://pkg.go.dev/github.com/zhengjing-huang/lighthouse/pkg/render
// [render/html]: https://pkg.go.dev/github.com/zhengjing-huang/lighthouse/pkg/render/html
// [render/nodelink]: https://pkg.go.dev/github.com/zhengjing-huang/lighthouse/pkg/render/nodelink
// [io]: https://pkg.go.dev/github.com/zhengjing-huang/lighthouse/pkg/io
// [viewer]: https://pkg.go.dev/github.com/zhengjing-huang/lighthouse/pkg/viewer
// [session]: https://pkg.go.dev/github.com/zhengjing-huang/lighthouse/pkg/session
// [archive]: https://pkg.go.dev/github.com/zhengjing-huang/lighthouse/pkg/archive
// [errors]: https://pkg.go.dev/github.com/zhengjing-huang/lighthouse/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/zhengjing-huang/lighthouse/pkg/buildinfo
//
// [treemap.Aggregate]: https://pkg.go.dev/github.com/zhengjing-huang/lighthouse/pkg/treemap#Aggregate
// [treemap.Colorizer]: https://pkg.go.dev/github.com/zhengjing-huang/lighthouse/pkg/treemap#Colorizer
// [treemap.FindDuplicates]: https://pkg.go.dev/github.com/zhengjing-huang/lighthouse/pkg/treemap#FindDuplicates
package pkg
