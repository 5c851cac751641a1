// Package nodelink renders resource trees as directed outline diagrams.
//
// # Overview
//
// This package produces node-link visualizations using Graphviz, where
// tree nodes appear as boxes connected by parent-to-child arrows. It's an
// alternative to the interactive treemap for static exports and for
// reports embedded in documents.
//
// # Usage
//
// Convert a tree to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(root, nodelink.Options{Detailed: false})
//	svg, err := nodelink.RenderSVG(dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(dot)
//	png, err := nodelink.RenderPNG(dot, 2.0)  // 2x scale
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: When true, node labels include resource and unused byte counts
//   - MaxDepth: Cuts the outline off below the given depth (0 = unlimited)
//   - Locale: Number formatting for detailed labels
//   - Colorizer: Shared bundle tint assignment across renderers
//
// # DOT Format
//
// The [ToDOT] function produces Graphviz DOT source that can be:
//
//   - Rendered directly via [RenderSVG]
//   - Saved and processed with external Graphviz tools
//   - Customized before rendering
//
// The generated DOT uses left-to-right layout (rankdir=LR) with rounded
// box nodes, so the tree reads like an indented file listing. Each
// top-level bundle and its subtree share a fill color matching the
// interactive viewer's tint for the same bundle.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
