// Package render provides visualization rendering for treemap trees.
//
// # Overview
//
// This package contains the rendering layer that transforms aggregated
// treemap trees into visual outputs. It provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Interactive HTML viewer pages (in [html] subpackage)
//   - Node-link diagrams (in [nodelink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). These take the SVG produced
// by the node-link renderer.
//
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// # HTML Viewer
//
// The [html] subpackage produces the self-contained viewer page: the tree,
// its color assignment, and duplicate-module groups are embedded as JSON and
// drawn in the browser by the webtreemap library. This is the primary output
// format and the page served by the viewer server.
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage renders trees as directed outline diagrams using
// Graphviz. Nodes appear as boxes connected by arrows from parent to child,
// tinted by their top-level bundle.
//
//	dot := nodelink.ToDOT(root, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//
// [html]: github.com/zhengjing-huang/lighthouse/pkg/render/html
// [nodelink]: github.com/zhengjing-huang/lighthouse/pkg/render/nodelink
package render
