package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/zhengjing-huang/lighthouse/pkg/render"
	"github.com/zhengjing-huang/lighthouse/pkg/treemap"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes byte counts in node labels.
	// When false, only the node name is shown.
	Detailed bool

	// MaxDepth limits how deep the outline descends. Nodes at the cutoff
	// are drawn as leaves; their labels still carry the full subtree
	// totals. Zero means no limit.
	MaxDepth int

	// Locale selects the number formatting for detailed labels ("en" when
	// empty).
	Locale string

	// Colorizer supplies the bundle tint assignment. Sharing one instance
	// with other renderers keeps colors consistent across outputs; when
	// nil a fresh one is used.
	Colorizer *treemap.Colorizer
}

// ToDOT converts a resource tree to Graphviz DOT format for node-link
// visualization. Edges point from parent to child, and every subtree under
// a top-level bundle is tinted with that bundle's color.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(root *treemap.Node, opts Options) string {
	b := &dotBuilder{opts: opts, colors: opts.Colorizer}
	if b.colors == nil {
		b.colors = treemap.NewColorizer()
	}
	b.walk(root, root.Name, "", 0)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, line := range b.nodes {
		buf.WriteString(line)
	}

	buf.WriteString("\n")
	for _, line := range b.edges {
		buf.WriteString(line)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// dotBuilder accumulates node and edge statements during the tree walk.
// Node IDs are slash-joined paths from the root, since bare names repeat
// across bundles ("src", "index.js").
type dotBuilder struct {
	opts   Options
	colors *treemap.Colorizer
	nodes  []string
	edges  []string
}

func (b *dotBuilder) walk(n *treemap.Node, id, fill string, depth int) {
	label := fmtLabel(n, b.opts.Detailed, b.opts.Locale)
	attrs := fmtAttrs(label, fill)
	b.nodes = append(b.nodes, fmt.Sprintf("  %q [%s];\n", id, strings.Join(attrs, ", ")))

	if b.opts.MaxDepth > 0 && depth >= b.opts.MaxDepth {
		return
	}
	for _, child := range n.Children {
		if child == nil {
			continue
		}
		childFill := fill
		if depth == 0 {
			childFill = b.bundleFill(child.Name)
		}
		childID := id + "/" + child.Name
		b.edges = append(b.edges, fmt.Sprintf("  %q -> %q;\n", id, childID))
		b.walk(child, childID, childFill, depth+1)
	}
}

// bundleFill resolves the tint for a top-level bundle. Exhausted palettes
// leave the bundle on the default white fill.
func (b *dotBuilder) bundleFill(name string) string {
	hue, ok := b.colors.HueForKey(name)
	if !ok {
		return ""
	}
	return gvTint(hue)
}

// gvTint formats a hue as a Graphviz HSV triple matching the viewer's
// hsl(h, 60%, 90%) bundle tint.
func gvTint(hue float64) string {
	return fmt.Sprintf("%.3f 0.125 0.960", hue/360)
}

func fmtLabel(n *treemap.Node, detailed bool, locale string) string {
	if !detailed {
		return n.Name
	}

	parts := []string{fmt.Sprintf("size: %s", treemap.FormatBytesLocale(n.ResourceBytes, locale))}
	if n.UnusedBytes > 0 {
		parts = append(parts, fmt.Sprintf("unused: %s", treemap.FormatBytesLocale(n.UnusedBytes, locale)))
	}

	return n.Name + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(label, fill string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if fill != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill), "fontcolor=black")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
