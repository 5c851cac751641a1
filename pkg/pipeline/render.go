package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"

	pkgio "github.com/zhengjing-huang/lighthouse/pkg/io"
	"github.com/zhengjing-huang/lighthouse/pkg/lhreport"
	"github.com/zhengjing-huang/lighthouse/pkg/render/html"
	"github.com/zhengjing-huang/lighthouse/pkg/render/nodelink"
)

// Render generates output artifacts in the requested formats. The DOT
// outline is computed once and shared by the dot, svg, png, and pdf
// formats.
func Render(tree *Tree, o *lhreport.Options, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte)

	var dot string
	if opts.NeedsOutline() {
		dot = nodelink.ToDOT(tree.Root, outlineOptions(tree, opts))
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatHTML:
			data, err = renderHTML(tree, o, opts)
		case FormatJSON:
			var buf bytes.Buffer
			if err = pkgio.WriteJSON(tree.Root, &buf); err == nil {
				data = buf.Bytes()
			}
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = nodelink.RenderSVG(dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(dot, opts.Scale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(dot)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// renderHTML builds the interactive viewer page.
func renderHTML(tree *Tree, o *lhreport.Options, opts Options) ([]byte, error) {
	htmlOpts := []html.Option{
		html.WithColorizer(tree.Colorizer),
	}
	if opts.View != "" {
		htmlOpts = append(htmlOpts, html.WithView(opts.View))
	}
	if opts.Locale != "" {
		htmlOpts = append(htmlOpts, html.WithLocale(opts.Locale))
	}
	if opts.Title != "" {
		htmlOpts = append(htmlOpts, html.WithTitle(opts.Title))
	}
	if opts.Debug && o != nil {
		raw, err := json.Marshal(o)
		if err != nil {
			return nil, fmt.Errorf("encode options: %w", err)
		}
		htmlOpts = append(htmlOpts, html.WithOptionsJSON(raw))
	}
	return html.Render(tree.Root, htmlOpts...)
}

// outlineOptions maps pipeline options onto the node-link renderer.
func outlineOptions(tree *Tree, opts Options) nodelink.Options {
	return nodelink.Options{
		Detailed:  opts.Detailed,
		MaxDepth:  opts.OutlineDepth(),
		Locale:    opts.Locale,
		Colorizer: tree.Colorizer,
	}
}
