// Package html renders the aggregated resource tree as an interactive
// viewer page.
//
// The page is self-contained: tree, colors, and duplicate summary travel
// inline as JSON, and the only external reference is the webtreemap
// drawing library loaded from CDN. Rendering the same tree with the same
// options always yields identical bytes, which keeps the artifact cache
// honest.
package html

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/zhengjing-huang/lighthouse/pkg/treemap"
)

// Option configures the rendered viewer page.
type Option func(*renderer)

type renderer struct {
	title       string
	view        string
	locale      string
	colors      *treemap.Colorizer
	optionsJSON []byte
	liveReload  string
}

// WithTitle sets the page title. Defaults to the root node's name.
func WithTitle(title string) Option { return func(r *renderer) { r.title = title } }

// WithView selects the view mode the page opens with.
func WithView(view string) Option { return func(r *renderer) { r.view = view } }

// WithLocale sets the BCP 47 locale used for byte formatting.
func WithLocale(locale string) Option { return func(r *renderer) { r.locale = locale } }

// WithColorizer shares a color assignment with other renderers. When unset
// a fresh assignment is computed from the tree.
func WithColorizer(c *treemap.Colorizer) Option { return func(r *renderer) { r.colors = c } }

// WithOptionsJSON inlines the viewer options document (the debug-file
// payload) so the page can serve as its own data source.
func WithOptionsJSON(data []byte) Option { return func(r *renderer) { r.optionsJSON = data } }

// WithLiveReload injects a reload script connecting to the given WebSocket
// path, for pages served by the viewer server.
func WithLiveReload(path string) Option { return func(r *renderer) { r.liveReload = path } }

var page = template.Must(template.New("viewer").Parse(viewerTemplate))

// pageData is the template payload. The JSON blobs are pre-encoded with
// HTML escaping and marked safe; everything else goes through the template
// engine's own escaping.
type pageData struct {
	Title       string
	InitialView string
	Locale      string
	Resource    string
	Unused      string
	UnusedPct   string
	NodeCount   string
	DupCount    int
	DupWaste    string
	Tree        template.JS
	Colors      template.JS
	Duplicates  template.JS
	Options     template.JS
	LiveReload  string
}

// dupEntry is the duplicate summary shape embedded in the page. Node
// references are dropped; the page only needs the normalized sources and
// their cost.
type dupEntry struct {
	Source      string `json:"source"`
	Copies      int    `json:"copies"`
	WastedBytes int64  `json:"wastedBytes"`
}

// Render produces the viewer page for the aggregated tree.
func Render(root *treemap.Node, opts ...Option) ([]byte, error) {
	if root == nil {
		return nil, treemap.ErrNilRoot
	}
	r := newRenderer(opts...)
	if r.title == "" {
		r.title = root.Name
	}

	treeJSON, err := json.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("encode tree: %w", err)
	}
	colorsJSON, err := json.Marshal(r.colors.GroupColors(root))
	if err != nil {
		return nil, fmt.Errorf("encode colors: %w", err)
	}

	duplicates := treemap.FindDuplicates(root)
	entries := make([]dupEntry, len(duplicates))
	var wasted int64
	for i, d := range duplicates {
		entries[i] = dupEntry{Source: d.Source, Copies: len(d.Nodes), WastedBytes: d.WastedBytes}
		wasted += d.WastedBytes
	}
	dupJSON, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode duplicates: %w", err)
	}

	data := pageData{
		Title:       r.title,
		InitialView: r.view,
		Locale:      r.locale,
		Resource:    treemap.FormatBytesLocale(root.ResourceBytes, r.locale),
		Unused:      treemap.FormatBytesLocale(root.UnusedBytes, r.locale),
		UnusedPct:   treemap.FormatPercent(root.UnusedBytes, root.ResourceBytes),
		NodeCount:   treemap.FormatCountLocale(int64(root.CountNodes()), r.locale),
		DupCount:    len(entries),
		DupWaste:    treemap.FormatBytesLocale(wasted, r.locale),
		Tree:        template.JS(treeJSON),
		Colors:      template.JS(colorsJSON),
		Duplicates:  template.JS(dupJSON),
		LiveReload:  r.liveReload,
	}

	if len(r.optionsJSON) > 0 {
		// Re-encode so angle brackets inside strings come out as \u escapes
		// and cannot terminate the script element.
		var v any
		if err := json.Unmarshal(r.optionsJSON, &v); err != nil {
			return nil, fmt.Errorf("decode options: %w", err)
		}
		enc, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode options: %w", err)
		}
		data.Options = template.JS(enc)
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}
	return buf.Bytes(), nil
}

func newRenderer(opts ...Option) renderer {
	r := renderer{view: "all", locale: "en", colors: treemap.NewColorizer()}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}
