package nodelink

import (
	"strings"
	"testing"

	"github.com/zhengjing-huang/lighthouse/pkg/treemap"
)

func buildTree() *treemap.Node {
	return &treemap.Node{
		Name:          "example.com",
		ResourceBytes: 307200,
		UnusedBytes:   81920,
		Children: []*treemap.Node{
			{
				Name:          "main.js",
				ResourceBytes: 204800,
				UnusedBytes:   51200,
				Children: []*treemap.Node{
					{Name: "src", ResourceBytes: 122880},
					{Name: "node_modules", ResourceBytes: 81920, UnusedBytes: 51200},
				},
			},
			{Name: "vendor.js", ResourceBytes: 102400, UnusedBytes: 30720},
		},
	}
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(buildTree(), Options{})

	if !strings.Contains(dot, "digraph G") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	if !strings.Contains(dot, `"example.com"`) {
		t.Error("ToDOT() output missing root node")
	}
	if !strings.Contains(dot, `"example.com/main.js"`) {
		t.Error("ToDOT() output missing path-qualified bundle node")
	}
	if !strings.Contains(dot, `"example.com" -> "example.com/main.js"`) {
		t.Error("ToDOT() output missing root-to-bundle edge")
	}
	if !strings.Contains(dot, `"example.com/main.js" -> "example.com/main.js/src"`) {
		t.Error("ToDOT() output missing bundle-to-child edge")
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(buildTree(), Options{Detailed: true})

	if !strings.Contains(dot, "size: 200.0 KiB") {
		t.Error("ToDOT() detailed output missing resource bytes")
	}
	if !strings.Contains(dot, "unused: 50.0 KiB") {
		t.Error("ToDOT() detailed output missing unused bytes")
	}
}

func TestToDOT_MaxDepth(t *testing.T) {
	dot := ToDOT(buildTree(), Options{MaxDepth: 1})

	if !strings.Contains(dot, `"example.com/main.js"`) {
		t.Error("ToDOT() should keep nodes at the cutoff depth")
	}
	if strings.Contains(dot, `"example.com/main.js/src"`) {
		t.Error("ToDOT() should drop nodes below MaxDepth")
	}
}

func TestToDOT_BundleTint(t *testing.T) {
	dot := ToDOT(buildTree(), Options{})

	for _, id := range []string{"example.com/main.js", "example.com/vendor.js", "example.com/main.js/src"} {
		line := dotLine(t, dot, id)
		if !strings.Contains(line, "fillcolor=") {
			t.Errorf("node %q missing fill: %s", id, line)
		}
	}

	// Children share their bundle's tint, sibling bundles differ.
	mainFill := fillOf(t, dotLine(t, dot, "example.com/main.js"))
	srcFill := fillOf(t, dotLine(t, dot, "example.com/main.js/src"))
	vendorFill := fillOf(t, dotLine(t, dot, "example.com/vendor.js"))
	if mainFill != srcFill {
		t.Errorf("child fill %q differs from bundle fill %q", srcFill, mainFill)
	}
	if mainFill == vendorFill {
		t.Error("sibling bundles should not share a fill")
	}

	// The root keeps the default fill.
	if strings.Contains(dotLine(t, dot, "example.com"), "fillcolor=") {
		t.Error("root node should not carry an explicit fill")
	}

	// A fresh colorizer reproduces the same assignment.
	if again := ToDOT(buildTree(), Options{}); again != dot {
		t.Error("ToDOT() should be deterministic across colorizer instances")
	}
}

// dotLine returns the node statement for the given ID.
func dotLine(t *testing.T, dot, id string) string {
	t.Helper()
	for _, line := range strings.Split(dot, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), `"`+id+`" [`) {
			return line
		}
	}
	t.Fatalf("no node statement for %q", id)
	return ""
}

func fillOf(t *testing.T, line string) string {
	t.Helper()
	i := strings.Index(line, "fillcolor=")
	if i < 0 {
		t.Fatalf("no fillcolor in %q", line)
	}
	rest := line[i+len("fillcolor="):]
	end := strings.IndexAny(rest, ",]")
	if end < 0 {
		t.Fatalf("unterminated fillcolor in %q", line)
	}
	return rest[:end]
}

func TestFmtLabel_Simple(t *testing.T) {
	n := &treemap.Node{Name: "chunk.js", ResourceBytes: 1234}
	label := fmtLabel(n, false, "")

	if label != "chunk.js" {
		t.Errorf("fmtLabel() simple mode = %q, want %q", label, "chunk.js")
	}
}

func TestFmtLabel_Detailed(t *testing.T) {
	n := &treemap.Node{Name: "chunk.js", ResourceBytes: 2048, UnusedBytes: 512}
	label := fmtLabel(n, true, "")

	if !strings.HasPrefix(label, "chunk.js\n") {
		t.Errorf("fmtLabel() detailed should start with name: %q", label)
	}
	if !strings.Contains(label, "size: 2.0 KiB") {
		t.Errorf("fmtLabel() detailed missing size: %q", label)
	}
	if !strings.Contains(label, "unused: 0.5 KiB") {
		t.Errorf("fmtLabel() detailed missing unused: %q", label)
	}
}

func TestFmtLabel_DetailedNoUnused(t *testing.T) {
	n := &treemap.Node{Name: "lib", ResourceBytes: 100}
	label := fmtLabel(n, true, "")

	if strings.Contains(label, "unused") {
		t.Errorf("fmtLabel() should omit zero unused bytes: %q", label)
	}
}

func TestFmtAttrs_NoFill(t *testing.T) {
	attrs := fmtAttrs("test-label", "")

	if len(attrs) != 1 {
		t.Errorf("fmtAttrs() without fill should have 1 attr, got %d", len(attrs))
	}
	if !strings.Contains(attrs[0], "label=") {
		t.Errorf("fmtAttrs() missing label attr: %v", attrs)
	}
}

func TestFmtAttrs_Fill(t *testing.T) {
	attrs := fmtAttrs("test-label", "0.575 0.125 0.960")

	if len(attrs) != 3 {
		t.Errorf("fmtAttrs() with fill should have 3 attrs, got %d: %v", len(attrs), attrs)
	}

	joined := strings.Join(attrs, " ")
	if !strings.Contains(joined, "fillcolor=") {
		t.Error("fmtAttrs() missing fillcolor attr")
	}
	if !strings.Contains(joined, "fontcolor=black") {
		t.Error("fmtAttrs() missing fontcolor attr")
	}
}

func TestGvTint(t *testing.T) {
	if got := gvTint(207); got != "0.575 0.125 0.960" {
		t.Errorf("gvTint(207) = %q", got)
	}
	if got := gvTint(0); got != "0.000 0.125 0.960" {
		t.Errorf("gvTint(0) = %q", got)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg viewBox="8 16 1024 768" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 1024.00 768.00" width="1024" height="768">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "zero dimensions",
			svg:  `<svg viewBox="0 0 0 0">content</svg>`,
			want: `<svg viewBox="0 0 0 0">content</svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeViewBox([]byte(tt.svg))
			if string(got) != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	dot := ToDOT(buildTree(), Options{})
	svg, err := RenderSVG(dot)
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}

	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	dot := `not valid DOT {{{`
	_, err := RenderSVG(dot)
	if err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}
