package treemap

import (
	"fmt"
	"sync"
)

// paletteHues are the hue components of the Material palette, in palette
// order. Sixteen distinct hues cover typical reports; larger reports fall
// back to uncolored groups once the palette drains.
var paletteHues = []float64{
	4,   // red
	340, // pink
	291, // purple
	262, // deep purple
	231, // indigo
	207, // blue
	199, // light blue
	187, // cyan
	174, // teal
	122, // green
	88,  // light green
	66,  // lime
	54,  // yellow
	45,  // amber
	36,  // orange
	14,  // deep orange
}

// Saturation and lightness applied to every assigned hue. Lightness stays
// above 50 so black text remains readable on every group color.
const (
	colorSaturation = 60
	colorLightness  = 90
)

// Fallback is the color pair applied when no hue is available: white
// background with black text. Ungrouped leaves and post-exhaustion keys
// render with it.
var Fallback = Color{Background: "white", Text: "black"}

// Color is a concrete background/text pair ready for CSS or terminal
// mapping. Background is either an hsl() string or "white".
type Color struct {
	Background string `json:"background"`
	Text       string `json:"text"`
}

// Colorizer assigns stable hues to group names. Assignment happens on
// first sight: a deterministic hash of the key picks from the hues not yet
// handed out, and the picked hue leaves the pool. A key keeps its hue for
// the lifetime of the Colorizer, so re-rendering the same report never
// shifts colors.
//
// Safe for concurrent use.
type Colorizer struct {
	mu        sync.Mutex
	remaining []float64
	assigned  map[string]float64
}

// NewColorizer creates a Colorizer backed by the full Material palette.
func NewColorizer() *Colorizer {
	return NewColorizerWithHues(paletteHues)
}

// NewColorizerWithHues creates a Colorizer with a custom hue pool. The
// slice is copied; an empty pool yields a Colorizer that assigns nothing.
func NewColorizerWithHues(hues []float64) *Colorizer {
	remaining := make([]float64, len(hues))
	copy(remaining, hues)
	return &Colorizer{
		remaining: remaining,
		assigned:  make(map[string]float64),
	}
}

// HueForKey returns the hue assigned to key, assigning one on first
// sight. Returns ok=false when the key is unseen and the palette is
// exhausted; the miss is not remembered, so a hue freed by a future
// palette change would still be assignable.
func (c *Colorizer) HueForKey(key string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if hue, ok := c.assigned[key]; ok {
		return hue, true
	}
	if len(c.remaining) == 0 {
		return 0, false
	}

	idx := hashKey(key) % len(c.remaining)
	hue := c.remaining[idx]
	c.remaining = append(c.remaining[:idx], c.remaining[idx+1:]...)
	c.assigned[key] = hue
	return hue, true
}

// ColorForKey returns the concrete color pair for key: the assigned hue at
// the package's fixed saturation and lightness, or [Fallback] once the
// palette is exhausted.
func (c *Colorizer) ColorForKey(key string) Color {
	hue, ok := c.HueForKey(key)
	if !ok {
		return Fallback
	}
	return Color{
		Background: fmt.Sprintf("hsl(%g, %d%%, %d%%)", hue, colorSaturation, colorLightness),
		Text:       "black",
	}
}

// GroupColors assigns a color to every depth-one child of root and
// returns the assignment keyed by child name. This is the form renderers
// embed: deeper nodes inherit their depth-one ancestor's color.
func (c *Colorizer) GroupColors(root *Node) map[string]Color {
	colors := make(map[string]Color, len(root.Children))
	for _, child := range root.Children {
		if child == nil {
			continue
		}
		colors[child.Name] = c.ColorForKey(child.Name)
	}
	return colors
}

// Colorize walks the tree depth-first and returns a color for every node.
// Nodes take the color of their depth-one ancestor; the root itself uses
// [Fallback]. Calling Colorize repeatedly on the same Colorizer returns
// identical assignments.
func (c *Colorizer) Colorize(root *Node) map[*Node]Color {
	colors := make(map[*Node]Color, root.CountNodes())
	colors[root] = Fallback
	for _, depthOne := range root.Children {
		if depthOne == nil {
			continue
		}
		color := c.ColorForKey(depthOne.Name)
		depthOne.Walk(func(n *Node, _ int) {
			colors[n] = color
		})
	}
	return colors
}

// Assignments returns a snapshot of every key assigned so far. The
// returned map is a copy.
func (c *Colorizer) Assignments() map[string]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make(map[string]float64, len(c.assigned))
	for k, v := range c.assigned {
		snapshot[k] = v
	}
	return snapshot
}

// hashKey sums the Unicode code points of key. The hash only has to be
// deterministic and cheap - it spreads keys across the remaining pool, it
// does not need cryptographic quality.
func hashKey(key string) int {
	h := 0
	for _, r := range key {
		h += int(r)
	}
	return h
}
