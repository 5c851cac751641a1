package pipeline

import (
	"github.com/zhengjing-huang/lighthouse/pkg/lhreport"
	"github.com/zhengjing-huang/lighthouse/pkg/treemap"
)

// Tree bundles the combined resource tree with the presentation data
// derived from it. Renderers share its Colorizer, so every format shows
// identical bundle colors for the same build.
type Tree struct {
	// Root is the synthetic root holding one subtree per root container.
	Root *treemap.Node

	// Colors maps each depth-one bundle name to its assigned color.
	Colors map[string]treemap.Color

	// Duplicates lists modules bundled more than once, sorted by wasted
	// bytes descending.
	Duplicates []treemap.Duplicate

	// Colorizer carries the assignment behind Colors for renderers that
	// resolve colors themselves.
	Colorizer *treemap.Colorizer

	// Containers is the number of root containers that were merged.
	Containers int
}

// Build aggregates the report's root containers into one tree and derives
// the color assignment and duplicate-module summary. Build is pure: no
// I/O, no caching; identical input yields an identical tree.
//
// The combined root is named by opts.RootName, falling back to the
// report's URL and then to the source. A report with zero containers
// builds an empty tree with zero totals rather than failing; only a
// missing or malformed treemap audit is an error.
func Build(o *lhreport.Options, opts Options) (*Tree, error) {
	containers, err := lhreport.TreemapData(o.Report)
	if err != nil {
		return nil, err
	}

	name := opts.RootName
	if name == "" {
		name = o.Report.URL()
	}
	if name == "" {
		name = opts.Source
	}

	root := treemap.Aggregate(name, containers)
	colorizer := treemap.NewColorizer()

	return &Tree{
		Root:       root,
		Colors:     colorizer.GroupColors(root),
		Duplicates: treemap.FindDuplicates(root),
		Colorizer:  colorizer,
		Containers: len(containers),
	}, nil
}
