package treemap

import (
	"slices"
	"strings"
)

// nodeModulesMarker splits a source path into the part that identifies the
// installed module. Everything before the last occurrence is the bundle's
// local directory layout and irrelevant for cross-bundle comparison.
const nodeModulesMarker = "node_modules/"

// Duplicate describes a module that appears in more than one bundle of
// the combined tree. WastedBytes estimates the cost of the duplication:
// every copy beyond the largest one could in principle be shared.
type Duplicate struct {
	Source      string  // normalized module source path
	Nodes       []*Node // every occurrence, largest first
	WastedBytes int64   // resource bytes beyond the largest copy
}

// FindDuplicates scans the combined tree for leaf modules installed under
// more than one bundle. Leaves are keyed by their normalized source path
// (the path from the last "node_modules/" on); keys with two or more
// occurrences become duplicates.
//
// The result is sorted by descending wasted bytes, ties broken by source
// path, so the most expensive duplication lists first.
func FindDuplicates(root *Node) []Duplicate {
	occurrences := make(map[string][]*Node)

	var walk func(n *Node, prefix string)
	walk = func(n *Node, prefix string) {
		path := n.Name
		if prefix != "" {
			path = prefix + "/" + n.Name
		}
		if len(n.Children) == 0 {
			if source, ok := normalizeSource(path); ok {
				occurrences[source] = append(occurrences[source], n)
			}
			return
		}
		for _, child := range n.Children {
			if child == nil {
				continue
			}
			walk(child, path)
		}
	}
	for _, child := range root.Children {
		if child == nil {
			continue
		}
		walk(child, "")
	}

	duplicates := make([]Duplicate, 0)
	for source, nodes := range occurrences {
		if len(nodes) < 2 {
			continue
		}
		slices.SortStableFunc(nodes, func(a, b *Node) int {
			switch {
			case a.ResourceBytes > b.ResourceBytes:
				return -1
			case a.ResourceBytes < b.ResourceBytes:
				return 1
			default:
				return 0
			}
		})
		var wasted int64
		for _, n := range nodes[1:] {
			wasted += n.ResourceBytes
		}
		duplicates = append(duplicates, Duplicate{
			Source:      source,
			Nodes:       nodes,
			WastedBytes: wasted,
		})
	}

	slices.SortStableFunc(duplicates, func(a, b Duplicate) int {
		if a.WastedBytes != b.WastedBytes {
			if a.WastedBytes > b.WastedBytes {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Source, b.Source)
	})
	return duplicates
}

// normalizeSource reduces a full tree path to the module-identifying part
// starting at the last "node_modules/" marker. Paths without the marker
// are not module installs and report ok=false.
func normalizeSource(path string) (string, bool) {
	idx := strings.LastIndex(path, nodeModulesMarker)
	if idx < 0 {
		return "", false
	}
	return path[idx:], true
}
