package treemap

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrNegativeResourceBytes is returned by [Node.Validate] when a node
	// carries a negative resource byte count. Reports measure transfer and
	// source sizes, which are never negative.
	ErrNegativeResourceBytes = errors.New("resource bytes must be non-negative")

	// ErrNegativeUnusedBytes is returned by [Node.Validate] when a node
	// carries a negative unused byte count.
	ErrNegativeUnusedBytes = errors.New("unused bytes must be non-negative")

	// ErrNilChild is returned by [Node.Validate] when a children slice
	// contains a nil entry. This indicates corrupted report data.
	ErrNilChild = errors.New("child node must not be nil")

	// ErrNilRoot is returned by [RootContainer.Validate] when the container
	// has no tree attached.
	ErrNilRoot = errors.New("container root node must not be nil")
)

// Node is one vertex of a resource tree. Names are display strings (URLs
// for top-level scripts, path segments below); byte counts are absolute.
// Children are ordered and optional - a node without children is a leaf.
//
// The JSON shape matches the audit's treemap data, so trees round-trip
// through report files unchanged.
type Node struct {
	Name          string  `json:"name"`
	ResourceBytes int64   `json:"resourceBytes"`
	UnusedBytes   int64   `json:"unusedBytes,omitempty"`
	Children      []*Node `json:"children,omitempty"`
}

// RootContainer names one top-level resource tree, typically one script
// URL with its source-map breakdown as the tree. Containers are merged
// into the combined view by [Aggregate].
type RootContainer struct {
	Name string `json:"name"`
	Node *Node  `json:"node"`
}

// Validate checks that the container carries a structurally valid tree.
// Returns [ErrNilRoot] if no tree is attached, otherwise the tree's own
// validation result.
func (c RootContainer) Validate() error {
	if c.Node == nil {
		return fmt.Errorf("container %q: %w", c.Name, ErrNilRoot)
	}
	return c.Node.Validate()
}

// Walk visits the node and all descendants depth-first in pre-order,
// passing each node's depth relative to the receiver (the receiver is
// depth 0). Children are visited in their stored order.
func (n *Node) Walk(visit func(n *Node, depth int)) {
	n.walk(visit, 0)
}

func (n *Node) walk(visit func(n *Node, depth int), depth int) {
	visit(n, depth)
	for _, child := range n.Children {
		if child == nil {
			continue
		}
		child.walk(visit, depth+1)
	}
}

// Validate checks the subtree for structural problems: negative byte
// counts and nil child entries. The parent-covers-children byte invariant
// is advisory and deliberately not enforced - report generators sometimes
// attribute bytes to a parent directly.
//
// The returned error names the first offending node.
func (n *Node) Validate() error {
	if n.ResourceBytes < 0 {
		return fmt.Errorf("node %q: %w", n.Name, ErrNegativeResourceBytes)
	}
	if n.UnusedBytes < 0 {
		return fmt.Errorf("node %q: %w", n.Name, ErrNegativeUnusedBytes)
	}
	for _, child := range n.Children {
		if child == nil {
			return fmt.Errorf("node %q: %w", n.Name, ErrNilChild)
		}
		if err := child.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of the subtree. The copy shares no nodes with
// the original, so either side can be mutated freely.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	clone := &Node{
		Name:          n.Name,
		ResourceBytes: n.ResourceBytes,
		UnusedBytes:   n.UnusedBytes,
	}
	if n.Children != nil {
		clone.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			clone.Children[i] = child.Clone()
		}
	}
	return clone
}

// SortBySize orders every children slice in the subtree by descending
// resource bytes, breaking ties by name. Sorting in place keeps text and
// terminal output deterministic; the interactive viewer sorts on its own.
func (n *Node) SortBySize() {
	n.Walk(func(node *Node, _ int) {
		slices.SortStableFunc(node.Children, func(a, b *Node) int {
			if a.ResourceBytes != b.ResourceBytes {
				if a.ResourceBytes > b.ResourceBytes {
					return -1
				}
				return 1
			}
			return strings.Compare(a.Name, b.Name)
		})
	})
}

// CountNodes returns the number of nodes in the subtree, including the
// receiver.
func (n *Node) CountNodes() int {
	count := 0
	n.Walk(func(*Node, int) { count++ })
	return count
}

// MaxDepth returns the depth of the deepest node in the subtree, with the
// receiver at depth 0. A leaf returns 0.
func (n *Node) MaxDepth() int {
	max := 0
	n.Walk(func(_ *Node, depth int) {
		if depth > max {
			max = depth
		}
	})
	return max
}

// Find returns the first node in pre-order whose name matches, or nil and
// false if no node matches. Useful for tests and for resolving a viewer
// selection back to a node.
func (n *Node) Find(name string) (*Node, bool) {
	var found *Node
	n.Walk(func(node *Node, _ int) {
		if found == nil && node.Name == name {
			found = node
		}
	})
	return found, found != nil
}
