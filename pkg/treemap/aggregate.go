package treemap

// Aggregate merges an ordered sequence of containers into one synthetic
// root node named name. Callers typically pass the audited page URL so the
// combined view is labeled like the report itself.
//
// Each container contributes one child, in input order:
//
//   - a container whose tree is a single leaf contributes the leaf as-is;
//   - a container whose tree has children contributes a wrapper node named
//     after the container, carrying the tree's byte totals, with the tree
//     as its single child. Wrapping keeps the group identifiable once
//     several trees share the combined view.
//
// The root's resource and unused byte totals are the sums across all
// containers. Containers without a tree are skipped. An empty or nil
// input yields a root with zero totals and an empty, non-nil child list.
//
// The returned tree shares nodes with the input containers; callers that
// mutate the result should [Node.Clone] first.
func Aggregate(name string, containers []RootContainer) *Node {
	root := &Node{
		Name:     name,
		Children: make([]*Node, 0, len(containers)),
	}

	for _, c := range containers {
		node := c.Node
		if node == nil {
			continue
		}

		root.ResourceBytes += node.ResourceBytes
		root.UnusedBytes += node.UnusedBytes

		if len(node.Children) == 0 {
			root.Children = append(root.Children, node)
			continue
		}

		root.Children = append(root.Children, &Node{
			Name:          c.Name,
			ResourceBytes: node.ResourceBytes,
			UnusedBytes:   node.UnusedBytes,
			Children:      []*Node{node},
		})
	}

	return root
}
