package treemap

import (
	"errors"
	"testing"
)

func buildTestTree() *Node {
	return &Node{
		Name:          "https://example.com/main.js",
		ResourceBytes: 100,
		UnusedBytes:   40,
		Children: []*Node{
			{
				Name:          "src",
				ResourceBytes: 60,
				Children: []*Node{
					{Name: "app.js", ResourceBytes: 35, UnusedBytes: 10},
					{Name: "util.js", ResourceBytes: 25},
				},
			},
			{
				Name:          "node_modules",
				ResourceBytes: 40,
				UnusedBytes:   30,
				Children: []*Node{
					{Name: "lodash", ResourceBytes: 40, UnusedBytes: 30},
				},
			},
		},
	}
}

func TestNodeValidate(t *testing.T) {
	tests := []struct {
		name    string
		node    *Node
		wantErr error
	}{
		{
			name: "valid leaf",
			node: &Node{Name: "app.js", ResourceBytes: 10},
		},
		{
			name: "valid tree",
			node: buildTestTree(),
		},
		{
			name:    "negative resource bytes",
			node:    &Node{Name: "bad.js", ResourceBytes: -1},
			wantErr: ErrNegativeResourceBytes,
		},
		{
			name:    "negative unused bytes",
			node:    &Node{Name: "bad.js", ResourceBytes: 1, UnusedBytes: -1},
			wantErr: ErrNegativeUnusedBytes,
		},
		{
			name: "nil child",
			node: &Node{
				Name:          "parent",
				ResourceBytes: 1,
				Children:      []*Node{nil},
			},
			wantErr: ErrNilChild,
		},
		{
			name: "nested negative",
			node: &Node{
				Name:          "parent",
				ResourceBytes: 10,
				Children: []*Node{
					{Name: "ok", ResourceBytes: 5},
					{Name: "bad", ResourceBytes: -5},
				},
			},
			wantErr: ErrNegativeResourceBytes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.node.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRootContainerValidate(t *testing.T) {
	c := RootContainer{Name: "main.js"}
	if err := c.Validate(); !errors.Is(err, ErrNilRoot) {
		t.Errorf("Validate() = %v, want %v", err, ErrNilRoot)
	}

	c.Node = &Node{Name: "main.js", ResourceBytes: 10}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestNodeWalk(t *testing.T) {
	root := buildTestTree()

	var names []string
	var depths []int
	root.Walk(func(n *Node, depth int) {
		names = append(names, n.Name)
		depths = append(depths, depth)
	})

	wantNames := []string{
		"https://example.com/main.js",
		"src", "app.js", "util.js",
		"node_modules", "lodash",
	}
	wantDepths := []int{0, 1, 2, 2, 1, 2}

	if len(names) != len(wantNames) {
		t.Fatalf("Walk visited %d nodes, want %d", len(names), len(wantNames))
	}
	for i := range wantNames {
		if names[i] != wantNames[i] {
			t.Errorf("visit %d = %q, want %q", i, names[i], wantNames[i])
		}
		if depths[i] != wantDepths[i] {
			t.Errorf("depth of %q = %d, want %d", names[i], depths[i], wantDepths[i])
		}
	}
}

func TestNodeClone(t *testing.T) {
	original := buildTestTree()
	clone := original.Clone()

	if clone == original {
		t.Fatal("Clone() returned the same pointer")
	}
	if clone.CountNodes() != original.CountNodes() {
		t.Fatalf("clone has %d nodes, want %d", clone.CountNodes(), original.CountNodes())
	}

	// Mutating the clone must not leak into the original.
	clone.Children[0].ResourceBytes = 999
	clone.Children[0].Children[0].Name = "mutated"

	if original.Children[0].ResourceBytes == 999 {
		t.Error("mutating clone changed original resource bytes")
	}
	if original.Children[0].Children[0].Name == "mutated" {
		t.Error("mutating clone changed original node name")
	}
}

func TestNodeCloneNil(t *testing.T) {
	var n *Node
	if n.Clone() != nil {
		t.Error("Clone() of nil = non-nil, want nil")
	}
}

func TestSortBySize(t *testing.T) {
	root := &Node{
		Name: "root",
		Children: []*Node{
			{Name: "small", ResourceBytes: 5},
			{Name: "big", ResourceBytes: 50},
			{Name: "b-tied", ResourceBytes: 20},
			{Name: "a-tied", ResourceBytes: 20},
		},
	}

	root.SortBySize()

	want := []string{"big", "a-tied", "b-tied", "small"}
	for i, child := range root.Children {
		if child.Name != want[i] {
			t.Errorf("child %d = %q, want %q", i, child.Name, want[i])
		}
	}
}

func TestCountNodes(t *testing.T) {
	if got := buildTestTree().CountNodes(); got != 6 {
		t.Errorf("CountNodes() = %d, want 6", got)
	}

	leaf := &Node{Name: "leaf"}
	if got := leaf.CountNodes(); got != 1 {
		t.Errorf("CountNodes() of leaf = %d, want 1", got)
	}
}

func TestMaxDepth(t *testing.T) {
	if got := buildTestTree().MaxDepth(); got != 2 {
		t.Errorf("MaxDepth() = %d, want 2", got)
	}

	leaf := &Node{Name: "leaf"}
	if got := leaf.MaxDepth(); got != 0 {
		t.Errorf("MaxDepth() of leaf = %d, want 0", got)
	}
}

func TestFind(t *testing.T) {
	root := buildTestTree()

	node, ok := root.Find("lodash")
	if !ok {
		t.Fatal("Find(lodash) not found")
	}
	if node.ResourceBytes != 40 {
		t.Errorf("found node ResourceBytes = %d, want 40", node.ResourceBytes)
	}

	if _, ok := root.Find("missing"); ok {
		t.Error("Find(missing) = found, want not found")
	}
}
