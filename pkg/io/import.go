package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/zhengjing-huang/lighthouse/pkg/treemap"
)

// ReadJSON decodes a size tree from r.
//
// The input must be a single JSON node object:
//
//	{
//	  "name": "main.js",
//	  "resourceBytes": 1024,
//	  "children": [{"name": "src", "resourceBytes": 1024}]
//	}
//
// Each node must have a "name" and a non-negative "resourceBytes". Optional
// fields:
//   - unusedBytes: non-negative unused byte count
//   - children: ordered array of child nodes
//
// ReadJSON returns an error if:
//   - The JSON is malformed or invalid
//   - A node carries a negative byte count
//   - A children array contains a null entry
//
// Errors are wrapped with context naming the node that caused the problem.
// Use errors.Is to check for specific validation errors from
// [github.com/zhengjing-huang/lighthouse/pkg/treemap].
//
// The returned tree is independent of r and can be modified safely after
// ReadJSON returns. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*treemap.Node, error) {
	var root treemap.Node
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := root.Validate(); err != nil {
		return nil, err
	}
	return &root, nil
}

// ImportJSON reads a JSON file at path and returns the decoded tree.
//
// ImportJSON opens the file, decodes it using [ReadJSON], and closes the
// file. If the file cannot be opened, or if decoding fails, ImportJSON
// returns an error describing the failure. The error wraps the underlying
// cause with the file path for context.
//
// ImportJSON returns the same validation errors as [ReadJSON] for malformed
// trees.
func ImportJSON(path string) (*treemap.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
