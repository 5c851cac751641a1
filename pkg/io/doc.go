// Package io provides JSON import and export for treemap trees and viewer
// options files.
//
// # Overview
//
// This package serializes size trees to and from a simple JSON format. The
// format is designed for:
//
//   - Visualization of any size hierarchy, not just Lighthouse script data
//   - Integration with external tools that produce or consume tree data
//   - Caching of aggregated trees for faster re-rendering
//   - Round-trip preservation: import, render, export, and re-import identically
//
// # Tree Format
//
// A tree file is a single node object. Children nest recursively:
//
//	{
//	  "name": "https://example.com/main.js",
//	  "resourceBytes": 1024,
//	  "unusedBytes": 256,
//	  "children": [
//	    {"name": "src", "resourceBytes": 600},
//	    {"name": "node_modules", "resourceBytes": 424}
//	  ]
//	}
//
// Required:
//   - name: Display label for the node
//   - resourceBytes: Size of the subtree in bytes (non-negative)
//
// Optional:
//   - unusedBytes: Bytes not executed during the trace (non-negative)
//   - children: Ordered list of child nodes
//
// # Import
//
// Use [ImportJSON] to read a tree from a file path, or [ReadJSON] to read
// from any io.Reader:
//
//	root, err := io.ImportJSON("tree.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Both functions validate the decoded tree (non-negative byte counts, no nil
// children). Errors are wrapped with context about which node caused the
// problem.
//
// # Export
//
// Use [ExportJSON] to write a tree to a file, or [WriteJSON] to write to any
// io.Writer:
//
//	err := io.ExportJSON(root, "output.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The export includes all node data, including synthetic wrapper nodes
// produced by aggregation. Child order and byte counts are preserved, so a
// re-import yields an identical tree.
//
// # Debug Files
//
// [WriteDebug] and [ExportDebug] write viewer options in the debug.json
// layout: a JSON object with an "lhr" report and an optional "initialView".
// Files written this way load back through the decoding in
// [github.com/zhengjing-huang/lighthouse/pkg/lhreport].
//
// # Concurrency
//
// All functions in this package are safe to call concurrently with other
// readers of the same tree, but not with concurrent modifications to it. The
// [ReadJSON] and [ImportJSON] functions create independent trees that can be
// used and modified freely after import.
package io
