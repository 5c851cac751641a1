package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/zhengjing-huang/lighthouse/pkg/lhreport"
	"github.com/zhengjing-huang/lighthouse/pkg/treemap"
)

// WriteJSON encodes a tree as indented JSON and writes it to w.
// The output includes all nodes with their byte counts and child order.
// This format can be re-imported with [ReadJSON] for round-trip processing.
func WriteJSON(root *treemap.Node, w io.Writer) error {
	if root == nil {
		return treemap.ErrNilRoot
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a tree to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(root *treemap.Node, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(root, f)
}

// WriteDebug encodes viewer options in the debug.json layout and writes
// them to w. If the options carry a decoded report but no raw LHR body,
// the report is re-marshaled so the output stays self-contained.
func WriteDebug(opts *lhreport.Options, w io.Writer) error {
	out := *opts
	if len(out.LHR) == 0 && out.Report != nil {
		raw, err := json.Marshal(out.Report)
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		out.LHR = raw
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportDebug writes viewer options to a debug.json style file at path.
// This is a convenience wrapper around [WriteDebug] for file-based output.
func ExportDebug(opts *lhreport.Options, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDebug(opts, f)
}
