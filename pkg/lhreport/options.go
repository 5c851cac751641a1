package lhreport

import (
	"encoding/json"

	"github.com/zhengjing-huang/lighthouse/pkg/errors"
)

// View mode identifiers understood by the viewer.
const (
	ViewAll              = "all"
	ViewUnusedBytes      = "unused-bytes"
	ViewDuplicateModules = "duplicate-modules"
)

// ValidViews maps every supported view mode identifier to true.
var ValidViews = map[string]bool{
	ViewAll:              true,
	ViewUnusedBytes:      true,
	ViewDuplicateModules: true,
}

// Options is the viewer options object: the report plus presentation
// hints. Marshaling an Options produces the debug.json shape, so a loaded
// options object round-trips through the debug file unchanged.
type Options struct {
	// LHR is the raw report JSON exactly as received.
	LHR json.RawMessage `json:"lhr"`

	// InitialView selects the view mode the viewer opens with.
	// Empty means ViewAll.
	InitialView string `json:"initialView,omitempty"`

	// Report is the decoded subset of LHR, populated by DecodeOptions.
	Report *Report `json:"-"`
}

// View returns the effective initial view mode.
func (o *Options) View() string {
	if o.InitialView == "" {
		return ViewAll
	}
	return o.InitialView
}

// Validate checks the decoded options for consistency: a report must be
// attached and the initial view, when set, must be a known mode.
func (o *Options) Validate() error {
	if o.Report == nil {
		return errors.New(errors.ErrCodeInvalidOptions, "options carry no report")
	}
	if o.InitialView != "" && !ValidViews[o.InitialView] {
		return errors.New(errors.ErrCodeInvalidView, "unknown view %q (valid: all, unused-bytes, duplicate-modules)", o.InitialView)
	}
	return nil
}

// DecodeOptions parses viewer options JSON. The input may be the full
// options wrapper ({"lhr": {...}, "initialView": ...}) or a bare report,
// recognized by its top-level "audits" key.
//
// Malformed JSON, a missing report, or a report without audits is a
// terminal error with a typed code - the viewer refuses to start without
// usable tree data. An unknown initialView is likewise rejected here
// rather than surfacing later during rendering.
func DecodeOptions(data []byte) (*Options, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidOptions, err, "options are not valid JSON")
	}

	opts := &Options{}
	switch {
	case len(probe["lhr"]) > 0:
		if err := json.Unmarshal(data, opts); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidOptions, err, "options have an invalid shape")
		}
	case len(probe["audits"]) > 0:
		// Bare report: wrap it so downstream code sees one shape.
		opts.LHR = json.RawMessage(data)
	default:
		return nil, errors.New(errors.ErrCodeInvalidOptions, `options carry no report: need an "lhr" field or a bare report`)
	}

	var report Report
	if err := json.Unmarshal(opts.LHR, &report); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidReport, err, "report is not valid JSON")
	}
	if len(report.Audits) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidReport, "report has no audits")
	}
	opts.Report = &report

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}
