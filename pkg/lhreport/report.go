package lhreport

import (
	"encoding/json"
)

// TreemapAuditID is the audit that carries per-script resource trees.
const TreemapAuditID = "script-treemap-data"

// DebugFile is the conventional filename for viewer options dropped next
// to a report for local debugging.
const DebugFile = "debug.json"

// Report is the subset of an audit report this toolkit reads. Everything
// else in the source JSON is ignored on decode; the raw bytes are kept on
// [Options.LHR] so the viewer can serve the full report unchanged.
type Report struct {
	LighthouseVersion string           `json:"lighthouseVersion,omitempty"`
	RequestedURL      string           `json:"requestedUrl,omitempty"`
	FinalURL          string           `json:"finalUrl,omitempty"`
	FinalDisplayedURL string           `json:"finalDisplayedUrl,omitempty"`
	FetchTime         string           `json:"fetchTime,omitempty"`
	ConfigSettings    ConfigSettings   `json:"configSettings,omitempty"`
	Audits            map[string]Audit `json:"audits"`
}

// ConfigSettings carries the report settings the toolkit honors.
type ConfigSettings struct {
	Locale string `json:"locale,omitempty"`
}

// Audit is one audit entry. Details stay raw because every audit has its
// own details shape; [TreemapData] decodes the one this toolkit uses.
type Audit struct {
	ID      string          `json:"id,omitempty"`
	Title   string          `json:"title,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
}

// URL returns the best display URL for the audited page: the final
// displayed URL when present, then the final URL (older reports), then
// the requested URL. Returns "" when the report names no page.
func (r *Report) URL() string {
	switch {
	case r.FinalDisplayedURL != "":
		return r.FinalDisplayedURL
	case r.FinalURL != "":
		return r.FinalURL
	default:
		return r.RequestedURL
	}
}

// Locale returns the report's configured locale, defaulting to "en".
func (r *Report) Locale() string {
	if r.ConfigSettings.Locale == "" {
		return "en"
	}
	return r.ConfigSettings.Locale
}
