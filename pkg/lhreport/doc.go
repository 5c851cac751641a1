// Package lhreport reads web-performance audit reports and extracts the
// treemap data the toolkit visualizes.
//
// # Overview
//
// An audit report ("LHR") is a large JSON document; this package decodes
// only the subset the treemap needs: page URLs, fetch time, locale, and
// the script-treemap-data audit. The audit's details carry one resource
// tree per analyzed script, which [TreemapData] converts into
// [treemap.RootContainer] values for aggregation.
//
// # Options
//
// The viewer is driven by an options object wrapping the report:
//
//	{"lhr": { ... }, "initialView": "unused-bytes"}
//
// [DecodeOptions] accepts either that wrapper or a bare report (recognized
// by its top-level "audits" key). Missing or malformed report data is a
// terminal error with a typed code; the viewer does not start without a
// tree. Empty trees are not errors - they aggregate to zero totals.
//
// # Sources
//
// [Fetcher] loads options JSON from a local file (the debug.json
// convention) or an HTTP(S) URL. URL fetches retry transient failures with
// backoff and cache responses through [httputil.Cache]; each source is
// resolved once per run, there is no background refresh.
//
// [treemap.RootContainer]: github.com/zhengjing-huang/lighthouse/pkg/treemap.RootContainer
// [httputil.Cache]: github.com/zhengjing-huang/lighthouse/pkg/httputil.Cache
package lhreport
