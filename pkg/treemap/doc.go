// Package treemap provides the core data model for treemap visualizations
// of web-performance audit reports.
//
// # Overview
//
// An audit report carries one node tree per analyzed script or resource
// bundle. This package models those trees ([Node], [RootContainer]),
// merges them into a single synthetic root for the combined view
// ([Aggregate]), and assigns stable colors per top-level group
// ([Colorizer]). Rendering is done elsewhere; this package owns only the
// tree arithmetic and the color assignment that rendering builds on.
//
// # Nodes and Containers
//
// A [Node] has a name, a resource byte count, an optional unused byte
// count, and an optional ordered list of children. Parents are expected to
// carry at least the sum of their children's bytes, but the invariant is
// advisory: report generators occasionally attribute bytes to a parent
// directly, so [Node.Validate] checks signs, not sums.
//
// A [RootContainer] names one top-level tree, typically one script URL.
// Containers are the unit of aggregation: the combined view is built by
// merging an ordered container sequence with [Aggregate].
//
// # Aggregation
//
// [Aggregate] produces one synthetic root whose children preserve
// container order. A container whose tree is a single leaf contributes
// that leaf directly; a container with a deeper tree contributes a wrapper
// node named after the container so the group stays identifiable in the
// combined view. Byte totals are summed across containers. An empty input
// yields a root with zero totals and an empty child list.
//
// # Coloring
//
// [Colorizer] maps group names to hues from a fixed palette. Assignment is
// deterministic (a character-sum hash picks from the remaining pool) and
// idempotent: a key keeps its hue for the lifetime of the Colorizer, so
// repeated renders never flicker. Once the palette is exhausted, further
// keys get no hue and callers fall back to white/black.
//
// # Concurrency
//
// Node trees are not safe for concurrent mutation. The [Colorizer] is safe
// for concurrent use; the viewer service colors trees from multiple
// requests against one shared instance.
package treemap
