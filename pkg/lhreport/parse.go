package lhreport

import (
	"encoding/json"

	"github.com/zhengjing-huang/lighthouse/pkg/errors"
	"github.com/zhengjing-huang/lighthouse/pkg/treemap"
)

// treemapDetails mirrors the audit's details payload across report
// generations: the current shape carries "nodes" (each top-level node is
// its own group, named by the node), the legacy shape carries explicit
// "rootNodeContainers" pairs.
type treemapDetails struct {
	Type               string                  `json:"type"`
	Nodes              []*treemap.Node         `json:"nodes"`
	RootNodeContainers []treemap.RootContainer `json:"rootNodeContainers"`
}

// TreemapData extracts the script treemap containers from the report, in
// audit order.
//
// A report without the script-treemap-data audit, with empty details, or
// with details that fail to decode or validate is a terminal error
// (AUDIT_NOT_FOUND / INVALID_REPORT). An audit that decodes to zero trees
// degrades gracefully: the result is an empty container list, which
// aggregates to zero totals.
func TreemapData(r *Report) ([]treemap.RootContainer, error) {
	audit, ok := r.Audits[TreemapAuditID]
	if !ok {
		return nil, errors.New(errors.ErrCodeAuditNotFound, "report has no %s audit", TreemapAuditID)
	}
	if len(audit.Details) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidReport, "audit %s has no details", TreemapAuditID)
	}

	var details treemapDetails
	if err := json.Unmarshal(audit.Details, &details); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidReport, err, "audit %s details are malformed", TreemapAuditID)
	}

	var containers []treemap.RootContainer
	switch {
	case len(details.Nodes) > 0:
		containers = make([]treemap.RootContainer, 0, len(details.Nodes))
		for _, node := range details.Nodes {
			if node == nil {
				continue
			}
			containers = append(containers, treemap.RootContainer{Name: node.Name, Node: node})
		}
	case len(details.RootNodeContainers) > 0:
		containers = details.RootNodeContainers
	default:
		containers = []treemap.RootContainer{}
	}

	for _, c := range containers {
		if err := c.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidReport, err, "audit %s carries an invalid tree", TreemapAuditID)
		}
	}
	return containers, nil
}
