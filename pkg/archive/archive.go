// Package archive persists loaded reports so the viewer can list and reopen
// them later.
//
// Each archived report is a Record: the original viewer options body plus
// denormalized summary fields (audited URL, byte totals) for listings that
// don't need the full report. Backends:
//   - memory: In-process storage for single-instance serving and tests
//   - mongo: MongoDB-backed storage for durable multi-instance deployments
package archive

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/zhengjing-huang/lighthouse/pkg/lhreport"
	"github.com/zhengjing-huang/lighthouse/pkg/treemap"
)

// DefaultListLimit caps listings when the caller doesn't specify one.
const DefaultListLimit = 50

// Record is an archived report. Used for API responses and storage.
type Record struct {
	ID            string          `json:"id" bson:"_id"`
	URL           string          `json:"url" bson:"url"`
	FetchTime     string          `json:"fetch_time,omitempty" bson:"fetch_time,omitempty"`
	View          string          `json:"view,omitempty" bson:"view,omitempty"`
	ResourceBytes int64           `json:"resource_bytes" bson:"resource_bytes"`
	UnusedBytes   int64           `json:"unused_bytes" bson:"unused_bytes"`
	Options       json.RawMessage `json:"options,omitempty" bson:"options,omitempty"`
	CreatedAt     time.Time       `json:"created_at" bson:"created_at"`
}

// Summary returns a copy of the record without the options body, for
// listings where the full report would be dead weight.
func (r *Record) Summary() *Record {
	s := *r
	s.Options = nil
	return &s
}

// NewRecord builds a record from decoded viewer options and the aggregated
// tree they produced.
func NewRecord(opts *lhreport.Options, root *treemap.Node) (*Record, error) {
	body, err := json.Marshal(opts)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		ID:        uuid.NewString(),
		View:      opts.View(),
		Options:   body,
		CreatedAt: time.Now(),
	}
	if opts.Report != nil {
		rec.URL = opts.Report.URL()
		rec.FetchTime = opts.Report.FetchTime
	}
	if root != nil {
		rec.ResourceBytes = root.ResourceBytes
		rec.UnusedBytes = root.UnusedBytes
	}
	return rec, nil
}

// Store is the interface for archive storage backends.
type Store interface {
	// Put stores a record, replacing any record with the same ID.
	Put(ctx context.Context, rec *Record) error

	// Get retrieves a record by ID.
	// Returns nil, nil if the record doesn't exist.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns record summaries, newest first. A limit <= 0 uses
	// DefaultListLimit.
	List(ctx context.Context, limit int) ([]*Record, error)

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close(ctx context.Context) error
}
