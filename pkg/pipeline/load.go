package pipeline

import (
	"context"

	"github.com/zhengjing-huang/lighthouse/pkg/lhreport"
)

// Load fetches and decodes the viewer options document from opts.Source.
// The source may be a local file path (the debug-file convention) or an
// HTTP(S) URL; the fetcher decides and applies its own retry policy.
//
// Decoding validates the document: malformed JSON, a missing report, or a
// report without the treemap audit is a terminal typed error. There is
// nothing to degrade to without tree data.
func Load(ctx context.Context, f *lhreport.Fetcher, opts Options) (*lhreport.Options, error) {
	if f == nil {
		f = lhreport.NewFetcher(nil)
	}
	return f.Fetch(ctx, opts.Source, opts.Refresh)
}
