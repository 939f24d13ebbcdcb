// Package report runs the query → parse → render pipeline for one review
// listing. Every invocation queries the server fresh; nothing is cached
// between reports.
package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/joescharf/grt/internal/gerrit"
	"github.com/joescharf/grt/internal/render"
)

// Querier is the one Gerrit operation a report needs.
type Querier interface {
	Query(ctx context.Context, project, filter, extra string) ([]byte, error)
}

// Options describes one report request.
type Options struct {
	Project string
	Filter  string // empty means status:open
	Extra   string // extra query options appended verbatim
	Labels  []render.Label
	Render  render.Options
}

// Report is one generated listing plus the records behind it. ByNumber maps
// a rendered row back to its Review so callers can target review commands
// at "the change on this row" without re-querying.
type Report struct {
	Text     string
	Reviews  []gerrit.Review
	ByNumber map[int]*gerrit.Review
}

// Generate produces one review listing. Configuration and transport errors
// abort the whole report; individual malformed records were already
// absorbed by the parser. Zero matching changes still yields a table (just
// the header).
func Generate(ctx context.Context, q Querier, opts Options) (*Report, error) {
	if opts.Project == "" {
		return nil, fmt.Errorf("report: no project given")
	}

	raw, err := q.Query(ctx, opts.Project, opts.Filter, opts.Extra)
	if err != nil {
		return nil, err
	}

	labels := opts.Labels
	if labels == nil {
		labels = render.DefaultLabels()
	}

	reviews := gerrit.ParseReviews(bytes.NewReader(raw))
	rep := &Report{
		Text:     render.Table(reviews, labels, opts.Render),
		Reviews:  reviews,
		ByNumber: make(map[int]*gerrit.Review, len(reviews)),
	}
	for i := range reviews {
		rep.ByNumber[int(reviews[i].Number)] = &reviews[i]
	}
	return rep, nil
}
