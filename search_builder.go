package esdex

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/esdex/internal/query"
)

// BuildSourceQuery converts a flat {"q": text, field: value} document
// into a full search body: the "q" entry becomes the scoring clause,
// every other entry an exact term filter (terms for list values). The
// result is meant to be passed to SearchBuilder.Source or serialized
// into a source argument.
func BuildSourceQuery(doc map[string]any) map[string]any {
	return query.BuildSourceQuery(doc)
}

// SearchBuilder is a fluent builder for searches against one resource.
type SearchBuilder struct {
	client   *Client
	resource string
	req      query.Request
	sorts    []string
	err      error
}

// Search starts a fluent search against a resource.
func (c *Client) Search(resource string) *SearchBuilder {
	return &SearchBuilder{client: c, resource: resource}
}

// Query sets the free-text term. A term wrapped in double quotes is
// searched as an exact phrase.
func (b *SearchBuilder) Query(q string) *SearchBuilder {
	b.req.Text = q
	return b
}

// Field sets the field the free-text query targets. Unset, the query
// runs against the catch-all field.
func (b *SearchBuilder) Field(field string) *SearchBuilder {
	b.req.TextField = field
	return b
}

// Operator sets how free-text terms are joined, "AND" or "OR".
func (b *SearchBuilder) Operator(op string) *SearchBuilder {
	b.req.Operator = op
	return b
}

// Source sets a raw query-body override. Its query clause is lifted
// into filter context; sort, size and aggregations it carries win over
// the builder's own.
func (b *SearchBuilder) Source(body map[string]any) *SearchBuilder {
	raw, err := json.Marshal(body)
	if err != nil {
		b.err = fmt.Errorf("marshal source query: %w", err)
		return b
	}
	b.req.Source = string(raw)
	return b
}

// Where adds an ad-hoc condition: a JSON field/value document, or an
// expression for the configured where parser.
func (b *SearchBuilder) Where(where string) *SearchBuilder {
	b.req.Where = where
	return b
}

// Filter adds one ad-hoc filter document.
func (b *SearchBuilder) Filter(filter map[string]any) *SearchBuilder {
	if filter != nil {
		b.req.Filters = append(b.req.Filters, filter)
	}
	return b
}

// Term scopes the search with an exact term clause.
func (b *SearchBuilder) Term(field string, value any) *SearchBuilder {
	if b.req.Lookup == nil {
		b.req.Lookup = map[string]any{}
	}
	b.req.Lookup[field] = value
	return b
}

// Sort appends a sort field; a "-" prefix sorts descending. Without any
// sort the resource's default order applies.
func (b *SearchBuilder) Sort(field string) *SearchBuilder {
	b.sorts = append(b.sorts, field)
	return b
}

// Page sets the 1-based result page.
func (b *SearchBuilder) Page(n int) *SearchBuilder {
	b.req.Page = n
	return b
}

// MaxResults bounds the page size.
func (b *SearchBuilder) MaxResults(n int) *SearchBuilder {
	b.req.MaxResults = n
	return b
}

// Aggregations requests the resource's configured aggregations for
// this call even when they are off globally.
func (b *SearchBuilder) Aggregations() *SearchBuilder {
	b.req.Aggregations = true
	return b
}

// Highlight enables the resource's highlight callback.
func (b *SearchBuilder) Highlight() *SearchBuilder {
	b.req.Highlight = true
	return b
}

// Project restricts returned source fields.
func (b *SearchBuilder) Project(fields ...string) *SearchBuilder {
	b.req.Projections = append(b.req.Projections, fields...)
	return b
}

// Do executes the search.
func (b *SearchBuilder) Do(ctx context.Context) (*Cursor, error) {
	if b.err != nil {
		return nil, b.err
	}
	req := b.req
	if len(b.sorts) > 0 {
		req.Sort = strings.Join(b.sorts, ",")
	}
	cur, err := b.client.searches.Find(ctx, b.resource, &req)
	if err != nil {
		return nil, err
	}
	return &Cursor{inner: cur}, nil
}
