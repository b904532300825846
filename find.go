package esdex

import (
	"context"
	"net/url"

	"github.com/kailas-cloud/esdex/internal/query"
	"github.com/kailas-cloud/esdex/internal/result"
)

// FindRequest describes one search call. The zero value is a match-all
// search with the resource's default sort.
type FindRequest struct {
	// Where is an ad-hoc condition: a JSON field/value document, or an
	// expression for the configured where parser.
	Where string
	// Sort is a JSON list of [field, direction] pairs or the comma
	// shorthand "field,-other". Empty falls back to the resource's
	// default sort.
	Sort string
	// Page is 1-based; pages beyond the first set the from offset.
	Page int
	// MaxResults bounds the page size; zero leaves it to the engine.
	MaxResults int
	// Lookup scopes the search to a sub-resource; every pair becomes
	// an exact term clause.
	Lookup map[string]any
	// Args is the raw query-string surface: source, q, df,
	// default_operator, filter, filters, aggregations, es_highlight,
	// projections.
	Args url.Values
}

func (r *FindRequest) build() (*query.Request, error) {
	if r == nil {
		return &query.Request{}, nil
	}
	req, err := query.FromValues(r.Args)
	if err != nil {
		return nil, err
	}
	if r.Where != "" {
		req.Where = r.Where
	}
	if r.Sort != "" {
		req.Sort = r.Sort
	}
	req.Page = r.Page
	req.MaxResults = r.MaxResults
	req.Lookup = r.Lookup
	return req, nil
}

// Cursor is one search call's worth of normalized documents.
type Cursor struct {
	inner *result.Cursor
}

// Docs returns the documents in hit order.
func (c *Cursor) Docs() []map[string]any { return c.inner.Docs() }

// First returns the first document, nil when the cursor is empty.
func (c *Cursor) First() map[string]any { return c.inner.First() }

// Count reports the engine's total for the search, which can exceed
// Len on a size-limited call.
func (c *Cursor) Count() int { return c.inner.Count() }

// Len reports how many documents the cursor holds.
func (c *Cursor) Len() int { return c.inner.Len() }

// Facets returns the facet payload, nil when the response had none.
func (c *Cursor) Facets() map[string]any { return c.inner.Facets() }

// Aggregations returns the aggregation payload, nil when the response
// had none.
func (c *Cursor) Aggregations() map[string]any { return c.inner.Aggregations() }

// Extra copies facet and aggregation payloads into response under
// "_facets" and "_aggregations", only when present.
func (c *Cursor) Extra(response map[string]any) { c.inner.Extra(response) }

// Find searches a resource. A resource queried before its index holds
// any mapping yields an empty cursor; a free-text query the engine
// cannot parse yields ErrInvalidSearchString.
func (c *Client) Find(ctx context.Context, resource string, req *FindRequest) (*Cursor, error) {
	q, err := req.build()
	if err != nil {
		return nil, err
	}
	cur, err := c.searches.Find(ctx, resource, q)
	if err != nil {
		return nil, err
	}
	return &Cursor{inner: cur}, nil
}

// FindOne returns a single document. A lookup keyed by "_id" uses the
// by-id path, with a parent-aware fallback for routed children; any
// other lookup becomes a term-filter search bounded to one result.
// A missing document is (nil, nil), not an error.
func (c *Client) FindOne(ctx context.Context, resource string, lookup map[string]any) (map[string]any, error) {
	return c.searches.FindOne(ctx, resource, lookup)
}

// FindByID fetches one document by identifier. A missing document is
// (nil, nil), not an error.
func (c *Client) FindByID(ctx context.Context, resource, id string) (map[string]any, error) {
	return c.searches.FindByID(ctx, resource, id)
}

// FindByIDs multi-gets documents by identifier, returning only the
// ones that exist.
func (c *Client) FindByIDs(ctx context.Context, resource string, ids []string) (*Cursor, error) {
	cur, err := c.searches.FindByIDs(ctx, resource, ids)
	if err != nil {
		return nil, err
	}
	return &Cursor{inner: cur}, nil
}

// IsEmpty reports whether the resource's index holds no documents.
func (c *Client) IsEmpty(ctx context.Context, resource string) (bool, error) {
	return c.searches.IsEmpty(ctx, resource)
}
