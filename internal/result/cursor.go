// Package result normalizes raw engine responses into document
// cursors with typed date fields.
package result

import (
	"github.com/kailas-cloud/esdex/internal/engine"
	"github.com/kailas-cloud/esdex/internal/schema"
)

// Reserved document and response keys.
const (
	// HighlightKey carries per-field highlight fragments on a document.
	HighlightKey = "es_highlight"
	// FacetsKey and AggregationsKey are the response side channels
	// filled by Cursor.Extra.
	FacetsKey       = "_facets"
	AggregationsKey = "_aggregations"
)

// Cursor holds one call's normalized documents plus the envelope data
// that rides along with them.
type Cursor struct {
	docs         []map[string]any
	total        int
	facets       map[string]any
	aggregations map[string]any
}

// Docs returns the normalized documents in hit order.
func (c *Cursor) Docs() []map[string]any { return c.docs }

// First returns the first document, nil when the cursor is empty.
func (c *Cursor) First() map[string]any {
	if len(c.docs) == 0 {
		return nil
	}
	return c.docs[0]
}

// Count reports the envelope total. It can exceed Len when the search
// was size limited.
func (c *Cursor) Count() int { return c.total }

// Len reports how many documents the cursor actually holds.
func (c *Cursor) Len() int { return len(c.docs) }

// Facets returns the facet payload, nil when the response had none.
func (c *Cursor) Facets() map[string]any { return c.facets }

// Aggregations returns the aggregation payload, nil when the response
// had none.
func (c *Cursor) Aggregations() map[string]any { return c.aggregations }

// Extra copies facet and aggregation payloads into response under the
// reserved keys, only when present.
func (c *Cursor) Extra(response map[string]any) {
	if c.facets != nil {
		response[FacetsKey] = c.facets
	}
	if c.aggregations != nil {
		response[AggregationsKey] = c.aggregations
	}
}

// Empty returns a cursor with no documents and a zero total.
func Empty() *Cursor { return &Cursor{} }

// Normalizer formats raw hits against one resource schema.
type Normalizer struct {
	dates []string
}

// NewNormalizer builds a normalizer for s. The date field set always
// includes the two audit timestamps.
func NewNormalizer(s schema.Schema) *Normalizer {
	return &Normalizer{dates: s.DateFields()}
}

// Search normalizes a search response.
func (n *Normalizer) Search(res *engine.SearchResponse) *Cursor {
	if res == nil {
		return Empty()
	}
	docs := make([]map[string]any, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		docs = append(docs, n.Document(hit))
	}
	return &Cursor{
		docs:         docs,
		total:        res.Hits.Total.Value,
		facets:       res.Facets,
		aggregations: res.Aggregations,
	}
}

// Get normalizes a by-id result into a one-document cursor, or an
// empty cursor when the document was not found.
func (n *Normalizer) Get(res *engine.GetResult) *Cursor {
	if res == nil || !res.Found {
		return Empty()
	}
	doc := n.Document(res.Hit())
	return &Cursor{docs: []map[string]any{doc}, total: 1}
}

// MGet normalizes multi-get results, keeping found documents only.
func (n *Normalizer) MGet(results []engine.GetResult) *Cursor {
	docs := make([]map[string]any, 0, len(results))
	for _, item := range results {
		if !item.Found {
			continue
		}
		docs = append(docs, n.Document(item.Hit()))
	}
	return &Cursor{docs: docs, total: len(docs)}
}

// Document normalizes one hit: the identifier and type default from
// the hit metadata, highlight data lands under the reserved key, and
// every declared date field is parsed into a time value. A date that
// refuses to parse is set to nil rather than kept as a string.
func (n *Normalizer) Document(hit engine.Hit) map[string]any {
	doc := hit.Source
	if doc == nil {
		doc = map[string]any{}
	}
	if _, ok := doc[schema.IDField]; !ok {
		doc[schema.IDField] = hit.ID
	}
	if _, ok := doc[schema.TypeField]; !ok {
		doc[schema.TypeField] = hit.Type
	}
	if len(hit.Highlight) > 0 {
		doc[HighlightKey] = hit.Highlight
	}
	for _, key := range n.dates {
		if v, ok := doc[key]; ok {
			if t, parsed := ParseDate(v); parsed {
				doc[key] = t
			} else {
				doc[key] = nil
			}
		}
	}
	return doc
}
