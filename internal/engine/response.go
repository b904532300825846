package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Total is the hits total. It decodes both the legacy scalar form
// (`"total": 3`) and the modern object form
// (`"total": {"value": 3, "relation": "eq"}`).
type Total struct {
	Value    int    `json:"value"`
	Relation string `json:"relation,omitempty"`
}

// UnmarshalJSON accepts either envelope generation.
func (t *Total) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*t = Total{}
		return nil
	}
	if data[0] == '{' {
		type plain Total
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("decode total: %w", err)
		}
		*t = Total(p)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode total: %w", err)
	}
	v, err := n.Int64()
	if err != nil {
		return fmt.Errorf("decode total: %w", err)
	}
	*t = Total{Value: int(v), Relation: "eq"}
	return nil
}

// Hit is one search hit.
type Hit struct {
	Index     string              `json:"_index"`
	Type      string              `json:"_type,omitempty"`
	ID        string              `json:"_id"`
	Score     *float64            `json:"_score"`
	Routing   string              `json:"_routing,omitempty"`
	Source    map[string]any      `json:"_source"`
	Highlight map[string][]string `json:"highlight,omitempty"`
}

// Hits is the hits envelope of a search response.
type Hits struct {
	Total    Total    `json:"total"`
	MaxScore *float64 `json:"max_score"`
	Hits     []Hit    `json:"hits"`
}

// SearchResponse is the raw search envelope the normalizer consumes.
type SearchResponse struct {
	Took         int            `json:"took"`
	TimedOut     bool           `json:"timed_out"`
	Hits         Hits           `json:"hits"`
	Aggregations map[string]any `json:"aggregations,omitempty"`
	Facets       map[string]any `json:"facets,omitempty"`
}

// GetResult is a single get (or mget entry) response.
type GetResult struct {
	Index   string         `json:"_index"`
	Type    string         `json:"_type,omitempty"`
	ID      string         `json:"_id"`
	Found   bool           `json:"found"`
	Routing string         `json:"_routing,omitempty"`
	Source  map[string]any `json:"_source"`
}

// Hit converts a get result into the hit shape the normalizer expects.
func (g *GetResult) Hit() Hit {
	return Hit{Index: g.Index, Type: g.Type, ID: g.ID, Routing: g.Routing, Source: g.Source}
}

// MGetResponse is the multi-get envelope.
type MGetResponse struct {
	Docs []GetResult `json:"docs"`
}

// BulkStats summarizes a batch write.
type BulkStats struct {
	Indexed int
	Failed  int
	Errors  []string
}
