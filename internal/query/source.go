package query

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/kailas-cloud/esdex/internal/mapping"
)

// Source is a parsed raw-query override. The override's query clause is
// lifted into filter context; whatever else the override carried seeds
// the body.
type Source struct {
	// Body is the override with its query clause reset to an empty
	// bool shell.
	Body map[string]any
	// Filters holds the lifted filter entries.
	Filters []any
	// HasFilter reports that the override's query clause carried an
	// explicit filter key. Such a filter replaces the resource-level
	// filters instead of merging with them.
	HasFilter bool
}

// ParseSource parses a raw query-body override.
//
// An override whose query clause contains a filter key keeps its other
// body keys (sort, size, aggs); only the filter entries move out and
// the clause resets. Any other override is reduced to its query clause,
// which moves to filter context wholesale.
func ParseSource(raw string) (*Source, error) {
	var body map[string]any
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return nil, fmt.Errorf("parse source query: %w", err)
	}

	src := &Source{}
	clause, _ := body["query"].(map[string]any)
	if f, ok := clause["filter"]; ok {
		src.HasFilter = true
		src.Filters = asList(f)
		body["query"] = map[string]any{"bool": map[string]any{}}
		src.Body = body
		return src, nil
	}
	if clause != nil {
		src.Filters = []any{clause}
	}
	src.Body = emptyShell()
	return src, nil
}

func asList(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}

// BuildSourceQuery converts a flat {"q": text, field: value} document
// into a full search body usable as a source override. The "q" entry
// becomes the scoring clause; every other entry becomes an exact term
// filter, or a terms filter for list values.
func BuildSourceQuery(doc map[string]any) map[string]any {
	boolClause := map[string]any{}
	var filters []any
	for _, key := range sortedKeys(doc) {
		if key == "q" {
			continue
		}
		value := doc[key]
		if kind := reflect.ValueOf(value).Kind(); kind == reflect.Slice || kind == reflect.Array {
			filters = append(filters, map[string]any{"terms": map[string]any{key: value}})
		} else {
			filters = append(filters, map[string]any{"term": map[string]any{key: value}})
		}
	}
	if text, ok := doc["q"].(string); ok {
		boolClause["must"] = []any{sourceTextQuery(text)}
	}
	if len(filters) > 0 {
		boolClause["filter"] = filters
	}
	return map[string]any{"query": map[string]any{"bool": boolClause}}
}

// sourceTextQuery joins terms with AND and targets no particular field,
// the stricter defaults of the source-override surface.
func sourceTextQuery(text string) map[string]any {
	clean := strings.TrimSpace(text)
	if clean != "" && strings.HasPrefix(clean, `"`) && strings.HasSuffix(clean, `"`) {
		phrase := strings.Trim(clean, `"`)
		return map[string]any{"match_phrase": map[string]any{mapping.CatchAll: phrase}}
	}
	return map[string]any{"query_string": map[string]any{
		"query":            text,
		"lenient":          false,
		"default_operator": "AND",
	}}
}
