package query

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/esdex/internal/resource"
)

// parseSort accepts a JSON list of [field, direction] pairs, with
// positive direction meaning ascending, or the comma shorthand
// "field,-other".
func parseSort(raw string) ([]resource.SortField, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var entries []any
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			return nil, fmt.Errorf("parse sort: %w", err)
		}
		out := make([]resource.SortField, 0, len(entries))
		for _, entry := range entries {
			switch v := entry.(type) {
			case string:
				out = append(out, sortShorthand(v))
			case []any:
				field, err := sortPair(v)
				if err != nil {
					return nil, err
				}
				out = append(out, field)
			default:
				return nil, fmt.Errorf("parse sort: unsupported entry %v", entry)
			}
		}
		return out, nil
	}
	var out []resource.SortField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, sortShorthand(part))
	}
	return out, nil
}

func sortPair(pair []any) (resource.SortField, error) {
	if len(pair) != 2 {
		return resource.SortField{}, fmt.Errorf("parse sort: want [field, direction] pair, got %v", pair)
	}
	field, ok := pair[0].(string)
	dir, okDir := pair[1].(float64)
	if !ok || !okDir {
		return resource.SortField{}, fmt.Errorf("parse sort: want [field, direction] pair, got %v", pair)
	}
	order := 1
	if dir <= 0 {
		order = -1
	}
	return resource.SortField{Field: field, Order: order}, nil
}

func sortShorthand(s string) resource.SortField {
	if strings.HasPrefix(s, "-") {
		return resource.SortField{Field: strings.TrimPrefix(s, "-"), Order: -1}
	}
	return resource.SortField{Field: s, Order: 1}
}

// sortClause renders sort fields into the wire form. The unmapped_type
// fallback keeps sorting from failing on fields absent from some
// documents.
func sortClause(fields []resource.SortField) []any {
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		order := "desc"
		if f.Order > 0 {
			order = "asc"
		}
		out = append(out, map[string]any{f.Field: map[string]any{
			"order":         order,
			"unmapped_type": "long",
		}})
	}
	return out
}
