package query

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidWhere marks a where clause that neither JSON decoding nor
// the configured parser could make sense of.
var ErrInvalidWhere = errors.New("query: invalid where clause")

// WhereParser turns a non-JSON where expression into a field/value
// document. Implementations are schema aware; the builder only wraps
// the result in a term clause.
type WhereParser interface {
	ParseWhere(where string) (map[string]any, error)
}

// parseWhere tries the where clause as JSON first and falls back to
// the configured parser.
func parseWhere(where string, parser WhereParser) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(where), &doc); err == nil {
		return map[string]any{"term": doc}, nil
	}
	if parser != nil {
		doc, err := parser.ParseWhere(where)
		if err == nil && doc != nil {
			return map[string]any{"term": doc}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidWhere, where)
}
