// Package query assembles engine-native search bodies from resource
// configuration and per-call request parameters.
package query

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/esdex/internal/mapping"
	"github.com/kailas-cloud/esdex/internal/resource"
)

// Request is one search call's worth of parameters.
type Request struct {
	// Source is a raw query-body override, JSON.
	Source string
	// Text is the free-text term.
	Text string
	// TextField is the field the free-text query targets; empty means
	// the catch-all field.
	TextField string
	// Operator joins free-text terms; empty means OR.
	Operator string
	// Where is an ad-hoc condition: a JSON term document, or an
	// expression for the configured where parser.
	Where string
	// Filter is one ad-hoc filter document.
	Filter map[string]any
	// Filters are further ad-hoc filter documents.
	Filters []map[string]any
	// Lookup scopes the search to a sub-resource; every pair becomes an
	// exact term clause.
	Lookup map[string]any
	// Sort is a JSON list of [field, direction] pairs or the comma
	// shorthand "field,-other".
	Sort       string
	Page       int
	MaxResults int
	// Aggregations requests configured aggregations for this call even
	// when they are off globally.
	Aggregations bool
	// Highlight enables the resource highlight callback.
	Highlight bool
	// Projections restricts returned source fields.
	Projections []string
}

// FromValues reads the query-string parameter surface into a Request.
func FromValues(args url.Values) (*Request, error) {
	req := &Request{
		Source:       args.Get("source"),
		Text:         args.Get("q"),
		TextField:    args.Get("df"),
		Operator:     args.Get("default_operator"),
		Where:        args.Get("where"),
		Aggregations: flagOn(args.Get("aggregations")),
		Highlight:    flagOn(args.Get("es_highlight")),
	}
	if raw := args.Get("filter"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Filter); err != nil {
			return nil, fmt.Errorf("parse filter argument: %w", err)
		}
	}
	if raw := args.Get("filters"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Filters); err != nil {
			return nil, fmt.Errorf("parse filters argument: %w", err)
		}
	}
	if raw := args.Get("projections"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Projections); err != nil {
			return nil, fmt.Errorf("parse projections argument: %w", err)
		}
	}
	return req, nil
}

// flagOn reads a "0"/"1" style argument.
func flagOn(v string) bool {
	n, err := strconv.Atoi(v)
	return err == nil && n != 0
}

// Built is an assembled search request.
type Built struct {
	Body map[string]any
	// SourceFields is the comma-joined projection list, empty when the
	// call projects nothing.
	SourceFields string
}

// Builder assembles search bodies for one resource.
type Builder struct {
	res    *resource.Resource
	auto   bool
	parser WhereParser
}

// NewBuilder returns a builder for res. auto runs the resource's
// configured aggregations on every call; parser handles non-JSON where
// clauses and may be nil.
func NewBuilder(res *resource.Resource, auto bool, parser WhereParser) *Builder {
	return &Builder{res: res, auto: auto, parser: parser}
}

// Build assembles the search body for req.
func (b *Builder) Build(req *Request) (*Built, error) {
	body := emptyShell()
	var src *Source
	if req.Source != "" {
		parsed, err := ParseSource(req.Source)
		if err != nil {
			return nil, err
		}
		src = parsed
		body = src.Body
	}

	var must []any
	if req.Text != "" {
		must = append(must, textQuery(req.Text, req.TextField, req.Operator))
	}
	for _, key := range sortedKeys(req.Lookup) {
		must = append(must, map[string]any{"term": map[string]any{key: req.Lookup[key]}})
	}
	if req.Filter != nil {
		must = append(must, req.Filter)
	}
	for _, f := range req.Filters {
		if f != nil {
			must = append(must, f)
		}
	}

	if _, ok := body["sort"]; !ok {
		fields := b.res.DefaultSort
		if req.Sort != "" {
			parsed, err := parseSort(req.Sort)
			if err != nil {
				return nil, err
			}
			fields = parsed
		}
		if len(fields) > 0 {
			body["sort"] = sortClause(fields)
		}
	}

	if req.MaxResults > 0 {
		if _, ok := body["size"]; !ok {
			body["size"] = req.MaxResults
		}
	}
	if req.Page > 1 {
		if _, ok := body["from"]; !ok {
			body["from"] = (req.Page - 1) * req.MaxResults
		}
	}

	// A filter carried inside the override's query clause replaces the
	// resource-level filters; anything else merges with them.
	var filters []any
	if src != nil && src.HasFilter {
		filters = append(filters, src.Filters...)
	} else {
		if b.res.Filter != nil {
			filters = append(filters, b.res.Filter)
		}
		if b.res.FilterCallback != nil {
			if f := b.res.FilterCallback(); f != nil {
				filters = append(filters, f)
			}
		}
		if src != nil {
			filters = append(filters, src.Filters...)
		}
	}
	if req.Where != "" {
		term, err := parseWhere(req.Where, b.parser)
		if err != nil {
			return nil, err
		}
		filters = append(filters, term)
	}

	setFilters(body, must, filters)

	if b.res.Facets != nil {
		body["facets"] = b.res.Facets
	}
	if b.res.Aggregations != nil && (b.auto || req.Aggregations) {
		body["aggs"] = b.res.Aggregations
	}
	if b.res.Highlight != nil && req.Highlight {
		clause, _ := body["query"].(map[string]any)
		if spec := b.res.Highlight(clause); spec != nil {
			if _, ok := spec["require_field_match"]; !ok {
				spec["require_field_match"] = false
			}
			body["highlight"] = spec
		}
	}

	pruneEmptyBool(body)

	built := &Built{Body: body}
	if len(req.Projections) > 0 {
		built.SourceFields = strings.Join(req.Projections, ",")
	}
	return built, nil
}

func emptyShell() map[string]any {
	return map[string]any{"query": map[string]any{"bool": map[string]any{}}}
}

// setFilters merges the collected clauses into the body's bool query.
// The bool container gains a key only when the matching list is
// nonempty.
func setFilters(body map[string]any, must, filters []any) {
	clause, ok := body["query"].(map[string]any)
	if !ok {
		clause = map[string]any{}
		body["query"] = clause
	}
	boolClause, ok := clause["bool"].(map[string]any)
	if !ok {
		if len(must) == 0 && len(filters) == 0 {
			return
		}
		boolClause = map[string]any{}
		clause["bool"] = boolClause
	}
	if len(must) > 0 {
		boolClause["must"] = must
	}
	if len(filters) > 0 {
		boolClause["filter"] = filters
	}
}

// pruneEmptyBool drops an empty bool shell so a clause-free body stays
// a match-all search.
func pruneEmptyBool(body map[string]any) {
	clause, ok := body["query"].(map[string]any)
	if !ok {
		return
	}
	if boolClause, ok := clause["bool"].(map[string]any); ok && len(boolClause) == 0 {
		delete(clause, "bool")
	}
	if len(clause) == 0 {
		delete(body, "query")
	}
}

// textQuery builds the scoring clause for a free-text term. A term
// wrapped in double quotes searches the catch-all field as an exact
// phrase.
func textQuery(text, field, operator string) map[string]any {
	clean := strings.TrimSpace(text)
	if clean != "" && strings.HasPrefix(clean, `"`) && strings.HasSuffix(clean, `"`) {
		phrase := strings.Trim(clean, `"`)
		return map[string]any{"match_phrase": map[string]any{mapping.CatchAll: phrase}}
	}
	if operator == "" {
		operator = "OR"
	}
	if field == "" {
		field = mapping.CatchAll
	}
	return map[string]any{"query_string": map[string]any{
		"query":            text,
		"default_field":    field,
		"default_operator": operator,
	}}
}

func sortedKeys(m map[string]any) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
