package esdex

import (
	"fmt"

	"github.com/kailas-cloud/esdex/internal/resource"
	"github.com/kailas-cloud/esdex/internal/schema"
)

// FieldType is the semantic type of a schema field.
type FieldType string

// Supported field types.
const (
	Text     FieldType = "text"
	Keyword  FieldType = "keyword"
	Datetime FieldType = "datetime"
	Dict     FieldType = "dict"
	List     FieldType = "list"
	Join     FieldType = "join"
	ObjectID FieldType = "objectid"
	Integer  FieldType = "integer"
)

// Field describes one schema field.
type Field struct {
	Type FieldType
	// Schema nests fields under a dict field.
	Schema Schema
	// Items describes a list field's element.
	Items *Field
	// Mapping overrides the derived engine mapping verbatim.
	Mapping map[string]any
	// IgnoreMalformed keeps bad values in a datetime field from
	// failing the whole document.
	IgnoreMalformed *bool
	// Relations declares parent/child names for a join field.
	Relations map[string]any
}

// Schema maps field names to descriptors.
type Schema map[string]Field

// Datasource points a resource at its backing source. Backend or
// SearchBackend set to "elastic" marks the resource as served by this
// layer; both empty defaults to elastic.
type Datasource struct {
	Backend       string
	SearchBackend string
	// Source names another resource whose index this one reads.
	Source string
}

// SortField is one sort entry; positive Order means ascending.
type SortField struct {
	Field string
	Order int
}

// Resource declares one searchable resource.
type Resource struct {
	Name       string
	Schema     Schema
	Datasource Datasource
	// DefaultSort applies when a search specifies no sort of its own.
	DefaultSort []SortField
	// Filter is a static filter applied to every search.
	Filter map[string]any
	// FilterCallback produces a per-call filter; nil results are
	// skipped.
	FilterCallback func() map[string]any
	// Aggregations run when aggregations are enabled for the call.
	Aggregations map[string]any
	// Facets are appended to every search body verbatim.
	Facets map[string]any
	// Highlight builds a highlight spec from the current query clause.
	Highlight func(query map[string]any) map[string]any
	// Settings merge over the cluster settings for this resource's
	// index.
	Settings map[string]any
	// Prefix selects the cluster the resource lives on.
	Prefix string
}

func (f Field) internal() schema.Field {
	out := schema.Field{
		Type:            schema.Type(f.Type),
		Mapping:         f.Mapping,
		IgnoreMalformed: f.IgnoreMalformed,
		Relations:       f.Relations,
	}
	if f.Schema != nil {
		out.Schema = f.Schema.internal()
	}
	if f.Items != nil {
		item := f.Items.internal()
		out.Items = &item
	}
	return out
}

func (s Schema) internal() schema.Schema {
	if s == nil {
		return nil
	}
	out := make(schema.Schema, len(s))
	for name, f := range s {
		out[name] = f.internal()
	}
	return out
}

func (r Resource) internal() (*resource.Resource, error) {
	if r.Name == "" {
		return nil, fmt.Errorf("esdex: resource name is required")
	}
	ds := resource.Datasource{
		Backend:       r.Datasource.Backend,
		SearchBackend: r.Datasource.SearchBackend,
		Source:        r.Datasource.Source,
	}
	if ds.Backend == "" && ds.SearchBackend == "" {
		ds.Backend = resource.ElasticBackend
	}
	res := &resource.Resource{
		Name:           r.Name,
		Schema:         r.Schema.internal(),
		Datasource:     ds,
		Filter:         r.Filter,
		FilterCallback: r.FilterCallback,
		Aggregations:   r.Aggregations,
		Facets:         r.Facets,
		Highlight:      r.Highlight,
		Settings:       r.Settings,
		Prefix:         r.Prefix,
	}
	for _, s := range r.DefaultSort {
		res.DefaultSort = append(res.DefaultSort, resource.SortField{Field: s.Field, Order: s.Order})
	}
	return res, nil
}
