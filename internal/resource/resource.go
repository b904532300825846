// Package resource holds resource definitions, the registry over them,
// and the runtime settings that drive index resolution and writes.
package resource

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/esdex/internal/schema"
)

// ErrUnknown reports a resource name nothing was registered under.
var ErrUnknown = errors.New("resource: not registered")

// ElasticBackend marks a datasource as engine-backed.
const ElasticBackend = "elastic"

// Datasource points a resource at its backing source.
type Datasource struct {
	// Backend / SearchBackend mark the resource as engine-backed when
	// either equals "elastic".
	Backend       string
	SearchBackend string
	// Source names another resource whose index this one reads; empty
	// means the resource owns its index.
	Source string
}

// IsElastic reports whether the resource is served by this layer.
func (d Datasource) IsElastic() bool {
	return d.Backend == ElasticBackend || d.SearchBackend == ElasticBackend
}

// SortField is one sort entry: a field name and a direction, positive
// for ascending.
type SortField struct {
	Field string
	Order int
}

// FilterFunc produces a dynamic resource filter. A nil result means no
// filter this time.
type FilterFunc func() map[string]any

// HighlightFunc builds a highlight spec from the current query clause.
// A nil result disables highlighting for the call.
type HighlightFunc func(query map[string]any) map[string]any

// Resource is one registered resource definition.
type Resource struct {
	Name        string
	Schema      schema.Schema
	Datasource  Datasource
	DefaultSort []SortField
	// Filter is the static resource filter, always applied.
	Filter map[string]any
	// FilterCallback is invoked per search with no arguments.
	FilterCallback FilterFunc
	Aggregations   map[string]any
	Facets         map[string]any
	Highlight      HighlightFunc
	// Settings merge over the cluster-level settings document.
	Settings map[string]any
	// Prefix names the cluster this resource lives on; empty means the
	// default cluster.
	Prefix string
}

// SourceName returns the resource whose index backs this one.
func (r *Resource) SourceName() string {
	if r.Datasource.Source != "" {
		return r.Datasource.Source
	}
	return r.Name
}

// IsCore reports whether the resource owns its index rather than
// aliasing another resource's.
func (r *Resource) IsCore() bool {
	return r.SourceName() == r.Name
}

// Registry holds registered resources in registration order.
type Registry struct {
	resources map[string]*Resource
	order     []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{resources: make(map[string]*Resource)}
}

// Add validates and registers a resource. Re-registering a name replaces
// the previous definition.
func (g *Registry) Add(r *Resource) error {
	if r == nil || r.Name == "" {
		return fmt.Errorf("resource name is required")
	}
	if err := r.Schema.Validate(); err != nil {
		return fmt.Errorf("resource %q: %w", r.Name, err)
	}
	if _, exists := g.resources[r.Name]; !exists {
		g.order = append(g.order, r.Name)
	}
	g.resources[r.Name] = r
	return nil
}

// Get returns a registered resource.
func (g *Registry) Get(name string) (*Resource, bool) {
	r, ok := g.resources[name]
	return r, ok
}

// Lookup returns a registered resource or ErrUnknown.
func (g *Registry) Lookup(name string) (*Resource, error) {
	if r, ok := g.resources[name]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
}

// Elastic returns the engine-backed resources in registration order.
func (g *Registry) Elastic() []*Resource {
	out := make([]*Resource, 0, len(g.order))
	for _, name := range g.order {
		if r := g.resources[name]; r.Datasource.IsElastic() {
			out = append(out, r)
		}
	}
	return out
}

// MergedSchema unions the source resource's schema under the resource's
// own, so aliased resources see every field their index carries.
func (g *Registry) MergedSchema(r *Resource) schema.Schema {
	if r.Datasource.Source == "" {
		return r.Schema
	}
	src, ok := g.resources[r.Datasource.Source]
	if !ok {
		return r.Schema
	}
	return schema.Merge(src.Schema, r.Schema)
}
