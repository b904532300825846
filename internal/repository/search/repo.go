// Package search executes resource searches and by-id lookups,
// normalizing raw engine responses into cursors.
package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/esdex/internal/engine"
	"github.com/kailas-cloud/esdex/internal/query"
	"github.com/kailas-cloud/esdex/internal/resource"
	"github.com/kailas-cloud/esdex/internal/result"
	"github.com/kailas-cloud/esdex/internal/schema"
)

// resolver is the consumer interface for index resolution (ISP).
type resolver interface {
	Resolve(res *resource.Resource) string
	Store(res *resource.Resource) (engine.Store, error)
}

// Repo runs searches for registered resources.
type Repo struct {
	registry *resource.Registry
	cfg      *resource.Config
	resolver resolver
	parser   query.WhereParser
}

// New creates a search repository. parser may be nil when where
// clauses are always JSON.
func New(registry *resource.Registry, cfg *resource.Config, r resolver, parser query.WhereParser) *Repo {
	return &Repo{registry: registry, cfg: cfg, resolver: r, parser: parser}
}

// Find runs one search and returns the normalized cursor. A resource
// queried before its index holds any mapping yields an empty cursor;
// a query the engine cannot parse yields ErrInvalidSearch.
func (r *Repo) Find(ctx context.Context, resourceName string, req *query.Request) (*result.Cursor, error) {
	res, err := r.registry.Lookup(resourceName)
	if err != nil {
		return nil, err
	}
	built, err := query.NewBuilder(res, r.cfg.AutoAggregationsOn(), r.parser).Build(req)
	if err != nil {
		return nil, err
	}
	store, err := r.resolver.Store(res)
	if err != nil {
		return nil, err
	}
	index := r.resolver.Resolve(res)

	raw, err := store.Search(ctx, index, built.Body, engine.SearchOptions{SourceFields: built.SourceFields})
	if err != nil {
		switch {
		case engine.IsMissingMapping(err) || engine.IsIndexMissing(err):
			return result.Empty(), nil
		case engine.IsSearchParse(err):
			return nil, fmt.Errorf("%w: %v", engine.ErrInvalidSearch, err)
		default:
			return nil, fmt.Errorf("search %s: %w", resourceName, err)
		}
	}
	return r.normalizer(res).Search(raw), nil
}

// FindOne returns a single document. A lookup keyed by the identifier
// goes through the by-id path; anything else becomes a term-filter
// search bounded to one result. A missing document is nil, not an
// error.
func (r *Repo) FindOne(ctx context.Context, resourceName string, lookup map[string]any) (map[string]any, error) {
	res, err := r.registry.Lookup(resourceName)
	if err != nil {
		return nil, err
	}
	if id, ok := lookup[schema.IDField]; ok {
		parent, _ := lookup["parent"].(string)
		return r.byID(ctx, res, stringify(id), parent)
	}

	store, err := r.resolver.Store(res)
	if err != nil {
		return nil, err
	}
	filters := make([]any, 0, len(lookup))
	for _, key := range sortedKeys(lookup) {
		filters = append(filters, map[string]any{"term": map[string]any{key: lookup[key]}})
	}
	body := map[string]any{
		"query": map[string]any{"bool": map[string]any{"filter": filters}},
		"size":  1,
	}
	raw, err := store.Search(ctx, r.resolver.Resolve(res), body, engine.SearchOptions{})
	if err != nil {
		if engine.IsNotFound(err) || engine.IsIndexMissing(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find one %s: %w", resourceName, err)
	}
	return r.normalizer(res).Search(raw).First(), nil
}

// FindByID is the identifier-only variant of FindOne.
func (r *Repo) FindByID(ctx context.Context, resourceName, id string) (map[string]any, error) {
	res, err := r.registry.Lookup(resourceName)
	if err != nil {
		return nil, err
	}
	return r.byID(ctx, res, id, "")
}

// byID fetches a document directly. When the engine rejects the get
// because the document needs routing the caller did not supply, the
// lookup falls back to an id-term search, which reaches the document
// on whatever shard its parent routed it to.
func (r *Repo) byID(ctx context.Context, res *resource.Resource, id, parent string) (map[string]any, error) {
	store, err := r.resolver.Store(res)
	if err != nil {
		return nil, err
	}
	index := r.resolver.Resolve(res)

	got, err := store.Get(ctx, index, id, parent)
	if err == nil {
		return r.normalizer(res).Get(got).First(), nil
	}
	if engine.IsNotFound(err) {
		return nil, nil
	}
	if engine.IsRoutingMissing(err) {
		body := map[string]any{
			"query": map[string]any{"bool": map[string]any{
				"must": []any{map[string]any{"term": map[string]any{schema.IDField: id}}},
			}},
			"size": 1,
		}
		raw, serr := store.Search(ctx, index, body, engine.SearchOptions{})
		if serr != nil {
			if engine.IsNotFound(serr) || engine.IsIndexMissing(serr) {
				return nil, nil
			}
			return nil, fmt.Errorf("find by id %s: %w", res.Name, serr)
		}
		return r.normalizer(res).Search(raw).First(), nil
	}
	return nil, fmt.Errorf("get %s/%s: %w", res.Name, id, err)
}

// FindByIDs runs a multi-get and returns the found documents.
func (r *Repo) FindByIDs(ctx context.Context, resourceName string, ids []string) (*result.Cursor, error) {
	res, err := r.registry.Lookup(resourceName)
	if err != nil {
		return nil, err
	}
	store, err := r.resolver.Store(res)
	if err != nil {
		return nil, err
	}
	raw, err := store.MGet(ctx, r.resolver.Resolve(res), ids)
	if err != nil {
		return nil, fmt.Errorf("mget %s: %w", resourceName, err)
	}
	return r.normalizer(res).MGet(raw), nil
}

// IsEmpty reports whether the resource's index holds no documents.
func (r *Repo) IsEmpty(ctx context.Context, resourceName string) (bool, error) {
	res, err := r.registry.Lookup(resourceName)
	if err != nil {
		return false, err
	}
	store, err := r.resolver.Store(res)
	if err != nil {
		return false, err
	}
	body := map[string]any{"query": map[string]any{"match_all": map[string]any{}}}
	n, err := store.Count(ctx, r.resolver.Resolve(res), body)
	if err != nil {
		if engine.IsIndexMissing(err) {
			return true, nil
		}
		return false, fmt.Errorf("count %s: %w", resourceName, err)
	}
	return n == 0, nil
}

func (r *Repo) normalizer(res *resource.Resource) *result.Normalizer {
	return result.NewNormalizer(r.registry.MergedSchema(res))
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
