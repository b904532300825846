package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/esdex/internal/engine"
	"github.com/kailas-cloud/esdex/internal/resource"
	"github.com/kailas-cloud/esdex/internal/schema"
)

// mockStore stubs the engine surface this repository touches. The
// embedded interface panics on anything it does not expect to be
// called.
type mockStore struct {
	engine.Store

	searchFn func(ctx context.Context, index string, body map[string]any, opts engine.SearchOptions) (*engine.SearchResponse, error)
	getFn    func(ctx context.Context, index, id, routing string) (*engine.GetResult, error)
	mgetFn   func(ctx context.Context, index string, ids []string) ([]engine.GetResult, error)
	countFn  func(ctx context.Context, index string, body map[string]any) (int, error)
}

func (m *mockStore) Search(ctx context.Context, index string, body map[string]any, opts engine.SearchOptions) (*engine.SearchResponse, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, index, body, opts)
	}
	return &engine.SearchResponse{}, nil
}

func (m *mockStore) Get(ctx context.Context, index, id, routing string) (*engine.GetResult, error) {
	if m.getFn != nil {
		return m.getFn(ctx, index, id, routing)
	}
	return &engine.GetResult{}, nil
}

func (m *mockStore) MGet(ctx context.Context, index string, ids []string) ([]engine.GetResult, error) {
	if m.mgetFn != nil {
		return m.mgetFn(ctx, index, ids)
	}
	return nil, nil
}

func (m *mockStore) Count(ctx context.Context, index string, body map[string]any) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, index, body)
	}
	return 0, nil
}

// mockResolver pins every resource to one index and store.
type mockResolver struct {
	store engine.Store
	index string
}

func (m *mockResolver) Resolve(*resource.Resource) string { return m.index }

func (m *mockResolver) Store(*resource.Resource) (engine.Store, error) {
	return m.store, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	registry := resource.NewRegistry()
	if err := registry.Add(&resource.Resource{
		Name:       "items",
		Datasource: resource.Datasource{Backend: resource.ElasticBackend},
		Schema: schema.Schema{
			"headline":     {Type: schema.Text},
			"firstcreated": {Type: schema.Datetime},
		},
	}); err != nil {
		t.Fatalf("register items: %v", err)
	}
	cfg := &resource.Config{}
	cfg.ApplyDefaults()

	ms := &mockStore{}
	repo := New(registry, cfg, &mockResolver{store: ms, index: "app_items"}, nil)
	return repo, ms
}

// oneHit builds a search response holding a single document.
func oneHit(id string, source map[string]any) *engine.SearchResponse {
	res := &engine.SearchResponse{}
	res.Hits.Total.Value = 1
	res.Hits.Hits = []engine.Hit{{ID: id, Source: source}}
	return res
}
