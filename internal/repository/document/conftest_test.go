package document

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

	indexFn   func(ctx context.Context, index, id string, doc map[string]any, opts engine.WriteOptions) (string, error)
	updateFn  func(ctx context.Context, index, id string, fields map[string]any, opts engine.WriteOptions) error
	deleteFn  func(ctx context.Context, index, id string, opts engine.WriteOptions) error
	bulkFn    func(ctx context.Context, index string, items []engine.BulkItem, opts engine.WriteOptions) (*engine.BulkStats, error)
	refreshFn func(ctx context.Context, index string) error
}

func (m *mockStore) Index(ctx context.Context, index, id string, doc map[string]any, opts engine.WriteOptions) (string, error) {
	if m.indexFn != nil {
		return m.indexFn(ctx, index, id, doc, opts)
	}
	return id, nil
}

func (m *mockStore) Update(ctx context.Context, index, id string, fields map[string]any, opts engine.WriteOptions) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, index, id, fields, opts)
	}
	return nil
}

func (m *mockStore) Delete(ctx context.Context, index, id string, opts engine.WriteOptions) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, index, id, opts)
	}
	return nil
}

func (m *mockStore) Bulk(ctx context.Context, index string, items []engine.BulkItem, opts engine.WriteOptions) (*engine.BulkStats, error) {
	if m.bulkFn != nil {
		return m.bulkFn(ctx, index, items, opts)
	}
	return &engine.BulkStats{}, nil
}

func (m *mockStore) Refresh(ctx context.Context, index string) error {
	if m.refreshFn != nil {
		return m.refreshFn(ctx, index)
	}
	return nil
}

// mockResolver prefixes source names the way a configured cluster would.
type mockResolver struct {
	store engine.Store
}

func (m *mockResolver) Resolve(res *resource.Resource) string {
	return "app_" + res.SourceName()
}

func (m *mockResolver) Store(*resource.Resource) (engine.Store, error) {
	return m.store, nil
}

// newTestRepo builds a repository over two resources: plain "items" and
// parent-routed "comments".
func newTestRepo(t *testing.T, forceRefresh bool) (*Repo, *mockStore) {
	t.Helper()
	registry := resource.NewRegistry()
	definitions := []*resource.Resource{
		{
			Name:       "items",
			Datasource: resource.Datasource{Backend: resource.ElasticBackend},
			Schema: schema.Schema{
				"headline": {Type: schema.Text},
			},
		},
		{
			Name:       "comments",
			Datasource: resource.Datasource{Backend: resource.ElasticBackend},
			Schema: schema.Schema{
				"body": {Type: schema.Text},
				"rel":  {Type: schema.Join, Relations: map[string]any{"item": "comment"}},
			},
		},
	}
	for _, res := range definitions {
		if err := registry.Add(res); err != nil {
			t.Fatalf("register %s: %v", res.Name, err)
		}
	}
	cfg := &resource.Config{ForceRefresh: &forceRefresh}
	cfg.ApplyDefaults()

	ms := &mockStore{}
	repo := New(registry, cfg, &mockResolver{store: ms})
	return repo, ms
}
