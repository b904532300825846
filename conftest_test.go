package esdex

import (
	"context"
	"testing"

	"github.com/kailas-cloud/esdex/internal/engine"
)

// mockStore implements engine.Store for tests.
type mockStore struct {
	pingFn          func(ctx context.Context) error
	createIndexFn   func(ctx context.Context, index string, body map[string]any) error
	deleteIndexFn   func(ctx context.Context, index string) error
	indexExistsFn   func(ctx context.Context, index string) (bool, error)
	putAliasFn      func(ctx context.Context, index, alias string) error
	getAliasFn      func(ctx context.Context, alias string) ([]string, error)
	updateAliasesFn func(ctx context.Context, actions []map[string]any) error
	getMappingFn    func(ctx context.Context, index string) (map[string]any, error)
	putMappingFn    func(ctx context.Context, index string, body map[string]any) error
	getSettingsFn   func(ctx context.Context, index string) (map[string]any, error)
	putSettingsFn   func(ctx context.Context, index string, body map[string]any) error
	closeIndexFn    func(ctx context.Context, index string) error
	openIndexFn     func(ctx context.Context, index string) error
	refreshFn       func(ctx context.Context, index string) error
	reindexFn       func(ctx context.Context, source, dest string) error
	indexFn         func(ctx context.Context, index, id string, doc map[string]any, opts engine.WriteOptions) (string, error)
	updateFn        func(ctx context.Context, index, id string, fields map[string]any, opts engine.WriteOptions) error
	deleteFn        func(ctx context.Context, index, id string, opts engine.WriteOptions) error
	getFn           func(ctx context.Context, index, id, routing string) (*engine.GetResult, error)
	mgetFn          func(ctx context.Context, index string, ids []string) ([]engine.GetResult, error)
	countFn         func(ctx context.Context, index string, body map[string]any) (int, error)
	searchFn        func(ctx context.Context, index string, body map[string]any, opts engine.SearchOptions) (*engine.SearchResponse, error)
	bulkFn          func(ctx context.Context, index string, items []engine.BulkItem, opts engine.WriteOptions) (*engine.BulkStats, error)

	closed bool
}

func (m *mockStore) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

func (m *mockStore) CreateIndex(ctx context.Context, index string, body map[string]any) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, index, body)
	}
	return nil
}

func (m *mockStore) DeleteIndex(ctx context.Context, index string) error {
	if m.deleteIndexFn != nil {
		return m.deleteIndexFn(ctx, index)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, index string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, index)
	}
	return false, nil
}

func (m *mockStore) PutAlias(ctx context.Context, index, alias string) error {
	if m.putAliasFn != nil {
		return m.putAliasFn(ctx, index, alias)
	}
	return nil
}

func (m *mockStore) GetAlias(ctx context.Context, alias string) ([]string, error) {
	if m.getAliasFn != nil {
		return m.getAliasFn(ctx, alias)
	}
	return nil, nil
}

func (m *mockStore) UpdateAliases(ctx context.Context, actions []map[string]any) error {
	if m.updateAliasesFn != nil {
		return m.updateAliasesFn(ctx, actions)
	}
	return nil
}

func (m *mockStore) GetMapping(ctx context.Context, index string) (map[string]any, error) {
	if m.getMappingFn != nil {
		return m.getMappingFn(ctx, index)
	}
	return nil, nil
}

func (m *mockStore) PutMapping(ctx context.Context, index string, body map[string]any) error {
	if m.putMappingFn != nil {
		return m.putMappingFn(ctx, index, body)
	}
	return nil
}

func (m *mockStore) GetSettings(ctx context.Context, index string) (map[string]any, error) {
	if m.getSettingsFn != nil {
		return m.getSettingsFn(ctx, index)
	}
	return nil, nil
}

func (m *mockStore) PutSettings(ctx context.Context, index string, body map[string]any) error {
	if m.putSettingsFn != nil {
		return m.putSettingsFn(ctx, index, body)
	}
	return nil
}

func (m *mockStore) CloseIndex(ctx context.Context, index string) error {
	if m.closeIndexFn != nil {
		return m.closeIndexFn(ctx, index)
	}
	return nil
}

func (m *mockStore) OpenIndex(ctx context.Context, index string) error {
	if m.openIndexFn != nil {
		return m.openIndexFn(ctx, index)
	}
	return nil
}

func (m *mockStore) Refresh(ctx context.Context, index string) error {
	if m.refreshFn != nil {
		return m.refreshFn(ctx, index)
	}
	return nil
}

func (m *mockStore) Reindex(ctx context.Context, source, dest string) error {
	if m.reindexFn != nil {
		return m.reindexFn(ctx, source, dest)
	}
	return nil
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

func (m *mockStore) Search(ctx context.Context, index string, body map[string]any, opts engine.SearchOptions) (*engine.SearchResponse, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, index, body, opts)
	}
	return &engine.SearchResponse{}, nil
}

func (m *mockStore) Bulk(ctx context.Context, index string, items []engine.BulkItem, opts engine.WriteOptions) (*engine.BulkStats, error) {
	if m.bulkFn != nil {
		return m.bulkFn(ctx, index, items, opts)
	}
	return &engine.BulkStats{}, nil
}

func (m *mockStore) Close() { m.closed = true }

// newTestClient builds a client over a seeded mock store with one
// registered resource.
func newTestClient(t *testing.T, opts ...Option) (*Client, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	opts = append([]Option{WithIndexPrefix("app_"), withStore(ms)}, opts...)
	client, err := New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(client.Close)

	if err := client.Register(Resource{
		Name: "items",
		Schema: Schema{
			"headline":     {Type: Text},
			"firstcreated": {Type: Datetime},
		},
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return client, ms
}

// oneHit builds a search response holding a single document.
func oneHit(id string, source map[string]any) *engine.SearchResponse {
	res := &engine.SearchResponse{}
	res.Hits.Total.Value = 1
	res.Hits.Hits = []engine.Hit{{ID: id, Source: source}}
	return res
}
