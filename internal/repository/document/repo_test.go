package document

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kailas-cloud/esdex/internal/engine"
	"github.com/kailas-cloud/esdex/internal/resource"
	"github.com/kailas-cloud/esdex/internal/schema"
)

// --- Insert ---

func TestInsert(t *testing.T) {
	ctx := context.Background()
	repo, ms := newTestRepo(t, false)
	ms.indexFn = func(_ context.Context, index, id string, doc map[string]any, _ engine.WriteOptions) (string, error) {
		if index != "app_items" {
			t.Errorf("unexpected index: %q", index)
		}
		if id != "doc-1" {
			t.Errorf("unexpected id: %q", id)
		}
		if _, ok := doc[schema.IDField]; ok {
			t.Errorf("identifier left in body: %v", doc)
		}
		return "doc-1", nil
	}

	doc := map[string]any{schema.IDField: "doc-1", "headline": "fish"}
	ids, err := repo.Insert(ctx, "items", []map[string]any{doc})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 || ids[0] != "doc-1" {
		t.Fatalf("unexpected ids: %v", ids)
	}
	if doc[schema.IDField] != "doc-1" {
		t.Fatalf("identifier not restored: %v", doc)
	}
}

func TestInsert_GeneratedID(t *testing.T) {
	ctx := context.Background()
	repo, ms := newTestRepo(t, false)
	ms.indexFn = func(_ context.Context, _, id string, _ map[string]any, _ engine.WriteOptions) (string, error) {
		if id != "" {
			t.Errorf("expected no client id, got %q", id)
		}
		return "engine-1", nil
	}

	doc := map[string]any{"headline": "fish"}
	ids, err := repo.Insert(ctx, "items", []map[string]any{doc})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ids[0] != "engine-1" {
		t.Fatalf("unexpected ids: %v", ids)
	}
	if doc[schema.IDField] != "engine-1" {
		t.Fatalf("engine id not written back: %v", doc)
	}
}

func TestInsert_NumericID(t *testing.T) {
	ctx := context.Background()
	repo, ms := newTestRepo(t, false)
	ms.indexFn = func(_ context.Context, _, id string, _ map[string]any, _ engine.WriteOptions) (string, error) {
		if id != "123" {
			t.Errorf("unexpected id: %q", id)
		}
		return id, nil
	}

	_, err := repo.Insert(ctx, "items", []map[string]any{{schema.IDField: 123}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInsert_ParentRouting(t *testing.T) {
	ctx := context.Background()
	repo, ms := newTestRepo(t, false)
	ms.indexFn = func(_ context.Context, index, _ string, _ map[string]any, opts engine.WriteOptions) (string, error) {
		if index != "app_comments" {
			t.Errorf("unexpected index: %q", index)
		}
		if opts.Routing != "item-1" {
			t.Errorf("unexpected routing: %q", opts.Routing)
		}
		return "comment-1", nil
	}

	_, err := repo.Insert(ctx, "comments", []map[string]any{{
		"body": "nice",
		"rel":  map[string]any{"name": "comment", "parent": "item-1"},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInsert_Refresh(t *testing.T) {
	ctx := context.Background()
	repo, ms := newTestRepo(t, true)
	var refreshed []string
	ms.refreshFn = func(_ context.Context, index string) error {
		refreshed = append(refreshed, index)
		return nil
	}

	_, err := repo.Insert(ctx, "items", []map[string]any{
		{"headline": "fish"},
		{"headline": "chips"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(refreshed) != 1 || refreshed[0] != "app_items" {
		t.Fatalf("expected one refresh of the index, got %v", refreshed)
	}
}

func TestInsert_NoRefresh(t *testing.T) {
	ctx := context.Background()
	repo, ms := newTestRepo(t, false)
	ms.refreshFn = func(_ context.Context, index string) error {
		t.Errorf("unexpected refresh of %q", index)
		return nil
	}

	_, err := repo.Insert(ctx, "items", []map[string]any{{"headline": "fish"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInsert_EngineFailure(t *testing.T) {
	ctx := context.Background()
	repo, ms := newTestRepo(t, false)
	var calls int
	ms.indexFn = func(_ context.Context, _, id string, _ map[string]any, _ engine.WriteOptions) (string, error) {
		calls++
		if calls > 1 {
			return "", fmt.Errorf("disk full")
		}
		return id, nil
	}

	ids, err := repo.Insert(ctx, "items", []map[string]any{
		{schema.IDField: "doc-1"},
		{schema.IDField: "doc-2"},
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(ids) != 1 || ids[0] != "doc-1" {
		t.Fatalf("expected the successful ids, got %v", ids)
	}
}

func TestInsert_UnknownResource(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t, false)

	_, err := repo.Insert(ctx, "nope", nil)
	if !errors.Is(err, resource.ErrUnknown) {
		t.Fatalf("expected ErrUnknown, got %v", err)
	}
}

// --- BulkInsert ---

func TestBulkInsert(t *testing.T) {
	ctx := context.Background()
	repo, ms := newTestRepo(t, true)
	ms.bulkFn = func(_ context.Context, index string, items []engine.BulkItem, opts engine.WriteOptions) (*engine.BulkStats, error) {
		if index != "app_items" {
			t.Errorf("unexpected index: %q", index)
		}
		if !opts.Refresh {
			t.Error("expected a refreshing batch")
		}
		if len(items) != 2 {
			t.Fatalf("unexpected items: %v", items)
		}
		if items[0].ID != "doc-1" || items[1].ID != "" {
			t.Errorf("unexpected ids: %q, %q", items[0].ID, items[1].ID)
		}
		if _, ok := items[0].Doc[schema.IDField]; ok {
			t.Errorf("identifier left in body: %v", items[0].Doc)
		}
		return &engine.BulkStats{Indexed: 2}, nil
	}

	stats, err := repo.BulkInsert(ctx, "items", []map[string]any{
		{schema.IDField: "doc-1", "headline": "fish"},
		{"headline": "chips"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Indexed != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestBulkInsert_ParentRouting(t *testing.T) {
	ctx := context.Background()
	repo, ms := newTestRepo(t, false)
	ms.bulkFn = func(_ context.Context, _ string, items []engine.BulkItem, opts engine.WriteOptions) (*engine.BulkStats, error) {
		if opts.Refresh {
			t.Error("expected no refresh")
		}
		if items[0].Routing != "item-1" {
			t.Errorf("unexpected routing: %q", items[0].Routing)
		}
		return &engine.BulkStats{Indexed: 1}, nil
	}

	_, err := repo.BulkInsert(ctx, "comments", []map[string]any{{
		"body": "nice",
		"rel":  map[string]any{"name": "comment", "parent": "item-1"},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- Update ---

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	repo, ms := newTestRepo(t, false)
	ms.updateFn = func(_ context.Context, index, id string, fields map[string]any, opts engine.WriteOptions) error {
		if index != "app_items" || id != "doc-1" {
			t.Errorf("unexpected update target: %s/%s", index, id)
		}
		if _, ok := fields[schema.IDField]; ok {
			t.Errorf("identifier left in update: %v", fields)
		}
		if _, ok := fields[schema.TypeField]; ok {
			t.Errorf("type left in update: %v", fields)
		}
		if !opts.Refresh {
			t.Error("expected a refreshing update")
		}
		if opts.RetryOnConflict != resource.DefaultRetryOnConflict {
			t.Errorf("unexpected retry count: %d", opts.RetryOnConflict)
		}
		return nil
	}

	err := repo.Update(ctx, "items", "doc-1", map[string]any{
		schema.IDField:   "doc-1",
		schema.TypeField: "items",
		"headline":       "updated",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdate_ParentRouting(t *testing.T) {
	ctx := context.Background()
	repo, ms := newTestRepo(t, false)
	ms.updateFn = func(_ context.Context, _, _ string, _ map[string]any, opts engine.WriteOptions) error {
		if opts.Routing != "item-1" {
			t.Errorf("unexpected routing: %q", opts.Routing)
		}
		return nil
	}

	err := repo.Update(ctx, "comments", "comment-1", map[string]any{
		"body": "edited",
		"rel":  map[string]any{"name": "comment", "parent": "item-1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdate_EngineFailure(t *testing.T) {
	ctx := context.Background()
	repo, ms := newTestRepo(t, false)
	ms.updateFn = func(context.Context, string, string, map[string]any, engine.WriteOptions) error {
		return fmt.Errorf("version conflict")
	}

	err := repo.Update(ctx, "items", "doc-1", map[string]any{"headline": "updated"})
	if err == nil {
		t.Fatal("expected an error")
	}
}

// --- Replace ---

func TestReplace(t *testing.T) {
	ctx := context.Background()
	repo, ms := newTestRepo(t, false)
	ms.indexFn = func(_ context.Context, index, id string, doc map[string]any, opts engine.WriteOptions) (string, error) {
		if index != "app_items" || id != "doc-1" {
			t.Errorf("unexpected replace target: %s/%s", index, id)
		}
		if _, ok := doc[schema.IDField]; ok {
			t.Errorf("identifier left in body: %v", doc)
		}
		if !opts.Refresh {
			t.Error("expected a refreshing replace")
		}
		return id, nil
	}

	err := repo.Replace(ctx, "items", "doc-1", map[string]any{
		schema.IDField: "doc-1",
		"headline":     "rewritten",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- Remove ---

func TestRemove(t *testing.T) {
	ctx := context.Background()
	repo, ms := newTestRepo(t, false)
	ms.deleteFn = func(_ context.Context, index, id string, opts engine.WriteOptions) error {
		if index != "app_items" || id != "doc-1" {
			t.Errorf("unexpected delete target: %s/%s", index, id)
		}
		if !opts.Refresh {
			t.Error("expected a refreshing delete")
		}
		return nil
	}

	err := repo.Remove(ctx, "items", map[string]any{schema.IDField: "doc-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRemove_Parent(t *testing.T) {
	ctx := context.Background()
	repo, ms := newTestRepo(t, false)
	ms.deleteFn = func(_ context.Context, _, _ string, opts engine.WriteOptions) error {
		if opts.Routing != "item-1" {
			t.Errorf("unexpected routing: %q", opts.Routing)
		}
		return nil
	}

	err := repo.Remove(ctx, "comments", map[string]any{
		schema.IDField: "comment-1",
		"parent":       "item-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRemove_MissingID(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t, false)

	lookups := []map[string]any{
		{},
		{schema.IDField: nil},
		{schema.IDField: ""},
	}
	for _, lookup := range lookups {
		if err := repo.Remove(ctx, "items", lookup); !errors.Is(err, ErrMissingID) {
			t.Errorf("lookup %v: expected ErrMissingID, got %v", lookup, err)
		}
	}
}

func TestRemove_AlreadyGone(t *testing.T) {
	ctx := context.Background()
	repo, ms := newTestRepo(t, false)
	ms.deleteFn = func(context.Context, string, string, engine.WriteOptions) error {
		return fmt.Errorf("delete app_items/doc-1: %w", engine.ErrNotFound)
	}

	if err := repo.Remove(ctx, "items", map[string]any{schema.IDField: "doc-1"}); err != nil {
		t.Fatalf("expected a quiet remove, got %v", err)
	}
}

func TestRemove_EngineFailure(t *testing.T) {
	ctx := context.Background()
	repo, ms := newTestRepo(t, false)
	ms.deleteFn = func(context.Context, string, string, engine.WriteOptions) error {
		return fmt.Errorf("shard unavailable")
	}

	err := repo.Remove(ctx, "items", map[string]any{schema.IDField: "doc-1"})
	if err == nil {
		t.Fatal("expected an error")
	}
}
