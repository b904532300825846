package esdex

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/kailas-cloud/esdex/internal/engine"
)

// --- Find ---

func TestFind(t *testing.T) {
	ctx := context.Background()
	client, ms := newTestClient(t)
	ms.searchFn = func(_ context.Context, index string, body map[string]any, _ engine.SearchOptions) (*engine.SearchResponse, error) {
		if index != "app_items" {
			t.Errorf("unexpected index: %q", index)
		}
		must := body["query"].(map[string]any)["bool"].(map[string]any)["must"].([]any)
		qs := must[0].(map[string]any)["query_string"].(map[string]any)
		if qs["query"] != "fish" || qs["default_field"] != "all" {
			t.Errorf("unexpected clause: %v", qs)
		}
		return oneHit("doc-1", map[string]any{"headline": "fish"}), nil
	}

	cursor, err := client.Find(ctx, "items", &FindRequest{
		Args: url.Values{"q": []string{"fish"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cursor.Count() != 1 || cursor.Len() != 1 {
		t.Fatalf("unexpected cursor size: %d/%d", cursor.Count(), cursor.Len())
	}
	if cursor.First()["_id"] != "doc-1" {
		t.Fatalf("unexpected document: %v", cursor.First())
	}
}

func TestFind_NilRequest(t *testing.T) {
	ctx := context.Background()
	client, ms := newTestClient(t)
	ms.searchFn = func(_ context.Context, _ string, body map[string]any, _ engine.SearchOptions) (*engine.SearchResponse, error) {
		if _, ok := body["query"]; ok {
			t.Errorf("expected a match-all body, got %v", body)
		}
		return &engine.SearchResponse{}, nil
	}

	if _, err := client.Find(ctx, "items", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFind_Paging(t *testing.T) {
	ctx := context.Background()
	client, ms := newTestClient(t)
	ms.searchFn = func(_ context.Context, _ string, body map[string]any, _ engine.SearchOptions) (*engine.SearchResponse, error) {
		if body["size"] != 25 {
			t.Errorf("unexpected size: %v", body["size"])
		}
		if body["from"] != 50 {
			t.Errorf("unexpected from: %v", body["from"])
		}
		return &engine.SearchResponse{}, nil
	}

	_, err := client.Find(ctx, "items", &FindRequest{Page: 3, MaxResults: 25})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFind_BadSourceArgument(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	_, err := client.Find(ctx, "items", &FindRequest{
		Args: url.Values{"source": []string{"{not json"}},
	})
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestFind_InvalidSearchString(t *testing.T) {
	ctx := context.Background()
	client, ms := newTestClient(t)
	ms.searchFn = func(context.Context, string, map[string]any, engine.SearchOptions) (*engine.SearchResponse, error) {
		return nil, &engine.Error{
			Op:         engine.OpSearch,
			StatusCode: 400,
			Type:       "parsing_exception",
		}
	}

	_, err := client.Find(ctx, "items", &FindRequest{
		Args: url.Values{"q": []string{"AND AND"}},
	})
	if !errors.Is(err, ErrInvalidSearchString) {
		t.Fatalf("expected ErrInvalidSearchString, got %v", err)
	}
}

func TestFind_UnknownResource(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	_, err := client.Find(ctx, "nope", nil)
	if !errors.Is(err, ErrUnknownResource) {
		t.Fatalf("expected ErrUnknownResource, got %v", err)
	}
}

// --- FindOne / FindByID / FindByIDs ---

func TestFindOne(t *testing.T) {
	ctx := context.Background()
	client, ms := newTestClient(t)
	ms.getFn = func(_ context.Context, index, id, _ string) (*engine.GetResult, error) {
		if index != "app_items" || id != "doc-1" {
			t.Errorf("unexpected get: %s/%s", index, id)
		}
		return &engine.GetResult{ID: id, Found: true, Source: map[string]any{"headline": "fish"}}, nil
	}

	doc, err := client.FindOne(ctx, "items", map[string]any{"_id": "doc-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc["headline"] != "fish" {
		t.Fatalf("unexpected document: %v", doc)
	}
}

func TestFindOne_Missing(t *testing.T) {
	ctx := context.Background()
	client, ms := newTestClient(t)
	ms.getFn = func(context.Context, string, string, string) (*engine.GetResult, error) {
		return nil, engine.ErrNotFound
	}

	doc, err := client.FindOne(ctx, "items", map[string]any{"_id": "missing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc != nil {
		t.Fatalf("expected no document, got %v", doc)
	}
}

func TestFindByID(t *testing.T) {
	ctx := context.Background()
	client, ms := newTestClient(t)
	ms.getFn = func(_ context.Context, _, id, _ string) (*engine.GetResult, error) {
		return &engine.GetResult{ID: id, Found: true}, nil
	}

	doc, err := client.FindByID(ctx, "items", "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc["_id"] != "doc-1" {
		t.Fatalf("unexpected document: %v", doc)
	}
}

func TestFindByIDs(t *testing.T) {
	ctx := context.Background()
	client, ms := newTestClient(t)
	ms.mgetFn = func(_ context.Context, _ string, ids []string) ([]engine.GetResult, error) {
		if len(ids) != 3 {
			t.Errorf("unexpected ids: %v", ids)
		}
		return []engine.GetResult{
			{ID: "a", Found: true},
			{ID: "b", Found: false},
			{ID: "c", Found: true},
		}, nil
	}

	cursor, err := client.FindByIDs(ctx, "items", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cursor.Len() != 2 || cursor.Count() != 2 {
		t.Fatalf("expected the found documents only, got %d/%d", cursor.Len(), cursor.Count())
	}
}

// --- IsEmpty ---

func TestIsEmpty(t *testing.T) {
	ctx := context.Background()
	client, ms := newTestClient(t)
	ms.countFn = func(context.Context, string, map[string]any) (int, error) {
		return 0, nil
	}

	empty, err := client.IsEmpty(ctx, "items")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !empty {
		t.Fatal("expected empty")
	}
}
