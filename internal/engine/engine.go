// Package engine defines the narrow search-engine contract the data layer
// consumes: composed store interfaces, response envelopes, and the error
// vocabulary. Implementations live in subpackages (engine/elastic).
package engine

import "context"

// Store is the engine facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	Indices
	Documents
	Searcher
	Bulker
	Close()
}

// Pinger checks engine connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Indices provides index lifecycle, alias, mapping and settings operations.
type Indices interface {
	CreateIndex(ctx context.Context, index string, body map[string]any) error
	DeleteIndex(ctx context.Context, index string) error
	IndexExists(ctx context.Context, index string) (bool, error)
	PutAlias(ctx context.Context, index, alias string) error
	GetAlias(ctx context.Context, alias string) ([]string, error)
	UpdateAliases(ctx context.Context, actions []map[string]any) error
	GetMapping(ctx context.Context, index string) (map[string]any, error)
	PutMapping(ctx context.Context, index string, body map[string]any) error
	GetSettings(ctx context.Context, index string) (map[string]any, error)
	PutSettings(ctx context.Context, index string, body map[string]any) error
	CloseIndex(ctx context.Context, index string) error
	OpenIndex(ctx context.Context, index string) error
	Refresh(ctx context.Context, index string) error
	Reindex(ctx context.Context, source, dest string) error
}

// WriteOptions carries the per-call knobs shared by document writes.
// A zero RetryOnConflict omits the parameter from the request entirely.
type WriteOptions struct {
	Refresh         bool
	Routing         string
	RetryOnConflict int
}

// Documents provides single-document operations.
type Documents interface {
	// Index writes a document and returns the engine-assigned id.
	// An empty id lets the engine generate one.
	Index(ctx context.Context, index, id string, doc map[string]any, opts WriteOptions) (string, error)
	Update(ctx context.Context, index, id string, fields map[string]any, opts WriteOptions) error
	// Delete removes a document; a missing id yields ErrNotFound.
	Delete(ctx context.Context, index, id string, opts WriteOptions) error
	// Get fetches a document; a missing id yields ErrNotFound.
	Get(ctx context.Context, index, id, routing string) (*GetResult, error)
	MGet(ctx context.Context, index string, ids []string) ([]GetResult, error)
	Count(ctx context.Context, index string, body map[string]any) (int, error)
}

// SearchOptions carries per-search request parameters that live outside
// the query body.
type SearchOptions struct {
	// SourceFields is a comma-joined projection list (the _source parameter).
	SourceFields string
}

// Searcher executes assembled query documents.
type Searcher interface {
	Search(ctx context.Context, index string, body map[string]any, opts SearchOptions) (*SearchResponse, error)
}

// BulkItem is one document in a batch write.
type BulkItem struct {
	ID      string
	Routing string
	Doc     map[string]any
}

// Bulker provides batch document writes.
type Bulker interface {
	Bulk(ctx context.Context, index string, items []BulkItem, opts WriteOptions) (*BulkStats, error)
}
