package esdex

import (
	"context"

	"github.com/kailas-cloud/esdex/internal/engine"
	"github.com/kailas-cloud/esdex/internal/schema"
)

// BulkStats summarizes a bulk insert.
type BulkStats struct {
	Indexed int
	Failed  int
	Errors  []string
}

func bulkStats(s *engine.BulkStats) *BulkStats {
	if s == nil {
		return &BulkStats{}
	}
	return &BulkStats{Indexed: s.Indexed, Failed: s.Failed, Errors: s.Errors}
}

// Insert writes documents one by one and returns their ids in order.
// A client-supplied "_id" becomes the write id and is stripped from
// the stored body; the engine id is written back onto each document.
func (c *Client) Insert(ctx context.Context, resource string, docs ...map[string]any) ([]string, error) {
	return c.docs.Insert(ctx, resource, docs)
}

// BulkInsert writes documents through the batch indexer. Documents
// carrying a join relation route to their parent's shard.
func (c *Client) BulkInsert(ctx context.Context, resource string, docs []map[string]any) (*BulkStats, error) {
	stats, err := c.docs.BulkInsert(ctx, resource, docs)
	if err != nil {
		return nil, err
	}
	return bulkStats(stats), nil
}

// Update applies a partial update to one document. Updating a missing
// id yields ErrNotFound.
func (c *Client) Update(ctx context.Context, resource, id string, updates map[string]any) error {
	return c.docs.Update(ctx, resource, id, updates)
}

// Replace overwrites one document wholesale.
func (c *Client) Replace(ctx context.Context, resource, id string, doc map[string]any) error {
	return c.docs.Replace(ctx, resource, id, doc)
}

// Remove deletes the document the lookup identifies. A lookup without
// "_id" yields ErrMissingID; a document already gone is a quiet
// no-op, so deletes are idempotent.
func (c *Client) Remove(ctx context.Context, resource string, lookup map[string]any) error {
	return c.docs.Remove(ctx, resource, lookup)
}

// RemoveByID deletes one document by identifier.
func (c *Client) RemoveByID(ctx context.Context, resource, id string) error {
	return c.docs.Remove(ctx, resource, map[string]any{schema.IDField: id})
}
