// Package document performs per-document writes against resource
// indexes, handling parent routing and write visibility.
package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/esdex/internal/engine"
	"github.com/kailas-cloud/esdex/internal/resource"
	"github.com/kailas-cloud/esdex/internal/schema"
)

// ErrMissingID reports a remove lookup without an identifier; deletes
// are by id only.
var ErrMissingID = errors.New("document: lookup must carry an _id")

// defaultJoinField is the conventional name of the parent/child
// relation field when the schema does not declare one.
const defaultJoinField = "join_field"

// resolver is the consumer interface for index resolution (ISP).
type resolver interface {
	Resolve(res *resource.Resource) string
	Store(res *resource.Resource) (engine.Store, error)
}

// Repo writes documents for registered resources.
type Repo struct {
	registry *resource.Registry
	cfg      *resource.Config
	resolver resolver
}

// New creates a document repository.
func New(registry *resource.Registry, cfg *resource.Config, r resolver) *Repo {
	return &Repo{registry: registry, cfg: cfg, resolver: r}
}

// Insert writes docs one by one and returns their ids in order. Any
// client-supplied identifier becomes the write id and is stripped from
// the stored body; the engine id is written back onto each document.
// The index refreshes afterwards when configured to.
func (r *Repo) Insert(ctx context.Context, resourceName string, docs []map[string]any) ([]string, error) {
	res, store, index, err := r.target(resourceName)
	if err != nil {
		return nil, err
	}
	joinField := r.joinField(res)

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		id := popID(doc)
		newID, err := store.Index(ctx, index, id, doc, engine.WriteOptions{
			Routing: parentID(joinField, doc),
		})
		if err != nil {
			return ids, fmt.Errorf("insert %s: %w", resourceName, err)
		}
		if newID == "" {
			newID = id
		}
		doc[schema.IDField] = newID
		ids = append(ids, newID)
	}
	if err := r.refresh(ctx, store, index); err != nil {
		return ids, err
	}
	return ids, nil
}

// BulkInsert writes docs through the batch indexer. Parent-routed
// documents carry their parent id as routing so children land on the
// parent's shard.
func (r *Repo) BulkInsert(ctx context.Context, resourceName string, docs []map[string]any) (*engine.BulkStats, error) {
	res, store, index, err := r.target(resourceName)
	if err != nil {
		return nil, err
	}
	joinField := r.joinField(res)

	items := make([]engine.BulkItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, engine.BulkItem{
			ID:      popID(doc),
			Routing: parentID(joinField, doc),
			Doc:     doc,
		})
	}
	stats, err := store.Bulk(ctx, index, items, engine.WriteOptions{
		Refresh: r.cfg.ForceRefreshOn(),
	})
	if err != nil {
		return nil, fmt.Errorf("bulk insert %s: %w", resourceName, err)
	}
	return stats, nil
}

// Update applies a partial update. The identifier and type keys never
// travel in the update body; the engine rejects attempts to change
// them. A zero configured retry count omits the retry parameter.
func (r *Repo) Update(ctx context.Context, resourceName, id string, updates map[string]any) error {
	res, store, index, err := r.target(resourceName)
	if err != nil {
		return err
	}
	stripMeta(updates)
	err = store.Update(ctx, index, id, updates, engine.WriteOptions{
		Refresh:         true,
		Routing:         parentID(r.joinField(res), updates),
		RetryOnConflict: r.cfg.RetryCount(),
	})
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", resourceName, id, err)
	}
	return nil
}

// Replace overwrites a document wholesale, with the same identifier
// and type stripping as Update.
func (r *Repo) Replace(ctx context.Context, resourceName, id string, doc map[string]any) error {
	res, store, index, err := r.target(resourceName)
	if err != nil {
		return err
	}
	stripMeta(doc)
	_, err = store.Index(ctx, index, id, doc, engine.WriteOptions{
		Refresh: true,
		Routing: parentID(r.joinField(res), doc),
	})
	if err != nil {
		return fmt.Errorf("replace %s/%s: %w", resourceName, id, err)
	}
	return nil
}

// Remove deletes the document the lookup identifies. A lookup without
// an identifier is an error; a document already gone is not. The
// delete always refreshes so it is immediately visible.
func (r *Repo) Remove(ctx context.Context, resourceName string, lookup map[string]any) error {
	_, store, index, err := r.target(resourceName)
	if err != nil {
		return err
	}
	raw, ok := lookup[schema.IDField]
	if !ok || raw == nil || raw == "" {
		return ErrMissingID
	}
	parent, _ := lookup["parent"].(string)
	err = store.Delete(ctx, index, stringify(raw), engine.WriteOptions{
		Refresh: true,
		Routing: parent,
	})
	if err != nil {
		if errors.Is(err, engine.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("remove %s: %w", resourceName, err)
	}
	return nil
}

func (r *Repo) target(resourceName string) (*resource.Resource, engine.Store, string, error) {
	res, err := r.registry.Lookup(resourceName)
	if err != nil {
		return nil, nil, "", err
	}
	store, err := r.resolver.Store(res)
	if err != nil {
		return nil, nil, "", err
	}
	return res, store, r.resolver.Resolve(res), nil
}

func (r *Repo) refresh(ctx context.Context, store engine.Store, index string) error {
	if !r.cfg.ForceRefreshOn() {
		return nil
	}
	if err := store.Refresh(ctx, index); err != nil {
		return fmt.Errorf("refresh %s: %w", index, err)
	}
	return nil
}

// joinField names the resource's join-typed field, falling back to the
// conventional name.
func (r *Repo) joinField(res *resource.Resource) string {
	if name, ok := r.registry.MergedSchema(res).JoinField(); ok {
		return name
	}
	return defaultJoinField
}

// parentID reads the parent id out of a document's join relation,
// empty when the document is not a routed child.
func parentID(joinField string, doc map[string]any) string {
	rel, ok := doc[joinField].(map[string]any)
	if !ok {
		return ""
	}
	parent, ok := rel["parent"]
	if !ok || parent == nil {
		return ""
	}
	return stringify(parent)
}

// popID removes a client-supplied identifier from the document body
// and returns it.
func popID(doc map[string]any) string {
	raw, ok := doc[schema.IDField]
	delete(doc, schema.IDField)
	if !ok || raw == nil {
		return ""
	}
	return stringify(raw)
}

func stripMeta(doc map[string]any) {
	delete(doc, schema.IDField)
	delete(doc, schema.TypeField)
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
