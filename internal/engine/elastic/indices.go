package elastic

import (
	"context"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esutil"

	"github.com/kailas-cloud/esdex/internal/engine"
)

// CreateIndex creates an index with the given body (mappings/settings).
func (s *Store) CreateIndex(ctx context.Context, index string, body map[string]any) (err error) {
	defer s.observe(engine.OpCreateIndex, time.Now())(&err)

	res, err := s.es.Indices.Create(
		index,
		s.es.Indices.Create.WithContext(ctx),
		s.es.Indices.Create.WithBody(esutil.NewJSONReader(body)),
	)
	if err != nil {
		return fmt.Errorf("indices.create %s: %w", index, err)
	}
	defer closeBody(res)
	if res.IsError() {
		return s.asError(engine.OpCreateIndex, res)
	}
	return nil
}

// DeleteIndex removes an index.
func (s *Store) DeleteIndex(ctx context.Context, index string) (err error) {
	defer s.observe(engine.OpDeleteIndex, time.Now())(&err)

	res, err := s.es.Indices.Delete(
		[]string{index},
		s.es.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("indices.delete %s: %w", index, err)
	}
	defer closeBody(res)
	if res.IsError() {
		return s.asError(engine.OpDeleteIndex, res)
	}
	return nil
}

// IndexExists checks whether an index (or alias) exists.
func (s *Store) IndexExists(ctx context.Context, index string) (ok bool, err error) {
	defer s.observe(engine.OpIndexExists, time.Now())(&err)

	res, err := s.es.Indices.Exists(
		[]string{index},
		s.es.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("indices.exists %s: %w", index, err)
	}
	defer closeBody(res)
	if res.StatusCode == 404 {
		return false, nil
	}
	if res.IsError() {
		return false, s.asError(engine.OpIndexExists, res)
	}
	return true, nil
}

// PutAlias binds alias to index.
func (s *Store) PutAlias(ctx context.Context, index, alias string) (err error) {
	defer s.observe(engine.OpPutAlias, time.Now())(&err)

	res, err := s.es.Indices.PutAlias(
		[]string{index},
		alias,
		s.es.Indices.PutAlias.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("indices.put_alias %s->%s: %w", alias, index, err)
	}
	defer closeBody(res)
	if res.IsError() {
		return s.asError(engine.OpPutAlias, res)
	}
	return nil
}

// GetAlias returns the index names behind an alias. A missing alias
// yields engine.ErrNotFound.
func (s *Store) GetAlias(ctx context.Context, alias string) (indexes []string, err error) {
	defer s.observe(engine.OpGetAlias, time.Now())(&err)

	res, err := s.es.Indices.GetAlias(
		s.es.Indices.GetAlias.WithContext(ctx),
		s.es.Indices.GetAlias.WithName(alias),
	)
	if err != nil {
		return nil, fmt.Errorf("indices.get_alias %s: %w", alias, err)
	}
	defer closeBody(res)
	if res.StatusCode == 404 {
		return nil, engine.ErrNotFound
	}
	if res.IsError() {
		return nil, s.asError(engine.OpGetAlias, res)
	}

	var body map[string]any
	if err := decode(res, &body); err != nil {
		return nil, fmt.Errorf("indices.get_alias %s: %w", alias, err)
	}
	names := make([]string, 0, len(body))
	for name := range body {
		names = append(names, name)
	}
	return names, nil
}

// UpdateAliases applies a batch of alias actions atomically.
func (s *Store) UpdateAliases(ctx context.Context, actions []map[string]any) (err error) {
	defer s.observe(engine.OpUpdateAliases, time.Now())(&err)

	res, err := s.es.Indices.UpdateAliases(
		esutil.NewJSONReader(map[string]any{"actions": actions}),
		s.es.Indices.UpdateAliases.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("indices.update_aliases: %w", err)
	}
	defer closeBody(res)
	if res.IsError() {
		return s.asError(engine.OpUpdateAliases, res)
	}
	return nil
}

// GetMapping returns the mapping document, keyed by concrete index name.
func (s *Store) GetMapping(ctx context.Context, index string) (mapping map[string]any, err error) {
	defer s.observe(engine.OpGetMapping, time.Now())(&err)

	res, err := s.es.Indices.GetMapping(
		s.es.Indices.GetMapping.WithContext(ctx),
		s.es.Indices.GetMapping.WithIndex(index),
	)
	if err != nil {
		return nil, fmt.Errorf("indices.get_mapping %s: %w", index, err)
	}
	defer closeBody(res)
	if res.IsError() {
		return nil, s.asError(engine.OpGetMapping, res)
	}

	var body map[string]any
	if err := decode(res, &body); err != nil {
		return nil, fmt.Errorf("indices.get_mapping %s: %w", index, err)
	}
	return body, nil
}

// PutMapping updates the mapping of an existing index.
func (s *Store) PutMapping(ctx context.Context, index string, body map[string]any) (err error) {
	defer s.observe(engine.OpPutMapping, time.Now())(&err)

	res, err := s.es.Indices.PutMapping(
		[]string{index},
		esutil.NewJSONReader(body),
		s.es.Indices.PutMapping.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("indices.put_mapping %s: %w", index, err)
	}
	defer closeBody(res)
	if res.IsError() {
		return s.asError(engine.OpPutMapping, res)
	}
	return nil
}

// GetSettings returns the settings document, keyed by concrete index name.
func (s *Store) GetSettings(ctx context.Context, index string) (settings map[string]any, err error) {
	defer s.observe(engine.OpGetSettings, time.Now())(&err)

	res, err := s.es.Indices.GetSettings(
		s.es.Indices.GetSettings.WithContext(ctx),
		s.es.Indices.GetSettings.WithIndex(index),
	)
	if err != nil {
		return nil, fmt.Errorf("indices.get_settings %s: %w", index, err)
	}
	defer closeBody(res)
	if res.IsError() {
		return nil, s.asError(engine.OpGetSettings, res)
	}

	var body map[string]any
	if err := decode(res, &body); err != nil {
		return nil, fmt.Errorf("indices.get_settings %s: %w", index, err)
	}
	return body, nil
}

// PutSettings updates index settings. The index must exist.
func (s *Store) PutSettings(ctx context.Context, index string, body map[string]any) (err error) {
	defer s.observe(engine.OpPutSettings, time.Now())(&err)

	res, err := s.es.Indices.PutSettings(
		esutil.NewJSONReader(body),
		s.es.Indices.PutSettings.WithContext(ctx),
		s.es.Indices.PutSettings.WithIndex(index),
	)
	if err != nil {
		return fmt.Errorf("indices.put_settings %s: %w", index, err)
	}
	defer closeBody(res)
	if res.IsError() {
		return s.asError(engine.OpPutSettings, res)
	}
	return nil
}

// CloseIndex closes an index so non-dynamic settings can change.
func (s *Store) CloseIndex(ctx context.Context, index string) (err error) {
	defer s.observe(engine.OpCloseIndex, time.Now())(&err)

	res, err := s.es.Indices.Close(
		[]string{index},
		s.es.Indices.Close.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("indices.close %s: %w", index, err)
	}
	defer closeBody(res)
	if res.IsError() {
		return s.asError(engine.OpCloseIndex, res)
	}
	return nil
}

// OpenIndex reopens a closed index.
func (s *Store) OpenIndex(ctx context.Context, index string) (err error) {
	defer s.observe(engine.OpOpenIndex, time.Now())(&err)

	res, err := s.es.Indices.Open(
		[]string{index},
		s.es.Indices.Open.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("indices.open %s: %w", index, err)
	}
	defer closeBody(res)
	if res.IsError() {
		return s.asError(engine.OpOpenIndex, res)
	}
	return nil
}

// Refresh makes recent writes visible to search.
func (s *Store) Refresh(ctx context.Context, index string) (err error) {
	defer s.observe(engine.OpRefresh, time.Now())(&err)

	res, err := s.es.Indices.Refresh(
		s.es.Indices.Refresh.WithContext(ctx),
		s.es.Indices.Refresh.WithIndex(index),
	)
	if err != nil {
		return fmt.Errorf("indices.refresh %s: %w", index, err)
	}
	defer closeBody(res)
	if res.IsError() {
		return s.asError(engine.OpRefresh, res)
	}
	return nil
}

// Reindex copies all documents from source to dest, waiting for completion.
func (s *Store) Reindex(ctx context.Context, source, dest string) (err error) {
	defer s.observe(engine.OpReindex, time.Now())(&err)

	body := map[string]any{
		"source": map[string]any{"index": source},
		"dest":   map[string]any{"index": dest},
	}
	res, err := s.es.Reindex(
		esutil.NewJSONReader(body),
		s.es.Reindex.WithContext(ctx),
		s.es.Reindex.WithWaitForCompletion(true),
	)
	if err != nil {
		return fmt.Errorf("reindex %s->%s: %w", source, dest, err)
	}
	defer closeBody(res)
	if res.IsError() {
		return s.asError(engine.OpReindex, res)
	}
	return nil
}
