package elastic

import (
	"context"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"

	"github.com/kailas-cloud/esdex/internal/engine"
)

// refreshValue translates the boolean refresh flag into the wire value.
func refreshValue(refresh bool) string {
	if refresh {
		return "true"
	}
	return "false"
}

// Index writes a document and returns the engine-assigned id.
func (s *Store) Index(
	ctx context.Context, index, id string, doc map[string]any, opts engine.WriteOptions,
) (docID string, err error) {
	defer s.observe(engine.OpIndex, time.Now())(&err)

	reqOpts := []func(*esapi.IndexRequest){
		s.es.Index.WithContext(ctx),
		s.es.Index.WithRefresh(refreshValue(opts.Refresh)),
	}
	if id != "" {
		reqOpts = append(reqOpts, s.es.Index.WithDocumentID(id))
	}
	if opts.Routing != "" {
		reqOpts = append(reqOpts, s.es.Index.WithRouting(opts.Routing))
	}

	res, err := s.es.Index(index, esutil.NewJSONReader(doc), reqOpts...)
	if err != nil {
		return "", fmt.Errorf("index %s: %w", index, err)
	}
	defer closeBody(res)
	if res.IsError() {
		return "", s.asError(engine.OpIndex, res)
	}

	var out struct {
		ID string `json:"_id"`
	}
	if err := decode(res, &out); err != nil {
		return "", fmt.Errorf("index %s: %w", index, err)
	}
	return out.ID, nil
}

// Update applies a partial document update.
func (s *Store) Update(
	ctx context.Context, index, id string, fields map[string]any, opts engine.WriteOptions,
) (err error) {
	defer s.observe(engine.OpUpdate, time.Now())(&err)

	reqOpts := []func(*esapi.UpdateRequest){
		s.es.Update.WithContext(ctx),
		s.es.Update.WithRefresh(refreshValue(opts.Refresh)),
	}
	if opts.Routing != "" {
		reqOpts = append(reqOpts, s.es.Update.WithRouting(opts.Routing))
	}
	if opts.RetryOnConflict > 0 {
		reqOpts = append(reqOpts, s.es.Update.WithRetryOnConflict(opts.RetryOnConflict))
	}

	body := map[string]any{"doc": fields}
	res, err := s.es.Update(index, id, esutil.NewJSONReader(body), reqOpts...)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", index, id, err)
	}
	defer closeBody(res)
	if res.StatusCode == 404 {
		return fmt.Errorf("update %s/%s: %w", index, id, engine.ErrNotFound)
	}
	if res.IsError() {
		return s.asError(engine.OpUpdate, res)
	}
	return nil
}

// Delete removes a document. A missing document yields engine.ErrNotFound.
func (s *Store) Delete(
	ctx context.Context, index, id string, opts engine.WriteOptions,
) (err error) {
	defer s.observe(engine.OpDelete, time.Now())(&err)

	reqOpts := []func(*esapi.DeleteRequest){
		s.es.Delete.WithContext(ctx),
		s.es.Delete.WithRefresh(refreshValue(opts.Refresh)),
	}
	if opts.Routing != "" {
		reqOpts = append(reqOpts, s.es.Delete.WithRouting(opts.Routing))
	}

	res, err := s.es.Delete(index, id, reqOpts...)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", index, id, err)
	}
	defer closeBody(res)
	if res.StatusCode == 404 {
		return fmt.Errorf("delete %s/%s: %w", index, id, engine.ErrNotFound)
	}
	if res.IsError() {
		return s.asError(engine.OpDelete, res)
	}
	return nil
}

// Get fetches a document by id. A missing document yields engine.ErrNotFound.
func (s *Store) Get(
	ctx context.Context, index, id, routing string,
) (result *engine.GetResult, err error) {
	defer s.observe(engine.OpGet, time.Now())(&err)

	reqOpts := []func(*esapi.GetRequest){
		s.es.Get.WithContext(ctx),
	}
	if routing != "" {
		reqOpts = append(reqOpts, s.es.Get.WithRouting(routing))
	}

	res, err := s.es.Get(index, id, reqOpts...)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", index, id, err)
	}
	defer closeBody(res)
	if res.StatusCode == 404 {
		return nil, fmt.Errorf("get %s/%s: %w", index, id, engine.ErrNotFound)
	}
	if res.IsError() {
		return nil, s.asError(engine.OpGet, res)
	}

	var out engine.GetResult
	if err := decode(res, &out); err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", index, id, err)
	}
	return &out, nil
}

// MGet fetches multiple documents by id in one round trip.
func (s *Store) MGet(
	ctx context.Context, index string, ids []string,
) (docs []engine.GetResult, err error) {
	defer s.observe(engine.OpMGet, time.Now())(&err)

	body := map[string]any{"ids": ids}
	res, err := s.es.Mget(
		esutil.NewJSONReader(body),
		s.es.Mget.WithContext(ctx),
		s.es.Mget.WithIndex(index),
	)
	if err != nil {
		return nil, fmt.Errorf("mget %s: %w", index, err)
	}
	defer closeBody(res)
	if res.IsError() {
		return nil, s.asError(engine.OpMGet, res)
	}

	var out engine.MGetResponse
	if err := decode(res, &out); err != nil {
		return nil, fmt.Errorf("mget %s: %w", index, err)
	}
	return out.Docs, nil
}

// Count returns the number of documents matching a query body.
func (s *Store) Count(
	ctx context.Context, index string, body map[string]any,
) (n int, err error) {
	defer s.observe(engine.OpCount, time.Now())(&err)

	reqOpts := []func(*esapi.CountRequest){
		s.es.Count.WithContext(ctx),
		s.es.Count.WithIndex(index),
	}
	if body != nil {
		reqOpts = append(reqOpts, s.es.Count.WithBody(esutil.NewJSONReader(body)))
	}

	res, err := s.es.Count(reqOpts...)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", index, err)
	}
	defer closeBody(res)
	if res.IsError() {
		return 0, s.asError(engine.OpCount, res)
	}

	var out struct {
		Count int `json:"count"`
	}
	if err := decode(res, &out); err != nil {
		return 0, fmt.Errorf("count %s: %w", index, err)
	}
	return out.Count, nil
}
