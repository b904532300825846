package elastic

import (
	"context"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"

	"github.com/kailas-cloud/esdex/internal/engine"
)

// Search executes an assembled query document against an index.
func (s *Store) Search(
	ctx context.Context, index string, body map[string]any, opts engine.SearchOptions,
) (resp *engine.SearchResponse, err error) {
	defer s.observe(engine.OpSearch, time.Now())(&err)

	reqOpts := []func(*esapi.SearchRequest){
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(index),
		s.es.Search.WithBody(esutil.NewJSONReader(body)),
	}
	if opts.SourceFields != "" {
		reqOpts = append(reqOpts, s.es.Search.WithSource(opts.SourceFields))
	}

	res, err := s.es.Search(reqOpts...)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", index, err)
	}
	defer closeBody(res)
	if res.IsError() {
		return nil, s.asError(engine.OpSearch, res)
	}

	var out engine.SearchResponse
	if err := decode(res, &out); err != nil {
		return nil, fmt.Errorf("search %s: %w", index, err)
	}
	return &out, nil
}
