package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esutil"

	"github.com/kailas-cloud/esdex/internal/engine"
)

// Bulk writes a batch of documents through the bulk-transport helper.
// Item failures are collected into the returned stats, not raised.
func (s *Store) Bulk(
	ctx context.Context, index string, items []engine.BulkItem, opts engine.WriteOptions,
) (stats *engine.BulkStats, err error) {
	defer s.observe(engine.OpBulk, time.Now())(&err)

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:  s.es,
		Index:   index,
		Refresh: refreshValue(opts.Refresh),
		// One worker keeps item order stable within the batch.
		NumWorkers: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("bulk %s: %w", index, err)
	}

	var (
		mu       sync.Mutex
		failures []string
	)

	for _, item := range items {
		data, merr := json.Marshal(item.Doc)
		if merr != nil {
			mu.Lock()
			failures = append(failures, fmt.Sprintf("%s: %v", item.ID, merr))
			mu.Unlock()
			continue
		}

		addErr := bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: item.ID,
			Routing:    item.Routing,
			Body:       bytes.NewReader(data),
			OnFailure: func(_ context.Context, biItem esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, itemErr error) {
				mu.Lock()
				defer mu.Unlock()
				switch {
				case itemErr != nil:
					failures = append(failures, fmt.Sprintf("%s: %v", biItem.DocumentID, itemErr))
				default:
					failures = append(failures, fmt.Sprintf("%s: [%d] %s: %s",
						biItem.DocumentID, res.Status, res.Error.Type, res.Error.Reason))
				}
			},
		})
		if addErr != nil {
			_ = bi.Close(ctx)
			return nil, fmt.Errorf("bulk %s: add item: %w", index, addErr)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return nil, fmt.Errorf("bulk %s: flush: %w", index, err)
	}

	biStats := bi.Stats()
	mu.Lock()
	defer mu.Unlock()
	return &engine.BulkStats{
		Indexed: int(biStats.NumIndexed + biStats.NumCreated),
		Failed:  int(biStats.NumFailed),
		Errors:  failures,
	}, nil
}
