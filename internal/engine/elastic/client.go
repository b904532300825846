// Package elastic implements engine.Store over the official
// go-elasticsearch client.
package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kailas-cloud/esdex/internal/engine"
	"github.com/kailas-cloud/esdex/internal/metrics"
)

// Compile-time check: Store implements engine.Store.
var _ engine.Store = (*Store)(nil)

// Config holds connection parameters for an Elasticsearch store.
type Config struct {
	URLs     []string
	Username string
	Password string
	// Transport overrides the HTTP round tripper, mainly for tests.
	Transport http.RoundTripper
}

// Store implements engine.Store via go-elasticsearch.
type Store struct {
	es        *elasticsearch.Client
	transport http.RoundTripper
}

// NewStore creates an Elasticsearch store.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.URLs) == 0 {
		return nil, fmt.Errorf("urls is required")
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.URLs,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{es: client, transport: cfg.Transport}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) (err error) {
	defer s.observe(engine.OpPing, time.Now())(&err)

	res, err := s.es.Ping(s.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	defer closeBody(res)
	if res.IsError() {
		return s.asError(engine.OpPing, res)
	}
	return nil
}

// Close releases idle connections held by the transport.
func (s *Store) Close() {
	type idleCloser interface{ CloseIdleConnections() }
	if c, ok := s.transport.(idleCloser); ok {
		c.CloseIdleConnections()
		return
	}
	http.DefaultTransport.(*http.Transport).CloseIdleConnections()
}

// WaitForReady polls Ping until the engine responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for engine: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// observe records request metrics for one engine operation. Use as
//
//	defer s.observe(op, time.Now())(&err)
//
// so the error is read after the method body assigned it.
func (s *Store) observe(op string, start time.Time) func(*error) {
	return func(errp *error) {
		status := "ok"
		errType := ""
		if errp != nil && *errp != nil {
			status = "error"
			errType = "transport"
			if ee, ok := engine.AsError(*errp); ok {
				errType = ee.Type
				if errType == "" {
					errType = fmt.Sprintf("http_%d", ee.StatusCode)
				}
			}
		}
		metrics.EngineRequestsTotal.WithLabelValues(op, status).Inc()
		metrics.EngineRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		if status == "error" {
			metrics.EngineErrorsTotal.WithLabelValues(op, errType).Inc()
		}
	}
}

// asError decodes an engine error response into engine.Error. It handles
// both the structured form {"error": {"type", "reason"}} and the legacy
// string form {"error": "..."}.
func (s *Store) asError(op string, res *esapi.Response) error {
	ee := &engine.Error{Op: op, StatusCode: res.StatusCode}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return ee
	}

	var structured struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &structured); err == nil &&
		(structured.Error.Type != "" || structured.Error.Reason != "") {
		ee.Type = structured.Error.Type
		ee.Reason = structured.Error.Reason
		return ee
	}

	var legacy struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &legacy); err == nil && legacy.Error != "" {
		ee.Reason = legacy.Error
		return ee
	}

	ee.Reason = string(body)
	return ee
}

// decode unmarshals a response body into out. Closing is left to the
// caller's deferred closeBody.
func decode(res *esapi.Response, out any) error {
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func closeBody(res *esapi.Response) {
	if res != nil && res.Body != nil {
		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()
	}
}
