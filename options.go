package esdex

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/esdex/internal/engine"
	"github.com/kailas-cloud/esdex/internal/resource"
)

// WhereParser turns a non-JSON where expression into a field/value
// document that Find wraps in an exact term clause.
type WhereParser interface {
	ParseWhere(where string) (map[string]any, error)
}

// Cluster is the connection block for one additional cluster, keyed by
// resource prefix in the client options.
type Cluster struct {
	URL         string
	IndexPrefix string
	Indexes     map[string]string
	Settings    map[string]any
}

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	url         string
	username    string
	password    string
	indexPrefix string
	indexes     map[string]string
	settings    map[string]any

	forceRefresh     *bool
	autoAggregations *bool
	retryOnConflict  *int

	clusters map[string]Cluster

	logger     *zap.Logger
	parser     WhereParser
	transport  http.RoundTripper
	store      engine.Store
	instrument bool
}

// WithURL sets the default cluster URL.
func WithURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.url = url
	})
}

// WithBasicAuth sets credentials used for every cluster connection.
func WithBasicAuth(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.password = password
	})
}

// WithIndexPrefix prepends prefix to every derived index name. The
// prefix carries its own separator.
func WithIndexPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexPrefix = prefix
	})
}

// WithIndexes pins explicit index names per source resource.
func WithIndexes(indexes map[string]string) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexes = indexes
	})
}

// WithSettings sets the cluster-level index settings document.
func WithSettings(settings map[string]any) Option {
	return optionFunc(func(c *clientConfig) {
		c.settings = settings
	})
}

// WithForceRefresh controls whether writes refresh their index before
// returning. On by default.
func WithForceRefresh(on bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.forceRefresh = &on
	})
}

// WithAutoAggregations controls whether configured aggregations run on
// every search. On by default.
func WithAutoAggregations(on bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.autoAggregations = &on
	})
}

// WithRetryOnConflict sets the conflict-retry count for partial
// updates. Zero omits the retry parameter entirely.
func WithRetryOnConflict(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.retryOnConflict = &n
	})
}

// WithCluster declares an additional cluster under prefix. Resources
// select it through their Prefix field.
func WithCluster(prefix string, cluster Cluster) Option {
	return optionFunc(func(c *clientConfig) {
		if c.clusters == nil {
			c.clusters = make(map[string]Cluster)
		}
		c.clusters[prefix] = cluster
	})
}

// WithLogger sets the client logger; a nop logger is used otherwise.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithWhereParser installs the fallback parser for non-JSON where
// clauses.
func WithWhereParser(p WhereParser) Option {
	return optionFunc(func(c *clientConfig) {
		c.parser = p
	})
}

// WithTransport sets the HTTP transport for engine connections.
func WithTransport(rt http.RoundTripper) Option {
	return optionFunc(func(c *clientConfig) {
		c.transport = rt
	})
}

// WithMetrics registers the engine Prometheus metrics with the default
// registerer so cluster operations show up on scrape.
func WithMetrics() Option {
	return optionFunc(func(c *clientConfig) {
		c.instrument = true
	})
}

// withStore seeds the default cluster with a prebuilt store.
func withStore(s engine.Store) Option {
	return optionFunc(func(c *clientConfig) {
		c.store = s
	})
}

// runtime assembles the runtime settings document from the options.
func (c *clientConfig) runtime() *resource.Config {
	cfg := &resource.Config{
		URL:              c.url,
		IndexPrefix:      c.indexPrefix,
		Indexes:          c.indexes,
		Settings:         c.settings,
		ForceRefresh:     c.forceRefresh,
		AutoAggregations: c.autoAggregations,
		RetryOnConflict:  c.retryOnConflict,
	}
	if len(c.clusters) > 0 {
		cfg.Clusters = make(map[string]resource.Cluster, len(c.clusters))
		for prefix, cluster := range c.clusters {
			cfg.Clusters[prefix] = resource.Cluster{
				URL:         cluster.URL,
				IndexPrefix: cluster.IndexPrefix,
				Indexes:     cluster.Indexes,
				Settings:    cluster.Settings,
			}
		}
	}
	cfg.ApplyDefaults()
	return cfg
}
