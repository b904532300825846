package esdex

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/esdex/internal/engine"
	"github.com/kailas-cloud/esdex/internal/engine/elastic"
	"github.com/kailas-cloud/esdex/internal/index"
	"github.com/kailas-cloud/esdex/internal/metrics"
	documentrepo "github.com/kailas-cloud/esdex/internal/repository/document"
	searchrepo "github.com/kailas-cloud/esdex/internal/repository/search"
	"github.com/kailas-cloud/esdex/internal/resource"
)

// Client is the esdex entry point: a resource registry bound to one or
// more Elasticsearch clusters.
type Client struct {
	cfg      *resource.Config
	registry *resource.Registry
	clusters *index.Clusters
	manager  *index.Manager
	searches *searchrepo.Repo
	docs     *documentrepo.Repo
	log      *zap.Logger
}

// New creates a Client. Connections are dialed lazily on first use;
// New itself only validates the configuration.
func New(opts ...Option) (*Client, error) {
	cc := &clientConfig{}
	for _, o := range opts {
		o.apply(cc)
	}

	cfg := cc.runtime()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("esdex: %w", err)
	}

	log := cc.logger
	if log == nil {
		log = zap.NewNop()
	}

	if cc.instrument {
		metrics.Register()
	}
	dial := func(url string) (engine.Store, error) {
		store, err := elastic.NewStore(elastic.Config{
			URLs:      []string{url},
			Username:  cc.username,
			Password:  cc.password,
			Transport: cc.transport,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	clusters := index.NewClusters(cfg, dial)
	if cc.store != nil {
		clusters.Set("", cc.store)
	}

	registry := resource.NewRegistry()
	manager := index.NewManager(cfg, registry, clusters, log)

	return &Client{
		cfg:      cfg,
		registry: registry,
		clusters: clusters,
		manager:  manager,
		searches: searchrepo.New(registry, cfg, manager, cc.parser),
		docs:     documentrepo.New(registry, cfg, manager),
		log:      log,
	}, nil
}

// Register adds resource definitions. A resource naming a cluster
// prefix with no configured URL fails here rather than on first use.
func (c *Client) Register(resources ...Resource) error {
	for _, def := range resources {
		res, err := def.internal()
		if err != nil {
			return err
		}
		if err := c.clusters.Check(res.Prefix); err != nil {
			return fmt.Errorf("esdex: resource %q: %w", res.Name, err)
		}
		if err := c.registry.Add(res); err != nil {
			return fmt.Errorf("esdex: %w", err)
		}
	}
	return nil
}

// Ping checks connectivity to the default cluster.
func (c *Client) Ping(ctx context.Context) error {
	store, err := c.clusters.For("")
	if err != nil {
		return err
	}
	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases every dialed cluster connection.
func (c *Client) Close() {
	c.clusters.Close()
}
