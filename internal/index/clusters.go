// Package index resolves resources to their physical indexes and
// drives index lifecycle across one or more clusters.
package index

import (
	"fmt"
	"sync"

	"github.com/kailas-cloud/esdex/internal/engine"
	"github.com/kailas-cloud/esdex/internal/resource"
)

// DialFunc opens an engine store for a cluster URL.
type DialFunc func(url string) (engine.Store, error)

// Clusters caches one engine store per cluster prefix for the life of
// the process. Stores are dialed on first use; concurrent first access
// on the same prefix yields a single shared instance.
type Clusters struct {
	cfg  *resource.Config
	dial DialFunc

	mu     sync.Mutex
	stores map[string]engine.Store
}

// NewClusters builds the cache over cfg using dial for new stores.
func NewClusters(cfg *resource.Config, dial DialFunc) *Clusters {
	return &Clusters{
		cfg:    cfg,
		dial:   dial,
		stores: make(map[string]engine.Store),
	}
}

// Check verifies that prefix has a usable URL configured without
// dialing it. A missing URL for a declared prefix is a configuration
// error, surfaced before any request work starts.
func (c *Clusters) Check(prefix string) error {
	_, err := c.cfg.URLFor(prefix)
	return err
}

// For returns the store serving prefix, dialing it on first use.
func (c *Clusters) For(prefix string) (engine.Store, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if store, ok := c.stores[prefix]; ok {
		return store, nil
	}
	url, err := c.cfg.URLFor(prefix)
	if err != nil {
		return nil, err
	}
	store, err := c.dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial cluster %q: %w", clusterName(prefix), err)
	}
	c.stores[prefix] = store
	return store, nil
}

// Set seeds the store for prefix, replacing any cached instance.
func (c *Clusters) Set(prefix string, store engine.Store) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stores[prefix] = store
}

// Close tears down every dialed store.
func (c *Clusters) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for prefix, store := range c.stores {
		store.Close()
		delete(c.stores, prefix)
	}
}

func clusterName(prefix string) string {
	if prefix == "" {
		return "default"
	}
	return prefix
}
