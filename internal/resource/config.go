package resource

import (
	"fmt"
	"net/url"
)

// Defaults applied by Config.ApplyDefaults.
const (
	DefaultURL             = "http://localhost:9200"
	DefaultRetryOnConflict = 5
)

// Cluster is the connection settings for one named cluster. Resources
// select a cluster through their Prefix.
type Cluster struct {
	URL string
	// IndexPrefix overrides the global prefix for this cluster.
	IndexPrefix string
	// Indexes maps a resource's source name to an explicit alias.
	Indexes map[string]string
	// Settings is the cluster-level index settings document.
	Settings map[string]any
}

// Config is the runtime settings document shared by every resource.
type Config struct {
	URL         string
	IndexPrefix string
	Indexes     map[string]string
	Settings    map[string]any

	// ForceRefresh makes writes visible to search before returning.
	ForceRefresh *bool
	// AutoAggregations runs configured aggregations on every search.
	AutoAggregations *bool
	// RetryOnConflict is the retry count for partial updates.
	RetryOnConflict *int

	// Clusters holds the additional clusters keyed by prefix.
	Clusters map[string]Cluster
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.ForceRefresh == nil {
		c.ForceRefresh = boolPtr(true)
	}
	if c.AutoAggregations == nil {
		c.AutoAggregations = boolPtr(true)
	}
	if c.RetryOnConflict == nil {
		n := DefaultRetryOnConflict
		c.RetryOnConflict = &n
	}
}

// Validate checks the config after defaults are applied.
func (c *Config) Validate() error {
	if err := checkURL(c.URL); err != nil {
		return fmt.Errorf("url: %w", err)
	}
	for prefix, cluster := range c.Clusters {
		if cluster.URL == "" {
			return fmt.Errorf("cluster %q: url is required", prefix)
		}
		if err := checkURL(cluster.URL); err != nil {
			return fmt.Errorf("cluster %q url: %w", prefix, err)
		}
	}
	return nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

// URLFor resolves the cluster URL for a resource prefix. An empty
// prefix selects the default cluster.
func (c *Config) URLFor(prefix string) (string, error) {
	if prefix == "" {
		return c.URL, nil
	}
	cluster, ok := c.Clusters[prefix]
	if !ok || cluster.URL == "" {
		return "", fmt.Errorf("cluster %q: url is not configured", prefix)
	}
	return cluster.URL, nil
}

// PrefixFor resolves the index prefix for a resource prefix.
func (c *Config) PrefixFor(prefix string) string {
	if prefix != "" {
		if cluster, ok := c.Clusters[prefix]; ok && cluster.IndexPrefix != "" {
			return cluster.IndexPrefix
		}
	}
	return c.IndexPrefix
}

// IndexesFor resolves the explicit alias table for a resource prefix.
func (c *Config) IndexesFor(prefix string) map[string]string {
	if prefix != "" {
		if cluster, ok := c.Clusters[prefix]; ok && cluster.Indexes != nil {
			return cluster.Indexes
		}
		return nil
	}
	return c.Indexes
}

// SettingsFor resolves the cluster-level settings document for a
// resource prefix.
func (c *Config) SettingsFor(prefix string) map[string]any {
	if prefix != "" {
		if cluster, ok := c.Clusters[prefix]; ok && cluster.Settings != nil {
			return cluster.Settings
		}
		return nil
	}
	return c.Settings
}

// ForceRefreshOn reports whether writes refresh their index.
func (c *Config) ForceRefreshOn() bool {
	return c.ForceRefresh != nil && *c.ForceRefresh
}

// AutoAggregationsOn reports whether configured aggregations run on
// every search.
func (c *Config) AutoAggregationsOn() bool {
	return c.AutoAggregations != nil && *c.AutoAggregations
}

// RetryCount returns the retry-on-conflict count for partial updates.
func (c *Config) RetryCount() int {
	if c.RetryOnConflict == nil {
		return DefaultRetryOnConflict
	}
	return *c.RetryOnConflict
}

func boolPtr(b bool) *bool { return &b }
