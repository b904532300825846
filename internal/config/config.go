// Package config loads the YAML configuration used by esdex binaries.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/esdex/internal/resource"
	"github.com/kailas-cloud/esdex/internal/schema"
)

// Config holds the esdex configuration.
type Config struct {
	Elastic   ElasticConfig             `yaml:"elastic"`
	Clusters  map[string]ClusterConfig  `yaml:"clusters"`
	Resources map[string]ResourceConfig `yaml:"resources"`
	Logging   LoggingConfig             `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// ElasticConfig holds the default cluster connection and write behavior.
type ElasticConfig struct {
	URL         string            `yaml:"url"`
	Username    string            `yaml:"username"`
	Password    string            `yaml:"password"`
	IndexPrefix string            `yaml:"index_prefix"`
	Indexes     map[string]string `yaml:"indexes"`
	Settings    map[string]any    `yaml:"settings"`

	ForceRefresh     *bool `yaml:"force_refresh"`
	AutoAggregations *bool `yaml:"auto_aggregations"`
	RetryOnConflict  *int  `yaml:"retry_on_conflict"`
}

// ClusterConfig holds one additional cluster, keyed by resource prefix.
type ClusterConfig struct {
	URL         string            `yaml:"url"`
	IndexPrefix string            `yaml:"index_prefix"`
	Indexes     map[string]string `yaml:"indexes"`
	Settings    map[string]any    `yaml:"settings"`
}

// ResourceConfig declares one resource and its schema.
type ResourceConfig struct {
	Source       string                 `yaml:"source"`
	Prefix       string                 `yaml:"prefix"`
	DefaultSort  []SortConfig           `yaml:"default_sort"`
	Filter       map[string]any         `yaml:"filter"`
	Aggregations map[string]any         `yaml:"aggregations"`
	Facets       map[string]any         `yaml:"facets"`
	Settings     map[string]any         `yaml:"settings"`
	Schema       map[string]FieldConfig `yaml:"schema"`
}

// SortConfig is one default-sort entry.
type SortConfig struct {
	Field string `yaml:"field"`
	Order int    `yaml:"order"` // positive ascending, negative descending
}

// FieldConfig declares one schema field. Dict fields nest under
// schema, list item descriptors under items.
type FieldConfig struct {
	Type            string                 `yaml:"type"`
	Schema          map[string]FieldConfig `yaml:"schema"`
	Items           *FieldConfig           `yaml:"items"`
	Mapping         map[string]any         `yaml:"mapping"`
	IgnoreMalformed *bool                  `yaml:"ignore_malformed"`
	Relations       map[string]any         `yaml:"relations"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Elastic.URL == "" {
		c.Elastic.URL = resource.DefaultURL
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if err := c.Runtime().Validate(); err != nil {
		return err
	}
	for name, rc := range c.Resources {
		if rc.Prefix != "" {
			if _, ok := c.Clusters[rc.Prefix]; !ok {
				return fmt.Errorf("resources.%s: prefix %q has no clusters entry", name, rc.Prefix)
			}
		}
	}
	return nil
}

// Runtime converts the file config into the runtime settings document.
func (c Config) Runtime() *resource.Config {
	rc := &resource.Config{
		URL:              c.Elastic.URL,
		IndexPrefix:      c.Elastic.IndexPrefix,
		Indexes:          c.Elastic.Indexes,
		Settings:         c.Elastic.Settings,
		ForceRefresh:     c.Elastic.ForceRefresh,
		AutoAggregations: c.Elastic.AutoAggregations,
		RetryOnConflict:  c.Elastic.RetryOnConflict,
	}
	if len(c.Clusters) > 0 {
		rc.Clusters = make(map[string]resource.Cluster, len(c.Clusters))
		for prefix, cluster := range c.Clusters {
			rc.Clusters[prefix] = resource.Cluster{
				URL:         cluster.URL,
				IndexPrefix: cluster.IndexPrefix,
				Indexes:     cluster.Indexes,
				Settings:    cluster.Settings,
			}
		}
	}
	rc.ApplyDefaults()
	return rc
}

// ResourceList builds resource definitions from the declarative
// section, in name order.
func (c Config) ResourceList() []*resource.Resource {
	names := make([]string, 0, len(c.Resources))
	for name := range c.Resources {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*resource.Resource, 0, len(names))
	for _, name := range names {
		rc := c.Resources[name]
		res := &resource.Resource{
			Name:         name,
			Schema:       fieldMap(rc.Schema),
			Datasource:   resource.Datasource{Backend: resource.ElasticBackend, Source: rc.Source},
			Filter:       rc.Filter,
			Aggregations: rc.Aggregations,
			Facets:       rc.Facets,
			Settings:     rc.Settings,
			Prefix:       rc.Prefix,
		}
		for _, s := range rc.DefaultSort {
			res.DefaultSort = append(res.DefaultSort, resource.SortField{Field: s.Field, Order: s.Order})
		}
		out = append(out, res)
	}
	return out
}

func (f FieldConfig) field() schema.Field {
	out := schema.Field{
		Type:            schema.Type(f.Type),
		Mapping:         f.Mapping,
		IgnoreMalformed: f.IgnoreMalformed,
		Relations:       f.Relations,
	}
	if f.Schema != nil {
		out.Schema = fieldMap(f.Schema)
	}
	if f.Items != nil {
		item := f.Items.field()
		out.Items = &item
	}
	return out
}

func fieldMap(m map[string]FieldConfig) schema.Schema {
	if m == nil {
		return nil
	}
	out := make(schema.Schema, len(m))
	for name, fc := range m {
		out[name] = fc.field()
	}
	return out
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
