package index

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esdex/internal/engine"
	"github.com/kailas-cloud/esdex/internal/mapping"
	"github.com/kailas-cloud/esdex/internal/resource"
)

// GenerateIndexName returns a fresh physical name for alias, suffixed
// with a random segment so reindexing can rotate behind the alias.
func GenerateIndexName(alias string) string {
	random := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return alias + "_" + random
}

// Manager resolves resources to indexes and manages their lifecycle.
type Manager struct {
	cfg      *resource.Config
	registry *resource.Registry
	clusters *Clusters
	log      *zap.Logger
}

// NewManager wires a manager over the registry and cluster cache.
func NewManager(cfg *resource.Config, registry *resource.Registry, clusters *Clusters, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{cfg: cfg, registry: registry, clusters: clusters, log: log}
}

/// Resolve returns the index a resource reads and writes: the explicit
// override for its source resource when configured, otherwise the
// prefixed source name. The prefix string carries its own separator.
func (m *Manager) Resolve(res *resource.Resource) string {
	source := res.SourceName()
	if indexes := m.cfg.IndexesFor(res.Prefix); indexes != nil {
		if name, ok := indexes[source]; ok {
			return name
		}
	}
	return m.cfg.PrefixFor(res.Prefix) + source
}

// Store returns the engine store serving the resource's cluster.
func (m *Manager) Store(res *resource.Resource) (engine.Store, error) {
	return m.clusters.For(res.Prefix)
}

// SettingsFor returns the effective settings document for a resource,
// the cluster-level document overlaid with the resource's own.
func (m *Manager) SettingsFor(res *resource.Resource) map[string]any {
	settings := cloneMap(normalizeSettings(m.cfg.SettingsFor(res.Prefix)))
	for key, val := range normalizeSettings(res.Settings) {
		settings[key] = val
	}
	return settings
}

// plan is the derived definition of one physical index, unioned over
// every core resource that resolves to it.
type plan struct {
	prefix     string
	properties map[string]any
	settings   map[string]any
}

// plans groups the core engine-backed resources by resolved index.
func (m *Manager) plans() (map[string]*plan, []string) {
	out := make(map[string]*plan)
	var order []string
	for _, res := range m.registry.Elastic() {
		if !res.IsCore() {
			continue
		}
		index := m.Resolve(res)
		p, ok := out[index]
		if !ok {
			p = &plan{
				prefix:     res.Prefix,
				properties: map[string]any{},
				settings:   cloneMap(normalizeSettings(m.cfg.SettingsFor(res.Prefix))),
			}
			out[index] = p
			order = append(order, index)
		}
		props, _ := mapping.Resource(res.Schema)["properties"].(map[string]any)
		for field, frag := range props {
			p.properties[field] = frag
		}
		for key, val := range normalizeSettings(res.Settings) {
			p.settings[key] = val
		}
	}
	sort.Strings(order)
	return out, order
}

// InitIndexes makes sure every core resource's index exists. A missing
// index is created with the derived mapping and settings; an existing
// one only has its settings reconciled, its mapping is left alone.
func (m *Manager) InitIndexes(ctx context.Context) error {
	plans, order := m.plans()
	for _, index := range order {
		p := plans[index]
		store, err := m.clusters.For(p.prefix)
		if err != nil {
			return err
		}
		exists, err := store.IndexExists(ctx, index)
		if err != nil {
			return fmt.Errorf("check index %q: %w", index, err)
		}
		if !exists {
			if err := m.CreateIndex(ctx, store, index, p.properties, p.settings); err != nil {
				return err
			}
			continue
		}
		if len(p.settings) > 0 {
			if err := m.ApplySettings(ctx, store, index, p.settings); err != nil {
				return err
			}
		}
	}
	return nil
}

// CreateIndex creates a fresh physical index for alias and binds the
// alias to it. An index or alias that already exists is logged and
// left as is.
func (m *Manager) CreateIndex(ctx context.Context, store engine.Store, alias string, properties, settings map[string]any) error {
	physical := GenerateIndexName(alias)
	body := map[string]any{}
	if len(properties) > 0 {
		body["mappings"] = map[string]any{"properties": properties}
	}
	if len(settings) > 0 {
		body["settings"] = settings
	}
	if err := store.CreateIndex(ctx, physical, body); err != nil {
		if engine.IsAlreadyExists(err) {
			m.log.Warn("index exists", zap.String("index", physical))
			return nil
		}
		return fmt.Errorf("create index %q: %w", physical, err)
	}
	if err := store.PutAlias(ctx, physical, alias); err != nil {
		if engine.IsAlreadyExists(err) {
			m.log.Warn("alias exists", zap.String("alias", alias))
			return nil
		}
		return fmt.Errorf("alias %q -> %q: %w", alias, physical, err)
	}
	m.log.Info("created index", zap.String("index", physical), zap.String("alias", alias))
	return nil
}

// ApplySettings pushes settings onto an existing index via the
// close, put, reopen sequence. Nothing runs when settings are empty.
func (m *Manager) ApplySettings(ctx context.Context, store engine.Store, index string, settings map[string]any) error {
	settings = normalizeSettings(settings)
	if len(settings) == 0 {
		return nil
	}
	if err := store.CloseIndex(ctx, index); err != nil {
		return fmt.Errorf("close index %q: %w", index, err)
	}
	if err := store.PutSettings(ctx, index, settings); err != nil {
		return fmt.Errorf("put settings %q: %w", index, err)
	}
	if err := store.OpenIndex(ctx, index); err != nil {
		return fmt.Errorf("open index %q: %w", index, err)
	}
	m.log.Info("applied settings", zap.String("index", index))
	return nil
}

// PutMappings pushes the derived mapping for every core resource. An
// engine rejection is logged and skipped; mapping evolution is
// advisory, callers verify by reading the mapping back.
func (m *Manager) PutMappings(ctx context.Context) error {
	for _, res := range m.registry.Elastic() {
		if !res.IsCore() {
			continue
		}
		store, err := m.clusters.For(res.Prefix)
		if err != nil {
			return err
		}
		index := m.Resolve(res)
		body := mapping.Resource(res.Schema)
		if err := store.PutMapping(ctx, index, body); err != nil {
			if engine.IsStatus(err, 400) {
				m.log.Error("mapping update rejected",
					zap.String("resource", res.Name),
					zap.String("index", index),
					zap.Error(err))
				continue
			}
			return fmt.Errorf("put mapping %q: %w", index, err)
		}
	}
	return nil
}

// Mapping reads back the mapping of the resource's index, unwrapped
// from the physical-index envelope.
func (m *Manager) Mapping(ctx context.Context, res *resource.Resource) (map[string]any, error) {
	store, err := m.Store(res)
	if err != nil {
		return nil, err
	}
	raw, err := store.GetMapping(ctx, m.Resolve(res))
	if err != nil {
		return nil, err
	}
	return firstValue(raw), nil
}

// Settings reads back the settings of the resource's index, unwrapped
// from the physical-index envelope.
func (m *Manager) Settings(ctx context.Context, res *resource.Resource) (map[string]any, error) {
	store, err := m.Store(res)
	if err != nil {
		return nil, err
	}
	raw, err := store.GetSettings(ctx, m.Resolve(res))
	if err != nil {
		return nil, err
	}
	return firstValue(raw), nil
}

// IndexByAlias returns the physical index behind alias. An alias the
// engine does not know is assumed to be an index already.
func (m *Manager) IndexByAlias(ctx context.Context, store engine.Store, alias string) (string, error) {
	names, err := store.GetAlias(ctx, alias)
	if err != nil {
		if engine.IsNotFound(err) {
			return alias, nil
		}
		return "", err
	}
	if len(names) == 0 {
		return alias, nil
	}
	sort.Strings(names)
	return names[0], nil
}

// Reindex rotates the resource's alias onto a fresh physical index
// carrying the current derived mapping and settings, copying every
// document across. It returns the new physical name.
func (m *Manager) Reindex(ctx context.Context, res *resource.Resource) (string, error) {
	store, err := m.Store(res)
	if err != nil {
		return "", err
	}
	alias := m.Resolve(res)
	old, err := m.IndexByAlias(ctx, store, alias)
	if err != nil {
		return "", err
	}

	next := GenerateIndexName(alias)
	body := map[string]any{}
	doc := mapping.Resource(m.registry.MergedSchema(res))
	if props, ok := doc["properties"].(map[string]any); ok && len(props) > 0 {
		body["mappings"] = doc
	}
	if settings := m.SettingsFor(res); len(settings) > 0 {
		body["settings"] = settings
	}
	if err := store.CreateIndex(ctx, next, body); err != nil {
		return "", fmt.Errorf("create index %q: %w", next, err)
	}
	if err := store.Reindex(ctx, old, next); err != nil {
		return "", fmt.Errorf("reindex %q -> %q: %w", old, next, err)
	}

	if old == alias {
		// The alias name is occupied by a concrete index; replace it.
		if err := store.DeleteIndex(ctx, old); err != nil {
			return "", fmt.Errorf("delete index %q: %w", old, err)
		}
		if err := store.PutAlias(ctx, next, alias); err != nil {
			return "", fmt.Errorf("alias %q -> %q: %w", alias, next, err)
		}
	} else {
		actions := []map[string]any{
			{"remove": map[string]any{"index": old, "alias": alias}},
			{"add": map[string]any{"index": next, "alias": alias}},
		}
		if err := store.UpdateAliases(ctx, actions); err != nil {
			return "", fmt.Errorf("swap alias %q: %w", alias, err)
		}
	}
	m.log.Info("reindexed",
		zap.String("alias", alias),
		zap.String("from", old),
		zap.String("to", next))
	return next, nil
}

// normalizeSettings tolerates a settings document wrapped in a single
// top level "settings" key.
func normalizeSettings(settings map[string]any) map[string]any {
	if len(settings) == 1 {
		if inner, ok := settings["settings"].(map[string]any); ok {
			return inner
		}
	}
	return settings
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func firstValue(m map[string]any) map[string]any {
	for _, key := range sortedKeys(m) {
		if doc, ok := m[key].(map[string]any); ok {
			return doc
		}
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
