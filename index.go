package esdex

import (
	"context"
	"fmt"
)

// InitIndexes makes sure every registered core resource has its index.
// Missing indexes are created with the derived mapping and settings;
// existing ones only have their settings reconciled.
func (c *Client) InitIndexes(ctx context.Context) error {
	return c.manager.InitIndexes(ctx)
}

// PutMappings pushes the current derived mapping for every core
// resource. An engine rejection is logged and skipped, never fatal;
// verify by reading the mapping back.
func (c *Client) PutMappings(ctx context.Context) error {
	return c.manager.PutMappings(ctx)
}

// GetMapping reads back the mapping of the resource's index.
func (c *Client) GetMapping(ctx context.Context, resource string) (map[string]any, error) {
	res, err := c.registry.Lookup(resource)
	if err != nil {
		return nil, err
	}
	return c.manager.Mapping(ctx, res)
}

// GetSettings reads back the settings of the resource's index.
func (c *Client) GetSettings(ctx context.Context, resource string) (map[string]any, error) {
	res, err := c.registry.Lookup(resource)
	if err != nil {
		return nil, err
	}
	return c.manager.Settings(ctx, res)
}

// PutSettings pushes settings onto the resource's existing index by
// closing it, applying the settings and reopening it. Empty settings
// are a no-op.
func (c *Client) PutSettings(ctx context.Context, resource string, settings map[string]any) error {
	res, err := c.registry.Lookup(resource)
	if err != nil {
		return err
	}
	store, err := c.manager.Store(res)
	if err != nil {
		return err
	}
	return c.manager.ApplySettings(ctx, store, c.manager.Resolve(res), settings)
}

// IndexName returns the index the resource reads and writes.
func (c *Client) IndexName(resource string) (string, error) {
	res, err := c.registry.Lookup(resource)
	if err != nil {
		return "", err
	}
	return c.manager.Resolve(res), nil
}

// IndexByAlias returns the physical index behind alias on the default
// cluster. An alias the engine does not know is assumed to be an index
// already.
func (c *Client) IndexByAlias(ctx context.Context, alias string) (string, error) {
	store, err := c.clusters.For("")
	if err != nil {
		return "", err
	}
	return c.manager.IndexByAlias(ctx, store, alias)
}

// Reindex rotates the resource's alias onto a fresh physical index
// with the current derived mapping and settings, copying every
// document across, and returns the new physical name.
func (c *Client) Reindex(ctx context.Context, resource string) (string, error) {
	res, err := c.registry.Lookup(resource)
	if err != nil {
		return "", err
	}
	name, err := c.manager.Reindex(ctx, res)
	if err != nil {
		return "", fmt.Errorf("reindex %s: %w", resource, err)
	}
	return name, nil
}
