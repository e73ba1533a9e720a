// Package cache holds the client's view of which recommendations the user
// has saved. The server is the source of truth; the cache is refreshed
// wholesale by Hydrate and updated only after the server confirms a change.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/careercompass/compass/internal/model"
)

// identityKeys are the payload fields two items must share to be the same
// recommendation. Companies are saved as jobs and compare on name+industry.
var identityKeys = map[model.Category][2]string{
	model.CategoryCertificate: {"name", "provider"},
	model.CategoryCourse:      {"title", "provider"},
	model.CategoryJob:         {"name", "industry"},
}

// Cache maps each category to the saved items last seen for it.
type Cache struct {
	mu     sync.RWMutex
	items  map[model.Category][]model.SavedItem
	lister model.SavedItemLister
	logger *slog.Logger
}

// New returns an empty cache hydrated through lister.
func New(lister model.SavedItemLister, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{
		items:  make(map[model.Category][]model.SavedItem),
		lister: lister,
		logger: logger,
	}
}

// Hydrate replaces the category's contents with the server's list. On
// failure the previous contents are kept.
func (c *Cache) Hydrate(ctx context.Context, category model.Category) error {
	items, err := c.lister.GetSavedItems(ctx, category)
	if err != nil {
		return fmt.Errorf("hydrate %s: %w", category, err)
	}
	c.mu.Lock()
	c.items[category] = items
	c.mu.Unlock()
	c.logger.Debug("cache hydrated", "category", category, "count", len(items))
	return nil
}

// HydrateAll hydrates every category concurrently. Each category succeeds or
// fails on its own; the first error is returned after all have finished.
func (c *Cache) HydrateAll(ctx context.Context) error {
	var g errgroup.Group
	for _, category := range model.Categories() {
		g.Go(func() error {
			if err := c.Hydrate(ctx, category); err != nil {
				c.logger.Warn("cache hydration failed", "category", category, "error", err)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// IsSaved reports whether payload matches a cached item of category and
// returns that item's id.
func (c *Cache) IsSaved(category model.Category, payload model.Payload) (string, bool) {
	keys, ok := identityKeys[category]
	if !ok || payload == nil {
		return "", false
	}
	a, b := payload.String(keys[0]), payload.String(keys[1])

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items[category] {
		if it.Payload.String(keys[0]) == a && it.Payload.String(keys[1]) == b {
			return it.ID, true
		}
	}
	return "", false
}

// RecordSave adds a confirmed save.
func (c *Cache) RecordSave(category model.Category, id string, payload model.Payload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[category] = append(c.items[category], model.SavedItem{
		ID:       id,
		Category: category,
		Payload:  payload.Clone(),
	})
}

// RecordRemoval drops a confirmed unsave.
func (c *Cache) RecordRemoval(category model.Category, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[category] = slices.DeleteFunc(c.items[category], func(it model.SavedItem) bool {
		return it.ID == id
	})
}

// Items returns a copy of the cached items of category.
func (c *Cache) Items(category model.Category) []model.SavedItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items[category])
}
