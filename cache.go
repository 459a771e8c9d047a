package casinocms

import (
	"context"
	"sync"
	"time"
)

// TemplateCache is an in-memory copy of the template list with a TTL.
type TemplateCache struct {
	mu        sync.RWMutex
	templates []TemplateRecord
	loaded    bool
	fetched   time.Time
	ttl       time.Duration
	store     *Store
}

// NewTemplateCache creates a TemplateCache backed by the given Store.
func NewTemplateCache(s *Store, ttl time.Duration) *TemplateCache {
	return &TemplateCache{store: s, ttl: ttl}
}

func (c *TemplateCache) valid() bool {
	return c.loaded && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *TemplateCache) Invalidate() {
	c.mu.Lock()
	c.templates = nil
	c.loaded = false
	c.mu.Unlock()
}

// List returns all templates, reloading from the store when stale. It
// tries a read lock first and only takes the write lock to reload.
func (c *TemplateCache) List(ctx context.Context) ([]TemplateRecord, error) {
	c.mu.RLock()
	if c.valid() {
		out := c.templates
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.templates, nil
	}
	templates, err := c.store.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	c.templates = templates
	c.loaded = true
	c.fetched = time.Now()
	return templates, nil
}

// Get returns a template by ID from the cached list.
func (c *TemplateCache) Get(ctx context.Context, id string) (TemplateRecord, error) {
	templates, err := c.List(ctx)
	if err != nil {
		return TemplateRecord{}, err
	}
	for _, t := range templates {
		if t.ID == id {
			return t, nil
		}
	}
	return TemplateRecord{}, ErrTemplateNotFound
}
