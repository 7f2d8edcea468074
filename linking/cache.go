package linking

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Cache remembers every resolution keyed by entity name, including
// empty ones, so repeated builds never re-query a source for a name it
// has already asked about. It persists as a single JSON file.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Links
	path    string
}

// NewCache creates a cache backed by the given file. An empty path
// yields a purely in-memory cache. A missing or unreadable file starts
// empty rather than failing; the cache is an optimization only.
func NewCache(path string) *Cache {
	c := &Cache{entries: make(map[string]Links), path: path}
	if path == "" {
		return c
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		slog.Warn("discarding unreadable link cache", slog.String("path", path), slog.String("error", err.Error()))
		c.entries = make(map[string]Links)
	}
	return c
}

// Get returns the cached links for a name. The second return reports
// whether the name has been resolved before; a cached empty Links is a
// remembered miss, not an absence.
func (c *Cache) Get(name string) (Links, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	links, ok := c.entries[name]
	return links, ok
}

// Put records the resolution for a name, empty or not.
func (c *Cache) Put(name string, links Links) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = links
}

// Len reports the number of cached names.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Save writes the cache to its backing file. No-op for in-memory caches.
func (c *Cache) Save() error {
	if c.path == "" {
		return nil
	}
	c.mu.RLock()
	data, err := json.MarshalIndent(c.entries, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal link cache: %w", err)
	}
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write link cache: %w", err)
	}
	return nil
}
