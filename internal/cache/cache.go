// Package cache persists aggregated ticker records in a single flat JSON
// file so repeated runs can skip upstream calls. The file maps symbol to a
// payload plus capture timestamp; it is rewritten wholesale on every update.
//
// The cache is best-effort by design: a missing, unreadable, or corrupt file
// loads as empty, and write failures are swallowed. Only in-process callers
// are coordinated (a mutex guards writes); cross-process access is out of
// contract.
package cache

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"

	"pricetrack/internal/domain"
)

// Entry is one cached record plus its capture time in unix UTC seconds.
// Only success-variant records are ever stored.
type Entry struct {
	Data      domain.Record `json:"data"`
	Timestamp int64         `json:"timestamp"`
}

// Cache is a file-backed symbol→Entry store.
type Cache struct {
	path string
	mu   sync.Mutex
	log  *slog.Logger
	now  func() time.Time
}

// New creates a Cache backed by the file at path.
func New(path string, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	return &Cache{path: path, log: log, now: time.Now}
}

// Load reads the backing file. Absence or corruption means "nothing cached
// yet" and returns an empty map, never an error.
func (c *Cache) Load() map[string]Entry {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return map[string]Entry{}
	}
	entries := map[string]Entry{}
	if err := json.Unmarshal(data, &entries); err != nil {
		c.log.Debug("ignoring corrupt cache file", "path", c.path, "error", err)
		return map[string]Entry{}
	}
	return entries
}

// Save rewrites the backing file with the full entry map. Writes are
// serialized by the cache mutex; failures are logged and swallowed since
// best-effort caching beats crashing the tool.
func (c *Cache) Save(entries map[string]Entry) {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		c.log.Debug("marshaling cache", "error", err)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		c.log.Debug("writing cache file", "path", c.path, "error", err)
	}
}

// GetFresh returns the cached record for symbol if its age is within maxAge.
// The bound is inclusive: an entry captured exactly maxAge ago is fresh.
func (c *Cache) GetFresh(symbol string, maxAge time.Duration) (domain.Record, bool) {
	entry, ok := c.Load()[symbol]
	if !ok {
		return domain.Record{}, false
	}
	age := c.now().Unix() - entry.Timestamp
	if age > int64(maxAge.Seconds()) {
		return domain.Record{}, false
	}
	return entry.Data, true
}

// Get returns the cached record for symbol regardless of age. Used as a
// last-resort fallback when a live fetch fails.
func (c *Cache) Get(symbol string) (domain.Record, bool) {
	entry, ok := c.Load()[symbol]
	if !ok {
		return domain.Record{}, false
	}
	return entry.Data, true
}

// Update overwrites (or inserts) the entry for symbol with rec and the
// current capture time, then saves the whole store.
func (c *Cache) Update(symbol string, rec domain.Record) {
	entries := c.Load()
	entries[symbol] = Entry{Data: rec, Timestamp: c.now().Unix()}
	c.Save(entries)
}
