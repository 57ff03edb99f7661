// Package cache holds computed analytics for a short time so repeated
// queries over an unchanged history skip the work.
package cache

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const (
	megabyte = 1024 * 1024
	keySep   = "::"

	// DefaultTTL matches how long a query result stays fresh between writes.
	DefaultTTL = 5 * time.Minute
	// DefaultSizeMB is the cache size used when none is configured.
	DefaultSizeMB = 8
)

// TTLCache is a size-bounded cache of JSON-encoded values with a fixed
// time to live. It is safe for concurrent use.
type TTLCache struct {
	cache *freecache.Cache
	ttl   time.Duration
}

// New creates a cache of sizeMB megabytes whose entries expire after ttl.
// Non-positive arguments fall back to the defaults.
func New(sizeMB int, ttl time.Duration) *TTLCache {
	if sizeMB <= 0 {
		sizeMB = DefaultSizeMB
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTLCache{
		cache: freecache.NewCache(sizeMB * megabyte),
		ttl:   ttl,
	}
}

// Get decodes the entry for key into dst. It reports false on a miss, an
// expired entry, or an entry that no longer decodes into dst.
func (c *TTLCache) Get(key string, dst any) bool {
	data, err := c.cache.Get([]byte(key))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		log.Errorf("cache: failed to decode entry %s: %s", key, err)
		c.cache.Del([]byte(key))
		return false
	}
	log.Tracef("cache: hit %s", key)
	return true
}

// Set stores v under key.
func (c *TTLCache) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	if err := c.cache.Set([]byte(key), data, c.expireSeconds()); err != nil {
		return fmt.Errorf("store cache entry %s: %w", key, err)
	}
	return nil
}

// Clear removes every entry of the given kinds, as built by Key. With no
// kinds it clears the whole cache.
func (c *TTLCache) Clear(kinds ...string) {
	if len(kinds) == 0 {
		c.cache.Clear()
		log.Debug("cache: cleared")
		return
	}

	var matched [][]byte
	it := c.cache.NewIterator()
	for entry := it.Next(); entry != nil; entry = it.Next() {
		if ofKind(string(entry.Key), kinds) {
			matched = append(matched, entry.Key)
		}
	}
	for _, key := range matched {
		c.cache.Del(key)
	}
	log.Debugf("cache: cleared %d entries of %v", len(matched), kinds)
}

func ofKind(key string, kinds []string) bool {
	for _, k := range kinds {
		if key == k || strings.HasPrefix(key, k+keySep) {
			return true
		}
	}
	return false
}

// Len is the number of live entries.
func (c *TTLCache) Len() int64 {
	return c.cache.EntryCount()
}

func (c *TTLCache) expireSeconds() int {
	secs := int(c.ttl / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Key joins a result kind and its parameters into a cache key.
func Key(kind string, params ...any) string {
	var b strings.Builder
	b.WriteString(kind)
	for _, p := range params {
		b.WriteString(keySep)
		fmt.Fprint(&b, p)
	}
	return b.String()
}
