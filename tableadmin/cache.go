package tableadmin

import (
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// descriptorCache caches table descriptors for a bounded duration, so
// repeated existence checks of hot tables don't round-trip to the
// admin service.
type descriptorCache struct {
	cache *lru.Cache
	ttl   time.Duration
}

// newDescriptorCache returns a descriptorCache of the given size and
// caching duration, or nil (a cache which always misses) if size is 0.
func newDescriptorCache(size int, ttl time.Duration) *descriptorCache {
	if size == 0 {
		return nil
	}
	var cache, err = lru.New(size)
	if err != nil {
		panic(err.Error()) // Only errors on size <= 0.
	}
	return &descriptorCache{cache: cache, ttl: ttl}
}

type cachedDescriptor struct {
	desc tableDescriptor
	at   time.Time
}

func (dc *descriptorCache) get(table string) (tableDescriptor, bool) {
	if dc == nil {
		return tableDescriptor{}, false
	}
	if v, ok := dc.cache.Get(table); ok {
		// If the TTL has elapsed, treat as a cache miss and remove.
		if cd := v.(cachedDescriptor); cd.at.Add(dc.ttl).Before(timeNow()) {
			dc.cache.Remove(table)
		} else {
			return cd.desc, true
		}
	}
	return tableDescriptor{}, false
}

func (dc *descriptorCache) put(table string, desc tableDescriptor) {
	if dc != nil {
		dc.cache.Add(table, cachedDescriptor{desc: desc, at: timeNow()})
	}
}

func (dc *descriptorCache) drop(table string) {
	if dc != nil {
		dc.cache.Remove(table)
	}
}

var timeNow = time.Now
