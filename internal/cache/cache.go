// internal/cache/cache.go
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/law-makers/storelens/pkg/models"
	"github.com/rs/zerolog/log"
)

// Cache stores fetched pages keyed by URL.
type Cache interface {
	Get(key string) (*models.Page, bool)
	Set(key string, page *models.Page, ttl time.Duration)
	Delete(key string)
	Clear()
	Close()
}

type entry struct {
	key       string
	page      *models.Page
	size      int64
	expiresAt time.Time
}

// MemoryCache is an LRU cache bounded by an approximate byte size. Expired
// entries are dropped lazily on Get and by a background sweep.
type MemoryCache struct {
	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List
	maxSize int64
	size    int64
	hits    uint64
	misses  uint64
	cancel  context.CancelFunc
	now     func() time.Time
}

// NewMemoryCache creates a cache holding at most maxSizeBytes of page bodies.
func NewMemoryCache(maxSizeBytes int64) *MemoryCache {
	if maxSizeBytes <= 0 {
		maxSizeBytes = 32 * 1024 * 1024
	}
	ctx, cancel := context.WithCancel(context.Background())
	mc := &MemoryCache{
		items:   make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSizeBytes,
		cancel:  cancel,
		now:     time.Now,
	}
	go mc.sweep(ctx, time.Minute)
	return mc
}

func (mc *MemoryCache) Get(key string) (*models.Page, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	el, ok := mc.items[key]
	if !ok {
		mc.misses++
		return nil, false
	}
	e := el.Value.(*entry)
	if mc.now().After(e.expiresAt) {
		mc.removeElement(el)
		mc.misses++
		return nil, false
	}
	mc.order.MoveToFront(el)
	mc.hits++
	log.Debug().Str("url", key).Msg("Page cache hit")
	return e.page, true
}

func (mc *MemoryCache) Set(key string, page *models.Page, ttl time.Duration) {
	if page == nil || ttl <= 0 {
		return
	}
	size := pageSize(page)
	if size > mc.maxSize {
		return
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if el, ok := mc.items[key]; ok {
		mc.removeElement(el)
	}
	for mc.size+size > mc.maxSize && mc.order.Len() > 0 {
		mc.removeElement(mc.order.Back())
	}

	e := &entry{key: key, page: page, size: size, expiresAt: mc.now().Add(ttl)}
	mc.items[key] = mc.order.PushFront(e)
	mc.size += size
}

func (mc *MemoryCache) Delete(key string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if el, ok := mc.items[key]; ok {
		mc.removeElement(el)
	}
}

func (mc *MemoryCache) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.items = make(map[string]*list.Element)
	mc.order.Init()
	mc.size = 0
}

// Close stops the background sweep.
func (mc *MemoryCache) Close() {
	mc.cancel()
}

// Stats reports entry count, size and hit ratio.
func (mc *MemoryCache) Stats() Stats {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	s := Stats{Entries: mc.order.Len(), SizeBytes: mc.size, Hits: mc.hits, Misses: mc.misses}
	if total := mc.hits + mc.misses; total > 0 {
		s.HitRate = float64(mc.hits) / float64(total)
	}
	return s
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries   int     `json:"entries"`
	SizeBytes int64   `json:"size_bytes"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	HitRate   float64 `json:"hit_rate"`
}

// removeElement must be called with mu held.
func (mc *MemoryCache) removeElement(el *list.Element) {
	e := el.Value.(*entry)
	mc.order.Remove(el)
	delete(mc.items, e.key)
	mc.size -= e.size
}

func (mc *MemoryCache) sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			mc.mu.Lock()
			now := mc.now()
			var next *list.Element
			for el := mc.order.Front(); el != nil; el = next {
				next = el.Next()
				if now.After(el.Value.(*entry).expiresAt) {
					mc.removeElement(el)
				}
			}
			mc.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

// pageSize approximates the memory held by a page; decoded JSON is counted by
// its raw body length.
func pageSize(p *models.Page) int64 {
	return int64(len(p.Body)+len(p.URL)) + 512
}
