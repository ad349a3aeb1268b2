package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/law-makers/storelens/pkg/models"
)

func TestMemoryCacheGetSet(t *testing.T) {
	c := NewMemoryCache(1 << 20)
	defer c.Close()

	page := &models.Page{URL: "https://shop.test/", Kind: models.KindHTML, Body: "<html></html>"}
	c.Set(page.URL, page, time.Minute)

	got, ok := c.Get(page.URL)
	if !ok {
		t.Fatalf("Expected cache hit")
	}
	if got.Body != page.Body {
		t.Errorf("Expected body %q, got %q", page.Body, got.Body)
	}
	if _, ok := c.Get("https://shop.test/missing"); ok {
		t.Errorf("Expected miss for unknown key")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %+v", stats)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(1 << 20)
	defer c.Close()

	now := time.Now()
	c.now = func() time.Time { return now }
	c.Set("k", &models.Page{URL: "k", Body: "x"}, time.Second)

	now = now.Add(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Errorf("Expected expired entry to miss")
	}
	if c.Stats().Entries != 0 {
		t.Errorf("Expected expired entry to be removed")
	}
}

func TestMemoryCacheEvictsLRU(t *testing.T) {
	body := strings.Repeat("a", 1000)
	c := NewMemoryCache(4000)
	defer c.Close()

	c.Set("one", &models.Page{URL: "one", Body: body}, time.Minute)
	c.Set("two", &models.Page{URL: "two", Body: body}, time.Minute)
	c.Get("one")
	c.Set("three", &models.Page{URL: "three", Body: body}, time.Minute)

	if _, ok := c.Get("two"); ok {
		t.Errorf("Expected least recently used entry to be evicted")
	}
	if _, ok := c.Get("one"); !ok {
		t.Errorf("Expected recently used entry to survive")
	}
}
