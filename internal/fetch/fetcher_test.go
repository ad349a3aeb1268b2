package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/law-makers/storelens/internal/cache"
	"github.com/law-makers/storelens/internal/ratelimit"
	"github.com/law-makers/storelens/internal/retry"
	urlutil "github.com/law-makers/storelens/internal/utils/url"
	"github.com/law-makers/storelens/pkg/models"
)

func newTestFetcher(timeout time.Duration, retries int) *Fetcher {
	return New(Options{
		Timeout:   timeout,
		UserAgent: "storelens-test/1.0",
		Retry:     retry.Config{MaxRetries: retries, BaseDelay: time.Millisecond},
		Limiter:   ratelimit.NewHostLimiter(0, 0),
	})
}

func TestFetchAll_PartialTimeouts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/slow") {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		w.Write([]byte("<html><body>ok " + r.URL.Path + "</body></html>"))
	}))
	defer server.Close()

	urls := []string{
		server.URL + "/a",
		server.URL + "/b",
		server.URL + "/c",
		server.URL + "/slow1",
		server.URL + "/slow2",
	}

	f := newTestFetcher(100*time.Millisecond, 1)
	defer f.Close()

	pages := f.FetchAll(context.Background(), urls)

	if len(pages) != 5 {
		t.Fatalf("Expected 5 entries, got %d", len(pages))
	}
	if pages.Fetched() != 3 {
		t.Errorf("Expected 3 pages with content, got %d", pages.Fetched())
	}
	for _, u := range urls[3:] {
		p, present := pages[u]
		if !present {
			t.Errorf("Expected absent entry for %s", u)
		}
		if p != nil {
			t.Errorf("Expected nil page for %s", u)
		}
	}
}

func TestFetch_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("<html>finally</html>"))
	}))
	defer server.Close()

	f := newTestFetcher(time.Second, 3)
	page, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("Expected 3 calls, got %d", atomic.LoadInt32(&calls))
	}
	if page.Kind != models.KindHTML || !strings.Contains(page.Body, "finally") {
		t.Errorf("Unexpected page %+v", page)
	}
}

func TestFetch_NonSuccessExhaustsRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	f := newTestFetcher(time.Second, 2)
	if _, err := f.Fetch(context.Background(), server.URL+"/pages/faq"); err == nil {
		t.Fatalf("Expected error for 404")
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("Expected 3 attempts, got %d", atomic.LoadInt32(&calls))
	}
}

func TestFetch_DecodesJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[{"id":1,"title":"Tee"}]}`))
	}))
	defer server.Close()

	f := newTestFetcher(time.Second, 0)
	page, err := f.Fetch(context.Background(), server.URL+"/products.json")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if page.Kind != models.KindJSON {
		t.Fatalf("Expected JSON page, got %s", page.Kind)
	}
	root, ok := page.JSON.(map[string]any)
	if !ok {
		t.Fatalf("Expected object, got %T", page.JSON)
	}
	if products, _ := root["products"].([]any); len(products) != 1 {
		t.Errorf("Expected 1 product, got %v", root["products"])
	}
}

func TestFetch_InvalidJSONIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	f := newTestFetcher(time.Second, 3)
	if _, err := f.Fetch(context.Background(), server.URL+"/collections/all.json"); err == nil {
		t.Fatalf("Expected decode error")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("Expected a single attempt, got %d", atomic.LoadInt32(&calls))
	}
}

func TestFetch_HeadersAndCache(t *testing.T) {
	var calls int32
	var gotUA, gotCustom atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		gotUA.Store(r.Header.Get("User-Agent"))
		gotCustom.Store(r.Header.Get("X-Store-Token"))
		w.Write([]byte("<html>cached</html>"))
	}))
	defer server.Close()

	memCache := cache.NewMemoryCache(1 << 20)
	defer memCache.Close()

	f := New(Options{
		Timeout:   time.Second,
		UserAgent: "storelens-test/1.0",
		Headers:   http.Header{"X-Store-Token": {"secret"}},
		Cache:     memCache,
		CacheTTL:  time.Minute,
	})

	for i := 0; i < 2; i++ {
		if _, err := f.Fetch(context.Background(), server.URL); err != nil {
			t.Fatalf("Fetch %d failed: %v", i, err)
		}
	}

	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("Expected second fetch to be served from cache, got %d calls", atomic.LoadInt32(&calls))
	}
	if ua, _ := gotUA.Load().(string); ua != "storelens-test/1.0" {
		t.Errorf("Expected user agent to be sent, got %q", ua)
	}
	if custom, _ := gotCustom.Load().(string); custom != "secret" {
		t.Errorf("Expected custom header to be sent, got %q", custom)
	}
}

func TestFetch_WithoutCacheReadsLivePage(t *testing.T) {
	var body atomic.Value
	body.Store("<html>old</html>")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body.Load().(string)))
	}))
	defer server.Close()

	memCache := cache.NewMemoryCache(1 << 20)
	defer memCache.Close()
	f := New(Options{Timeout: time.Second, Cache: memCache, CacheTTL: time.Minute})
	ctx := context.Background()

	if _, err := f.Fetch(ctx, server.URL); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	body.Store("<html>new</html>")

	page, err := f.Fetch(ctx, server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if page.Body != "<html>old</html>" {
		t.Errorf("Expected cached body, got %q", page.Body)
	}

	page, err = f.Fetch(WithoutCache(ctx), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if page.Body != "<html>new</html>" {
		t.Errorf("Expected live body, got %q", page.Body)
	}

	page, _ = f.Fetch(ctx, server.URL)
	if page == nil || page.Body != "<html>new</html>" {
		t.Errorf("Expected the live page to replace the cached one")
	}
}

func TestRenderWithoutRenderer(t *testing.T) {
	f := newTestFetcher(time.Second, 0)
	if f.CanRender() {
		t.Errorf("Expected no renderer")
	}
	if _, err := f.Render(context.Background(), "https://shop.test"); err != ErrNoRenderer {
		t.Errorf("Expected ErrNoRenderer, got %v", err)
	}
}

func TestCandidateURLs(t *testing.T) {
	urls := CandidateURLs("https://shop.test/")

	if len(urls) != 25 {
		t.Errorf("Expected 25 candidate URLs, got %d", len(urls))
	}
	if urls[0] != "https://shop.test" {
		t.Errorf("Expected home page first, got %s", urls[0])
	}
	if urls[1] != "https://shop.test/products.json" {
		t.Errorf("Expected products feed second, got %s", urls[1])
	}
	if !IsJSON(urls[3]) || IsJSON(urls[2]) {
		t.Errorf("Expected only .json paths to be classified as JSON")
	}
}

func TestCandidateURLsFromNormalizedInput(t *testing.T) {
	for _, in := range []string{"https://acme.com/?utm_source=ad", "https://acme.com/collections/shoes"} {
		base, err := urlutil.NormalizeStoreURL(in)
		if err != nil {
			t.Fatalf("NormalizeStoreURL(%q): %v", in, err)
		}
		urls := CandidateURLs(base)
		if urls[1] != "https://acme.com/products.json" {
			t.Errorf("Expected feed at the store root for %q, got %s", in, urls[1])
		}
		for _, u := range urls {
			if strings.Contains(u, "?") || strings.Contains(u, "/collections/shoes") {
				t.Errorf("Candidate %s carries the input path or query", u)
			}
		}
	}
}
