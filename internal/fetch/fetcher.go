// Package fetch downloads storefront pages concurrently with per-URL retries.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/storelens/internal/cache"
	"github.com/law-makers/storelens/internal/proxy"
	"github.com/law-makers/storelens/internal/ratelimit"
	"github.com/law-makers/storelens/internal/retry"
	"github.com/law-makers/storelens/pkg/models"
)

// Options configures a Fetcher. Zero values fall back to sensible defaults.
type Options struct {
	Timeout         time.Duration
	MaxConnsPerHost int
	UserAgent       string
	Headers         http.Header
	Retry           retry.Config
	Limiter         ratelimit.Limiter
	Cache           cache.Cache
	CacheTTL        time.Duration
	Proxies         *proxy.Pool
	Renderer        Renderer
}

// Fetcher issues GET requests over a shared, connection-capped pool.
type Fetcher struct {
	client    *resty.Client
	transport *http.Transport
	headers   http.Header
	retry     retry.Config
	limiter   ratelimit.Limiter
	cache     cache.Cache
	cacheTTL  time.Duration
	renderer  Renderer
}

// New creates a Fetcher.
func New(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxConnsPerHost <= 0 {
		opts.MaxConnsPerHost = 10
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   opts.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxConnsPerHost:     opts.MaxConnsPerHost,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: opts.MaxConnsPerHost,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if opts.Proxies != nil && opts.Proxies.Len() > 0 {
		transport.Proxy = opts.Proxies.ProxyFunc()
	}

	client := resty.New().
		SetTransport(transport).
		SetTimeout(opts.Timeout).
		SetLogger(restyLogger{}).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.9")
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}

	return &Fetcher{
		client:    client,
		transport: transport,
		headers:   opts.Headers,
		retry:     opts.Retry,
		limiter:   opts.Limiter,
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		renderer:  opts.Renderer,
	}
}

// FetchAll fetches every URL at once and waits for all of them. The result
// has exactly one entry per distinct URL; URLs that failed after all retries
// map to nil. It never fails as a whole.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) models.PageSet {
	pages := make(models.PageSet, len(urls))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, u := range urls {
		if _, dup := pages[u]; dup {
			continue
		}
		pages[u] = nil

		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			page, err := f.Fetch(ctx, u)
			if err != nil {
				log.Debug().Str("url", u).Err(err).Msg("Page unavailable")
				return
			}
			mu.Lock()
			pages[u] = page
			mu.Unlock()
		}(u)
	}

	wg.Wait()

	log.Debug().
		Int("requested", len(pages)).
		Int("fetched", pages.Fetched()).
		Msg("Batch fetch completed")
	return pages
}

type noCacheKey struct{}

// WithoutCache returns a context under which Fetch ignores cached pages. The
// fresh pages still replace what the cache held.
func WithoutCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, noCacheKey{}, true)
}

func cacheBypassed(ctx context.Context) bool {
	v, _ := ctx.Value(noCacheKey{}).(bool)
	return v
}

// Fetch retrieves one URL, retrying transport errors and non-2xx responses
// with a linearly growing delay. URLs ending in .json are decoded as JSON.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*models.Page, error) {
	if f.cache != nil && !cacheBypassed(ctx) {
		if page, ok := f.cache.Get(rawURL); ok {
			return page, nil
		}
	}

	var page *models.Page
	err := retry.Do(ctx, f.retry, func(attempt int) error {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx, rawURL); err != nil {
				return retry.Permanent(err)
			}
		}
		p, err := f.get(ctx, rawURL)
		if err != nil {
			log.Debug().
				Str("url", rawURL).
				Int("attempt", attempt+1).
				Err(err).
				Msg("Fetch attempt failed")
			return err
		}
		page = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		f.cache.Set(rawURL, page, f.cacheTTL)
	}
	return page, nil
}

// Render loads rawURL in the configured headless browser and returns the
// rendered DOM as an HTML page. It reports ErrNoRenderer when rendering is off.
func (f *Fetcher) Render(ctx context.Context, rawURL string) (*models.Page, error) {
	if f.renderer == nil {
		return nil, ErrNoRenderer
	}
	start := time.Now()
	html, err := f.renderer.Render(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return &models.Page{
		URL:          rawURL,
		Kind:         models.KindHTML,
		Body:         html,
		StatusCode:   http.StatusOK,
		FetchedAt:    time.Now(),
		ResponseTime: time.Since(start).Milliseconds(),
	}, nil
}

// CanRender reports whether a headless renderer is configured.
func (f *Fetcher) CanRender() bool {
	return f.renderer != nil
}

// Close releases idle connections and the renderer.
func (f *Fetcher) Close() error {
	f.transport.CloseIdleConnections()
	if f.renderer != nil {
		return f.renderer.Close()
	}
	return nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (*models.Page, error) {
	req := f.client.R().SetContext(ctx)
	if len(f.headers) > 0 {
		req.SetHeaderMultiValues(f.headers)
	}

	resp, err := req.Get(rawURL)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &retry.StatusError{StatusCode: resp.StatusCode(), Status: resp.Status(), URL: rawURL}
	}

	page := &models.Page{
		URL:          rawURL,
		Kind:         models.KindHTML,
		StatusCode:   resp.StatusCode(),
		FetchedAt:    time.Now(),
		ResponseTime: resp.Time().Milliseconds(),
	}

	body := resp.Body()
	if IsJSON(rawURL) {
		// Numbers stay json.Number so large product ids keep every digit.
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, retry.Permanent(fmt.Errorf("decode %s: %w", rawURL, err))
		}
		page.Kind = models.KindJSON
		page.JSON = v
		page.Body = string(body)
		return page, nil
	}

	page.Body = string(body)
	return page, nil
}

// ErrNoRenderer is returned by Render when no headless browser is configured.
var ErrNoRenderer = errors.New("headless rendering is not enabled")

// restyLogger routes resty's internal warnings through zerolog.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) { log.Error().Msgf(format, v...) }
func (restyLogger) Warnf(format string, v ...interface{})  { log.Warn().Msgf(format, v...) }
func (restyLogger) Debugf(format string, v ...interface{}) { log.Debug().Msgf(format, v...) }
