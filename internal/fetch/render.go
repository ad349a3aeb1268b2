package fetch

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// Renderer produces the DOM of a page after its scripts ran. Storefronts that
// build their home page client-side only expose hero markup this way.
type Renderer interface {
	Render(ctx context.Context, rawURL string) (string, error)
	Close() error
}

// ChromeOptions configures a ChromeRenderer.
type ChromeOptions struct {
	ExecPath  string
	UserAgent string
	Proxy     string
	Timeout   time.Duration
	// Headers are added to every request the tab makes.
	Headers http.Header
}

// ChromeRenderer renders pages in a single headless Chrome process started on
// first use. Each Render call gets its own tab.
type ChromeRenderer struct {
	opts        ChromeOptions
	once        sync.Once
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromeRenderer creates a renderer. Chrome is not launched until Render.
func NewChromeRenderer(opts ChromeOptions) *ChromeRenderer {
	if opts.Timeout <= 0 {
		opts.Timeout = 45 * time.Second
	}
	return &ChromeRenderer{opts: opts}
}

func (c *ChromeRenderer) start() {
	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.Flag("window-size", "1366,900"),
	}
	if c.opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(c.opts.UserAgent))
	}
	if path := findChrome(c.opts.ExecPath); path != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(path))
	}
	if c.opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(c.opts.Proxy))
	}
	c.allocCtx, c.allocCancel = chromedp.NewExecAllocator(context.Background(), allocOpts...)
	log.Debug().Msg("Headless Chrome allocator started")
}

// Render navigates to rawURL, waits for the body and returns the outer HTML
// of the document.
func (c *ChromeRenderer) Render(ctx context.Context, rawURL string) (string, error) {
	c.once.Do(c.start)

	tabCtx, cancelTab := chromedp.NewContext(c.allocCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, c.opts.Timeout)
	defer cancelTimeout()

	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	// First document response is the navigation itself.
	var status atomic.Int64
	chromedp.ListenTarget(tabCtx, func(ev any) {
		if resp, ok := ev.(*network.EventResponseReceived); ok && resp.Type == network.ResourceTypeDocument {
			status.CompareAndSwap(0, resp.Response.Status)
		}
	})

	tasks := chromedp.Tasks{network.Enable()}
	if len(c.opts.Headers) > 0 {
		extra := make(network.Headers, len(c.opts.Headers))
		for k := range c.opts.Headers {
			extra[k] = c.opts.Headers.Get(k)
		}
		tasks = append(tasks, network.SetExtraHTTPHeaders(extra))
	}

	var html string
	tasks = append(tasks,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(750*time.Millisecond),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err := chromedp.Run(tabCtx, tasks); err != nil {
		return "", fmt.Errorf("render %s: %w", rawURL, err)
	}
	if code := status.Load(); code >= http.StatusBadRequest {
		return "", fmt.Errorf("render %s: status %d", rawURL, code)
	}
	return html, nil
}

// Close shuts Chrome down if it was started.
func (c *ChromeRenderer) Close() error {
	if c.allocCancel != nil {
		c.allocCancel()
	}
	return nil
}

// findChrome returns the explicit path when executable, otherwise the first
// well-known Chrome/Chromium binary on PATH. An empty result lets chromedp
// use its own lookup.
func findChrome(explicit string) string {
	if explicit != "" {
		if st, err := os.Stat(explicit); err == nil && !st.IsDir() {
			return explicit
		}
		log.Warn().Str("path", explicit).Msg("Configured Chrome path not found, falling back to lookup")
	}
	for _, name := range []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return ""
}
