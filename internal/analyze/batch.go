package analyze

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/law-makers/storelens/internal/apperr"
	"github.com/law-makers/storelens/internal/extract"
	urlutil "github.com/law-makers/storelens/internal/utils/url"
	"github.com/law-makers/storelens/pkg/models"
)

const (
	DefaultMaxBulkURLs     = 50
	DefaultBulkConcurrency = 3
	MinCompareURLs         = 2
	DefaultMaxCompareURLs  = 10
)

// BulkItem is the outcome for one URL of a bulk run. Exactly one of Profile
// and Error is set.
type BulkItem struct {
	URL     string               `json:"url"`
	Profile *models.StoreProfile `json:"profile,omitempty"`
	Error   string               `json:"error,omitempty"`
	Err     error                `json:"-"`
}

// BulkResult summarizes a bulk run. Results keep the input order.
type BulkResult struct {
	TotalStores  int        `json:"total_stores"`
	Successful   int        `json:"successful_analyses"`
	Failed       int        `json:"failed_analyses"`
	AverageScore float64    `json:"average_completeness"`
	Results      []BulkItem `json:"results"`
	Duration     string     `json:"duration"`
}

// Bulk analyzes up to Options.MaxBulkURLs stores with at most concurrency analyses
// in flight. A failing store never fails the run. progress, when set, is
// called once per finished URL, never concurrently.
func (a *Analyzer) Bulk(ctx context.Context, urls []string, concurrency int, progress func(BulkItem)) (*BulkResult, error) {
	if len(urls) == 0 {
		return nil, apperr.Validation("no URLs given", apperr.ErrTooFewURLs)
	}
	if len(urls) > a.opts.MaxBulkURLs {
		return nil, apperr.Validation(fmt.Sprintf("at most %d URLs per bulk request", a.opts.MaxBulkURLs), apperr.ErrTooManyURLs)
	}
	if concurrency <= 0 {
		concurrency = DefaultBulkConcurrency
	}

	start := time.Now()
	items := a.runAll(ctx, urls, concurrency, progress)

	res := &BulkResult{TotalStores: len(urls), Results: items}
	var total float64
	for _, it := range items {
		if it.Profile == nil {
			res.Failed++
			continue
		}
		res.Successful++
		total += it.Profile.Completeness.Score
	}
	if res.Successful > 0 {
		res.AverageScore = total / float64(res.Successful)
	}
	res.Duration = time.Since(start).Round(time.Millisecond).String()

	log.Info().
		Int("total", res.TotalStores).
		Int("successful", res.Successful).
		Int("failed", res.Failed).
		Msg("Bulk analysis completed")
	return res, nil
}

func (a *Analyzer) runAll(ctx context.Context, urls []string, concurrency int, progress func(BulkItem)) []BulkItem {
	items := make([]BulkItem, len(urls))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, u := range urls {
		g.Go(func() error {
			item := BulkItem{URL: u}
			if err := ctx.Err(); err != nil {
				item.Err = err
			} else {
				item.Profile, item.Err = a.Analyze(ctx, u)
			}
			if item.Err != nil {
				item.Error = item.Err.Error()
				log.Warn().Str("url", u).Err(item.Err).Msg("Store analysis failed")
			}

			mu.Lock()
			items[i] = item
			if progress != nil {
				progress(item)
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return items
}

// StoreSummary is one column of a comparison.
type StoreSummary struct {
	URL            string  `json:"url"`
	Name           string  `json:"brand_name,omitempty"`
	Products       int     `json:"total_products"`
	HeroProducts   int     `json:"hero_products"`
	Policies       int     `json:"policies"`
	FAQs           int     `json:"faqs"`
	SocialHandles  int     `json:"social_handles"`
	ImportantLinks int     `json:"important_links"`
	HasContact     bool    `json:"has_contact"`
	Theme          string  `json:"theme,omitempty"`
	Apps           int     `json:"apps"`
	Score          float64 `json:"completeness"`
	Error          string  `json:"error,omitempty"`
}

// CompareResult lines stores up side by side. Leaders maps a metric to the
// URL of the store that leads it.
type CompareResult struct {
	StoresCompared int               `json:"stores_compared"`
	Stores         []StoreSummary    `json:"stores"`
	Leaders        map[string]string `json:"leaders"`
	ComparedAt     time.Time         `json:"compared_at"`
}

// Compare analyzes between MinCompareURLs and Options.MaxCompareURLs stores
// concurrently without saving them and summarizes the results.
func (a *Analyzer) Compare(ctx context.Context, urls []string) (*CompareResult, error) {
	if len(urls) < MinCompareURLs {
		return nil, apperr.Validation(fmt.Sprintf("at least %d URLs required for comparison", MinCompareURLs), apperr.ErrTooFewURLs)
	}
	if len(urls) > a.opts.MaxCompareURLs {
		return nil, apperr.Validation(fmt.Sprintf("at most %d URLs allowed for comparison", a.opts.MaxCompareURLs), apperr.ErrTooManyURLs)
	}

	items := a.runAll(ctx, urls, len(urls), nil)
	res := &CompareResult{
		Stores:     make([]StoreSummary, len(items)),
		Leaders:    make(map[string]string),
		ComparedAt: time.Now().UTC(),
	}
	for i, it := range items {
		res.Stores[i] = summarize(it)
		if it.Profile != nil {
			res.StoresCompared++
		}
	}

	metrics := map[string]func(StoreSummary) float64{
		"completeness": func(s StoreSummary) float64 { return s.Score },
		"products":     func(s StoreSummary) float64 { return float64(s.Products) },
		"social":       func(s StoreSummary) float64 { return float64(s.SocialHandles) },
		"policies":     func(s StoreSummary) float64 { return float64(s.Policies) },
		"links":        func(s StoreSummary) float64 { return float64(s.ImportantLinks) },
	}
	for name, value := range metrics {
		if leader, ok := leaderOf(res.Stores, value); ok {
			res.Leaders[name] = leader
		}
	}
	return res, nil
}

func summarize(it BulkItem) StoreSummary {
	s := StoreSummary{URL: it.URL, Error: it.Error}
	p := it.Profile
	if p == nil {
		return s
	}
	s.URL = p.URL
	s.Name = p.Name
	s.Products = len(p.Products)
	for _, h := range p.HeroProducts {
		if h.Provenance == models.ProvenanceExtracted {
			s.HeroProducts++
		}
	}
	s.Policies = len(p.Policies)
	for _, f := range p.FAQs {
		if f.Provenance == models.ProvenanceExtracted {
			s.FAQs++
		}
	}
	s.SocialHandles = len(p.SocialHandles)
	s.ImportantLinks = len(p.ImportantLinks)
	s.HasContact = p.Completeness.HasContact
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	s.Apps = len(p.Apps)
	s.Score = p.Completeness.Score
	return s
}

// leaderOf returns the URL with the strictly highest positive value; ties go
// to the store listed first.
func leaderOf(stores []StoreSummary, value func(StoreSummary) float64) (string, bool) {
	ranked := make([]StoreSummary, 0, len(stores))
	for _, s := range stores {
		if s.Error == "" && value(s) > 0 {
			ranked = append(ranked, s)
		}
	}
	if len(ranked) == 0 {
		return "", false
	}
	sort.SliceStable(ranked, func(i, j int) bool { return value(ranked[i]) > value(ranked[j]) })
	return ranked[0].URL, true
}

// QuickCheckResult is the outcome of a lightweight reachability check.
type QuickCheckResult struct {
	URL             string    `json:"url"`
	IsShopifyStore  bool      `json:"is_shopify_store"`
	Accessible      bool      `json:"accessible"`
	BrandName       string    `json:"brand_name"`
	Title           string    `json:"title"`
	HasProductsJSON bool      `json:"has_products_json"`
	CheckedAt       time.Time `json:"check_timestamp"`
}

// QuickCheck fetches only the home page and the products feed. An
// unreachable store is reported in the result, not as an error.
func (a *Analyzer) QuickCheck(ctx context.Context, rawURL string) (*QuickCheckResult, error) {
	base, err := urlutil.NormalizeStoreURL(rawURL)
	if err != nil {
		return nil, err
	}
	res := &QuickCheckResult{
		URL:       base,
		BrandName: urlutil.BrandFromHost(base),
		CheckedAt: time.Now().UTC(),
	}

	var g errgroup.Group
	var home *models.Page
	g.Go(func() error {
		page, err := a.fetcher.Fetch(ctx, base)
		if err != nil {
			log.Debug().Str("url", base).Err(err).Msg("Quick check: home page unavailable")
			return nil
		}
		home = page
		return nil
	})
	g.Go(func() error {
		page, err := a.fetcher.Fetch(ctx, base+"/products.json")
		if err != nil {
			return nil
		}
		if feed, ok := page.JSON.(map[string]any); ok {
			_, res.HasProductsJSON = feed["products"]
		}
		return nil
	})
	_ = g.Wait()

	if home != nil && home.HasContent() {
		res.Accessible = home.StatusCode == 200
		if doc, err := extract.ParseHTML(home.Body); err == nil {
			res.Title = extract.CleanText(doc.Find("title").First().Text())
			res.BrandName = ResolveBrandName(doc, base)
		}
		res.IsShopifyStore = extract.LooksLikeShopify(home.Body)
	}
	res.IsShopifyStore = res.IsShopifyStore || res.HasProductsJSON
	return res, nil
}
