// Package analyze turns the pages of one storefront into a StoreProfile. It
// drives the fetcher, runs every extractor over the pages it got back, pads
// the sections that carry minimum counts and scores the result.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/storelens/internal/apperr"
	"github.com/law-makers/storelens/internal/competitors"
	"github.com/law-makers/storelens/internal/extract"
	"github.com/law-makers/storelens/internal/fetch"
	"github.com/law-makers/storelens/internal/reqctx"
	"github.com/law-makers/storelens/internal/synth"
	urlutil "github.com/law-makers/storelens/internal/utils/url"
	"github.com/law-makers/storelens/pkg/models"
)

// PageFetcher is the part of fetch.Fetcher the analyzer depends on.
type PageFetcher interface {
	FetchAll(ctx context.Context, urls []string) models.PageSet
	Fetch(ctx context.Context, url string) (*models.Page, error)
	Render(ctx context.Context, url string) (*models.Page, error)
	CanRender() bool
}

// Options tune an Analyzer. Zero values fall back to defaults.
type Options struct {
	// RenderHome re-reads the home page through the headless renderer when
	// one is configured.
	RenderHome      bool
	CompetitorLimit int
	// MaxBulkURLs and MaxCompareURLs cap the size of one Bulk or Compare call.
	MaxBulkURLs    int
	MaxCompareURLs int
}

// Analyzer builds store profiles.
type Analyzer struct {
	fetcher   PageFetcher
	extractor *extract.Extractor
	suggester *competitors.Suggester
	opts      Options
}

// New creates an Analyzer from its collaborators.
func New(f PageFetcher, e *extract.Extractor, s *competitors.Suggester, opts Options) *Analyzer {
	if opts.CompetitorLimit <= 0 {
		opts.CompetitorLimit = competitors.DefaultLimit
	}
	if opts.MaxBulkURLs <= 0 {
		opts.MaxBulkURLs = DefaultMaxBulkURLs
	}
	if opts.MaxCompareURLs < MinCompareURLs {
		opts.MaxCompareURLs = DefaultMaxCompareURLs
	}
	return &Analyzer{fetcher: f, extractor: e, suggester: s, opts: opts}
}

// Limits reports the largest Bulk and Compare batches this Analyzer accepts.
func (a *Analyzer) Limits() (bulk, compare int) {
	return a.opts.MaxBulkURLs, a.opts.MaxCompareURLs
}

// Competitors exposes the suggester for callers that only want suggestions.
func (a *Analyzer) Competitors(storeURL string, limit int) ([]models.Competitor, error) {
	base, err := urlutil.NormalizeStoreURL(storeURL)
	if err != nil {
		return nil, err
	}
	return a.suggester.Suggest(base, limit), nil
}

// Analyze fetches and extracts one storefront. It fails only when the URL is
// invalid or the home page cannot be fetched; every other page is optional.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string) (*models.StoreProfile, error) {
	ctx = reqctx.WithRequestContext(ctx)
	start := time.Now()

	base, err := urlutil.NormalizeStoreURL(rawURL)
	if err != nil {
		return nil, reqctx.NewRequestError(ctx, err)
	}
	logger := log.With().Str("request_id", reqctx.ID(ctx)).Str("url", base).Logger()
	logger.Info().Msg("Analyzing store")

	home, err := a.fetcher.Fetch(ctx, base)
	if err == nil && !home.HasContent() {
		err = errors.New("empty response body")
	}
	if err != nil {
		logger.Warn().Err(err).Msg("Home page unreachable")
		return nil, reqctx.NewRequestError(ctx, apperr.New(apperr.CodeStoreUnreachable,
			"store home page unreachable", fmt.Errorf("%w: %w", apperr.ErrHomeUnreachable, err)))
	}

	candidates := fetch.CandidateURLs(base)
	pages := a.fetcher.FetchAll(ctx, candidates[1:])
	if pages == nil {
		pages = make(models.PageSet, len(candidates))
	}
	pages[base] = home

	if a.opts.RenderHome && a.fetcher.CanRender() {
		if rendered, err := a.fetcher.Render(ctx, base); err != nil {
			logger.Warn().Err(err).Msg("Rendering failed, using the static home page")
		} else if rendered.HasContent() {
			pages[base] = rendered
		}
	}

	doc, err := extract.ParseHTML(pages[base].Body)
	if err != nil {
		return nil, reqctx.NewRequestError(ctx, err)
	}

	profile := a.extractProfile(base, doc, pages, logger)
	profile.PagesAnalyzed = pages.Fetched()
	profile.AnalyzedAt = time.Now().UTC()
	profile.Duration = time.Since(start)

	logger.Info().
		Str("brand", profile.Name).
		Int("products", len(profile.Products)).
		Int("pages", profile.PagesAnalyzed).
		Float64("score", profile.Completeness.Score).
		Dur("duration", profile.Duration).
		Msg("Analysis complete")
	return profile, nil
}

func (a *Analyzer) extractProfile(base string, doc *goquery.Document, pages models.PageSet, logger zerolog.Logger) *models.StoreProfile {
	e := a.extractor
	info := e.BrandInfo(doc, base)

	contact := e.Contact(doc)
	contact.ContactPageURL = e.ContactPageURL(doc, base)

	hero := synth.PadFeatured(doc, base, e.HeroProducts(doc, base), synth.MinFeatured)

	p := &models.StoreProfile{
		URL:            base,
		Name:           ResolveBrandName(doc, base),
		FaviconURL:     info.FaviconURL,
		Description:    info.Description,
		About:          info.About,
		Story:          info.Story,
		Products:       a.products(base, pages, logger),
		HeroProducts:   hero,
		Policies:       e.Policies(pages, base),
		FAQs:           a.faqs(base, doc, pages),
		SocialHandles:  e.SocialHandles(doc, base),
		Contact:        contact,
		ImportantLinks: e.ImportantLinks(doc, base),
		Competitors:    a.suggester.Suggest(base, a.opts.CompetitorLimit),
		Theme:          e.Theme(doc),
		Apps:           e.Apps(doc),
	}
	if p.About == "" {
		p.About = "Comprehensive analysis completed on " + time.Now().Format("2006-01-02")
	}
	if p.Story == "" {
		p.Story = "Shopify store with comprehensive brand analysis"
	}

	normalize(p)
	p.Completeness = Score(p)
	p.Recommendations = Recommendations(p)
	return p
}

// products reads /products.json and falls back to /collections/all.json when
// the first feed is missing or empty.
func (a *Analyzer) products(base string, pages models.PageSet, logger zerolog.Logger) []models.Product {
	for _, path := range []string{"/products.json", "/collections/all.json"} {
		page, ok := pages.Get(base + path)
		if !ok || !page.HasContent() {
			continue
		}
		var feed any = page.JSON
		if feed == nil {
			feed = []byte(page.Body)
		}
		products, err := a.extractor.Products(feed, base)
		if err != nil {
			logger.Debug().Str("feed", path).Err(err).Msg("Products feed unreadable")
			continue
		}
		if len(products) > 0 {
			return products
		}
	}
	return []models.Product{}
}

// faqs collects pairs from the FAQ, help and support pages, then the home
// page. The defaults are used only when all of them come up empty.
func (a *Analyzer) faqs(base string, home *goquery.Document, pages models.PageSet) []models.QAPair {
	var out []models.QAPair
	for _, path := range []string{"/pages/faq", "/pages/help", "/pages/support"} {
		page, ok := pages.Get(base + path)
		if !ok || !page.HasContent() {
			continue
		}
		doc, err := extract.ParseHTML(page.Body)
		if err != nil {
			continue
		}
		out = append(out, a.extractor.FAQs(doc)...)
	}
	if len(out) == 0 {
		out = a.extractor.FAQs(home)
	}
	if len(out) == 0 {
		return synth.DefaultFAQs()
	}

	out = extract.DedupeFAQs(out)
	if len(out) > extract.MaxFAQs {
		out = out[:extract.MaxFAQs]
	}
	return out
}

// normalize replaces nil slices so JSON output always carries arrays.
func normalize(p *models.StoreProfile) {
	if p.Policies == nil {
		p.Policies = []models.Policy{}
	}
	if p.SocialHandles == nil {
		p.SocialHandles = []models.SocialHandle{}
	}
	if p.ImportantLinks == nil {
		p.ImportantLinks = []models.NavLink{}
	}
	if p.Apps == nil {
		p.Apps = []string{}
	}
}
