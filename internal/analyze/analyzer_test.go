package analyze

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/storelens/internal/apperr"
	"github.com/law-makers/storelens/internal/cache"
	"github.com/law-makers/storelens/internal/competitors"
	"github.com/law-makers/storelens/internal/extract"
	"github.com/law-makers/storelens/internal/fetch"
	"github.com/law-makers/storelens/internal/reqctx"
	"github.com/law-makers/storelens/internal/retry"
	"github.com/law-makers/storelens/pkg/models"
)

const homePage = `<html><head>
	<title>Wool Runners | Acme Store</title>
	<meta name="description" content="Comfortable shoes made from natural materials.">
	<script src="https://cdn.shopify.com/s/files/theme.js"></script>
	<script>Shopify.theme = {"name":"Dawn","id":1};</script>
</head><body>
	<nav><a href="/pages/about">About Us</a><a href="/pages/contact">Contact</a></nav>
	<main><p>Shoes for every day.</p></main>
	<footer>
		<a href="https://www.instagram.com/acme/">Instagram</a>
		<a href="https://www.facebook.com/acme">Facebook</a>
		<a href="mailto:hello@acme.com">hello@acme.com</a>
	</footer>
</body></html>`

const productsFeed = `{"products":[
	{"id":1,"title":"Wool Runner","handle":"wool-runner","body_html":"<p>Soft</p>","variants":[{"id":11,"price":"98.00","available":true}]},
	{"id":2,"title":"Tree Dasher","handle":"tree-dasher","variants":[{"id":21,"price":"125.00","available":false}]}
]}`

var privacyPage = `<html><body><header>Menu</header><div class="rte"><h1>Privacy</h1><p>` +
	strings.Repeat("We respect your privacy and only keep what we need. ", 5) +
	`</p></div></body></html>`

const faqPage = `<html><body><div class="faq">
	<div class="faq-item"><h4>Do you ship abroad?</h4><div class="faq-answer">Yes, to over forty countries.</div></div>
	<div class="faq-item"><h4>Can I return worn shoes?</h4><div class="faq-answer">Within thirty days of delivery.</div></div>
</div></body></html>`

// storeServer serves the given path -> body map and 404s everything else.
func storeServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if strings.HasSuffix(r.URL.Path, ".json") {
			w.Header().Set("Content-Type", "application/json")
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	f := fetch.New(fetch.Options{
		Timeout: 2 * time.Second,
		Retry:   retry.Config{MaxRetries: 0, BaseDelay: time.Millisecond},
	})
	t.Cleanup(func() { f.Close() })
	return New(f, extract.New(), competitors.New(), Options{})
}

func TestAnalyzeBuildsProfile(t *testing.T) {
	server := storeServer(t, map[string]string{
		"/":                     homePage,
		"/products.json":        productsFeed,
		"/pages/privacy-policy": privacyPage,
		"/pages/faq":            faqPage,
	})

	p, err := newAnalyzer(t).Analyze(context.Background(), server.URL+"/")
	require.NoError(t, err)

	assert.Equal(t, server.URL, p.URL)
	assert.Equal(t, "Acme", p.Name)
	assert.Equal(t, "Comfortable shoes made from natural materials.", p.Description)
	assert.Equal(t, 4, p.PagesAnalyzed)

	require.Len(t, p.Products, 2)
	assert.True(t, p.Products[0].Available)
	assert.False(t, p.Products[1].Available)
	assert.Equal(t, server.URL+"/products/wool-runner", p.Products[0].URL)

	require.Len(t, p.Policies, 1)
	assert.Equal(t, models.PolicyPrivacy, p.Policies[0].Type)

	require.Len(t, p.FAQs, 2)
	assert.Equal(t, models.ProvenanceExtracted, p.FAQs[0].Provenance)

	assert.Len(t, p.SocialHandles, 2)
	assert.Equal(t, []string{"hello@acme.com"}, p.Contact.Emails)

	assert.GreaterOrEqual(t, len(p.HeroProducts), 2)
	assert.GreaterOrEqual(t, len(p.Competitors), 2)

	require.NotNil(t, p.Theme)
	assert.Equal(t, "Dawn", *p.Theme)

	assert.True(t, p.Completeness.HasProducts)
	assert.True(t, p.Completeness.HasPolicies)
	assert.True(t, p.Completeness.HasContact)
	assert.InDelta(t, 100.0, p.Completeness.Score, 0.01)
	assert.Equal(t, []string{"Expand social media presence across more platforms"}, p.Recommendations)
	assert.False(t, p.AnalyzedAt.IsZero())
}

func TestAnalyzeFallsBackToCollectionsFeed(t *testing.T) {
	server := storeServer(t, map[string]string{
		"/":                     homePage,
		"/collections/all.json": productsFeed,
	})

	p, err := newAnalyzer(t).Analyze(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, p.Products, 2)
}

func TestAnalyzeUsesDefaultFAQs(t *testing.T) {
	server := storeServer(t, map[string]string{"/": `<html><head><title>Plain</title></head><body><p>Hi</p></body></html>`})

	p, err := newAnalyzer(t).Analyze(context.Background(), server.URL)
	require.NoError(t, err)

	require.Len(t, p.FAQs, 3)
	for _, f := range p.FAQs {
		assert.Equal(t, models.ProvenanceSynthetic, f.Provenance)
	}
	assert.NotNil(t, p.Products)
	assert.Empty(t, p.Products)
	assert.Equal(t, 1, p.PagesAnalyzed)
	assert.Contains(t, p.About, "Comprehensive analysis completed on")
	assert.Equal(t, "Shopify store with comprehensive brand analysis", p.Story)
	assert.Contains(t, p.Recommendations, "Add product catalog data to improve customer experience")
}

func TestAnalyzeUsesStoreRoot(t *testing.T) {
	server := storeServer(t, map[string]string{
		"/":              homePage,
		"/products.json": productsFeed,
	})

	for _, in := range []string{server.URL + "/?utm_source=ad", server.URL + "/collections/all"} {
		p, err := newAnalyzer(t).Analyze(context.Background(), in)
		require.NoError(t, err, in)
		assert.Equal(t, server.URL, p.URL, in)
		assert.Len(t, p.Products, 2, in)
		assert.Empty(t, p.Policies, "home page text must not pass for a policy: %s", in)
		assert.Equal(t, 2, p.PagesAnalyzed, in)
	}
}

func TestAnalyzeMergesFAQPagesIgnoringCase(t *testing.T) {
	helpPage := `<html><body><div class="faq">
	<div class="faq-item"><h4>DO YOU SHIP ABROAD?</h4><div class="faq-answer">Yes, wherever the carrier goes.</div></div>
	<div class="faq-item"><h4>How long does delivery take?</h4><div class="faq-answer">Three to five business days.</div></div>
</div></body></html>`
	server := storeServer(t, map[string]string{
		"/":           homePage,
		"/pages/faq":  faqPage,
		"/pages/help": helpPage,
	})

	p, err := newAnalyzer(t).Analyze(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, p.FAQs, 3)
	assert.Equal(t, "Do you ship abroad?", p.FAQs[0].Question)
	assert.Equal(t, "How long does delivery take?", p.FAQs[2].Question)
}

func TestReanalysisWithoutCacheSeesChanges(t *testing.T) {
	var title atomic.Value
	title.Store("Old | Acme")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("<html><head><title>" + title.Load().(string) + "</title></head></html>"))
	}))
	defer server.Close()

	memCache := cache.NewMemoryCache(1 << 20)
	defer memCache.Close()
	f := fetch.New(fetch.Options{
		Timeout:  2 * time.Second,
		Retry:    retry.Config{MaxRetries: 0, BaseDelay: time.Millisecond},
		Cache:    memCache,
		CacheTTL: time.Hour,
	})
	defer f.Close()
	a := New(f, extract.New(), competitors.New(), Options{})
	ctx := context.Background()

	first, err := a.Analyze(ctx, server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Acme", first.Name)

	title.Store("New | Renamed")

	cached, err := a.Analyze(ctx, server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Acme", cached.Name, "pages within the TTL come from the cache")

	fresh, err := a.Analyze(fetch.WithoutCache(ctx), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", fresh.Name)
}

func TestAnalyzeHomeUnreachable(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newAnalyzer(t).Analyze(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrHomeUnreachable))
	assert.Equal(t, apperr.CodeStoreUnreachable, apperr.CodeOf(err))
	assert.Equal(t, http.StatusBadGateway, apperr.HTTPStatus(err))

	var reqErr *reqctx.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.NotEmpty(t, reqErr.RequestID)

	var statusErr *retry.StatusError
	require.True(t, errors.As(err, &statusErr), "cause is kept")
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "no other page is fetched")
}

func TestAnalyzeInvalidURL(t *testing.T) {
	_, err := newAnalyzer(t).Analyze(context.Background(), "https://")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalidURL))
	assert.Equal(t, http.StatusBadRequest, apperr.HTTPStatus(err))
}

// stubFetcher serves fixed pages and records render calls.
type stubFetcher struct {
	pages    map[string]*models.Page
	rendered int32
}

func (s *stubFetcher) FetchAll(_ context.Context, urls []string) models.PageSet {
	out := make(models.PageSet, len(urls))
	for _, u := range urls {
		out[u] = s.pages[u]
	}
	return out
}

func (s *stubFetcher) Fetch(_ context.Context, u string) (*models.Page, error) {
	if p, ok := s.pages[u]; ok {
		return p, nil
	}
	return nil, errors.New("connection refused")
}

func (s *stubFetcher) Render(_ context.Context, u string) (*models.Page, error) {
	atomic.AddInt32(&s.rendered, 1)
	return &models.Page{URL: u, Kind: models.KindHTML, Body: `<html><head><title>Rendered | Acme</title></head></html>`}, nil
}

func (s *stubFetcher) CanRender() bool { return true }

func TestAnalyzeRendersHomeWhenEnabled(t *testing.T) {
	stub := &stubFetcher{pages: map[string]*models.Page{
		"https://acme.test": {URL: "https://acme.test", Kind: models.KindHTML, Body: `<html><head><title>Loading</title></head></html>`},
	}}

	p, err := New(stub, extract.New(), competitors.New(), Options{RenderHome: true}).Analyze(context.Background(), "acme.test")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&stub.rendered))
	assert.Equal(t, "Acme", p.Name)

	stub.rendered = 0
	p, err = New(stub, extract.New(), competitors.New(), Options{}).Analyze(context.Background(), "acme.test")
	require.NoError(t, err)
	assert.Zero(t, atomic.LoadInt32(&stub.rendered))
	assert.Equal(t, "Loading", p.Name)
}

func TestResolveBrandName(t *testing.T) {
	cases := []struct {
		name string
		html string
		url  string
		want string
	}{
		{"pipe title", `<title>Foo | Acme Store</title>`, "https://acme.test", "Acme"},
		{"dash title", `<title>New Arrivals - Bolt Inc.</title>`, "https://bolt.test", "Bolt"},
		{"single word title", `<title>Zephyr Outdoor Gear</title>`, "https://z.test", "Zephyr"},
		{"brand markup wins", `<title>x | y</title><span class="logo-text">Northwind</span>`, "https://n.test", "Northwind"},
		{"generic markup ignored", `<title>A | Real Name</title><div class="site-title">Welcome to our shop</div>`, "https://r.test", "Real Name"},
		{"og site name", `<meta property="og:site_name" content="Og Brand">`, "https://o.test", "Og Brand"},
		{"application name", `<meta name="application-name" content="App Brand">`, "https://a.test", "App Brand"},
		{"host fallback", `<p>nothing</p>`, "https://shop.gadget-hub.co.uk", "Gadgethub"},
		{"empty after cleanup", `<title>a | -</title>`, "https://www.luna.test", "Luna"},
		{"trailing separators", `<title>Fern:</title>`, "https://f.test", "Fern"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(tc.html))
			require.NoError(t, err)
			assert.Equal(t, tc.want, ResolveBrandName(doc, tc.url))
		})
	}
	assert.Equal(t, "Acme", ResolveBrandName(nil, "https://www.acme.com"))
}

func TestScoreAndRecommendations(t *testing.T) {
	p := &models.StoreProfile{}
	c := Score(p)
	assert.Zero(t, c.Score)
	assert.Equal(t, []string{
		"Add product catalog data to improve customer experience",
		"Add clear policies (privacy, returns, shipping) for customer trust",
		"Expand social media presence across more platforms",
		"Create comprehensive FAQ section to reduce customer inquiries",
	}, Recommendations(p))

	p.Products = []models.Product{{}}
	p.Policies = []models.Policy{{}}
	p.FAQs = []models.QAPair{{}}
	p.SocialHandles = []models.SocialHandle{{}, {}, {}}
	p.Contact.Addresses = []string{"100 Main Street"}
	c = Score(p)
	assert.False(t, c.HasContact, "an address alone does not count")
	assert.InDelta(t, 4.0/7*100, c.Score, 0.001)
	assert.Equal(t, []string{"Excellent! All major brand elements are present and well-structured."}, Recommendations(p))
}
