package extract

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/storelens/pkg/models"
)

const base = "https://shop.test"

func mustDoc(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := ParseHTML(body)
	require.NoError(t, err)
	return doc
}

func TestProductsAvailabilityAndPricing(t *testing.T) {
	feed := `{"products":[
		{"id":101,"title":"Runner","handle":"runner","vendor":"Acme","product_type":"Shoes",
		 "body_html":"<p>Light <b>and</b> fast.</p><p>Wool.</p>","tags":["new","wool"],
		 "images":[{"src":"//cdn.shop.test/runner.jpg"},"/files/side.jpg"],
		 "variants":[
			{"id":1,"title":"8","option1":"8","price":"98.00","compare_at_price":"120.00","available":false,"position":1},
			{"id":2,"title":"9","option1":"9","price":"98.00","compare_at_price":null,"available":true,"position":2}
		 ]},
		{"id":"102","title":"Gift Card","handle":"gift-card","tags":"digital, gift","variants":[]},
		{"id":103,"title":"Broken","variants":"not-a-list"}
	]}`

	e := New()
	products, err := e.Products([]byte(feed), base)
	require.NoError(t, err)
	require.Len(t, products, 2, "undecodable product should be skipped")

	runner := products[0]
	assert.Equal(t, "101", runner.ID)
	assert.True(t, runner.Available, "one available variant makes the product available")
	require.NotNil(t, runner.Price)
	assert.InDelta(t, 98.0, *runner.Price, 0.001)
	require.NotNil(t, runner.CompareAtPrice)
	assert.InDelta(t, 120.0, *runner.CompareAtPrice, 0.001)
	assert.Equal(t, []string{"https://cdn.shop.test/runner.jpg", "https://shop.test/files/side.jpg"}, runner.Images)
	assert.Equal(t, "Light and fast. Wool.", runner.Description)
	assert.Equal(t, "https://shop.test/products/runner", runner.URL)
	assert.Len(t, runner.Variants, 2)
	assert.Nil(t, runner.Variants[1].CompareAtPrice)

	gift := products[1]
	assert.True(t, gift.Available, "products without variants default to available")
	assert.Nil(t, gift.Price)
	assert.Equal(t, []string{"digital", "gift"}, gift.Tags)
}

func TestProductsUnavailableWhenNoVariantAvailable(t *testing.T) {
	feed := `{"products":[{"id":1,"handle":"a","variants":[{"id":1,"price":"bad","available":false}]}]}`
	products, err := New().Products([]byte(feed), base)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.False(t, products[0].Available)
	assert.Nil(t, products[0].Price, "unparsable price becomes nil")
}

func TestProductsFromDecodedFeed(t *testing.T) {
	raw := `{"products":[
		{"id":7234567890123456,"title":"Runner","handle":"runner","tags":"a, b",
		 "variants":[{"id":1,"price":"98.00","available":true}]},
		{"id":2,"title":"Broken","variants":"not-a-list"}
	]}`
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var feed any
	require.NoError(t, dec.Decode(&feed))

	products, err := New().Products(feed, base)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "7234567890123456", products[0].ID)
	assert.Equal(t, []string{"a", "b"}, products[0].Tags)
	require.NotNil(t, products[0].Price)
	assert.InDelta(t, 98.0, *products[0].Price, 0.001)

	empty, err := New().Products(map[string]any{}, base)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = New().Products(map[string]any{"products": "nope"}, base)
	assert.Error(t, err)
	_, err = New().Products([]any{}, base)
	assert.Error(t, err)
}

func TestProductsRejectsGarbage(t *testing.T) {
	_, err := New().Products([]byte("<html>"), base)
	assert.Error(t, err)
}

func TestHeroProductsFromMarkup(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<div class="hero-banner">
			<h2>Wool Runner</h2>
			<p>Our most comfortable everyday sneaker.</p>
			<span class="price">$98.00</span>
			<img src="/loading.gif"><img data-src="/img/runner.jpg">
			<a href="/products/wool-runner">Shop now</a>
		</div>
		<div class="hero-banner">
			<h2>Wool Runners</h2>
		</div>
		<div class="featured-product">
			<h3>Shop now</h3>
			<h4>Tree Dasher</h4>
			<img srcset="/img/dasher-1x.jpg 1x, /img/dasher-2x.jpg 2x">
		</div>
	</body></html>`)

	items := New().HeroProducts(doc, base)
	require.Len(t, items, 2, "near-duplicate title should collapse")

	// .featured-product precedes .hero-banner in the primary group.
	assert.Equal(t, "Tree Dasher", items[0].Title, "call-to-action heading is not a title")
	assert.Equal(t, "https://shop.test/img/dasher-1x.jpg", items[0].ImageURL)

	first := items[1]
	assert.Equal(t, "Wool Runner", first.Title)
	assert.Equal(t, "Our most comfortable everyday sneaker.", first.Description)
	assert.Equal(t, "98.00", first.Price)
	assert.Equal(t, "https://shop.test/img/runner.jpg", first.ImageURL, "placeholder image skipped")
	assert.Equal(t, "https://shop.test/products/wool-runner", first.ProductURL)
	assert.Equal(t, models.ProvenanceExtracted, first.Provenance)
}

func TestHeroProductsEmptyPage(t *testing.T) {
	items := New().HeroProducts(mustDoc(t, `<html><body></body></html>`), base)
	assert.Empty(t, items)
}

func TestHeroProductsCapped(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 15; i++ {
		fmt.Fprintf(&sb, `<div class="hero-product"><h2>Distinct product number %d of the season</h2></div>`, i*100)
	}
	items := New().HeroProducts(mustDoc(t, sb.String()), base)
	assert.Len(t, items, MaxHeroProducts)
}

func policyPage(text string) *models.Page {
	return &models.Page{Kind: models.KindHTML, Body: `<html><body><header>Menu</header><main><h1>Policy</h1><p>` + text + `</p></main></body></html>`}
}

func TestPoliciesOnePerType(t *testing.T) {
	long := strings.Repeat("We respect your privacy and protect your data. ", 10)
	pages := models.PageSet{
		base + "/pages/privacy-policy": policyPage(long),
		base + "/pages/privacy":        policyPage("Second privacy page. " + long),
		base + "/pages/terms":          policyPage("Too short."),
		base + "/pages/refund-policy":  policyPage(strings.Repeat("Refunds are issued within 30 days. ", 100)),
		base + "/pages/shipping":       nil,
	}

	policies := New().Policies(pages, base)
	require.Len(t, policies, 2)

	byType := map[models.PolicyType]models.Policy{}
	for _, p := range policies {
		_, dup := byType[p.Type]
		assert.False(t, dup, "duplicate policy type %s", p.Type)
		byType[p.Type] = p
	}

	privacy := byType[models.PolicyPrivacy]
	assert.Equal(t, base+"/pages/privacy-policy", privacy.URL, "first page of a type wins")
	assert.Equal(t, "Privacy Policy", privacy.Title)
	assert.NotContains(t, privacy.Content, "Menu")

	refund := byType[models.PolicyRefund]
	assert.Equal(t, MaxPolicyLength, runeLen(refund.Content))
}

func TestFAQStrategies(t *testing.T) {
	e := New()

	containers := mustDoc(t, `<div class="faq">
		<div class="faq-item" data-category="Shipping"><h4>Do you ship abroad?</h4><div class="faq-answer">Yes, to over forty countries.</div></div>
		<div class="faq-item"><h4>Short</h4><div class="faq-answer">Too short q.</div></div>
	</div>
	<h3>What about headings?</h3><p>These should be ignored when containers match.</p>`)
	faqs := e.FAQs(containers)
	require.Len(t, faqs, 1)
	assert.Equal(t, "Do you ship abroad?", faqs[0].Question)
	require.NotNil(t, faqs[0].Category)
	assert.Equal(t, "Shipping", *faqs[0].Category)

	headings := mustDoc(t, `<section>
		<h3>How long does delivery take?</h3><p>Usually three to five business days.</p>
		<h3>Our team</h3><p>Not a question so this is skipped entirely.</p>
	</section>`)
	faqs = e.FAQs(headings)
	require.Len(t, faqs, 1)
	assert.Equal(t, "How long does delivery take?", faqs[0].Question)

	dl := mustDoc(t, `<dl><dt>Warranty</dt><dd>Every pair has a one year warranty.</dd><dt>Orphan</dt></dl>`)
	faqs = e.FAQs(dl)
	require.Len(t, faqs, 1)
	assert.Equal(t, models.ProvenanceExtracted, faqs[0].Provenance)

	assert.Empty(t, e.FAQs(mustDoc(t, `<p>No questions here.</p>`)))
}

func TestFAQsCapped(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`<div class="accordion">`)
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&sb, `<div class="accordion-item"><div class="accordion-header">Question number %d?</div><div class="accordion-content">Answer number %d is long enough.</div></div>`, i, i)
	}
	sb.WriteString(`</div>`)
	assert.Len(t, New().FAQs(mustDoc(t, sb.String())), MaxFAQs)
}

func TestSocialHandles(t *testing.T) {
	doc := mustDoc(t, `<footer>
		<a href="https://www.instagram.com/acme/">IG</a>
		<a href="https://instagram.com/p/xyz">post</a>
		<a href="https://WWW.INSTAGRAM.COM/acme/">IG again</a>
		<a href="https://twitter.com/acme">Twitter</a>
		<a href="https://www.youtube.com/c/AcmeTV">YT</a>
		<a href="https://www.tiktok.com/@acme">TT</a>
		<a href="https://box.com/acme">not x.com</a>
	</footer>`)

	handles := New().SocialHandles(doc, base)
	require.Len(t, handles, 5)

	users := map[string]string{}
	for _, h := range handles {
		if h.Username != nil {
			users[h.URL] = *h.Username
		}
	}
	assert.Equal(t, "acme", users["https://www.instagram.com/acme/"])
	assert.NotContains(t, users, "https://instagram.com/p/xyz")
	assert.Equal(t, "acme", users["https://twitter.com/acme"])
	assert.Equal(t, "acmetv", users["https://www.youtube.com/c/acmetv"])
	assert.Equal(t, "@acme", users["https://www.tiktok.com/@acme"])
}

func TestBestEmailPrefersRoleMailbox(t *testing.T) {
	assert.Equal(t, "info@x.com", BestEmail([]string{"sales@x.com", "info@x.com"}))
	assert.Equal(t, "", BestEmail(nil))
}

func TestBestPhoneAndAddress(t *testing.T) {
	assert.Equal(t, "(555) 123-4567", BestPhone([]string{"+44 20 7946 0958", "(555) 123-4567"}))
	assert.Equal(t,
		"100 Main Street, Springfield, IL 62701",
		BestAddress([]string{"Springfield", "100 Main Street, Springfield, IL 62701"}))
}

func TestContactKeepsOnePerKind(t *testing.T) {
	doc := mustDoc(t, `<body>
		<p>Write to sales@acme.com or info@acme.com. Not demo@example.com.</p>
		<div class="contact-info">Call (555) 123-4567 or 555.987.6543</div>
		<a href="mailto:hello@acme.com?subject=hi">Email</a>
		<a href="tel:+15551234567">Call</a>
		<address class="address">100 Main Street, Springfield, IL 62701</address>
	</body>`)

	info := New().Contact(doc)
	assert.Equal(t, []string{"info@acme.com"}, info.Emails)
	assert.Equal(t, []string{"(555) 123-4567"}, info.Phones)
	require.Len(t, info.Addresses, 1)
	assert.Contains(t, info.Addresses[0], "Springfield")
	assert.False(t, info.Empty())

	empty := New().Contact(mustDoc(t, `<p>nothing</p>`))
	assert.True(t, empty.Empty())
}

func TestBrandInfo(t *testing.T) {
	doc := mustDoc(t, `<html><head>
		<title>Foo | Acme Store</title>
		<meta name="description" content="Comfortable shoes.">
		<link rel="shortcut icon" href="/favicon.ico">
	</head><body>
		<section class="about-us">Founded in 2016, Acme makes comfortable shoes from natural materials for everyone.</section>
	</body></html>`)

	info := New().BrandInfo(doc, base)
	assert.Equal(t, "Foo | Acme Store", info.Name)
	assert.Equal(t, "Comfortable shoes.", info.Description)
	assert.Equal(t, "https://shop.test/favicon.ico", info.FaviconURL)
	assert.True(t, strings.HasPrefix(info.About, "Founded in 2016"))
	assert.Equal(t, info.About, info.Story)
}

func TestImportantLinksOnePerCategory(t *testing.T) {
	doc := mustDoc(t, `<body>
		<nav><a href="/pages/contact">Contact Us</a><a href="/pages/about">About</a></nav>
		<div class="footer">
			<a href="/pages/get-in-touch">Get in touch with our friendly team</a>
			<a href="/blogs/news">Journal</a>
			<a href="/cart">Cart</a>
		</div>
	</body>`)

	links := New().ImportantLinks(doc, base)

	byCat := map[models.LinkCategory]models.NavLink{}
	for _, l := range links {
		_, dup := byCat[l.Category]
		assert.False(t, dup, "duplicate category %s", l.Category)
		byCat[l.Category] = l
	}

	contact := byCat[models.LinkContact]
	assert.Equal(t, "https://shop.test/pages/contact", contact.URL, "higher scoring nav link wins")
	assert.Equal(t, "Contact Us", contact.Title)

	assert.Equal(t, "https://shop.test/blogs/news", byCat[models.LinkBlog].URL, "href keyword match")
	assert.Contains(t, byCat, models.LinkAbout)
}

func TestLinkTitleTruncates(t *testing.T) {
	long := strings.Repeat("a", 60)
	assert.Equal(t, titleCase(strings.Repeat("a", 50))+"...", linkTitle(long))
	assert.Equal(t, "Order Status", linkTitle("order status"))
}

func TestThemeAndApps(t *testing.T) {
	doc := mustDoc(t, `<html><head>
		<script>window.Shopify = window.Shopify || {};
		Shopify.theme = {"name":"Dawn","id":1234,"role":"main"};
		Shopify.theme.handle = "null";</script>
		<script src="https://static.klaviyo.com/onsite/js/klaviyo.js"></script>
		<script src="https://cdn.judge.me/loader.js"></script>
	</head><body></body></html>`)

	e := New()
	theme := e.Theme(doc)
	require.NotNil(t, theme)
	assert.Equal(t, "Dawn", *theme)
	assert.Equal(t, []string{"Judge.me", "Klaviyo"}, e.Apps(doc))

	assert.Nil(t, e.Theme(mustDoc(t, `<script>var x = 1;</script>`)))
	assert.Empty(t, e.Apps(mustDoc(t, `<p>plain</p>`)))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Hello world!", CleanText("  Hello \n\t world! ✨ "))
	assert.Equal(t, "Café £20", CleanText("Café   £20"))
}

func TestNextText(t *testing.T) {
	doc := mustDoc(t, `<div><h2>Title</h2></div><section><p>Follows the heading.</p></section>`)
	assert.Equal(t, "Follows the heading.", NextText(doc.Find("h2")))
}
