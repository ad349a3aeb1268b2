package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	urlutil "github.com/law-makers/storelens/internal/utils/url"
	"github.com/law-makers/storelens/pkg/models"
)

// MaxHeroProducts bounds how many featured items one home page yields.
const MaxHeroProducts = 10

// Selector groups tried in order. Later groups run only while fewer than two
// items were found.
var heroGroups = [][]string{
	{
		`[data-section-type="hero"]`, ".hero-product", ".featured-product", ".hero-banner",
		".slideshow-slide", ".banner-item", ".hero-section", ".hero-content",
		".featured-collection", ".product-spotlight",
	},
	{
		".banner-product", ".collection-hero", ".promo-banner", ".main-product",
		".highlight-product", ".homepage-product", ".hero-image-text", ".carousel-item",
		".slider-item", ".featured-banner", ".product-card", ".product-item",
		".grid-product", ".collection-item",
	},
	{
		`article[class*="product"]`, `div[class*="product"]`, `section[class*="product"]`,
		"div[data-product-id]", "div[data-product-handle]", `a[href*="/products/"]`,
		".card", ".tile", ".item",
	},
}

var (
	heroTitleSelectors = []string{
		"h1", "h2", "h3", "h4", "h5",
		".product-title", ".hero-title", ".banner-title",
		"[data-product-title]", ".title", ".heading",
		".product-name", ".item-title", ".card-title",
		".name", ".product-heading", ".hero-heading",
		`a[href*="/products/"]`, `a[href*="/product/"]`,
		".btn", ".button", ".cta", ".link",
	}
	heroDescriptionSelectors = []string{
		".product-description", ".hero-description", ".banner-description",
		".product-summary", ".description", ".content", ".text",
		".hero-text", ".banner-text", ".summary", ".excerpt",
		"p", ".caption", ".subtitle", ".tagline", ".details",
	}
	heroPriceSelectors = []string{
		".price", ".product-price", "[data-price]", ".money",
		".price-current", ".sale-price", ".regular-price",
		".cost", ".amount", ".product-cost", ".pricing",
		".price-range", ".from-price", ".starting-at",
	}
	heroImageSelectors = []string{
		"img", ".product-image img", ".hero-image img",
		".featured-image img", ".banner-image img",
		"picture img", ".media img", ".image-container img",
	}
	heroLinkSelectors = []string{
		`a[href*="/products/"]`, `a[href*="/product/"]`,
		".product-link", ".hero-link", ".banner-link",
		"a.btn", "a.button", ".cta-link",
	}

	// Call-to-action and navigation text that is never a product title.
	navTerms = []string{
		"shop now", "learn more", "view all", "see more", "buy now",
		"add to cart", "quick view", "home", "menu", "search",
	}
	placeholderImageTerms = []string{"loading", "placeholder", "blank", "1x1"}

	priceRe = regexp.MustCompile(`[\$£€¥]?\d[\d,]*\.?\d*`)
)

// HeroProducts finds the products promoted on a home page. It reports only
// what the markup contains; every item is tagged as extracted and the result
// may hold fewer than two entries.
func (e *Extractor) HeroProducts(doc *goquery.Document, base string) []models.FeaturedItem {
	if doc == nil {
		return nil
	}

	var found []models.FeaturedItem
	for g, group := range heroGroups {
		if g > 0 && len(found) >= 2 {
			break
		}
		for _, selector := range group {
			if len(found) >= MaxHeroProducts {
				break
			}
			each("hero", doc.Find(selector), func(_ int, s *goquery.Selection) {
				if item, ok := heroFromElement(s, base); ok {
					found = append(found, item)
				}
			})
		}
	}

	items := dedupeFeatured(found)
	if len(items) > MaxHeroProducts {
		items = items[:MaxHeroProducts]
	}
	return items
}

func heroFromElement(s *goquery.Selection, base string) (models.FeaturedItem, bool) {
	title := heroTitle(s)
	if runeLen(strings.TrimSpace(title)) <= 2 {
		return models.FeaturedItem{}, false
	}

	item := models.FeaturedItem{
		Title:      title,
		Provenance: models.ProvenanceExtracted,
	}

	for _, sel := range heroDescriptionSelectors {
		el := s.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		text := CleanText(el.Text())
		if n := runeLen(text); n > 10 && n < 500 && !strings.EqualFold(text, title) {
			item.Description = text
			break
		}
	}

	for _, sel := range heroPriceSelectors {
		el := s.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		if m := priceRe.FindString(CleanText(el.Text())); m != "" {
			item.Price = strings.Trim(m, "$£€¥")
			break
		}
	}

	for _, sel := range heroImageSelectors {
		s.Find(sel).EachWithBreak(func(_ int, img *goquery.Selection) bool {
			src := ImageSource(img)
			if len(src) > 5 && !containsAny(src, placeholderImageTerms) {
				item.ImageURL = urlutil.ResolveURL(base, src)
				return false
			}
			return true
		})
		if item.ImageURL != "" {
			break
		}
	}

	for _, sel := range heroLinkSelectors {
		el := s.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		href, _ := el.Attr("href")
		if len(href) <= 1 {
			continue
		}
		if strings.Contains(strings.ToLower(href), "/product") || strings.HasPrefix(href, "/") {
			item.ProductURL = urlutil.ResolveURL(base, href)
			break
		}
	}

	return item, true
}

func heroTitle(s *goquery.Selection) string {
	for _, sel := range heroTitleSelectors {
		el := s.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		text := CleanText(el.Text())
		if n := runeLen(text); n > 2 && n < 200 && !containsAny(text, navTerms) {
			return text
		}
	}

	if text := firstText(s, "a"); runeLen(text) > 2 && runeLen(text) < 100 {
		return text
	}

	for _, line := range strings.Split(blockText(s), "\n") {
		line = CleanText(line)
		if n := runeLen(line); n > 5 && n < 150 {
			return line
		}
	}
	return ""
}

// ImageSource returns the first usable source of an img element, looking at
// lazy-loading attributes and srcset too.
func ImageSource(img *goquery.Selection) string {
	for _, attr := range []string{"src", "data-src", "data-lazy", "data-original"} {
		if v := strings.TrimSpace(img.AttrOr(attr, "")); v != "" {
			return v
		}
	}
	if srcset := strings.TrimSpace(img.AttrOr("srcset", "")); srcset != "" {
		if fields := strings.Fields(strings.Split(srcset, ",")[0]); len(fields) > 0 {
			return fields[0]
		}
	}
	return ""
}

// dedupeFeatured drops items whose title contains, or is contained in, an
// earlier title of nearly the same length.
func dedupeFeatured(items []models.FeaturedItem) []models.FeaturedItem {
	var seen []string
	out := make([]models.FeaturedItem, 0, len(items))

	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item.Title))
		if key == "" {
			continue
		}
		dup := false
		for _, s := range seen {
			if strings.Contains(key, s) || strings.Contains(s, key) {
				diff := runeLen(key) - runeLen(s)
				if diff < 0 {
					diff = -diff
				}
				if diff < 5 {
					dup = true
					break
				}
			}
		}
		if !dup {
			seen = append(seen, key)
			out = append(out, item)
		}
	}
	return out
}
