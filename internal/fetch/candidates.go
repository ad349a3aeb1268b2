package fetch

import (
	"net/url"
	"strings"
)

// candidatePaths are appended to a store's base URL. The empty path is the
// home page and always comes first.
var candidatePaths = []string{
	"",
	"/products.json",
	"/collections/all",
	"/collections/all.json",
	"/sitemap_products_1.xml",
	"/pages/privacy-policy",
	"/pages/privacy",
	"/policies/privacy-policy",
	"/pages/terms-of-service",
	"/pages/terms",
	"/pages/refund-policy",
	"/pages/returns",
	"/pages/shipping-policy",
	"/pages/shipping",
	"/pages/about",
	"/pages/about-us",
	"/pages/our-story",
	"/pages/faq",
	"/pages/help",
	"/pages/support",
	"/pages/contact",
	"/pages/contact-us",
	"/pages/track-order",
	"/pages/size-guide",
	"/blogs/news",
}

// CandidateURLs returns the fixed list of storefront pages analyzed for base.
func CandidateURLs(base string) []string {
	base = strings.TrimRight(base, "/")
	urls := make([]string, len(candidatePaths))
	for i, p := range candidatePaths {
		urls[i] = base + p
	}
	return urls
}

// IsJSON reports whether rawURL points at a JSON feed.
func IsJSON(rawURL string) bool {
	if u, err := url.Parse(rawURL); err == nil {
		return strings.HasSuffix(strings.ToLower(u.Path), ".json")
	}
	return strings.HasSuffix(strings.ToLower(rawURL), ".json")
}
