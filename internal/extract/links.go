package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	urlutil "github.com/law-makers/storelens/internal/utils/url"
	"github.com/law-makers/storelens/pkg/models"
)

type linkCategory struct {
	category models.LinkCategory
	keywords []string
}

// Categories in matching order; keywords earlier in a list rank higher.
var linkCategories = []linkCategory{
	{models.LinkContact, []string{"contact us", "contact", "get in touch", "customer service", "support", "reach out"}},
	{models.LinkAbout, []string{"about us", "about", "our story", "who we are", "our company", "company info"}},
	{models.LinkBlog, []string{"blog", "news", "articles", "stories", "updates", "press releases"}},
	{models.LinkCareers, []string{"careers", "jobs", "work with us", "join us", "employment", "hiring"}},
	{models.LinkPress, []string{"press", "media", "press kit", "news room", "media kit"}},
	{models.LinkHelp, []string{"track order", "order tracking", "track", "my orders", "order status"}},
	{models.LinkService, []string{"size guide", "sizing", "size chart", "fit guide", "measurements", "shipping", "delivery", "returns"}},
	{models.LinkFAQ, []string{"faq", "help", "support", "questions", "frequently asked", "help center"}},
	{models.LinkStoreLocator, []string{"store locator", "find store", "locations", "stores", "find us"}},
	{models.LinkWholesale, []string{"wholesale", "bulk", "trade", "b2b", "reseller", "distributor"}},
	{models.LinkAffiliate, []string{"affiliate", "partners", "collaboration", "influencer", "brand ambassador"}},
	{models.LinkSustainability, []string{"sustainability", "eco", "environment", "green", "ethical"}},
	{models.LinkReviews, []string{"reviews", "testimonials", "feedback", "customer reviews"}},
}

var (
	navLinkSelectors = []string{
		"nav a", ".navigation a", ".menu a", ".header a", ".navbar a",
		".nav-link", ".menu-item a", ".site-nav a", ".main-nav a",
	}
	footerLinkSelectors = []string{".footer a", ".footer-link", ".secondary-nav a"}

	skipHrefTerms = []string{"#", "javascript:", "tel:", "mailto:", "cart", "login", "register", "account"}
)

const (
	navBoost          = 10
	generalLinkBudget = 100
	maxLinkTitle      = 50
)

type linkCandidate struct {
	score int
	text  string
	href  string
}

// ImportantLinks keeps the best scoring link for each of the fixed
// categories. Header and navigation links outrank footer links; the rest of
// the page is searched only when a category is still empty.
func (e *Extractor) ImportantLinks(doc *goquery.Document, base string) []models.NavLink {
	if doc == nil {
		return nil
	}

	best := make(map[models.LinkCategory]linkCandidate)
	consider := func(sel *goquery.Selection, boost int) {
		each("links", sel, func(_ int, a *goquery.Selection) {
			cat, cand, ok := classifyLink(a, boost)
			if !ok {
				return
			}
			if cur, exists := best[cat]; !exists || cand.score > cur.score {
				best[cat] = cand
			}
		})
	}

	for _, sel := range navLinkSelectors {
		consider(doc.Find(sel), navBoost)
	}
	for _, sel := range footerLinkSelectors {
		consider(doc.Find(sel), 0)
	}
	if len(best) < len(linkCategories) {
		all := doc.Find("a[href]")
		consider(all.Slice(0, min(generalLinkBudget, all.Length())), 0)
	}

	var out []models.NavLink
	for _, lc := range linkCategories {
		cand, ok := best[lc.category]
		if !ok {
			continue
		}
		out = append(out, models.NavLink{
			Title:    linkTitle(cand.text),
			URL:      urlutil.ResolveURL(base, cand.href),
			Category: lc.category,
		})
	}
	return out
}

// classifyLink assigns a link to the first category whose keyword appears in
// its text, or failing that in its href.
func classifyLink(a *goquery.Selection, boost int) (models.LinkCategory, linkCandidate, bool) {
	href := strings.TrimSpace(a.AttrOr("href", ""))
	text := strings.ToLower(CleanText(a.Text()))
	if href == "" || runeLen(text) < 2 || containsAny(href, skipHrefTerms) {
		return "", linkCandidate{}, false
	}

	for _, lc := range linkCategories {
		n := len(lc.keywords)
		for i, kw := range lc.keywords {
			if !strings.Contains(text, kw) {
				continue
			}
			score := boost + (n-i)*2
			if kw == text {
				score += 5
			}
			if runeLen(text) < 20 {
				score += 2
			}
			return lc.category, linkCandidate{score: score, text: text, href: href}, true
		}
	}

	lowerHref := strings.ToLower(href)
	for _, lc := range linkCategories {
		n := len(lc.keywords)
		for i, kw := range lc.keywords {
			for _, variant := range []string{
				strings.ReplaceAll(kw, " ", "-"),
				strings.ReplaceAll(kw, " ", "_"),
				strings.ReplaceAll(kw, " ", ""),
			} {
				if strings.Contains(lowerHref, variant) {
					return lc.category, linkCandidate{score: boost + (n - i), text: text, href: href}, true
				}
			}
		}
	}
	return "", linkCandidate{}, false
}

func linkTitle(text string) string {
	if runeLen(text) <= maxLinkTitle {
		return titleCase(text)
	}
	return titleCase(truncate(text, maxLinkTitle)) + "..."
}
