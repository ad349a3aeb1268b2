// Package synth fabricates placeholder entries for sections that must hold a
// minimum number of items. Everything it produces is tagged synthetic so it
// can never be mistaken for data read off the storefront.
package synth

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/storelens/internal/extract"
	urlutil "github.com/law-makers/storelens/internal/utils/url"
	"github.com/law-makers/storelens/pkg/models"
)

// MinFeatured is the smallest number of featured items a profile carries.
const MinFeatured = 2

var (
	decorativeAltTerms = []string{"logo", "icon", "arrow", "menu", "close"}
	headingSkipTerms   = []string{"home", "about", "contact", "menu", "search", "cart", "login"}
	linkSkipTerms      = []string{
		"home", "about", "contact", "menu", "search", "cart", "login", "sign up",
		"learn more", "read more", "view all", "see all",
	}
)

// PadFeatured returns items followed by as many synthetic entries as needed
// to reach floor. Sources are tried in order: images with descriptive alt
// text, headings, link text, then numbered placeholders. A nil doc skips
// straight to placeholders.
func PadFeatured(doc *goquery.Document, base string, items []models.FeaturedItem, floor int) []models.FeaturedItem {
	need := floor - len(items)
	if need <= 0 {
		return items
	}

	var made []models.FeaturedItem
	if doc != nil {
		made = fromImages(doc, base, need)
		if len(made) < need {
			made = append(made, fromHeadings(doc, need-len(made))...)
		}
		if len(made) < need {
			made = append(made, fromLinks(doc, base, need-len(made))...)
		}
	}
	for len(made) < need {
		n := len(made) + 1
		made = append(made, models.FeaturedItem{
			Title:       fmt.Sprintf("Store Feature #%d", n),
			Description: fmt.Sprintf("This store offers quality products and services. Feature #%d represents one of the highlighted offerings available for customers.", n),
			ProductURL:  base,
			Provenance:  models.ProvenanceSynthetic,
		})
	}

	log.Debug().Int("genuine", len(items)).Int("synthetic", len(made)).Msg("Padded featured items")
	out := make([]models.FeaturedItem, 0, floor)
	out = append(out, items...)
	return append(out, made[:need]...)
}

func fromImages(doc *goquery.Document, base string, need int) []models.FeaturedItem {
	var out []models.FeaturedItem
	imgs := doc.Find("img[alt]")
	imgs.Slice(0, min(need*3, imgs.Length())).EachWithBreak(func(_ int, img *goquery.Selection) bool {
		alt := strings.TrimSpace(img.AttrOr("alt", ""))
		src := firstAttr(img, "src", "data-src", "data-lazy")
		if len(alt) <= 2 || src == "" || containsAny(alt, decorativeAltTerms) {
			return true
		}

		desc := ""
		img.Parent().Find("p, div, span, h1, h2, h3").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := extract.CleanText(s.Text())
			if n := len([]rune(text)); n > 10 && n < 300 {
				desc = text
				return false
			}
			return true
		})
		if desc == "" {
			desc = "Featured content: " + alt
		}

		out = append(out, models.FeaturedItem{
			Title:       truncate(alt, 100),
			Description: desc,
			ImageURL:    urlutil.ResolveURL(base, src),
			Provenance:  models.ProvenanceSynthetic,
		})
		return len(out) < need
	})
	return out
}

func fromHeadings(doc *goquery.Document, need int) []models.FeaturedItem {
	var out []models.FeaturedItem
	headings := doc.Find("h1, h2, h3, h4, h5")
	headings.Slice(0, min(need*2, headings.Length())).EachWithBreak(func(_ int, h *goquery.Selection) bool {
		text := extract.CleanText(h.Text())
		if len([]rune(text)) <= 3 || containsAny(text, headingSkipTerms) {
			return true
		}

		desc := extract.NextText(h)
		switch {
		case len([]rune(desc)) <= 5:
			desc = "Featured section: " + text
		case len([]rune(desc)) > 200:
			desc = truncate(desc, 200) + "..."
		}

		out = append(out, models.FeaturedItem{
			Title:       truncate(text, 100),
			Description: desc,
			Provenance:  models.ProvenanceSynthetic,
		})
		return len(out) < need
	})
	return out
}

func fromLinks(doc *goquery.Document, base string, need int) []models.FeaturedItem {
	var out []models.FeaturedItem
	links := doc.Find("a[href]")
	links.Slice(0, min(need*2, links.Length())).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := extract.CleanText(a.Text())
		if n := len([]rune(text)); n <= 3 || n >= 100 || containsAny(text, linkSkipTerms) {
			return true
		}
		item := models.FeaturedItem{
			Title:       text,
			Description: fmt.Sprintf("Featured link: %s. Click to learn more about this offering.", text),
			Provenance:  models.ProvenanceSynthetic,
		}
		if href := strings.TrimSpace(a.AttrOr("href", "")); href != "" {
			item.ProductURL = urlutil.ResolveURL(base, href)
		}
		out = append(out, item)
		return len(out) < need
	})
	return out
}

// DefaultFAQs are substituted when no dedicated FAQ content was found.
func DefaultFAQs() []models.QAPair {
	pairs := [][2]string{
		{"Do you offer international shipping?", "Please check our shipping policy for international delivery options."},
		{"What is your return policy?", "Please refer to our return policy page for detailed information about returns and exchanges."},
		{"How can I contact customer support?", "You can reach our customer support team through the contact information provided on our website."},
	}
	out := make([]models.QAPair, len(pairs))
	for i, p := range pairs {
		out[i] = models.QAPair{Question: p[0], Answer: p[1], Provenance: models.ProvenanceSynthetic}
	}
	return out
}

func firstAttr(s *goquery.Selection, names ...string) string {
	for _, n := range names {
		if v := strings.TrimSpace(s.AttrOr(n, "")); v != "" {
			return v
		}
	}
	return ""
}

func containsAny(s string, terms []string) bool {
	s = strings.ToLower(s)
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
