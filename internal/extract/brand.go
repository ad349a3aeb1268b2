package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	urlutil "github.com/law-makers/storelens/internal/utils/url"
)

// BrandInfo is what a single page says about the brand behind it.
type BrandInfo struct {
	Name        string
	Description string
	FaviconURL  string
	About       string
	Story       string
}

const maxAboutLength = 500

var (
	brandNameSelectors    = []string{"title", "h1", ".site-title", ".brand-name", ".logo-text"}
	brandDescSelectors    = []string{".about", ".brand-description", ".company-description", `meta[name="description"]`, ".hero-text", ".intro-text"}
	aboutSectionSelectors = []string{
		".about-us", ".about-content", ".brand-story", ".our-story",
		".company-story", ".about-section", ".brand-description",
		`[class*="about"]`, `[class*="story"]`, ".hero-content",
		".intro-section", ".mission", ".vision",
	}
	aboutTextSelectors = []string{"p", ".text-content", ".description", ".content"}
	aboutKeywords      = []string{
		"we are", "our mission", "founded", "established",
		"company", "brand", "story", "passion", "vision",
	}
)

// BrandInfo reads the brand name, description, favicon and about text of a
// page. Story falls back to the description when no about text exists.
func (e *Extractor) BrandInfo(doc *goquery.Document, base string) BrandInfo {
	var info BrandInfo
	if doc == nil {
		return info
	}

	for _, sel := range brandNameSelectors {
		el := doc.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		if text := CleanText(el.Text()); text != "" && runeLen(text) < 100 {
			info.Name = text
			break
		}
	}

	for _, sel := range brandDescSelectors {
		el := doc.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		if strings.HasPrefix(sel, "meta") {
			info.Description = CleanText(el.AttrOr("content", ""))
		} else {
			info.Description = CleanText(el.Text())
		}
		break
	}

	if href, ok := doc.Find(`link[rel*="icon"]`).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		info.FaviconURL = urlutil.ResolveURL(base, href)
	}

	info.About = aboutText(doc)
	info.Story = info.About
	if info.Story == "" {
		info.Story = info.Description
	}
	return info
}

// aboutText prefers a section named after "about" or "story". Other about-like
// sections are kept only as a fallback, and plain paragraphs qualify only
// when they read like a brand description.
func aboutText(doc *goquery.Document) string {
	var fallback string
	for _, sel := range aboutSectionSelectors {
		el := doc.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		text := CleanText(el.Text())
		if runeLen(text) <= 50 {
			continue
		}
		if strings.Contains(sel, "about") || strings.Contains(sel, "story") {
			return truncate(text, maxAboutLength)
		}
		if fallback == "" {
			fallback = truncate(text, maxAboutLength)
		}
	}
	if fallback != "" {
		return fallback
	}

	var found string
	for _, sel := range aboutTextSelectors {
		eachUntil("brand", doc.Find(sel), func(_ int, s *goquery.Selection) bool {
			text := CleanText(s.Text())
			if runeLen(text) > 100 && containsAny(text, aboutKeywords) {
				found = truncate(text, maxAboutLength)
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}
