package analyze

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/law-makers/storelens/internal/extract"
	urlutil "github.com/law-makers/storelens/internal/utils/url"
)

var (
	brandMarkupSelectors = []string{".brand-name", ".site-title", ".logo-text"}
	genericBrandTerms    = []string{"home", "welcome", "shop", "store"}

	brandSuffixRe   = regexp.MustCompile(`(?i)\s+(store|shop|official|inc|llc|ltd)\.?$`)
	brandTrailingRe = regexp.MustCompile(`[:\-|]+\s*$`)
)

// ResolveBrandName picks a display name for the store. Sources in order:
// dedicated brand markup (ignored when it reads like "Home" or "Welcome"),
// the <title>, og:site_name, application-name, then the host name. The result
// loses a trailing "Store", "Inc" or similar and any trailing separators.
func ResolveBrandName(doc *goquery.Document, storeURL string) string {
	fallback := urlutil.BrandFromHost(storeURL)

	name := ""
	if doc != nil {
		name = brandFromMarkup(doc)
		if name == "" {
			name = brandFromTitle(doc.Find("title").First().Text())
		}
		if name == "" {
			name = strings.TrimSpace(doc.Find(`meta[property="og:site_name"]`).First().AttrOr("content", ""))
		}
		if name == "" {
			name = strings.TrimSpace(doc.Find(`meta[name="application-name"]`).First().AttrOr("content", ""))
		}
	}
	if name == "" {
		name = fallback
	}

	name = brandSuffixRe.ReplaceAllString(name, "")
	name = strings.TrimSpace(brandTrailingRe.ReplaceAllString(name, ""))
	if name == "" {
		return fallback
	}
	return name
}

func brandFromMarkup(doc *goquery.Document) string {
	for _, sel := range brandMarkupSelectors {
		text := extract.CleanText(doc.Find(sel).First().Text())
		if text == "" || len([]rune(text)) >= 100 {
			continue
		}
		lower := strings.ToLower(text)
		generic := false
		for _, t := range genericBrandTerms {
			if strings.Contains(lower, t) {
				generic = true
				break
			}
		}
		if !generic {
			return text
		}
	}
	return ""
}

// brandFromTitle takes the last "|" segment of a title, else the last "-"
// segment, else its first word.
func brandFromTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	for _, sep := range []string{"|", "-"} {
		if strings.Contains(title, sep) {
			parts := strings.Split(title, sep)
			return strings.TrimSpace(parts[len(parts)-1])
		}
	}
	return strings.Fields(title)[0]
}
