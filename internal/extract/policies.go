package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"github.com/law-makers/storelens/pkg/models"
)

const (
	minPolicyLength = 100
	// MaxPolicyLength caps the stored body of a policy.
	MaxPolicyLength = 2000
)

type policySource struct {
	path  string
	kind  models.PolicyType
	label string
}

// Checked in order; the first usable page of a type wins.
var policySources = []policySource{
	{"/pages/privacy-policy", models.PolicyPrivacy, "Privacy"},
	{"/pages/privacy", models.PolicyPrivacy, "Privacy"},
	{"/pages/terms-of-service", models.PolicyTerms, "Terms"},
	{"/pages/terms", models.PolicyTerms, "Terms"},
	{"/pages/refund-policy", models.PolicyRefund, "Refund"},
	{"/pages/returns", models.PolicyReturn, "Returns"},
	{"/pages/shipping-policy", models.PolicyShipping, "Shipping"},
	{"/pages/shipping", models.PolicyShipping, "Shipping"},
}

var policyContentSelectors = []string{".page-content", ".policy-content", ".rte", "main", "article", ".content"}

// Policies builds at most one Policy per type from the policy pages present
// in pages. Bodies shorter than 100 characters are ignored.
func (e *Extractor) Policies(pages models.PageSet, base string) []models.Policy {
	base = strings.TrimRight(base, "/")
	seen := make(map[models.PolicyType]bool)
	var out []models.Policy

	for _, src := range policySources {
		if seen[src.kind] {
			continue
		}
		url := base + src.path
		page, ok := pages.Get(url)
		if !ok || !page.HasContent() {
			continue
		}

		body, err := e.PolicyText(page.Body)
		if err != nil {
			log.Debug().Str("url", url).Err(err).Msg("Policy page unreadable")
			continue
		}
		if runeLen(body) <= minPolicyLength {
			continue
		}

		seen[src.kind] = true
		out = append(out, models.Policy{
			Type:    src.kind,
			Title:   src.label + " Policy",
			Content: truncate(body, MaxPolicyLength),
			URL:     url,
		})
	}
	return out
}

// PolicyText returns the readable text of a policy page as Markdown. The main
// content region is preferred; without one the whole body is used minus the
// page chrome.
func (e *Extractor) PolicyText(body string) (string, error) {
	doc, err := ParseHTML(body)
	if err != nil {
		return "", err
	}

	var region *goquery.Selection
	for _, sel := range policyContentSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			region = s
			break
		}
	}
	if region == nil {
		doc.Find("header, footer, nav").Remove()
		region = doc.Find("body")
	}

	fragment, err := region.Html()
	if err != nil {
		return "", err
	}
	cleaned, err := CleanHTML(fragment)
	if err != nil {
		return "", err
	}
	text, err := e.markdown.ConvertString(cleaned)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// CleanHTML removes scripts, forms and embedded media and keeps only the
// attributes a Markdown converter needs.
func CleanHTML(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, link, meta, noscript, iframe, svg, form, input, button, select, textarea, canvas").Remove()

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		node := s.Nodes[0]
		var kept []html.Attribute
		for _, attr := range node.Attr {
			switch {
			case node.Data == "a" && (attr.Key == "href" || attr.Key == "title"):
				kept = append(kept, attr)
			case node.Data == "img" && (attr.Key == "src" || attr.Key == "alt"):
				kept = append(kept, attr)
			}
		}
		node.Attr = kept
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
