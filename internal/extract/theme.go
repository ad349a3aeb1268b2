package extract

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
	"github.com/rs/zerolog/log"
)

// scriptTimeout bounds the evaluation of one theme literal.
const scriptTimeout = 100 * time.Millisecond

var themeAssignRe = regexp.MustCompile(`Shopify\.theme\s*=\s*(\{[^;]*?\})\s*;`)

// Script hosts and inline markers of common storefront apps.
var appSignatures = []struct {
	name    string
	markers []string
}{
	{"Klaviyo", []string{"klaviyo.com"}},
	{"Judge.me", []string{"judge.me"}},
	{"Yotpo", []string{"yotpo.com"}},
	{"Loox", []string{"loox.io"}},
	{"Okendo", []string{"okendo.io"}},
	{"Stamped", []string{"stamped.io"}},
	{"Privy", []string{"privy.com"}},
	{"ReCharge", []string{"rechargecdn.com", "rechargepayments.com"}},
	{"Gorgias", []string{"gorgias.chat", "gorgias.io"}},
	{"Attentive", []string{"attn.tv", "attentivemobile.com"}},
	{"Rebuy", []string{"rebuyengine.com"}},
	{"Smile.io", []string{"smile.io"}},
	{"Afterpay", []string{"afterpay.com"}},
	{"Klarna", []string{"klarna.com", "klarnaservices.com"}},
	{"Hotjar", []string{"hotjar.com"}},
	{"Google Tag Manager", []string{"googletagmanager.com"}},
	{"Meta Pixel", []string{"connect.facebook.net"}},
	{"TikTok Pixel", []string{"analytics.tiktok.com"}},
	{"Shopify Inbox", []string{"shopify-chat", "shopifyinbox"}},
}

var shopifyMarkers = []string{"cdn.shopify.com", "shopify.theme", "myshopify.com", "shopify-section", "shopify-digital-wallet"}

// Theme returns the storefront theme name declared in an inline
// Shopify.theme assignment, or nil when the page declares none.
func (e *Extractor) Theme(doc *goquery.Document) *string {
	if doc == nil {
		return nil
	}
	var name string
	eachUntil("theme", doc.Find("script:not([src])"), func(_ int, s *goquery.Selection) bool {
		src := s.Text()
		if !strings.Contains(src, "Shopify.theme") {
			return true
		}
		m := themeAssignRe.FindStringSubmatch(src)
		if m == nil {
			return true
		}
		name = evalThemeName(m[1])
		return name == ""
	})
	if name == "" {
		return nil
	}
	return &name
}

// evalThemeName evaluates the object literal in a fresh VM. Only the literal
// runs, never the surrounding script.
func evalThemeName(literal string) string {
	vm := goja.New()
	timer := time.AfterFunc(scriptTimeout, func() {
		vm.Interrupt("theme literal timed out")
	})
	defer timer.Stop()

	v, err := vm.RunString("(" + literal + ")")
	if err != nil {
		log.Debug().Err(err).Msg("Theme literal did not evaluate")
		return ""
	}
	obj, ok := v.Export().(map[string]interface{})
	if !ok {
		return ""
	}
	name, _ := obj["name"].(string)
	return strings.TrimSpace(name)
}

// Apps lists the known third-party apps whose scripts the page loads, sorted
// by name.
func (e *Extractor) Apps(doc *goquery.Document) []string {
	apps := []string{}
	if doc == nil {
		return apps
	}

	var haystack strings.Builder
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			haystack.WriteString(strings.ToLower(src))
		} else {
			haystack.WriteString(strings.ToLower(s.Text()))
		}
		haystack.WriteByte('\n')
	})
	doc.Find(`link[href]`).Each(func(_ int, s *goquery.Selection) {
		haystack.WriteString(strings.ToLower(s.AttrOr("href", "")))
		haystack.WriteByte('\n')
	})
	text := haystack.String()

	for _, sig := range appSignatures {
		for _, m := range sig.markers {
			if strings.Contains(text, m) {
				apps = append(apps, sig.name)
				break
			}
		}
	}
	sort.Strings(apps)
	return apps
}

// LooksLikeShopify reports whether a raw page body carries Shopify markers.
func LooksLikeShopify(body string) bool {
	return containsAny(body, shopifyMarkers)
}
