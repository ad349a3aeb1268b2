package urlutil

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/law-makers/storelens/internal/apperr"
)

// ValidateURL checks that urlStr is an absolute http(s) URL with a host.
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidURL, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got %q", apperr.ErrInvalidURL, parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("%w: missing host", apperr.ErrInvalidURL)
	}

	return nil
}

// NormalizeStoreURL reduces raw to the storefront root, scheme://host. The
// scheme defaults to https and the host is lowercased; any path, query,
// fragment or credentials are dropped since every page is addressed from
// the root.
func NormalizeStoreURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty", apperr.ErrInvalidURL)
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	if err := ValidateURL(raw); err != nil {
		return "", err
	}
	u, _ := url.Parse(raw)
	return u.Scheme + "://" + strings.ToLower(u.Host), nil
}

// ResolveURL resolves a possibly-relative href against base.
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return base
	}
	if strings.HasPrefix(href, "//") {
		if b, err := url.Parse(base); err == nil && b.Scheme != "" {
			return b.Scheme + ":" + href
		}
		return "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(u).String()
}

// Host returns the lowercased host of rawURL without a www. prefix.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		u, err = url.Parse("https://" + rawURL)
		if err != nil {
			return ""
		}
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// RegistrableDomain returns the eTLD+1 of rawURL (shop.acme.co.uk -> acme.co.uk).
func RegistrableDomain(rawURL string) string {
	host := Host(rawURL)
	if host == "" {
		return ""
	}
	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return d
}

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]`)

// BrandFromHost turns a store URL into a display name: storefront prefixes
// are dropped, the first label is kept and capitalized.
func BrandFromHost(rawURL string) string {
	host := Host(rawURL)
	for _, prefix := range []string{"www.", "shop.", "store.", "m."} {
		host = strings.TrimPrefix(host, prefix)
	}
	label := host
	if i := strings.Index(label, "."); i > 0 {
		label = label[:i]
	}
	label = nonAlnum.ReplaceAllString(label, "")
	if label == "" {
		return ""
	}
	return strings.ToUpper(label[:1]) + strings.ToLower(label[1:])
}
