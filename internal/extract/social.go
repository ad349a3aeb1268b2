package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	urlutil "github.com/law-makers/storelens/internal/utils/url"
	"github.com/law-makers/storelens/pkg/models"
)

var platformDomains = []struct {
	platform models.Platform
	domains  []string
}{
	{models.PlatformInstagram, []string{"instagram.com", "instagr.am"}},
	{models.PlatformFacebook, []string{"facebook.com", "fb.com"}},
	{models.PlatformTwitter, []string{"twitter.com", "x.com"}},
	{models.PlatformLinkedIn, []string{"linkedin.com"}},
	{models.PlatformYouTube, []string{"youtube.com", "youtu.be"}},
	{models.PlatformTikTok, []string{"tiktok.com"}},
	{models.PlatformPinterest, []string{"pinterest.com"}},
	{models.PlatformSnapchat, []string{"snapchat.com"}},
	{models.PlatformWhatsApp, []string{"wa.me", "whatsapp.com"}},
	{models.PlatformTelegram, []string{"t.me", "telegram.me"}},
}

// Path prefixes that name content rather than an account.
var reservedPaths = map[models.Platform][]string{
	models.PlatformInstagram: {"p/", "reel/", "tv/", "explore/"},
	models.PlatformTwitter:   {"i/", "search", "hashtag"},
	models.PlatformFacebook:  {"pages/", "groups/", "events/"},
	models.PlatformYouTube:   {"watch", "playlist"},
}

// SocialHandles collects links to the store's social accounts, one per
// platform and URL.
func (e *Extractor) SocialHandles(doc *goquery.Document, base string) []models.SocialHandle {
	if doc == nil {
		return nil
	}

	seen := make(map[string]bool)
	var out []models.SocialHandle

	each("social", doc.Find("a[href]"), func(_ int, a *goquery.Selection) {
		href := strings.ToLower(strings.TrimSpace(a.AttrOr("href", "")))
		if href == "" {
			return
		}
		full := urlutil.ResolveURL(base, href)
		platform, ok := platformOf(full)
		if !ok {
			return
		}
		key := string(platform) + "|" + full
		if seen[key] {
			return
		}
		seen[key] = true

		handle := models.SocialHandle{Platform: platform, URL: full}
		if u := SocialUsername(full, platform); u != "" {
			handle.Username = &u
		}
		out = append(out, handle)
	})
	return out
}

func platformOf(rawURL string) (models.Platform, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for _, p := range platformDomains {
		for _, d := range p.domains {
			if host == d || strings.HasSuffix(host, "."+d) {
				return p.platform, true
			}
		}
	}
	return "", false
}

// SocialUsername derives the account name from a profile URL, or "" when the
// URL points at content or the platform has no path convention.
func SocialUsername(rawURL string, platform models.Platform) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return ""
	}
	for _, prefix := range reservedPaths[platform] {
		if strings.HasPrefix(path, prefix) {
			return ""
		}
	}
	segments := strings.Split(path, "/")

	switch platform {
	case models.PlatformInstagram, models.PlatformTwitter, models.PlatformFacebook:
		return segments[0]
	case models.PlatformYouTube:
		switch segments[0] {
		case "c", "user", "channel":
			if len(segments) > 1 {
				return segments[len(segments)-1]
			}
			return ""
		}
		return segments[0]
	case models.PlatformTikTok:
		if strings.HasPrefix(segments[0], "@") {
			return segments[0]
		}
	}
	return ""
}
