package extract

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	urlutil "github.com/law-makers/storelens/internal/utils/url"
	"github.com/law-makers/storelens/pkg/models"
)

var (
	emailRe  = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRes = []*regexp.Regexp{
		regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
		regexp.MustCompile(`\+\d{1,4}[-.\s]?\(?\d{2,4}\)?[-.\s]?\d{3,4}[-.\s]?\d{3,4}`),
	}
	addressRe = regexp.MustCompile(`(?i)\d+\s+[A-Za-z\s]+(?:Street|St|Avenue|Ave|Road|Rd|Drive|Dr|Lane|Ln|Boulevard|Blvd|Way|Place|Pl)\s*,?\s*[A-Za-z\s]+,?\s*[A-Z]{2}\s+\d{5}`)

	zipRe   = regexp.MustCompile(`\d{5}(-\d{4})?`)
	stateRe = regexp.MustCompile(`\b[A-Z]{2}\b`)

	phoneParens = regexp.MustCompile(`^\(\d{3}\)\s*\d{3}-\d{4}`)
	phoneDashes = regexp.MustCompile(`^\d{3}[-.\s]\d{3}[-.\s]\d{4}`)

	emailPriority = []*regexp.Regexp{
		regexp.MustCompile(`^info@`),
		regexp.MustCompile(`^contact@`),
		regexp.MustCompile(`^hello@`),
		regexp.MustCompile(`^support@`),
		regexp.MustCompile(`^sales@`),
		regexp.MustCompile(`^admin@`),
		regexp.MustCompile(`^[a-zA-Z]+@`),
	}

	fakeEmailTerms = []string{"example.com", "test.com", "placeholder"}
)

var contactContainers = ".contact-info, .contact-details, .contact-section, .footer-contact, .contact-block, [class*=\"contact\"], .address-info, .company-info, .store-info"

// Contact gathers emails, phone numbers and postal addresses from a page and
// keeps the single best candidate of each kind.
func (e *Extractor) Contact(doc *goquery.Document) models.ContactInfo {
	info := models.ContactInfo{Emails: []string{}, Phones: []string{}, Addresses: []string{}}
	if doc == nil {
		return info
	}

	var c contactCandidates
	c.scan(blockText(doc.Find("body")))

	each("contact", doc.Find(contactContainers), func(_ int, s *goquery.Selection) {
		c.scan(blockText(s))
	})
	each("contact", doc.Find(`a[href^="mailto:"]`), func(_ int, a *goquery.Selection) {
		addr := strings.TrimPrefix(a.AttrOr("href", ""), "mailto:")
		if i := strings.IndexByte(addr, '?'); i >= 0 {
			addr = addr[:i]
		}
		if decoded, err := url.PathUnescape(addr); err == nil {
			addr = decoded
		}
		c.addEmail(addr)
	})
	each("contact", doc.Find(`a[href^="tel:"]`), func(_ int, a *goquery.Selection) {
		c.addPhone(strings.TrimPrefix(a.AttrOr("href", ""), "tel:"))
	})
	each("contact", doc.Find(`[itemtype*="PostalAddress"], .address, .location`), func(_ int, s *goquery.Selection) {
		if text := CleanText(blockTextInline(s)); runeLen(text) > 15 {
			c.addAddress(text)
		}
	})

	if best := BestEmail(c.emails); best != "" {
		info.Emails = append(info.Emails, best)
	}
	if best := BestPhone(c.phones); best != "" {
		info.Phones = append(info.Phones, best)
	}
	if best := BestAddress(c.addresses); best != "" {
		info.Addresses = append(info.Addresses, best)
	}
	return info
}

// ContactPageURL returns the first link that looks like a contact page.
func (e *Extractor) ContactPageURL(doc *goquery.Document, base string) string {
	if doc == nil {
		return ""
	}
	var found string
	eachUntil("contact", doc.Find("a[href]"), func(_ int, a *goquery.Selection) bool {
		href := a.AttrOr("href", "")
		if strings.Contains(strings.ToLower(href), "/contact") {
			found = urlutil.ResolveURL(base, href)
			return false
		}
		return true
	})
	return found
}

type contactCandidates struct {
	emails, phones, addresses []string
	seen                      map[string]bool
}

func (c *contactCandidates) once(key string) bool {
	if c.seen == nil {
		c.seen = make(map[string]bool)
	}
	if c.seen[key] {
		return false
	}
	c.seen[key] = true
	return true
}

func (c *contactCandidates) scan(text string) {
	for _, m := range emailRe.FindAllString(text, -1) {
		c.addEmail(m)
	}
	for _, re := range phoneRes {
		for _, m := range re.FindAllString(text, -1) {
			c.addPhone(m)
		}
	}
	flat := whitespace.ReplaceAllString(text, " ")
	for _, m := range addressRe.FindAllString(flat, -1) {
		if a := CleanText(m); runeLen(a) > 20 {
			c.addAddress(a)
		}
	}
}

func (c *contactCandidates) addEmail(addr string) {
	addr = strings.TrimSpace(addr)
	if addr == "" || !emailRe.MatchString(addr) || containsAny(addr, fakeEmailTerms) {
		return
	}
	if c.once("e:" + strings.ToLower(addr)) {
		c.emails = append(c.emails, addr)
	}
}

func (c *contactCandidates) addPhone(phone string) {
	phone = strings.TrimSpace(phone)
	significant := 0
	var digits strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
			significant++
		} else if r == '+' {
			significant++
		}
	}
	if significant < 10 || len(phone) >= 50 {
		return
	}
	if c.once("p:" + digits.String()) {
		c.phones = append(c.phones, phone)
	}
}

func (c *contactCandidates) addAddress(addr string) {
	if c.once("a:" + strings.ToLower(addr)) {
		c.addresses = append(c.addresses, addr)
	}
}

// blockTextInline is blockText on a single line.
func blockTextInline(s *goquery.Selection) string {
	return strings.ReplaceAll(blockText(s), "\n", " ")
}

// BestEmail prefers role mailboxes (info@, contact@, hello@, support@,
// sales@, admin@) over other addresses, and short addresses over long ones.
// Ties go to the earliest candidate.
func BestEmail(emails []string) string {
	return pickBest(emails, func(email string) int {
		lower := strings.ToLower(strings.TrimSpace(email))
		score := 0
		for i, re := range emailPriority {
			if re.MatchString(lower) {
				score = len(emailPriority) - i + 10
				break
			}
		}
		if len(email) < 30 {
			score += 2
		}
		if len(email) > 50 {
			score -= 3
		}
		return score
	})
}

// BestPhone prefers complete North American numbers in a conventional format
// without an extension.
func BestPhone(phones []string) string {
	return pickBest(phones, func(phone string) int {
		phone = strings.TrimSpace(phone)
		digits := strings.Map(func(r rune) rune {
			if unicode.IsDigit(r) {
				return r
			}
			return -1
		}, phone)

		score := 0
		switch {
		case len(digits) == 10:
			score += 10
		case len(digits) == 11 && strings.HasPrefix(digits, "1"):
			score += 10
		case len(digits) > 6:
			score += 5
		}
		if phoneParens.MatchString(phone) {
			score += 5
		} else if phoneDashes.MatchString(phone) {
			score += 3
		}
		if !strings.Contains(strings.ToLower(phone), "ext") {
			score += 2
		}
		return score
	})
}

// BestAddress prefers addresses with several comma separated parts, a ZIP
// code, a state abbreviation and a plausible length.
func BestAddress(addresses []string) string {
	return pickBest(addresses, func(addr string) int {
		addr = strings.TrimSpace(addr)
		score := 0
		switch parts := len(strings.Split(addr, ",")); {
		case parts >= 3:
			score += 10
		case parts >= 2:
			score += 5
		}
		if zipRe.MatchString(addr) {
			score += 5
		}
		if stateRe.MatchString(addr) {
			score += 3
		}
		n := runeLen(addr)
		if n >= 30 && n <= 150 {
			score += 2
		}
		if n < 20 || n > 200 {
			score -= 5
		}
		return score
	})
}

func pickBest(candidates []string, score func(string) int) string {
	best, bestScore := "", 0
	for i, c := range candidates {
		s := score(c)
		if i == 0 || s > bestScore {
			best, bestScore = strings.TrimSpace(c), s
		}
	}
	return best
}
