// Package competitors suggests competing stores for a storefront from a
// static table of known stores and industry keyword lists. Nothing is
// looked up live.
package competitors

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	urlutil "github.com/law-makers/storelens/internal/utils/url"
	"github.com/law-makers/storelens/pkg/models"
)

const (
	// DefaultLimit is used when a caller passes a non-positive limit.
	DefaultLimit = 5
	// MinCompetitors is returned even when limit is smaller.
	MinCompetitors = 2
)

// Sources, in the order results are ranked.
const (
	SourceDatabase  = "Database"
	SourceIndustry  = "Industry Analysis"
	SourceGenerated = "Generated"
	SourceEmergency = "Emergency Fallback"
)

var sourceRank = map[string]int{
	SourceDatabase:  0,
	SourceIndustry:  1,
	SourceGenerated: 2,
	SourceEmergency: 3,
}

type knownStore struct {
	domain string
	rivals []string
}

// Stores with hand-picked rivals. Order matters for partial matches.
var knownStores = []knownStore{
	{"allbirds.com", []string{"bombas.com", "rothys.com", "atoms.com", "vessi.com", "greats.com"}},
	{"colourpop.com", []string{"milkmakeup.com", "glossier.com", "rarebeauty.com", "fentybeauty.com", "elfcosmetics.com"}},
	{"gymshark.com", []string{"alphalete.com", "youngla.com", "nvgtn.com", "nike.com", "lululemon.com"}},
	{"beardbrand.com", []string{"theartofshaving.com", "beardcare.com", "gentlemensbeardclub.com", "beardbaron.com", "mountaineerbrand.com"}},
	{"bombas.com", []string{"allbirds.com", "rothys.com", "atoms.com", "smartwool.com", "stance.com"}},
	{"glossier.com", []string{"milkmakeup.com", "colourpop.com", "rarebeauty.com", "fentybeauty.com", "kyliecosmetics.com"}},
	{"casper.com", []string{"purple.com", "tuftandneedle.com", "saatva.com", "helixsleep.com", "nectarsleep.com"}},
	{"warbyparker.com", []string{"zennioptical.com", "eyebuydirect.com", "bonlook.com", "liingo.com", "firmoo.com"}},
	{"dollarshaveclub.com", []string{"harrys.com", "gillette.com", "shopflamingo.com", "billieinc.com", "cornerstone.co.uk"}},
	{"theordinary.com", []string{"paulaschoice.com", "cerave.com", "cetaphil.com", "neutrogena.com", "skinmedica.com"}},
	{"mejuri.com", []string{"pandora.net", "kendrascott.com", "gorjana.com", "catbirdnyc.com", "aurate.com"}},
	{"awaytravel.com", []string{"rimowa.com", "samsonite.com", "travelpro.com", "delsey.com", "monos.com"}},
	{"patagonia.com", []string{"rei.com", "thenorthface.com", "columbia.com", "arcteryx.com", "prana.com"}},
	{"everlane.com", []string{"cos.com", "uniqlo.com", "muji.com", "thereformation.com", "grana.com"}},
	{"hairoriginals.com", []string{"devacurl.com", "curlsmith.com", "sheamoisture.com", "moroccanoil.com", "theouai.com"}},
}

type industry struct {
	name     string
	category string
	// keywords matched against the store's domain
	keywords []string
	// narrower keywords used to label a single domain
	labels []string
	rivals []string
}

var industries = []industry{
	{
		name:     "beauty",
		category: "Beauty & Personal Care",
		keywords: []string{"beauty", "makeup", "cosmetic", "skincare", "hair"},
		labels:   []string{"beauty", "cosmetic", "makeup", "skincare"},
		rivals:   []string{"sephora.com", "ulta.com", "sallybeauty.com", "dermstore.com", "beautylish.com"},
	},
	{
		name:     "fashion",
		category: "Fashion & Apparel",
		keywords: []string{"fashion", "clothing", "apparel", "wear", "style"},
		labels:   []string{"fashion", "clothing", "apparel", "wear"},
		rivals:   []string{"zara.com", "hm.com", "uniqlo.com", "cos.com", "arket.com"},
	},
	{
		name:     "fitness",
		category: "Sports & Fitness",
		keywords: []string{"fitness", "gym", "workout", "athletic", "sport"},
		labels:   []string{"fitness", "gym", "sport", "athletic"},
		rivals:   []string{"nike.com", "adidas.com", "underarmour.com", "lululemon.com", "reebok.com"},
	},
	{
		name:     "home",
		category: "Home & Garden",
		keywords: []string{"home", "furniture", "decor", "interior", "house"},
		labels:   []string{"home", "furniture", "decor"},
		rivals:   []string{"ikea.com", "wayfair.com", "westelm.com", "cb2.com", "crateandbarrel.com"},
	},
	{
		name:     "tech",
		category: "Technology",
		keywords: []string{"tech", "electronic", "gadget", "device", "digital"},
		labels:   []string{"tech", "electronic", "gadget"},
		rivals:   []string{"apple.com", "bestbuy.com", "newegg.com", "bhphotovideo.com", "adorama.com"},
	},
}

const defaultCategory = "E-commerce"

var categoryBlurbs = map[string]string{
	"Beauty & Personal Care": "Beauty and cosmetics retailer offering premium skincare and makeup products.",
	"Fashion & Apparel":      "Fashion retailer specializing in contemporary clothing and accessories.",
	"Sports & Fitness":       "Athletic and fitness brand offering performance sportswear and equipment.",
	"Home & Garden":          "Home goods and furniture retailer with modern design focus.",
	"Technology":             "Technology retailer offering innovative electronics and gadgets.",
	defaultCategory:          "Established competitor in the same market segment as your business.",
}

type template struct {
	suffix string
	title  string
	desc   string
}

// Name templates for generated rivals. %s is the category.
var templates = []template{
	{"hub.com", "%s Hub - Premium Solutions", "Leading platform for %s solutions with advanced features and premium service."},
	{"pro.com", "%sPro - Professional Tools", "Professional-grade %s tools trusted by industry experts and enterprises."},
	{"express.com", "%s Express - Fast & Reliable", "Fast, reliable %s services with quick delivery and excellent support."},
	{"elite.com", "Elite %s Solutions", "Elite-tier %s solutions for discerning customers who demand the best."},
	{"direct.com", "%sDirect - Factory to You", "Direct-to-consumer %s products with factory pricing and premium quality."},
}

var (
	strengths       = []string{"Strong", "Moderate", "Emerging"}
	marketPositions = []string{"Direct Competitor", "Indirect Competitor", "Industry Leader"}
)

// Suggester ranks competitor suggestions for a store.
type Suggester struct {
	known      []knownStore
	industries []industry
}

// New returns a Suggester over the built-in tables.
func New() *Suggester {
	return &Suggester{known: knownStores, industries: industries}
}

// Suggest returns between MinCompetitors and max(limit, MinCompetitors)
// suggestions for storeURL, best source first. Generated and emergency
// entries are tagged synthetic.
func (s *Suggester) Suggest(storeURL string, limit int) []models.Competitor {
	if limit <= 0 {
		limit = DefaultLimit
	}
	domain := urlutil.RegistrableDomain(storeURL)

	var out []models.Competitor
	if domain == "" {
		log.Warn().Str("url", storeURL).Msg("Could not derive a domain, using placeholder competitors")
		domain = "unknown"
	} else {
		out = s.fromDatabase(domain, limit)
		if len(out) < MinCompetitors {
			out = append(out, s.fromIndustry(domain, limit)...)
		}
		if len(out) < MinCompetitors {
			out = append(out, s.generated(domain, MinCompetitors-len(out))...)
		}
	}
	for n := len(out) + 1; len(out) < MinCompetitors; n++ {
		out = append(out, s.emergency(domain, n))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return sourceRank[out[i].Source] < sourceRank[out[j].Source]
	})
	out = out[:max(MinCompetitors, min(len(out), limit))]

	log.Debug().Str("domain", domain).Int("count", len(out)).Str("top_source", out[0].Source).Msg("Suggested competitors")
	return out
}

// fromDatabase matches the store against the known-store table, exactly or
// by a significant label of a known domain appearing in its own.
func (s *Suggester) fromDatabase(domain string, limit int) []models.Competitor {
	for _, ks := range s.known {
		if ks.domain == domain {
			return s.describeAll(domain, ks.rivals, limit, SourceDatabase, "high")
		}
	}
	for _, ks := range s.known {
		for _, part := range strings.Split(strings.TrimSuffix(ks.domain, ".com"), ".") {
			if len(part) > 3 && strings.Contains(domain, part) {
				return s.describeAll(domain, ks.rivals, limit, SourceDatabase, "high")
			}
		}
	}
	return nil
}

func (s *Suggester) fromIndustry(domain string, limit int) []models.Competitor {
	ind, ok := s.industryOf(domain, func(i industry) []string { return i.keywords })
	if !ok {
		return nil
	}
	return s.describeAll(domain, ind.rivals, limit, SourceIndustry, "medium")
}

func (s *Suggester) describeAll(self string, rivals []string, limit int, source, confidence string) []models.Competitor {
	out := make([]models.Competitor, 0, min(limit, len(rivals)))
	for _, d := range rivals {
		if len(out) == limit {
			break
		}
		if d == self {
			continue
		}
		out = append(out, s.describe(d, source, confidence))
	}
	return out
}

func (s *Suggester) describe(domain, source, confidence string) models.Competitor {
	category := s.Category(domain)
	h := hashOf(domain)
	return models.Competitor{
		URL:            "https://" + domain,
		Domain:         domain,
		Title:          titleFromDomain(domain),
		Description:    categoryBlurbs[category],
		Category:       category,
		Confidence:     confidence,
		Source:         source,
		Strength:       strengths[h%uint32(len(strengths))],
		MarketPosition: marketPositions[(h/7)%uint32(len(marketPositions))],
		Provenance:     models.ProvenanceExtracted,
	}
}

func (s *Suggester) generated(domain string, count int) []models.Competitor {
	category := s.Category(domain)
	stem := stemOf(category)
	h := hashOf(domain)

	out := make([]models.Competitor, 0, count)
	for i := 0; i < count; i++ {
		t := templates[i%len(templates)]
		d := stem + t.suffix
		out = append(out, models.Competitor{
			URL:            "https://" + d,
			Domain:         d,
			Title:          fmt.Sprintf(t.title, category),
			Description:    fmt.Sprintf(t.desc, strings.ToLower(category)),
			Category:       category,
			Confidence:     "low",
			Source:         SourceGenerated,
			Strength:       strengths[(h+uint32(i))%uint32(len(strengths))],
			MarketPosition: "Generated Competitor",
			Provenance:     models.ProvenanceSynthetic,
		})
	}
	return out
}

func (s *Suggester) emergency(domain string, n int) models.Competitor {
	category := s.Category(domain)
	d := fmt.Sprintf("competitor%d-%s.example.com", n, strings.ReplaceAll(domain, ".", "-"))
	return models.Competitor{
		URL:            "https://" + d,
		Domain:         d,
		Title:          fmt.Sprintf("Alternative %s Solution #%d", category, n),
		Description:    fmt.Sprintf("Professional %s alternative with competitive features and pricing.", strings.ToLower(category)),
		Category:       category,
		Confidence:     "low",
		Source:         SourceEmergency,
		Strength:       "Moderate",
		MarketPosition: "Market Alternative",
		Provenance:     models.ProvenanceSynthetic,
	}
}

// Category labels a domain with the first industry whose label appears in it.
func (s *Suggester) Category(domain string) string {
	if ind, ok := s.industryOf(domain, func(i industry) []string { return i.labels }); ok {
		return ind.category
	}
	return defaultCategory
}

func (s *Suggester) industryOf(domain string, terms func(industry) []string) (industry, bool) {
	for _, ind := range s.industries {
		if containsAny(domain, terms(ind)) {
			return ind, true
		}
	}
	return industry{}, false
}

// titleFromDomain turns acme-goods.co into "Acme Goods".
func titleFromDomain(domain string) string {
	name := strings.TrimPrefix(domain, "www.")
	for _, tld := range []string{".com", ".co", ".net"} {
		name = strings.Replace(name, tld, "", 1)
	}
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '.' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	if len(words) == 0 {
		return "Competitor Website"
	}
	return strings.Join(words, " ")
}

func stemOf(category string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(category) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func hashOf(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
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
