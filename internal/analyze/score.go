package analyze

import "github.com/law-makers/storelens/pkg/models"

// scoredSections is the number of sections counted toward Completeness.Score.
// Competitors are reported but never scored since they are always present.
const scoredSections = 7

// Score reports which sections of p carry data and the share of scored
// sections that do. Contact counts only for an email or a phone number.
func Score(p *models.StoreProfile) models.Completeness {
	c := models.Completeness{
		HasProducts:       len(p.Products) > 0,
		HasHeroProducts:   len(p.HeroProducts) > 0,
		HasPolicies:       len(p.Policies) > 0,
		HasFAQs:           len(p.FAQs) > 0,
		HasSocial:         len(p.SocialHandles) > 0,
		HasContact:        len(p.Contact.Emails) > 0 || len(p.Contact.Phones) > 0,
		HasImportantLinks: len(p.ImportantLinks) > 0,
		HasCompetitors:    len(p.Competitors) > 0,
	}

	n := 0
	for _, ok := range []bool{
		c.HasProducts, c.HasHeroProducts, c.HasPolicies, c.HasFAQs,
		c.HasSocial, c.HasContact, c.HasImportantLinks,
	} {
		if ok {
			n++
		}
	}
	c.Score = float64(n) / scoredSections * 100
	return c
}

// Recommendations lists improvements for the gaps in p.
func Recommendations(p *models.StoreProfile) []string {
	var out []string
	if len(p.Products) == 0 {
		out = append(out, "Add product catalog data to improve customer experience")
	}
	if len(p.Policies) == 0 {
		out = append(out, "Add clear policies (privacy, returns, shipping) for customer trust")
	}
	if len(p.SocialHandles) < 3 {
		out = append(out, "Expand social media presence across more platforms")
	}
	if len(p.FAQs) == 0 {
		out = append(out, "Create comprehensive FAQ section to reduce customer inquiries")
	}
	if len(out) == 0 {
		out = append(out, "Excellent! All major brand elements are present and well-structured.")
	}
	return out
}
