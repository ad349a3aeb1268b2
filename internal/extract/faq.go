package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/storelens/pkg/models"
)

// MaxFAQs caps the pairs returned for a page and for a whole profile.
const MaxFAQs = 20

var questionRe = regexp.MustCompile(`\?|^(How|What|When|Where|Why|Can|Is|Do|Does)\b`)

// FAQs finds question/answer pairs on a page. Three layouts are tried in
// order and the first that yields anything wins: FAQ or accordion containers,
// question-like headings followed by a block, then definition lists.
func (e *Extractor) FAQs(doc *goquery.Document) []models.QAPair {
	if doc == nil {
		return nil
	}

	strategies := []struct {
		name string
		fn   func(*goquery.Document) []models.QAPair
	}{
		{"containers", faqsFromContainers},
		{"headings", faqsFromHeadings},
		{"definition lists", faqsFromDefinitionLists},
	}

	for _, st := range strategies {
		if faqs := DedupeFAQs(st.fn(doc)); len(faqs) > 0 {
			log.Debug().Str("strategy", st.name).Int("count", len(faqs)).Msg("FAQs found")
			if len(faqs) > MaxFAQs {
				faqs = faqs[:MaxFAQs]
			}
			return faqs
		}
	}
	return nil
}

func faqsFromContainers(doc *goquery.Document) []models.QAPair {
	var out []models.QAPair
	each("faq", doc.Find(".faq, .accordion, .qa-section, [data-faq]"), func(_ int, container *goquery.Selection) {
		each("faq", container.Find(".qa-pair, .faq-item, .accordion-item"), func(_ int, pair *goquery.Selection) {
			q := pair.Find(".question, .faq-question, .accordion-header, h3, h4, h5").First()
			a := pair.Find(".answer, .faq-answer, .accordion-content, .faq-content").First()
			if q.Length() == 0 || a.Length() == 0 {
				return
			}
			question, answer := CleanText(q.Text()), CleanText(a.Text())
			if runeLen(question) <= 5 || runeLen(answer) <= 10 {
				return
			}
			qa := extractedQA(question, answer)
			if cat := strings.TrimSpace(pair.AttrOr("data-category", container.AttrOr("data-category", ""))); cat != "" {
				qa.Category = &cat
			}
			out = append(out, qa)
		})
	})
	return out
}

func faqsFromHeadings(doc *goquery.Document) []models.QAPair {
	var out []models.QAPair
	each("faq", doc.Find("h3, h4, h5"), func(_ int, h *goquery.Selection) {
		question := CleanText(h.Text())
		if question == "" || !questionRe.MatchString(question) {
			return
		}
		next := h.NextAllFiltered("p, div").First()
		if next.Length() == 0 {
			return
		}
		if answer := CleanText(next.Text()); runeLen(answer) > 10 {
			out = append(out, extractedQA(question, answer))
		}
	})
	return out
}

func faqsFromDefinitionLists(doc *goquery.Document) []models.QAPair {
	var out []models.QAPair
	each("faq", doc.Find("dl"), func(_ int, dl *goquery.Selection) {
		terms, defs := dl.Find("dt"), dl.Find("dd")
		n := terms.Length()
		if defs.Length() < n {
			n = defs.Length()
		}
		for i := 0; i < n; i++ {
			question := CleanText(terms.Eq(i).Text())
			answer := CleanText(defs.Eq(i).Text())
			if question != "" && runeLen(answer) > 10 {
				out = append(out, extractedQA(question, answer))
			}
		}
	})
	return out
}

func extractedQA(q, a string) models.QAPair {
	return models.QAPair{Question: q, Answer: a, Provenance: models.ProvenanceExtracted}
}

// DedupeFAQs drops pairs whose question repeats an earlier one, ignoring
// case. Nested accordions match more than one container selector, and the
// same question often appears on both the FAQ and help pages.
func DedupeFAQs(in []models.QAPair) []models.QAPair {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, qa := range in {
		key := strings.ToLower(qa.Question)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, qa)
	}
	return out
}
