package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/law-makers/storelens/internal/ui"
	"github.com/law-makers/storelens/pkg/models"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printProfile writes the terminal summary of an analyzed store.
func printProfile(w io.Writer, p *models.StoreProfile) {
	fmt.Fprintf(w, "\n%s  %s\n\n", ui.Heading(p.Name), ui.Dim(p.URL))

	if p.Description != "" {
		fmt.Fprintln(w, ui.Field("Description", truncate(p.Description, 100)))
	}
	theme := ""
	if p.Theme != nil {
		theme = *p.Theme
	}
	fmt.Fprintln(w, ui.Field("Theme", theme))
	fmt.Fprintln(w, ui.Field("Apps", strings.Join(p.Apps, ", ")))
	fmt.Fprintln(w, ui.Field("Products", countWithSample(len(p.Products), productTitles(p.Products, 3))))
	fmt.Fprintln(w, ui.Field("Hero products", fmt.Sprint(len(p.HeroProducts))))

	policies := make([]string, 0, len(p.Policies))
	for _, pol := range p.Policies {
		policies = append(policies, string(pol.Type))
	}
	fmt.Fprintln(w, ui.Field("Policies", strings.Join(policies, ", ")))
	fmt.Fprintln(w, ui.Field("FAQs", fmt.Sprint(len(p.FAQs))))

	social := make([]string, 0, len(p.SocialHandles))
	for _, s := range p.SocialHandles {
		social = append(social, string(s.Platform))
	}
	fmt.Fprintln(w, ui.Field("Social", strings.Join(social, ", ")))

	contact := append(append(append([]string{}, p.Contact.Emails...), p.Contact.Phones...), p.Contact.Addresses...)
	fmt.Fprintln(w, ui.Field("Contact", strings.Join(contact, " | ")))
	fmt.Fprintln(w, ui.Field("Links", fmt.Sprint(len(p.ImportantLinks))))

	domains := make([]string, 0, len(p.Competitors))
	for _, c := range p.Competitors {
		domains = append(domains, c.Domain)
	}
	fmt.Fprintln(w, ui.Field("Competitors", strings.Join(domains, ", ")))

	fmt.Fprintln(w, ui.Field("Completeness", ui.Score(p.Completeness.Score)))
	fmt.Fprintln(w, ui.Field("Pages analyzed", fmt.Sprint(p.PagesAnalyzed)))
	fmt.Fprintln(w, ui.Field("Took", p.Duration.Round(time.Millisecond).String()))

	if len(p.Recommendations) > 0 {
		fmt.Fprintf(w, "\n%s\n", ui.Bold("Recommendations"))
		for _, r := range p.Recommendations {
			fmt.Fprintf(w, "  %s %s\n", ui.Info("•"), r)
		}
	}
	fmt.Fprintln(w)
}

func productTitles(products []models.Product, n int) []string {
	out := make([]string, 0, n)
	for _, p := range products {
		if len(out) == n {
			break
		}
		out = append(out, p.Title)
	}
	return out
}

func countWithSample(n int, sample []string) string {
	if n == 0 {
		return "0"
	}
	s := fmt.Sprintf("%d (%s", n, strings.Join(sample, ", "))
	if n > len(sample) {
		s += ", ..."
	}
	return s + ")"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
