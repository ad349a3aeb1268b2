package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/law-makers/storelens/pkg/models"
)

// Usage is how many stored brands use a theme or an app.
type Usage struct {
	Name  string `json:"name"`
	Count int    `json:"usage_count"`
}

// Trends counts theme and app usage over recently analyzed brands.
type Trends struct {
	Analyzed     int       `json:"total_recent_analyses"`
	Themes       []Usage   `json:"popular_themes"`
	Apps         []Usage   `json:"popular_apps"`
	UniqueThemes int       `json:"unique_themes"`
	UniqueApps   int       `json:"unique_apps"`
	GeneratedAt  time.Time `json:"analysis_timestamp"`
}

// Trending looks at the `recent` most recently analyzed brands and returns the
// top themes and apps among them, most used first.
func (s *Store) Trending(ctx context.Context, recent, top int) (*Trends, error) {
	brands, err := s.List(ctx, 0, recent)
	if err != nil {
		return nil, err
	}

	themes := map[string]int{}
	apps := map[string]int{}
	for _, b := range brands {
		if b.Theme != nil && *b.Theme != "" {
			themes[*b.Theme]++
		}
		for _, a := range b.Apps {
			if a = strings.TrimSpace(a); a != "" {
				apps[a]++
			}
		}
	}

	return &Trends{
		Analyzed:     len(brands),
		Themes:       ranked(themes, top),
		Apps:         ranked(apps, top),
		UniqueThemes: len(themes),
		UniqueApps:   len(apps),
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

// ranked orders counts descending, then by name, keeping at most top entries.
func ranked(counts map[string]int, top int) []Usage {
	out := make([]Usage, 0, len(counts))
	for name, n := range counts {
		out = append(out, Usage{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if top > 0 && len(out) > top {
		out = out[:top]
	}
	return out
}

// Context renders a stored brand as a short plain-text briefing.
func (s *Store) Context(ctx context.Context, storeURL string) (string, error) {
	p, err := s.Get(ctx, storeURL)
	if err != nil {
		return "", err
	}
	return Summary(p), nil
}

// Summary is the text Context returns for p.
func Summary(p *models.StoreProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", p.Name, p.URL)
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n", p.Description)
	}
	if p.Theme != nil {
		fmt.Fprintf(&b, "Theme: %s\n", *p.Theme)
	}
	if len(p.Apps) > 0 {
		fmt.Fprintf(&b, "Apps: %s\n", strings.Join(p.Apps, ", "))
	}

	fmt.Fprintf(&b, "Products: %d", len(p.Products))
	if titles := productTitles(p.Products, 5); len(titles) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(titles, ", "))
	}
	b.WriteString("\n")

	if len(p.Policies) > 0 {
		types := make([]string, len(p.Policies))
		for i, pol := range p.Policies {
			types[i] = string(pol.Type)
		}
		fmt.Fprintf(&b, "Policies: %s\n", strings.Join(types, ", "))
	}
	fmt.Fprintf(&b, "FAQs: %d\n", len(p.FAQs))
	if len(p.SocialHandles) > 0 {
		platforms := make([]string, len(p.SocialHandles))
		for i, sh := range p.SocialHandles {
			platforms[i] = string(sh.Platform)
		}
		fmt.Fprintf(&b, "Social: %s\n", strings.Join(platforms, ", "))
	}
	for _, e := range p.Contact.Emails {
		fmt.Fprintf(&b, "Email: %s\n", e)
	}
	for _, ph := range p.Contact.Phones {
		fmt.Fprintf(&b, "Phone: %s\n", ph)
	}
	if len(p.Competitors) > 0 {
		names := make([]string, len(p.Competitors))
		for i, c := range p.Competitors {
			names[i] = c.Domain
		}
		fmt.Fprintf(&b, "Competitors: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, "Completeness: %.0f%%\n", p.Completeness.Score)
	fmt.Fprintf(&b, "Analyzed: %s", p.AnalyzedAt.UTC().Format(time.RFC3339))
	return b.String()
}

func productTitles(products []models.Product, n int) []string {
	var out []string
	for _, pr := range products {
		if len(out) == n {
			break
		}
		if pr.Title != "" {
			out = append(out, pr.Title)
		}
	}
	return out
}
