package output

import (
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/law-makers/storelens/pkg/models"
)

var reportFuncs = template.FuncMap{
	"price": formatPrice,
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"pct":  func(f float64) string { return fmt.Sprintf("%.0f%%", f) },
	"join": strings.Join,
}

var reportTemplate = template.Must(template.New("report").Funcs(reportFuncs).Parse(`<html><body>
<h1>{{.Name}}</h1>
<p><a href="{{.URL}}">{{.URL}}</a></p>
{{with .Description}}<p>{{.}}</p>{{end}}
<table>
<thead><tr><th>Field</th><th>Value</th></tr></thead>
<tbody>
<tr><td>Theme</td><td>{{deref .Theme}}</td></tr>
<tr><td>Apps</td><td>{{join .Apps ", "}}</td></tr>
<tr><td>Pages analyzed</td><td>{{.PagesAnalyzed}}</td></tr>
<tr><td>Completeness</td><td>{{pct .Completeness.Score}}</td></tr>
<tr><td>Analyzed at</td><td>{{.AnalyzedAt.Format "2006-01-02 15:04 MST"}}</td></tr>
</tbody>
</table>
{{with .About}}<h2>About</h2><p>{{.}}</p>{{end}}
{{if .Products}}<h2>Products</h2>
<table>
<thead><tr><th>Title</th><th>Price</th><th>Available</th></tr></thead>
<tbody>{{range .Products}}
<tr><td><a href="{{.URL}}">{{.Title}}</a></td><td>{{price .Price}}</td><td>{{.Available}}</td></tr>{{end}}
</tbody>
</table>{{end}}
{{if .HeroProducts}}<h2>Featured</h2>
<ul>{{range .HeroProducts}}<li>{{.Title}}{{with .Price}} ({{.}}){{end}} <em>{{.Provenance}}</em></li>{{end}}</ul>{{end}}
{{if .Policies}}<h2>Policies</h2>
<ul>{{range .Policies}}<li><a href="{{.URL}}">{{.Title}}</a></li>{{end}}</ul>{{end}}
{{if .FAQs}}<h2>FAQ</h2>
{{range .FAQs}}<h3>{{.Question}}</h3><p>{{.Answer}}</p>{{end}}{{end}}
{{if .SocialHandles}}<h2>Social</h2>
<ul>{{range .SocialHandles}}<li><a href="{{.URL}}">{{.Platform}}</a></li>{{end}}</ul>{{end}}
<h2>Contact</h2>
<ul>{{range .Contact.Emails}}<li>{{.}}</li>{{end}}{{range .Contact.Phones}}<li>{{.}}</li>{{end}}{{range .Contact.Addresses}}<li>{{.}}</li>{{end}}</ul>
{{if .ImportantLinks}}<h2>Links</h2>
<ul>{{range .ImportantLinks}}<li><a href="{{.URL}}">{{.Title}}</a></li>{{end}}</ul>{{end}}
{{if .Competitors}}<h2>Competitors</h2>
<table>
<thead><tr><th>Store</th><th>Category</th><th>Source</th></tr></thead>
<tbody>{{range .Competitors}}
<tr><td><a href="{{.URL}}">{{.Title}}</a></td><td>{{.Category}}</td><td>{{.Source}}</td></tr>{{end}}
</tbody>
</table>{{end}}
{{if .Recommendations}}<h2>Recommendations</h2>
<ul>{{range .Recommendations}}<li>{{.}}</li>{{end}}</ul>{{end}}
</body></html>`))

// RenderHTML renders the profile as a standalone HTML report.
func RenderHTML(p *models.StoreProfile) (string, error) {
	var b strings.Builder
	if err := reportTemplate.Execute(&b, p); err != nil {
		return "", err
	}
	return b.String(), nil
}

// SaveHTML writes the HTML report to filepath.
func SaveHTML(p *models.StoreProfile, filepath string) error {
	report, err := RenderHTML(p)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, []byte(report), 0644)
}
