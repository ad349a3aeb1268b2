package output

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/storelens/pkg/models"
)

func profile() *models.StoreProfile {
	price := 98.0
	theme := "Dawn"
	return &models.StoreProfile{
		URL:         "https://acme.test",
		Name:        "Acme",
		Description: "Wool shoes & socks",
		Products: []models.Product{
			{ID: "1", Title: "Wool Runner", Handle: "wool-runner", Price: &price, Available: true, Tags: []string{"shoes", "wool"}, URL: "https://acme.test/products/wool-runner"},
			{ID: "2", Title: "Sock, Crew", Handle: "sock", URL: "https://acme.test/products/sock"},
		},
		HeroProducts: []models.FeaturedItem{{Title: "Wool Runner", Price: "$98", Provenance: models.ProvenanceExtracted}},
		FAQs:         []models.QAPair{{Question: "Do you ship?", Answer: "Yes.", Provenance: models.ProvenanceSynthetic}},
		Contact:      models.ContactInfo{Emails: []string{"hello@acme.com"}},
		Competitors:  []models.Competitor{{URL: "https://bombas.com", Title: "Bombas", Category: "Fashion & Apparel", Source: "Database"}},
		Theme:        &theme,
		Apps:         []string{"Klaviyo"},
		AnalyzedAt:   time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Completeness: models.Completeness{Score: 71.4},
	}
}

func TestSaveJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acme.json")
	require.NoError(t, Save(profile(), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var got models.StoreProfile
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "Acme", got.Name)
	assert.Len(t, got.Products, 2)
}

func TestSaveCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acme.csv")
	require.NoError(t, Save(profile(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, productColumns, rows[0])
	assert.Equal(t, []string{"1", "Wool Runner", "wool-runner", "", "", "98.00", "", "true", "0", "shoes;wool", "https://acme.test/products/wool-runner"}, rows[1])
	assert.Equal(t, "Sock, Crew", rows[2][1])
	assert.Equal(t, "", rows[2][5])
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown(profile())
	require.NoError(t, err)

	assert.Contains(t, out, "# Acme")
	assert.Contains(t, out, "Wool shoes & socks")
	assert.Contains(t, out, "## Products")
	assert.Contains(t, out, "[Wool Runner](https://acme.test/products/wool-runner)")
	assert.Regexp(t, `\| *Theme *\| *Dawn *\|`, out)
	assert.Contains(t, out, "71%")
	assert.Contains(t, out, "### Do you ship?")
	assert.NotContains(t, out, "<table>")
	assert.NotContains(t, out, "## Policies", "empty sections are left out")
}

func TestRenderHTMLEscapes(t *testing.T) {
	p := profile()
	p.Name = `<script>alert(1)</script>`
	out, err := RenderHTML(p)
	require.NoError(t, err)
	assert.False(t, strings.Contains(out, "<script>"))
}

func TestSaveRejectsUnknownExtension(t *testing.T) {
	err := Save(profile(), filepath.Join(t.TempDir(), "acme.xml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".xml")
}
