package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/storelens/internal/ui"
	"github.com/law-makers/storelens/pkg/models"
)

func TestWrapText(t *testing.T) {
	in := "one two three four five six\n\n- keep this list item as it is even if it runs long"
	got := wrapText(in, 10)
	assert.Equal(t, "one two\nthree four\nfive six\n\n- keep this list item as it is even if it runs long", got)
}

func TestPrintFlagsTo(t *testing.T) {
	var buf bytes.Buffer
	printFlagsTo(&buf, "  -s, --save            Save the profile\n      --raw             Print JSON\n")
	out := buf.String()
	assert.Contains(t, out, ui.ColorGreen+"-s, --save")
	assert.Contains(t, out, "Save the profile")
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestErrorLine(t *testing.T) {
	line := errorLine(errors.New("boom"))
	assert.True(t, strings.HasPrefix(line, ui.ColorRed))
	assert.True(t, strings.HasSuffix(line, "boom"))
}

func TestReadURLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stores.txt")
	require.NoError(t, os.WriteFile(path, []byte("# stores\nallbirds.com\n\n  gymshark.com  \n"), 0o644))

	urls, err := readURLFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"allbirds.com", "gymshark.com"}, urls)

	_, err = readURLFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestPrintProfile(t *testing.T) {
	theme := "Dawn"
	p := &models.StoreProfile{
		URL:      "https://acme.test",
		Name:     "Acme",
		Theme:    &theme,
		Products: []models.Product{{Title: "A"}, {Title: "B"}, {Title: "C"}, {Title: "D"}},
		Contact:  models.ContactInfo{Emails: []string{"hi@acme.test"}},
		Competitors: []models.Competitor{
			{Domain: "bombas.com"},
		},
		Recommendations: []string{"Add FAQs"},
	}

	var buf bytes.Buffer
	printProfile(&buf, p)
	out := buf.String()
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "4 (A, B, C, ...)")
	assert.Contains(t, out, "hi@acme.test")
	assert.Contains(t, out, "bombas.com")
	assert.Contains(t, out, "Add FAQs")
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"analyze", "bulk", "compare", "check", "competitors", "brands", "serve"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}
