package output

import (
	"os"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"

	"github.com/law-makers/storelens/pkg/models"
)

// RenderMarkdown converts the HTML report to GitHub flavored Markdown.
func RenderMarkdown(p *models.StoreProfile) (string, error) {
	report, err := RenderHTML(p)
	if err != nil {
		return "", err
	}
	converter := md.NewConverter(p.URL, true, nil)
	converter.Use(plugin.GitHubFlavored())
	return converter.ConvertString(report)
}

// SaveMarkdown writes the Markdown report to filepath.
func SaveMarkdown(p *models.StoreProfile, filepath string) error {
	mdStr, err := RenderMarkdown(p)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, []byte(mdStr), 0644)
}
