package output

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/law-makers/storelens/pkg/models"
)

// Save picks the format from the file extension: .json, .csv, .md or .html.
func Save(p *models.StoreProfile, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return SaveJSON(p, path)
	case ".csv":
		return SaveCSV(p, path)
	case ".md", ".markdown":
		return SaveMarkdown(p, path)
	case ".html", ".htm":
		return SaveHTML(p, path)
	default:
		return fmt.Errorf("unsupported output format %q (use .json, .csv, .md or .html)", filepath.Ext(path))
	}
}
