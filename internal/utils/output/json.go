package output

import (
	"encoding/json"
	"os"

	"github.com/law-makers/storelens/pkg/models"
)

// SaveJSON writes the profile as indented JSON to filepath.
func SaveJSON(p *models.StoreProfile, filepath string) error {
	content, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, content, 0644)
}
