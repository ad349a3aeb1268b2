package output

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/law-makers/storelens/pkg/models"
)

var productColumns = []string{
	"id", "title", "handle", "vendor", "product_type", "price", "compare_at_price",
	"available", "variants", "tags", "url",
}

// SaveCSV writes one row per product to filepath.
func SaveCSV(p *models.StoreProfile, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteCSV(file, p)
}

// WriteCSV writes the product table of p to w.
func WriteCSV(w io.Writer, p *models.StoreProfile) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(productColumns); err != nil {
		return err
	}
	for _, pr := range p.Products {
		row := []string{
			pr.ID,
			pr.Title,
			pr.Handle,
			pr.Vendor,
			pr.ProductType,
			formatPrice(pr.Price),
			formatPrice(pr.CompareAtPrice),
			strconv.FormatBool(pr.Available),
			strconv.Itoa(len(pr.Variants)),
			strings.Join(pr.Tags, ";"),
			pr.URL,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatPrice(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', 2, 64)
}
