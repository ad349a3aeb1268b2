package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/storelens/internal/apperr"
	urlutil "github.com/law-makers/storelens/internal/utils/url"
	"github.com/law-makers/storelens/pkg/models"
)

// feedProduct mirrors one entry of a Shopify products.json feed. Fields whose
// type varies between stores use the flex types below.
type feedProduct struct {
	ID          flexString        `json:"id"`
	Title       string            `json:"title"`
	Handle      string            `json:"handle"`
	BodyHTML    string            `json:"body_html"`
	Vendor      string            `json:"vendor"`
	ProductType string            `json:"product_type"`
	Tags        flexStrings       `json:"tags"`
	Images      []json.RawMessage `json:"images"`
	Variants    []feedVariant     `json:"variants"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`
}

type feedVariant struct {
	ID               flexString  `json:"id"`
	Title            string      `json:"title"`
	Option1          *string     `json:"option1"`
	Option2          *string     `json:"option2"`
	Option3          *string     `json:"option3"`
	SKU              *string     `json:"sku"`
	RequiresShipping bool        `json:"requires_shipping"`
	Taxable          bool        `json:"taxable"`
	Available        bool        `json:"available"`
	Price            flexString  `json:"price"`
	CompareAtPrice   *flexString `json:"compare_at_price"`
	Grams            int         `json:"grams"`
	Position         int         `json:"position"`
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexStrings accepts a JSON array of strings or one comma separated string.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*f = out
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*f = list
	return nil
}

// Products parses a products.json feed. feed is either the feed already
// decoded into generic JSON values or its raw bytes. Entries that do not
// decode are skipped; an error is returned only when the feed itself is
// unreadable.
func (e *Extractor) Products(feed any, base string) ([]models.Product, error) {
	entries, err := feedEntries(feed)
	if err != nil {
		return nil, fmt.Errorf("%w: products feed: %v", apperr.ErrParseError, err)
	}

	products := make([]models.Product, 0, len(entries))
	for i, entry := range entries {
		fp, err := decodeFeedProduct(entry)
		if err != nil {
			log.Debug().Int("index", i).Err(err).Msg("Skipping undecodable product")
			continue
		}
		products = append(products, e.product(fp, base))
	}

	log.Debug().Int("count", len(products)).Msg("Parsed products feed")
	return products, nil
}

// feedEntries returns the items of the feed's "products" list. A feed
// without the key has no products.
func feedEntries(feed any) ([]any, error) {
	switch v := feed.(type) {
	case []byte:
		var doc struct {
			Products []json.RawMessage `json:"products"`
		}
		if err := json.Unmarshal(v, &doc); err != nil {
			return nil, err
		}
		entries := make([]any, len(doc.Products))
		for i, raw := range doc.Products {
			entries[i] = raw
		}
		return entries, nil
	case map[string]any:
		list, ok := v["products"]
		if !ok || list == nil {
			return nil, nil
		}
		entries, ok := list.([]any)
		if !ok {
			return nil, fmt.Errorf("products is %T, not a list", list)
		}
		return entries, nil
	default:
		return nil, fmt.Errorf("unexpected feed type %T", feed)
	}
}

// decodeFeedProduct maps one feed entry onto feedProduct. Decoded values go
// back through the flex unmarshalers so string and number ids both work.
func decodeFeedProduct(entry any) (feedProduct, error) {
	raw, ok := entry.(json.RawMessage)
	if !ok {
		b, err := json.Marshal(entry)
		if err != nil {
			return feedProduct{}, err
		}
		raw = b
	}
	var fp feedProduct
	err := json.Unmarshal(raw, &fp)
	return fp, err
}

func (e *Extractor) product(fp feedProduct, base string) models.Product {
	p := models.Product{
		ID:          string(fp.ID),
		Title:       fp.Title,
		Handle:      fp.Handle,
		Vendor:      fp.Vendor,
		ProductType: fp.ProductType,
		Available:   true,
		Tags:        []string(fp.Tags),
		Images:      []string{},
		Variants:    make([]models.Variant, 0, len(fp.Variants)),
		Description: e.StripMarkup(fp.BodyHTML),
		URL:         urlutil.ResolveURL(base, "/products/"+fp.Handle),
		CreatedAt:   fp.CreatedAt,
		UpdatedAt:   fp.UpdatedAt,
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}

	for _, raw := range fp.Images {
		if src := imageSource(raw); src != "" {
			p.Images = append(p.Images, urlutil.ResolveURL(base, src))
		}
	}

	if len(fp.Variants) > 0 {
		p.Available = false
	}
	for _, fv := range fp.Variants {
		v := models.Variant{
			ID:               string(fv.ID),
			Title:            fv.Title,
			Option1:          fv.Option1,
			Option2:          fv.Option2,
			Option3:          fv.Option3,
			RequiresShipping: fv.RequiresShipping,
			Taxable:          fv.Taxable,
			Price:            string(fv.Price),
			Grams:            fv.Grams,
			Available:        fv.Available,
			Position:         fv.Position,
		}
		if fv.SKU != nil {
			v.SKU = *fv.SKU
		}
		if fv.CompareAtPrice != nil && *fv.CompareAtPrice != "" {
			s := string(*fv.CompareAtPrice)
			v.CompareAtPrice = &s
		}
		if v.Available {
			p.Available = true
		}
		p.Variants = append(p.Variants, v)
	}

	if len(p.Variants) > 0 {
		first := p.Variants[0]
		p.Price = parsePrice(first.Price)
		if first.CompareAtPrice != nil {
			p.CompareAtPrice = parsePrice(*first.CompareAtPrice)
		}
	}
	return p
}

// imageSource reads an image entry that is either {"src": "..."} or a bare string.
func imageSource(raw json.RawMessage) string {
	var obj struct {
		Src string `json:"src"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Src
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func parsePrice(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// StripMarkup reduces an HTML fragment to plain, whitespace-normalized text.
func (e *Extractor) StripMarkup(fragment string) string {
	if fragment == "" {
		return ""
	}
	// Tags become spaces so adjacent blocks do not merge into one word.
	return CleanText(html.UnescapeString(e.strict.Sanitize(strings.ReplaceAll(fragment, "<", " <"))))
}
