package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/storelens/internal/apperr"
	urlutil "github.com/law-makers/storelens/internal/utils/url"
	"github.com/law-makers/storelens/pkg/models"
)

// BrandSummary is the list view of a stored profile.
type BrandSummary struct {
	ID            int64     `json:"id"`
	URL           string    `json:"website_url"`
	Name          string    `json:"brand_name"`
	Theme         *string   `json:"theme,omitempty"`
	Apps          []string  `json:"apps"`
	Products      int       `json:"total_products"`
	PagesAnalyzed int       `json:"pages_analyzed"`
	Score         float64   `json:"completeness"`
	AnalyzedAt    time.Time `json:"analyzed_at"`
}

func storageErr(op string, err error) error {
	return apperr.New(apperr.CodeStorage, op, fmt.Errorf("%w: %w", apperr.ErrStorageFailure, err))
}

func notFound(what string) error {
	return apperr.New(apperr.CodeNotFound, what+" not found", apperr.ErrNotFound)
}

// key normalizes a store URL the way profiles are keyed, leaving unparsable
// input untouched so lookups simply miss.
func key(rawURL string) string {
	if u, err := urlutil.NormalizeStoreURL(rawURL); err == nil {
		return u
	}
	return rawURL
}

// Save writes p, replacing every row previously stored for the same URL in a
// single transaction. The brand keeps its id across saves. p.ID is set.
func (s *Store) Save(ctx context.Context, p *models.StoreProfile) (int64, error) {
	p.URL = key(p.URL)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storageErr("begin", err)
	}
	defer tx.Rollback()

	id, err := upsertBrand(ctx, tx, p)
	if err != nil {
		return 0, storageErr("save brand", err)
	}

	for _, table := range childTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE brand_id = ?", id); err != nil {
			return 0, storageErr("clear "+table, err)
		}
	}
	if err := insertChildren(ctx, tx, id, p); err != nil {
		return 0, storageErr("save sections", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, storageErr("commit", err)
	}
	p.ID = id

	log.Debug().Int64("id", id).Str("url", p.URL).Msg("Profile saved")
	return id, nil
}

var childTables = []string{
	"products", "hero_products", "policies", "faqs",
	"social_handles", "important_links", "contact_details", "competitors",
}

func upsertBrand(ctx context.Context, tx *sql.Tx, p *models.StoreProfile) (int64, error) {
	apps, err := json.Marshal(nonNil(p.Apps))
	if err != nil {
		return 0, fmt.Errorf("encode apps: %w", err)
	}
	completeness, err := json.Marshal(p.Completeness)
	if err != nil {
		return 0, fmt.Errorf("encode completeness: %w", err)
	}
	recs, err := json.Marshal(nonNil(p.Recommendations))
	if err != nil {
		return 0, fmt.Errorf("encode recommendations: %w", err)
	}
	analyzedAt := p.AnalyzedAt
	if analyzedAt.IsZero() {
		analyzedAt = time.Now()
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO brands (website_url, brand_name, favicon_url, description, about_us, brand_story,
			theme, apps, completeness, recommendations, pages_analyzed, duration_ns, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(website_url) DO UPDATE SET
			brand_name = excluded.brand_name,
			favicon_url = excluded.favicon_url,
			description = excluded.description,
			about_us = excluded.about_us,
			brand_story = excluded.brand_story,
			theme = excluded.theme,
			apps = excluded.apps,
			completeness = excluded.completeness,
			recommendations = excluded.recommendations,
			pages_analyzed = excluded.pages_analyzed,
			duration_ns = excluded.duration_ns,
			analyzed_at = excluded.analyzed_at
		RETURNING id`,
		p.URL, p.Name, p.FaviconURL, p.Description, p.About, p.Story,
		nullString(p.Theme), string(apps), string(completeness), string(recs),
		p.PagesAnalyzed, int64(p.Duration), analyzedAt.UTC().Format(timeLayout),
	).Scan(&id)
	return id, err
}

// productJSON encodes the list columns of a product row.
func productJSON(pr models.Product) (tags, images, variants []byte, err error) {
	if tags, err = json.Marshal(nonNil(pr.Tags)); err != nil {
		return nil, nil, nil, fmt.Errorf("encode tags: %w", err)
	}
	if images, err = json.Marshal(nonNil(pr.Images)); err != nil {
		return nil, nil, nil, fmt.Errorf("encode images: %w", err)
	}
	if variants, err = json.Marshal(nonNil(pr.Variants)); err != nil {
		return nil, nil, nil, fmt.Errorf("encode variants: %w", err)
	}
	return tags, images, variants, nil
}

func insertChildren(ctx context.Context, tx *sql.Tx, id int64, p *models.StoreProfile) error {
	for i, pr := range p.Products {
		tags, images, variants, err := productJSON(pr)
		if err != nil {
			return fmt.Errorf("product %q: %w", pr.Handle, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO products (brand_id, position, shopify_id, title, handle, vendor, product_type,
				price, compare_at_price, available, description, tags, images, variants, product_url,
				created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, pr.ID, pr.Title, pr.Handle, pr.Vendor, pr.ProductType,
			nullFloat(pr.Price), nullFloat(pr.CompareAtPrice), pr.Available, pr.Description,
			string(tags), string(images), string(variants), pr.URL, pr.CreatedAt, pr.UpdatedAt,
		); err != nil {
			return fmt.Errorf("product %q: %w", pr.Handle, err)
		}
	}

	for i, h := range p.HeroProducts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO hero_products (brand_id, position, title, price, image_url, product_url, description, provenance)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, h.Title, h.Price, h.ImageURL, h.ProductURL, h.Description, provenance(h.Provenance),
		); err != nil {
			return fmt.Errorf("hero product: %w", err)
		}
	}

	for _, pol := range p.Policies {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO policies (brand_id, policy_type, title, content, url) VALUES (?, ?, ?, ?, ?)`,
			id, string(pol.Type), pol.Title, pol.Content, pol.URL,
		); err != nil {
			return fmt.Errorf("policy %s: %w", pol.Type, err)
		}
	}

	for i, f := range p.FAQs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO faqs (brand_id, position, question, answer, category, provenance) VALUES (?, ?, ?, ?, ?, ?)`,
			id, i, f.Question, f.Answer, nullString(f.Category), provenance(f.Provenance),
		); err != nil {
			return fmt.Errorf("faq: %w", err)
		}
	}

	for i, sh := range p.SocialHandles {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO social_handles (brand_id, position, platform, username, url) VALUES (?, ?, ?, ?, ?)`,
			id, i, string(sh.Platform), nullString(sh.Username), sh.URL,
		); err != nil {
			return fmt.Errorf("social handle: %w", err)
		}
	}

	for _, l := range p.ImportantLinks {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO important_links (brand_id, link_type, title, url) VALUES (?, ?, ?, ?)`,
			id, string(l.Category), l.Title, l.URL,
		); err != nil {
			return fmt.Errorf("link %s: %w", l.Category, err)
		}
	}

	contacts := [][3]string{}
	for _, e := range p.Contact.Emails {
		contacts = append(contacts, [3]string{"email", e, ""})
	}
	for _, ph := range p.Contact.Phones {
		contacts = append(contacts, [3]string{"phone", ph, ""})
	}
	for _, a := range p.Contact.Addresses {
		contacts = append(contacts, [3]string{"address", a, ""})
	}
	if p.Contact.ContactPageURL != "" {
		contacts = append(contacts, [3]string{"page", p.Contact.ContactPageURL, "Contact page"})
	}
	for _, c := range contacts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO contact_details (brand_id, contact_type, value, label) VALUES (?, ?, ?, ?)`,
			id, c[0], c[1], c[2],
		); err != nil {
			return fmt.Errorf("contact %s: %w", c[0], err)
		}
	}

	for i, c := range p.Competitors {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO competitors (brand_id, position, url, domain, title, description, category,
				confidence, source, strength, market_position, provenance)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, c.URL, c.Domain, c.Title, c.Description, c.Category,
			c.Confidence, c.Source, c.Strength, c.MarketPosition, provenance(c.Provenance),
		); err != nil {
			return fmt.Errorf("competitor %s: %w", c.Domain, err)
		}
	}
	return nil
}

// Get loads the full profile stored for a store URL.
func (s *Store) Get(ctx context.Context, storeURL string) (*models.StoreProfile, error) {
	return s.load(ctx, "website_url = ?", key(storeURL))
}

// GetByID loads the full profile with the given id.
func (s *Store) GetByID(ctx context.Context, id int64) (*models.StoreProfile, error) {
	return s.load(ctx, "id = ?", id)
}

const brandColumns = `id, website_url, brand_name, favicon_url, description, about_us, brand_story,
	theme, apps, completeness, recommendations, pages_analyzed, duration_ns, analyzed_at`

func (s *Store) load(ctx context.Context, where string, arg any) (*models.StoreProfile, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+brandColumns+" FROM brands WHERE "+where, arg)
	p, err := scanBrand(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("brand")
	}
	if err != nil {
		return nil, storageErr("load brand", err)
	}
	if err := s.loadChildren(ctx, p); err != nil {
		return nil, storageErr("load sections", err)
	}
	return p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBrand(row scanner) (*models.StoreProfile, error) {
	var (
		p                                models.StoreProfile
		theme                            sql.NullString
		apps, completeness, recs, atText string
		durationNS                       int64
	)
	if err := row.Scan(&p.ID, &p.URL, &p.Name, &p.FaviconURL, &p.Description, &p.About, &p.Story,
		&theme, &apps, &completeness, &recs, &p.PagesAnalyzed, &durationNS, &atText); err != nil {
		return nil, err
	}
	if theme.Valid {
		p.Theme = &theme.String
	}
	if err := json.Unmarshal([]byte(apps), &p.Apps); err != nil {
		return nil, fmt.Errorf("apps: %w", err)
	}
	if err := json.Unmarshal([]byte(completeness), &p.Completeness); err != nil {
		return nil, fmt.Errorf("completeness: %w", err)
	}
	if err := json.Unmarshal([]byte(recs), &p.Recommendations); err != nil {
		return nil, fmt.Errorf("recommendations: %w", err)
	}
	p.Duration = time.Duration(durationNS)
	at, err := time.Parse(timeLayout, atText)
	if err != nil {
		return nil, fmt.Errorf("analyzed_at: %w", err)
	}
	p.AnalyzedAt = at
	return &p, nil
}

func (s *Store) loadChildren(ctx context.Context, p *models.StoreProfile) error {
	p.Products = []models.Product{}
	err := s.each(ctx, `SELECT shopify_id, title, handle, vendor, product_type, price, compare_at_price,
			available, description, tags, images, variants, product_url, created_at, updated_at
		FROM products WHERE brand_id = ? ORDER BY position`, p.ID, func(rows *sql.Rows) error {
		var (
			pr                     models.Product
			price, compare         sql.NullFloat64
			tags, images, variants string
		)
		if err := rows.Scan(&pr.ID, &pr.Title, &pr.Handle, &pr.Vendor, &pr.ProductType, &price, &compare,
			&pr.Available, &pr.Description, &tags, &images, &variants, &pr.URL, &pr.CreatedAt, &pr.UpdatedAt); err != nil {
			return err
		}
		pr.Price = floatPtr(price)
		pr.CompareAtPrice = floatPtr(compare)
		for _, f := range []struct {
			raw string
			dst any
		}{{tags, &pr.Tags}, {images, &pr.Images}, {variants, &pr.Variants}} {
			if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
				return fmt.Errorf("product %q: %w", pr.Handle, err)
			}
		}
		p.Products = append(p.Products, pr)
		return nil
	})
	if err != nil {
		return err
	}

	p.HeroProducts = []models.FeaturedItem{}
	err = s.each(ctx, `SELECT title, price, image_url, product_url, description, provenance
		FROM hero_products WHERE brand_id = ? ORDER BY position`, p.ID, func(rows *sql.Rows) error {
		var h models.FeaturedItem
		if err := rows.Scan(&h.Title, &h.Price, &h.ImageURL, &h.ProductURL, &h.Description, &h.Provenance); err != nil {
			return err
		}
		p.HeroProducts = append(p.HeroProducts, h)
		return nil
	})
	if err != nil {
		return err
	}

	p.Policies = []models.Policy{}
	err = s.each(ctx, `SELECT policy_type, title, content, url FROM policies WHERE brand_id = ? ORDER BY rowid`,
		p.ID, func(rows *sql.Rows) error {
			var pol models.Policy
			if err := rows.Scan(&pol.Type, &pol.Title, &pol.Content, &pol.URL); err != nil {
				return err
			}
			p.Policies = append(p.Policies, pol)
			return nil
		})
	if err != nil {
		return err
	}

	p.FAQs = []models.QAPair{}
	err = s.each(ctx, `SELECT question, answer, category, provenance FROM faqs WHERE brand_id = ? ORDER BY position`,
		p.ID, func(rows *sql.Rows) error {
			var (
				f   models.QAPair
				cat sql.NullString
			)
			if err := rows.Scan(&f.Question, &f.Answer, &cat, &f.Provenance); err != nil {
				return err
			}
			f.Category = stringPtr(cat)
			p.FAQs = append(p.FAQs, f)
			return nil
		})
	if err != nil {
		return err
	}

	p.SocialHandles = []models.SocialHandle{}
	err = s.each(ctx, `SELECT platform, username, url FROM social_handles WHERE brand_id = ? ORDER BY position`,
		p.ID, func(rows *sql.Rows) error {
			var (
				sh   models.SocialHandle
				user sql.NullString
			)
			if err := rows.Scan(&sh.Platform, &user, &sh.URL); err != nil {
				return err
			}
			sh.Username = stringPtr(user)
			p.SocialHandles = append(p.SocialHandles, sh)
			return nil
		})
	if err != nil {
		return err
	}

	p.ImportantLinks = []models.NavLink{}
	err = s.each(ctx, `SELECT link_type, title, url FROM important_links WHERE brand_id = ? ORDER BY rowid`,
		p.ID, func(rows *sql.Rows) error {
			var l models.NavLink
			if err := rows.Scan(&l.Category, &l.Title, &l.URL); err != nil {
				return err
			}
			p.ImportantLinks = append(p.ImportantLinks, l)
			return nil
		})
	if err != nil {
		return err
	}

	p.Contact = models.ContactInfo{Emails: []string{}, Phones: []string{}, Addresses: []string{}}
	err = s.each(ctx, `SELECT contact_type, value FROM contact_details WHERE brand_id = ? ORDER BY rowid`,
		p.ID, func(rows *sql.Rows) error {
			var kind, value string
			if err := rows.Scan(&kind, &value); err != nil {
				return err
			}
			switch kind {
			case "email":
				p.Contact.Emails = append(p.Contact.Emails, value)
			case "phone":
				p.Contact.Phones = append(p.Contact.Phones, value)
			case "address":
				p.Contact.Addresses = append(p.Contact.Addresses, value)
			case "page":
				p.Contact.ContactPageURL = value
			}
			return nil
		})
	if err != nil {
		return err
	}

	p.Competitors = []models.Competitor{}
	return s.each(ctx, `SELECT url, domain, title, description, category, confidence, source, strength,
			market_position, provenance
		FROM competitors WHERE brand_id = ? ORDER BY position`, p.ID, func(rows *sql.Rows) error {
		var c models.Competitor
		if err := rows.Scan(&c.URL, &c.Domain, &c.Title, &c.Description, &c.Category, &c.Confidence,
			&c.Source, &c.Strength, &c.MarketPosition, &c.Provenance); err != nil {
			return err
		}
		p.Competitors = append(p.Competitors, c)
		return nil
	})
}

func (s *Store) each(ctx context.Context, query string, id int64, fn func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// List returns summaries of stored brands, most recently analyzed first.
func (s *Store) List(ctx context.Context, skip, limit int) ([]BrandSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.website_url, b.brand_name, b.theme, b.apps, b.completeness, b.pages_analyzed,
			b.analyzed_at, (SELECT COUNT(*) FROM products p WHERE p.brand_id = b.id)
		FROM brands b
		ORDER BY b.analyzed_at DESC, b.id DESC
		LIMIT ? OFFSET ?`, limit, skip)
	if err != nil {
		return nil, storageErr("list brands", err)
	}
	defer rows.Close()

	out := []BrandSummary{}
	for rows.Next() {
		var (
			b                        BrandSummary
			theme                    sql.NullString
			apps, completeness, atTx string
		)
		if err := rows.Scan(&b.ID, &b.URL, &b.Name, &theme, &apps, &completeness, &b.PagesAnalyzed, &atTx, &b.Products); err != nil {
			return nil, storageErr("list brands", err)
		}
		b.Theme = stringPtr(theme)
		if err := json.Unmarshal([]byte(apps), &b.Apps); err != nil {
			return nil, storageErr("list brands", err)
		}
		var c models.Completeness
		if err := json.Unmarshal([]byte(completeness), &c); err == nil {
			b.Score = c.Score
		}
		b.AnalyzedAt, _ = time.Parse(timeLayout, atTx)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list brands", err)
	}
	return out, nil
}

// Delete removes the brand stored for a URL and all of its rows.
func (s *Store) Delete(ctx context.Context, storeURL string) error {
	return s.delete(ctx, "website_url = ?", key(storeURL))
}

// DeleteByID removes the brand with the given id and all of its rows.
func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	return s.delete(ctx, "id = ?", id)
}

func (s *Store) delete(ctx context.Context, where string, arg any) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM brands WHERE "+where, arg)
	if err != nil {
		return storageErr("delete brand", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("brand")
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}

// provenance defaults an unset tag to extracted so the CHECK constraint holds.
func provenance(p models.Provenance) string {
	if p == "" {
		return string(models.ProvenanceExtracted)
	}
	return string(p)
}
