// Package store persists store profiles in SQLite. Each profile is one row in
// brands plus child rows per section; saving a profile replaces all of them.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS brands (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    website_url     TEXT NOT NULL UNIQUE,
    brand_name      TEXT NOT NULL DEFAULT '',
    favicon_url     TEXT NOT NULL DEFAULT '',
    description     TEXT NOT NULL DEFAULT '',
    about_us        TEXT NOT NULL DEFAULT '',
    brand_story     TEXT NOT NULL DEFAULT '',
    theme           TEXT,
    apps            TEXT NOT NULL DEFAULT '[]',
    completeness    TEXT NOT NULL DEFAULT '{}',
    recommendations TEXT NOT NULL DEFAULT '[]',
    pages_analyzed  INTEGER NOT NULL DEFAULT 0,
    duration_ns     INTEGER NOT NULL DEFAULT 0,
    analyzed_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_brands_analyzed_at ON brands(analyzed_at);

CREATE TABLE IF NOT EXISTS products (
    brand_id         INTEGER NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
    position         INTEGER NOT NULL,
    shopify_id       TEXT NOT NULL DEFAULT '',
    title            TEXT NOT NULL DEFAULT '',
    handle           TEXT NOT NULL DEFAULT '',
    vendor           TEXT NOT NULL DEFAULT '',
    product_type     TEXT NOT NULL DEFAULT '',
    price            REAL,
    compare_at_price REAL,
    available        INTEGER NOT NULL DEFAULT 1,
    description      TEXT NOT NULL DEFAULT '',
    tags             TEXT NOT NULL DEFAULT '[]',
    images           TEXT NOT NULL DEFAULT '[]',
    variants         TEXT NOT NULL DEFAULT '[]',
    product_url      TEXT NOT NULL DEFAULT '',
    created_at       TEXT NOT NULL DEFAULT '',
    updated_at       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_products_brand ON products(brand_id);

CREATE TABLE IF NOT EXISTS hero_products (
    brand_id    INTEGER NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
    position    INTEGER NOT NULL,
    title       TEXT NOT NULL DEFAULT '',
    price       TEXT NOT NULL DEFAULT '',
    image_url   TEXT NOT NULL DEFAULT '',
    product_url TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    provenance  TEXT NOT NULL CHECK(provenance IN ('extracted','synthetic'))
);

CREATE TABLE IF NOT EXISTS policies (
    brand_id    INTEGER NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
    policy_type TEXT NOT NULL,
    title       TEXT NOT NULL DEFAULT '',
    content     TEXT NOT NULL DEFAULT '',
    url         TEXT NOT NULL DEFAULT '',
    UNIQUE(brand_id, policy_type)
);

CREATE TABLE IF NOT EXISTS faqs (
    brand_id   INTEGER NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
    position   INTEGER NOT NULL,
    question   TEXT NOT NULL,
    answer     TEXT NOT NULL,
    category   TEXT,
    provenance TEXT NOT NULL CHECK(provenance IN ('extracted','synthetic'))
);

CREATE TABLE IF NOT EXISTS social_handles (
    brand_id INTEGER NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    platform TEXT NOT NULL,
    username TEXT,
    url      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS important_links (
    brand_id  INTEGER NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
    link_type TEXT NOT NULL,
    title     TEXT NOT NULL,
    url       TEXT NOT NULL,
    UNIQUE(brand_id, link_type)
);

CREATE TABLE IF NOT EXISTS contact_details (
    brand_id     INTEGER NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
    contact_type TEXT NOT NULL CHECK(contact_type IN ('email','phone','address','page')),
    value        TEXT NOT NULL,
    label        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS competitors (
    brand_id        INTEGER NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
    position        INTEGER NOT NULL,
    url             TEXT NOT NULL,
    domain          TEXT NOT NULL,
    title           TEXT NOT NULL DEFAULT '',
    description     TEXT NOT NULL DEFAULT '',
    category        TEXT NOT NULL DEFAULT '',
    confidence      TEXT NOT NULL DEFAULT '',
    source          TEXT NOT NULL DEFAULT '',
    strength        TEXT NOT NULL DEFAULT '',
    market_position TEXT NOT NULL DEFAULT '',
    provenance      TEXT NOT NULL CHECK(provenance IN ('extracted','synthetic'))
);
`

// timeLayout keeps analyzed_at sortable as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

// Store reads and writes profiles.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	memory := path == ":memory:"
	if !memory {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// pragmas are per connection and every connection to :memory: is a
	// separate database, so the pool holds exactly one.
	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	log.Debug().Str("path", path).Msg("Database ready")
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
