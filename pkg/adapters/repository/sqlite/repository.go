package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	"github.com/wadjakorntonsri/gift-bundle/pkg/ports"
	_ "modernc.org/sqlite" // Local SQLite driver
)

// timeLayout is fixed width so stored timestamps order correctly as text.
const timeLayout = "2006-01-02 15:04:05.000000000-07:00"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}
	if driverName == "sqlite" {
		// A single writer avoids SQLITE_BUSY between our own transactions.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Migrate re-runs the idempotent schema setup.
func (r *SQLiteRepository) Migrate(ctx context.Context) error {
	return migrateContext(ctx, r.db)
}

func migrate(db *sql.DB) error {
	return migrateContext(context.Background(), db)
}

func migrateContext(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		kakao_id INTEGER NOT NULL UNIQUE,
		nickname TEXT NOT NULL DEFAULT '',
		profile_image_url TEXT NOT NULL DEFAULT '',
		is_deleted INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		deleted_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS bundles (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		design_type TEXT NOT NULL,
		delivery_character_type TEXT,
		link TEXT UNIQUE,
		status TEXT NOT NULL DEFAULT 'DRAFT',
		is_read INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		published_at DATETIME,
		FOREIGN KEY(owner_id) REFERENCES users(id)
	);
	CREATE INDEX IF NOT EXISTS idx_bundles_owner_created ON bundles(owner_id, created_at);

	CREATE TABLE IF NOT EXISTS gifts (
		id TEXT PRIMARY KEY,
		bundle_id TEXT NOT NULL,
		name TEXT NOT NULL,
		message TEXT,
		purchase_url TEXT,
		response_tag TEXT,
		is_responded INTEGER NOT NULL DEFAULT 0,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY(bundle_id) REFERENCES bundles(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_gifts_bundle_id ON gifts(bundle_id);

	CREATE TABLE IF NOT EXISTS gift_images (
		id TEXT PRIMARY KEY,
		gift_id TEXT NOT NULL,
		image_url TEXT NOT NULL,
		is_primary INTEGER NOT NULL DEFAULT 0,
		sort_order INTEGER NOT NULL DEFAULT 0,
		uploaded_at DATETIME NOT NULL,
		FOREIGN KEY(gift_id) REFERENCES gifts(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_gift_images_gift_id ON gift_images(gift_id);

	CREATE TABLE IF NOT EXISTS responses (
		id TEXT PRIMARY KEY,
		gift_id TEXT NOT NULL,
		bundle_id TEXT NOT NULL,
		tag TEXT NOT NULL,
		message TEXT,
		created_at DATETIME NOT NULL,
		FOREIGN KEY(gift_id) REFERENCES gifts(id),
		FOREIGN KEY(bundle_id) REFERENCES bundles(id)
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_responses_gift_id ON responses(gift_id);
	CREATE INDEX IF NOT EXISTS idx_responses_bundle_id ON responses(bundle_id);
	`
	_, err := db.ExecContext(ctx, query)
	return err
}

func ts(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullableTS(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return ts(*t)
}

func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	v := nt.Time.UTC()
	return &v
}

// expectOneRow returns notMatched when a conditional write touched nothing.
func expectOneRow(res sql.Result, notMatched error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notMatched
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Ensure interface compliance
var (
	_ ports.BundleRepository   = (*SQLiteRepository)(nil)
	_ ports.ResponseRepository = (*SQLiteRepository)(nil)
	_ ports.UserRepository     = (*SQLiteRepository)(nil)
)
