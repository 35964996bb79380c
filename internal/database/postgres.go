package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const schema = `
	CREATE TABLE IF NOT EXISTS creatives (
		id          TEXT        PRIMARY KEY,
		account_id  TEXT        NOT NULL,
		source_type TEXT        NOT NULL CHECK (source_type IN ('own', 'competitor')),
		platform    TEXT        NOT NULL,
		external_id TEXT,
		brand_name  TEXT,
		ad_copy     TEXT,
		cta         TEXT,
		image_url   TEXT,
		metrics     JSONB       NOT NULL DEFAULT '{}',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS creatives_account_idx ON creatives (account_id, created_at DESC);
	CREATE UNIQUE INDEX IF NOT EXISTS creatives_external_idx
		ON creatives (account_id, platform, external_id) WHERE external_id IS NOT NULL;

	CREATE TABLE IF NOT EXISTS analyses (
		id                 TEXT        PRIMARY KEY,
		creative_id        TEXT        NOT NULL UNIQUE REFERENCES creatives (id) ON DELETE CASCADE,
		account_id         TEXT        NOT NULL,
		emotion            TEXT,
		copy_tone          TEXT,
		primary_color      TEXT,
		visual_elements    TEXT[]      NOT NULL DEFAULT '{}',
		performance_driver TEXT,
		recommendations    TEXT[]      NOT NULL DEFAULT '{}',
		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS analyses_account_idx ON analyses (account_id);

	CREATE TABLE IF NOT EXISTS ad_connections (
		account_id    TEXT        NOT NULL,
		platform      TEXT        NOT NULL,
		customer_id   TEXT,
		access_token  TEXT        NOT NULL,
		refresh_token TEXT,
		token_type    TEXT,
		expiry        TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (account_id, platform)
	);

	CREATE TABLE IF NOT EXISTS subscriptions (
		account_id             TEXT        PRIMARY KEY,
		stripe_customer_id     TEXT,
		stripe_subscription_id TEXT,
		status                 TEXT        NOT NULL,
		current_period_end     TIMESTAMPTZ,
		updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
`

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgresRepository backed by the given *sql.DB.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Connect opens a PostgreSQL connection pool, verifies connectivity,
// initialises the schema, and returns the ready-to-use *sql.DB.
func Connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Connection pool defaults, normally these values could be made configurable in production.
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// Ping checks database connectivity. Intended for health check endpoints.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// isUniqueViolation checks if a PostgreSQL error is a unique constraint violation (23505).
func isUniqueViolation(err error) bool {
	var pge *pq.Error
	if errors.As(err, &pge) {
		return pge.Code == "23505"
	}
	return false
}

// isForeignKeyViolation checks for a foreign key violation (23503).
func isForeignKeyViolation(err error) bool {
	var pge *pq.Error
	if errors.As(err, &pge) {
		return pge.Code == "23503"
	}
	return false
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func checkAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
