package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/giannis84/ad-intelligence/internal/models"
)

const creativeColumns = `id, account_id, source_type, platform, external_id,
		brand_name, ad_copy, cta, image_url, metrics, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) ListCreativesFromDB(ctx context.Context, accountID string) ([]*models.Creative, error) {
	query := `
		SELECT ` + creativeColumns + `
		FROM creatives
		WHERE account_id = $1
		ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("querying creatives: %w", err)
	}
	defer rows.Close()

	creatives := []*models.Creative{}
	for rows.Next() {
		c, err := scanCreative(rows)
		if err != nil {
			return nil, err
		}
		creatives = append(creatives, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating creatives: %w", err)
	}

	return creatives, nil
}

func (r *PostgresRepository) GetCreativeFromDB(ctx context.Context, accountID, creativeID string) (*models.Creative, error) {
	query := `
		SELECT ` + creativeColumns + `
		FROM creatives
		WHERE account_id = $1 AND id = $2`

	c, err := scanCreative(r.db.QueryRowContext(ctx, query, accountID, creativeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepository) AddCreativeInDB(ctx context.Context, creative *models.Creative) error {
	metricsJSON, err := json.Marshal(creative.Metrics)
	if err != nil {
		return fmt.Errorf("marshalling metrics: %w", err)
	}

	const query = `
		INSERT INTO creatives (id, account_id, source_type, platform, external_id,
			brand_name, ad_copy, cta, image_url, metrics, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = r.db.ExecContext(ctx, query,
		creative.ID, creative.AccountID, string(creative.SourceType), string(creative.Platform),
		nullString(creative.ExternalID), nullString(creative.BrandName), nullString(creative.AdCopy),
		nullString(creative.CTA), nullString(creative.ImageURL), metricsJSON,
		creative.CreatedAt, creative.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("inserting creative: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpsertImportedCreativeInDB(ctx context.Context, creative *models.Creative) error {
	if creative.ExternalID == "" {
		return fmt.Errorf("upserting creative: external id is required")
	}
	metricsJSON, err := json.Marshal(creative.Metrics)
	if err != nil {
		return fmt.Errorf("marshalling metrics: %w", err)
	}

	// source_type is deliberately absent from the update list.
	const query = `
		INSERT INTO creatives (id, account_id, source_type, platform, external_id,
			brand_name, ad_copy, cta, image_url, metrics, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (account_id, platform, external_id) WHERE external_id IS NOT NULL
		DO UPDATE SET
			brand_name = EXCLUDED.brand_name,
			ad_copy    = EXCLUDED.ad_copy,
			cta        = EXCLUDED.cta,
			image_url  = EXCLUDED.image_url,
			metrics    = EXCLUDED.metrics,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query,
		creative.ID, creative.AccountID, string(creative.SourceType), string(creative.Platform),
		creative.ExternalID, nullString(creative.BrandName), nullString(creative.AdCopy),
		nullString(creative.CTA), nullString(creative.ImageURL), metricsJSON,
		creative.CreatedAt, creative.UpdatedAt,
	).Scan(&creative.ID, &creative.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting creative: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteCreativeFromDB(ctx context.Context, accountID, creativeID string) error {
	const query = `DELETE FROM creatives WHERE account_id = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, accountID, creativeID)
	if err != nil {
		return fmt.Errorf("deleting creative: %w", err)
	}
	return checkAffected(result)
}

// scanCreative scans a single creatives row.
func scanCreative(row rowScanner) (*models.Creative, error) {
	var c models.Creative
	var externalID, brandName, adCopy, cta, imageURL sql.NullString
	var rawMetrics []byte

	err := row.Scan(
		&c.ID, &c.AccountID, &c.SourceType, &c.Platform, &externalID,
		&brandName, &adCopy, &cta, &imageURL, &rawMetrics,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning creative row: %w", err)
	}

	c.ExternalID = externalID.String
	c.BrandName = brandName.String
	c.AdCopy = adCopy.String
	c.CTA = cta.String
	c.ImageURL = imageURL.String

	if len(rawMetrics) > 0 {
		if err := json.Unmarshal(rawMetrics, &c.Metrics); err != nil {
			return nil, fmt.Errorf("unmarshalling creative metrics: %w", err)
		}
	}
	return &c, nil
}
