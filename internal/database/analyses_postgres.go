package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/giannis84/ad-intelligence/internal/models"
	"github.com/lib/pq"
)

const analysisColumns = `id, creative_id, account_id, emotion, copy_tone, primary_color,
		visual_elements, performance_driver, recommendations, created_at`

func (r *PostgresRepository) ListAnalysesFromDB(ctx context.Context, accountID string) ([]*models.Analysis, error) {
	query := `
		SELECT ` + analysisColumns + `
		FROM analyses
		WHERE account_id = $1
		ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	analyses := []*models.Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating analyses: %w", err)
	}

	return analyses, nil
}

func (r *PostgresRepository) GetAnalysisFromDB(ctx context.Context, accountID, creativeID string) (*models.Analysis, error) {
	query := `
		SELECT ` + analysisColumns + `
		FROM analyses
		WHERE account_id = $1 AND creative_id = $2`

	a, err := scanAnalysis(r.db.QueryRowContext(ctx, query, accountID, creativeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *PostgresRepository) SaveAnalysisInDB(ctx context.Context, analysis *models.Analysis) error {
	const query = `
		INSERT INTO analyses (id, creative_id, account_id, emotion, copy_tone, primary_color,
			visual_elements, performance_driver, recommendations, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (creative_id) DO UPDATE SET
			emotion            = EXCLUDED.emotion,
			copy_tone          = EXCLUDED.copy_tone,
			primary_color      = EXCLUDED.primary_color,
			visual_elements    = EXCLUDED.visual_elements,
			performance_driver = EXCLUDED.performance_driver,
			recommendations    = EXCLUDED.recommendations,
			created_at         = EXCLUDED.created_at
		RETURNING id`

	visual := analysis.VisualElements
	if visual == nil {
		visual = []string{}
	}
	recs := analysis.Recommendations
	if recs == nil {
		recs = []string{}
	}

	err := r.db.QueryRowContext(ctx, query,
		analysis.ID, analysis.CreativeID, analysis.AccountID,
		nullString(analysis.Emotion), nullString(analysis.CopyTone), nullString(analysis.PrimaryColor),
		pq.Array(visual), nullString(analysis.PerformanceDriver), pq.Array(recs),
		analysis.CreatedAt,
	).Scan(&analysis.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("saving analysis: %w", err)
	}
	return nil
}

func scanAnalysis(row rowScanner) (*models.Analysis, error) {
	var a models.Analysis
	var emotion, tone, color, driver sql.NullString

	err := row.Scan(
		&a.ID, &a.CreativeID, &a.AccountID, &emotion, &tone, &color,
		pq.Array(&a.VisualElements), &driver, pq.Array(&a.Recommendations),
		&a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning analysis row: %w", err)
	}

	a.Emotion = emotion.String
	a.CopyTone = tone.String
	a.PrimaryColor = color.String
	a.PerformanceDriver = driver.String
	return &a, nil
}
