package repository

import (
	"context"

	"lexdraft-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RenderingRepository handles database operations for the rendering cache
type RenderingRepository struct {
	db *pgxpool.Pool
}

// NewRenderingRepository creates a new rendering repository
func NewRenderingRepository(db *pgxpool.Pool) *RenderingRepository {
	return &RenderingRepository{db: db}
}

const renderingColumns = `r.id, r.document_version_id, r.format, r.rendered_text, r.created_at, r.updated_at`

const ownedRenderingJoin = `
	FROM document_renderings r
	JOIN document_versions v ON v.id = r.document_version_id
	JOIN legal_documents d ON d.id = v.document_id
	JOIN cases c ON c.id = d.case_id`

// Upsert stores the rendering for (version, format), overwriting any previous text
func (r *RenderingRepository) Upsert(ctx context.Context, rendering *models.Rendering) error {
	query := `
		INSERT INTO document_renderings (document_version_id, format, rendered_text)
		VALUES ($1, $2, $3)
		ON CONFLICT (document_version_id, format)
		DO UPDATE SET rendered_text = EXCLUDED.rendered_text, updated_at = NOW()
		RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query, rendering.VersionID, rendering.Format, rendering.RenderedText).
		Scan(&rendering.ID, &rendering.CreatedAt, &rendering.UpdatedAt)
}

// GetByVersionAndFormat retrieves a cached rendering visible to the user
func (r *RenderingRepository) GetByVersionAndFormat(ctx context.Context, versionID uuid.UUID, format models.RenderFormat, userID uuid.UUID) (*models.Rendering, error) {
	query := `SELECT ` + renderingColumns + ownedRenderingJoin + `
		WHERE r.document_version_id = $1 AND r.format = $2 AND c.user_id = $3`

	rendering := &models.Rendering{}
	err := r.db.QueryRow(ctx, query, versionID, format, userID).Scan(
		&rendering.ID,
		&rendering.VersionID,
		&rendering.Format,
		&rendering.RenderedText,
		&rendering.CreatedAt,
		&rendering.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return rendering, nil
}

// GetByID retrieves a rendering visible to the user
func (r *RenderingRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Rendering, error) {
	query := `SELECT ` + renderingColumns + ownedRenderingJoin + `
		WHERE r.id = $1 AND c.user_id = $2`

	rendering := &models.Rendering{}
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&rendering.ID,
		&rendering.VersionID,
		&rendering.Format,
		&rendering.RenderedText,
		&rendering.CreatedAt,
		&rendering.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return rendering, nil
}

// ListByVersion retrieves all cached renderings of a version
func (r *RenderingRepository) ListByVersion(ctx context.Context, versionID, userID uuid.UUID) ([]*models.Rendering, error) {
	query := `SELECT ` + renderingColumns + ownedRenderingJoin + `
		WHERE r.document_version_id = $1 AND c.user_id = $2
		ORDER BY r.format`

	rows, err := r.db.Query(ctx, query, versionID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	renderings := []*models.Rendering{}
	for rows.Next() {
		rendering := &models.Rendering{}
		if err := rows.Scan(
			&rendering.ID,
			&rendering.VersionID,
			&rendering.Format,
			&rendering.RenderedText,
			&rendering.CreatedAt,
			&rendering.UpdatedAt,
		); err != nil {
			return nil, err
		}
		renderings = append(renderings, rendering)
	}
	return renderings, rows.Err()
}

// Delete removes a cached rendering and reports whether it existed
func (r *RenderingRepository) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	query := `
		DELETE FROM document_renderings r
		USING document_versions v, legal_documents d, cases c
		WHERE r.id = $1
			AND v.id = r.document_version_id
			AND d.id = v.document_id
			AND c.id = d.case_id
			AND c.user_id = $2`

	tag, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
