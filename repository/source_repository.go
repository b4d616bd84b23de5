package repository

import (
	"context"
	"errors"
	"fmt"

	"lexdraft-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SourceRepository handles database operations for legal sources
type SourceRepository struct {
	db *pgxpool.Pool
}

// NewSourceRepository creates a new source repository
func NewSourceRepository(db *pgxpool.Pool) *SourceRepository {
	return &SourceRepository{db: db}
}

const sourceColumns = `s.id, s.source_type, s.reference, s.excerpt, s.url, s.created_at`

func scanSources(rows pgx.Rows) ([]*models.LegalSource, error) {
	sources := []*models.LegalSource{}
	for rows.Next() {
		s := &models.LegalSource{}
		if err := rows.Scan(&s.ID, &s.Type, &s.Reference, &s.Excerpt, &s.URL, &s.CreatedAt); err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// Create inserts a source unless an identical (type, reference, excerpt)
// already exists, in which case the existing row is loaded into s.
// The boolean reports whether a new row was created.
func (r *SourceRepository) Create(ctx context.Context, s *models.LegalSource) (bool, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO legal_sources (source_type, reference, excerpt, url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source_type, reference, md5(excerpt)) DO NOTHING
		RETURNING id, created_at`,
		s.Type, s.Reference, s.Excerpt, s.URL,
	).Scan(&s.ID, &s.CreatedAt)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	err = r.db.QueryRow(ctx, `
		SELECT `+sourceColumns+`
		FROM legal_sources s
		WHERE s.source_type = $1 AND s.reference = $2 AND s.excerpt = $3`,
		s.Type, s.Reference, s.Excerpt,
	).Scan(&s.ID, &s.Type, &s.Reference, &s.Excerpt, &s.URL, &s.CreatedAt)
	return false, notFound(err)
}

// GetByID retrieves a source by ID
func (r *SourceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.LegalSource, error) {
	s := &models.LegalSource{}
	err := r.db.QueryRow(ctx, `SELECT `+sourceColumns+` FROM legal_sources s WHERE s.id = $1`, id).
		Scan(&s.ID, &s.Type, &s.Reference, &s.Excerpt, &s.URL, &s.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// GetByReference retrieves the most authoritative source with an exact
// reference, optionally restricted to one type.
func (r *SourceRepository) GetByReference(ctx context.Context, sourceType *models.SourceType, reference string) (*models.LegalSource, error) {
	query := `SELECT ` + sourceColumns + ` FROM legal_sources s WHERE s.reference = $1`
	args := []interface{}{reference}
	if sourceType != nil {
		query += ` AND s.source_type = $2`
		args = append(args, *sourceType)
	}
	query += ` ORDER BY ` + hierarchyRankSQL + `, s.created_at LIMIT 1`

	s := &models.LegalSource{}
	err := r.db.QueryRow(ctx, query, args...).
		Scan(&s.ID, &s.Type, &s.Reference, &s.Excerpt, &s.URL, &s.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// Search matches the query against reference and excerpt, most authoritative first
func (r *SourceRepository) Search(ctx context.Context, query string, sourceType *models.SourceType, limit int) ([]*models.LegalSource, error) {
	sql := `
		SELECT ` + sourceColumns + `
		FROM legal_sources s
		WHERE (s.reference ILIKE '%' || $1 || '%' OR s.excerpt ILIKE '%' || $1 || '%')`
	args := []interface{}{query}
	argIndex := 2

	if sourceType != nil {
		sql += fmt.Sprintf(" AND s.source_type = $%d", argIndex)
		args = append(args, *sourceType)
		argIndex++
	}

	sql += ` ORDER BY ` + hierarchyRankSQL + `, s.reference`
	sql, args = pagination(sql, args, argIndex, limit, 0)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSources(rows)
}

// CountByType returns the number of sources per type
func (r *SourceRepository) CountByType(ctx context.Context) (map[models.SourceType]int, error) {
	rows, err := r.db.Query(ctx, `SELECT source_type, COUNT(*) FROM legal_sources GROUP BY source_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.SourceType]int)
	for rows.Next() {
		var t models.SourceType
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		counts[t] = n
	}
	return counts, rows.Err()
}
