package repository

import (
	"context"
	"fmt"

	"lexdraft-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CaseRepository handles database operations for cases
type CaseRepository struct {
	db *pgxpool.Pool
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *pgxpool.Pool) *CaseRepository {
	return &CaseRepository{db: db}
}

const caseColumns = `id, user_id, legal_area, title, description, process_number, created_at, updated_at`

// Create creates a new case
func (r *CaseRepository) Create(ctx context.Context, c *models.Case) error {
	query := `
		INSERT INTO cases (user_id, legal_area, title, description, process_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		c.UserID,
		c.LegalArea,
		c.Title,
		c.Description,
		c.ProcessNumber,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// GetByID retrieves a case owned by the user
func (r *CaseRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id = $1 AND user_id = $2`

	c := &models.Case{}
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&c.ID,
		&c.UserID,
		&c.LegalArea,
		&c.Title,
		&c.Description,
		&c.ProcessNumber,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// ListByUserID retrieves the user's cases, optionally filtered by legal area
func (r *CaseRepository) ListByUserID(ctx context.Context, userID uuid.UUID, legalArea *string, limit, offset int) ([]*models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE user_id = $1`
	args := []interface{}{userID}
	argIndex := 2

	if legalArea != nil {
		query += fmt.Sprintf(" AND legal_area = $%d", argIndex)
		args = append(args, *legalArea)
		argIndex++
	}

	query += " ORDER BY created_at DESC"
	query, args = pagination(query, args, argIndex, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []*models.Case
	for rows.Next() {
		c := &models.Case{}
		if err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.LegalArea,
			&c.Title,
			&c.Description,
			&c.ProcessNumber,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// Update updates the descriptive fields of a case
func (r *CaseRepository) Update(ctx context.Context, c *models.Case) error {
	query := `
		UPDATE cases SET
			title = $3,
			description = $4,
			process_number = $5,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query, c.ID, c.UserID, c.Title, c.Description, c.ProcessNumber).Scan(&c.UpdatedAt)
	return notFound(err)
}

// Delete removes a case that has no documents. Documents own immutable
// versions, so a case with documents is never deleted.
func (r *CaseRepository) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	query := `
		DELETE FROM cases
		WHERE id = $1 AND user_id = $2
			AND NOT EXISTS (SELECT 1 FROM legal_documents WHERE case_id = $1)`

	tag, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CountDocuments returns how many documents a case holds
func (r *CaseRepository) CountDocuments(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM legal_documents WHERE case_id = $1`, id).Scan(&n)
	return n, err
}
