package repository

import (
	"context"
	"time"

	"lexdraft-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ActivityLogRepository handles database operations for the audit trail
type ActivityLogRepository struct {
	db *pgxpool.Pool
}

// NewActivityLogRepository creates a new activity log repository
func NewActivityLogRepository(db *pgxpool.Pool) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

const activityColumns = `l.id, l.user_id, l.action, l.entity_type, l.entity_id, l.details, l.created_at`

func scanActivity(rows pgx.Rows) ([]*models.ActivityLog, error) {
	logs := []*models.ActivityLog{}
	for rows.Next() {
		entry := &models.ActivityLog{}
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&entry.Details,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

// Create appends an entry to the audit trail
func (r *ActivityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	query := `
		INSERT INTO activity_logs (user_id, action, entity_type, entity_id, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return r.db.QueryRow(ctx, query,
		entry.UserID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// ListByEntity retrieves the history of one entity, newest first
func (r *ActivityLogRepository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]*models.ActivityLog, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activity_logs l
		WHERE l.entity_type = $1 AND l.entity_id = $2
		ORDER BY l.created_at DESC`
	query, args := pagination(query, []interface{}{entityType, entityID}, 3, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivity(rows)
}

// ListByUser retrieves a user's activity since a point in time, newest first
func (r *ActivityLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, since time.Time, limit, offset int) ([]*models.ActivityLog, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activity_logs l
		WHERE l.user_id = $1 AND l.created_at >= $2
		ORDER BY l.created_at DESC`
	query, args := pagination(query, []interface{}{userID, since}, 3, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivity(rows)
}

// ListForDocument retrieves every entry touching a document, its versions,
// their assertions and renderings, in chronological order.
func (r *ActivityLogRepository) ListForDocument(ctx context.Context, documentID uuid.UUID) ([]*models.ActivityLog, error) {
	query := `
		WITH versions AS (
			SELECT id FROM document_versions WHERE document_id = $1
		),
		entities AS (
			SELECT $1::uuid AS id
			UNION SELECT id FROM versions
			UNION SELECT id FROM legal_assertions WHERE document_version_id IN (SELECT id FROM versions)
			UNION SELECT id FROM document_renderings WHERE document_version_id IN (SELECT id FROM versions)
		)
		SELECT ` + activityColumns + `
		FROM activity_logs l
		WHERE l.entity_id IN (SELECT id FROM entities)
		ORDER BY l.created_at`

	rows, err := r.db.Query(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivity(rows)
}
