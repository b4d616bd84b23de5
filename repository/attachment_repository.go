package repository

import (
	"context"

	"lexdraft-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AttachmentRepository handles database operations for case attachments
type AttachmentRepository struct {
	db *pgxpool.Pool
}

// NewAttachmentRepository creates a new attachment repository
func NewAttachmentRepository(db *pgxpool.Pool) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Create creates a new attachment record. The ID is assigned by the caller
// because it also keys the stored file.
func (r *AttachmentRepository) Create(ctx context.Context, att *models.Attachment) error {
	if att.ID == uuid.Nil {
		att.ID = uuid.New()
	}
	query := `
		INSERT INTO document_attachments (
			id, case_id, file_name, mime_type, file_size, storage_path
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING uploaded_at`

	return r.db.QueryRow(
		ctx, query,
		att.ID,
		att.CaseID,
		att.FileName,
		att.MimeType,
		att.FileSize,
		att.StoragePath,
	).Scan(&att.UploadedAt)
}

// GetByID retrieves an attachment whose case belongs to the user
func (r *AttachmentRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Attachment, error) {
	att := &models.Attachment{}
	query := `
		SELECT a.id, a.case_id, a.file_name, a.mime_type, a.file_size, a.storage_path, a.uploaded_at
		FROM document_attachments a
		JOIN cases c ON c.id = a.case_id
		WHERE a.id = $1 AND c.user_id = $2`

	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&att.ID,
		&att.CaseID,
		&att.FileName,
		&att.MimeType,
		&att.FileSize,
		&att.StoragePath,
		&att.UploadedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return att, nil
}

// ListByCaseID retrieves all attachments of a case
func (r *AttachmentRepository) ListByCaseID(ctx context.Context, caseID, userID uuid.UUID) ([]*models.Attachment, error) {
	query := `
		SELECT a.id, a.case_id, a.file_name, a.mime_type, a.file_size, a.storage_path, a.uploaded_at
		FROM document_attachments a
		JOIN cases c ON c.id = a.case_id
		WHERE a.case_id = $1 AND c.user_id = $2
		ORDER BY a.uploaded_at DESC`

	rows, err := r.db.Query(ctx, query, caseID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attachments := []*models.Attachment{}
	for rows.Next() {
		att := &models.Attachment{}
		if err := rows.Scan(
			&att.ID,
			&att.CaseID,
			&att.FileName,
			&att.MimeType,
			&att.FileSize,
			&att.StoragePath,
			&att.UploadedAt,
		); err != nil {
			return nil, err
		}
		attachments = append(attachments, att)
	}
	return attachments, rows.Err()
}
