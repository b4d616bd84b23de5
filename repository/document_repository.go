package repository

import (
	"context"

	"lexdraft-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentRepository handles database operations for documents and their versions
type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `d.id, d.case_id, d.piece_type, d.status, d.current_version_id, d.created_at, d.updated_at`

const versionColumns = `v.id, v.document_id, v.version_number, v.created_by, v.agent_name, v.created_at`

// Create creates a new document
func (r *DocumentRepository) Create(ctx context.Context, doc *models.LegalDocument) error {
	query := `
		INSERT INTO legal_documents (case_id, piece_type, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query, doc.CaseID, doc.PieceType, doc.Status).
		Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
}

// GetByID retrieves a document visible to the user
func (r *DocumentRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.LegalDocument, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM legal_documents d
		JOIN cases c ON c.id = d.case_id
		WHERE d.id = $1 AND c.user_id = $2`

	doc := &models.LegalDocument{}
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&doc.ID,
		&doc.CaseID,
		&doc.PieceType,
		&doc.Status,
		&doc.CurrentVersionID,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return doc, nil
}

// ListByCaseID retrieves the documents of a case visible to the user
func (r *DocumentRepository) ListByCaseID(ctx context.Context, caseID, userID uuid.UUID, limit, offset int) ([]*models.LegalDocument, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM legal_documents d
		JOIN cases c ON c.id = d.case_id
		WHERE d.case_id = $1 AND c.user_id = $2
		ORDER BY d.created_at DESC`
	query, args := pagination(query, []interface{}{caseID, userID}, 3, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.LegalDocument
	for rows.Next() {
		doc := &models.LegalDocument{}
		if err := rows.Scan(
			&doc.ID,
			&doc.CaseID,
			&doc.PieceType,
			&doc.Status,
			&doc.CurrentVersionID,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// UpdateStatus changes the status of a document visible to the user
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id, userID uuid.UUID, status models.DocumentStatus) error {
	query := `
		UPDATE legal_documents d SET
			status = $3,
			updated_at = NOW()
		FROM cases c
		WHERE d.id = $1 AND c.id = d.case_id AND c.user_id = $2`

	tag, err := r.db.Exec(ctx, query, id, userID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateVersion appends a version to a document. The document row is locked
// so concurrent callers never receive the same version number.
func (r *DocumentRepository) CreateVersion(ctx context.Context, documentID, userID uuid.UUID, v *models.DocumentVersion) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var locked uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT d.id FROM legal_documents d
		JOIN cases c ON c.id = d.case_id
		WHERE d.id = $1 AND c.user_id = $2
		FOR UPDATE OF d`, documentID, userID).Scan(&locked)
	if err != nil {
		return notFound(err)
	}

	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(version_number), 0) + 1 FROM document_versions WHERE document_id = $1`,
		documentID,
	).Scan(&v.VersionNumber); err != nil {
		return err
	}

	v.DocumentID = documentID
	if err := tx.QueryRow(ctx, `
		INSERT INTO document_versions (document_id, version_number, created_by, agent_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		v.DocumentID, v.VersionNumber, v.CreatedBy, v.AgentName,
	).Scan(&v.ID, &v.CreatedAt); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE legal_documents SET current_version_id = $2, updated_at = NOW() WHERE id = $1`,
		documentID, v.ID,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetVersion retrieves a version visible to the user
func (r *DocumentRepository) GetVersion(ctx context.Context, id, userID uuid.UUID) (*models.DocumentVersion, error) {
	query := `
		SELECT ` + versionColumns + `
		FROM document_versions v
		JOIN legal_documents d ON d.id = v.document_id
		JOIN cases c ON c.id = d.case_id
		WHERE v.id = $1 AND c.user_id = $2`

	v := &models.DocumentVersion{}
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&v.ID,
		&v.DocumentID,
		&v.VersionNumber,
		&v.CreatedBy,
		&v.AgentName,
		&v.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return v, nil
}

// ListVersions retrieves the versions of a document, newest first
func (r *DocumentRepository) ListVersions(ctx context.Context, documentID, userID uuid.UUID) ([]*models.DocumentVersion, error) {
	query := `
		SELECT ` + versionColumns + `
		FROM document_versions v
		JOIN legal_documents d ON d.id = v.document_id
		JOIN cases c ON c.id = d.case_id
		WHERE v.document_id = $1 AND c.user_id = $2
		ORDER BY v.version_number DESC`

	rows, err := r.db.Query(ctx, query, documentID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []*models.DocumentVersion
	for rows.Next() {
		v := &models.DocumentVersion{}
		if err := rows.Scan(
			&v.ID,
			&v.DocumentID,
			&v.VersionNumber,
			&v.CreatedBy,
			&v.AgentName,
			&v.CreatedAt,
		); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}
