package service

import (
	"context"
	"time"

	"lexdraft-backend/models"
	"lexdraft-backend/repository"

	"github.com/google/uuid"
)

// The store interfaces below are satisfied by the pgx repositories in
// package repository. Not-found conditions are reported as repository.ErrNotFound.

// CaseStore persists cases
type CaseStore interface {
	Create(ctx context.Context, c *models.Case) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Case, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, legalArea *string, limit, offset int) ([]*models.Case, error)
	Update(ctx context.Context, c *models.Case) error
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
	CountDocuments(ctx context.Context, id uuid.UUID) (int, error)
}

// DocumentStore persists documents and their append-only versions
type DocumentStore interface {
	Create(ctx context.Context, doc *models.LegalDocument) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.LegalDocument, error)
	ListByCaseID(ctx context.Context, caseID, userID uuid.UUID, limit, offset int) ([]*models.LegalDocument, error)
	UpdateStatus(ctx context.Context, id, userID uuid.UUID, status models.DocumentStatus) error
	CreateVersion(ctx context.Context, documentID, userID uuid.UUID, v *models.DocumentVersion) error
	GetVersion(ctx context.Context, id, userID uuid.UUID) (*models.DocumentVersion, error)
	ListVersions(ctx context.Context, documentID, userID uuid.UUID) ([]*models.DocumentVersion, error)
}

// AssertionStore persists assertions and source links
type AssertionStore interface {
	Create(ctx context.Context, userID uuid.UUID, a *models.Assertion) error
	CreateBatch(ctx context.Context, versionID, userID uuid.UUID, items []models.NewAssertion) ([]*models.Assertion, error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Assertion, error)
	ListByVersion(ctx context.Context, versionID uuid.UUID) ([]*models.Assertion, error)
	ListSources(ctx context.Context, assertionID uuid.UUID) ([]*models.LegalSource, error)
	Link(ctx context.Context, assertionID, sourceID uuid.UUID) (*models.AssertionSourceLink, bool, error)
	Unlink(ctx context.Context, assertionID, sourceID uuid.UUID) (bool, error)
}

// SourceStore persists legal sources
type SourceStore interface {
	Create(ctx context.Context, s *models.LegalSource) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.LegalSource, error)
	GetByReference(ctx context.Context, sourceType *models.SourceType, reference string) (*models.LegalSource, error)
	Search(ctx context.Context, query string, sourceType *models.SourceType, limit int) ([]*models.LegalSource, error)
	CountByType(ctx context.Context) (map[models.SourceType]int, error)
}

// RenderingStore persists the rendering cache
type RenderingStore interface {
	Upsert(ctx context.Context, r *models.Rendering) error
	GetByVersionAndFormat(ctx context.Context, versionID uuid.UUID, format models.RenderFormat, userID uuid.UUID) (*models.Rendering, error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Rendering, error)
	ListByVersion(ctx context.Context, versionID, userID uuid.UUID) ([]*models.Rendering, error)
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

// ActivityStore persists the audit trail
type ActivityStore interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]*models.ActivityLog, error)
	ListByUser(ctx context.Context, userID uuid.UUID, since time.Time, limit, offset int) ([]*models.ActivityLog, error)
	ListForDocument(ctx context.Context, documentID uuid.UUID) ([]*models.ActivityLog, error)
}

// AttachmentStore persists attachment metadata
type AttachmentStore interface {
	Create(ctx context.Context, att *models.Attachment) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Attachment, error)
	ListByCaseID(ctx context.Context, caseID, userID uuid.UUID) ([]*models.Attachment, error)
}

// UserStore persists users
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

var (
	_ CaseStore       = (*repository.CaseRepository)(nil)
	_ DocumentStore   = (*repository.DocumentRepository)(nil)
	_ AssertionStore  = (*repository.AssertionRepository)(nil)
	_ SourceStore     = (*repository.SourceRepository)(nil)
	_ RenderingStore  = (*repository.RenderingRepository)(nil)
	_ ActivityStore   = (*repository.ActivityLogRepository)(nil)
	_ AttachmentStore = (*repository.AttachmentRepository)(nil)
	_ UserStore       = (*repository.UserRepository)(nil)
)
