package service

import (
	"context"
	"errors"

	"lexdraft-backend/constitution"
	"lexdraft-backend/logger"
	"lexdraft-backend/models"

	"github.com/google/uuid"
)

// DocumentService handles documents and their append-only versions
type DocumentService struct {
	caseRepo      CaseStore
	documentRepo  DocumentStore
	assertionRepo AssertionStore
	audit         *AuditService
	log           *logger.Logger
}

// DocumentServiceOption is a functional option for DocumentService
type DocumentServiceOption func(*DocumentService)

// DocumentWithCaseRepository sets the case repository
func DocumentWithCaseRepository(repo CaseStore) DocumentServiceOption {
	return func(s *DocumentService) {
		s.caseRepo = repo
	}
}

// DocumentWithDocumentRepository sets the document repository
func DocumentWithDocumentRepository(repo DocumentStore) DocumentServiceOption {
	return func(s *DocumentService) {
		s.documentRepo = repo
	}
}

// DocumentWithAssertionRepository sets the assertion repository used for finalize checks
func DocumentWithAssertionRepository(repo AssertionStore) DocumentServiceOption {
	return func(s *DocumentService) {
		s.assertionRepo = repo
	}
}

// DocumentWithAudit sets the audit service
func DocumentWithAudit(audit *AuditService) DocumentServiceOption {
	return func(s *DocumentService) {
		s.audit = audit
	}
}

// DocumentWithLogger sets the logger
func DocumentWithLogger(log *logger.Logger) DocumentServiceOption {
	return func(s *DocumentService) {
		s.log = log
	}
}

// NewDocumentService creates a new document service
func NewDocumentService(opts ...DocumentServiceOption) *DocumentService {
	s := &DocumentService{log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("service", "DocumentService")
	return s
}

func (s *DocumentService) ready() error {
	if s.caseRepo == nil || s.documentRepo == nil {
		return errors.New("document repositories not set")
	}
	return nil
}

// CreateDocumentRequest represents a request to create a document
type CreateDocumentRequest struct {
	CaseID    uuid.UUID
	UserID    uuid.UUID
	PieceType string
}

// CreateDocument creates an empty draft document inside a case
func (s *DocumentService) CreateDocument(ctx context.Context, req CreateDocumentRequest) (*models.LegalDocument, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if _, err := s.caseRepo.GetByID(ctx, req.CaseID, req.UserID); err != nil {
		return nil, translate(err, ErrCaseNotFound)
	}

	doc := &models.LegalDocument{
		CaseID:    req.CaseID,
		PieceType: req.PieceType,
		Status:    models.DocumentDraft,
	}
	if err := s.documentRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, req.UserID, models.ActionDocumentCreate, models.EntityDocument, doc.ID,
		models.ActivityDetails{"case_id": req.CaseID.String(), "piece_type": req.PieceType})
	return doc, nil
}

// GetDocument retrieves a document visible to the user
func (s *DocumentService) GetDocument(ctx context.Context, id, userID uuid.UUID) (*models.LegalDocument, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	doc, err := s.documentRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, translate(err, ErrDocumentNotFound)
	}
	return doc, nil
}

// ListDocuments lists the documents of a case
func (s *DocumentService) ListDocuments(ctx context.Context, caseID, userID uuid.UUID, limit, offset int) ([]*models.LegalDocument, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if _, err := s.caseRepo.GetByID(ctx, caseID, userID); err != nil {
		return nil, translate(err, ErrCaseNotFound)
	}
	return s.documentRepo.ListByCaseID(ctx, caseID, userID, limit, offset)
}

// UpdateStatusRequest represents a document status transition
type UpdateStatusRequest struct {
	DocumentID uuid.UUID
	UserID     uuid.UUID
	Status     models.DocumentStatus
}

// UpdateStatus moves a document to a new status. Any status other than draft
// requires a version, and finalizing requires the current version to be valid.
func (s *DocumentService) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*models.LegalDocument, error) {
	if !req.Status.Valid() {
		return nil, constitution.NewDomainViolation(constitution.CodeInvalidStatus,
			"Status inválido. Válidos: [draft generated revised finalized]", "")
	}
	doc, err := s.GetDocument(ctx, req.DocumentID, req.UserID)
	if err != nil {
		return nil, err
	}

	if req.Status != models.DocumentDraft && doc.CurrentVersionID == nil {
		return nil, constitution.NewDomainViolation(constitution.CodeEmptyVersion,
			"Documento não possui versões",
			"Crie ou gere uma versão antes de alterar o status")
	}
	if req.Status == models.DocumentFinalized {
		if s.assertionRepo == nil {
			return nil, errors.New("assertion repository not set")
		}
		assertions, err := s.assertionRepo.ListByVersion(ctx, *doc.CurrentVersionID)
		if err != nil {
			return nil, err
		}
		if err := constitution.RequireRenderableAssertions(assertions); err != nil {
			return nil, err
		}
	}

	previous := doc.Status
	if err := s.documentRepo.UpdateStatus(ctx, doc.ID, req.UserID, req.Status); err != nil {
		return nil, translate(err, ErrDocumentNotFound)
	}
	doc.Status = req.Status

	s.audit.Record(ctx, req.UserID, models.ActionDocumentStatusChange, models.EntityDocument, doc.ID,
		models.ActivityDetails{"from": string(previous), "to": string(req.Status)})
	return doc, nil
}

// CreateVersionRequest represents a request to append a version
type CreateVersionRequest struct {
	DocumentID uuid.UUID
	UserID     uuid.UUID
	CreatedBy  models.VersionCreator
	AgentName  *string
}

// CreateVersion appends a new empty version and makes it current
func (s *DocumentService) CreateVersion(ctx context.Context, req CreateVersionRequest) (*models.DocumentVersion, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	v := &models.DocumentVersion{
		CreatedBy: req.CreatedBy,
		AgentName: req.AgentName,
	}
	if !v.CreatedBy.Valid() {
		v.CreatedBy = models.CreatorHuman
	}
	if err := s.documentRepo.CreateVersion(ctx, req.DocumentID, req.UserID, v); err != nil {
		return nil, translate(err, ErrDocumentNotFound)
	}

	details := models.ActivityDetails{
		"document_id":    req.DocumentID.String(),
		"version_number": v.VersionNumber,
		"created_by":     string(v.CreatedBy),
	}
	if v.AgentName != nil {
		details["agent_name"] = *v.AgentName
	}
	s.audit.Record(ctx, req.UserID, models.ActionVersionCreate, models.EntityVersion, v.ID, details)
	return v, nil
}

// GetVersion retrieves a version visible to the user
func (s *DocumentService) GetVersion(ctx context.Context, id, userID uuid.UUID) (*models.DocumentVersion, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	v, err := s.documentRepo.GetVersion(ctx, id, userID)
	if err != nil {
		return nil, translate(err, ErrVersionNotFound)
	}
	return v, nil
}

// ListVersions lists a document's versions, newest first
func (s *DocumentService) ListVersions(ctx context.Context, documentID, userID uuid.UUID) ([]*models.DocumentVersion, error) {
	if _, err := s.GetDocument(ctx, documentID, userID); err != nil {
		return nil, err
	}
	return s.documentRepo.ListVersions(ctx, documentID, userID)
}

// DeleteVersion always fails: version history is append-only
func (s *DocumentService) DeleteVersion(ctx context.Context, id, userID uuid.UUID) error {
	err := constitution.ForbidVersionDeletion(id.String())
	s.log.Error("Version deletion attempted", "version_id", id, "user_id", userID, "law", constitution.LawVersioning)
	return err
}

// MutateVersion always fails: every write to an existing version is a mutation
func (s *DocumentService) MutateVersion(ctx context.Context, id, userID uuid.UUID, operation string) error {
	err := constitution.ForbidVersionMutation(operation)
	if err == nil {
		err = constitution.ForbidVersionMutation("update:" + operation)
	}
	s.log.Error("Version mutation attempted", "version_id", id, "user_id", userID, "operation", operation)
	return err
}
