package service

import (
	"context"
	"errors"

	"lexdraft-backend/logger"
	"lexdraft-backend/models"

	"github.com/google/uuid"
)

// CaseService handles business logic for cases
type CaseService struct {
	caseRepo CaseStore
	audit    *AuditService
	log      *logger.Logger
}

// CaseServiceOption is a functional option for CaseService
type CaseServiceOption func(*CaseService)

// WithCaseRepository sets the case repository
func WithCaseRepository(repo CaseStore) CaseServiceOption {
	return func(s *CaseService) {
		s.caseRepo = repo
	}
}

// WithCaseAudit sets the audit service
func WithCaseAudit(audit *AuditService) CaseServiceOption {
	return func(s *CaseService) {
		s.audit = audit
	}
}

// WithCaseLogger sets the logger
func WithCaseLogger(log *logger.Logger) CaseServiceOption {
	return func(s *CaseService) {
		s.log = log
	}
}

// NewCaseService creates a new case service
func NewCaseService(opts ...CaseServiceOption) *CaseService {
	s := &CaseService{log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("service", "CaseService")
	return s
}

// CreateCaseRequest represents a request to create a case
type CreateCaseRequest struct {
	UserID        uuid.UUID
	LegalArea     string
	Title         string
	Description   *string
	ProcessNumber *string
}

// CreateCase creates a new case owned by the user
func (s *CaseService) CreateCase(ctx context.Context, req CreateCaseRequest) (*models.Case, error) {
	if s.caseRepo == nil {
		return nil, errors.New("case repository not set")
	}

	c := &models.Case{
		UserID:        req.UserID,
		LegalArea:     req.LegalArea,
		Title:         req.Title,
		Description:   req.Description,
		ProcessNumber: req.ProcessNumber,
	}
	if c.LegalArea == "" {
		c.LegalArea = "civil"
	}
	if err := s.caseRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, req.UserID, models.ActionCaseCreate, models.EntityCase, c.ID,
		models.ActivityDetails{"title": c.Title, "legal_area": c.LegalArea})
	return c, nil
}

// GetCase retrieves a case visible to the user
func (s *CaseService) GetCase(ctx context.Context, id, userID uuid.UUID) (*models.Case, error) {
	if s.caseRepo == nil {
		return nil, errors.New("case repository not set")
	}
	c, err := s.caseRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, translate(err, ErrCaseNotFound)
	}
	return c, nil
}

// ListCasesRequest represents a request to list a user's cases
type ListCasesRequest struct {
	UserID    uuid.UUID
	LegalArea *string
	Limit     int
	Offset    int
}

// ListCases lists the user's cases, newest first
func (s *CaseService) ListCases(ctx context.Context, req ListCasesRequest) ([]*models.Case, error) {
	if s.caseRepo == nil {
		return nil, errors.New("case repository not set")
	}
	return s.caseRepo.ListByUserID(ctx, req.UserID, req.LegalArea, req.Limit, req.Offset)
}

// UpdateCaseRequest represents a partial update of a case
type UpdateCaseRequest struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Title         *string
	Description   *string
	ProcessNumber *string
}

// UpdateCase applies the non-nil fields of the request
func (s *CaseService) UpdateCase(ctx context.Context, req UpdateCaseRequest) (*models.Case, error) {
	c, err := s.GetCase(ctx, req.ID, req.UserID)
	if err != nil {
		return nil, err
	}

	changed := []string{}
	if req.Title != nil {
		c.Title = *req.Title
		changed = append(changed, "title")
	}
	if req.Description != nil {
		c.Description = req.Description
		changed = append(changed, "description")
	}
	if req.ProcessNumber != nil {
		c.ProcessNumber = req.ProcessNumber
		changed = append(changed, "process_number")
	}
	if len(changed) == 0 {
		return c, nil
	}

	if err := s.caseRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, req.UserID, models.ActionCaseUpdate, models.EntityCase, c.ID,
		models.ActivityDetails{"fields": changed})
	return c, nil
}

// DeleteCase removes a case that has no documents
func (s *CaseService) DeleteCase(ctx context.Context, id, userID uuid.UUID) error {
	c, err := s.GetCase(ctx, id, userID)
	if err != nil {
		return err
	}
	count, err := s.caseRepo.CountDocuments(ctx, c.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCaseHasDocuments
	}

	deleted, err := s.caseRepo.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrCaseNotFound
	}
	s.audit.Record(ctx, userID, models.ActionCaseDelete, models.EntityCase, id,
		models.ActivityDetails{"title": c.Title})
	return nil
}
