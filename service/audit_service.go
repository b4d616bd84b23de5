package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lexdraft-backend/constitution"
	"lexdraft-backend/logger"
	"lexdraft-backend/models"

	"github.com/google/uuid"
)

// AuditService records and queries the activity trail
type AuditService struct {
	activityRepo ActivityStore
	documentRepo DocumentStore
	log          *logger.Logger
}

// AuditServiceOption is a functional option for AuditService
type AuditServiceOption func(*AuditService)

// AuditWithActivityRepository sets the activity store
func AuditWithActivityRepository(repo ActivityStore) AuditServiceOption {
	return func(s *AuditService) {
		s.activityRepo = repo
	}
}

// AuditWithDocumentRepository sets the document store used for ownership checks
func AuditWithDocumentRepository(repo DocumentStore) AuditServiceOption {
	return func(s *AuditService) {
		s.documentRepo = repo
	}
}

// AuditWithLogger sets the logger
func AuditWithLogger(log *logger.Logger) AuditServiceOption {
	return func(s *AuditService) {
		s.log = log
	}
}

// NewAuditService creates a new audit service
func NewAuditService(opts ...AuditServiceOption) *AuditService {
	s := &AuditService{log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("service", "AuditService")
	return s
}

// Record appends an entry to the trail. Failures are logged, never returned:
// the audited operation has already happened.
func (s *AuditService) Record(ctx context.Context, userID uuid.UUID, action, entityType string, entityID uuid.UUID, details models.ActivityDetails) {
	if s == nil || s.activityRepo == nil {
		return
	}
	entry := &models.ActivityLog{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	}
	if userID != uuid.Nil {
		entry.UserID = &userID
	}
	if err := s.activityRepo.Create(ctx, entry); err != nil {
		s.log.Warn("Failed to record activity", "action", action, "entity_id", entityID, "error", err)
	}
}

// EntityHistoryRequest represents a request for one entity's history
type EntityHistoryRequest struct {
	EntityType string
	EntityID   uuid.UUID
	UserID     uuid.UUID
	Limit      int
	Offset     int
}

// EntityHistory lists the actions the user recorded on an entity
func (s *AuditService) EntityHistory(ctx context.Context, req EntityHistoryRequest) ([]*models.ActivityLog, error) {
	if s.activityRepo == nil {
		return nil, errors.New("activity repository not set")
	}
	if !validEntityType(req.EntityType) {
		return nil, constitution.NewDomainViolation(constitution.CodeInvalidInput,
			fmt.Sprintf("Tipo de entidade inválido. Válidos: %v", models.EntityTypes), "")
	}
	entries, err := s.activityRepo.ListByEntity(ctx, req.EntityType, req.EntityID, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}
	own := make([]*models.ActivityLog, 0, len(entries))
	for _, e := range entries {
		if e.UserID != nil && *e.UserID == req.UserID {
			own = append(own, e)
		}
	}
	return own, nil
}

func validEntityType(entityType string) bool {
	for _, t := range models.EntityTypes {
		if t == entityType {
			return true
		}
	}
	return false
}

// UserActivity lists a user's own activity over the last days
func (s *AuditService) UserActivity(ctx context.Context, userID uuid.UUID, days, limit, offset int) ([]*models.ActivityLog, error) {
	if s.activityRepo == nil {
		return nil, errors.New("activity repository not set")
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	return s.activityRepo.ListByUser(ctx, userID, since, limit, offset)
}

// DocumentTrailResult is the full audit trail of a document
type DocumentTrailResult struct {
	DocumentID uuid.UUID             `json:"document_id"`
	Trail      []*models.ActivityLog `json:"trail"`
	Total      int                   `json:"total"`
}

// DocumentTrail returns every recorded action on a document and its descendants
func (s *AuditService) DocumentTrail(ctx context.Context, documentID, userID uuid.UUID) (*DocumentTrailResult, error) {
	if s.activityRepo == nil || s.documentRepo == nil {
		return nil, errors.New("audit repositories not set")
	}
	if _, err := s.documentRepo.GetByID(ctx, documentID, userID); err != nil {
		return nil, translate(err, ErrDocumentNotFound)
	}
	trail, err := s.activityRepo.ListForDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return &DocumentTrailResult{DocumentID: documentID, Trail: trail, Total: len(trail)}, nil
}
