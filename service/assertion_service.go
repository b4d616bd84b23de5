package service

import (
	"context"
	"errors"
	"fmt"

	"lexdraft-backend/constitution"
	"lexdraft-backend/logger"
	"lexdraft-backend/models"

	"github.com/google/uuid"
)

// AssertionService handles assertions, their source links and validity
type AssertionService struct {
	assertionRepo AssertionStore
	documentRepo  DocumentStore
	sourceRepo    SourceStore
	audit         *AuditService
	log           *logger.Logger
}

// AssertionServiceOption is a functional option for AssertionService
type AssertionServiceOption func(*AssertionService)

// AssertionWithAssertionRepository sets the assertion repository
func AssertionWithAssertionRepository(repo AssertionStore) AssertionServiceOption {
	return func(s *AssertionService) {
		s.assertionRepo = repo
	}
}

// AssertionWithDocumentRepository sets the document repository used for version ownership
func AssertionWithDocumentRepository(repo DocumentStore) AssertionServiceOption {
	return func(s *AssertionService) {
		s.documentRepo = repo
	}
}

// AssertionWithSourceRepository sets the source repository
func AssertionWithSourceRepository(repo SourceStore) AssertionServiceOption {
	return func(s *AssertionService) {
		s.sourceRepo = repo
	}
}

// AssertionWithAudit sets the audit service
func AssertionWithAudit(audit *AuditService) AssertionServiceOption {
	return func(s *AssertionService) {
		s.audit = audit
	}
}

// AssertionWithLogger sets the logger
func AssertionWithLogger(log *logger.Logger) AssertionServiceOption {
	return func(s *AssertionService) {
		s.log = log
	}
}

// NewAssertionService creates a new assertion service
func NewAssertionService(opts ...AssertionServiceOption) *AssertionService {
	s := &AssertionService{log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("service", "AssertionService")
	return s
}

func (s *AssertionService) ready() error {
	if s.assertionRepo == nil || s.documentRepo == nil || s.sourceRepo == nil {
		return errors.New("assertion repositories not set")
	}
	return nil
}

func validateKindAndConfidence(kind models.AssertionKind, confidence models.ConfidenceLevel) error {
	if !kind.Valid() {
		return constitution.NewDomainViolation(constitution.CodeInvalidAssertionType,
			"Tipo de afirmação inválido. Válidos: [fato tese fundamento pedido]", "")
	}
	if !confidence.Valid() {
		return constitution.NewDomainViolation(constitution.CodeInvalidConfidence,
			"Nível de confiança inválido. Válidos: [alto medio baixo]", "")
	}
	return nil
}

// CreateAssertionRequest represents a request to create one assertion
type CreateAssertionRequest struct {
	VersionID  uuid.UUID
	UserID     uuid.UUID
	Text       string
	Kind       models.AssertionKind
	Confidence models.ConfidenceLevel
}

// CreateAssertion appends an assertion at the version's next position.
// Sources are never assigned automatically.
func (s *AssertionService) CreateAssertion(ctx context.Context, req CreateAssertionRequest) (*models.Assertion, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if req.Confidence == "" {
		req.Confidence = models.ConfidenceMedium
	}
	if err := validateKindAndConfidence(req.Kind, req.Confidence); err != nil {
		return nil, err
	}

	a := &models.Assertion{
		VersionID:  req.VersionID,
		Text:       req.Text,
		Kind:       req.Kind,
		Confidence: req.Confidence,
		Sources:    []*models.LegalSource{},
	}
	if err := s.assertionRepo.Create(ctx, req.UserID, a); err != nil {
		return nil, translate(err, ErrVersionNotFound)
	}

	s.audit.Record(ctx, req.UserID, models.ActionAssertionCreate, models.EntityAssertion, a.ID,
		models.ActivityDetails{
			"version_id":       req.VersionID.String(),
			"assertion_type":   string(a.Kind),
			"confidence_level": string(a.Confidence),
			"position":         a.Position,
		})
	return a, nil
}

// BulkCreateAssertionsRequest represents an ordered batch of assertions
type BulkCreateAssertionsRequest struct {
	VersionID uuid.UUID
	UserID    uuid.UUID
	Items     []models.NewAssertion
}

// BulkCreateAssertions appends the items in order at contiguous positions.
// Each item's sources must exist and be cited most authoritative first.
// The batch is committed as a whole or not at all.
func (s *AssertionService) BulkCreateAssertions(ctx context.Context, req BulkCreateAssertionsRequest) ([]*models.Assertion, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	for i, item := range req.Items {
		if item.Confidence == "" {
			req.Items[i].Confidence = models.ConfidenceMedium
		}
		if err := validateKindAndConfidence(item.Kind, req.Items[i].Confidence); err != nil {
			return nil, err
		}
	}
	if len(req.Items) == 0 {
		if _, err := s.documentRepo.GetVersion(ctx, req.VersionID, req.UserID); err != nil {
			return nil, translate(err, ErrVersionNotFound)
		}
		return []*models.Assertion{}, nil
	}

	sources, err := s.resolveSources(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	for _, item := range req.Items {
		types := make([]models.SourceType, len(item.SourceIDs))
		for j, id := range item.SourceIDs {
			types[j] = sources[id].Type
		}
		if err := constitution.ValidateHierarchy(types); err != nil {
			return nil, err
		}
	}

	created, err := s.assertionRepo.CreateBatch(ctx, req.VersionID, req.UserID, req.Items)
	if err != nil {
		return nil, translate(err, ErrVersionNotFound)
	}
	for i, a := range created {
		linked := make([]*models.LegalSource, 0, len(req.Items[i].SourceIDs))
		seen := make(map[uuid.UUID]bool, len(req.Items[i].SourceIDs))
		for _, id := range req.Items[i].SourceIDs {
			if !seen[id] {
				seen[id] = true
				linked = append(linked, sources[id])
			}
		}
		models.SortByHierarchy(linked)
		a.Sources = linked
	}

	s.audit.Record(ctx, req.UserID, models.ActionAssertionBulkCreate, models.EntityVersion, req.VersionID,
		models.ActivityDetails{
			"count":          len(created),
			"first_position": created[0].Position,
			"last_position":  created[len(created)-1].Position,
		})
	return created, nil
}

// resolveSources loads every source referenced by the items, once each
func (s *AssertionService) resolveSources(ctx context.Context, items []models.NewAssertion) (map[uuid.UUID]*models.LegalSource, error) {
	sources := make(map[uuid.UUID]*models.LegalSource)
	for _, item := range items {
		for _, id := range item.SourceIDs {
			if _, ok := sources[id]; ok {
				continue
			}
			src, err := s.sourceRepo.GetByID(ctx, id)
			if err != nil {
				return nil, translate(err, ErrSourceNotFound)
			}
			sources[id] = src
		}
	}
	return sources, nil
}

// GetAssertion retrieves an assertion with its sources
func (s *AssertionService) GetAssertion(ctx context.Context, id, userID uuid.UUID) (*models.Assertion, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	a, err := s.assertionRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, translate(err, ErrAssertionNotFound)
	}
	return a, nil
}

// ListByVersion lists a version's assertions in position order
func (s *AssertionService) ListByVersion(ctx context.Context, versionID, userID uuid.UUID) ([]*models.Assertion, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if _, err := s.documentRepo.GetVersion(ctx, versionID, userID); err != nil {
		return nil, translate(err, ErrVersionNotFound)
	}
	return s.assertionRepo.ListByVersion(ctx, versionID)
}

// LinkSourceResult is the outcome of a link request
type LinkSourceResult struct {
	Link    *models.AssertionSourceLink `json:"link"`
	Created bool                        `json:"created"`
}

// LinkSource links a source to an assertion. Linking an existing pair returns
// the existing link.
func (s *AssertionService) LinkSource(ctx context.Context, assertionID, sourceID, userID uuid.UUID) (*LinkSourceResult, error) {
	if _, err := s.GetAssertion(ctx, assertionID, userID); err != nil {
		return nil, err
	}
	if _, err := s.sourceRepo.GetByID(ctx, sourceID); err != nil {
		return nil, translate(err, ErrSourceNotFound)
	}

	link, created, err := s.assertionRepo.Link(ctx, assertionID, sourceID)
	if err != nil {
		return nil, err
	}
	if created {
		s.audit.Record(ctx, userID, models.ActionSourceLink, models.EntityAssertion, assertionID,
			models.ActivityDetails{"source_id": sourceID.String()})
	}
	return &LinkSourceResult{Link: link, Created: created}, nil
}

// UnlinkSource removes a link and reports whether it existed
func (s *AssertionService) UnlinkSource(ctx context.Context, assertionID, sourceID, userID uuid.UUID) (bool, error) {
	if _, err := s.GetAssertion(ctx, assertionID, userID); err != nil {
		return false, err
	}
	removed, err := s.assertionRepo.Unlink(ctx, assertionID, sourceID)
	if err != nil {
		return false, err
	}
	if removed {
		s.audit.Record(ctx, userID, models.ActionSourceUnlink, models.EntityAssertion, assertionID,
			models.ActivityDetails{"source_id": sourceID.String()})
	}
	return removed, nil
}

// AssertionSources lists an assertion's sources, most authoritative first
func (s *AssertionService) AssertionSources(ctx context.Context, assertionID, userID uuid.UUID) ([]*models.LegalSource, error) {
	if _, err := s.GetAssertion(ctx, assertionID, userID); err != nil {
		return nil, err
	}
	return s.assertionRepo.ListSources(ctx, assertionID)
}

// AssertionValidation is the computed validity of one assertion
type AssertionValidation struct {
	AssertionID  uuid.UUID `json:"assertion_id"`
	IsValid      bool      `json:"is_valid"`
	SourcesCount int       `json:"sources_count"`
	Error        string    `json:"error,omitempty"`
}

// ValidateAssertion computes whether an assertion stands
func (s *AssertionService) ValidateAssertion(ctx context.Context, assertionID, userID uuid.UUID) (*AssertionValidation, error) {
	a, err := s.GetAssertion(ctx, assertionID, userID)
	if err != nil {
		return nil, err
	}
	result := &AssertionValidation{AssertionID: a.ID, SourcesCount: len(a.Sources)}
	if err := constitution.RequireSource(len(a.Sources), a.Confidence); err != nil {
		result.Error = violationMessage(err)
		return result, nil
	}
	result.IsValid = true
	return result, nil
}

// VersionValidation is the computed validity of a whole version
type VersionValidation struct {
	VersionID uuid.UUID `json:"version_id"`
	IsValid   bool      `json:"is_valid"`
	Total     int       `json:"total"`
	Valid     int       `json:"valid"`
	Errors    []string  `json:"errors"`
}

// ValidateVersion computes whether a version is valid, listing every failing assertion
func (s *AssertionService) ValidateVersion(ctx context.Context, versionID, userID uuid.UUID) (*VersionValidation, error) {
	assertions, err := s.ListByVersion(ctx, versionID, userID)
	if err != nil {
		return nil, err
	}
	return validateAssertions(versionID, assertions), nil
}

func validateAssertions(versionID uuid.UUID, assertions []*models.Assertion) *VersionValidation {
	result := &VersionValidation{VersionID: versionID, Total: len(assertions), Errors: []string{}}
	if len(assertions) == 0 {
		result.Errors = append(result.Errors, "Versão não possui assertions")
		return result
	}
	for _, a := range assertions {
		if err := constitution.RequireSource(len(a.Sources), a.Confidence); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Assertion %d: %s", a.Position, violationMessage(err)))
			continue
		}
		result.Valid++
	}
	result.IsValid = len(result.Errors) == 0
	return result
}

func violationMessage(err error) string {
	if dv, ok := constitution.AsDomainViolation(err); ok {
		return dv.Message
	}
	return err.Error()
}
