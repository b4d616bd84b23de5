package service

import (
	"context"
	"errors"
	"strings"

	"lexdraft-backend/constitution"
	"lexdraft-backend/logger"
	"lexdraft-backend/models"

	"github.com/google/uuid"
)

// DefaultSearchLimit bounds source searches that do not set a limit
const DefaultSearchLimit = 20

// SourceService handles the catalog of legal sources
type SourceService struct {
	sourceRepo SourceStore
	audit      *AuditService
	log        *logger.Logger
}

// SourceServiceOption is a functional option for SourceService
type SourceServiceOption func(*SourceService)

// WithSourceRepository sets the source repository
func WithSourceRepository(repo SourceStore) SourceServiceOption {
	return func(s *SourceService) {
		s.sourceRepo = repo
	}
}

// WithSourceAudit sets the audit service
func WithSourceAudit(audit *AuditService) SourceServiceOption {
	return func(s *SourceService) {
		s.audit = audit
	}
}

// WithSourceLogger sets the logger
func WithSourceLogger(log *logger.Logger) SourceServiceOption {
	return func(s *SourceService) {
		s.log = log
	}
}

// NewSourceService creates a new source service
func NewSourceService(opts ...SourceServiceOption) *SourceService {
	s := &SourceService{log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("service", "SourceService")
	return s
}

// CreateSourceRequest represents a request to register a source
type CreateSourceRequest struct {
	UserID    uuid.UUID
	Type      models.SourceType
	Reference string
	Excerpt   string
	URL       *string
}

// CreateSourceResult reports the stored source and whether it was new
type CreateSourceResult struct {
	Source  *models.LegalSource `json:"source"`
	Created bool                `json:"created"`
}

// CreateSource registers a source. An identical (type, reference, excerpt)
// returns the existing source instead of a duplicate.
func (s *SourceService) CreateSource(ctx context.Context, req CreateSourceRequest) (*CreateSourceResult, error) {
	if s.sourceRepo == nil {
		return nil, errors.New("source repository not set")
	}
	if !req.Type.Valid() {
		return nil, constitution.NewDomainViolation(constitution.CodeInvalidSourceType,
			"Tipo de fonte inválido. Válidos: [constituicao lei jurisprudencia doutrina argumentacao]", "")
	}
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		return nil, constitution.NewDomainViolation(constitution.CodeInvalidInput, "Referência da fonte é obrigatória", "")
	}

	src := &models.LegalSource{
		Type:      req.Type,
		Reference: reference,
		Excerpt:   req.Excerpt,
		URL:       req.URL,
	}
	created, err := s.sourceRepo.Create(ctx, src)
	if err != nil {
		return nil, err
	}
	if created {
		s.audit.Record(ctx, req.UserID, models.ActionSourceCreate, models.EntitySource, src.ID,
			models.ActivityDetails{"source_type": string(src.Type), "reference": src.Reference})
	}
	return &CreateSourceResult{Source: src, Created: created}, nil
}

// BulkCreateSourcesResult summarizes a bulk registration
type BulkCreateSourcesResult struct {
	Sources  []*models.LegalSource `json:"sources"`
	Created  int                   `json:"created"`
	Existing int                   `json:"existing"`
}

// BulkCreateSources registers sources one by one, deduplicating each
func (s *SourceService) BulkCreateSources(ctx context.Context, reqs []CreateSourceRequest) (*BulkCreateSourcesResult, error) {
	result := &BulkCreateSourcesResult{Sources: make([]*models.LegalSource, 0, len(reqs))}
	for _, req := range reqs {
		r, err := s.CreateSource(ctx, req)
		if err != nil {
			return nil, err
		}
		result.Sources = append(result.Sources, r.Source)
		if r.Created {
			result.Created++
		} else {
			result.Existing++
		}
	}
	return result, nil
}

// GetSource retrieves a source by ID
func (s *SourceService) GetSource(ctx context.Context, id uuid.UUID) (*models.LegalSource, error) {
	if s.sourceRepo == nil {
		return nil, errors.New("source repository not set")
	}
	src, err := s.sourceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, ErrSourceNotFound)
	}
	return src, nil
}

// GetByReference retrieves the most authoritative source with an exact reference
func (s *SourceService) GetByReference(ctx context.Context, sourceType *models.SourceType, reference string) (*models.LegalSource, error) {
	if s.sourceRepo == nil {
		return nil, errors.New("source repository not set")
	}
	src, err := s.sourceRepo.GetByReference(ctx, sourceType, reference)
	if err != nil {
		return nil, translate(err, ErrSourceNotFound)
	}
	return src, nil
}

// ResolveReference finds a source for a citation: exact reference first,
// then the most authoritative fuzzy match. It returns ErrSourceNotFound when
// nothing matches.
func (s *SourceService) ResolveReference(ctx context.Context, reference string) (*models.LegalSource, error) {
	src, err := s.GetByReference(ctx, nil, reference)
	if err == nil || !errors.Is(err, ErrSourceNotFound) {
		return src, err
	}

	matches, err := s.sourceRepo.Search(ctx, reference, nil, 1)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrSourceNotFound
	}
	return matches[0], nil
}

// Search matches reference and excerpt text, most authoritative first
func (s *SourceService) Search(ctx context.Context, query string, sourceType *models.SourceType, limit int) ([]*models.LegalSource, error) {
	if s.sourceRepo == nil {
		return nil, errors.New("source repository not set")
	}
	if sourceType != nil && !sourceType.Valid() {
		return nil, constitution.NewDomainViolation(constitution.CodeInvalidSourceType, "Tipo de fonte inválido", "")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return s.sourceRepo.Search(ctx, strings.TrimSpace(query), sourceType, limit)
}

// SourceTypes lists the source types in hierarchy order
func (s *SourceService) SourceTypes() []models.SourceTypeInfo {
	infos := make([]models.SourceTypeInfo, 0, len(models.SourceTypes))
	for _, t := range models.SourceTypes {
		infos = append(infos, models.SourceTypeInfo{
			Type:          t,
			HierarchyRank: t.HierarchyRank(),
			DisplayName:   t.DisplayName(),
		})
	}
	return infos
}

// SourceStats is the catalog size per type
type SourceStats struct {
	Total  int                       `json:"total"`
	ByType map[models.SourceType]int `json:"by_type"`
}

// Stats counts sources per type. Every known type is present, zero if empty.
func (s *SourceService) Stats(ctx context.Context) (*SourceStats, error) {
	if s.sourceRepo == nil {
		return nil, errors.New("source repository not set")
	}
	counts, err := s.sourceRepo.CountByType(ctx)
	if err != nil {
		return nil, err
	}
	stats := &SourceStats{ByType: make(map[models.SourceType]int, len(models.SourceTypes))}
	for _, t := range models.SourceTypes {
		stats.ByType[t] = counts[t]
		stats.Total += counts[t]
	}
	return stats, nil
}
