package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lexdraft-backend/constitution"
	"lexdraft-backend/logger"
	"lexdraft-backend/metrics"
	"lexdraft-backend/models"
	"lexdraft-backend/storage"

	"github.com/google/uuid"
)

// RenderingService projects versions into text and manages the rendering cache
type RenderingService struct {
	renderingRepo RenderingStore
	documentRepo  DocumentStore
	assertionRepo AssertionStore
	storage       storage.Storage
	audit         *AuditService
	log           *logger.Logger
}

// RenderingServiceOption is a functional option for RenderingService
type RenderingServiceOption func(*RenderingService)

// RenderingWithRenderingRepository sets the rendering repository
func RenderingWithRenderingRepository(repo RenderingStore) RenderingServiceOption {
	return func(s *RenderingService) {
		s.renderingRepo = repo
	}
}

// RenderingWithDocumentRepository sets the document repository
func RenderingWithDocumentRepository(repo DocumentStore) RenderingServiceOption {
	return func(s *RenderingService) {
		s.documentRepo = repo
	}
}

// RenderingWithAssertionRepository sets the assertion repository
func RenderingWithAssertionRepository(repo AssertionStore) RenderingServiceOption {
	return func(s *RenderingService) {
		s.assertionRepo = repo
	}
}

// RenderingWithStorage sets the storage used by exports
func RenderingWithStorage(store storage.Storage) RenderingServiceOption {
	return func(s *RenderingService) {
		s.storage = store
	}
}

// RenderingWithAudit sets the audit service
func RenderingWithAudit(audit *AuditService) RenderingServiceOption {
	return func(s *RenderingService) {
		s.audit = audit
	}
}

// RenderingWithLogger sets the logger
func RenderingWithLogger(log *logger.Logger) RenderingServiceOption {
	return func(s *RenderingService) {
		s.log = log
	}
}

// NewRenderingService creates a new rendering service
func NewRenderingService(opts ...RenderingServiceOption) *RenderingService {
	s := &RenderingService{log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("service", "RenderingService")
	return s
}

func (s *RenderingService) ready() error {
	if s.renderingRepo == nil || s.documentRepo == nil || s.assertionRepo == nil {
		return errors.New("rendering repositories not set")
	}
	return nil
}

func invalidFormat(format models.RenderFormat) error {
	return constitution.NewDomainViolation(constitution.CodeInvalidFormat,
		fmt.Sprintf("Formato '%s' inválido. Válidos: [markdown html docx pdf]", format), "")
}

// RenderVersion validates a version, projects it and stores the result.
// Rendering the same version and format again overwrites the cached text.
func (s *RenderingService) RenderVersion(ctx context.Context, versionID uuid.UUID, format models.RenderFormat, userID uuid.UUID) (*models.Rendering, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if format == "" {
		format = models.FormatMarkdown
	}
	if !format.Valid() {
		return nil, invalidFormat(format)
	}
	if _, err := s.documentRepo.GetVersion(ctx, versionID, userID); err != nil {
		return nil, translate(err, ErrVersionNotFound)
	}

	assertions, err := s.assertionRepo.ListByVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if err := constitution.RequireRenderableAssertions(assertions); err != nil {
		metrics.Renderings.WithLabelValues(string(format), "blocked").Inc()
		s.log.Info("Rendering blocked", "version_id", versionID, "format", format, "error", err)
		return nil, err
	}

	rendering := &models.Rendering{
		VersionID:    versionID,
		Format:       format,
		RenderedText: Render(assertions, format),
	}
	if err := s.renderingRepo.Upsert(ctx, rendering); err != nil {
		metrics.Renderings.WithLabelValues(string(format), "error").Inc()
		return nil, err
	}
	metrics.Renderings.WithLabelValues(string(format), "ok").Inc()

	s.audit.Record(ctx, userID, models.ActionRenderDocument, models.EntityRendering, rendering.ID,
		models.ActivityDetails{
			"version_id":       versionID.String(),
			"format":           string(format),
			"assertions_count": len(assertions),
		})
	return rendering, nil
}

// GetRendering returns the cached rendering of a version in a format
func (s *RenderingService) GetRendering(ctx context.Context, versionID uuid.UUID, format models.RenderFormat, userID uuid.UUID) (*models.Rendering, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if !format.Valid() {
		return nil, invalidFormat(format)
	}
	r, err := s.renderingRepo.GetByVersionAndFormat(ctx, versionID, format, userID)
	if err != nil {
		return nil, translate(err, ErrRenderingNotFound)
	}
	return r, nil
}

// ListRenderings lists every cached rendering of a version
func (s *RenderingService) ListRenderings(ctx context.Context, versionID, userID uuid.UUID) ([]*models.Rendering, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if _, err := s.documentRepo.GetVersion(ctx, versionID, userID); err != nil {
		return nil, translate(err, ErrVersionNotFound)
	}
	return s.renderingRepo.ListByVersion(ctx, versionID, userID)
}

// RegenerateRendering renders a cached rendering again from its assertions
func (s *RenderingService) RegenerateRendering(ctx context.Context, id, userID uuid.UUID) (*models.Rendering, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	existing, err := s.renderingRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, translate(err, ErrRenderingNotFound)
	}
	return s.RenderVersion(ctx, existing.VersionID, existing.Format, userID)
}

// DeleteRendering drops a cached rendering. The text can always be rendered again.
func (s *RenderingService) DeleteRendering(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.ready(); err != nil {
		return err
	}
	deleted, err := s.renderingRepo.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrRenderingNotFound
	}
	s.audit.Record(ctx, userID, models.ActionRenderDelete, models.EntityRendering, id, nil)
	return nil
}

// ExportResult locates an exported rendering in storage
type ExportResult struct {
	RenderingID uuid.UUID `json:"rendering_id"`
	StoragePath string    `json:"storage_path"`
	FileName    string    `json:"file_name"`
}

// ExportRendering writes a cached rendering to storage
func (s *RenderingService) ExportRendering(ctx context.Context, id, userID uuid.UUID) (*ExportResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, ErrStorageNotSet
	}
	r, err := s.renderingRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, translate(err, ErrRenderingNotFound)
	}
	v, err := s.documentRepo.GetVersion(ctx, r.VersionID, userID)
	if err != nil {
		return nil, translate(err, ErrVersionNotFound)
	}

	fileName := fmt.Sprintf("documento-v%d%s", v.VersionNumber, r.Format.Extension())
	path, err := s.storage.Upload(ctx, r.ID, fileName, strings.NewReader(r.RenderedText))
	if err != nil {
		return nil, fmt.Errorf("export rendering: %w", err)
	}

	s.audit.Record(ctx, userID, models.ActionRenderExport, models.EntityRendering, r.ID,
		models.ActivityDetails{"storage_path": path, "format": string(r.Format)})
	return &ExportResult{RenderingID: r.ID, StoragePath: path, FileName: fileName}, nil
}
