package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"lexdraft-backend/constitution"
	"lexdraft-backend/logger"
	"lexdraft-backend/models"
	"lexdraft-backend/storage"

	"github.com/google/uuid"
)

// MaxAttachmentSize is the largest accepted upload
const MaxAttachmentSize = 10 * 1024 * 1024

var allowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"text/plain":         true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"image/png":  true,
	"image/jpeg": true,
}

var mimeByExtension = map[string]string{
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// AttachmentService stores files attached to cases
type AttachmentService struct {
	attachmentRepo AttachmentStore
	caseRepo       CaseStore
	storage        storage.Storage
	audit          *AuditService
	log            *logger.Logger
}

// AttachmentServiceOption is a functional option for AttachmentService
type AttachmentServiceOption func(*AttachmentService)

// AttachmentWithAttachmentRepository sets the attachment repository
func AttachmentWithAttachmentRepository(repo AttachmentStore) AttachmentServiceOption {
	return func(s *AttachmentService) {
		s.attachmentRepo = repo
	}
}

// AttachmentWithCaseRepository sets the case repository
func AttachmentWithCaseRepository(repo CaseStore) AttachmentServiceOption {
	return func(s *AttachmentService) {
		s.caseRepo = repo
	}
}

// AttachmentWithStorage sets the file storage
func AttachmentWithStorage(store storage.Storage) AttachmentServiceOption {
	return func(s *AttachmentService) {
		s.storage = store
	}
}

// AttachmentWithAudit sets the audit service
func AttachmentWithAudit(audit *AuditService) AttachmentServiceOption {
	return func(s *AttachmentService) {
		s.audit = audit
	}
}

// AttachmentWithLogger sets the logger
func AttachmentWithLogger(log *logger.Logger) AttachmentServiceOption {
	return func(s *AttachmentService) {
		s.log = log
	}
}

// NewAttachmentService creates a new attachment service
func NewAttachmentService(opts ...AttachmentServiceOption) *AttachmentService {
	s := &AttachmentService{log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("service", "AttachmentService")
	return s
}

func (s *AttachmentService) ready() error {
	if s.attachmentRepo == nil || s.caseRepo == nil {
		return errors.New("attachment repositories not set")
	}
	if s.storage == nil {
		return ErrStorageNotSet
	}
	return nil
}

// DetectMimeType returns the declared type, or infers one from the file extension
func DetectMimeType(fileName, declared string) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if mt, ok := mimeByExtension[strings.ToLower(filepath.Ext(fileName))]; ok {
		return mt
	}
	return "application/octet-stream"
}

// UploadAttachmentRequest represents an upload to a case
type UploadAttachmentRequest struct {
	CaseID   uuid.UUID
	UserID   uuid.UUID
	FileName string
	MimeType string
	Size     int64
	Data     io.Reader
}

// UploadAttachment stores a file and records it against the case
func (s *AttachmentService) UploadAttachment(ctx context.Context, req UploadAttachmentRequest) (*models.Attachment, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if req.Size > MaxAttachmentSize {
		return nil, constitution.NewDomainViolation(constitution.CodeInvalidInput,
			fmt.Sprintf("Arquivo excede o tamanho máximo de %d bytes", MaxAttachmentSize), "")
	}
	mimeType := DetectMimeType(req.FileName, req.MimeType)
	if !allowedMimeTypes[mimeType] && !strings.HasPrefix(mimeType, "text/") {
		return nil, constitution.NewDomainViolation(constitution.CodeInvalidInput,
			"Tipo de arquivo não permitido. Permitidos: PDF, TXT, DOC, DOCX, PNG, JPEG", "")
	}
	if _, err := s.caseRepo.GetByID(ctx, req.CaseID, req.UserID); err != nil {
		return nil, translate(err, ErrCaseNotFound)
	}

	att := &models.Attachment{
		ID:       uuid.New(),
		CaseID:   req.CaseID,
		FileName: req.FileName,
		MimeType: mimeType,
		FileSize: req.Size,
	}
	path, err := s.storage.Upload(ctx, att.ID, req.FileName, req.Data)
	if err != nil {
		return nil, fmt.Errorf("upload attachment: %w", err)
	}
	att.StoragePath = path

	if err := s.attachmentRepo.Create(ctx, att); err != nil {
		if delErr := s.storage.Delete(ctx, path); delErr != nil {
			s.log.Warn("Failed to clean up stored file", "storage_path", path, "error", delErr)
		}
		return nil, err
	}

	s.audit.Record(ctx, req.UserID, models.ActionAttachmentUpload, models.EntityAttachment, att.ID,
		models.ActivityDetails{"case_id": req.CaseID.String(), "file_name": att.FileName, "size": att.FileSize})
	return att, nil
}

// GetAttachment retrieves attachment metadata
func (s *AttachmentService) GetAttachment(ctx context.Context, id, userID uuid.UUID) (*models.Attachment, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	att, err := s.attachmentRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, translate(err, ErrAttachmentNotFound)
	}
	return att, nil
}

// ListAttachments lists the attachments of a case
func (s *AttachmentService) ListAttachments(ctx context.Context, caseID, userID uuid.UUID) ([]*models.Attachment, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.attachmentRepo.ListByCaseID(ctx, caseID, userID)
}

// OpenAttachment returns the attachment and a reader over its content. The
// caller must close the reader.
func (s *AttachmentService) OpenAttachment(ctx context.Context, id, userID uuid.UUID) (*models.Attachment, io.ReadCloser, error) {
	att, err := s.GetAttachment(ctx, id, userID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.storage.Download(ctx, att.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrAttachmentNotFound
		}
		return nil, nil, err
	}
	return att, rc, nil
}
