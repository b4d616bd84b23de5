package handlers

import (
	"fmt"
	"net/http"

	"lexdraft-backend/logger"
	"lexdraft-backend/service"

	"github.com/gin-gonic/gin"
)

// AttachmentHandler handles HTTP requests for case attachments
type AttachmentHandler struct {
	attachmentService *service.AttachmentService
	log               *logger.Logger
}

// NewAttachmentHandler creates a new attachment handler
func NewAttachmentHandler(attachmentService *service.AttachmentService, log *logger.Logger) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService, log: log.With("handler", "AttachmentHandler")}
}

// Upload handles POST /api/v1/cases/:id/attachments (multipart field "file")
func (h *AttachmentHandler) Upload(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	caseID, ok := parseID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondFailure(c, http.StatusBadRequest, "MISSING_FILE", "File is required")
		return
	}
	if fileHeader.Size > service.MaxAttachmentSize {
		respondFailure(c, http.StatusBadRequest, "FILE_TOO_LARGE",
			fmt.Sprintf("File size exceeds maximum of %d bytes", service.MaxAttachmentSize))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.log, fmt.Errorf("open upload: %w", err))
		return
	}
	defer file.Close()

	att, err := h.attachmentService.UploadAttachment(c.Request.Context(), service.UploadAttachmentRequest{
		CaseID:   caseID,
		UserID:   userID,
		FileName: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Size:     fileHeader.Size,
		Data:     file,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, att)
}

// ListAttachments handles GET /api/v1/cases/:id/attachments
func (h *AttachmentHandler) ListAttachments(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	caseID, ok := parseID(c, "id")
	if !ok {
		return
	}

	atts, err := h.attachmentService.ListAttachments(c.Request.Context(), caseID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, atts)
}

// GetAttachment handles GET /api/v1/attachments/:id
func (h *AttachmentHandler) GetAttachment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	att, err := h.attachmentService.GetAttachment(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, att)
}

// Download handles GET /api/v1/attachments/:id/download
func (h *AttachmentHandler) Download(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	att, reader, err := h.attachmentService.OpenAttachment(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer reader.Close()

	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, att.FileName),
	}
	c.DataFromReader(http.StatusOK, att.FileSize, att.MimeType, reader, extraHeaders)
}
