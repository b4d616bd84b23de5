package handlers

import (
	"net/http"
	"strings"

	"lexdraft-backend/constitution"
	"lexdraft-backend/logger"
	"lexdraft-backend/models"
	"lexdraft-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentHandler handles HTTP requests for documents and their versions
type DocumentHandler struct {
	documentService *service.DocumentService
	log             *logger.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService *service.DocumentService, log *logger.Logger) *DocumentHandler {
	return &DocumentHandler{documentService: documentService, log: log.With("handler", "DocumentHandler")}
}

// CreateDocumentRequest represents the request body for creating a document
type CreateDocumentRequest struct {
	CaseID    uuid.UUID `json:"case_id" binding:"required"`
	PieceType string    `json:"piece_type" binding:"required,max=100"`
}

// CreateDocument handles POST /api/v1/documents
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req CreateDocumentRequest
	if !bindChecked(c, h.log, constitution.OperationCreateDocument, &req) {
		return
	}

	doc, err := h.documentService.CreateDocument(c.Request.Context(), service.CreateDocumentRequest{
		CaseID:    req.CaseID,
		UserID:    userID,
		PieceType: strings.TrimSpace(req.PieceType),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, doc)
}

// ListCaseDocuments handles GET /api/v1/cases/:id/documents
func (h *DocumentHandler) ListCaseDocuments(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	caseID, ok := parseID(c, "id")
	if !ok {
		return
	}
	limit, offset := pagination(c)

	docs, err := h.documentService.ListDocuments(c.Request.Context(), caseID, userID, limit, offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, docs)
}

// GetDocument handles GET /api/v1/documents/:id
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.documentService.GetDocument(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, doc)
}

// UpdateStatusRequest represents the request body for a status change
type UpdateStatusRequest struct {
	Status models.DocumentStatus `json:"status" binding:"required,document_status"`
}

// UpdateStatus handles PATCH /api/v1/documents/:id/status
func (h *DocumentHandler) UpdateStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	doc, err := h.documentService.UpdateStatus(c.Request.Context(), service.UpdateStatusRequest{
		DocumentID: id,
		UserID:     userID,
		Status:     req.Status,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, doc)
}

// CreateVersion handles POST /api/v1/documents/:id/versions.
// Versions created over HTTP are always human versions.
func (h *DocumentHandler) CreateVersion(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	v, err := h.documentService.CreateVersion(c.Request.Context(), service.CreateVersionRequest{
		DocumentID: id,
		UserID:     userID,
		CreatedBy:  models.CreatorHuman,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, v)
}

// ListVersions handles GET /api/v1/documents/:id/versions
func (h *DocumentHandler) ListVersions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	versions, err := h.documentService.ListVersions(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, versions)
}

// GetVersion handles GET /api/v1/document-versions/:id
func (h *DocumentHandler) GetVersion(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	v, err := h.documentService.GetVersion(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, v)
}

// DeleteVersion handles DELETE /api/v1/document-versions/:id. It always fails.
func (h *DocumentHandler) DeleteVersion(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		id = uuid.Nil
	}
	respondError(c, h.log, h.documentService.DeleteVersion(c.Request.Context(), id, userID))
}

// MutateVersion handles PUT and PATCH /api/v1/document-versions/:id. It always fails.
func (h *DocumentHandler) MutateVersion(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		id = uuid.Nil
	}
	op := "update"
	if c.Request.Method == http.MethodPatch {
		op = "patch"
	}
	respondError(c, h.log, h.documentService.MutateVersion(c.Request.Context(), id, userID, op))
}
