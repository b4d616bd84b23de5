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

// AssertionHandler handles HTTP requests for assertions and source links
type AssertionHandler struct {
	assertionService *service.AssertionService
	log              *logger.Logger
}

// NewAssertionHandler creates a new assertion handler
func NewAssertionHandler(assertionService *service.AssertionService, log *logger.Logger) *AssertionHandler {
	return &AssertionHandler{assertionService: assertionService, log: log.With("handler", "AssertionHandler")}
}

// CreateAssertionRequest represents the request body for a single assertion
type CreateAssertionRequest struct {
	VersionID       uuid.UUID              `json:"document_version_id" binding:"required"`
	Text            string                 `json:"text" binding:"required"`
	Kind            models.AssertionKind   `json:"assertion_type" binding:"required,assertion_kind"`
	ConfidenceLevel models.ConfidenceLevel `json:"confidence_level" binding:"confidence_level"`
}

// CreateAssertion handles POST /api/v1/assertions
func (h *AssertionHandler) CreateAssertion(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req CreateAssertionRequest
	if !bindChecked(c, h.log, constitution.OperationCreateAssertion, &req) {
		return
	}

	a, err := h.assertionService.CreateAssertion(c.Request.Context(), service.CreateAssertionRequest{
		VersionID:  req.VersionID,
		UserID:     userID,
		Text:       strings.TrimSpace(req.Text),
		Kind:       req.Kind,
		Confidence: req.ConfidenceLevel,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, a)
}

// BulkAssertionItem is one entry of a bulk request
type BulkAssertionItem struct {
	Text            string                 `json:"text" binding:"required"`
	Kind            models.AssertionKind   `json:"assertion_type" binding:"required,assertion_kind"`
	ConfidenceLevel models.ConfidenceLevel `json:"confidence_level" binding:"confidence_level"`
	SourceIDs       []uuid.UUID            `json:"source_ids"`
}

// BulkCreateAssertionsRequest represents an ordered batch for one version
type BulkCreateAssertionsRequest struct {
	VersionID  uuid.UUID           `json:"document_version_id" binding:"required"`
	Assertions []BulkAssertionItem `json:"assertions" binding:"required,dive"`
}

// BulkCreateAssertions handles POST /api/v1/assertions/bulk
func (h *AssertionHandler) BulkCreateAssertions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req BulkCreateAssertionsRequest
	if !bindJSON(c, &req) {
		return
	}

	items := make([]models.NewAssertion, len(req.Assertions))
	for i, item := range req.Assertions {
		items[i] = models.NewAssertion{
			Text:       strings.TrimSpace(item.Text),
			Kind:       item.Kind,
			Confidence: item.ConfidenceLevel,
			SourceIDs:  item.SourceIDs,
		}
	}

	created, err := h.assertionService.BulkCreateAssertions(c.Request.Context(), service.BulkCreateAssertionsRequest{
		VersionID: req.VersionID,
		UserID:    userID,
		Items:     items,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, created)
}

// GetAssertion handles GET /api/v1/assertions/:id
func (h *AssertionHandler) GetAssertion(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	a, err := h.assertionService.GetAssertion(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, a)
}

// ListByVersion handles GET /api/v1/document-versions/:id/assertions
func (h *AssertionHandler) ListByVersion(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	versionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	assertions, err := h.assertionService.ListByVersion(c.Request.Context(), versionID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, assertions)
}

// LinkSource handles POST /api/v1/assertions/:id/sources/:source_id
func (h *AssertionHandler) LinkSource(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	sourceID, ok := parseID(c, "source_id")
	if !ok {
		return
	}

	result, err := h.assertionService.LinkSource(c.Request.Context(), id, sourceID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	respond(c, status, result)
}

// UnlinkSource handles DELETE /api/v1/assertions/:id/sources/:source_id
func (h *AssertionHandler) UnlinkSource(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	sourceID, ok := parseID(c, "source_id")
	if !ok {
		return
	}

	removed, err := h.assertionService.UnlinkSource(c.Request.Context(), id, sourceID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !removed {
		respondError(c, h.log, service.ErrLinkNotFound)
		return
	}
	respond(c, http.StatusOK, gin.H{"assertion_id": id, "source_id": sourceID, "removed": true})
}

// ListSources handles GET /api/v1/assertions/:id/sources
func (h *AssertionHandler) ListSources(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	sources, err := h.assertionService.AssertionSources(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, sources)
}

// ValidateAssertion handles GET /api/v1/assertions/:id/validate
func (h *AssertionHandler) ValidateAssertion(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	result, err := h.assertionService.ValidateAssertion(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, result)
}

// ValidateVersion handles GET /api/v1/document-versions/:id/validate
func (h *AssertionHandler) ValidateVersion(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	versionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	result, err := h.assertionService.ValidateVersion(c.Request.Context(), versionID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, result)
}
