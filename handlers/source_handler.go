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

// SourceHandler handles HTTP requests for the legal source catalog
type SourceHandler struct {
	sourceService *service.SourceService
	log           *logger.Logger
}

// NewSourceHandler creates a new source handler
func NewSourceHandler(sourceService *service.SourceService, log *logger.Logger) *SourceHandler {
	return &SourceHandler{sourceService: sourceService, log: log.With("handler", "SourceHandler")}
}

// CreateSourceRequest represents the request body for registering a source
type CreateSourceRequest struct {
	Type      models.SourceType `json:"source_type" binding:"required,source_type"`
	Reference string            `json:"reference" binding:"required,max=500"`
	Excerpt   string            `json:"excerpt"`
	URL       *string           `json:"url" binding:"omitempty,url"`
}

func (r CreateSourceRequest) toService(userID uuid.UUID) service.CreateSourceRequest {
	return service.CreateSourceRequest{
		UserID:    userID,
		Type:      r.Type,
		Reference: strings.TrimSpace(r.Reference),
		Excerpt:   r.Excerpt,
		URL:       r.URL,
	}
}

// CreateSource handles POST /api/v1/sources
func (h *SourceHandler) CreateSource(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req CreateSourceRequest
	if !bindChecked(c, h.log, constitution.OperationCreateSource, &req) {
		return
	}

	result, err := h.sourceService.CreateSource(c.Request.Context(), req.toService(userID))
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

// BulkCreateSourcesRequest represents a batch of sources
type BulkCreateSourcesRequest struct {
	Sources []CreateSourceRequest `json:"sources" binding:"required,min=1,dive"`
}

// BulkCreateSources handles POST /api/v1/sources/bulk
func (h *SourceHandler) BulkCreateSources(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req BulkCreateSourcesRequest
	if !bindJSON(c, &req) {
		return
	}

	reqs := make([]service.CreateSourceRequest, len(req.Sources))
	for i, s := range req.Sources {
		reqs[i] = s.toService(userID)
	}
	result, err := h.sourceService.BulkCreateSources(c.Request.Context(), reqs)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, result)
}

// Search handles GET /api/v1/sources/search?q=&type=&limit=
func (h *SourceHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		respondFailure(c, http.StatusBadRequest, "INVALID_REQUEST", "Parâmetro q é obrigatório")
		return
	}
	limit := queryInt(c, "limit", service.DefaultSearchLimit)
	if limit > maxPageSize {
		limit = maxPageSize
	}

	sources, err := h.sourceService.Search(c.Request.Context(), query, sourceTypeQuery(c), limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, sources)
}

// Types handles GET /api/v1/sources/types
func (h *SourceHandler) Types(c *gin.Context) {
	respond(c, http.StatusOK, h.sourceService.SourceTypes())
}

// Stats handles GET /api/v1/sources/stats
func (h *SourceHandler) Stats(c *gin.Context) {
	stats, err := h.sourceService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, stats)
}

// GetByReference handles GET /api/v1/sources/by-reference?reference=&type=
func (h *SourceHandler) GetByReference(c *gin.Context) {
	reference := strings.TrimSpace(c.Query("reference"))
	if reference == "" {
		respondFailure(c, http.StatusBadRequest, "INVALID_REQUEST", "Parâmetro reference é obrigatório")
		return
	}

	src, err := h.sourceService.GetByReference(c.Request.Context(), sourceTypeQuery(c), reference)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, src)
}

// GetSource handles GET /api/v1/sources/:id
func (h *SourceHandler) GetSource(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	src, err := h.sourceService.GetSource(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, src)
}

func sourceTypeQuery(c *gin.Context) *models.SourceType {
	raw := c.Query("type")
	if raw == "" {
		return nil
	}
	t := models.SourceType(raw)
	return &t
}
