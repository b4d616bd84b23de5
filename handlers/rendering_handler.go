package handlers

import (
	"net/http"

	"lexdraft-backend/logger"
	"lexdraft-backend/models"
	"lexdraft-backend/service"

	"github.com/gin-gonic/gin"
)

// RenderingHandler handles HTTP requests for rendered documents
type RenderingHandler struct {
	renderingService *service.RenderingService
	log              *logger.Logger
}

// NewRenderingHandler creates a new rendering handler
func NewRenderingHandler(renderingService *service.RenderingService, log *logger.Logger) *RenderingHandler {
	return &RenderingHandler{renderingService: renderingService, log: log.With("handler", "RenderingHandler")}
}

// RenderRequest represents the request body for rendering a version.
// The format defaults to markdown.
type RenderRequest struct {
	Format models.RenderFormat `json:"format"`
}

// RenderVersion handles POST /api/v1/document-versions/:id/render
func (h *RenderingHandler) RenderVersion(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	versionID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req RenderRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	rendering, err := h.renderingService.RenderVersion(c.Request.Context(), versionID, req.Format, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, rendering)
}

// GetRendering handles GET /api/v1/document-versions/:id/render/:format
func (h *RenderingHandler) GetRendering(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	versionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	rendering, err := h.renderingService.GetRendering(c.Request.Context(), versionID, models.RenderFormat(c.Param("format")), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, rendering)
}

// ListRenderings handles GET /api/v1/document-versions/:id/renderings
func (h *RenderingHandler) ListRenderings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	versionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	renderings, err := h.renderingService.ListRenderings(c.Request.Context(), versionID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, renderings)
}

// RegenerateRendering handles POST /api/v1/renderings/:id/regenerate
func (h *RenderingHandler) RegenerateRendering(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	rendering, err := h.renderingService.RegenerateRendering(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, rendering)
}

// ExportRendering handles POST /api/v1/renderings/:id/export
func (h *RenderingHandler) ExportRendering(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	result, err := h.renderingService.ExportRendering(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, result)
}

// DeleteRendering handles DELETE /api/v1/renderings/:id
func (h *RenderingHandler) DeleteRendering(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.renderingService.DeleteRendering(c.Request.Context(), id, userID); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}
