package handlers

import (
	"net/http"

	"lexdraft-backend/logger"
	"lexdraft-backend/service"

	"github.com/gin-gonic/gin"
)

const (
	defaultActivityDays = 7
	maxActivityDays     = 365
)

// AuditHandler handles HTTP requests for the activity trail
type AuditHandler struct {
	auditService *service.AuditService
	log          *logger.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *service.AuditService, log *logger.Logger) *AuditHandler {
	return &AuditHandler{auditService: auditService, log: log.With("handler", "AuditHandler")}
}

// DocumentTrail handles GET /api/v1/audit/documents/:id
func (h *AuditHandler) DocumentTrail(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	trail, err := h.auditService.DocumentTrail(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, trail)
}

// EntityHistory handles GET /api/v1/audit/entity/:type/:id
func (h *AuditHandler) EntityHistory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	limit, offset := pagination(c)

	entries, err := h.auditService.EntityHistory(c.Request.Context(), service.EntityHistoryRequest{
		EntityType: c.Param("type"),
		EntityID:   id,
		UserID:     userID,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, entries)
}

// MyActivity handles GET /api/v1/audit/me?days=
func (h *AuditHandler) MyActivity(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	days := queryInt(c, "days", defaultActivityDays)
	if days <= 0 {
		days = defaultActivityDays
	}
	if days > maxActivityDays {
		days = maxActivityDays
	}
	limit, offset := pagination(c)

	entries, err := h.auditService.UserActivity(c.Request.Context(), userID, days, limit, offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"user_id": userID, "days": days, "activity": entries})
}
