package handlers

import (
	"net/http"
	"strings"

	"lexdraft-backend/logger"
	"lexdraft-backend/service"

	"github.com/gin-gonic/gin"
)

// CaseHandler handles HTTP requests for cases
type CaseHandler struct {
	caseService *service.CaseService
	log         *logger.Logger
}

// NewCaseHandler creates a new case handler
func NewCaseHandler(caseService *service.CaseService, log *logger.Logger) *CaseHandler {
	return &CaseHandler{caseService: caseService, log: log.With("handler", "CaseHandler")}
}

// CreateCaseRequest represents the request body for creating a case
type CreateCaseRequest struct {
	Title         string  `json:"title" binding:"required,max=500"`
	LegalArea     string  `json:"legal_area" binding:"max=50"`
	Description   *string `json:"description"`
	ProcessNumber *string `json:"process_number" binding:"omitempty,max=50"`
}

// CreateCase handles POST /api/v1/cases
func (h *CaseHandler) CreateCase(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req CreateCaseRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.caseService.CreateCase(c.Request.Context(), service.CreateCaseRequest{
		UserID:        userID,
		LegalArea:     strings.TrimSpace(req.LegalArea),
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		ProcessNumber: req.ProcessNumber,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, created)
}

// ListCases handles GET /api/v1/cases
func (h *CaseHandler) ListCases(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)
	req := service.ListCasesRequest{UserID: userID, Limit: limit, Offset: offset}
	if area := c.Query("legal_area"); area != "" {
		req.LegalArea = &area
	}

	cases, err := h.caseService.ListCases(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, cases)
}

// GetCase handles GET /api/v1/cases/:id
func (h *CaseHandler) GetCase(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	found, err := h.caseService.GetCase(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, found)
}

// UpdateCaseRequest represents the request body for a partial case update
type UpdateCaseRequest struct {
	Title         *string `json:"title" binding:"omitempty,min=1,max=500"`
	Description   *string `json:"description"`
	ProcessNumber *string `json:"process_number" binding:"omitempty,max=50"`
}

// UpdateCase handles PATCH /api/v1/cases/:id
func (h *CaseHandler) UpdateCase(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateCaseRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.caseService.UpdateCase(c.Request.Context(), service.UpdateCaseRequest{
		ID:            id,
		UserID:        userID,
		Title:         req.Title,
		Description:   req.Description,
		ProcessNumber: req.ProcessNumber,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, updated)
}

// DeleteCase handles DELETE /api/v1/cases/:id
func (h *CaseHandler) DeleteCase(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.caseService.DeleteCase(c.Request.Context(), id, userID); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}
