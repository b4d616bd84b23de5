package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"lexdraft-backend/constitution"
	"lexdraft-backend/logger"
	"lexdraft-backend/metrics"
	"lexdraft-backend/middleware"
	"lexdraft-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

var notFoundErrors = []error{
	service.ErrCaseNotFound,
	service.ErrDocumentNotFound,
	service.ErrVersionNotFound,
	service.ErrAssertionNotFound,
	service.ErrSourceNotFound,
	service.ErrLinkNotFound,
	service.ErrRenderingNotFound,
	service.ErrAttachmentNotFound,
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondFailure(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondError maps a service error onto the HTTP envelope
func respondError(c *gin.Context, log *logger.Logger, err error) {
	if pv, ok := constitution.AsPolicyViolation(err); ok {
		log.Error("constitution violation", "law", string(pv.Law), "message", pv.Message, "path", c.FullPath())
		metrics.ConstitutionViolations.WithLabelValues("policy", string(pv.Law)).Inc()
		body := gin.H{
			"code":    "CONSTITUTION_VIOLATION",
			"message": pv.Message,
			"law":     pv.Law,
		}
		if len(pv.Details) > 0 {
			body["details"] = pv.Details
		}
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": body})
		return
	}

	if dv, ok := constitution.AsDomainViolation(err); ok {
		metrics.ConstitutionViolations.WithLabelValues("domain", dv.Code).Inc()
		body := gin.H{
			"code":    dv.Code,
			"message": dv.Message,
		}
		if dv.Hint != "" {
			body["hint"] = dv.Hint
		}
		if dv.EntityID != "" {
			body["details"] = gin.H{"entity_id": dv.EntityID}
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": body})
		return
	}

	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			respondFailure(c, http.StatusNotFound, "NOT_FOUND", err.Error())
			return
		}
	}

	switch {
	case errors.Is(err, service.ErrCaseHasDocuments):
		respondFailure(c, http.StatusConflict, "CASE_HAS_DOCUMENTS", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		respondFailure(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
	case errors.Is(err, service.ErrStorageNotSet):
		respondFailure(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", err.Error())
	default:
		log.Error("request failed", "path", c.FullPath(), "error", err)
		respondFailure(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Erro interno")
	}
}

// respondBindError reports a malformed or invalid body as 400
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Dados inválidos",
				"details": fields,
			},
		})
		return
	}
	respondFailure(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
}

// bindJSON decodes and validates the body
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

// bindChecked runs the payload-level rules on the raw body before binding it
func bindChecked(c *gin.Context, log *logger.Logger, operation string, req interface{}) bool {
	body, err := c.GetRawData()
	if err != nil {
		respondFailure(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return false
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		respondFailure(c, http.StatusBadRequest, "INVALID_REQUEST", "Corpo deve ser um objeto JSON")
		return false
	}
	if err := constitution.CheckPayload(payload, operation); err != nil {
		respondError(c, log, err)
		return false
	}

	if err := binding.JSON.BindBody(body, req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		respondFailure(c, http.StatusBadRequest, "INVALID_ID", fmt.Sprintf("Invalid %s format", param))
		return uuid.Nil, false
	}
	return id, true
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		respondFailure(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token")
		return uuid.Nil, false
	}
	return id, true
}

// pagination reads limit and offset, clamping limit to maxPageSize
func pagination(c *gin.Context) (limit, offset int) {
	limit = queryInt(c, "limit", defaultPageSize)
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset = queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
