package handlers

import (
	"io"
	"net/http"

	"lexdraft-backend/constitution"
	"lexdraft-backend/logger"
	"lexdraft-backend/pipeline"
	"lexdraft-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GenerationHandler streams pipeline runs over SSE
type GenerationHandler struct {
	documentService *service.DocumentService
	pipeline        *pipeline.Pipeline
	log             *logger.Logger
}

// NewGenerationHandler creates a new generation handler
func NewGenerationHandler(documentService *service.DocumentService, p *pipeline.Pipeline, log *logger.Logger) *GenerationHandler {
	return &GenerationHandler{
		documentService: documentService,
		pipeline:        p,
		log:             log.With("handler", "GenerationHandler"),
	}
}

// GenerateRequest represents the request body for a generation run
type GenerateRequest struct {
	DocumentID        *uuid.UUID        `json:"document_id"`
	AgentType         string            `json:"agent_type" binding:"required"`
	Facts             []string          `json:"fatos_principais" binding:"required,min=1"`
	Requests          []string          `json:"pedidos" binding:"required,min=1"`
	ClaimValue        *float64          `json:"valor_causa" binding:"omitempty,gte=0"`
	Parties           map[string]string `json:"partes"`
	AdditionalContext string            `json:"contexto_adicional"`
}

// Generate handles POST /api/v1/documents/:id/generate.
// Ownership is checked before the stream opens so failures stay plain JSON;
// after that every outcome, including errors, arrives as an SSE event.
func (h *GenerationHandler) Generate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	documentID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req GenerateRequest
	if !bindChecked(c, h.log, constitution.OperationGenerate, &req) {
		return
	}
	if req.DocumentID != nil && *req.DocumentID != documentID {
		respondFailure(c, http.StatusBadRequest, "INVALID_REQUEST", "document_id no path deve coincidir com body")
		return
	}
	if _, err := h.documentService.GetDocument(c.Request.Context(), documentID, userID); err != nil {
		respondError(c, h.log, err)
		return
	}

	events, errc := h.pipeline.Stream(c.Request.Context(), pipeline.Input{
		DocumentID:        documentID,
		AgentType:         req.AgentType,
		Facts:             req.Facts,
		Requests:          req.Requests,
		ClaimValue:        req.ClaimValue,
		Parties:           req.Parties,
		AdditionalContext: req.AdditionalContext,
	}, userID)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			h.log.Info("Client disconnected during generation", "document_id", documentID)
			return
		case e, ok := <-events:
			if !ok {
				if err := <-errc; err != nil {
					h.log.Warn("Generation failed", "document_id", documentID, "error", err)
				}
				return
			}
			frame, err := e.SSE()
			if err != nil {
				h.log.Error("Failed to encode event", "event", string(e.Type), "error", err)
				continue
			}
			if _, err := io.WriteString(c.Writer, frame); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}
