package handlers

import (
	"net/http"

	"lexdraft-backend/agents"

	"github.com/gin-gonic/gin"
)

// AgentHandler exposes the agent catalog
type AgentHandler struct {
	registry *agents.Registry
}

// NewAgentHandler creates a new agent handler
func NewAgentHandler(registry *agents.Registry) *AgentHandler {
	return &AgentHandler{registry: registry}
}

// ListAgents handles GET /api/v1/agents
func (h *AgentHandler) ListAgents(c *gin.Context) {
	respond(c, http.StatusOK, h.registry.List())
}

// GetAgent handles GET /api/v1/agents/:id
func (h *AgentHandler) GetAgent(c *gin.Context) {
	a, ok := h.registry.Lookup(c.Param("id"))
	if !ok {
		respondFailure(c, http.StatusNotFound, "NOT_FOUND", "Agente não encontrado")
		return
	}
	respond(c, http.StatusOK, a.Info())
}
