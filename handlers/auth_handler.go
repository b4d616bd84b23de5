package handlers

import (
	"net/http"

	"lexdraft-backend/logger"
	"lexdraft-backend/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles login
type AuthHandler struct {
	authService *service.AuthService
	log         *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log.With("handler", "AuthHandler")}
}

// LoginRequest represents the login body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.log.Info("User logged in", "user_id", result.User.ID)
	respond(c, http.StatusOK, result)
}
