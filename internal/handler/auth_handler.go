package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"martapp/kiosk/internal/handler/middleware"
	"martapp/kiosk/internal/service"
	"martapp/kiosk/pkg/response"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Service exposes the auth service for the session middleware.
func (h *AuthHandler) Service() service.AuthService { return h.authService }

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	sessionID, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid credentials")
			return
		}
		response.InternalError(c, "login failed")
		return
	}

	response.Success(c, gin.H{"session_id": sessionID})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID := c.GetHeader(middleware.SessionHeader)
	if sessionID == "" {
		response.BadRequest(c, "missing session")
		return
	}
	if err := h.authService.Logout(c.Request.Context(), sessionID); err != nil {
		response.InternalError(c, "logout failed")
		return
	}
	response.Success(c, nil)
}
