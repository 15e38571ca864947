package handlers

import (
	"errors"
	"net/http"

	"github.com/GabKongroo/NothingSpecial/internal/logger"
	"github.com/GabKongroo/NothingSpecial/internal/middleware"
	"github.com/GabKongroo/NothingSpecial/internal/services"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService  *services.AuthService
	auditService services.Auditor
}

func NewAuthHandler(authService *services.AuthService, auditService services.Auditor) *AuthHandler {
	return &AuthHandler{authService: authService, auditService: auditService}
}

// Login exchanges the operator password for an access token
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, expiresAt, err := h.authService.Login(req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			logger.Warn("failed operator login", logger.String("ip", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	if h.auditService != nil {
		_ = h.auditService.LogAction(c.Request.Context(), services.OperatorSubject, "login", "session", "", nil, c.ClientIP())
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_at":   expiresAt.UTC(),
	})
}

// Logout revokes the token used for this request
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(middleware.TokenKey)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}
