package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"signal-bot-backend/internal/services"
)

// AuthHandler exchanges the static admin token for a JWT the dashboard
// can keep using.
type AuthHandler struct {
	jwtService *services.JWTService
	adminToken string
	ownerID    int64
}

func NewAuthHandler(jwtService *services.JWTService, adminToken string, ownerID int64) *AuthHandler {
	return &AuthHandler{
		jwtService: jwtService,
		adminToken: adminToken,
		ownerID:    ownerID,
	}
}

type ownerAuthRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *AuthHandler) Authenticate(c *gin.Context) {
	var req ownerAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token required"})
		return
	}

	if h.adminToken == "" ||
		subtle.ConstantTimeCompare([]byte(req.Token), []byte(h.adminToken)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid admin token"})
		return
	}

	token, err := h.jwtService.GenerateToken(h.ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
