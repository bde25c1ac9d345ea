package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"signal-bot-backend/internal/services"
)

// UserHandler exposes the admin workflow over HTTP, mirroring the
// owner-only Telegram commands.
type UserHandler struct {
	core *services.Core
}

func NewUserHandler(core *services.Core) *UserHandler {
	return &UserHandler{core: core}
}

func callerID(c *gin.Context) int64 {
	id, _ := c.Get("user_id")
	v, _ := id.(int64)
	return v
}

func writeCoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func targetID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return 0, false
	}
	return id, true
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.core.OnListUsers(callerID(c))
	if err != nil {
		writeCoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

func (h *UserHandler) Approve(c *gin.Context) {
	id, ok := targetID(c)
	if !ok {
		return
	}
	if err := h.core.OnApprove(callerID(c), id); err != nil {
		writeCoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User approved"})
}

func (h *UserHandler) Reject(c *gin.Context) {
	id, ok := targetID(c)
	if !ok {
		return
	}
	if err := h.core.OnReject(callerID(c), id); err != nil {
		writeCoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User rejected"})
}

type broadcastRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *UserHandler) Broadcast(c *gin.Context) {
	var req broadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text required"})
		return
	}

	report, err := h.core.OnBroadcast(callerID(c), req.Text)
	if err != nil {
		writeCoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        report.ID,
		"total":     report.Total,
		"delivered": report.Delivered,
		"failed":    report.Failed(),
		"failures":  report.Failures,
	})
}

type referralRequest struct {
	Link string `json:"link" binding:"required"`
}

func (h *UserHandler) SetReferral(c *gin.Context) {
	var req referralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Link required"})
		return
	}

	if err := h.core.OnSetReferral(callerID(c), req.Link); err != nil {
		writeCoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Referral link updated"})
}
