package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studentnest/internal/models"
	"studentnest/internal/telegram"
)

func (h *Handler) ListNotifications(c *gin.Context) {
	// The store applies the default and the cap
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = 0
	}

	userID := actor(c).UserID
	notifications, err := h.notifications.List(c.Request.Context(), userID, limit)
	if err != nil {
		h.respondError(c, err, "Failed to list notifications")
		return
	}
	unread, err := h.notifications.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err, "Failed to count notifications")
		return
	}

	c.JSON(http.StatusOK, models.NotificationFeed{UnreadCount: unread, Notifications: notifications})
}

func (h *Handler) GetNotificationFeed(c *gin.Context) {
	feed, err := h.notifications.Feed(c.Request.Context(), actor(c).UserID)
	if err != nil {
		h.respondError(c, err, "Failed to get notifications")
		return
	}

	c.JSON(http.StatusOK, feed)
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), actor(c).UserID, id); err != nil {
		h.respondError(c, err, "Failed to mark notification read")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	changed, err := h.notifications.MarkAllRead(c.Request.Context(), actor(c).UserID)
	if err != nil {
		h.respondError(c, err, "Failed to mark notifications read")
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": changed})
}

// TestTelegramConfig sends a sample notification through the configured
// Telegram chat
func (h *Handler) TestTelegramConfig(c *gin.Context) {
	if !actor(c).IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Administrators only"})
		return
	}
	if h.telegramService == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Telegram is not configured or is disabled"})
		return
	}

	sample := &models.Notification{
		UserID:  actor(c).UserID,
		Type:    models.NotifyBookingRequest,
		Title:   "New Booking Request",
		Message: "🔔 Test notification from StudentNest. If you see this message, your Telegram configuration is working correctly!",
	}
	if err := h.telegramService.SendMessage(c.Request.Context(), telegram.FormatNotification(sample)); err != nil {
		h.logger.WithError(err).Error("Failed to send test notification")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Test notification sent successfully"})
}
