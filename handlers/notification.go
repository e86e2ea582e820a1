package handlers

import (
	"fmt"
	"net/http"
	"time"

	"velora/models"
	"velora/services/notification"
	"velora/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sseHeartbeatInterval = 25 * time.Second

// NotificationHandler exposes the notification feed, the SSE stream and
// web push subscription management.
type NotificationHandler struct {
	Notifications notification.NotificationService
}

func NewNotificationHandler(n notification.NotificationService) *NotificationHandler {
	return &NotificationHandler{Notifications: n}
}

// StreamHandler is the SSE endpoint. It holds the connection open and
// relays the caller's notification channel; heartbeat comments keep
// proxies from closing the stream.
func (h *NotificationHandler) StreamHandler(c *gin.Context) {
	userID := c.GetString("userID")

	ch, cancel := h.Notifications.Subscribe(userID)
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	heartbeat := time.NewTicker(sseHeartbeatInterval)
	defer heartbeat.Stop()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			return
		case payload, ok := <-ch:
			if !ok {
				// Dropped as a slow consumer; the client reconnects.
				return
			}
			fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
			c.Writer.Flush()
		case <-heartbeat.C:
			fmt.Fprint(c.Writer, ": ping\n\n")
			c.Writer.Flush()
		}
	}
}

// ListHandler returns the caller's recent notifications.
func (h *NotificationHandler) ListHandler(c *gin.Context) {
	userID := c.GetString("userID")
	unreadOnly := c.Query("unread") == "true"

	items, err := h.Notifications.ListNotifications(userID, unreadOnly, 50)
	if err != nil {
		utils.GetLogger().Error("Failed to list notifications", zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items, "count": len(items)})
}

// MarkReadHandler marks one notification as read.
func (h *NotificationHandler) MarkReadHandler(c *gin.Context) {
	if err := h.Notifications.MarkRead(c.GetString("userID"), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Marked read"})
}

// MarkAllReadHandler marks everything as read.
func (h *NotificationHandler) MarkAllReadHandler(c *gin.Context) {
	if err := h.Notifications.MarkAllRead(c.GetString("userID")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All marked read"})
}

// SubscribePushHandler stores a browser push subscription.
func (h *NotificationHandler) SubscribePushHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		Endpoint string `json:"endpoint" binding:"required"`
		Keys     struct {
			P256dh string `json:"p256dh" binding:"required"`
			Auth   string `json:"auth" binding:"required"`
		} `json:"keys" binding:"required"`
		DeviceName string `json:"deviceName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	sub := &models.PushSubscription{
		UserID:     userID,
		Endpoint:   req.Endpoint,
		P256dhKey:  req.Keys.P256dh,
		AuthKey:    req.Keys.Auth,
		DeviceName: req.DeviceName,
	}
	if err := h.Notifications.SavePushSubscription(sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Subscribed"})
}

// UnsubscribePushHandler removes a browser push subscription.
func (h *NotificationHandler) UnsubscribePushHandler(c *gin.Context) {
	var req struct {
		Endpoint string `json:"endpoint" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.Notifications.DeletePushSubscription(req.Endpoint); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unsubscribed"})
}
