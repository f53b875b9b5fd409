// Package notification provides HTTP handlers over the notification ledger.
package notification

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/himansu2198/Job-Listing-Portal/internal/model"
	"github.com/himansu2198/Job-Listing-Portal/internal/utilities"
)

// Ledger is the notification ledger the handlers read and mark
type Ledger interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error)
	MarkRead(ctx context.Context, id uint, callerID uuid.UUID) (model.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

// NotificationController handles notification related endpoints
type NotificationController struct {
	Ledger Ledger
}

// NewNotificationController creates a new instance of NotificationController
func NewNotificationController(ledger Ledger) *NotificationController {
	return &NotificationController{Ledger: ledger}
}

// GetNotifications list the caller's notifications, newest first
func (nc *NotificationController) GetNotifications(c *gin.Context) {
	identity, err := utilities.ExtractIdentity(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	ns, err := nc.Ledger.ListForUser(c.Request.Context(), identity.ID)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": ns})
}

// MarkRead flag one of the caller's notifications as read
func (nc *NotificationController) MarkRead(c *gin.Context) {
	identity, err := utilities.ExtractIdentity(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	id, err := utilities.ParseIDParam(c, "id")
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	n, err := nc.Ledger.MarkRead(c.Request.Context(), id, identity.ID)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notification": n})
}

// UnreadCount return how many of the caller's notifications are unread
func (nc *NotificationController) UnreadCount(c *gin.Context) {
	identity, err := utilities.ExtractIdentity(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	count, err := nc.Ledger.UnreadCount(c.Request.Context(), identity.ID)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
