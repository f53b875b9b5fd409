// Package notification is the durable per-user ledger of messages about
// application state changes.
package notification

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/loggo"

	"github.com/himansu2198/Job-Listing-Portal/internal/apperr"
	"github.com/himansu2198/Job-Listing-Portal/internal/metrics"
	"github.com/himansu2198/Job-Listing-Portal/internal/model"
)

var logger = loggo.GetLogger("jobportal.notification")

// Store is the persistence used by Ledger
type Store interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	FindNotificationByID(ctx context.Context, id uint) (model.Notification, error)
	ListNotificationsForUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id uint) error
	CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Ledger records notifications and answers queries about them
type Ledger struct {
	store   Store
	clock   clock.Clock
	metrics *metrics.Collector
}

// NewLedger return Ledger. clk may be nil, wall clock is used then. collector may be nil.
func NewLedger(store Store, clk clock.Clock, collector *metrics.Collector) *Ledger {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Ledger{store: store, clock: clk, metrics: collector}
}

// Create append an unread notification for userID
func (l *Ledger) Create(ctx context.Context, userID uuid.UUID, message string) (model.Notification, error) {
	if userID == uuid.Nil {
		return model.Notification{}, apperr.New(apperr.ValidationError, "notification recipient is required")
	}
	if strings.TrimSpace(message) == "" {
		return model.Notification{}, apperr.New(apperr.ValidationError, "notification message is required")
	}

	n := model.Notification{
		UserID:    userID,
		Message:   message,
		IsRead:    false,
		CreatedAt: l.clock.Now(),
	}
	if err := l.store.CreateNotification(ctx, &n); err != nil {
		l.metrics.NotificationFailed()
		return model.Notification{}, err
	}
	l.metrics.NotificationCreated()
	logger.Debugf("notification %d created for %s", n.ID, userID)
	return n, nil
}

// ListForUser return notifications of userID, newest first
func (l *Ledger) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	return l.store.ListNotificationsForUser(ctx, userID)
}

// MarkRead flag notification id as read. Only its owner may do so; marking twice is fine.
func (l *Ledger) MarkRead(ctx context.Context, id uint, callerID uuid.UUID) (model.Notification, error) {
	n, err := l.store.FindNotificationByID(ctx, id)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return model.Notification{}, apperr.New(apperr.NotFound, "Notification not found")
		}
		return model.Notification{}, err
	}
	if n.UserID != callerID {
		return model.Notification{}, apperr.New(apperr.Forbidden, "Not allowed to modify this notification")
	}
	if n.IsRead {
		return n, nil
	}

	if err := l.store.MarkNotificationRead(ctx, id); err != nil {
		return model.Notification{}, err
	}
	n.IsRead = true
	return n, nil
}

// UnreadCount return number of unread notifications of userID
func (l *Ledger) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return l.store.CountUnreadNotifications(ctx, userID)
}
