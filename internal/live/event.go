// Package live pushes notification events to connected clients.
// Delivery is best effort: a user without an open session simply misses
// the push and reads the notification from the ledger later.
package live

import (
	"time"

	"github.com/himansu2198/Job-Listing-Portal/internal/model"
)

// Event names on the wire
const (
	EventNotification = "notification"
	EventJoin         = "join"
	EventJoined       = "joined"
	EventLeave        = "leave"
	EventError        = "error"
)

// Event is a message sent to a client
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data,omitempty"`
}

// NotificationPayload is the data of a notification event
type NotificationPayload struct {
	ID        uint      `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationEvent build the event announcing n
func NotificationEvent(n model.Notification) Event {
	return Event{
		Name: EventNotification,
		Data: NotificationPayload{
			ID:        n.ID,
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
		},
	}
}

// ErrorEvent build an error event carrying message
func ErrorEvent(message string) Event {
	return Event{Name: EventError, Data: map[string]string{"message": message}}
}

// clientMessage is what a client sends over the channel
type clientMessage struct {
	Event  string `json:"event"`
	UserID string `json:"userId"`
}
