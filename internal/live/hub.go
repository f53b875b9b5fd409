package live

import (
	"sync"

	"github.com/google/uuid"
	"github.com/juju/loggo"
	"github.com/juju/pubsub/v2"

	"github.com/himansu2198/Job-Listing-Portal/internal/metrics"
)

var logger = loggo.GetLogger("jobportal.live")

// Session is one connected client
type Session interface {
	ID() string
	// Send must not block for long, the hub calls it from its delivery goroutine
	Send(Event) error
}

// EventPublisher routes events to every session joined for a user
type EventPublisher interface {
	Join(s Session, userID uuid.UUID)
	Leave(sessionID string)
	Publish(userID uuid.UUID, e Event)
}

type membership struct {
	userID      uuid.UUID
	unsubscribe func()
}

// Hub is the EventPublisher backed by a pubsub.SimpleHub with one topic per user.
// The registry lock is held only while the membership map changes.
type Hub struct {
	hub     *pubsub.SimpleHub
	metrics *metrics.Collector

	mu       sync.Mutex
	sessions map[string]membership
}

// NewHub return empty hub. collector may be nil.
func NewHub(collector *metrics.Collector) *Hub {
	return &Hub{
		hub: pubsub.NewSimpleHub(&pubsub.SimpleHubConfig{
			Logger: loggo.GetLogger("jobportal.live.hub"),
		}),
		metrics:  collector,
		sessions: make(map[string]membership),
	}
}

func topic(userID uuid.UUID) string {
	return "user." + userID.String()
}

// Join subscribe s to events of userID. Joining again moves the session to the new user.
func (h *Hub) Join(s Session, userID uuid.UUID) {
	unsubscribe := h.hub.Subscribe(topic(userID), func(_ string, data interface{}) {
		e, ok := data.(Event)
		if !ok {
			logger.Errorf("unexpected live payload %T", data)
			return
		}
		if err := s.Send(e); err != nil {
			h.metrics.LiveEventDropped()
			logger.Debugf("session %s missed %q event: %v", s.ID(), e.Name, err)
		}
	})

	h.mu.Lock()
	old, rejoin := h.sessions[s.ID()]
	h.sessions[s.ID()] = membership{userID: userID, unsubscribe: unsubscribe}
	count := len(h.sessions)
	h.mu.Unlock()

	if rejoin {
		old.unsubscribe()
	}
	h.metrics.SetLiveSessions(count)
	logger.Debugf("session %s joined user %s", s.ID(), userID)
}

// Leave drop the session, unknown ids are ignored
func (h *Hub) Leave(sessionID string) {
	h.mu.Lock()
	m, ok := h.sessions[sessionID]
	delete(h.sessions, sessionID)
	count := len(h.sessions)
	h.mu.Unlock()

	if !ok {
		return
	}
	m.unsubscribe()
	h.metrics.SetLiveSessions(count)
	logger.Debugf("session %s left", sessionID)
}

// Publish deliver e to every session of userID, nothing happens when there is none
func (h *Hub) Publish(userID uuid.UUID, e Event) {
	h.hub.Publish(topic(userID), e)
	h.metrics.LiveEventPublished()
}

// SessionCount return number of joined sessions
func (h *Hub) SessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// NopPublisher discards every event
type NopPublisher struct{}

// Join implements EventPublisher
func (NopPublisher) Join(Session, uuid.UUID) {}

// Leave implements EventPublisher
func (NopPublisher) Leave(string) {}

// Publish implements EventPublisher
func (NopPublisher) Publish(uuid.UUID, Event) {}

var (
	_ EventPublisher = (*Hub)(nil)
	_ EventPublisher = NopPublisher{}
)
