package live

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/juju/errors"

	"github.com/himansu2198/Job-Listing-Portal/internal/model"
	"github.com/himansu2198/Job-Listing-Portal/internal/utilities"
)

const (
	defaultWriteWait  = 10 * time.Second
	defaultPongWait   = 60 * time.Second
	defaultSendBuffer = 16
	maxMessageSize    = 4096
)

var (
	errSessionClosed = errors.ConstError("session closed")
	errBufferFull    = errors.ConstError("send buffer full")
)

// HandlerConfig tunes the websocket endpoint, zero values take defaults
type HandlerConfig struct {
	WriteWait  time.Duration
	PongWait   time.Duration
	SendBuffer int
	// AllowedOrigins restricts the Origin header of the upgrade request. Empty allows any origin.
	AllowedOrigins []string
}

func (c HandlerConfig) withDefaults() HandlerConfig {
	if c.WriteWait <= 0 {
		c.WriteWait = defaultWriteWait
	}
	if c.PongWait <= 0 {
		c.PongWait = defaultPongWait
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = defaultSendBuffer
	}
	return c
}

// pingPeriod must be shorter than PongWait so the peer can answer in time
func (c HandlerConfig) pingPeriod() time.Duration {
	return c.PongWait * 9 / 10
}

// Handler upgrade the request to a websocket and serve one live session.
// It must run after RequireAuth.
func Handler(pub EventPublisher, cfg HandlerConfig) gin.HandlerFunc {
	cfg = cfg.withDefaults()
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return len(cfg.AllowedOrigins) == 0 || origin == "" || utilities.Contains(cfg.AllowedOrigins, origin)
		},
	}

	return func(c *gin.Context) {
		identity, err := utilities.ExtractIdentity(c)
		if err != nil {
			utilities.RespondError(c, err)
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Errorf("problem initiating websocket: %v", err)
			return
		}

		s := newSession(ws, cfg)
		go s.writeLoop()
		s.readLoop(pub, identity)

		pub.Leave(s.id)
		s.close()
		<-s.writerDone
	}
}

// session is a Session over one websocket connection.
// Only writeLoop writes to the socket.
type session struct {
	id  string
	ws  *websocket.Conn
	cfg HandlerConfig

	send       chan Event
	done       chan struct{}
	closeOnce  sync.Once
	writerDone chan struct{}
}

func newSession(ws *websocket.Conn, cfg HandlerConfig) *session {
	return &session{
		id:         uuid.NewString(),
		ws:         ws,
		cfg:        cfg,
		send:       make(chan Event, cfg.SendBuffer),
		done:       make(chan struct{}),
		writerDone: make(chan struct{}),
	}
}

// ID implements Session
func (s *session) ID() string {
	return s.id
}

// Send implements Session. It never blocks, a full buffer drops the event.
func (s *session) Send(e Event) error {
	select {
	case <-s.done:
		return errSessionClosed
	default:
	}
	select {
	case s.send <- e:
		return nil
	default:
		return errBufferFull
	}
}

func (s *session) close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *session) readLoop(pub EventPublisher, identity model.Identity) {
	s.ws.SetReadLimit(maxMessageSize)
	_ = s.ws.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	s.ws.SetPongHandler(func(string) error {
		return s.ws.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	for {
		var m clientMessage
		if err := s.ws.ReadJSON(&m); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debugf("session %s receive error: %v", s.id, err)
			}
			return
		}

		switch m.Event {
		case EventJoin:
			userID, err := uuid.Parse(m.UserID)
			if err != nil || userID != identity.ID {
				s.reply(ErrorEvent("cannot join another user's channel"))
				continue
			}
			pub.Join(s, userID)
			s.reply(Event{Name: EventJoined, Data: map[string]string{"userId": userID.String()}})
		case EventLeave:
			pub.Leave(s.id)
		default:
			s.reply(ErrorEvent("unknown event " + m.Event))
		}
	}
}

func (s *session) reply(e Event) {
	if err := s.Send(e); err != nil {
		logger.Debugf("session %s reply %q dropped: %v", s.id, e.Name, err)
	}
}

func (s *session) writeLoop() {
	ticker := time.NewTicker(s.cfg.pingPeriod())
	defer func() {
		ticker.Stop()
		_ = s.ws.Close()
		close(s.writerDone)
	}()

	for {
		select {
		case <-s.done:
			_ = s.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(s.cfg.WriteWait))
			return
		case <-ticker.C:
			if err := s.ws.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(s.cfg.WriteWait)); err != nil {
				logger.Debugf("failed to write ping: %s", err)
				s.close()
				return
			}
		case e := <-s.send:
			_ = s.ws.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
			if err := s.ws.WriteJSON(e); err != nil {
				logger.Debugf("session %s write error: %v", s.id, err)
				s.close()
				return
			}
		}
	}
}
