package netsync

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/udisondev/skirmish/internal/model"
)

// InboundKind tells the tick loop what a client asked for.
type InboundKind uint8

const (
	InboundJoin InboundKind = iota
	InboundAbility
	InboundSetClass
	InboundLeave
)

// Client is the tick loop's view of a connection.
type Client interface {
	IDMapper
	Player() string
	Actor() model.EntityID
	Bind(actor model.EntityID, class string)
	Reject(seq uint64, err error)
	Closed() bool
}

// Inbound is a client request handed from a connection goroutine to the
// simulation tick.
type Inbound struct {
	Kind    InboundKind
	Session Client
	Player  string
	Ability AbilityRequest
	Class   string
}

// Session is one connected client.
// Outbound messages are queued and written by writePump; Send never blocks.
type Session struct {
	player string
	conn   *websocket.Conn
	send   chan Envelope
	done   chan struct{}
	once   sync.Once
	actor  atomic.Uint32

	writeTimeout time.Duration
	pingPeriod   time.Duration
}

var _ Client = (*Session)(nil)

func newSession(player string, conn *websocket.Conn, cfg HandlerConfig) *Session {
	return &Session{
		player:       player,
		conn:         conn,
		send:         make(chan Envelope, cfg.SendQueueSize),
		done:         make(chan struct{}),
		writeTimeout: cfg.WriteTimeout,
		pingPeriod:   cfg.ReadTimeout * 9 / 10,
	}
}

// Player returns the name the client joined with.
func (s *Session) Player() string { return s.player }

// Actor returns the actor bound to the session, InvalidEntity before join.
func (s *Session) Actor() model.EntityID {
	return model.EntityID(s.actor.Load())
}

// Bind attaches the session to actor and tells the client.
func (s *Session) Bind(actor model.EntityID, class string) {
	s.actor.Store(uint32(actor))
	s.Send(TypeJoined, Joined{Actor: actor, Class: class})
}

// MapID implements IDMapper.
func (s *Session) MapID(m IDMapping) {
	s.Send(TypeIDMapping, m)
}

// Reject tells the client its request changed nothing.
func (s *Session) Reject(seq uint64, err error) {
	s.Send(TypeReject, Reject{Seq: seq, Reason: err.Error()})
}

// Send queues a message. Dropped with a warning when the client is slow
// or already gone.
func (s *Session) Send(typ string, payload any) bool {
	env, err := NewEnvelope(typ, payload)
	if err != nil {
		slog.Error("encoding outbound message", "player", s.player, "type", typ, "error", err)
		return false
	}
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- env:
		return true
	default:
		slog.Warn("send queue full, dropping message", "player", s.player, "type", typ)
		return false
	}
}

// Closed reports whether the connection is gone.
func (s *Session) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Session) close() {
	s.once.Do(func() { close(s.done) })
}

// writePump пишет исходящие сообщения и пинги, пока сессия жива.
func (s *Session) writePump() {
	ticker := time.NewTicker(s.pingPeriod)
	defer func() {
		ticker.Stop()
		if err := s.conn.Close(); err != nil {
			slog.Debug("closing websocket", "player", s.player, "error", err)
		}
	}()

	for {
		select {
		case env := <-s.send:
			if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
				slog.Warn("failed to set write deadline", "player", s.player, "error", err)
			}
			data, err := json.Marshal(env)
			if err != nil {
				slog.Error("encoding envelope", "player", s.player, "error", err)
				continue
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Debug("write failed", "player", s.player, "error", err)
				s.close()
				return
			}

		case <-ticker.C:
			if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
				slog.Warn("failed to set ping write deadline", "player", s.player, "error", err)
			}
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.Debug("ping failed", "player", s.player, "error", err)
				s.close()
				return
			}

		case <-s.done:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
