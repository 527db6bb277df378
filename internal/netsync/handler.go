package netsync

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const maxMessageSize = 4096

// ErrServerBusy is sent back when the tick loop is not keeping up.
var ErrServerBusy = errors.New("server busy")

// HandlerConfig configures websocket sessions.
type HandlerConfig struct {
	WriteTimeout  time.Duration
	ReadTimeout   time.Duration
	SendQueueSize int
}

func (c HandlerConfig) withDefaults() HandlerConfig {
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 60 * time.Second
	}
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = 256
	}
	return c
}

// Handler upgrades HTTP connections and feeds client requests into inbox.
// The tick loop is the only reader of inbox.
type Handler struct {
	inbox    chan<- Inbound
	cfg      HandlerConfig
	upgrader websocket.Upgrader
}

// NewHandler creates a websocket handler.
func NewHandler(inbox chan<- Inbound, cfg HandlerConfig) *Handler {
	return &Handler{
		inbox: inbox,
		cfg:   cfg.withDefaults(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)
	h.extendDeadline(conn)
	conn.SetPongHandler(func(string) error {
		h.extendDeadline(conn)
		return nil
	})

	// 1. handshake: первое сообщение обязано быть join
	join, err := readJoin(conn)
	if err != nil {
		slog.Warn("handshake failed", "remote", r.RemoteAddr, "error", err)
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error())
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(h.cfg.WriteTimeout))
		_ = conn.Close()
		return
	}

	s := newSession(join.Player, conn, h.cfg)
	go s.writePump()

	if !h.forward(Inbound{Kind: InboundJoin, Session: s, Player: join.Player}) {
		s.Reject(0, ErrServerBusy)
		s.close()
		return
	}
	slog.Info("client connected", "player", join.Player, "remote", r.RemoteAddr)

	h.readLoop(s)

	s.close()
	h.leave(s)
	slog.Info("client disconnected", "player", s.player)
}

func (h *Handler) readLoop(s *Session) {
	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read failed", "player", s.player, "error", err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			slog.Warn("discarding malformed message", "player", s.player, "error", err)
			continue
		}

		in, err := decodeInbound(s, env)
		if err != nil {
			slog.Warn("rejecting request", "player", s.player, "type", env.Type, "error", err)
			s.Reject(0, err)
			continue
		}
		if !h.forward(in) {
			s.Reject(in.Ability.Seq, ErrServerBusy)
		}
	}
}

func decodeInbound(s *Session, env Envelope) (Inbound, error) {
	in := Inbound{Session: s, Player: s.player}
	switch env.Type {
	case TypeAbility:
		in.Kind = InboundAbility
		if err := env.Decode(&in.Ability); err != nil {
			return Inbound{}, err
		}
	case TypeSetClass:
		var req SetClassRequest
		if err := env.Decode(&req); err != nil {
			return Inbound{}, err
		}
		if req.Class == "" {
			return Inbound{}, fmt.Errorf("%w: empty class", ErrMalformedRequest)
		}
		in.Kind = InboundSetClass
		in.Class = req.Class
	default:
		return Inbound{}, fmt.Errorf("%w: unknown message type %q", ErrMalformedRequest, env.Type)
	}
	return in, nil
}

func readJoin(conn *websocket.Conn) (JoinRequest, error) {
	var env Envelope
	if err := conn.ReadJSON(&env); err != nil {
		return JoinRequest{}, fmt.Errorf("reading join: %w", err)
	}
	if env.Type != TypeJoin {
		return JoinRequest{}, fmt.Errorf("%w: expected join, got %q", ErrMalformedRequest, env.Type)
	}
	var join JoinRequest
	if err := env.Decode(&join); err != nil {
		return JoinRequest{}, err
	}
	if join.Player == "" {
		return JoinRequest{}, fmt.Errorf("%w: empty player", ErrMalformedRequest)
	}
	return join, nil
}

// forward hands in to the tick loop without blocking the read loop.
func (h *Handler) forward(in Inbound) bool {
	select {
	case h.inbox <- in:
		return true
	default:
		return false
	}
}

// leave must reach the tick loop or the actor stays in the world.
func (h *Handler) leave(s *Session) {
	timer := time.NewTimer(h.cfg.WriteTimeout)
	defer timer.Stop()
	select {
	case h.inbox <- Inbound{Kind: InboundLeave, Session: s, Player: s.player}:
	case <-timer.C:
		slog.Error("leave request lost", "player", s.player)
	}
}

func (h *Handler) extendDeadline(conn *websocket.Conn) {
	if err := conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout)); err != nil {
		slog.Warn("failed to set read deadline", "error", err)
	}
}
