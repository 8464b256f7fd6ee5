package debugger

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultPongWait = time.Minute
	writeTimeout    = 10 * time.Second
)

// Server upgrades HTTP requests to websocket connections, each served by its
// own Session.
type Server struct {
	upgrader    websocket.Upgrader
	logger      *slog.Logger
	sessionOpts []SessionOption
	pongWait    time.Duration
}

type ServerOption func(*Server)

func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPongWait sets how long a connection may stay silent, pongs included,
// before it is dropped. Pings go out at nine tenths of d.
func WithPongWait(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.pongWait = d
		}
	}
}

// WithSessionOptions applies opts to every session the server creates.
func WithSessionOptions(opts ...SessionOption) ServerOption {
	return func(s *Server) { s.sessionOpts = append(s.sessionOpts, opts...) }
}

func NewServer(opts ...ServerOption) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Local tool; editors connect from arbitrary origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		pongWait: defaultPongWait,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	s.handleConnection(conn)
}

// connection serializes writes; gorilla allows one concurrent writer.
type connection struct {
	conn   *websocket.Conn
	logger *slog.Logger

	mu  sync.Mutex
	seq int
}

func (c *connection) send(typ string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("encode message failed", "type", typ, "error", err)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(Message{Type: typ, Seq: c.seq, Payload: data}); err != nil {
		c.logger.Debug("write failed", "type", typ, "error", err)
	}
}

func (c *connection) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

// keepalive pings until ctx ends or a ping cannot be written.
func (c *connection) keepalive(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				c.logger.Debug("ping failed", "error", err)
				return
			}
		}
	}
}

func (c *connection) respond(req Message, err error, body any) {
	resp := ResponsePayload{RequestSeq: req.Seq, Command: req.Type, Success: err == nil, Body: body}
	if err != nil {
		resp.Message = err.Error()
	}
	c.send(EventResponse, resp)
}

func (s *Server) handleConnection(ws *websocket.Conn) {
	defer ws.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := &connection{conn: ws, logger: s.logger}
	session := NewSession(func(e Event) { conn.send(e.Type, e.Payload) }, append([]SessionOption{WithLogger(s.logger)}, s.sessionOpts...)...)
	defer session.Close()
	conn.logger = s.logger.With("session", session.ID)
	conn.logger.Info("debug connection established", "remote", ws.RemoteAddr().String())

	ws.SetReadDeadline(time.Now().Add(s.pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(s.pongWait))
		return nil
	})
	go conn.keepalive(ctx, s.pongWait*9/10)

	for {
		var msg Message
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				conn.logger.Warn("debug connection read failed", "error", err)
			} else {
				conn.logger.Info("debug connection closed")
			}
			return
		}
		ws.SetReadDeadline(time.Now().Add(s.pongWait))
		s.dispatch(ctx, conn, session, msg)
	}
}

func (s *Server) dispatch(ctx context.Context, conn *connection, session *Session, msg Message) {
	switch msg.Type {
	case RequestLaunch:
		var payload LaunchPayload
		if err := decodePayload(msg, &payload); err != nil {
			conn.respond(msg, err, nil)
			return
		}
		conn.respond(msg, session.Launch(ctx, []byte(payload.Document)), nil)
	case RequestSetBreakpoints:
		var payload BreakpointsPayload
		if err := decodePayload(msg, &payload); err != nil {
			conn.respond(msg, err, nil)
			return
		}
		session.SetBreakpoints(payload.Lines)
		conn.respond(msg, nil, payload)
	case RequestContinue:
		session.Continue()
		conn.respond(msg, nil, nil)
	case RequestStep:
		session.Step()
		conn.respond(msg, nil, nil)
	case RequestStop:
		session.Stop()
		conn.respond(msg, nil, nil)
	case RequestReset:
		session.Reset()
		conn.respond(msg, nil, nil)
	case RequestInput:
		var payload InputPayload
		if err := decodePayload(msg, &payload); err != nil {
			conn.respond(msg, err, nil)
			return
		}
		conn.respond(msg, session.Input(payload.Value), nil)
	case RequestSnapshot:
		conn.respond(msg, nil, session.Snapshot())
	default:
		conn.logger.Debug("unknown request", "type", msg.Type)
		conn.send(EventError, ErrorPayload{Code: "unknown_type", Message: "unknown message type: " + msg.Type})
	}
}

var errMissingPayload = errors.New("debugger: missing payload")

func decodePayload(msg Message, dst any) error {
	if len(msg.Payload) == 0 {
		return errMissingPayload
	}
	return json.Unmarshal(msg.Payload, dst)
}
