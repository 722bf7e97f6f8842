package transport

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/frostlabs/frostgate/internal/dapp"
	"github.com/frostlabs/frostgate/internal/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second

	maxMessageSize = 1 << 20 // 1 MiB
)

// inboundFrame is one request from a dApp over the socket.
type inboundFrame struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
	Peer   dapp.PeerMeta   `json:"peer,omitempty"`
}

// outboundFrame is one response to a dApp.
type outboundFrame struct {
	ID     uint64      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  *dapp.Error `json:"error,omitempty"`
}

// conn is one live WebSocket connection.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex // guards writes
}

func (c *conn) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(v)
}

// Server accepts dApp WebSocket connections and routes their requests
// into the pipeline. It implements the pipeline's Responder and the
// session handler's SessionApprover.
type Server struct {
	upgrader websocket.Upgrader
	sessions *SessionStore

	// pipeline is set after construction; the pipeline needs the server
	// as its responder first.
	pipeline *dapp.Pipeline

	mu    sync.RWMutex
	conns map[string]*conn
}

// NewServer creates a dApp transport over the given session store.
func NewServer(sessions *SessionStore) *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Origin enforcement happens per-method in the pipeline;
			// the socket itself accepts any dApp.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sessions: sessions,
		conns:    make(map[string]*conn),
	}
}

// SetPipeline attaches the request pipeline. Must be called before the
// server accepts connections.
func (s *Server) SetPipeline(p *dapp.Pipeline) {
	s.pipeline = p
}

// ServeHTTP upgrades a dApp connection and pumps its requests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Transport.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = newSessionID()
	}
	origin := r.Header.Get("Origin")

	c := &conn{ws: ws}
	s.mu.Lock()
	s.conns[sessionID] = c
	s.mu.Unlock()

	log.Transport.Info().
		Str("session", sessionID).
		Str("origin", origin).
		Msg("dapp connected")

	go s.pingLoop(c, sessionID)
	s.readLoop(r.Context(), c, sessionID, origin)
}

func (s *Server) readLoop(ctx context.Context, c *conn, sessionID, origin string) {
	defer s.dropConn(sessionID, c)

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var frame inboundFrame
		if err := c.ws.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Transport.Warn().Str("session", sessionID).Err(err).Msg("read error")
			}
			return
		}

		if frame.Method == "" {
			c.writeJSON(outboundFrame{
				ID:    frame.ID,
				Error: dapp.ErrInvalidParams("method is required"),
			})
			continue
		}

		req := &dapp.Request{
			ID:        frame.ID,
			SessionID: sessionID,
			Method:    frame.Method,
			Params:    frame.Params,
			Peer:      frame.Peer,
			Origin:    origin,
			Received:  time.Now(),
		}
		s.pipeline.HandleRequest(ctx, req)
	}
}

func (s *Server) pingLoop(c *conn, sessionID string) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for range ticker.C {
		c.mu.Lock()
		c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		err := c.ws.WriteMessage(websocket.PingMessage, nil)
		c.mu.Unlock()
		if err != nil {
			return
		}
	}
}

func (s *Server) dropConn(sessionID string, c *conn) {
	s.mu.Lock()
	if s.conns[sessionID] == c {
		delete(s.conns, sessionID)
	}
	s.mu.Unlock()
	c.ws.Close()

	// Requests parked for this session can never be answered; clear them
	// so they stop showing up on the approval surface.
	if n := s.pipeline.DropSession(context.Background(), sessionID); n > 0 {
		log.Transport.Info().
			Str("session", sessionID).
			Int("dropped", n).
			Msg("pending requests dropped with session")
	}
	log.Transport.Info().Str("session", sessionID).Msg("dapp disconnected")
}

// SendResult delivers a successful response to a session.
func (s *Server) SendResult(sessionID string, reqID uint64, result interface{}) {
	s.send(sessionID, outboundFrame{ID: reqID, Result: result})
}

// SendError delivers an error response to a session.
func (s *Server) SendError(sessionID string, reqID uint64, rpcErr *dapp.Error) {
	s.send(sessionID, outboundFrame{ID: reqID, Error: rpcErr})
}

func (s *Server) send(sessionID string, frame outboundFrame) {
	s.mu.RLock()
	c, ok := s.conns[sessionID]
	s.mu.RUnlock()
	if !ok {
		// The dApp went away while the request sat pending. The response
		// is dropped; the session record survives for reconnection.
		log.Transport.Warn().
			Str("session", sessionID).
			Uint64("req_id", frame.ID).
			Msg("response dropped, session disconnected")
		return
	}
	if err := c.writeJSON(frame); err != nil {
		log.Transport.Warn().Str("session", sessionID).Err(err).Msg("write failed")
	}
}

// ApproveSession persists a session as approved.
func (s *Server) ApproveSession(sessionID string, peer dapp.PeerMeta) error {
	now := time.Now().UTC()
	return s.sessions.Save(&SessionRecord{
		ID:         sessionID,
		Peer:       peer,
		Approved:   true,
		ApprovedAt: now,
		CreatedAt:  now,
	})
}

// RejectSession removes any record of a session.
func (s *Server) RejectSession(sessionID string) error {
	return s.sessions.Delete(sessionID)
}

// Close disconnects all sessions.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.conns {
		c.ws.Close()
		delete(s.conns, id)
	}
}

// newSessionID generates a random 16-byte hex session identifier.
func newSessionID() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))[:32]
	}
	return hex.EncodeToString(buf[:])
}
