package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"surveyflow/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Handler handles WebSocket connections
type Handler struct {
	hub        *Hub
	authSvc    *service.AuthService
	sessionSvc *service.SessionService
	upgrader   websocket.Upgrader
	log        *zap.Logger
}

// NewHandler creates a new WebSocket handler. An empty or "*" origin list
// accepts any origin.
func NewHandler(hub *Hub, authSvc *service.AuthService, sessionSvc *service.SessionService, allowedOrigins []string, log *zap.Logger) *Handler {
	return &Handler{
		hub:        hub,
		authSvc:    authSvc,
		sessionSvc: sessionSvc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
		log: log.Named("ws"),
	}
}

func checkOrigin(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || len(set) == 0 || set[origin]
	}
}

// SessionWS handles GET /v1/ws/sessions/{sessionId}?token=...
func (h *Handler) SessionWS(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidateSessionToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	if claims.SessionID != sessionID {
		http.Error(w, "token not valid for this session", http.StatusForbidden)
		return
	}

	view, err := h.sessionSvc.View(sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	snapshot, err := json.Marshal(view)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	first, _ := json.Marshal(&Message{Type: MsgSessionState, Payload: snapshot})

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", zap.Error(err))
		return
	}

	conn := &Connection{
		SessionID: sessionID,
		Send:      make(chan []byte, 256),
	}
	conn.Send <- first

	h.hub.Register(conn)

	h.log.Info("connected", zap.String("session_id", sessionID))

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := wsConn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("read failed", zap.String("session_id", conn.SessionID), zap.Error(err))
			}
			return
		}
		// Clients only listen; anything they send is discarded.
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
