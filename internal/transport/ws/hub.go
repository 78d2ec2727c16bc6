package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// MessageType defines the type of WebSocket message
type MessageType string

// MsgSessionState carries the full view; it is the first message on every
// connection. The other message types are the session events.
const MsgSessionState MessageType = "session_state"

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Connection represents a WebSocket connection watching one session
type Connection struct {
	SessionID string
	Send      chan []byte
}

// BroadcastMessage is a message for every connection of a session. Close
// disconnects them instead, after everything queued before it is delivered.
type BroadcastMessage struct {
	SessionID string
	Message   *Message
	Close     bool
}

// Hub fans session events out to the connections watching each session
type Hub struct {
	// sessionID -> connections
	conns map[string]map[*Connection]struct{}
	mu    sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage

	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once

	log *zap.Logger
}

// NewHub creates a new WebSocket hub and starts its loop. Close stops it.
func NewHub(log *zap.Logger) *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
		log:        log.Named("ws"),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	defer close(h.stopped)
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for id, set := range h.conns {
				for conn := range set {
					close(conn.Send)
				}
				delete(h.conns, id)
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.SessionID] == nil {
				h.conns[conn.SessionID] = make(map[*Connection]struct{})
			}
			h.conns[conn.SessionID][conn] = struct{}{}
			h.mu.Unlock()
			h.log.Debug("connection registered", zap.String("session_id", conn.SessionID))

		case conn := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.conns[conn.SessionID]; ok {
				if _, ok := set[conn]; ok {
					delete(set, conn)
					close(conn.Send)
					if len(set) == 0 {
						delete(h.conns, conn.SessionID)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			if msg.Close {
				h.mu.Lock()
				for conn := range h.conns[msg.SessionID] {
					close(conn.Send)
				}
				delete(h.conns, msg.SessionID)
				h.mu.Unlock()
				continue
			}

			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.log.Error("marshal message", zap.Error(err))
				continue
			}
			h.mu.RLock()
			for conn := range h.conns[msg.SessionID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// BroadcastToSession sends a message to every connection of a session (implements service.Broadcaster)
func (h *Hub) BroadcastToSession(sessionID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("marshal payload", zap.String("type", msgType), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- &BroadcastMessage{
		SessionID: sessionID,
		Message:   &Message{Type: MessageType(msgType), Payload: data},
	}:
	case <-h.done:
	}
}

// DisconnectSession closes every connection of a session (implements service.Broadcaster)
func (h *Hub) DisconnectSession(sessionID string) {
	select {
	case h.broadcast <- &BroadcastMessage{SessionID: sessionID, Close: true}:
	case <-h.done:
	}
}

// Connections returns how many connections watch a session
func (h *Hub) Connections(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[sessionID])
}

// Close stops the hub and closes all connections.
func (h *Hub) Close() {
	h.stopOnce.Do(func() { close(h.done) })
	<-h.stopped
}
