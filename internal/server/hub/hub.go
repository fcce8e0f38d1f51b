// Package hub fans server events out to connected clients over websockets.
// Connections are grouped per user: a broadcast reaches every live session
// of that user and nobody else.
package hub

import (
	"context"
	"sync"

	"github.com/avelichko/notekeeper/internal/logging"
	"github.com/avelichko/notekeeper/internal/server/notes"
	"github.com/gorilla/websocket"
)

// Message is the wire format of a push event. Note is present only for
// reminder-due events.
type Message struct {
	Type string      `json:"type"`
	Note *notes.Note `json:"note,omitempty"`
}

type client struct {
	userID string
	conn   *websocket.Conn
}

type broadcastReq struct {
	userID string
	msg    Message
}

type Hub struct {
	clients    map[*websocket.Conn]string
	byUser     map[string]map[*websocket.Conn]bool
	broadcast  chan broadcastReq
	register   chan client
	unregister chan *websocket.Conn
	logger     logging.Logger
	mu         sync.RWMutex
}

func New(logger logging.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]string),
		byUser:     make(map[string]map[*websocket.Conn]bool),
		broadcast:  make(chan broadcastReq, 256),
		register:   make(chan client),
		unregister: make(chan *websocket.Conn),
		logger:     logger,
	}
}

// Run owns the connection maps. It loops until ctx is cancelled, then
// closes every remaining connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.conn] = c.userID
			if h.byUser[c.userID] == nil {
				h.byUser[c.userID] = make(map[*websocket.Conn]bool)
			}
			h.byUser[c.userID][c.conn] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.drop(conn)

		case req := <-h.broadcast:
			h.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(h.byUser[req.userID]))
			for conn := range h.byUser[req.userID] {
				conns = append(conns, conn)
			}
			h.mu.RUnlock()

			for _, conn := range conns {
				if err := conn.WriteJSON(req.msg); err != nil {
					h.logger.Warn(ctx, "websocket write failed", "error", err)
					h.drop(conn)
				}
			}

		case <-ctx.Done():
			h.mu.Lock()
			for conn := range h.clients {
				conn.Close()
			}
			h.clients = make(map[*websocket.Conn]string)
			h.byUser = make(map[string]map[*websocket.Conn]bool)
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if userID, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		delete(h.byUser[userID], conn)
		if len(h.byUser[userID]) == 0 {
			delete(h.byUser, userID)
		}
		conn.Close()
	}
	h.mu.Unlock()
}

// Broadcast queues an event for every live connection of userID. It never
// blocks the caller; when the queue is full the event is dropped.
func (h *Hub) Broadcast(userID, eventType string, note *notes.Note) {
	select {
	case h.broadcast <- broadcastReq{userID: userID, msg: Message{Type: eventType, Note: note}}:
	default:
		h.logger.Warn(context.Background(), "push queue full, dropping event", "type", eventType, "user", userID)
	}
}

// Register attaches an authenticated connection to the hub.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.register <- client{userID: userID, conn: conn}
}

// Unregister detaches and closes a connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.unregister <- conn
}

// HandleConnection blocks reading the connection until the peer goes away,
// then unregisters it. Client messages carry no meaning; reading only
// detects disconnects.
func (h *Hub) HandleConnection(conn *websocket.Conn) {
	defer h.Unregister(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
