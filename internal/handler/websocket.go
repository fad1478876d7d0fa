package handler

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/ALiangTech/treeify/internal/logging"
	"github.com/ALiangTech/treeify/internal/metrics"
	"github.com/ALiangTech/treeify/internal/watcher"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Message types pushed to clients.
const (
	MsgTreeText   = "treeText"
	MsgFileChange = "fileChange"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// TextPayload carries the current diagram of a session
type TextPayload struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type client struct {
	session string
	mu      sync.Mutex // serializes writes
}

// WSHandler pushes diagram updates to the browsers subscribed to a session
type WSHandler struct {
	clients map[*websocket.Conn]*client
	mu      sync.RWMutex
}

// NewWSHandler creates a new WebSocket handler
func NewWSHandler() *WSHandler {
	return &WSHandler{
		clients: make(map[*websocket.Conn]*client),
	}
}

// HandleWS handles WebSocket upgrade and connection. The session query parameter
// selects which session's updates the client receives.
func (h *WSHandler) HandleWS(c *gin.Context) {
	sessionID := c.Query("session")
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.WithContext(c.Request.Context()).Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer func() {
		h.removeClient(conn)
		_ = conn.Close()
	}()

	h.addClient(conn, sessionID)

	// Keep connection alive and handle incoming messages
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}
}

// PushText sends the current diagram of a session to its subscribers
func (h *WSHandler) PushText(sessionID, text string) {
	h.broadcast(sessionID, WSMessage{
		Type:    MsgTreeText,
		Payload: TextPayload{ID: sessionID, Text: text},
	})
}

// OnFileChange tells subscribers of the local session what changed on disk
func (h *WSHandler) OnFileChange(event watcher.Event) {
	var eventType string
	switch event.Type {
	case watcher.EventCreate:
		eventType = "create"
	case watcher.EventWrite:
		eventType = "update"
	case watcher.EventRemove:
		eventType = "remove"
	case watcher.EventRename:
		eventType = "rename"
	default:
		return
	}

	msg := WSMessage{
		Type: MsgFileChange,
		Payload: map[string]string{
			"event": eventType,
			"path":  event.Path,
		},
	}

	h.broadcast(LocalSessionID, msg)
}

// Len returns the number of connected clients
func (h *WSHandler) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *WSHandler) addClient(conn *websocket.Conn, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = &client{session: sessionID}
	metrics.WSConnected(1)
}

func (h *WSHandler) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		metrics.WSConnected(-1)
	}
}

func (h *WSHandler) broadcast(sessionID string, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		logging.L().Error("failed to encode websocket message", zap.Error(err))
		return
	}

	type target struct {
		conn *websocket.Conn
		c    *client
	}
	h.mu.RLock()
	targets := make([]target, 0, len(h.clients))
	for conn, c := range h.clients {
		if c.session == sessionID {
			targets = append(targets, target{conn, c})
		}
	}
	h.mu.RUnlock()

	for _, t := range targets {
		t.c.mu.Lock()
		err := t.conn.WriteMessage(websocket.TextMessage, data)
		t.c.mu.Unlock()
		if err != nil {
			h.removeClient(t.conn)
			continue
		}
		metrics.RecordWSMessage(msg.Type)
	}
}
