// Package feed streams live battle snapshots to websocket spectators.
package feed

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talonworks/sortie/pkg/battle"
	"github.com/talonworks/sortie/pkg/logger"
)

// writeWait bounds how long a slow spectator may block a broadcast.
const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub fans battle snapshots out to connected spectators. Spectators are
// read-only; anything they send is drained and discarded.
type Hub struct {
	label string

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	closed  bool
}

// NewHub creates a hub for the battle identified by label.
func NewHub(label string) *Hub {
	return &Hub{
		label:   label,
		clients: make(map[*websocket.Conn]bool),
	}
}

// HandleFeed upgrades the request and registers the spectator until its
// connection drops.
func (h *Hub) HandleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnf("Feed upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[conn] = true
	count := len(h.clients)
	h.mu.Unlock()

	logger.Debugf("Spectator connected (%d watching)", count)

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(conn)
				return
			}
		}
	}()
}

// Broadcast sends one snapshot to every spectator. Connections that fail
// or block past the write deadline are dropped.
func (h *Hub) Broadcast(snap battle.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		logger.Errorf("Failed to encode snapshot: %v", err)
		return
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.drop(conn)
		}
	}
}

// HandleIndex serves a small JSON status document for the feed root.
func (h *Hub) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	status := map[string]interface{}{
		"battle":     h.label,
		"spectators": len(h.clients),
		"feed":       "/feed",
	}
	h.mu.Unlock()

	data, err := json.Marshal(status)
	if err != nil {
		http.Error(w, "failed to encode", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// Clients returns the number of connected spectators.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every spectator and rejects future registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.clients = make(map[*websocket.Conn]bool)
	h.closed = true
	h.mu.Unlock()

	for _, conn := range conns {
		message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "battle over")
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteMessage(websocket.CloseMessage, message)
		conn.Close()
	}
}

// drop removes and closes one spectator connection.
func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
	}
	remaining := len(h.clients)
	h.mu.Unlock()

	if ok {
		conn.Close()
		logger.Debugf("Spectator disconnected (%d watching)", remaining)
	}
}
