package web

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/PancyStudios/ArcaneBotGo/pkg/bus"
	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Message types pushed to websocket clients
const (
	MessageLeaderboardUpdate = "leaderboard_update"
	MessageMemberUpdate      = "member_update"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 32
	snapshotWait   = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// any origin may follow the feed
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is one frame of the live feed
type Message struct {
	Type      string      `json:"type"`
	GuildID   string      `json:"guildId"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// SnapshotFunc loads the current leaderboard of a guild
type SnapshotFunc func(ctx context.Context, guildID string) (interface{}, error)

// Hub keeps the websocket clients of every guild leaderboard
type Hub struct {
	mu       sync.RWMutex
	guilds   map[string]map[*wsClient]struct{}
	snapshot SnapshotFunc
	closed   bool
}

type wsClient struct {
	id      string
	guildID string
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
}

// NewHub creates a hub. snapshot may be nil, in which case only member
// updates are pushed.
func NewHub(snapshot SnapshotFunc) *Hub {
	return &Hub{
		guilds:   make(map[string]map[*wsClient]struct{}),
		snapshot: snapshot,
	}
}

// Subscribers returns how many clients follow a guild
func (h *Hub) Subscribers(guildID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.guilds[guildID])
}

func (h *Hub) register(c *wsClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	if h.guilds[c.guildID] == nil {
		h.guilds[c.guildID] = make(map[*wsClient]struct{})
	}
	h.guilds[c.guildID][c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.guilds[c.guildID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.guilds, c.guildID)
	}
}

// Broadcast sends msg to every client of its guild. Clients with a full
// buffer miss the frame.
func (h *Hub) Broadcast(msg Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error(fmt.Sprintf("Error serializando mensaje websocket: %v", err), "WebSocket")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.guilds[msg.GuildID] {
		select {
		case c.send <- data:
		default:
			logger.Debug("Buffer lleno, mensaje descartado para "+c.id, "WebSocket")
		}
	}
}

// Sink turns XP bus events into feed frames
func (h *Hub) Sink() bus.Handler {
	return func(e bus.Event) {
		if e.Type != bus.XPChanged && e.Type != bus.LevelUp {
			return
		}
		if h.Subscribers(e.GuildID) == 0 {
			return
		}

		h.Broadcast(Message{
			Type:      MessageMemberUpdate,
			GuildID:   e.GuildID,
			Data:      e,
			Timestamp: e.At,
		})
		h.pushSnapshot(e.GuildID)
	}
}

func (h *Hub) pushSnapshot(guildID string) {
	if h.snapshot == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), snapshotWait)
	defer cancel()
	board, err := h.snapshot(ctx, guildID)
	if err != nil {
		logger.Warn(fmt.Sprintf("No se pudo cargar el leaderboard de %s: %v", guildID, err), "WebSocket")
		return
	}
	h.Broadcast(Message{Type: MessageLeaderboardUpdate, GuildID: guildID, Data: board})
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for guildID, clients := range h.guilds {
		for c := range clients {
			close(c.send)
		}
		delete(h.guilds, guildID)
	}
}

// Serve upgrades the request and follows guildID until the peer leaves
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, guildID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn(fmt.Sprintf("Error al actualizar a websocket: %v", err), "WebSocket")
		return
	}

	c := &wsClient{
		id:      uuid.NewString(),
		guildID: guildID,
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
	}
	if !h.register(c) {
		conn.Close()
		return
	}
	logger.Debug(fmt.Sprintf("Cliente %s conectado al leaderboard de %s", c.id, guildID), "WebSocket")

	go c.writePump()
	go c.readPump()
	go h.pushSnapshot(guildID)
}

// readPump only handles control frames; the feed is one-way
func (c *wsClient) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Debug(fmt.Sprintf("Cliente %s desconectado: %v", c.id, err), "WebSocket")
			}
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
