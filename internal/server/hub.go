package server

import (
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 20 // a settled render graph for a few thousand nodes
	sendBuffer     = 32
)

// Message is the envelope of every websocket frame in both directions.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Hub tracks connected websocket clients and fans messages out to them.
type Hub struct {
	logger   *log.Logger
	upgrader websocket.Upgrader

	// OnConnect runs once per client after the upgrade, before its pumps
	// start.
	OnConnect func(c *Client)

	// OnMessage runs for every frame a client sends, on that client's read
	// goroutine.
	OnMessage func(c *Client, data []byte)

	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool
}

// NewHub returns a hub accepting upgrades from allowedOrigins. "*" allows
// any origin; requests without an Origin header are always allowed.
func NewHub(logger *log.Logger, allowedOrigins []string) *Hub {
	h := &Hub{
		logger:  logger,
		clients: make(map[*Client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(allowed, "*") {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}

// ServeWS upgrades the request and starts the client's pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &Client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "client", c.id, "remote", r.RemoteAddr)

	if h.OnConnect != nil {
		h.OnConnect(c)
	}
	go c.writePump()
	go c.readPump()
}

// Broadcast sends a message to every client and returns how many accepted
// it. Clients whose buffer is full are skipped.
func (h *Hub) Broadcast(msgType string, data any) int {
	frame, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		h.logger.Error("encode websocket message", "type", msgType, "error", err)
		return 0
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range clients {
		if c.enqueue(frame) {
			sent++
		} else {
			h.logger.Debug("websocket client buffer full, dropping message", "client", c.id, "type", msgType)
		}
	}
	return sent
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.close()
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.close()
		h.logger.Debug("websocket client disconnected", "client", c.id)
	}
}

// Client is one websocket connection.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn

	mu        sync.Mutex
	send      chan []byte
	closed    bool
	closeOnce sync.Once
}

// ID returns the client's connection id.
func (c *Client) ID() string { return c.id }

// Send queues a message for this client only.
func (c *Client) Send(msgType string, data any) bool {
	frame, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		c.hub.logger.Error("encode websocket message", "type", msgType, "error", err)
		return false
	}
	return c.enqueue(frame)
}

func (c *Client) enqueue(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
	})
}

func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNoStatusReceived) {
				c.hub.logger.Warn("websocket read failed", "client", c.id, "error", err)
			}
			return
		}
		if c.hub.OnMessage != nil {
			c.hub.OnMessage(c, data)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.hub.logger.Debug("websocket write failed", "client", c.id, "error", err)
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
