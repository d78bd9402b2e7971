// Package stream pushes live quote snapshots to websocket clients.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"stock-dashboard-backend/internal/metrics"
	"stock-dashboard-backend/internal/model"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

// Envelope is the message pushed to clients.
type Envelope struct {
	Type   string        `json:"type"`
	TS     int64         `json:"ts"`
	Stocks []model.Stock `json:"stocks"`
}

// Hub tracks connected clients and fans out snapshots.
type Hub struct {
	upgrader websocket.Upgrader
	metrics  *metrics.Metrics

	mu      sync.RWMutex
	clients map[*client]struct{}
	latest  []byte
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

// NewHub builds a hub. allowedOrigins empty means any origin.
func NewHub(m *metrics.Metrics, allowedOrigins []string) *Hub {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Hub{
		metrics: m,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// Publish sends a snapshot to every client. Clients whose buffer is full are
// disconnected.
func (h *Hub) Publish(stocks []model.Stock) {
	data, err := json.Marshal(Envelope{Type: "quotes", TS: time.Now().UnixMilli(), Stocks: stocks})
	if err != nil {
		log.Error().Err(err).Msg("encode quote snapshot")
		return
	}

	h.mu.Lock()
	h.latest = data
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()

	for _, c := range slow {
		log.Warn().Str("remote", c.conn.RemoteAddr().String()).Msg("ws client too slow, dropping")
		if h.metrics != nil {
			h.metrics.WSDropped.Inc()
		}
		h.remove(c)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and registers the client. The latest snapshot
// is sent immediately.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.latest != nil {
		c.send <- h.latest
	}
	count := len(h.clients)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.WSClients.Set(float64(count))
	}
	log.Info().Str("remote", conn.RemoteAddr().String()).Int("clients", count).Msg("ws client connected")

	go h.writePump(c)
	go h.readPump(c)
}

// Close disconnects every client.
func (h *Hub) Close(_ context.Context) {
	h.mu.RLock()
	all := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		all = append(all, c)
	}
	h.mu.RUnlock()
	for _, c := range all {
		h.remove(c)
	}
}

func (h *Hub) remove(c *client) {
	c.once.Do(func() {
		h.mu.Lock()
		delete(h.clients, c)
		count := len(h.clients)
		close(c.send)
		h.mu.Unlock()
		if h.metrics != nil {
			h.metrics.WSClients.Set(float64(count))
		}
	})
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

// readPump discards client messages and detects disconnects.
func (h *Hub) readPump(c *client) {
	defer h.remove(c)
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
