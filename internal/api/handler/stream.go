package handler

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/agrocean/console/internal/api/metrics"
	"github.com/agrocean/console/internal/core/domain"
	"github.com/agrocean/console/internal/core/ports"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxInboundSize = 512
	sendBuffer     = 16
)

// Event types pushed on /session/stream.
const (
	EventIdentity = "identity"
	EventNavigate = "navigate"
	EventAlerts   = "alerts"
)

type streamClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans session events out to every connected browser tab. It is the
// console's Navigator and alert sink. The latest identity and alert count
// are replayed to each new connection.
type Hub struct {
	upgrader websocket.Upgrader
	log      zerolog.Logger

	mu      sync.Mutex
	clients map[*streamClient]struct{}
	sticky  map[string][]byte
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		log:      log,
		clients:  make(map[*streamClient]struct{}),
		sticky:   make(map[string][]byte),
	}
}

var _ ports.Navigator = (*Hub)(nil)

// Navigate tells every tab to move to path.
func (h *Hub) Navigate(path string) {
	h.broadcast(EventNavigate, "path", path, false)
}

// PublishAlerts pushes the unread alert badge count.
func (h *Hub) PublishAlerts(count int) {
	metrics.UnreadAlerts.Set(float64(count))
	h.broadcast(EventAlerts, "count", count, true)
}

// PublishIdentity pushes the signed-in identity, or null after logout.
func (h *Hub) PublishIdentity(identity *domain.Identity) {
	h.broadcast(EventIdentity, "user", identity, true)
}

// Watch forwards identity changes until ctx ends.
func (h *Hub) Watch(ctx context.Context, identities ports.IdentityStream) {
	ch, cancel := identities.Observe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case identity, ok := <-ch:
			if !ok {
				return
			}
			h.PublishIdentity(identity)
		}
	}
}

// Subscribers is the number of open connections.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}

// broadcast sends {"type": typ, key: value}. Sticky events are kept for
// replay to later connections.
func (h *Hub) broadcast(typ, key string, value any, sticky bool) {
	msg, err := json.Marshal(map[string]any{"type": typ, key: value})
	if err != nil {
		h.log.Error().Err(err).Str("type", typ).Msg("stream event encode failed")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if sticky {
		h.sticky[typ] = msg
	}
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.log.Warn().Msg("stream client too slow, disconnected")
			h.removeLocked(c)
		}
	}
}

func (h *Hub) register(c *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	metrics.StreamSubscribers.Inc()
	for _, typ := range []string{EventIdentity, EventAlerts} {
		if msg, ok := h.sticky[typ]; ok {
			c.send <- msg
		}
	}
}

func (h *Hub) unregister(c *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *streamClient) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	metrics.StreamSubscribers.Dec()
}

// Serve upgrades GET /session/stream to a websocket.
//
// @Summary      Session event stream
// @Description  Pushes {"type":"identity"}, {"type":"navigate"} and {"type":"alerts"} events.
// @Tags         session
// @Success      101
// @Router       /session/stream [get]
func (h *Hub) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("stream upgrade failed")
		return nil
	}

	client := &streamClient{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(client)

	go client.writePump()
	go client.readPump()
	return nil
}

// writePump drains send into the connection and keeps it alive with pings.
func (c *streamClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

// readPump only watches for the peer going away; the stream is one-way.
func (c *streamClient) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInboundSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug().Err(err).Msg("stream closed")
			}
			return
		}
	}
}
