// file: internal/notifications/hub.go

// Package notifications streams domain events to connected websocket
// clients so dashboards can react to awards and decisions live.
package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"engagehub/internal/contextutils"
	"engagehub/internal/events"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientBuffer   = 32
	maxMessageSize = 512
)

// Hub fans event-bus notifications out to websocket subscribers
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	userID int64
}

// notification is the wire format pushed to clients
type notification struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewHub creates a hub and subscribes it to the engagement events
func NewHub(bus events.EventBus, logger *zap.Logger) *Hub {
	h := &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}

	handler := events.NewEventHandlerFunc("notifications-hub",
		func(ctx context.Context, event events.Event) error {
			h.broadcast(event)
			return nil
		})

	for _, pattern := range []string{"points.*", "participation.*", "rating.*", "application.*", "community.*"} {
		if err := bus.SubscribePattern(pattern, handler); err != nil {
			logger.Error("Failed to subscribe notifications hub",
				zap.String("pattern", pattern),
				zap.Error(err),
			)
		}
	}

	return h
}

// ServeWS handles GET /api/v1/ws, upgrading the connection
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		conn:   conn,
		send:   make(chan []byte, clientBuffer),
		userID: contextutils.GetUserID(r.Context()),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("Websocket client connected", zap.Int64("user_id", c.userID))

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) broadcast(event events.Event) {
	msg, err := json.Marshal(notification{
		Type:      event.GetEventType(),
		Timestamp: event.GetTimestamp(),
		Payload:   event,
	})
	if err != nil {
		h.logger.Warn("Failed to marshal notification", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// Slow consumer; drop the message rather than block the bus.
		}
	}
}

func (h *Hub) readPump(c *client) {
	defer h.drop(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.drop(c)
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

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}

// ClientCount reports connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
