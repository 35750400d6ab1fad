// Package events fans draw notifications out to display clients over
// websockets.
package events

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ArowuTest/prizedraw-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/exp/slog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
	broadcastQueue = 256
)

// Hub keeps the set of connected display clients and broadcasts events to them.
type Hub struct {
	clients map[*Client]bool

	Register   chan *Client
	Unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}

	upgrader  websocket.Upgrader
	connected atomic.Int64
}

// Client is one websocket connection
type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Outgoing chan []byte
}

// NewHub creates a Hub. Hosts lists the accepted Origin hosts; empty or "*"
// accepts any origin.
func NewHub(hosts []string) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		broadcast:  make(chan []byte, broadcastQueue),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(hosts),
	}
	return h
}

// Run dispatches registrations and broadcasts until ctx is done. All client
// bookkeeping happens on this goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for client := range h.clients {
				close(client.Outgoing)
				delete(h.clients, client)
			}
			h.connected.Store(0)
			return
		case client := <-h.Register:
			h.clients[client] = true
			h.connected.Store(int64(len(h.clients)))
		case client := <-h.Unregister:
			if h.clients[client] {
				delete(h.clients, client)
				close(client.Outgoing)
				h.connected.Store(int64(len(h.clients)))
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.Outgoing <- msg:
				default:
					// Slow reader; drop it rather than stall everyone else
					delete(h.clients, client)
					close(client.Outgoing)
				}
			}
			h.connected.Store(int64(len(h.clients)))
		}
	}
}

// Publish queues an event for every connected client. It never blocks; when
// the queue is full the event is dropped and logged.
func (h *Hub) Publish(evt models.Event) {
	msg, err := json.Marshal(evt)
	if err != nil {
		slog.Error("Failed to encode event", "error", err, "type", evt.Type)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		slog.Warn("Event queue full, dropping event", "type", evt.Type, "tier", evt.Tier)
	}
}

// Connected returns the number of registered clients
func (h *Hub) Connected() int {
	return int(h.connected.Load())
}

// ServeWS handles GET /ws
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", "error", err, "remote", c.ClientIP())
		return
	}

	client := &Client{Hub: h, Conn: conn, Outgoing: make(chan []byte, sendBuffer)}
	select {
	case h.Register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump discards inbound messages; it exists to notice closed connections
// and to process pongs.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.Unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("Websocket closed unexpectedly", "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Outgoing:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func originChecker(hosts []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		if h == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[strings.ToLower(h)] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if len(allowed) == 0 || origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return allowed[strings.ToLower(u.Host)] || strings.EqualFold(u.Host, r.Host)
	}
}
