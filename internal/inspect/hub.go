// Package inspect streams bus events to websocket clients as JSON frames.
package inspect

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/compose/internal/core/events/bus"
	"github.com/zeusync/compose/internal/core/observability/log"
)

const (
	sendBuffer   = 256
	writeTimeout = 5 * time.Second
	pongTimeout  = 60 * time.Second
	pingPeriod   = pongTimeout * 9 / 10
	readLimit    = 512
)

var ErrHubClosed = errors.New("inspector hub is closed")

// Frame is the JSON document sent for every bus event.
type Frame struct {
	Type      string         `json:"type"`
	Entity    uint64         `json:"entity"`
	Name      string         `json:"name,omitempty"`
	Timestamp time.Time      `json:"ts"`
	Data      map[string]any `json:"data,omitempty"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

// Hub fans bus events out to connected clients. A client whose buffer is
// full misses frames instead of slowing down the publisher.
type Hub struct {
	log      log.Log
	sub      bus.Subscription
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client

	closed  atomic.Bool
	sent    atomic.Uint64
	dropped atomic.Uint64
}

func NewHub(eventBus bus.EventBus, logger log.Log) (*Hub, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	h := &Hub{
		log:     logger.Named("inspect"),
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	sub, err := eventBus.Subscribe(bus.AnyType, h.broadcast)
	if err != nil {
		return nil, err
	}
	h.sub = sub
	return h, nil
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Sent and Dropped count frames per client.
func (h *Hub) Sent() uint64    { return h.sent.Load() }
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.closed.Load() {
		http.Error(w, ErrHubClosed.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", log.Error(err))
		return
	}

	c := &client{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	h.log.Info("Inspector client connected",
		log.String("client_id", c.id),
		log.String("remote_addr", conn.RemoteAddr().String()))

	go h.writePump(c)
	go h.readPump(c)
}

// Close disconnects every client and stops listening to the bus.
func (h *Hub) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return nil
	}
	_ = h.sub.Cancel()

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.drop(c)
	}
	return nil
}

func (h *Hub) broadcast(ev bus.Event) error {
	data, err := json.Marshal(Frame{
		Type:      ev.Type,
		Entity:    uint64(ev.Entity),
		Name:      ev.Name,
		Timestamp: ev.Timestamp,
		Data:      ev.Data,
	})
	if err != nil {
		h.log.Warn("Dropping unencodable event", log.String("type", ev.Type), log.Error(err))
		return nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- data:
			h.sent.Add(1)
		default:
			h.dropped.Add(1)
		}
	}
	return nil
}

func (h *Hub) drop(c *client) {
	c.once.Do(func() {
		h.mu.Lock()
		delete(h.clients, c.id)
		h.mu.Unlock()

		close(c.done)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeTimeout))
		_ = c.conn.Close()

		h.log.Info("Inspector client disconnected", log.String("client_id", c.id))
	})
}

// readPump only services control frames; clients do not send data.
func (h *Hub) readPump(c *client) {
	defer h.drop(c)

	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer h.drop(c)

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
