// Package ws streams container mutation events to connected dashboard
// clients over WebSocket.
//
// The hub implements the container manager's event sink: every successful
// mutation is fanned out to the clients subscribed to the event's context.
// Each client owns a buffered send queue drained by a single writer
// goroutine; a client that cannot keep up is dropped rather than allowed to
// stall publishers.
package ws

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/reportdeck/backend/internal/infrastructure/logging"
	"github.com/reportdeck/backend/internal/infrastructure/monitoring"
	"github.com/reportdeck/backend/internal/shared/types"
)

// sendBuffer is the per-client queue depth. Mutations are low-rate, so a
// small buffer already means the consumer stopped reading.
const sendBuffer = 16

// Hub tracks connected clients and fans out container events.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewHub creates an empty hub. metrics may be nil.
func NewHub(logger *logging.Logger, metrics *monitoring.Metrics) *Hub {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
		metrics: metrics,
	}
}

// Publish delivers the event to every client subscribed to its context.
// Implements the container manager's EventSink.
func (h *Hub) Publish(event types.Event) {
	var slow []*Client

	h.mu.RLock()
	for _, client := range h.clients {
		if !client.subscribed(event.Context) {
			continue
		}
		if !client.trySend(event) {
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	if h.metrics != nil {
		h.metrics.RecordWSMessage("out", string(event.Type))
	}

	for _, client := range slow {
		h.logger.Warn("Dropping slow stream client",
			zap.String("client", client.ID),
			zap.String("context", event.Context))
		h.Remove(client)
		client.close()
	}
}

// Add registers a client.
func (h *Hub) Add(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.IncWSConnections()
	}
}

// Remove unregisters a client. Safe to call more than once.
func (h *Hub) Remove(client *Client) {
	h.mu.Lock()
	_, present := h.clients[client.ID]
	delete(h.clients, client.ID)
	h.mu.Unlock()

	if present && h.metrics != nil {
		h.metrics.DecWSConnections()
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Client is one WebSocket connection and its context subscription.
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan interface{}
	done chan struct{}
	once sync.Once

	mu      sync.RWMutex
	context string
}

func newClient(hub *Hub, conn *websocket.Conn, contextName string) *Client {
	return &Client{
		ID:      uuid.New().String(),
		hub:     hub,
		conn:    conn,
		send:    make(chan interface{}, sendBuffer),
		done:    make(chan struct{}),
		context: contextName,
	}
}

// subscribed reports whether the client listens to contextName.
func (c *Client) subscribed(contextName string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.context == contextName
}

// subscribe switches the client to contextName.
func (c *Client) subscribe(contextName string) {
	c.mu.Lock()
	c.context = contextName
	c.mu.Unlock()
}

// trySend queues a frame without blocking. A false return marks the client
// as too slow to keep.
func (c *Client) trySend(frame interface{}) bool {
	select {
	case <-c.done:
		// Already closing; not a slow consumer.
		return true
	default:
	}

	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// writeLoop drains the send queue onto the wire. It is the only goroutine
// writing to the connection.
func (c *Client) writeLoop() {
	for {
		select {
		case frame := <-c.send:
			if err := c.conn.WriteJSON(frame); err != nil {
				c.hub.Remove(c)
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// close shuts the connection down exactly once. The send channel is never
// closed; the done signal stops the writer instead, so concurrent trySend
// calls stay safe.
func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}
