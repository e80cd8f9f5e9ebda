package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/reportdeck/backend/internal/infrastructure/logging"
	"github.com/reportdeck/backend/internal/infrastructure/monitoring"
	"github.com/reportdeck/backend/internal/shared/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Origin filtering happens at the CORS layer
	},
}

// inbound is a client-to-server stream message.
type inbound struct {
	Type    string `json:"type"`
	Context string `json:"context,omitempty"`
}

// Handler upgrades stream requests and services their message loop.
type Handler struct {
	hub     *Hub
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewHandler creates a stream handler over the hub.
func NewHandler(hub *Hub, logger *logging.Logger, metrics *monitoring.Metrics) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{hub: hub, logger: logger, metrics: metrics}
}

// HandleConnection upgrades the request and runs the read loop. The optional
// context query parameter sets the initial subscription; clients can switch
// later with a subscribe message.
func (h *Handler) HandleConnection(c *gin.Context) {
	contextName := c.Query("context")
	if contextName != "" {
		if err := utils.ValidateContextName(contextName); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{"code": "invalid_input", "message": err.Error()},
			})
			return
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(h.hub, conn, contextName)
	h.hub.Add(client)
	defer func() {
		h.hub.Remove(client)
		client.close()
	}()

	go client.writeLoop()

	h.logger.Info("Stream client connected",
		zap.String("client", client.ID),
		zap.String("context", contextName))

	client.trySend(map[string]interface{}{
		"type":      "system",
		"message":   "connected to reportdeck stream",
		"client_id": client.ID,
		"context":   contextName,
	})

	for {
		var msg inbound
		if err := conn.ReadJSON(&msg); err != nil {
			h.logger.Debug("Stream client disconnected",
				zap.String("client", client.ID),
				zap.Error(err))
			return
		}

		if h.metrics != nil {
			h.metrics.RecordWSMessage("in", msg.Type)
		}

		switch msg.Type {
		case "subscribe":
			h.handleSubscribe(client, msg)
		case "ping":
			client.trySend(map[string]interface{}{"type": "pong"})
		default:
			client.trySend(map[string]interface{}{
				"type":    "error",
				"message": "unknown message type",
			})
		}
	}
}

func (h *Handler) handleSubscribe(client *Client, msg inbound) {
	if err := utils.ValidateContextName(msg.Context); err != nil {
		client.trySend(map[string]interface{}{
			"type":    "error",
			"message": err.Error(),
		})
		return
	}

	client.subscribe(msg.Context)
	client.trySend(map[string]interface{}{
		"type":    "subscribed",
		"context": msg.Context,
	})
}
