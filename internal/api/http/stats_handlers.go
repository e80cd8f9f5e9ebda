package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/reportdeck/backend/internal/domain/widget"
	"github.com/reportdeck/backend/internal/infrastructure/monitoring"
)

// StatsHandler serves the JSON operational summary next to the Prometheus
// exposition endpoint.
type StatsHandler struct {
	metrics  *monitoring.Metrics
	registry *widget.Registry
	started  time.Time
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(metrics *monitoring.Metrics, registry *widget.Registry) *StatsHandler {
	return &StatsHandler{
		metrics:  metrics,
		registry: registry,
		started:  time.Now(),
	}
}

// Summary provides high-level operational numbers.
type Summary struct {
	TotalRequests     int64   `json:"total_requests"`
	AverageLatencyMs  float64 `json:"average_latency_ms"`
	ErrorRate         float64 `json:"error_rate"`
	ActiveConnections int64   `json:"active_connections"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// GetStats returns the current summary.
func (s *StatsHandler) GetStats(c *gin.Context) {
	snap := s.metrics.Snapshot()

	summary := Summary{
		TotalRequests:     snap.TotalRequests,
		ActiveConnections: snap.ActiveConnections,
		UptimeSeconds:     time.Since(s.started).Seconds(),
	}
	if snap.RequestCount > 0 {
		summary.AverageLatencyMs = snap.TotalDuration / float64(snap.RequestCount) * 1000
		summary.ErrorRate = float64(snap.TotalErrors) / float64(snap.RequestCount)
	}

	c.JSON(http.StatusOK, gin.H{
		"timestamp":    time.Now().UTC(),
		"summary":      summary,
		"widget_types": s.registry.Len(),
	})
}
