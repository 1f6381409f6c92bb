package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"kirana-service/internal/services"
)

// MonitoringHandler exposes pipeline and infrastructure metrics for the
// ops dashboard, over REST and a live websocket feed.
type MonitoringHandler struct {
	monitoringService services.MonitoringService
	logger            *zap.Logger
}

func NewMonitoringHandler(monitoringService services.MonitoringService, logger *zap.Logger) *MonitoringHandler {
	return &MonitoringHandler{
		monitoringService: monitoringService,
		logger:            logger,
	}
}

// GetMetrics returns the full metrics payload.
func (h *MonitoringHandler) GetMetrics(c *gin.Context) {
	metrics := h.monitoringService.GetMetrics(c.Request.Context())

	h.logger.Debug("metrics served",
		zap.Int("total_messages", metrics.Pipeline.TotalMessages),
		zap.Float64("avg_processing_ms", metrics.Pipeline.AvgProcessingMs))
	c.JSON(http.StatusOK, metrics)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboard runs on a different origin
	},
}

// WebSocketMetrics streams the metrics payload every 10 seconds.
func (h *MonitoringHandler) WebSocketMetrics(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "websocket_metrics"))

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	logger.Info("websocket connection established")

	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			metrics := h.monitoringService.GetMetrics(context.Background())
			if err := conn.WriteJSON(metrics); err != nil {
				logger.Error("websocket write failed", zap.Error(err))
				return
			}
		case <-c.Request.Context().Done():
			logger.Info("websocket connection closed")
			return
		}
	}
}

// HealthCheck reports overall service health including backing stores.
func (h *MonitoringHandler) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	status := "healthy"
	dbStatus := h.monitoringService.GetDatabaseStats(ctx).Status
	redisStatus := h.monitoringService.GetRedisStats(ctx).Status
	if dbStatus != "online" || redisStatus != "online" {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services": gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
			"cache":    "online",
		},
	})
}

// GetMetricsSummary returns a condensed view for dashboard cards.
func (h *MonitoringHandler) GetMetricsSummary(c *gin.Context) {
	metrics := h.monitoringService.GetMetrics(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"pipeline": gin.H{
			"total_messages": metrics.Pipeline.TotalMessages,
			"llm_fallbacks":  metrics.Pipeline.LLMFallbacks,
			"unrecognized":   metrics.Pipeline.Unrecognized,
			"voice_messages": metrics.Pipeline.VoiceMessages,
			"batch_messages": metrics.Pipeline.BatchMessages,
			"errors":         metrics.Pipeline.ErrorsCount,
			"slow_messages":  metrics.Pipeline.SlowCount,
			"top_actions":    metrics.Pipeline.TopActions,
		},
		"cache": gin.H{
			"hit_rate":   metrics.Cache.HitRatePercentage,
			"total_keys": metrics.Cache.TotalKeys,
			"status":     metrics.Cache.Status,
		},
		"database": gin.H{
			"active_connections": metrics.Database.ActiveConnections,
			"status":             metrics.Database.Status,
		},
		"system": gin.H{
			"goroutines": metrics.System.Goroutines,
			"heap_used":  metrics.System.Memory.HeapUsed,
			"uptime":     metrics.System.UptimeHours,
			"platform":   metrics.System.Platform,
		},
		"redis": gin.H{
			"connected": metrics.Redis.Connected,
			"status":    metrics.Redis.Status,
		},
		"timestamp": metrics.Timestamp,
	})
}
