package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kirana-service/internal/database"
)

// HealthChecker probes the backing stores for the /health endpoint.
// Either store may be nil in demo mode and then reports "disabled".
type HealthChecker struct {
	postgresDB *database.PostgresDB
	redisDB    *database.RedisDB
	logger     *zap.Logger
}

func NewHealthChecker(postgresDB *database.PostgresDB, redisDB *database.RedisDB, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		postgresDB: postgresDB,
		redisDB:    redisDB,
		logger:     logger,
	}
}

func (h *HealthChecker) HealthCheck(c *gin.Context) {
	services := make(map[string]interface{})
	status := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"services":  services,
	}

	if h.postgresDB == nil {
		services["postgresql"] = gin.H{"status": "disabled"}
	} else if err := h.postgresDB.Ping(); err != nil {
		services["postgresql"] = gin.H{"status": "unhealthy"}
		status["status"] = "unhealthy"
		h.logger.Error("postgres health check failed", zap.Error(err))
	} else {
		stats := h.postgresDB.GetStats()
		services["postgresql"] = gin.H{
			"status": "healthy",
			"stats": gin.H{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
			},
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if h.redisDB == nil {
		services["redis"] = gin.H{"status": "disabled"}
	} else if err := h.redisDB.Ping(ctx); err != nil {
		services["redis"] = gin.H{"status": "unhealthy"}
		status["status"] = "unhealthy"
		h.logger.Error("redis health check failed", zap.Error(err))
	} else {
		services["redis"] = gin.H{"status": "healthy"}
	}

	httpStatus := http.StatusOK
	if status["status"] == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}
	c.JSON(httpStatus, status)
}
