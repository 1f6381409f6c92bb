package routes

import (
	"github.com/gin-gonic/gin"

	"kirana-service/internal/handlers"
	"kirana-service/internal/middleware"
	"kirana-service/internal/models"
)

// SetupRoutes wires every HTTP endpoint.
func SetupRoutes(
	router *gin.Engine,
	webhookHandler *handlers.WebhookHandler,
	opsHandler *handlers.OpsHandler,
	monitoringHandler *handlers.MonitoringHandler,
	healthChecker *middleware.HealthChecker,
) {
	// WhatsApp webhook lives at the root; providers are configured with
	// this exact path.
	router.GET("/webhook", webhookHandler.Verify)
	router.POST("/webhook", webhookHandler.Receive)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/test-message", webhookHandler.TestMessage)

		shops := v1.Group("/shops/:shopId")
		{
			shops.POST("/products", opsHandler.CreateProduct)
			shops.GET("/products", opsHandler.ListProducts)
			shops.POST("/stock/add", opsHandler.StockOp(models.ActionAddStock))
			shops.POST("/stock/reduce", opsHandler.StockOp(models.ActionReduceStock))
			shops.GET("/transactions", opsHandler.ListTransactions)
			shops.GET("/udhar", opsHandler.UdharSummary)
		}

		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/metrics", monitoringHandler.GetMetrics)
			monitoring.GET("/metrics/summary", monitoringHandler.GetMetricsSummary)
			monitoring.GET("/ws", monitoringHandler.WebSocketMetrics)
		}
	}

	router.GET("/health", healthChecker.HealthCheck)
	router.GET("/health/monitoring", monitoringHandler.HealthCheck)

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Kirana WhatsApp Inventory API",
			"version": "1.0.0",
			"status":  "running",
			"endpoints": gin.H{
				"health":  "/health",
				"webhook": "GET|POST /webhook",
				"api":     "/api/v1",
				"ops": gin.H{
					"test_message": "POST /api/v1/test-message",
					"products":     "GET|POST /api/v1/shops/:shopId/products",
					"stock":        "POST /api/v1/shops/:shopId/stock/{add,reduce}",
					"transactions": "GET /api/v1/shops/:shopId/transactions",
					"udhar":        "GET /api/v1/shops/:shopId/udhar",
				},
				"monitoring": "GET /api/v1/monitoring/metrics",
			},
		})
	})
}
