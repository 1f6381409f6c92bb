package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kirana-service/internal/xid"
)

// LoggerMiddleware builds a structured request logger with a colored
// console line alongside the zap record.
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		statusColor := getStatusColor(param.StatusCode)
		methodColor := getMethodColor(param.Method)

		logLine := fmt.Sprintf(
			"%s %s %s %s %s %s %s",
			param.TimeStamp.Format("2006/01/02 - 15:04:05"),
			methodColor+param.Method+resetColor,
			param.Path,
			param.Request.Proto,
			statusColor+fmt.Sprintf("%d", param.StatusCode)+resetColor,
			fmt.Sprintf("%dms", param.Latency.Milliseconds()),
			param.ClientIP,
		)

		logger.Info("http request",
			zap.String("method", param.Method),
			zap.String("path", param.Path),
			zap.String("client_ip", param.ClientIP),
			zap.String("user_agent", param.Request.UserAgent()),
			zap.Int("status_code", param.StatusCode),
			zap.Duration("latency", param.Latency),
			zap.Time("timestamp", param.TimeStamp),
		)

		return logLine
	})
}

// RequestIDMiddleware tags every request with an id for log correlation.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = xid.New("req")
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

func getStatusColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return greenColor
	case statusCode >= 300 && statusCode < 400:
		return cyanColor
	case statusCode >= 400 && statusCode < 500:
		return yellowColor
	case statusCode >= 500:
		return redColor
	default:
		return whiteColor
	}
}

func getMethodColor(method string) string {
	switch method {
	case "GET":
		return greenColor
	case "POST":
		return blueColor
	case "PUT":
		return yellowColor
	case "DELETE":
		return redColor
	case "PATCH":
		return magentaColor
	default:
		return whiteColor
	}
}
