package middleware

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// ServerInfo prints the startup banner and logs the server facts.
func ServerInfo(port string, logger *zap.Logger) {
	hostname, _ := os.Hostname()
	goVersion := runtime.Version()
	numCPU := runtime.NumCPU()
	startTime := time.Now().Format("2006-01-02 15:04:05")

	fmt.Println("")
	fmt.Println("🛒 " + boldColor + "Kirana WhatsApp Inventory Service" + resetColor)
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("📅 Started at: " + startTime)
	fmt.Println("🌐 Server URL: " + cyanColor + "http://localhost:" + port + resetColor)
	fmt.Println("💻 Hostname: " + hostname)
	fmt.Println("🔧 Go Version: " + goVersion)
	fmt.Println("⚡ CPU Cores: " + fmt.Sprintf("%d", numCPU))
	fmt.Println("")
	fmt.Println("📊 " + boldColor + "Available Endpoints:" + resetColor)
	fmt.Println("   GET  " + greenColor + "/" + resetColor + "                    - API Information")
	fmt.Println("   GET  " + greenColor + "/health" + resetColor + "              - Health Check")
	fmt.Println("   GET  " + greenColor + "/webhook" + resetColor + "             - WhatsApp Verification")
	fmt.Println("   POST " + blueColor + "/webhook" + resetColor + "             - WhatsApp Messages")
	fmt.Println("   POST " + blueColor + "/api/v1/test-message" + resetColor + " - Pipeline Test")
	fmt.Println("   GET  " + greenColor + "/api/v1/monitoring/metrics" + resetColor)
	fmt.Println("")
	fmt.Println("⚙️  " + boldColor + "Environment:" + resetColor)
	fmt.Println("   🗄️  Database: PostgreSQL")
	fmt.Println("   🗃️  Cache: Redis")
	fmt.Println("   📝 Logging: Structured (Zap)")
	fmt.Println("")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("✨ " + boldColor + "Server is ready to handle requests!" + resetColor)
	fmt.Println("")

	logger.Info("server started",
		zap.String("port", port),
		zap.String("hostname", hostname),
		zap.String("go_version", goVersion),
		zap.Int("cpu_cores", numCPU),
		zap.String("start_time", startTime),
	)
}
