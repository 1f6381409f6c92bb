package services

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"kirana-service/internal/cache"
	"kirana-service/internal/config"
	"kirana-service/internal/models"
)

// slowMessageMs marks a pipeline run as slow; LLM fallbacks routinely
// land here, rule hits should never.
const slowMessageMs = 1000

// MonitoringService aggregates message-pipeline and infrastructure
// metrics for the ops dashboard and its websocket feed.
type MonitoringService interface {
	GetMetrics(ctx context.Context) *models.MonitoringResponse
	RecordMessage(data models.MessageData)
	GetCacheStats() models.CacheMetrics
	GetDatabaseStats(ctx context.Context) models.DatabaseMetrics
	GetSystemStats() models.SystemMetrics
	GetRedisStats(ctx context.Context) models.RedisMetrics
}

type monitoringService struct {
	logger       *zap.Logger
	config       *config.Config
	redisClient  *redis.Client
	dbPool       *sql.DB
	catalogCache *cache.CatalogCache

	mu           sync.RWMutex
	byAction     map[string]*models.ActionMetrics
	slowMessages []models.SlowMessage
	errors       []models.PipelineError

	totalMessages int64
	llmFallbacks  int64
	unrecognized  int64
	voiceMessages int64
	batchMessages int64
	maxDurationMs int64
	totalMs       int64

	startTime time.Time
}

// NewMonitoringService builds the metrics aggregator. redisClient and
// dbPool may be nil in demo mode; their sections then report offline.
func NewMonitoringService(
	logger *zap.Logger,
	cfg *config.Config,
	redisClient *redis.Client,
	dbPool *sql.DB,
	catalogCache *cache.CatalogCache,
) MonitoringService {
	return &monitoringService{
		logger:       logger,
		config:       cfg,
		redisClient:  redisClient,
		dbPool:       dbPool,
		catalogCache: catalogCache,
		byAction:     make(map[string]*models.ActionMetrics),
		startTime:    time.Now(),
	}
}

// RecordMessage folds one processed message into the counters.
func (s *monitoringService) RecordMessage(data models.MessageData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	metrics, exists := s.byAction[data.Action]
	if !exists {
		metrics = &models.ActionMetrics{}
		s.byAction[data.Action] = metrics
	}

	durationMs := data.Duration.Milliseconds()
	metrics.Count++
	metrics.TotalMs += durationMs
	metrics.AvgTimeMs = float64(metrics.TotalMs) / float64(metrics.Count)

	s.totalMessages++
	s.totalMs += durationMs
	if durationMs > s.maxDurationMs {
		s.maxDurationMs = durationMs
	}
	if data.LLMFallback {
		s.llmFallbacks++
	}
	if data.Action == string(models.ActionUnknown) {
		s.unrecognized++
	}
	if data.Voice {
		s.voiceMessages++
	}
	if data.Batch {
		s.batchMessages++
	}

	if durationMs > slowMessageMs {
		s.slowMessages = append(s.slowMessages, models.SlowMessage{
			Action:    data.Action,
			Duration:  durationMs,
			Timestamp: data.Timestamp,
		})
		if len(s.slowMessages) > 100 {
			s.slowMessages = s.slowMessages[1:]
		}
	}

	if data.Error != nil || !data.Success {
		message := "processing failed"
		if data.Error != nil {
			message = data.Error.Error()
		}
		s.errors = append(s.errors, models.PipelineError{
			Action:    data.Action,
			Message:   message,
			Timestamp: data.Timestamp,
		})
		if len(s.errors) > 100 {
			s.errors = s.errors[1:]
		}
	}
}

func (s *monitoringService) GetMetrics(ctx context.Context) *models.MonitoringResponse {
	return &models.MonitoringResponse{
		Pipeline:    s.pipelineMetrics(),
		Cache:       s.GetCacheStats(),
		Database:    s.GetDatabaseStats(ctx),
		System:      s.GetSystemStats(),
		Redis:       s.GetRedisStats(ctx),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Version:     "1.0",
		GeneratedBy: "kirana monitoring service",
	}
}

func (s *monitoringService) pipelineMetrics() models.PipelineMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byAction := make(map[string]models.ActionMetrics, len(s.byAction))
	type row struct {
		action  string
		metrics *models.ActionMetrics
	}
	var rows []row
	for action, metrics := range s.byAction {
		byAction[action] = *metrics
		rows = append(rows, row{action, metrics})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].metrics.Count > rows[j].metrics.Count })

	var top []models.TopAction
	for i, r := range rows {
		if i >= 10 {
			break
		}
		top = append(top, models.TopAction{
			Action:    r.action,
			Count:     r.metrics.Count,
			AvgTimeMs: fmt.Sprintf("%.2fms", r.metrics.AvgTimeMs),
		})
	}

	var avg float64
	if s.totalMessages > 0 {
		avg = float64(s.totalMs) / float64(s.totalMessages)
	}

	return models.PipelineMetrics{
		TotalMessages:   int(s.totalMessages),
		ByAction:        byAction,
		LLMFallbacks:    int(s.llmFallbacks),
		Unrecognized:    int(s.unrecognized),
		VoiceMessages:   int(s.voiceMessages),
		BatchMessages:   int(s.batchMessages),
		SlowMessages:    append([]models.SlowMessage(nil), s.slowMessages...),
		Errors:          append([]models.PipelineError(nil), s.errors...),
		SlowCount:       len(s.slowMessages),
		ErrorsCount:     len(s.errors),
		AvgProcessingMs: avg,
		MaxProcessingMs: s.maxDurationMs,
		TopActions:      top,
	}
}

func (s *monitoringService) GetCacheStats() models.CacheMetrics {
	stats := s.catalogCache.GetStats()

	var hitRate float64
	if stats.TotalRequests > 0 {
		hitRate = float64(stats.Hits) / float64(stats.TotalRequests)
	}
	return models.CacheMetrics{
		Connected:         true,
		TotalKeys:         stats.TotalKeys,
		HitRate:           hitRate,
		HitRatePercentage: fmt.Sprintf("%.2f%%", hitRate*100),
		TotalHits:         stats.Hits,
		TotalMisses:       stats.Misses,
		TotalRequests:     stats.TotalRequests,
		Status:            "online",
	}
}

func (s *monitoringService) GetDatabaseStats(ctx context.Context) models.DatabaseMetrics {
	if s.dbPool == nil {
		return models.DatabaseMetrics{Status: "offline"}
	}
	stats := s.dbPool.Stats()
	return models.DatabaseMetrics{
		ActiveConnections: stats.OpenConnections,
		IdleConnections:   stats.Idle,
		MaxConnections:    stats.MaxOpenConnections,
		Status:            "online",
	}
}

func (s *monitoringService) GetSystemStats() models.SystemMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(s.startTime).Seconds()
	environment := "production"
	if s.config.Server.GinMode == "debug" {
		environment = "development"
	}

	return models.SystemMetrics{
		Memory: models.MemoryMetrics{
			HeapUsed:  fmt.Sprintf("%.2f MB", float64(m.HeapAlloc)/1024/1024),
			HeapTotal: fmt.Sprintf("%.2f MB", float64(m.HeapSys)/1024/1024),
			Sys:       fmt.Sprintf("%.2f MB", float64(m.Sys)/1024/1024),
			NumGC:     m.NumGC,
		},
		Goroutines:  runtime.NumGoroutine(),
		Uptime:      uptime,
		UptimeHours: fmt.Sprintf("%.2fh", uptime/3600),
		GoVersion:   runtime.Version(),
		Platform:    runtime.GOOS,
		Environment: environment,
	}
}

func (s *monitoringService) GetRedisStats(ctx context.Context) models.RedisMetrics {
	if s.redisClient == nil {
		return models.RedisMetrics{Status: "offline"}
	}
	if _, err := s.redisClient.Ping(ctx).Result(); err != nil {
		return models.RedisMetrics{Status: "offline"}
	}
	return models.RedisMetrics{Connected: true, Status: "online"}
}
