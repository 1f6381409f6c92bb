package models

import "time"

// MonitoringResponse is the full metrics payload for the ops dashboard.
type MonitoringResponse struct {
	Pipeline    PipelineMetrics `json:"pipeline"`
	Cache       CacheMetrics    `json:"cache"`
	Database    DatabaseMetrics `json:"database"`
	System      SystemMetrics   `json:"system"`
	Redis       RedisMetrics    `json:"redis"`
	Timestamp   string          `json:"timestamp"`
	Version     string          `json:"version"`
	GeneratedBy string          `json:"generated_by"`
}

// PipelineMetrics aggregates message-processing counters.
type PipelineMetrics struct {
	TotalMessages    int                      `json:"total_messages"`
	ByAction         map[string]ActionMetrics `json:"by_action"`
	LLMFallbacks     int                      `json:"llm_fallbacks"`
	Unrecognized     int                      `json:"unrecognized"`
	VoiceMessages    int                      `json:"voice_messages"`
	BatchMessages    int                      `json:"batch_messages"`
	SlowMessages     []SlowMessage            `json:"slow_messages"`
	Errors           []PipelineError          `json:"errors"`
	SlowCount        int                      `json:"slow_count"`
	ErrorsCount      int                      `json:"errors_count"`
	AvgProcessingMs  float64                  `json:"avg_processing_ms"`
	MaxProcessingMs  int64                    `json:"max_processing_ms"`
	TopActions       []TopAction              `json:"top_actions"`
}

// ActionMetrics counts messages that resolved to one action.
type ActionMetrics struct {
	Count     int     `json:"count"`
	AvgTimeMs float64 `json:"avg_time_ms"`
	TotalMs   int64   `json:"total_ms"`
}

// SlowMessage is a pipeline run that exceeded the slow threshold.
type SlowMessage struct {
	Action    string    `json:"action"`
	Duration  int64     `json:"duration_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// PipelineError is one failed message run.
type PipelineError struct {
	Action    string    `json:"action"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// TopAction is a most-frequent action summary row.
type TopAction struct {
	Action    string `json:"action"`
	Count     int    `json:"count"`
	AvgTimeMs string `json:"avg_time_ms"`
}

// CacheMetrics reports the catalog cache hit rate.
type CacheMetrics struct {
	Connected         bool    `json:"connected"`
	TotalKeys         int     `json:"total_keys"`
	HitRate           float64 `json:"hit_rate"`
	HitRatePercentage string  `json:"hit_rate_percentage"`
	TotalHits         int64   `json:"total_hits"`
	TotalMisses       int64   `json:"total_misses"`
	TotalRequests     int64   `json:"total_requests"`
	Status            string  `json:"status"`
}

// DatabaseMetrics reports connection pool health.
type DatabaseMetrics struct {
	ActiveConnections int    `json:"active_connections"`
	IdleConnections   int    `json:"idle_connections"`
	MaxConnections    int    `json:"max_connections"`
	Status            string `json:"status"`
}

// SystemMetrics reports process health.
type SystemMetrics struct {
	Memory      MemoryMetrics `json:"memory"`
	Goroutines  int           `json:"goroutines"`
	Uptime      float64       `json:"uptime"`
	UptimeHours string        `json:"uptime_hours"`
	GoVersion   string        `json:"go_version"`
	Platform    string        `json:"platform"`
	Environment string        `json:"environment"`
}

// MemoryMetrics reports Go runtime memory usage.
type MemoryMetrics struct {
	HeapUsed  string `json:"heap_used"`
	HeapTotal string `json:"heap_total"`
	Sys       string `json:"sys"`
	NumGC     uint32 `json:"num_gc"`
}

// RedisMetrics reports Redis connectivity.
type RedisMetrics struct {
	Connected bool   `json:"connected"`
	Status    string `json:"status"`
}

// MessageData is one processed message fed into the monitoring service.
type MessageData struct {
	Action      string
	Duration    time.Duration
	Success     bool
	Voice       bool
	Batch       bool
	LLMFallback bool
	Error       error
	Timestamp   time.Time
}
