package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	Server    ServerConfig
	WhatsApp  WhatsAppConfig
	OpenAI    OpenAIConfig
	Inventory InventoryConfig
	Logging   LoggingConfig
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type ServerConfig struct {
	Port    string
	GinMode string
}

// WhatsAppConfig selects and configures the message provider. Provider
// is "wati" or "cloud".
type WhatsAppConfig struct {
	Provider    string
	APIKey      string
	APIBaseURL  string
	PhoneID     string
	VerifyToken string
}

// OpenAIConfig drives the LLM classification fallback and voice
// transcription. An empty APIKey disables both.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// InventoryConfig holds domain tunables.
type InventoryConfig struct {
	DefaultLowStockThreshold float64
	ExpiryWindowDays         int
	SeedDemoCatalog          bool
	DemoShopID               string
	DemoOwnerPhone           string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			// Empty means no Postgres: the service runs on the in-memory
			// store, which is the demo and test mode.
			URL:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: time.Duration(getEnvAsInt("DB_CONN_MAX_LIFETIME", 5)) * time.Minute,
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "release"),
		},
		WhatsApp: WhatsAppConfig{
			Provider:    getEnv("WHATSAPP_PROVIDER", "wati"),
			APIKey:      getEnv("WHATSAPP_API_KEY", ""),
			APIBaseURL:  getEnv("WHATSAPP_API_BASE_URL", ""),
			PhoneID:     getEnv("WHATSAPP_PHONE_ID", ""),
			VerifyToken: getEnv("WHATSAPP_VERIFY_TOKEN", "kirana-verify"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		},
		Inventory: InventoryConfig{
			DefaultLowStockThreshold: getEnvAsFloat("LOW_STOCK_THRESHOLD", 10),
			ExpiryWindowDays:         getEnvAsInt("EXPIRY_WINDOW_DAYS", 30),
			SeedDemoCatalog:          getEnvAsBool("SEED_DEMO_CATALOG", false),
			DemoShopID:               getEnv("DEMO_SHOP_ID", "demo-shop"),
			DemoOwnerPhone:           getEnv("DEMO_OWNER_PHONE", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
