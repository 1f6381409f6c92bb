package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.WhatsApp.Provider != "wati" {
		t.Errorf("provider = %q", cfg.WhatsApp.Provider)
	}
	if cfg.Inventory.DefaultLowStockThreshold != 10 {
		t.Errorf("threshold = %g", cfg.Inventory.DefaultLowStockThreshold)
	}
	if cfg.Inventory.ExpiryWindowDays != 30 {
		t.Errorf("expiry window = %d", cfg.Inventory.ExpiryWindowDays)
	}
	if cfg.Inventory.SeedDemoCatalog {
		t.Error("demo seeding must default off")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("WHATSAPP_PROVIDER", "cloud")
	t.Setenv("LOW_STOCK_THRESHOLD", "4.5")
	t.Setenv("SEED_DEMO_CATALOG", "true")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.WhatsApp.Provider != "cloud" {
		t.Errorf("provider = %q", cfg.WhatsApp.Provider)
	}
	if cfg.Inventory.DefaultLowStockThreshold != 4.5 {
		t.Errorf("threshold = %g", cfg.Inventory.DefaultLowStockThreshold)
	}
	if !cfg.Inventory.SeedDemoCatalog {
		t.Error("seed flag not read")
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Errorf("openai key = %q", cfg.OpenAI.APIKey)
	}
}
