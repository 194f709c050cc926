package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"TELEGRAM_REQUEST_TIMEOUT", "TELEGRAM_MAX_RETRIES", "ADMIN_CACHE_TTL", "BACKFILL_EVENT_LIMIT", "KAFKA_BROKERS", "CRON_SECRET"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.TelegramRequestTimeout != 5*time.Second {
		t.Errorf("TelegramRequestTimeout = %v, want 5s", cfg.TelegramRequestTimeout)
	}
	if cfg.TelegramMaxRetries != 2 {
		t.Errorf("TelegramMaxRetries = %d, want 2", cfg.TelegramMaxRetries)
	}
	if cfg.AdminCacheTTL != 7*24*time.Hour {
		t.Errorf("AdminCacheTTL = %v, want 168h", cfg.AdminCacheTTL)
	}
	if cfg.BackfillEventLimit != 5000 {
		t.Errorf("BackfillEventLimit = %d, want 5000", cfg.BackfillEventLimit)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Errorf("KafkaBrokers = %v, want empty", cfg.KafkaBrokers)
	}
	if cfg.CronSecret != "" {
		t.Errorf("CronSecret = %q, want empty", cfg.CronSecret)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_ID", "424242")
	t.Setenv("TELEGRAM_REQUEST_TIMEOUT", "2s")
	t.Setenv("TELEGRAM_MAX_RETRIES", "-3")
	t.Setenv("ADMIN_CACHE_TTL", "not-a-duration")
	t.Setenv("BACKFILL_EVENT_LIMIT", "100")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.TelegramBotID != 424242 {
		t.Errorf("TelegramBotID = %d, want 424242", cfg.TelegramBotID)
	}
	if cfg.TelegramRequestTimeout != 2*time.Second {
		t.Errorf("TelegramRequestTimeout = %v, want 2s", cfg.TelegramRequestTimeout)
	}
	if cfg.TelegramMaxRetries != 0 {
		t.Errorf("TelegramMaxRetries = %d, want 0 for negative input", cfg.TelegramMaxRetries)
	}
	if cfg.AdminCacheTTL != 7*24*time.Hour {
		t.Errorf("AdminCacheTTL = %v, want fallback 168h", cfg.AdminCacheTTL)
	}
	if cfg.BackfillEventLimit != 100 {
		t.Errorf("BackfillEventLimit = %d, want 100", cfg.BackfillEventLimit)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Errorf("KafkaBrokers = %v, want [kafka-1:9092 kafka-2:9092]", cfg.KafkaBrokers)
	}
}
