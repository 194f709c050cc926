package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Env  string
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret string

	// CronSecret guards the scheduled sync endpoints. Empty disables them.
	CronSecret string

	// Telegram
	TelegramBotToken       string
	TelegramBotID          int64
	TelegramAPIURL         string
	TelegramRequestTimeout time.Duration
	TelegramMaxRetries     int
	TelegramRetryBackoff   time.Duration

	// Reconciliation
	AdminCacheTTL      time.Duration
	BackfillEventLimit int

	// Kafka
	KafkaBrokers     []string
	KafkaTopicPrefix string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "orbo"),
		DBPassword: getEnv("DB_PASSWORD", "orbo"),
		DBName:     getEnv("DB_NAME", "orbo"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:  getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		CronSecret: os.Getenv("CRON_SECRET"),

		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramBotID:          getEnvInt64("TELEGRAM_BOT_ID", 0),
		TelegramAPIURL:         getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		TelegramRequestTimeout: getEnvDuration("TELEGRAM_REQUEST_TIMEOUT", 5*time.Second),
		TelegramMaxRetries:     getEnvInt("TELEGRAM_MAX_RETRIES", 2),
		TelegramRetryBackoff:   getEnvDuration("TELEGRAM_RETRY_BACKOFF", 500*time.Millisecond),

		AdminCacheTTL:      getEnvDuration("ADMIN_CACHE_TTL", 7*24*time.Hour),
		BackfillEventLimit: getEnvInt("BACKFILL_EVENT_LIMIT", 5000),

		KafkaBrokers:     splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", "orbo."),
	}

	if config.TelegramMaxRetries < 0 {
		log.Printf("Warning: negative TELEGRAM_MAX_RETRIES, using 0\n")
		config.TelegramMaxRetries = 0
	}
	if config.BackfillEventLimit <= 0 {
		log.Printf("Warning: invalid BACKFILL_EVENT_LIMIT, falling back to 5000\n")
		config.BackfillEventLimit = 5000
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// DSN returns the golang-migrate style PostgreSQL URL.
func (c *Config) DSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getEnvInt64(key string, defaultValue int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
