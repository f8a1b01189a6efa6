package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string
	Env  string

	// Webhook delivery (Zapier/Make/n8n style catch URL). Empty means orders
	// are logged instead of forwarded, as a development fallback.
	WebhookURL     string
	WebhookTimeout time.Duration
	WebhookRetries int

	// Optional Redis-backed idempotency store. Empty disables deduplication.
	RedisURL       string
	IdempotencyTTL time.Duration

	// Optional best-effort event fan-out.
	KafkaBrokers string
	KafkaTopic   string
	SNSTopicARN  string
}

func Load() Config {
	return Config{
		Port:           getEnv("PORT", "8089"),
		Env:            getEnv("APP_ENV", "development"),
		WebhookURL:     os.Getenv("ORDER_WEBHOOK_URL"),
		WebhookTimeout: getDuration("ORDER_WEBHOOK_TIMEOUT", 10*time.Second),
		WebhookRetries: getInt("ORDER_WEBHOOK_RETRIES", 3),
		RedisURL:       os.Getenv("REDIS_URL"),
		IdempotencyTTL: getDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		KafkaBrokers:   os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "order.accepted"),
		SNSTopicARN:    os.Getenv("ORDER_SNS_TOPIC_ARN"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
