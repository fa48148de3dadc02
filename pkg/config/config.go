package config

import (
	"os"
	"strconv"
	"strings"
)

// App holds runtime configuration derived from env vars.
type App struct {
	DatabaseDriver string
	DatabaseURL    string

	APIPort     string
	Environment string
	LogLevel    string
	LogEncoding string
	CORSOrigins []string

	// MetricsPort is where the consumer and scheduler binaries expose /metrics.
	MetricsPort string

	KafkaBrokers       []string
	KafkaAuditTopic    string
	KafkaConsumerGroup string

	// RetentionCron is a standard five-field cron expression evaluated in UTC.
	RetentionCron string
	// RetentionDays of 0 disables the retention job.
	RetentionDays int
}

// FromEnv loads the application configuration from environment variables.
func FromEnv() App {
	return App{
		DatabaseDriver: getEnv("DATABASE_DRIVER", "mysql"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),

		APIPort:     getEnv("API_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "production"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogEncoding: getEnv("LOG_ENCODING", "json"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),

		MetricsPort: getEnv("METRICS_PORT", "9090"),

		KafkaBrokers:       splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaAuditTopic:    getEnv("KAFKA_AUDIT_TOPIC", "audit.ingest"),
		KafkaConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "audit-store"),

		RetentionCron: getEnv("RETENTION_CRON", "0 3 * * *"),
		RetentionDays: getInt("RETENTION_DAYS", 90),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v < 0 {
		return def
	}
	return v
}

// splitList splits a comma separated value, dropping blanks.
func splitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
