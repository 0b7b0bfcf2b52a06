package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                  string
	DBUrl                 string
	JWTSecret             string
	AppEnv                string
	TokenTTL              time.Duration
	CORSAllowOrigins      string
	KafkaBrokers          []string
	AnalyticsTopic        string
	AnalyticsPollInterval time.Duration
	AnalyticsBatchSize    int
	EnableMetrics         bool
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		Port:                  getEnv("PORT", "8080"),
		DBUrl:                 getEnv("DB_URL", ""),
		JWTSecret:             jwtSecret,
		AppEnv:                normalizeEnv(getEnv("APP_ENV", "production")),
		TokenTTL:              getEnvDuration("TOKEN_TTL", 24*time.Hour),
		CORSAllowOrigins:      getEnv("CORS_ALLOW_ORIGINS", "*"),
		KafkaBrokers:          getEnvList("KAFKA_BROKERS"),
		AnalyticsTopic:        getEnv("ANALYTICS_TOPIC", "befit.analytics"),
		AnalyticsPollInterval: getEnvDuration("ANALYTICS_POLL_INTERVAL", 2*time.Second),
		AnalyticsBatchSize:    getEnvInt("ANALYTICS_BATCH_SIZE", 100),
		EnableMetrics:         getEnvBool("ENABLE_METRICS", true),
	}, nil
}

// AnalyticsEnabled reports whether the Kafka dispatcher should run.
func (c *Config) AnalyticsEnabled() bool {
	return c != nil && len(c.KafkaBrokers) > 0 && c.AnalyticsTopic != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func getEnvList(key string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}
