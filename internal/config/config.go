package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	DatabaseURL      string
	RedisURL         string
	NATSURL          string
	NATSSubject      string
	JWTSecret        string
	SeedEnabled      bool
	SeedToken        string
	OpenAIAPIKey     string
	AIBaseURL        string
	AIModel          string
	AITemperature    float32
	AIMaxTokens      int
	AIRateLimit      int
	BulkGradingDelay time.Duration
	GradingJobTTL    time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EDUSPHERE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "EduSphere API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "5000")
	v.SetDefault("nats.subject", "edusphere.submissions.graded")
	v.SetDefault("seed.enabled", false)
	v.SetDefault("ai.model", "gpt-4o")
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.max_tokens", 1500)
	v.SetDefault("ai.rate_limit", 10)
	v.SetDefault("grading.bulk_delay", "1s")
	v.SetDefault("grading.job_ttl", "24h")

	bulkDelay, err := parseDuration(v.GetString("grading.bulk_delay"), time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid bulk grading delay: %w", err)
	}

	jobTTL, err := parseDuration(v.GetString("grading.job_ttl"), 24*time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("invalid grading job ttl: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		NATSURL:          v.GetString("nats.url"),
		NATSSubject:      v.GetString("nats.subject"),
		JWTSecret:        v.GetString("jwt.secret"),
		SeedEnabled:      v.GetBool("seed.enabled"),
		SeedToken:        v.GetString("seed.token"),
		OpenAIAPIKey:     v.GetString("openai_api_key"),
		AIBaseURL:        v.GetString("ai.base_url"),
		AIModel:          v.GetString("ai.model"),
		AITemperature:    float32(v.GetFloat64("ai.temperature")),
		AIMaxTokens:      v.GetInt("ai.max_tokens"),
		AIRateLimit:      v.GetInt("ai.rate_limit"),
		BulkGradingDelay: bulkDelay,
		GradingJobTTL:    jobTTL,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.AIMaxTokens <= 0 {
		cfg.AIMaxTokens = 1500
	}

	if cfg.AIRateLimit <= 0 {
		cfg.AIRateLimit = 10
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if parsed < 0 {
		return 0, fmt.Errorf("duration must not be negative")
	}
	return parsed, nil
}
