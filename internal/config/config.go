package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Logging
	LogLevel  string
	LogFormat string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// Calendar used for "today", streaks and study-hour checks
	Timezone string

	// Quiz generation
	QuizProvider       string
	QuizQuestionCount  int
	QuizConcurrentReqs int
	GeminiAPIKey       string
	GeminiModel        string
	AnthropicAPIKey    string
	AnthropicModel     string
	OpenAIAPIKey       string
	OpenAIModel        string
	OpenRouterAPIKey   string
	OpenRouterModel    string
	WorkerCount        int

	// Achievements and leaderboard
	AchievementLockTTL  time.Duration
	LeaderboardCacheTTL time.Duration

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                getEnvOrDefault("PORT", "8080"),
		Env:                 getEnvOrDefault("ENV", "development"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", ""),
		DatabaseURL:         mustGetEnv("DATABASE_URL"),
		RedisURL:            mustGetEnv("REDIS_URL"),
		JWTSecret:           mustGetEnv("JWT_SECRET"),
		Timezone:            getEnvOrDefault("TIMEZONE", "UTC"),
		QuizProvider:        getEnvOrDefault("QUIZ_PROVIDER", "gemini"),
		QuizQuestionCount:   getEnvAsIntOrDefault("QUIZ_QUESTION_COUNT", 5),
		QuizConcurrentReqs:  getEnvAsIntOrDefault("QUIZ_CONCURRENT_REQUESTS", 5),
		GeminiAPIKey:        getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:         getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		AnthropicAPIKey:     getEnvOrDefault("ANTHROPIC_API_KEY", ""),
		AnthropicModel:      getEnvOrDefault("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
		OpenAIAPIKey:        getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIModel:         getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenRouterAPIKey:    getEnvOrDefault("OPENROUTER_API_KEY", ""),
		OpenRouterModel:     getEnvOrDefault("OPENROUTER_MODEL", "meta-llama/llama-3.3-70b-instruct:free"),
		WorkerCount:         getEnvAsIntOrDefault("WORKER_COUNT", 3),
		AchievementLockTTL:  getEnvAsDurationOrDefault("ACHIEVEMENT_LOCK_TTL", 10*time.Second),
		LeaderboardCacheTTL: getEnvAsDurationOrDefault("LEADERBOARD_CACHE_TTL", time.Minute),
		FrontendURL:         getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	if cfg.LogFormat == "" {
		if cfg.Env == "development" {
			cfg.LogFormat = "text"
		} else {
			cfg.LogFormat = "json"
		}
	}

	return cfg
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ProviderAPIKey returns the key configured for the selected quiz provider.
func (c *Config) ProviderAPIKey() string {
	switch c.QuizProvider {
	case "gemini":
		return c.GeminiAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	case "openai":
		return c.OpenAIAPIKey
	case "openrouter":
		return c.OpenRouterAPIKey
	}
	return ""
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
