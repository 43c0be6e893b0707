package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port              string
	PolygonAPIKey     string
	RequireRealData   bool
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string
	RedisURL          string
	RequestTimeout    time.Duration
	CompletionTimeout time.Duration
	CacheTTLActivity  time.Duration
	RateLimitWindow   time.Duration
	RateLimitMax      int
	CircuitFailLimit  int
	CircuitCooldown   time.Duration
	ScanLimit         int
	MaxQuestionChars  int
	MaxTickerChars    int
	MaxContractChars  int
}

func Load() Config {
	return Config{
		Port:              getEnv("PORT", "8080"),
		PolygonAPIKey:     os.Getenv("POLYGON_API_KEY"),
		RequireRealData:   getEnvBool("REQUIRE_REAL_DATA", false),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379"),
		RequestTimeout:    getEnvDuration("REQUEST_TIMEOUT", 12*time.Second),
		CompletionTimeout: getEnvDuration("COMPLETION_TIMEOUT", 12*time.Second),
		CacheTTLActivity:  getEnvDuration("CACHE_TTL_ACTIVITY", 30*time.Second),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", 60*time.Second),
		RateLimitMax:      getEnvInt("RATE_LIMIT_MAX", 8),
		CircuitFailLimit:  getEnvInt("CIRCUIT_FAIL_LIMIT", 3),
		CircuitCooldown:   getEnvDuration("CIRCUIT_COOLDOWN", 20*time.Second),
		ScanLimit:         getEnvInt("SCAN_LIMIT", 100),
		MaxQuestionChars:  getEnvInt("MAX_QUESTION_CHARS", 1200),
		MaxTickerChars:    getEnvInt("MAX_TICKER_CHARS", 12),
		MaxContractChars:  getEnvInt("MAX_CONTRACT_CHARS", 64),
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(i) * time.Second
}
