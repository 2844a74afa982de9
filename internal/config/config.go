// Package config provides environment configuration for the API server.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultLangflowURL is the hosted AutoDocx chat flow.
const DefaultLangflowURL = "https://astra.datastax.com/api/v1/run/0d27cd2c-be0f-4f7c-99be-6d9f4a59a98e?stream=false"

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string

	// Chat relay
	LangflowURL    string
	LangflowToken  string
	LangflowSecret string
	ChatTimeout    time.Duration

	// Summarizer relay
	SummarizerProvider string
	GeminiAPIKey       string
	GeminiModel        string
	GeminiBaseURL      string
	OpenAIAPIKey       string
	AnthropicAPIKey    string
	SummaryTimeout     time.Duration
	SourceFetchTimeout time.Duration
	SummaryCacheTTL    time.Duration
	RedisURL           string

	// Persistence
	DatabaseURL    string
	PersistTimeout time.Duration

	// NATS settings
	NATSURL        string
	NATSClientName string
	NATSCAFile     string
	NATSCertFile   string
	NATSKeyFile    string
	NATSToken      string

	// Auth
	SupabaseJWTSecret string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string
	LogFile  string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables, after merging a
// .env file from the working directory if one exists.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),
		ShutdownTimeout:    getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),
		CORSAllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS", []string{"https://*", "http://*"}),

		// Chat relay
		LangflowURL:    getEnv("LANGFLOW_URL", DefaultLangflowURL),
		LangflowToken:  getEnv("LANGFLOW_TOKEN", ""),
		LangflowSecret: getEnv("LANGFLOW_SECRET", ""),
		ChatTimeout:    getDurationEnv("CHAT_TIMEOUT", 30*time.Second),

		// Summarizer relay
		SummarizerProvider: getEnv("SUMMARIZER_PROVIDER", "gemini"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		SummaryTimeout:     getDurationEnv("SUMMARY_TIMEOUT", 60*time.Second),
		SourceFetchTimeout: getDurationEnv("SOURCE_FETCH_TIMEOUT", 15*time.Second),
		SummaryCacheTTL:    getDurationEnv("SUMMARY_CACHE_TTL", time.Hour),
		RedisURL:           getEnv("REDIS_URL", ""),

		// Persistence
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		PersistTimeout: getDurationEnv("PERSIST_TIMEOUT", 5*time.Second),

		// NATS
		NATSURL:        getEnv("NATS_URL", ""),
		NATSClientName: getEnv("NATS_CLIENT_NAME", "autodocx-relay"),
		NATSCAFile:     getEnv("NATS_CA_FILE", ""),
		NATSCertFile:   getEnv("NATS_CERT_FILE", ""),
		NATSKeyFile:    getEnv("NATS_KEY_FILE", ""),
		NATSToken:      getEnv("NATS_TOKEN", ""),

		// Auth
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", ""),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

// ChatConfigured reports whether the LangFlow credentials are present.
func (c *Config) ChatConfigured() bool {
	return c.LangflowToken != "" && c.LangflowSecret != ""
}

// AuthEnabled reports whether bearer tokens are verified on /api routes.
func (c *Config) AuthEnabled() bool {
	return c.SupabaseJWTSecret != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
