package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "CHAT_TIMEOUT", "LANGFLOW_URL", "LANGFLOW_TOKEN", "LANGFLOW_SECRET",
		"SUMMARIZER_PROVIDER", "GEMINI_API_KEY", "GEMINI_MODEL", "CORS_ALLOWED_ORIGINS",
		"RATE_LIMIT_REQUESTS", "TRACING_ENABLED", "SUPABASE_JWT_SECRET", "DATABASE_URL",
		"PERSIST_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 30*time.Second, cfg.ChatTimeout)
	assert.Equal(t, 5*time.Second, cfg.PersistTimeout)
	assert.Equal(t, DefaultLangflowURL, cfg.LangflowURL)
	assert.Equal(t, "gemini", cfg.SummarizerProvider)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, 60, cfg.RateLimitRequests)
	assert.Equal(t, []string{"https://*", "http://*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.TracingEnabled)
	assert.False(t, cfg.ChatConfigured())
	assert.False(t, cfg.AuthEnabled())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHAT_TIMEOUT", "5s")
	t.Setenv("LANGFLOW_TOKEN", "tok")
	t.Setenv("LANGFLOW_SECRET", "sec")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://autodocx.dev, http://localhost:3000 ,")
	t.Setenv("RATE_LIMIT_REQUESTS", "not-a-number")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("PERSIST_TIMEOUT", "2s")

	cfg := Load()

	assert.Equal(t, 5*time.Second, cfg.ChatTimeout)
	assert.True(t, cfg.ChatConfigured())
	assert.Equal(t, []string{"https://autodocx.dev", "http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 60, cfg.RateLimitRequests)
	assert.True(t, cfg.TracingEnabled)
	assert.Equal(t, 2*time.Second, cfg.PersistTimeout)
}

func TestChatConfiguredNeedsBothCredentials(t *testing.T) {
	cfg := &Config{LangflowToken: "tok"}
	assert.False(t, cfg.ChatConfigured())

	cfg = &Config{LangflowSecret: "sec"}
	assert.False(t, cfg.ChatConfigured())
}
