package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autodocx/relay-api/internal/model"
	"github.com/autodocx/relay-api/pkg/logger"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, secret, subject string, expires time.Time) string {
	t.Helper()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expires),
			Audience:  jwt.ClaimStrings{"authenticated"},
		},
		Email: "dev@autodocx.dev",
		Role:  "authenticated",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetUserID(r.Context()) + "|" + GetEmail(r.Context())))
	})
}

func TestAuth(t *testing.T) {
	h := Auth(testSecret)(echoUser())

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, "missing authorization header"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "invalid authorization header format"},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized, "invalid token"},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", "u1", time.Now().Add(time.Hour)), http.StatusUnauthorized, "invalid token"},
		{"expired", "Bearer " + signToken(t, testSecret, "u1", time.Now().Add(-time.Hour)), http.StatusUnauthorized, "invalid token"},
		{"valid", "Bearer " + signToken(t, testSecret, "u1", time.Now().Add(time.Hour)), http.StatusOK, "u1|dev@autodocx.dev"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.body)
		})
	}
}

func TestCanActAs(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, CanActAs(req.Context(), "anyone"))

	var got bool
	h := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = CanActAs(r.Context(), "u2")
	}))
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "u1", time.Now().Add(time.Hour)))
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, got)
}

func TestLoggingSetsCorrelationID(t *testing.T) {
	var seen string
	h := Logging(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetCorrelationID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Correlation-ID"))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Correlation-ID", "given-id")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "given-id", seen)
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestValidateChatRequest(t *testing.T) {
	cases := []struct {
		name string
		req  model.ChatRequest
		want string
	}{
		{"ok", model.ChatRequest{Message: "hi", UserID: "u"}, ""},
		{"ok with id", model.ChatRequest{Message: "hi", UserID: "u", ConversationID: "abc"}, ""},
		{"missing message", model.ChatRequest{UserID: "u"}, "Missing message or user_id"},
		{"missing user", model.ChatRequest{Message: "hi"}, "Missing message or user_id"},
		{"missing beats long id", model.ChatRequest{UserID: "u", ConversationID: strings.Repeat("c", 300)}, "Missing message or user_id"},
		{"long id", model.ChatRequest{Message: "hi", UserID: "u", ConversationID: strings.Repeat("c", 300)}, "conversation_id exceeds maximum length"},
		{"long message", model.ChatRequest{Message: strings.Repeat("m", maxMessageBytes+1), UserID: "u"}, "content exceeds maximum length"},
		{"bad utf8", model.ChatRequest{Message: "\xff\xfe", UserID: "u"}, "content must be valid UTF-8"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateChatRequest(&tc.req)
			if tc.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.want, err.Error())
		})
	}
}

func TestValidateSummarizeRequest(t *testing.T) {
	assert.NoError(t, ValidateSummarizeRequest(&model.SummarizeRequest{Code: "x := 1"}))
	assert.EqualError(t, ValidateSummarizeRequest(&model.SummarizeRequest{}), "Code input is required.")
	assert.EqualError(t, ValidateSummarizeRequest(&model.SummarizeRequest{Code: strings.Repeat("x", maxCodeBytes+1)}), "code exceeds maximum length")
}
