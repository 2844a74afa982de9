package langflow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string, timeout time.Duration) *Client {
	return New(Config{URL: url, Token: "tok", Secret: "sec", Timeout: timeout})
}

func TestRunSendsFlowRequest(t *testing.T) {
	var got runRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "sec", r.Header.Get("x-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"output":"hello"}`))
	}))
	defer srv.Close()

	reply, err := newTestClient(srv.URL, time.Second).Run(context.Background(), "hi there")
	require.NoError(t, err)

	assert.Equal(t, "hello", reply)
	assert.Equal(t, "hi there", got.InputValue)
	assert.Equal(t, "chat", got.InputType)
	assert.Equal(t, "chat", got.OutputType)
	assert.Contains(t, got.Tweaks, "GoogleGenerativeAIModel-TnXjz")
}

func TestRunPlainTextReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("plain text"))
	}))
	defer srv.Close()

	reply, err := newTestClient(srv.URL, time.Second).Run(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "plain text", reply)
}

func TestRunStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "flow exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, time.Second).Run(context.Background(), "hi")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "flow exploded")
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestRunTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := newTestClient(srv.URL, 50*time.Millisecond).Run(context.Background(), "hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestRunUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url, time.Second).Run(context.Background(), "hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestConfigured(t *testing.T) {
	assert.True(t, New(Config{Token: "a", Secret: "b"}).Configured())
	assert.False(t, New(Config{Token: "a"}).Configured())
	assert.False(t, New(Config{}).Configured())
}

func TestExtractOutput(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"string output", `{"output":"hello"}`, "hello"},
		{"non string output", `{"output": {"text": "hi"}}`, `{"output":{"text":"hi"}}`},
		{"missing output", `{"outputs": []}`, `{"outputs":[]}`},
		{"array payload", `[1, 2]`, `[1,2]`},
		{"plain text", "plain text", "plain text"},
		{"plain text keeps whitespace", "  spaced out\n", "  spaced out\n"},
		{"broken json", `{"output": "hel`, `{"output": "hel`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractOutput([]byte(tc.body)))
		})
	}
}
