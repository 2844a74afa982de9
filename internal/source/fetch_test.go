package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRawURL(t *testing.T) {
	assert.True(t, IsRawURL("https://raw.githubusercontent.com/org/repo/main/main.go"))
	assert.False(t, IsRawURL("https://raw.githubusercontent.com/"))
	assert.False(t, IsRawURL("http://raw.githubusercontent.com/org/repo/main/main.go"))
	assert.False(t, IsRawURL("https://github.com/org/repo/blob/main/main.go"))
	assert.False(t, IsRawURL("package main\n\nfunc main() {}"))
	assert.False(t, IsRawURL(" https://raw.githubusercontent.com/org/repo/main/main.go"))
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte("package main"))
	}))
	defer srv.Close()

	body, err := NewFetcher(time.Second).Fetch(context.Background(), srv.URL+"/main.go")
	require.NoError(t, err)
	assert.Equal(t, "package main", body)
}

func TestFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewFetcher(time.Second).Fetch(context.Background(), srv.URL+"/missing.go")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFetchTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	_, err := NewFetcher(time.Second, WithMaxBytes(16)).Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestWithMatcher(t *testing.T) {
	f := NewFetcher(time.Second, WithMatcher(func(s string) bool { return strings.HasPrefix(s, "http://") }))
	assert.True(t, f.Matches("http://example.test/x.go"))
	assert.False(t, f.Matches("https://raw.githubusercontent.com/org/repo/main/main.go"))
}
