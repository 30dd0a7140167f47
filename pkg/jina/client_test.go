package jina

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factlens/factlens/internal/resilience"
)

func TestSearch_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "/great+wall", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SearchResponse{
			Code: 200,
			Data: []SearchResult{
				{Title: "Great Wall", URL: "https://example.com", Content: "in China"},
				{Title: "Second", URL: "https://example.org", Description: "desc only"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithSearchBaseURL(srv.URL))
	resp, err := client.Search(context.Background(), "great wall")

	require.NoError(t, err)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "Great Wall", resp.Data[0].Title)
	assert.Equal(t, "desc only", resp.Data[1].Description)
}

func TestRead_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "markdown", r.Header.Get("X-Return-Format"))
		assert.Equal(t, "/https://example.com/article", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ReadResponse{
			Code: 200,
			Data: ReadData{
				Title:   "Article",
				URL:     "https://example.com/article",
				Content: "# Article\n\nBody text.",
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.Read(context.Background(), "https://example.com/article")

	require.NoError(t, err)
	assert.Equal(t, "Article", resp.Data.Title)
	assert.Contains(t, resp.Data.Content, "Body text.")
}

func TestSearch_NoAuthHeaderWithoutKey(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(SearchResponse{Code: 200})
	}))
	defer srv.Close()

	client := NewClient("", WithSearchBaseURL(srv.URL))
	_, err := client.Search(context.Background(), "q")
	require.NoError(t, err)
}

func TestSearch_TransientStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient("k", WithSearchBaseURL(srv.URL))
	_, err := client.Search(context.Background(), "q")

	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestRateLimiter_SpacesRequests(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_ = json.NewEncoder(w).Encode(SearchResponse{Code: 200})
	}))
	defer srv.Close()

	client := NewClient("k", WithSearchBaseURL(srv.URL), WithRateLimit(20))

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.Search(context.Background(), "q")
		require.NoError(t, err)
	}

	// 20 rps with burst 1 means two 50ms waits across three calls.
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}
