package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/continuity-backend/internal/platform/logger"
)

func TestChatSendsRequestAndReturnsFirstChoice(t *testing.T) {
	var got chatCompletionsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, chatCompletionsPath, r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}],"usage":{"prompt_tokens":3,"completion_tokens":1}}`))
	}))
	defer srv.Close()

	c, err := NewClient(logger.Nop(), Options{APIKey: "k", BaseURL: srv.URL + "/", Model: "m"})
	require.NoError(t, err)

	out, err := c.Chat(context.Background(), ChatRequest{System: "sys", User: "usr", Temperature: 0.3, MaxTokens: 2048})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	assert.Equal(t, "m", got.Model)
	assert.Equal(t, 0.3, got.Temperature)
	assert.Equal(t, 2048, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "sys", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "usr", got.Messages[1].Content)
}

func TestChatEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c, err := NewClient(logger.Nop(), Options{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)
	out, err := c.Chat(context.Background(), ChatRequest{User: "x"})
	require.NoError(t, err)
	assert.Equal(t, "", out)
	assert.Equal(t, DefaultModel, c.Model())
}

func TestChatUpstreamErrorNoRetryByDefault(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`overloaded`))
	}))
	defer srv.Close()

	c, err := NewClient(logger.Nop(), Options{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = c.Chat(context.Background(), ChatRequest{User: "x"})
	require.Error(t, err)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestChatRetriesWhenConfigured(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(logger.Nop(), Options{APIKey: "k", BaseURL: srv.URL, MaxRetries: 1})
	require.NoError(t, err)
	out, err := c.Chat(context.Background(), ChatRequest{User: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(logger.Nop(), Options{})
	require.Error(t, err)
}

func TestOptionsNormalizeDefaults(t *testing.T) {
	o, err := Options{APIKey: " k ", BaseURL: " https://example.test/ ", MaxRetries: -3}.normalize()
	require.NoError(t, err)
	assert.Equal(t, "k", o.APIKey)
	assert.Equal(t, "https://example.test", o.BaseURL)
	assert.Equal(t, DefaultModel, o.Model)
	assert.Equal(t, DefaultTimeout, o.Timeout)
	assert.Equal(t, 0, o.MaxRetries)
	require.NotNil(t, o.HTTPClient)
	assert.Equal(t, DefaultTimeout, o.HTTPClient.Timeout)
}
