package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"storefront-agent/internal/domain"
)

// ---------------------------------------------------------------------------
// chatURL helper
// ---------------------------------------------------------------------------

func TestChatURL(t *testing.T) {
	cases := []struct {
		base string
		want string
	}{
		{"https://api.openai.com/v1", "https://api.openai.com/v1/chat/completions"},
		{"https://api.openai.com/v1/", "https://api.openai.com/v1/chat/completions"},
		{"http://localhost:8080", "http://localhost:8080/v1/chat/completions"},
		{"", "https://api.openai.com/v1/chat/completions"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, chatURL(tc.base), "base=%q", tc.base)
	}
}

// ---------------------------------------------------------------------------
// Chat
// ---------------------------------------------------------------------------

func messages() []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: "system", Content: "You are a shopping assistant."},
		{Role: "user", Content: "blue shirt"},
	}
}

func TestChat_HappyPath(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &gotReq))
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"Here you go!"}}]}`))
	}))
	defer srv.Close()

	c := NewClient("sk-test", WithBaseURL(srv.URL))
	reply, err := c.Chat(context.Background(), "gpt-4o-mini", messages())
	require.NoError(t, err)
	require.Equal(t, "Here you go!", reply)
	require.Equal(t, "Bearer sk-test", gotAuth)
	require.Equal(t, "gpt-4o-mini", gotReq.Model)
	require.InDelta(t, 0.2, gotReq.Temperature, 1e-9)
	require.Equal(t, messages(), gotReq.Messages)
}

func TestChat_EmptyModelRejected(t *testing.T) {
	c := NewClient("sk-test")
	_, err := c.Chat(context.Background(), "", messages())
	require.Error(t, err)
	require.Contains(t, err.Error(), "model")
}

func TestChat_EmptyChoicesIsDegradedSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient("sk-test", WithBaseURL(srv.URL))
	reply, err := c.Chat(context.Background(), "gpt-4o-mini", messages())
	require.NoError(t, err)
	require.Empty(t, reply)
}

func TestChat_MissingContentIsDegradedSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant"}}]}`))
	}))
	defer srv.Close()

	c := NewClient("sk-test", WithBaseURL(srv.URL))
	reply, err := c.Chat(context.Background(), "gpt-4o-mini", messages())
	require.NoError(t, err)
	require.Empty(t, reply)
}

func TestChat_Non2xxKeepsRawBody(t *testing.T) {
	const upstreamBody = `{"error":{"message":"insufficient quota","type":"insufficient_quota"}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(upstreamBody))
	}))
	defer srv.Close()

	c := NewClient("sk-test", WithBaseURL(srv.URL))
	_, err := c.Chat(context.Background(), "gpt-4o-mini", messages())
	require.Error(t, err)

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	require.Equal(t, upstreamBody, statusErr.Body)
	require.Equal(t, upstreamBody, statusErr.UpstreamBody())
	require.Equal(t, http.StatusTooManyRequests, statusErr.HTTPStatusCode())
}

func TestChat_NonJSONBodyIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway timeout</html>`))
	}))
	defer srv.Close()

	c := NewClient("sk-test", WithBaseURL(srv.URL))
	_, err := c.Chat(context.Background(), "gpt-4o-mini", messages())
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode response")
}

func TestChat_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient("sk-test", WithBaseURL(srv.URL), WithHTTPClient(&http.Client{Timeout: time.Second}))
	_, err := c.Chat(context.Background(), "gpt-4o-mini", messages())
	require.Error(t, err)

	var statusErr *HTTPStatusError
	require.False(t, errors.As(err, &statusErr), "transport failures must not masquerade as upstream rejections")
}

func TestResolvedHTTPClient_DefaultsWhenNil(t *testing.T) {
	c := NewClient("sk-test")
	c.httpClient = nil
	require.NotNil(t, c.resolvedHTTPClient())
}
