package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_StoresToken(t *testing.T) {
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/auth/login":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "admin", body["username"])
			_, _ = w.Write([]byte(`{"token":"tok-1"}`))
		case "/api/guestbook":
			gotAuth.Store(r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	token, err := c.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	_, err = c.ListGuestbook(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth.Load())
}

func TestLogin_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Login(context.Background(), "admin", "bad")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid credentials", apiErr.Message)
}

func TestListGuestbook_PassesLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"a","name":"Ann","message":"hi","created_at":"2026-01-02T03:04:05Z"}]`))
	}))
	defer srv.Close()

	entries, err := New(srv.URL, time.Second).ListGuestbook(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].ID)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), entries[0].CreatedAt.UTC())
}

func TestListGuestbookNewer_SendsSince(t *testing.T) {
	since := time.Date(2026, 1, 2, 3, 4, 5, 6000, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/guestbook/newer", r.URL.Path)
		got, err := time.Parse(time.RFC3339Nano, r.URL.Query().Get("since"))
		assert.NoError(t, err)
		assert.True(t, got.Equal(since))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	entries, err := New(srv.URL, time.Second).ListGuestbookNewer(context.Background(), since, 50)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListGuestbook_RetriesGatewayErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"busy"}`))
			return
		}
		_, _ = w.Write([]byte(`[{"id":"g1","name":"Ann","message":"hello"}]`))
	}))
	defer srv.Close()

	entries, err := New(srv.URL, time.Second).ListGuestbook(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "g1", entries[0].ID)
	assert.EqualValues(t, 2, calls.Load())
}

func TestSignGuestbook_Created(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["message"])
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"g1","name":"Ann","message":"hello"}`))
	}))
	defer srv.Close()

	e, err := New(srv.URL, time.Second).SignGuestbook(context.Background(), "Ann", "hello")
	require.NoError(t, err)
	assert.Equal(t, "g1", e.ID)
}

func TestSignGuestbook_GatewayErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"busy"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).SignGuestbook(context.Background(), "Ann", "hello")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.EqualValues(t, 1, calls.Load())
}

func TestRetryCondition_OnlyGets(t *testing.T) {
	transportErr := errors.New("connection reset")
	get := &resty.Response{Request: &resty.Request{Method: http.MethodGet}}
	post := &resty.Response{Request: &resty.Request{Method: http.MethodPost}}

	assert.True(t, retryCondition(get, transportErr))
	assert.False(t, retryCondition(post, transportErr))
	assert.False(t, retryCondition(nil, transportErr))
}

func TestSignGuestbook_RateLimitedNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"too many requests"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).SignGuestbook(context.Background(), "Ann", "hello")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.EqualValues(t, 1, calls.Load())
}
