// Package client is a small Go client for the portfolio REST API.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"portfolio/internal/models"
)

const defaultTimeout = 10 * time.Second

// APIError is the JSON error body returned by the API.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client talks to a running portfolio server.
type Client struct {
	http *resty.Client
}

// New returns a client for baseURL, e.g. "http://localhost:8080".
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second)
	rc.AddRetryCondition(retryCondition)
	return &Client{http: rc}
}

// retryCondition retries GETs on transport failures and gateway errors.
// Writes are never retried since the server may already have applied them.
// A 429 is left to the caller so rate limits are not hammered.
func retryCondition(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return true
	}
	switch r.StatusCode() {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.http.SetAuthToken(token)
}

// Login exchanges credentials for a token and keeps it on the client.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &out, nil); err != nil {
		return "", err
	}
	c.SetToken(out.Token)
	return out.Token, nil
}

// ListGuestbook returns the newest entries. A limit <= 0 uses the server default.
func (c *Client) ListGuestbook(ctx context.Context, limit int) ([]models.GuestbookEntry, error) {
	var q map[string]string
	if limit > 0 {
		q = map[string]string{"limit": strconv.Itoa(limit)}
	}
	var out []models.GuestbookEntry
	if err := c.do(ctx, http.MethodGet, "/api/guestbook", nil, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

// ListGuestbookNewer returns up to limit entries created strictly after since.
// The server returns the oldest such entries, so a full page means more are waiting.
func (c *Client) ListGuestbookNewer(ctx context.Context, since time.Time, limit int) ([]models.GuestbookEntry, error) {
	q := map[string]string{"since": since.UTC().Format(time.RFC3339Nano)}
	if limit > 0 {
		q["limit"] = strconv.Itoa(limit)
	}
	var out []models.GuestbookEntry
	if err := c.do(ctx, http.MethodGet, "/api/guestbook/newer", nil, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

// SignGuestbook posts a new entry.
func (c *Client) SignGuestbook(ctx context.Context, name, message string) (*models.GuestbookEntry, error) {
	var out models.GuestbookEntry
	body := map[string]string{"name": name, "message": message}
	if err := c.do(ctx, http.MethodPost, "/api/guestbook", body, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, result any, query map[string]string) error {
	req := c.http.R().SetContext(ctx).SetError(&APIError{})
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	if query != nil {
		req.SetQueryParams(query)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if !resp.IsError() {
		return nil
	}
	if apiErr, ok := resp.Error().(*APIError); ok && apiErr != nil && apiErr.Message != "" {
		apiErr.Status = resp.StatusCode()
		return apiErr
	}
	return &APIError{Status: resp.StatusCode(), Message: resp.String()}
}
