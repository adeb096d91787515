// Package supabase holds thin REST clients for the hosted platform the
// app depends on: GoTrue auth, PostgREST records, and object storage.
// Each call is single-shot; nothing here retries.
package supabase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Client carries the base URL, the anon key, and the active session
// token. A zero-configuration client is valid by design: calls fail with
// ErrNotConfigured and the app keeps running in its degraded states.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	logger     *zap.Logger

	mu          sync.Mutex
	session     *Session
	subscribers []func(*Session)
}

// ErrNotConfigured indicates the platform URL or anon key is missing.
var ErrNotConfigured = fmt.Errorf("supabase: url or anon key not configured")

func New(baseURL, anonKey string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Configured reports whether both the URL and anon key are set.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.anonKey != ""
}

// Health probes the auth service with a hard 5s timeout. Diagnostic only;
// not part of any user-facing flow.
func (c *Client) Health(ctx context.Context) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/health", nil)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.anonKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("supabase: health: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("supabase: health status %d", resp.StatusCode)
	}
	return nil
}

// do issues one request with platform headers applied. The bearer token is
// the session access token when signed in, the anon key otherwise.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	req.Header.Set("apikey", c.anonKey)
	token := c.anonKey
	if s := c.currentSession(); s != nil {
		token = s.AccessToken
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.httpClient.Do(req)
}

func readError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

// APIError is a non-2xx platform reply.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("supabase: status %d: %s", e.Status, e.Message)
}
