package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SessionUser is the opaque auth identity; only id and email matter here.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is an authenticated session with its refresh material.
type Session struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int         `json:"expires_in"`
	ExpiresAt    time.Time   `json:"-"`
	User         SessionUser `json:"user"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn exchanges email/password for a session. Auth errors are surfaced
// directly; there is no automatic retry.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return c.tokenRequest(ctx, "/auth/v1/token?grant_type=password", credentials{email, password})
}

// SignUp registers a new account. Depending on project settings the reply
// may or may not include a usable session (email confirmation pending).
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	return c.tokenRequest(ctx, "/auth/v1/signup", credentials{email, password})
}

// RefreshSession exchanges the refresh token for a fresh session.
func (c *Client) RefreshSession(ctx context.Context) (*Session, error) {
	s := c.currentSession()
	if s == nil {
		return nil, fmt.Errorf("supabase: no session to refresh")
	}
	return c.tokenRequest(ctx, "/auth/v1/token?grant_type=refresh_token",
		map[string]string{"refresh_token": s.RefreshToken})
}

func (c *Client) tokenRequest(ctx context.Context, path string, payload any) (*Session, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp)
	}

	var s Session
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("supabase: decode session: %w", err)
	}
	if s.ExpiresIn > 0 {
		s.ExpiresAt = time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	c.setSession(&s)
	return &s, nil
}

// SignOut revokes the session server-side (best effort) and clears it
// locally either way.
func (c *Client) SignOut(ctx context.Context) error {
	s := c.currentSession()
	defer c.setSession(nil)
	if s == nil {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return readError(resp)
	}
	return nil
}

// CurrentSession returns the active session, or nil when signed out.
func (c *Client) CurrentSession() *Session { return c.currentSession() }

// OnAuthChange registers a callback invoked on every session change,
// including sign-out (nil session).
func (c *Client) OnAuthChange(fn func(*Session)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// RestoreSession installs a previously persisted session without a network
// call, notifying subscribers.
func (c *Client) RestoreSession(s *Session) { c.setSession(s) }

func (c *Client) currentSession() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) setSession(s *Session) {
	c.mu.Lock()
	c.session = s
	subs := make([]func(*Session), len(c.subscribers))
	copy(subs, c.subscribers)
	c.mu.Unlock()
	for _, fn := range subs {
		fn(s)
	}
}
