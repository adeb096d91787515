package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/c-hri-sw-u/PalPal/internal/database/repository"
	"github.com/c-hri-sw-u/PalPal/internal/pal"
	"github.com/c-hri-sw-u/PalPal/internal/supabase"
)

var (
	// ErrConfirmationRequired means sign-up succeeded but the project
	// requires email confirmation before a session is issued.
	ErrConfirmationRequired = errors.New("service: email confirmation required")
	// ErrNoSession means there is no restorable local session.
	ErrNoSession = errors.New("service: no stored session")
)

// AuthService wraps the auth endpoints with the application's users row and
// persists the session locally so restarts stay signed in.
type AuthService struct {
	Client *supabase.Client
	State  *repository.StateRepo
	Logger *zap.Logger
}

// SignIn authenticates and returns the application user, creating the users
// row on first sign-in. Auth errors are surfaced unchanged.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (pal.User, error) {
	sess, err := s.Client.SignIn(ctx, email, password)
	if err != nil {
		return pal.User{}, err
	}
	return s.establish(ctx, sess)
}

// SignUp registers an account. When the project requires email confirmation
// no session is issued and ErrConfirmationRequired is returned.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (pal.User, error) {
	sess, err := s.Client.SignUp(ctx, email, password)
	if err != nil {
		return pal.User{}, err
	}
	if sess.AccessToken == "" {
		return pal.User{}, ErrConfirmationRequired
	}
	return s.establish(ctx, sess)
}

// SignOut revokes the session and clears all locally persisted state.
func (s *AuthService) SignOut(ctx context.Context) error {
	err := s.Client.SignOut(ctx)
	s.clearState(ctx)
	return err
}

// storedSession is the local persistence shape for a session. The auth wire
// format keeps expiry out of Session's JSON, so it rides alongside here.
type storedSession struct {
	supabase.Session
	ExpiresAt time.Time `json:"expires_at"`
}

// Restore installs a previously persisted session, refreshing it when it has
// expired. ErrNoSession when nothing usable is stored.
func (s *AuthService) Restore(ctx context.Context) (pal.User, error) {
	if s.State == nil {
		return pal.User{}, ErrNoSession
	}
	raw, err := s.State.Get(ctx, repository.StateSession)
	if err != nil || raw == "" {
		return pal.User{}, ErrNoSession
	}
	var stored storedSession
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.clearState(ctx)
		return pal.User{}, ErrNoSession
	}
	sess := stored.Session
	sess.ExpiresAt = stored.ExpiresAt
	s.Client.RestoreSession(&sess)

	if !sess.ExpiresAt.IsZero() && time.Now().After(sess.ExpiresAt) {
		fresh, err := s.Client.RefreshSession(ctx)
		if err != nil {
			s.clearState(ctx)
			return pal.User{}, ErrNoSession
		}
		return s.establish(ctx, fresh)
	}
	return s.establish(ctx, &sess)
}

// establish resolves the users row for the session (creating it when
// missing) and persists session + user locally.
func (s *AuthService) establish(ctx context.Context, sess *supabase.Session) (pal.User, error) {
	user, err := s.ensureUser(ctx, sess.User)
	if err != nil {
		return pal.User{}, err
	}
	s.persist(ctx, sess, user)
	return user, nil
}

func (s *AuthService) ensureUser(ctx context.Context, su supabase.SessionUser) (pal.User, error) {
	var user pal.User
	err := s.Client.SelectOne(ctx, supabase.TableUsers, supabase.Filters{"id": su.ID}, &user)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, supabase.ErrNoRows) {
		return pal.User{}, fmt.Errorf("load user: %w", err)
	}

	username := usernameFor(su)
	record := map[string]string{"id": su.ID, "username": username}
	if err := s.Client.Insert(ctx, supabase.TableUsers, record, &user); err != nil {
		return pal.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func usernameFor(su supabase.SessionUser) string {
	if at := strings.Index(su.Email, "@"); at > 0 {
		return su.Email[:at]
	}
	id := su.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return "user_" + id
}

func (s *AuthService) persist(ctx context.Context, sess *supabase.Session, user pal.User) {
	if s.State == nil {
		return
	}
	stored := storedSession{Session: *sess, ExpiresAt: sess.ExpiresAt}
	if raw, err := json.Marshal(stored); err == nil {
		if err := s.State.Set(ctx, repository.StateSession, string(raw)); err != nil {
			s.logger().Warn("persist session failed", zap.Error(err))
		}
	}
	if raw, err := json.Marshal(user); err == nil {
		_ = s.State.Set(ctx, repository.StateUser, string(raw))
	}
}

func (s *AuthService) clearState(ctx context.Context) {
	if s.State == nil {
		return
	}
	_ = s.State.Delete(ctx, repository.StateSession)
	_ = s.State.Delete(ctx, repository.StateUser)
	_ = s.State.Delete(ctx, repository.StateActivePal)
}

func (s *AuthService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
