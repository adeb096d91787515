package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/c-hri-sw-u/PalPal/internal/database"
	"github.com/c-hri-sw-u/PalPal/internal/database/repository"
	"github.com/c-hri-sw-u/PalPal/internal/pal"
	"github.com/c-hri-sw-u/PalPal/internal/supabase"
)

func newStateRepo(t *testing.T) *repository.StateRepo {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	migrations, err := filepath.Abs("../database/migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(dbPath, migrations))
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewStateRepo(db)
}

// authBackend is a minimal GoTrue + PostgREST stand-in.
type authBackend struct {
	users        map[string]pal.User // id -> row
	userInserts  int
	tokenFail    bool
	refreshCalls int
}

func (b *authBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		if b.tokenFail {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"msg":"Invalid login credentials"}`))
			return
		}
		if r.URL.Query().Get("grant_type") == "refresh_token" {
			b.refreshCalls++
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "tok-1",
			"refresh_token": "ref-1",
			"expires_in":    3600,
			"user":          map[string]string{"id": "user-abcdef123456", "email": "sam@example.com"},
		})
	})
	mux.HandleFunc("GET /rest/v1/users", func(w http.ResponseWriter, r *http.Request) {
		rows := []pal.User{}
		for _, u := range b.users {
			rows = append(rows, u)
		}
		_ = json.NewEncoder(w).Encode(rows)
	})
	mux.HandleFunc("POST /rest/v1/users", func(w http.ResponseWriter, r *http.Request) {
		b.userInserts++
		var row pal.User
		_ = json.NewDecoder(r.Body).Decode(&row)
		b.users[row.ID] = row
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode([]pal.User{row})
	})
	mux.HandleFunc("POST /auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func newAuthService(t *testing.T, b *authBackend) *AuthService {
	t.Helper()
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)
	return &AuthService{
		Client: supabase.New(srv.URL, "anon-key", zap.NewNop()),
		State:  newStateRepo(t),
		Logger: zap.NewNop(),
	}
}

func TestSignInCreatesMissingUserRow(t *testing.T) {
	t.Parallel()

	backend := &authBackend{users: map[string]pal.User{}}
	svc := newAuthService(t, backend)
	ctx := context.Background()

	user, err := svc.SignIn(ctx, "sam@example.com", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "user-abcdef123456", user.ID)
	require.Equal(t, "sam", user.Username) // email prefix
	require.Equal(t, 1, backend.userInserts)

	// session persisted for restarts, expiry included
	raw, err := svc.State.Get(ctx, repository.StateSession)
	require.NoError(t, err)
	require.Contains(t, raw, "tok-1")
	var stored storedSession
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	require.False(t, stored.ExpiresAt.IsZero())
}

func TestSignInExistingUserNotRecreated(t *testing.T) {
	t.Parallel()

	backend := &authBackend{users: map[string]pal.User{
		"user-abcdef123456": {ID: "user-abcdef123456", Username: "sammy"},
	}}
	svc := newAuthService(t, backend)

	user, err := svc.SignIn(context.Background(), "sam@example.com", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "sammy", user.Username)
	require.Zero(t, backend.userInserts)
}

func TestSignInBadCredentials(t *testing.T) {
	t.Parallel()

	backend := &authBackend{users: map[string]pal.User{}, tokenFail: true}
	svc := newAuthService(t, backend)

	_, err := svc.SignIn(context.Background(), "sam@example.com", "wrong")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Invalid login credentials")
}

func TestRestoreWithoutSession(t *testing.T) {
	t.Parallel()

	backend := &authBackend{users: map[string]pal.User{}}
	svc := newAuthService(t, backend)

	_, err := svc.Restore(context.Background())
	require.ErrorIs(t, err, ErrNoSession)
}

func TestRestoreRoundTrip(t *testing.T) {
	t.Parallel()

	backend := &authBackend{users: map[string]pal.User{}}
	svc := newAuthService(t, backend)
	ctx := context.Background()

	_, err := svc.SignIn(ctx, "sam@example.com", "hunter2")
	require.NoError(t, err)

	user, err := svc.Restore(ctx)
	require.NoError(t, err)
	require.Equal(t, "sam", user.Username)
	require.Zero(t, backend.refreshCalls) // unexpired session is reused
}

func TestRestoreExpiredSessionRefreshes(t *testing.T) {
	t.Parallel()

	backend := &authBackend{users: map[string]pal.User{}}
	svc := newAuthService(t, backend)
	ctx := context.Background()

	stored := storedSession{
		Session: supabase.Session{
			AccessToken:  "tok-old",
			RefreshToken: "ref-old",
			ExpiresIn:    3600,
			User:         supabase.SessionUser{ID: "user-abcdef123456", Email: "sam@example.com"},
		},
		ExpiresAt: time.Now().Add(-2 * time.Hour),
	}
	raw, err := json.Marshal(stored)
	require.NoError(t, err)
	require.NoError(t, svc.State.Set(ctx, repository.StateSession, string(raw)))

	user, err := svc.Restore(ctx)
	require.NoError(t, err)
	require.Equal(t, "sam", user.Username)
	require.Equal(t, 1, backend.refreshCalls)
	require.Equal(t, "tok-1", svc.Client.CurrentSession().AccessToken)
}

func TestSignOutClearsState(t *testing.T) {
	t.Parallel()

	backend := &authBackend{users: map[string]pal.User{}}
	svc := newAuthService(t, backend)
	ctx := context.Background()

	_, err := svc.SignIn(ctx, "sam@example.com", "hunter2")
	require.NoError(t, err)
	require.NoError(t, svc.SignOut(ctx))

	raw, err := svc.State.Get(ctx, repository.StateSession)
	require.NoError(t, err)
	require.Empty(t, raw)
	require.Nil(t, svc.Client.CurrentSession())
}

func TestUsernameFallback(t *testing.T) {
	t.Parallel()

	require.Equal(t, "user_abcd1234", usernameFor(supabase.SessionUser{ID: "abcd1234efgh"}))
}
