package service

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TWRT/join-board/internal/cache"
	"github.com/TWRT/join-board/internal/client"
	"github.com/TWRT/join-board/internal/client/board"
	"github.com/TWRT/join-board/internal/models"
	"github.com/TWRT/join-board/internal/repository"
)

type fakeAuth struct {
	accounts   map[string]string
	registered []client.Registration
	// status answers unknown emails, 400 when unset.
	status int
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (*client.LoginResult, error) {
	want, ok := f.accounts[email]
	if !ok {
		status := f.status
		if status == 0 {
			status = http.StatusBadRequest
		}
		return nil, &board.StatusError{Op: "login", StatusCode: status, Message: "Unbekannte E-Mail"}
	}
	if want != password {
		return nil, &board.StatusError{Op: "login", StatusCode: http.StatusBadRequest, Message: wrongPasswordMessage}
	}
	return &client.LoginResult{
		Token: "token-" + email,
		User:  models.Identity{ID: "7", Name: "Max Mustermann", Email: email, Color: "#FF4646"},
	}, nil
}

func (f *fakeAuth) Register(_ context.Context, reg client.Registration) error {
	f.registered = append(f.registered, reg)
	return nil
}

func newAuthHarness(t *testing.T) (*AuthService, *repository.SessionRepository, *fakeAuth, *cache.Store) {
	t.Helper()
	db, err := repository.InitDB(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sessions := repository.NewSessionRepository(db)
	auth := &fakeAuth{accounts: map[string]string{
		"max@example.com": "secret",
		GuestEmail:        GuestPassword,
	}}
	store := cache.NewStore()
	return NewAuthService(auth, sessions, store, discardLogger()), sessions, auth, store
}

func TestLogin_PersistsSession(t *testing.T) {
	ctx := context.Background()
	svc, sessions, _, _ := newAuthHarness(t)

	assert.False(t, svc.HasSession(ctx))

	user, err := svc.Login(ctx, "max@example.com", "secret", false)
	require.NoError(t, err)
	assert.Equal(t, "Max Mustermann", user.Name)

	token, err := sessions.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-max@example.com", token)

	current, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, user, current)
	assert.True(t, svc.HasSession(ctx))

	email, err := svc.RememberedEmail(ctx)
	require.NoError(t, err)
	assert.Empty(t, email)
}

func TestLogin_RememberKeepsEmailOnly(t *testing.T) {
	ctx := context.Background()
	svc, sessions, _, _ := newAuthHarness(t)

	_, err := svc.Login(ctx, "max@example.com", "secret", true)
	require.NoError(t, err)

	email, err := svc.RememberedEmail(ctx)
	require.NoError(t, err)
	assert.Equal(t, "max@example.com", email)

	for _, key := range []string{repository.KeyAuthToken, repository.KeyCurrentUser, repository.KeyRememberEmail} {
		value, err := sessions.Get(ctx, key)
		require.NoError(t, err)
		assert.NotContains(t, value, "secret")
	}

	// A later login without remember forgets the email.
	_, err = svc.Login(ctx, "max@example.com", "secret", false)
	require.NoError(t, err)
	email, err = svc.RememberedEmail(ctx)
	require.NoError(t, err)
	assert.Empty(t, email)
}

func TestLogin_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newAuthHarness(t)

	_, err := svc.Login(ctx, "max@example.com", "wrong", false)
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = svc.Login(ctx, "nobody@example.com", "x", false)
	assert.ErrorIs(t, err, ErrLoginFailed)
	assert.Contains(t, err.Error(), "Unbekannte E-Mail")

	assert.False(t, svc.HasSession(ctx))
}

func TestLogin_KeepsStatusInChain(t *testing.T) {
	ctx := context.Background()
	svc, _, auth, _ := newAuthHarness(t)
	auth.status = http.StatusUnauthorized

	_, err := svc.Login(ctx, "nobody@example.com", "x", false)
	assert.ErrorIs(t, err, ErrLoginFailed)
	assert.ErrorIs(t, err, board.ErrUnauthorized)
	assert.Contains(t, err.Error(), "Unbekannte E-Mail")
}

func TestGuestLogin(t *testing.T) {
	ctx := context.Background()
	svc, sessions, _, _ := newAuthHarness(t)

	_, err := svc.GuestLogin(ctx)
	require.NoError(t, err)

	token, err := sessions.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-"+GuestEmail, token)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, _, auth, _ := newAuthHarness(t)
	svc.pick = func(int) int { return 4 }

	_, err := svc.Register(ctx, "Anna Gast", "anna@example.com", "pw1", "pw2")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Empty(t, auth.registered)

	color, err := svc.Register(ctx, "Anna Gast", "anna@example.com", "pw1", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "#0038FF", color)
	require.Len(t, auth.registered, 1)
	assert.Equal(t, client.Registration{Name: "Anna Gast", Email: "anna@example.com", Password: "pw1", Color: "#0038FF"}, auth.registered[0])
}

func TestLogout_ResetsCache(t *testing.T) {
	ctx := context.Background()
	svc, sessions, _, store := newAuthHarness(t)

	_, err := svc.Login(ctx, "max@example.com", "secret", true)
	require.NoError(t, err)
	store.ReplaceTasks([]models.Task{{ID: "1", Title: "Fix bug", Category: models.CategoryToDo}})

	require.NoError(t, svc.Logout(ctx))
	assert.Empty(t, store.Tasks())
	assert.False(t, svc.HasSession(ctx))

	token, err := sessions.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	email, err := svc.RememberedEmail(ctx)
	require.NoError(t, err)
	assert.Equal(t, "max@example.com", email, "remembered email survives logout")
}
