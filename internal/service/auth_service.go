package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/TWRT/join-board/internal/cache"
	"github.com/TWRT/join-board/internal/client"
	"github.com/TWRT/join-board/internal/client/board"
	"github.com/TWRT/join-board/internal/models"
	"github.com/TWRT/join-board/internal/repository"
)

var (
	ErrWrongPassword    = errors.New("wrong password")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrLoginFailed      = errors.New("login failed")
)

// The backend reports a bad password with this literal message.
const wrongPasswordMessage = "Falsches Passwort"

const (
	GuestEmail    = "gast@join.de"
	GuestPassword = "1234567"
)

// ContactColors is the palette new accounts draw their badge color from.
var ContactColors = []string{
	"#FFBB2C", "#FF4646", "#FFE62C", "#C3FF2B", "#0038FF", "#FFC703", "#FC71FF",
	"#FFA35E", "#20D7C2", "#06BEE8", "#9327FF", "#6E52FF", "#FF5EB3", "#FF7A01",
}

type SessionStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type AuthService struct {
	auth     client.Authenticator
	sessions SessionStore
	store    *cache.Store
	log      *slog.Logger
	pick     func(n int) int
}

func NewAuthService(auth client.Authenticator, sessions SessionStore, store *cache.Store, log *slog.Logger) *AuthService {
	return &AuthService{
		auth:     auth,
		sessions: sessions,
		store:    store,
		log:      log.With("component", "auth"),
		pick:     rand.IntN,
	}
}

// Login stores the token and identity of a successful login. With remember
// set only the email is kept for the next visit; the password never is.
func (s *AuthService) Login(ctx context.Context, email, password string, remember bool) (*models.Identity, error) {
	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		var statusErr *board.StatusError
		if errors.As(err, &statusErr) {
			if statusErr.Message == wrongPasswordMessage {
				return nil, ErrWrongPassword
			}
			if statusErr.Message != "" {
				return nil, fmt.Errorf("%w: %s: %w", ErrLoginFailed, statusErr.Message, err)
			}
		}
		return nil, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	if err := s.saveSession(ctx, res); err != nil {
		return nil, err
	}

	if remember {
		err = s.sessions.Set(ctx, repository.KeyRememberEmail, email)
	} else {
		err = s.sessions.Delete(ctx, repository.KeyRememberEmail)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("logged in", "user", res.User.Name)
	return &res.User, nil
}

// GuestLogin logs in with the shared guest account.
func (s *AuthService) GuestLogin(ctx context.Context) (*models.Identity, error) {
	res, err := s.auth.Login(ctx, GuestEmail, GuestPassword)
	if err != nil {
		return nil, fmt.Errorf("guest %w: %w", ErrLoginFailed, err)
	}
	if err := s.saveSession(ctx, res); err != nil {
		return nil, err
	}
	s.log.Info("logged in as guest")
	return &res.User, nil
}

func (s *AuthService) saveSession(ctx context.Context, res *client.LoginResult) error {
	identity, err := json.Marshal(res.User)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if err := s.sessions.Set(ctx, repository.KeyAuthToken, res.Token); err != nil {
		return err
	}
	return s.sessions.Set(ctx, repository.KeyCurrentUser, string(identity))
}

// Register creates an account with a random palette color and returns it.
func (s *AuthService) Register(ctx context.Context, name, email, password, repeated string) (string, error) {
	if password != repeated {
		return "", ErrPasswordMismatch
	}

	color := ContactColors[s.pick(len(ContactColors))]
	err := s.auth.Register(ctx, client.Registration{
		Name:     name,
		Email:    email,
		Password: password,
		Color:    color,
	})
	if err != nil {
		return "", fmt.Errorf("register: %w", err)
	}
	return color, nil
}

// Logout forgets the session and empties the Local Cache.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.sessions.Delete(ctx, repository.KeyAuthToken); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, repository.KeyCurrentUser); err != nil {
		return err
	}
	s.store.Reset()
	return nil
}

// CurrentUser returns nil without error when nobody is logged in.
func (s *AuthService) CurrentUser(ctx context.Context) (*models.Identity, error) {
	raw, err := s.sessions.Get(ctx, repository.KeyCurrentUser)
	if errors.Is(err, repository.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var identity models.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return nil, fmt.Errorf("parse current user: %w", err)
	}
	return &identity, nil
}

func (s *AuthService) HasSession(ctx context.Context) bool {
	user, err := s.CurrentUser(ctx)
	return err == nil && user != nil
}

// RememberedEmail is the email saved by a remember-me login, or "".
func (s *AuthService) RememberedEmail(ctx context.Context) (string, error) {
	email, err := s.sessions.Get(ctx, repository.KeyRememberEmail)
	if errors.Is(err, repository.ErrKeyNotFound) {
		return "", nil
	}
	return email, err
}
