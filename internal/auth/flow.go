// Package auth drives registration and login against the remote auth service
// and records a successful login in the session store.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/raphaelgruber/sccse-chat/internal/apperr"
	"github.com/raphaelgruber/sccse-chat/internal/client"
	"github.com/raphaelgruber/sccse-chat/internal/session"
)

// User-visible messages.
const (
	// InvalidCredentialsMessage is shown for every login failure, whatever the cause.
	InvalidCredentialsMessage = "Invalid email or password"

	RegisterFailedMessage   = "Registration failed"
	RegisterSuccessMessage  = "Registration successful"
	RegisterRequiredMessage = "Name, email and password are required"
)

// API is the subset of the server client the flow needs.
type API interface {
	Register(ctx context.Context, in client.RegisterRequest) (*client.RegisterResponse, error)
	Login(ctx context.Context, in client.LoginRequest) (*client.LoginResponse, error)
}

var _ API = (*client.Client)(nil)

// RegisterForm is the draft submitted by the registration form.
type RegisterForm struct {
	Name     string
	Email    string
	Password string
}

// LoginForm is the draft submitted by the login form.
type LoginForm struct {
	Email    string
	Password string
}

// Flow runs the register and login operations. The two share nothing except
// the session store, which only Login writes.
type Flow struct {
	api      API
	sessions session.Store
	logger   *slog.Logger
}

// NewFlow creates a flow. A nil logger uses slog.Default().
func NewFlow(api API, sessions session.Store, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{api: api, sessions: sessions, logger: logger}
}

// Register creates an account and returns the server's confirmation message.
// It does not log the user in.
//
// Errors carry a user-visible message: the server's error text, or
// RegisterFailedMessage when the server gave none or could not be reached.
func (f *Flow) Register(ctx context.Context, form RegisterForm) (string, error) {
	if isBlank(form.Name) || isBlank(form.Email) || isBlank(form.Password) {
		return "", apperr.Validation("register", RegisterRequiredMessage)
	}

	resp, err := f.api.Register(ctx, client.RegisterRequest{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		f.logger.Info("registration failed", "kind", apperr.KindOf(err), "error", err)
		return "", apperr.Auth("register", apperr.Message(err, RegisterFailedMessage), err)
	}

	f.logger.Info("registration succeeded")
	if resp.Message == "" {
		return RegisterSuccessMessage, nil
	}
	return resp.Message, nil
}

// Login authenticates and, on success, overwrites the session store with
// the returned identity. Every failure returns an AuthError whose message is
// InvalidCredentialsMessage, and leaves the store untouched.
func (f *Flow) Login(ctx context.Context, form LoginForm) (session.Session, error) {
	resp, err := f.api.Login(ctx, client.LoginRequest{
		Email:    strings.TrimSpace(form.Email),
		Password: strings.TrimSpace(form.Password),
	})
	if err != nil {
		f.logger.Info("login failed", "kind", apperr.KindOf(err), "error", err)
		return session.Session{}, apperr.Auth("login", InvalidCredentialsMessage, err)
	}

	s := session.Session{UserID: string(resp.UserID), DisplayName: resp.Name}
	if !s.Authenticated() {
		return session.Session{}, apperr.Auth("login", InvalidCredentialsMessage, fmt.Errorf("response missing user_id"))
	}
	if err := f.sessions.Set(s.UserID, s.DisplayName); err != nil {
		f.logger.Error("failed to persist session", "error", err)
		return session.Session{}, apperr.Auth("login", InvalidCredentialsMessage, err)
	}

	f.logger.Info("login succeeded", "user_id", s.UserID)
	return s, nil
}

// Logout clears the session.
func (f *Flow) Logout() error {
	if err := f.sessions.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	f.logger.Info("logged out")
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
