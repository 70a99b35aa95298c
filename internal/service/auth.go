// Package service holds the business rules between the views and the API
// client.
//
// Services validate input, decide what the API is asked to do, and keep the
// session and notification state consistent with what the server answered.
// Views stay thin: they render state and forward intents here.
//
// Every API dependency is an interface declared in this package, so tests
// substitute hand-written fakes without touching the network.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/blogkit/internal/apperror"
	"github.com/sakif/blogkit/internal/model"
	"github.com/sakif/blogkit/internal/session"
)

// Landing routes after a successful login. Admins land on their dashboard,
// everyone else on the public home page.
const (
	RouteHome  = "/"
	RouteAdmin = "/admin"
)

// AuthAPI is the slice of the API client the auth service consumes.
type AuthAPI interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.RegisterResult, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResult, error)
	Profile(ctx context.Context) (*model.User, error)
}

// AuthService orchestrates registration, login and logout.
type AuthService struct {
	api     AuthAPI
	session *session.Session
	logger  *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(api AuthAPI, sess *session.Session, logger *slog.Logger) *AuthService {
	return &AuthService{api: api, session: sess, logger: logger}
}

// Register validates the form and creates the account. It does not log the
// user in; the platform expects an explicit login afterwards.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.RegisterResult, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if req.Username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return nil, apperror.ValidationFailed("email", "a valid email address is required")
	}
	if len(req.Password) < 6 {
		return nil, apperror.ValidationFailed("password", "password must be at least 6 characters")
	}

	res, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("account registered", slog.String("username", res.Username))
	return res, nil
}

// Login authenticates, stores the credential in the session and returns the
// route the user should land on.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (string, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return "", apperror.ValidationFailed("email", "email and password are required")
	}

	res, err := s.api.Login(ctx, req)
	if err != nil {
		return "", err
	}

	s.session.Login(res.Token, &res.User)
	s.logger.Info("logged in",
		slog.String("username", res.User.Username),
		slog.String("role", res.User.Role),
	)

	if res.User.IsAdmin() {
		return RouteAdmin, nil
	}
	return RouteHome, nil
}

// Logout clears the session. Safe to call when already logged out.
func (s *AuthService) Logout() {
	s.session.Logout()
}

// RefreshProfile re-fetches the full profile and caches it in the session,
// so follower state and identity stop depending on token claims.
func (s *AuthService) RefreshProfile(ctx context.Context) (*model.User, error) {
	user, err := s.api.Profile(ctx)
	if err != nil {
		return nil, err
	}
	s.session.SetProfile(user)
	return user, nil
}
