package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/sakif/blogkit/internal/apperror"
	"github.com/sakif/blogkit/internal/model"
	"github.com/sakif/blogkit/internal/notify"
	"github.com/sakif/blogkit/internal/session"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeAuthAPI is a hand-written fake of AuthAPI: scripted results, captured
// requests, no network.
type fakeAuthAPI struct {
	registerRes *model.RegisterResult
	registerErr error
	loginRes    *model.LoginResult
	loginErr    error
	profileRes  *model.User
	profileErr  error

	lastRegister model.RegisterRequest
	lastLogin    model.LoginRequest
}

func (f *fakeAuthAPI) Register(_ context.Context, req model.RegisterRequest) (*model.RegisterResult, error) {
	f.lastRegister = req
	return f.registerRes, f.registerErr
}

func (f *fakeAuthAPI) Login(_ context.Context, req model.LoginRequest) (*model.LoginResult, error) {
	f.lastLogin = req
	return f.loginRes, f.loginErr
}

func (f *fakeAuthAPI) Profile(_ context.Context) (*model.User, error) {
	return f.profileRes, f.profileErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newSession() (*session.Session, *notify.Bus) {
	bus := notify.NewBus()
	return session.New(bus, testLogger()), bus
}

// =========================================================================
// TESTS
// =========================================================================

func TestAuthServiceRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		req  model.RegisterRequest
	}{
		{"missing username", model.RegisterRequest{Email: "a@b.c", Password: "longenough"}},
		{"blank username", model.RegisterRequest{Username: "   ", Email: "a@b.c", Password: "longenough"}},
		{"missing email", model.RegisterRequest{Username: "amina", Password: "longenough"}},
		{"malformed email", model.RegisterRequest{Username: "amina", Email: "not-an-email", Password: "longenough"}},
		{"short password", model.RegisterRequest{Username: "amina", Email: "a@b.c", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAuthAPI{}
			sess, _ := newSession()
			svc := NewAuthService(api, sess, testLogger())

			_, err := svc.Register(context.Background(), tt.req)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("Register(%+v) error = %v, want validation error", tt.req, err)
			}
			if api.lastRegister != (model.RegisterRequest{}) {
				t.Error("invalid request must not reach the API")
			}
		})
	}
}

func TestAuthServiceLoginRoutesByRole(t *testing.T) {
	tests := []struct {
		name      string
		role      string
		wantRoute string
	}{
		{"regular user lands home", model.RoleUser, RouteHome},
		{"admin lands on dashboard", model.RoleAdmin, RouteAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAuthAPI{
				loginRes: &model.LoginResult{
					User:  model.User{ID: "u1", Username: "amina", Role: tt.role},
					Token: "tok",
				},
			}
			sess, _ := newSession()
			svc := NewAuthService(api, sess, testLogger())

			route, err := svc.Login(context.Background(), model.LoginRequest{
				Email:    "amina@example.com",
				Password: "hunter2",
			})
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if route != tt.wantRoute {
				t.Errorf("Login() route = %q, want %q", route, tt.wantRoute)
			}
			if !sess.IsAuthenticated() {
				t.Error("session should hold the credential after login")
			}
			if got := sess.Username(); got != "amina" {
				t.Errorf("session username = %q, want %q", got, "amina")
			}
		})
	}
}

func TestAuthServiceLoginFailureLeavesSessionClean(t *testing.T) {
	api := &fakeAuthAPI{loginErr: apperror.APIFailure(404, "Invalid email or password")}
	sess, _ := newSession()
	svc := NewAuthService(api, sess, testLogger())

	_, err := svc.Login(context.Background(), model.LoginRequest{
		Email:    "amina@example.com",
		Password: "wrong",
	})
	if !errors.Is(err, apperror.ErrAPI) {
		t.Fatalf("Login() error = %v, want API error", err)
	}
	if sess.IsAuthenticated() {
		t.Error("failed login must not authenticate the session")
	}
}

func TestAuthServiceLogoutPublishes(t *testing.T) {
	api := &fakeAuthAPI{}
	sess, bus := newSession()
	svc := NewAuthService(api, sess, testLogger())

	sess.Login("tok", &model.User{ID: "u1", Username: "amina"})

	var events []notify.SessionEventType
	cancel := bus.Subscribe(func(e notify.SessionEvent) {
		events = append(events, e.Type)
	})
	defer cancel()

	svc.Logout()
	svc.Logout() // second logout is a no-op, no second event

	if len(events) != 1 || events[0] != notify.SessionLogout {
		t.Errorf("events = %v, want exactly one logout", events)
	}
}

func TestAuthServiceRefreshProfileCachesResult(t *testing.T) {
	api := &fakeAuthAPI{
		profileRes: &model.User{ID: "u1", Username: "amina", Following: []string{"u2"}},
	}
	sess, _ := newSession()
	sess.Login("tok", nil)
	svc := NewAuthService(api, sess, testLogger())

	user, err := svc.RefreshProfile(context.Background())
	if err != nil {
		t.Fatalf("RefreshProfile() error = %v", err)
	}
	if user.Username != "amina" {
		t.Errorf("profile username = %q, want %q", user.Username, "amina")
	}
	cached := sess.Profile()
	if cached == nil || !cached.IsFollowing("u2") {
		t.Error("session should cache the fetched profile with its following set")
	}
}
