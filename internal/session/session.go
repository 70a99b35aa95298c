// Package session owns the process-wide authentication credential and the
// identity derived from it.
//
// The session is an explicitly injected object, not ambient storage: every
// component that needs the token or the current identity receives the
// *Session at construction time, so tests can substitute a fresh one
// without touching globals.
//
// Lifecycle: a session is created on successful login and destroyed on
// explicit logout. Tokens are never refreshed or rotated. Both transitions
// publish a session event on the injected bus so mounted views re-evaluate
// their authenticated rendering immediately.
package session

import (
	"log/slog"
	"sync"

	"github.com/sakif/blogkit/internal/model"
	"github.com/sakif/blogkit/internal/notify"
)

// Session holds the credential and the identity fallbacks for the lifetime
// of a browsing session. State is kept in memory only; nothing survives the
// process.
type Session struct {
	mu sync.Mutex

	token   string
	profile *model.User // cached full profile, first resolver stop

	// direct fallbacks, last resolver stop before giving up
	fallbackID       string
	fallbackUsername string

	bus    *notify.Bus
	logger *slog.Logger
}

// New creates an unauthenticated session publishing on bus.
func New(bus *notify.Bus, logger *slog.Logger) *Session {
	return &Session{
		bus:    bus,
		logger: logger,
	}
}

// Login stores the credential and caches the user record the login response
// carried, then broadcasts the session change.
func (s *Session) Login(token string, user *model.User) {
	s.mu.Lock()
	s.token = token
	s.profile = user
	if user != nil {
		s.fallbackID = user.ID
		s.fallbackUsername = user.Username
	}
	event := notify.SessionEvent{
		Type:     notify.SessionLogin,
		UserID:   s.resolveIDLocked(),
		Username: s.resolveUsernameLocked(),
	}
	if user != nil {
		event.Role = user.Role
	}
	s.mu.Unlock()

	s.logger.Info("session started",
		slog.String("userID", event.UserID),
		slog.String("username", event.Username),
	)
	s.bus.Publish(event)
}

// Logout clears the credential, the cached profile, and the fallbacks, then
// broadcasts the session change so dependent views re-render as
// unauthenticated.
func (s *Session) Logout() {
	s.mu.Lock()
	wasAuthenticated := s.token != ""
	s.token = ""
	s.profile = nil
	s.fallbackID = ""
	s.fallbackUsername = ""
	s.mu.Unlock()

	if !wasAuthenticated {
		return
	}
	s.logger.Info("session ended")
	s.bus.Publish(notify.SessionEvent{Type: notify.SessionLogout})
}

// Token returns the stored credential, or "" when unauthenticated.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// IsAuthenticated reports whether a credential is present. Protected
// operations check this before doing anything else; absence is a local
// authorization failure, never a server round-trip.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// Profile returns the cached profile record, or nil when none is loaded.
func (s *Session) Profile() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// SetProfile replaces the cached profile, typically after a /user-profile
// fetch. A nil user clears the cache without ending the session.
func (s *Session) SetProfile(user *model.User) {
	s.mu.Lock()
	s.profile = user
	if user != nil {
		s.fallbackID = user.ID
		s.fallbackUsername = user.Username
	}
	s.mu.Unlock()
}

// SetFollowing replaces the following set on the cached profile, mirroring
// a successful follow or unfollow response.
func (s *Session) SetFollowing(following []string) {
	s.mu.Lock()
	if s.profile != nil {
		s.profile.Following = following
	}
	s.mu.Unlock()
}

// SetFallback stores a directly supplied id/username pair, used by the
// identity resolver when neither the profile nor the credential payload
// yields an identity.
func (s *Session) SetFallback(id, username string) {
	s.mu.Lock()
	s.fallbackID = id
	s.fallbackUsername = username
	s.mu.Unlock()
}
