package session

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/blogkit/internal/model"
)

// Identity resolution answers "who is the current user" synchronously,
// without a profile fetch. Resolution order, first success wins:
//
//  1. the cached profile record
//  2. the credential's embedded claims (decoded without verification — the
//     client holds no signing key; it only reads what the server put there)
//  3. the directly stored fallback values
//  4. unresolved: id is empty, username is the Anonymous sentinel
//
// Staleness is acceptable because identity only changes on login/logout,
// and both already reset every dependent view.

// UserID returns the current user's id, or "" when unresolvable.
// Operations that require an identity must handle the empty result.
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveIDLocked()
}

// Username returns the current display name, or "Anonymous" when
// unresolvable.
func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveUsernameLocked()
}

func (s *Session) resolveIDLocked() string {
	if s.profile != nil && s.profile.ID != "" {
		return s.profile.ID
	}
	if id, _, ok := decodeTokenClaims(s.token); ok && id != "" {
		return id
	}
	return s.fallbackID
}

func (s *Session) resolveUsernameLocked() string {
	if s.profile != nil && s.profile.Username != "" {
		return s.profile.Username
	}
	if _, username, ok := decodeTokenClaims(s.token); ok && username != "" {
		return username
	}
	if s.fallbackUsername != "" {
		return s.fallbackUsername
	}
	return model.AnonymousName
}

// tokenClaims mirrors the identity claims the platform embeds in its
// tokens. The id travels either in a custom userId claim or in the
// standard subject.
type tokenClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// decodeTokenClaims extracts the identity claims from a structurally valid
// JWT. A token that is not a JWT, or whose payload does not parse, falls
// through to the next resolver stop — malformed payloads are never raised
// to the user.
func decodeTokenClaims(token string) (id, username string, ok bool) {
	if !strings.Contains(token, ".") {
		return "", "", false
	}

	var claims tokenClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return "", "", false
	}

	id = claims.UserID
	if id == "" {
		id = claims.Subject
	}
	return id, claims.Username, true
}
