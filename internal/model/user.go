// Package model defines the data structures used throughout the application.
// The JSON tags mirror the wire format of the blogging platform API, which
// uses MongoDB-style `_id` identifiers and camelCase field names.
package model

import "time"

// Role values returned by the API in User.Role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// AnonymousName is the sentinel display name used whenever the current
// user's identity cannot be resolved.
const AnonymousName = "Anonymous"

// User represents a registered account as the API returns it.
//
// Following and Followers are interaction sets: lists of user ids with
// set semantics (a given id appears at most once). The server owns both
// sides of the relation; the client only mirrors what the API returns and
// never edits the lists directly — mutations go through the follow and
// unfollow operations.
type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Bio          string    `json:"bio,omitempty"`
	ProfileImage string    `json:"profileImage,omitempty"`
	Following    []string  `json:"following"`
	Followers    []string  `json:"followers"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin reports whether the account carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsFollowing reports whether userID is in this user's following set.
func (u *User) IsFollowing(userID string) bool {
	if u == nil {
		return false
	}
	return Contains(u.Following, userID)
}

// Contains reports membership of id in an interaction set.
func Contains(set []string, id string) bool {
	if id == "" {
		return false
	}
	for _, member := range set {
		if member == id {
			return true
		}
	}
	return false
}

// AddMember returns set with id present exactly once. The input is returned
// unchanged when id is empty or already a member.
func AddMember(set []string, id string) []string {
	if id == "" || Contains(set, id) {
		return set
	}
	return append(set, id)
}

// RemoveMember returns set with every occurrence of id removed.
func RemoveMember(set []string, id string) []string {
	out := set[:0]
	for _, member := range set {
		if member != id {
			out = append(out, member)
		}
	}
	return out
}
