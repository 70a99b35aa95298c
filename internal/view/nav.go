// Package view holds the non-visual state behind each screen.
//
// A view model owns the data a renderer would draw, nothing else. Each one
// follows the same lifecycle: Mount subscribes it to the notifications it
// cares about, Unmount tears the subscription down. A mounted flag guards
// every state mutation, so an event or response that arrives after Unmount
// falls on the floor instead of resurrecting a dead screen.
package view

import (
	"sync"

	"github.com/sakif/blogkit/internal/model"
	"github.com/sakif/blogkit/internal/notify"
	"github.com/sakif/blogkit/internal/session"
)

// Nav link labels.
const (
	LinkHome       = "Home"
	LinkCollection = "Collection"
	LinkWrite      = "Write"
	LinkNetwork    = "My Network Posts"
	LinkDashboard  = "Dashboard"
	LinkAdmin      = "Admin"
	LinkLogin      = "Login"
	LinkLogout     = "Logout"
)

// Nav is the navigation header's state machine. It re-evaluates on every
// session event, so a login or logout in one screen flips the header
// everywhere without a reload.
type Nav struct {
	mu          sync.Mutex
	mounted     bool
	unsubscribe func()

	authenticated bool
	username      string
	admin         bool
}

// NewNav creates an unmounted nav model.
func NewNav() *Nav {
	return &Nav{}
}

// Mount seeds the state from the current session and subscribes to session
// transitions on the bus.
func (n *Nav) Mount(sess *session.Session, bus *notify.Bus) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.mounted = true
	n.authenticated = sess.IsAuthenticated()
	n.username = sess.Username()
	if profile := sess.Profile(); profile != nil {
		n.admin = profile.IsAdmin()
	}

	n.unsubscribe = bus.Subscribe(func(e notify.SessionEvent) {
		n.mu.Lock()
		defer n.mu.Unlock()
		if !n.mounted {
			return
		}
		switch e.Type {
		case notify.SessionLogin:
			n.authenticated = true
			n.username = e.Username
			n.admin = e.Role == model.RoleAdmin
		case notify.SessionLogout:
			n.authenticated = false
			n.username = ""
			n.admin = false
		}
	})
}

// Unmount stops event delivery. Idempotent.
func (n *Nav) Unmount() {
	n.mu.Lock()
	n.mounted = false
	unsubscribe := n.unsubscribe
	n.unsubscribe = nil
	n.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Authenticated reports whether the header renders the signed-in variant.
func (n *Nav) Authenticated() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.authenticated
}

// Username is the display name in the header, empty when signed out.
func (n *Nav) Username() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.username
}

// Links returns the nav entries for the current state, in render order.
// Write and My Network Posts only exist while authenticated.
func (n *Nav) Links() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	links := []string{LinkHome, LinkCollection}
	if !n.authenticated {
		return append(links, LinkLogin)
	}

	links = append(links, LinkWrite, LinkNetwork, LinkDashboard)
	if n.admin {
		links = append(links, LinkAdmin)
	}
	return append(links, LinkLogout)
}
