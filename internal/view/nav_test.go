package view_test

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/blogkit/internal/model"
	"github.com/sakif/blogkit/internal/notify"
	"github.com/sakif/blogkit/internal/session"
	"github.com/sakif/blogkit/internal/view"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNavFollowsSessionWithoutReload(t *testing.T) {
	bus := notify.NewBus()
	sess := session.New(bus, testLogger())

	nav := view.NewNav()
	nav.Mount(sess, bus)
	defer nav.Unmount()

	assert.False(t, nav.Authenticated())
	assert.Contains(t, nav.Links(), view.LinkLogin)
	assert.NotContains(t, nav.Links(), view.LinkWrite)

	// Login elsewhere: the mounted nav flips on the event alone.
	sess.Login("tok", &model.User{ID: "u1", Username: "amina", Role: model.RoleUser})

	assert.True(t, nav.Authenticated())
	assert.Equal(t, "amina", nav.Username())
	links := nav.Links()
	assert.Contains(t, links, view.LinkWrite)
	assert.Contains(t, links, view.LinkNetwork)
	assert.NotContains(t, links, view.LinkAdmin)

	sess.Logout()

	assert.False(t, nav.Authenticated())
	assert.Empty(t, nav.Username())
	assert.NotContains(t, nav.Links(), view.LinkWrite)
}

func TestNavShowsAdminEntryForAdmins(t *testing.T) {
	bus := notify.NewBus()
	sess := session.New(bus, testLogger())

	nav := view.NewNav()
	nav.Mount(sess, bus)
	defer nav.Unmount()

	sess.Login("tok", &model.User{ID: "u1", Username: "root", Role: model.RoleAdmin})
	assert.Contains(t, nav.Links(), view.LinkAdmin)
}

func TestNavIgnoresEventsAfterUnmount(t *testing.T) {
	bus := notify.NewBus()
	sess := session.New(bus, testLogger())

	nav := view.NewNav()
	nav.Mount(sess, bus)
	nav.Unmount()
	nav.Unmount() // repeat teardown is safe

	sess.Login("tok", &model.User{ID: "u1", Username: "amina"})

	assert.False(t, nav.Authenticated(), "an unmounted nav must not resurrect on late events")
}

func TestNavMountSeedsFromExistingSession(t *testing.T) {
	bus := notify.NewBus()
	sess := session.New(bus, testLogger())
	sess.Login("tok", &model.User{ID: "u1", Username: "amina", Role: model.RoleUser})

	// Mounting after login: state comes from the session, not an event.
	nav := view.NewNav()
	nav.Mount(sess, bus)
	defer nav.Unmount()

	assert.True(t, nav.Authenticated())
	assert.Equal(t, "amina", nav.Username())
}
