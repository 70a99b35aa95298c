package view

import (
	"context"
	"sync"

	"github.com/sakif/blogkit/internal/model"
	"github.com/sakif/blogkit/internal/notify"
)

// OwnPostLister is the slice of the post service the dashboard consumes.
type OwnPostLister interface {
	Mine(ctx context.Context) ([]model.Post, error)
}

// DashboardStats aggregates the user's posts for the header cards.
type DashboardStats struct {
	Posts    int
	Likes    int
	Views    int
	Comments int
}

// Dashboard is the state behind the user's own-posts screen. It re-fetches
// when the add or edit signal has moved, so a post written on another
// screen appears without a manual reload.
type Dashboard struct {
	mu      sync.Mutex
	mounted bool

	posts []model.Post

	addedRev  uint64
	editedRev uint64

	lister  OwnPostLister
	signals *notify.Signals
}

func NewDashboard(lister OwnPostLister, signals *notify.Signals) *Dashboard {
	return &Dashboard{lister: lister, signals: signals}
}

func (d *Dashboard) Mount(ctx context.Context) error {
	d.mu.Lock()
	d.mounted = true
	d.mu.Unlock()
	return d.refresh(ctx)
}

func (d *Dashboard) Unmount() {
	d.mu.Lock()
	d.mounted = false
	d.mu.Unlock()
}

// RefreshIfStale re-fetches when a post was added or edited since the last
// fetch.
func (d *Dashboard) RefreshIfStale(ctx context.Context) error {
	d.mu.Lock()
	stale := d.addedRev != d.signals.PostAdded.Rev() || d.editedRev != d.signals.PostEdited.Rev()
	d.mu.Unlock()
	if !stale {
		return nil
	}
	return d.refresh(ctx)
}

func (d *Dashboard) refresh(ctx context.Context) error {
	addedRev := d.signals.PostAdded.Rev()
	editedRev := d.signals.PostEdited.Rev()

	posts, err := d.lister.Mine(ctx)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.mounted {
		return nil
	}
	d.posts = posts
	d.addedRev = addedRev
	d.editedRev = editedRev
	return nil
}

// Posts returns the user's posts as last fetched.
func (d *Dashboard) Posts() []model.Post {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.posts
}

// Stats tallies the fetched posts.
func (d *Dashboard) Stats() DashboardStats {
	d.mu.Lock()
	defer d.mu.Unlock()

	stats := DashboardStats{Posts: len(d.posts)}
	for _, p := range d.posts {
		stats.Likes += len(p.Likes)
		stats.Views += len(p.Views)
		stats.Comments += len(p.Comments)
	}
	return stats
}
