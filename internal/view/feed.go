package view

import (
	"context"
	"sync"

	"github.com/sakif/blogkit/internal/model"
	"github.com/sakif/blogkit/internal/notify"
)

// FeedLister is the slice of the post service the feed consumes.
type FeedLister interface {
	Feed(ctx context.Context) ([]model.Post, error)
}

// FollowingFeed is the state behind the my-network screen: posts by the
// authors the current user follows. It re-fetches when the follow signal
// has moved, so following someone on a detail page changes this feed
// immediately.
type FollowingFeed struct {
	mu      sync.Mutex
	mounted bool

	posts     []model.Post
	followRev uint64

	lister  FeedLister
	signals *notify.Signals
}

func NewFollowingFeed(lister FeedLister, signals *notify.Signals) *FollowingFeed {
	return &FollowingFeed{lister: lister, signals: signals}
}

func (f *FollowingFeed) Mount(ctx context.Context) error {
	f.mu.Lock()
	f.mounted = true
	f.mu.Unlock()
	return f.refresh(ctx)
}

func (f *FollowingFeed) Unmount() {
	f.mu.Lock()
	f.mounted = false
	f.mu.Unlock()
}

// RefreshIfStale re-fetches when a follow or unfollow happened since the
// last fetch.
func (f *FollowingFeed) RefreshIfStale(ctx context.Context) error {
	f.mu.Lock()
	stale := f.followRev != f.signals.FollowChanged.Rev()
	f.mu.Unlock()
	if !stale {
		return nil
	}
	return f.refresh(ctx)
}

func (f *FollowingFeed) refresh(ctx context.Context) error {
	followRev := f.signals.FollowChanged.Rev()

	posts, err := f.lister.Feed(ctx)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.mounted {
		return nil
	}
	f.posts = posts
	f.followRev = followRev
	return nil
}

// Posts returns the feed as last fetched.
func (f *FollowingFeed) Posts() []model.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.posts
}
