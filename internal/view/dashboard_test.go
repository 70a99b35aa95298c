package view_test

import (
	"context"
	"testing"

	"github.com/sakif/blogkit/internal/model"
	"github.com/sakif/blogkit/internal/notify"
	"github.com/sakif/blogkit/internal/view"
)

type fakeOwnLister struct {
	posts   []model.Post
	fetches int
}

func (f *fakeOwnLister) Mine(context.Context) ([]model.Post, error) {
	f.fetches++
	return f.posts, nil
}

func TestDashboardStats(t *testing.T) {
	lister := &fakeOwnLister{posts: []model.Post{
		{ID: "p1", Likes: []string{"a", "b"}, Views: []string{"a", "b", "c"}, Comments: []model.Comment{{ID: "c1"}}},
		{ID: "p2", Likes: []string{"a"}, Views: []string{"a"}},
	}}
	d := view.NewDashboard(lister, &notify.Signals{})

	if err := d.Mount(context.Background()); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	defer d.Unmount()

	stats := d.Stats()
	want := view.DashboardStats{Posts: 2, Likes: 3, Views: 4, Comments: 1}
	if stats != want {
		t.Errorf("Stats() = %+v, want %+v", stats, want)
	}
}

func TestDashboardRefetchesOnAddAndEdit(t *testing.T) {
	lister := &fakeOwnLister{}
	signals := &notify.Signals{}
	d := view.NewDashboard(lister, signals)

	ctx := context.Background()
	if err := d.Mount(ctx); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	defer d.Unmount()

	if err := d.RefreshIfStale(ctx); err != nil {
		t.Fatalf("RefreshIfStale() error = %v", err)
	}
	if lister.fetches != 1 {
		t.Fatalf("fetches = %d, want 1", lister.fetches)
	}

	signals.PostAdded.Bump()
	if err := d.RefreshIfStale(ctx); err != nil {
		t.Fatalf("RefreshIfStale() error = %v", err)
	}
	signals.PostEdited.Bump()
	if err := d.RefreshIfStale(ctx); err != nil {
		t.Fatalf("RefreshIfStale() error = %v", err)
	}
	if lister.fetches != 3 {
		t.Errorf("fetches = %d, want 3 (one per moved signal)", lister.fetches)
	}
}

type fakeFeedLister struct {
	posts   []model.Post
	fetches int
}

func (f *fakeFeedLister) Feed(context.Context) ([]model.Post, error) {
	f.fetches++
	return f.posts, nil
}

func TestFollowingFeedRefetchesOnFollowChange(t *testing.T) {
	lister := &fakeFeedLister{posts: []model.Post{{ID: "p1"}}}
	signals := &notify.Signals{}
	f := view.NewFollowingFeed(lister, signals)

	ctx := context.Background()
	if err := f.Mount(ctx); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	defer f.Unmount()

	if len(f.Posts()) != 1 {
		t.Fatalf("Posts() = %d entries, want 1", len(f.Posts()))
	}

	if err := f.RefreshIfStale(ctx); err != nil {
		t.Fatalf("RefreshIfStale() error = %v", err)
	}
	if lister.fetches != 1 {
		t.Fatalf("fetches = %d, want 1 before any follow change", lister.fetches)
	}

	signals.FollowChanged.Bump()
	if err := f.RefreshIfStale(ctx); err != nil {
		t.Fatalf("RefreshIfStale() error = %v", err)
	}
	if lister.fetches != 2 {
		t.Errorf("fetches = %d, want 2 after a follow elsewhere", lister.fetches)
	}
}
