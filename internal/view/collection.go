package view

import (
	"context"
	"strings"
	"sync"

	"github.com/sakif/blogkit/internal/model"
	"github.com/sakif/blogkit/internal/notify"
)

// postsPerPage is the collection's page window size.
const postsPerPage = 6

// PostLister is the slice of the post service the collection consumes.
type PostLister interface {
	All(ctx context.Context) ([]model.Post, error)
	CategoryCounts(ctx context.Context) ([]model.CategoryCount, error)
}

// Collection is the state behind the all-posts screen: the full listing, a
// category sidebar, a search box and page-window pagination.
//
// It tracks the like/view signal revisions it last rendered; when either
// has moved, the next RefreshIfStale re-fetches so counts catch up with
// interactions made on other screens.
type Collection struct {
	mu      sync.Mutex
	mounted bool

	posts    []model.Post
	counts   []model.CategoryCount
	category string
	search   string
	page     int

	likedRev  uint64
	viewedRev uint64

	lister  PostLister
	signals *notify.Signals
}

func NewCollection(lister PostLister, signals *notify.Signals) *Collection {
	return &Collection{
		lister:   lister,
		signals:  signals,
		category: model.CategoryAll,
	}
}

// Mount performs the initial fetch.
func (c *Collection) Mount(ctx context.Context) error {
	c.mu.Lock()
	c.mounted = true
	c.mu.Unlock()
	return c.refresh(ctx)
}

func (c *Collection) Unmount() {
	c.mu.Lock()
	c.mounted = false
	c.mu.Unlock()
}

// RefreshIfStale re-fetches only when a like or view happened since the
// last fetch. Cheap to call on every render.
func (c *Collection) RefreshIfStale(ctx context.Context) error {
	c.mu.Lock()
	stale := c.likedRev != c.signals.PostLiked.Rev() || c.viewedRev != c.signals.PostViewed.Rev()
	c.mu.Unlock()
	if !stale {
		return nil
	}
	return c.refresh(ctx)
}

func (c *Collection) refresh(ctx context.Context) error {
	likedRev := c.signals.PostLiked.Rev()
	viewedRev := c.signals.PostViewed.Rev()

	posts, err := c.lister.All(ctx)
	if err != nil {
		return err
	}
	counts, err := c.lister.CategoryCounts(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.mounted {
		return nil
	}
	c.posts = posts
	c.counts = counts
	c.likedRev = likedRev
	c.viewedRev = viewedRev
	return nil
}

// SetCategory filters by category and resets to the first page.
func (c *Collection) SetCategory(category string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.category = category
	c.page = 0
}

// SetSearch filters by a case-insensitive title substring and resets to
// the first page.
func (c *Collection) SetSearch(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = strings.ToLower(strings.TrimSpace(query))
	c.page = 0
}

// NextPage advances one page, clamped to the last.
func (c *Collection) NextPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page < c.totalPagesLocked()-1 {
		c.page++
	}
}

// PrevPage goes back one page, clamped to the first.
func (c *Collection) PrevPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page > 0 {
		c.page--
	}
}

// Page is the zero-based current page.
func (c *Collection) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// TotalPages is the page count for the current filter, at least one.
func (c *Collection) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPagesLocked()
}

func (c *Collection) totalPagesLocked() int {
	n := len(c.filteredLocked())
	if n == 0 {
		return 1
	}
	return (n + postsPerPage - 1) / postsPerPage
}

// Visible returns the current page window of the filtered listing.
func (c *Collection) Visible() []model.Post {
	c.mu.Lock()
	defer c.mu.Unlock()

	filtered := c.filteredLocked()
	start := c.page * postsPerPage
	if start >= len(filtered) {
		return nil
	}
	end := start + postsPerPage
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end]
}

func (c *Collection) filteredLocked() []model.Post {
	out := make([]model.Post, 0, len(c.posts))
	for _, p := range c.posts {
		if c.category != model.CategoryAll && p.Category != c.category {
			continue
		}
		if c.search != "" && !strings.Contains(strings.ToLower(p.Title), c.search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Categories returns the sidebar entries. Every known category is present
// even when its count is zero, so the sidebar never loses chips as posts
// come and go.
func (c *Collection) Categories() []model.CategoryCount {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.counts) > 0 {
		return c.counts
	}
	// Nothing fetched yet (or the fetch failed): render the fixed list
	// with zero counts rather than an empty sidebar.
	out := make([]model.CategoryCount, 0, len(model.KnownCategories))
	for _, name := range model.KnownCategories {
		out = append(out, model.CategoryCount{Category: name})
	}
	return out
}
