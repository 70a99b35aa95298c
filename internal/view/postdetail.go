package view

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sakif/blogkit/internal/model"
	"github.com/sakif/blogkit/internal/session"
)

// PostLoader loads a single post.
type PostLoader interface {
	Get(ctx context.Context, id string) (*model.Post, error)
}

// Interactions is the slice of the interaction service the detail view
// consumes.
type Interactions interface {
	ToggleLike(ctx context.Context, postID string) (bool, *model.LikeResult, error)
	EnsureViewed(ctx context.Context, post *model.Post) (*model.ViewResult, error)
	Follow(ctx context.Context, userID string) (*model.FollowResult, error)
	Unfollow(ctx context.Context, userID string) (*model.FollowResult, error)
	IsFollowing(userID string) bool
}

// CommentThread is the slice of the comment service the detail view
// consumes.
type CommentThread interface {
	Load(ctx context.Context, postID string) ([]model.Comment, error)
	Add(ctx context.Context, postID, text string, existing []model.Comment) ([]model.Comment, error)
	Delete(ctx context.Context, postID string, comment model.Comment, confirm func(string) bool) (bool, error)
}

// PostDetail is the state behind a single post's page: the post, its
// comment thread, and the current user's relationship to both.
type PostDetail struct {
	mu      sync.Mutex
	mounted bool

	post        *model.Post
	comments    []model.Comment
	hasLiked    bool
	hasViewed   bool
	isFollowing bool

	loader       PostLoader
	interactions Interactions
	thread       CommentThread
	session      *session.Session
	logger       *slog.Logger
}

func NewPostDetail(loader PostLoader, interactions Interactions, thread CommentThread, sess *session.Session, logger *slog.Logger) *PostDetail {
	return &PostDetail{
		loader:       loader,
		interactions: interactions,
		thread:       thread,
		session:      sess,
		logger:       logger,
	}
}

// Mount loads the post and its thread, derives the relationship flags and
// records the view. A view-record failure is logged and swallowed: the
// page still renders, the count is just a step behind.
func (d *PostDetail) Mount(ctx context.Context, postID string) error {
	d.mu.Lock()
	d.mounted = true
	d.mu.Unlock()

	post, err := d.loader.Get(ctx, postID)
	if err != nil {
		return err
	}
	comments, err := d.thread.Load(ctx, postID)
	if err != nil {
		return err
	}

	userID := d.session.UserID()

	viewed, err := d.interactions.EnsureViewed(ctx, post)
	if err != nil {
		d.logger.Warn("recording view failed", slog.String("post", post.ID), slog.String("error", err.Error()))
	} else {
		post.Views = viewed.ViewedBy
		post.ViewCount = viewed.Views
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.mounted {
		return nil
	}
	d.post = post
	d.comments = comments
	d.hasLiked = post.LikedBy(userID)
	d.hasViewed = true
	d.isFollowing = d.interactions.IsFollowing(post.UserID)
	return nil
}

// Unmount marks the view dead; any response still in flight is discarded.
func (d *PostDetail) Unmount() {
	d.mu.Lock()
	d.mounted = false
	d.mu.Unlock()
}

// ToggleLike flips the like and applies the server's answer. Failures are
// logged, not surfaced; the rendered state simply does not move.
func (d *PostDetail) ToggleLike(ctx context.Context) {
	d.mu.Lock()
	if d.post == nil {
		d.mu.Unlock()
		return
	}
	postID := d.post.ID
	d.mu.Unlock()

	liked, res, err := d.interactions.ToggleLike(ctx, postID)
	if err != nil {
		d.logger.Warn("like failed", slog.String("post", postID), slog.String("error", err.Error()))
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.mounted || d.post == nil {
		return
	}
	d.hasLiked = liked
	d.post.Likes = res.LikedBy
	d.post.LikeCount = res.Likes
}

// ToggleFollow follows or unfollows the post's author depending on the
// current relationship.
func (d *PostDetail) ToggleFollow(ctx context.Context) error {
	d.mu.Lock()
	if d.post == nil {
		d.mu.Unlock()
		return nil
	}
	authorID := d.post.UserID
	following := d.isFollowing
	d.mu.Unlock()

	var err error
	if following {
		_, err = d.interactions.Unfollow(ctx, authorID)
	} else {
		_, err = d.interactions.Follow(ctx, authorID)
	}
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.mounted {
		return nil
	}
	d.isFollowing = !following
	return nil
}

// AddComment posts a comment and prepends it to the thread.
func (d *PostDetail) AddComment(ctx context.Context, text string) error {
	d.mu.Lock()
	if d.post == nil {
		d.mu.Unlock()
		return nil
	}
	postID := d.post.ID
	existing := d.comments
	d.mu.Unlock()

	thread, err := d.thread.Add(ctx, postID, text, existing)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.mounted {
		return nil
	}
	d.comments = thread
	return nil
}

// DeleteComment removes one comment after confirmation and drops exactly
// that comment from the thread.
func (d *PostDetail) DeleteComment(ctx context.Context, commentID string, confirm func(string) bool) error {
	d.mu.Lock()
	if d.post == nil {
		d.mu.Unlock()
		return nil
	}
	postID := d.post.ID
	var target *model.Comment
	for i := range d.comments {
		if d.comments[i].ID == commentID {
			target = &d.comments[i]
			break
		}
	}
	d.mu.Unlock()
	if target == nil {
		return nil
	}

	deleted, err := d.thread.Delete(ctx, postID, *target, confirm)
	if err != nil || !deleted {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.mounted {
		return nil
	}
	kept := d.comments[:0:0]
	for _, c := range d.comments {
		if c.ID != commentID {
			kept = append(kept, c)
		}
	}
	d.comments = kept
	return nil
}

// Post returns the loaded post, nil before Mount completes.
func (d *PostDetail) Post() *model.Post {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.post
}

// Comments returns the thread, newest first.
func (d *PostDetail) Comments() []model.Comment {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.comments
}

// HasLiked reports whether the current user is in the post's like set.
func (d *PostDetail) HasLiked() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hasLiked
}

// IsFollowing reports whether the current user follows the author.
func (d *PostDetail) IsFollowing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isFollowing
}
