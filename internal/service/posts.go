package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/blogkit/internal/apperror"
	"github.com/sakif/blogkit/internal/model"
	"github.com/sakif/blogkit/internal/notify"
)

// PostAPI is the slice of the API client the post service consumes.
type PostAPI interface {
	AddPost(ctx context.Context, input model.PostInput) (*model.Post, error)
	AllPosts(ctx context.Context) ([]model.Post, error)
	UserPosts(ctx context.Context) ([]model.Post, error)
	GetPost(ctx context.Context, id string) (*model.Post, error)
	UpdatePost(ctx context.Context, id string, input model.PostInput) (*model.Post, error)
	DeletePost(ctx context.Context, id string) error
	FollowedFeed(ctx context.Context) ([]model.Post, error)
	CategoryCounts(ctx context.Context) ([]model.CategoryCount, error)
}

// PostService owns post CRUD and the change signals other views re-render
// on.
type PostService struct {
	api     PostAPI
	signals *notify.Signals
	logger  *slog.Logger
}

func NewPostService(api PostAPI, signals *notify.Signals, logger *slog.Logger) *PostService {
	return &PostService{api: api, signals: signals, logger: logger}
}

// Create validates and publishes a new post, then bumps the added signal so
// every listing re-fetches.
func (s *PostService) Create(ctx context.Context, input model.PostInput) (*model.Post, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Content = strings.TrimSpace(input.Content)

	if input.Title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if input.Content == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}
	if input.Category == "" {
		return nil, apperror.ValidationFailed("category", "pick a category")
	}

	post, err := s.api.AddPost(ctx, input)
	if err != nil {
		return nil, err
	}

	s.signals.PostAdded.Bump()
	s.logger.Info("post created", slog.String("id", post.ID), slog.String("title", post.Title))
	return post, nil
}

// Update edits an existing post and bumps the edited signal.
func (s *PostService) Update(ctx context.Context, id string, input model.PostInput) (*model.Post, error) {
	if id == "" {
		return nil, apperror.NotFound("post", id)
	}

	post, err := s.api.UpdatePost(ctx, id, input)
	if err != nil {
		return nil, err
	}

	s.signals.PostEdited.Bump()
	return post, nil
}

// Delete removes a post after confirmation. A declined confirmation is not
// an error; the caller checks the returned flag.
func (s *PostService) Delete(ctx context.Context, id string, confirm func(prompt string) bool) (bool, error) {
	if id == "" {
		return false, apperror.NotFound("post", id)
	}
	if confirm != nil && !confirm("Delete this post? This cannot be undone.") {
		return false, nil
	}

	if err := s.api.DeletePost(ctx, id); err != nil {
		return false, err
	}

	s.signals.PostEdited.Bump()
	s.logger.Info("post deleted", slog.String("id", id))
	return true, nil
}

// Get loads one post with its interaction sets and comments.
func (s *PostService) Get(ctx context.Context, id string) (*model.Post, error) {
	return s.api.GetPost(ctx, normalizeID(id))
}

// All lists every post on the platform.
func (s *PostService) All(ctx context.Context) ([]model.Post, error) {
	return s.api.AllPosts(ctx)
}

// Mine lists the authenticated user's posts.
func (s *PostService) Mine(ctx context.Context) ([]model.Post, error) {
	return s.api.UserPosts(ctx)
}

// Feed lists posts from followed authors.
func (s *PostService) Feed(ctx context.Context) ([]model.Post, error) {
	return s.api.FollowedFeed(ctx)
}

// CategoryCounts tallies posts per category. Every known category appears
// in the result, zero-count ones included, so filter chips never vanish
// when a category empties out.
func (s *PostService) CategoryCounts(ctx context.Context) ([]model.CategoryCount, error) {
	fetched, err := s.api.CategoryCounts(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]int, len(fetched))
	for _, c := range fetched {
		byName[c.Category] = c.Count
	}

	counts := make([]model.CategoryCount, 0, len(model.KnownCategories))
	total := 0
	for _, name := range model.KnownCategories {
		if name == model.CategoryAll {
			continue
		}
		counts = append(counts, model.CategoryCount{Category: name, Count: byName[name]})
		total += byName[name]
	}
	// "All" leads with the grand total.
	return append([]model.CategoryCount{{Category: model.CategoryAll, Count: total}}, counts...), nil
}

// normalizeID strips the stray ":" prefix route params sometimes carry.
func normalizeID(id string) string {
	return strings.TrimPrefix(id, ":")
}
