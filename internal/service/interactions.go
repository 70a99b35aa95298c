package service

import (
	"context"
	"log/slog"

	"github.com/sakif/blogkit/internal/model"
	"github.com/sakif/blogkit/internal/notify"
	"github.com/sakif/blogkit/internal/session"
)

// InteractionAPI is the slice of the API client the interaction service
// consumes.
type InteractionAPI interface {
	LikePost(ctx context.Context, id string) (*model.LikeResult, error)
	ViewPost(ctx context.Context, id string) (*model.ViewResult, error)
	FollowUser(ctx context.Context, id string) (*model.FollowResult, error)
	UnfollowUser(ctx context.Context, id string) (*model.FollowResult, error)
}

// InteractionService reconciles like, view and follow state between what
// the user just did and what the server answered. The server's returned
// membership sets are authoritative; the service never trusts its own
// prediction of a toggle's outcome.
type InteractionService struct {
	api     InteractionAPI
	session *session.Session
	signals *notify.Signals
	logger  *slog.Logger
}

func NewInteractionService(api InteractionAPI, sess *session.Session, signals *notify.Signals, logger *slog.Logger) *InteractionService {
	return &InteractionService{api: api, session: sess, signals: signals, logger: logger}
}

// ToggleLike flips the current user's like on a post and returns the
// resulting state. Liked is read from the returned set, not assumed from
// the pre-call state, so a stale local view converges instead of
// oscillating.
func (s *InteractionService) ToggleLike(ctx context.Context, postID string) (liked bool, res *model.LikeResult, err error) {
	res, err = s.api.LikePost(ctx, normalizeID(postID))
	if err != nil {
		return false, nil, err
	}

	liked = model.Contains(res.LikedBy, s.session.UserID())
	s.signals.PostLiked.Bump()
	return liked, res, nil
}

// EnsureViewed records the current user's view of a post. When the user
// already appears in the post's view set no request is issued; otherwise
// the server adds them at most once, so repeated calls never inflate the
// count.
func (s *InteractionService) EnsureViewed(ctx context.Context, post *model.Post) (*model.ViewResult, error) {
	userID := s.session.UserID()
	if post.ViewedBy(userID) {
		return &model.ViewResult{Views: len(post.Views), ViewedBy: post.Views}, nil
	}

	res, err := s.api.ViewPost(ctx, normalizeID(post.ID))
	if err != nil {
		return nil, err
	}

	s.signals.PostViewed.Bump()
	return res, nil
}

// Follow adds the target to the current user's following set. Following an
// already-followed user is a no-op server-side; either way the session's
// cached set is replaced with the returned one.
func (s *InteractionService) Follow(ctx context.Context, userID string) (*model.FollowResult, error) {
	res, err := s.api.FollowUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.applyFollowing(res.Following)
	s.logger.Info("followed user", slog.String("target", userID))
	return res, nil
}

// Unfollow removes the target from the current user's following set.
// Unfollowing someone not followed is a no-op.
func (s *InteractionService) Unfollow(ctx context.Context, userID string) (*model.FollowResult, error) {
	res, err := s.api.UnfollowUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.applyFollowing(res.Following)
	s.logger.Info("unfollowed user", slog.String("target", userID))
	return res, nil
}

// IsFollowing reports whether the current user follows the given author,
// from the session's cached profile.
func (s *InteractionService) IsFollowing(userID string) bool {
	profile := s.session.Profile()
	return profile != nil && profile.IsFollowing(userID)
}

func (s *InteractionService) applyFollowing(following []string) {
	s.session.SetFollowing(following)
	s.signals.FollowChanged.Bump()
}
