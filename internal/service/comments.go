package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/blogkit/internal/apperror"
	"github.com/sakif/blogkit/internal/model"
	"github.com/sakif/blogkit/internal/session"
)

// CommentAPI is the slice of the API client the comment service consumes.
type CommentAPI interface {
	Comments(ctx context.Context, postID string) ([]model.Comment, error)
	AddComment(ctx context.Context, postID string, input model.CommentInput) (*model.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID string) error
}

// CommentService loads and mutates a post's comment thread.
type CommentService struct {
	api     CommentAPI
	session *session.Session
	logger  *slog.Logger
}

func NewCommentService(api CommentAPI, sess *session.Session, logger *slog.Logger) *CommentService {
	return &CommentService{api: api, session: sess, logger: logger}
}

// Load fetches the thread for a post, newest first.
func (s *CommentService) Load(ctx context.Context, postID string) ([]model.Comment, error) {
	return s.api.Comments(ctx, normalizeID(postID))
}

// Add posts a comment and returns the updated thread with the new comment
// prepended. If the server's answer omits fields, they are filled locally:
// a placeholder id so list keys stay stable until the next fetch, and the
// session identity as the author.
func (s *CommentService) Add(ctx context.Context, postID string, text string, existing []model.Comment) ([]model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.ValidationFailed("text", "comment text is required")
	}

	created, err := s.api.AddComment(ctx, normalizeID(postID), model.CommentInput{
		Text:   text,
		Author: s.session.Username(),
		User:   s.session.UserID(),
	})
	if err != nil {
		return nil, err
	}

	if created.ID == "" {
		created.ID = xid.New().String()
	}
	if created.Author == "" {
		created.Author = s.session.Username()
	}
	if created.UserID == "" {
		created.UserID = s.session.UserID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now()
	}

	return append([]model.Comment{*created}, existing...), nil
}

// Delete removes a comment after confirmation. Only the comment's author
// may delete it; the check runs locally first so no request is wasted on a
// guaranteed rejection.
func (s *CommentService) Delete(ctx context.Context, postID string, comment model.Comment, confirm func(prompt string) bool) (bool, error) {
	if comment.UserID != s.session.UserID() {
		return false, apperror.Forbidden("you can only delete your own comments")
	}
	if confirm != nil && !confirm("Delete this comment?") {
		return false, nil
	}

	if err := s.api.DeleteComment(ctx, normalizeID(postID), comment.ID); err != nil {
		return false, err
	}
	s.logger.Info("comment deleted", slog.String("comment", comment.ID))
	return true, nil
}
