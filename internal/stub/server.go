package stub

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/blogkit/internal/model"
)

// Config holds stub server configuration.
type Config struct {
	DBPath      string
	TokenSecret string
	TokenTTL    time.Duration
	BcryptCost  int // 0 means bcrypt's default; tests pass the minimum
}

// Server emulates the remote blogging API. It owns the store and exposes an
// http.Handler, so it can back an httptest.Server in tests or a real
// listener in cmd/blogstub.
type Server struct {
	router    *chi.Mux
	store     *Store
	tokens    *tokenService
	passwords *hasher
	logger    *slog.Logger
}

// New wires the stub's dependency chain: store, token service, hasher,
// routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	store, err := NewStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	tokens, err := newTokenService(cfg.TokenSecret, ttl)
	if err != nil {
		store.Close()
		return nil, err
	}

	s := &Server{
		router:    chi.NewRouter(),
		store:     store,
		tokens:    tokens,
		passwords: newHasher(cfg.BcryptCost),
		logger:    logger,
	}
	s.routes()
	return s, nil
}

// Handler returns the stub's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Store exposes the backing store for test seeding and admin promotion.
func (s *Server) Store() *Store {
	return s.store
}

// Close releases the backing store.
func (s *Server) Close() error {
	return s.store.Close()
}

func (s *Server) routes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.Recoverer)

	// Public surface.
	s.router.Post("/register", s.handleRegister)
	s.router.Post("/login", s.handleLogin)
	s.router.Get("/home-posts", s.handleHomePosts)
	s.router.Get("/home-users", s.handleHomeUsers)
	s.router.Get("/category-wise-count", s.handleCategoryCounts)

	// Protected surface.
	s.router.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/user-profile", s.handleProfile)
		r.Put("/edit-profile", s.handleEditProfile)

		r.Post("/add-blog", s.handleAddPost)
		r.Get("/get-allBlogs", s.handleAllPosts)
		r.Get("/user-blogs", s.handleUserPosts)
		r.Get("/blog/{id}/view", s.handleGetPost)
		r.Put("/blog/{id}/edit", s.handleEditPost)
		r.Delete("/blog/{id}/remove", s.handleDeletePost)

		r.Put("/post/{id}/like", s.handleLike)
		r.Put("/post/{id}/viewPost", s.handleView)
		r.Post("/user/follow/{id}", s.handleFollow)
		r.Post("/user/unfollow/{id}", s.handleUnfollow)
		r.Get("/followed", s.handleFollowedFeed)

		r.Post("/post/{id}/comment", s.handleAddComment)
		r.Get("/post/{id}/comments", s.handleComments)
		r.Delete("/post/{id}/comment/{commentId}", s.handleDeleteComment)

		// Admin surface.
		r.Get("/all-users", s.adminOnly(s.handleAllUsers))
		r.Get("/all-comments", s.adminOnly(s.handleAllComments))
		r.Delete("/user/{id}/remove", s.adminOnly(s.handleDeleteUser))
	})
}

// =========================================================================
// MIDDLEWARE AND HELPERS
// =========================================================================

type contextKey string

const userIDKey contextKey = "userID"

// requireAuth reads the bearer token, validates it, and stores the user id
// in the request context. Missing or invalid credentials answer 401.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "valid authentication required"})
			return
		}

		userID, err := s.tokens.validate(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "valid authentication required"})
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// adminOnly gates a handler on the admin role.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.currentUser(r)
		if err != nil || !user.IsAdmin() {
			writeJSON(w, http.StatusForbidden, map[string]string{"message": "admin access required"})
			return
		}
		next(w, r)
	}
}

func (s *Server) currentUser(r *http.Request) (*userRecord, error) {
	id, _ := r.Context().Value(userIDKey).(string)
	if id == "" {
		return nil, errNoRecord
	}
	return s.store.userByID(r.Context(), id)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("stub: encoding response", slog.String("error", err.Error()))
		}
	}
}

// writeText answers with a bare string body, the shape the real platform
// uses for register/login failures.
func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(message))
}

func decodeBody(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return false
	}
	return true
}

// =========================================================================
// AUTH
// =========================================================================

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "username, email and password are required"})
		return
	}

	exists, err := s.store.userExists(r.Context(), req.Username, req.Email)
	if err != nil {
		s.serverError(w, "checking existing user", err)
		return
	}
	if exists {
		writeText(w, http.StatusNotAcceptable, "Username or email already exists")
		return
	}

	hash, err := s.passwords.hash(req.Password)
	if err != nil {
		s.serverError(w, "hashing password", err)
		return
	}

	user := &userRecord{PasswordHash: hash}
	user.Username = req.Username
	user.Email = strings.ToLower(req.Email)
	if err := s.store.createUser(r.Context(), user); err != nil {
		s.serverError(w, "creating user", err)
		return
	}

	writeJSON(w, http.StatusOK, model.RegisterResult{Username: user.Username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := s.store.userByEmail(r.Context(), req.Email)
	if err != nil {
		writeText(w, http.StatusNotFound, "Invalid email or password")
		return
	}
	if err := s.passwords.verify(user.PasswordHash, req.Password); err != nil {
		writeText(w, http.StatusNotFound, "Invalid email or password")
		return
	}

	token, err := s.tokens.issue(user.ID, user.Username, user.Role)
	if err != nil {
		s.serverError(w, "issuing token", err)
		return
	}

	writeJSON(w, http.StatusOK, model.LoginResult{User: user.User, Token: token})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "profile not found"})
		return
	}
	// The platform returns the profile as an array's first element.
	writeJSON(w, http.StatusOK, []model.User{user.User})
}

func (s *Server) handleEditProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "profile not found"})
		return
	}

	var changes model.User
	if !decodeBody(w, r, &changes) {
		return
	}
	if changes.Username != "" {
		user.Username = changes.Username
	}
	user.Bio = changes.Bio
	user.ProfileImage = changes.ProfileImage

	if err := s.store.updateProfile(r.Context(), user); err != nil {
		s.serverError(w, "updating profile", err)
		return
	}
	writeJSON(w, http.StatusOK, user.User)
}

// =========================================================================
// POSTS
// =========================================================================

func (s *Server) handleAddPost(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "valid authentication required"})
		return
	}

	var input model.PostInput
	if !decodeBody(w, r, &input) {
		return
	}
	if input.Title == "" || input.Content == "" || input.Category == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "title, content and category are required"})
		return
	}

	post := &model.Post{
		UserID:    user.ID,
		Username:  user.Username,
		Title:     input.Title,
		Content:   input.Content,
		Category:  input.Category,
		BlogImage: input.BlogImage,
	}
	if err := s.store.createPost(r.Context(), post); err != nil {
		s.serverError(w, "creating post", err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) handleAllPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.store.listPosts(r.Context(), 0)
	if err != nil {
		s.serverError(w, "listing posts", err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleUserPosts(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(userIDKey).(string)
	posts, err := s.store.listPostsByUser(r.Context(), userID)
	if err != nil {
		s.serverError(w, "listing user posts", err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.store.postByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "post not found"})
		return
	}

	comments, err := s.store.commentsByPost(r.Context(), post.ID)
	if err != nil {
		s.serverError(w, "loading comments", err)
		return
	}
	post.Comments = comments

	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleEditPost(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(userIDKey).(string)
	post, err := s.store.postByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "post not found"})
		return
	}
	if post.UserID != userID {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "you can only edit your own posts"})
		return
	}

	var input model.PostInput
	if !decodeBody(w, r, &input) {
		return
	}
	if input.Title != "" {
		post.Title = input.Title
	}
	if input.Content != "" {
		post.Content = input.Content
	}
	if input.Category != "" {
		post.Category = input.Category
	}
	if input.BlogImage != "" {
		post.BlogImage = input.BlogImage
	}

	if err := s.store.updatePost(r.Context(), post); err != nil {
		s.serverError(w, "updating post", err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "valid authentication required"})
		return
	}
	post, err := s.store.postByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "post not found"})
		return
	}
	if post.UserID != user.ID && !user.IsAdmin() {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "you can only delete your own posts"})
		return
	}

	if err := s.store.deletePost(r.Context(), post.ID); err != nil {
		s.serverError(w, "deleting post", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "post deleted"})
}

func (s *Server) handleHomePosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.store.listPosts(r.Context(), 6)
	if err != nil {
		s.serverError(w, "listing home posts", err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleHomeUsers(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.listUsers(r.Context(), 6)
	if err != nil {
		s.serverError(w, "listing home users", err)
		return
	}
	users := make([]model.User, 0, len(records))
	for _, rec := range records {
		users = append(users, rec.User)
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleCategoryCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.categoryCounts(r.Context())
	if err != nil {
		s.serverError(w, "counting categories", err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// =========================================================================
// INTERACTIONS
// =========================================================================

// handleLike toggles membership: a second like from the same user
// withdraws the first. The response carries the authoritative set.
func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(userIDKey).(string)
	post, err := s.store.postByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "post not found"})
		return
	}

	if model.Contains(post.Likes, userID) {
		post.Likes = model.RemoveMember(post.Likes, userID)
	} else {
		post.Likes = model.AddMember(post.Likes, userID)
	}

	if err := s.store.updatePostSets(r.Context(), post.ID, post.Likes, post.Views); err != nil {
		s.serverError(w, "saving like", err)
		return
	}
	writeJSON(w, http.StatusOK, model.LikeResult{Likes: len(post.Likes), LikedBy: post.Likes})
}

// handleView records a view at most once per user.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(userIDKey).(string)
	post, err := s.store.postByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "post not found"})
		return
	}

	post.Views = model.AddMember(post.Views, userID)
	if err := s.store.updatePostSets(r.Context(), post.ID, post.Likes, post.Views); err != nil {
		s.serverError(w, "saving view", err)
		return
	}
	writeJSON(w, http.StatusOK, model.ViewResult{Views: len(post.Views), ViewedBy: post.Views})
}

func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	s.handleRelationChange(w, r, true)
}

func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	s.handleRelationChange(w, r, false)
}

// handleRelationChange keeps both sides of the directed edge in step:
// the actor's following set and the target's followers set.
func (s *Server) handleRelationChange(w http.ResponseWriter, r *http.Request, follow bool) {
	actor, err := s.currentUser(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "valid authentication required"})
		return
	}
	target, err := s.store.userByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "user not found"})
		return
	}
	if actor.ID == target.ID {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "you cannot follow yourself"})
		return
	}

	if follow {
		actor.Following = model.AddMember(actor.Following, target.ID)
		target.Followers = model.AddMember(target.Followers, actor.ID)
	} else {
		actor.Following = model.RemoveMember(actor.Following, target.ID)
		target.Followers = model.RemoveMember(target.Followers, actor.ID)
	}

	if err := s.store.updateUserSets(r.Context(), actor.ID, actor.Following, actor.Followers); err != nil {
		s.serverError(w, "saving follower relation", err)
		return
	}
	if err := s.store.updateUserSets(r.Context(), target.ID, target.Following, target.Followers); err != nil {
		s.serverError(w, "saving followee relation", err)
		return
	}

	writeJSON(w, http.StatusOK, model.FollowResult{Following: actor.Following})
}

func (s *Server) handleFollowedFeed(w http.ResponseWriter, r *http.Request) {
	actor, err := s.currentUser(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "valid authentication required"})
		return
	}

	posts, err := s.store.listPostsByUsers(r.Context(), actor.Following)
	if err != nil {
		s.serverError(w, "listing followed posts", err)
		return
	}
	writeJSON(w, http.StatusOK, model.FeedResult{Success: true, Data: posts})
}

// =========================================================================
// COMMENTS
// =========================================================================

// wireCommentOut is the list shape: author nested under user.
type wireCommentOut struct {
	ID        string       `json:"_id"`
	PostID    string       `json:"postId,omitempty"`
	Text      string       `json:"text"`
	Author    string       `json:"author,omitempty"`
	User      wireUserStub `json:"user"`
	CreatedAt time.Time    `json:"createdAt"`
}

type wireUserStub struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "valid authentication required"})
		return
	}
	post, err := s.store.postByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "post not found"})
		return
	}

	var input model.CommentInput
	if !decodeBody(w, r, &input) {
		return
	}
	if strings.TrimSpace(input.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "comment text is required"})
		return
	}

	comment := &model.Comment{
		PostID: post.ID,
		UserID: user.ID,
		Author: user.Username,
		Text:   input.Text,
	}
	if err := s.store.createComment(r.Context(), comment); err != nil {
		s.serverError(w, "creating comment", err)
		return
	}

	// Create responses use the flat shape: user is the bare id.
	writeJSON(w, http.StatusCreated, map[string]any{
		"_id":       comment.ID,
		"text":      comment.Text,
		"author":    comment.Author,
		"user":      comment.UserID,
		"createdAt": comment.CreatedAt,
	})
}

func (s *Server) handleComments(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")
	comments, err := s.store.commentsByPost(r.Context(), postID)
	if err != nil {
		s.serverError(w, "listing comments", err)
		return
	}

	out := make([]wireCommentOut, 0, len(comments))
	for _, c := range comments {
		out = append(out, wireCommentOut{
			ID:        c.ID,
			Text:      c.Text,
			User:      wireUserStub{ID: c.UserID, Username: c.Author},
			CreatedAt: c.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": out})
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "valid authentication required"})
		return
	}
	comment, err := s.store.commentByID(r.Context(), chi.URLParam(r, "commentId"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "comment not found"})
		return
	}
	if comment.UserID != user.ID && !user.IsAdmin() {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "you can only delete your own comments"})
		return
	}

	if err := s.store.deleteComment(r.Context(), chi.URLParam(r, "id"), comment.ID); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "comment not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "comment deleted"})
}

// =========================================================================
// ADMIN
// =========================================================================

func (s *Server) handleAllUsers(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.listUsers(r.Context(), 0)
	if err != nil {
		s.serverError(w, "listing users", err)
		return
	}
	users := make([]model.User, 0, len(records))
	for _, rec := range records {
		users = append(users, rec.User)
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleAllComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.store.allComments(r.Context())
	if err != nil {
		s.serverError(w, "listing comments", err)
		return
	}

	out := make([]wireCommentOut, 0, len(comments))
	for _, c := range comments {
		out = append(out, wireCommentOut{
			ID:        c.ID,
			PostID:    c.PostID,
			Text:      c.Text,
			User:      wireUserStub{ID: c.UserID, Username: c.Author},
			CreatedAt: c.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.store.deleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, errNoRecord) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "user not found"})
			return
		}
		s.serverError(w, "deleting user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

func (s *Server) serverError(w http.ResponseWriter, action string, err error) {
	s.logger.Error("stub: "+action, slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
}
