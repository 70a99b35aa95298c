// Package stub is a local development server that emulates the remote
// blogging platform API, endpoint for endpoint and shape for shape. The
// client integration tests run against it, and cmd/blogstub serves it
// standalone so the CLI can be exercised without the real backend.
package stub

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/blogkit/internal/model"

	_ "modernc.org/sqlite"
)

var errNoRecord = errors.New("stub: no such record")

// userRecord is a stored account: the public user plus the password hash,
// which never leaves the store.
type userRecord struct {
	model.User
	PasswordHash string
}

// Store persists stub data in SQLite. Interaction sets are stored as JSON
// arrays in text columns; set semantics are enforced in the handlers via
// the model membership helpers before writing.
type Store struct {
	conn *sql.DB
}

// NewStore opens (and migrates) the database at dbPath. Use ":memory:"
// for a throwaway instance in tests.
func NewStore(dbPath string) (*Store, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("stub: opening database: %w", err)
	}
	// One connection: pragmas are per-connection, and a pooled ":memory:"
	// database would otherwise fragment into one database per connection.
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("stub: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in flight.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("stub: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("stub: enabling foreign keys: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("stub: running migrations: %w", err)
	}
	return s, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL DEFAULT 'user',
			bio           TEXT NOT NULL DEFAULT '',
			profile_image TEXT NOT NULL DEFAULT '',
			following     TEXT NOT NULL DEFAULT '[]',
			followers     TEXT NOT NULL DEFAULT '[]',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS posts (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			username   TEXT NOT NULL,
			title      TEXT NOT NULL,
			content    TEXT NOT NULL DEFAULT '',
			category   TEXT NOT NULL DEFAULT '',
			blog_image TEXT NOT NULL DEFAULT '',
			likes      TEXT NOT NULL DEFAULT '[]',
			views      TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id);
		CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);

		CREATE TABLE IF NOT EXISTS comments (
			id         TEXT PRIMARY KEY,
			post_id    TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL,
			author     TEXT NOT NULL,
			text       TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id);
	`)
	return err
}

func encodeSet(set []string) string {
	if set == nil {
		set = []string{}
	}
	encoded, _ := json.Marshal(set)
	return string(encoded)
}

func decodeSet(raw string) []string {
	var set []string
	if err := json.Unmarshal([]byte(raw), &set); err != nil || set == nil {
		return []string{}
	}
	return set
}

// =========================================================================
// USERS
// =========================================================================

func (s *Store) createUser(ctx context.Context, u *userRecord) error {
	u.ID = xid.New().String()
	u.CreatedAt = time.Now().UTC()
	if u.Role == "" {
		u.Role = model.RoleUser
	}

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, role, bio, profile_image, following, followers, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.Bio, u.ProfileImage,
		encodeSet(u.Following), encodeSet(u.Followers), u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("stub: inserting user: %w", err)
	}
	return nil
}

func (s *Store) scanUser(row *sql.Row) (*userRecord, error) {
	var u userRecord
	var following, followers string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&u.Bio, &u.ProfileImage, &following, &followers, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("stub: scanning user: %w", err)
	}
	u.Following = decodeSet(following)
	u.Followers = decodeSet(followers)
	return &u, nil
}

const userColumns = `id, username, email, password_hash, role, bio, profile_image, following, followers, created_at`

func (s *Store) userByID(ctx context.Context, id string) (*userRecord, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return s.scanUser(row)
}

func (s *Store) userByEmail(ctx context.Context, email string) (*userRecord, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(email))
	return s.scanUser(row)
}

func (s *Store) userExists(ctx context.Context, username, email string) (bool, error) {
	var count int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ? OR email = ?`,
		username, strings.ToLower(email)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("stub: checking user existence: %w", err)
	}
	return count > 0, nil
}

func (s *Store) listUsers(ctx context.Context, limit int) ([]userRecord, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("stub: listing users: %w", err)
	}
	defer rows.Close()

	var users []userRecord
	for rows.Next() {
		var u userRecord
		var following, followers string
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
			&u.Bio, &u.ProfileImage, &following, &followers, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("stub: scanning user row: %w", err)
		}
		u.Following = decodeSet(following)
		u.Followers = decodeSet(followers)
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) updateUserSets(ctx context.Context, id string, following, followers []string) error {
	_, err := s.conn.ExecContext(ctx,
		`UPDATE users SET following = ?, followers = ? WHERE id = ?`,
		encodeSet(following), encodeSet(followers), id)
	if err != nil {
		return fmt.Errorf("stub: updating relation sets: %w", err)
	}
	return nil
}

func (s *Store) updateProfile(ctx context.Context, u *userRecord) error {
	_, err := s.conn.ExecContext(ctx,
		`UPDATE users SET username = ?, bio = ?, profile_image = ? WHERE id = ?`,
		u.Username, u.Bio, u.ProfileImage, u.ID)
	if err != nil {
		return fmt.Errorf("stub: updating profile: %w", err)
	}
	return nil
}

func (s *Store) deleteUser(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("stub: deleting user: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errNoRecord
	}
	return nil
}

// PromoteAdmin grants the admin role to the account with the given email.
// Used by cmd/blogstub (ADMIN_EMAIL) and by tests.
func (s *Store) PromoteAdmin(ctx context.Context, email string) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE users SET role = ? WHERE email = ?`, model.RoleAdmin, strings.ToLower(email))
	if err != nil {
		return fmt.Errorf("stub: promoting admin: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errNoRecord
	}
	return nil
}

// =========================================================================
// POSTS
// =========================================================================

func (s *Store) createPost(ctx context.Context, p *model.Post) error {
	p.ID = xid.New().String()
	p.CreatedAt = time.Now().UTC()
	if p.Likes == nil {
		p.Likes = []string{}
	}
	if p.Views == nil {
		p.Views = []string{}
	}

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO posts (id, user_id, username, title, content, category, blog_image, likes, views, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Username, p.Title, p.Content, p.Category, p.BlogImage,
		encodeSet(p.Likes), encodeSet(p.Views), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("stub: inserting post: %w", err)
	}
	return nil
}

const postColumns = `id, user_id, username, title, content, category, blog_image, likes, views, created_at`

func scanPostRow(scan func(...any) error) (*model.Post, error) {
	var p model.Post
	var likes, views string
	err := scan(&p.ID, &p.UserID, &p.Username, &p.Title, &p.Content,
		&p.Category, &p.BlogImage, &likes, &views, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("stub: scanning post: %w", err)
	}
	p.Likes = decodeSet(likes)
	p.Views = decodeSet(views)
	p.LikeCount = len(p.Likes)
	p.ViewCount = len(p.Views)
	return &p, nil
}

func (s *Store) postByID(ctx context.Context, id string) (*model.Post, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	return scanPostRow(row.Scan)
}

func (s *Store) queryPosts(ctx context.Context, query string, args ...any) ([]model.Post, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("stub: querying posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		p, err := scanPostRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

func (s *Store) listPosts(ctx context.Context, limit int) ([]model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC`
	if limit > 0 {
		return s.queryPosts(ctx, query+` LIMIT ?`, limit)
	}
	return s.queryPosts(ctx, query)
}

func (s *Store) listPostsByUser(ctx context.Context, userID string) ([]model.Post, error) {
	return s.queryPosts(ctx,
		`SELECT `+postColumns+` FROM posts WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

func (s *Store) listPostsByUsers(ctx context.Context, userIDs []string) ([]model.Post, error) {
	if len(userIDs) == 0 {
		return []model.Post{}, nil
	}
	placeholders := strings.Repeat("?,", len(userIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}
	return s.queryPosts(ctx,
		`SELECT `+postColumns+` FROM posts WHERE user_id IN (`+placeholders+`) ORDER BY created_at DESC`,
		args...)
}

func (s *Store) updatePost(ctx context.Context, p *model.Post) error {
	_, err := s.conn.ExecContext(ctx,
		`UPDATE posts SET title = ?, content = ?, category = ?, blog_image = ? WHERE id = ?`,
		p.Title, p.Content, p.Category, p.BlogImage, p.ID)
	if err != nil {
		return fmt.Errorf("stub: updating post: %w", err)
	}
	return nil
}

func (s *Store) updatePostSets(ctx context.Context, id string, likes, views []string) error {
	_, err := s.conn.ExecContext(ctx,
		`UPDATE posts SET likes = ?, views = ? WHERE id = ?`,
		encodeSet(likes), encodeSet(views), id)
	if err != nil {
		return fmt.Errorf("stub: updating interaction sets: %w", err)
	}
	return nil
}

func (s *Store) deletePost(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("stub: deleting post: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errNoRecord
	}
	return nil
}

func (s *Store) categoryCounts(ctx context.Context) ([]model.CategoryCount, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM posts GROUP BY category ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("stub: counting categories: %w", err)
	}
	defer rows.Close()

	counts := []model.CategoryCount{}
	for rows.Next() {
		var c model.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("stub: scanning category count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// =========================================================================
// COMMENTS
// =========================================================================

func (s *Store) createComment(ctx context.Context, c *model.Comment) error {
	c.ID = xid.New().String()
	c.CreatedAt = time.Now().UTC()

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO comments (id, post_id, user_id, author, text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.PostID, c.UserID, c.Author, c.Text, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("stub: inserting comment: %w", err)
	}
	return nil
}

func (s *Store) queryComments(ctx context.Context, query string, args ...any) ([]model.Comment, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("stub: querying comments: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Author, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("stub: scanning comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

const commentColumns = `id, post_id, user_id, author, text, created_at`

func (s *Store) commentsByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	return s.queryComments(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE post_id = ? ORDER BY created_at DESC`, postID)
}

func (s *Store) allComments(ctx context.Context) ([]model.Comment, error) {
	return s.queryComments(ctx,
		`SELECT `+commentColumns+` FROM comments ORDER BY created_at DESC`)
}

func (s *Store) commentByID(ctx context.Context, id string) (*model.Comment, error) {
	comments, err := s.queryComments(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return nil, errNoRecord
	}
	return &comments[0], nil
}

func (s *Store) deleteComment(ctx context.Context, postID, commentID string) error {
	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM comments WHERE id = ? AND post_id = ?`, commentID, postID)
	if err != nil {
		return fmt.Errorf("stub: deleting comment: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errNoRecord
	}
	return nil
}
