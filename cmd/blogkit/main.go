// Command blogkit is an interactive terminal client for the blogging
// platform. It wires the dependency graph — session, notification bus, API
// client, services, view models — and drives a small command loop over it.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sakif/blogkit/internal/api"
	"github.com/sakif/blogkit/internal/model"
	"github.com/sakif/blogkit/internal/notify"
	"github.com/sakif/blogkit/internal/service"
	"github.com/sakif/blogkit/internal/session"
	"github.com/sakif/blogkit/internal/view"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	baseURL := os.Getenv("BLOG_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}

	// Composition root: the one place the full graph is assembled.
	bus := notify.NewBus()
	signals := &notify.Signals{}
	sess := session.New(bus, logger)
	client := api.New(baseURL, sess, logger)

	auth := service.NewAuthService(client, sess, logger)
	posts := service.NewPostService(client, signals, logger)
	interactions := service.NewInteractionService(client, sess, signals, logger)
	comments := service.NewCommentService(client, sess, logger)

	nav := view.NewNav()
	nav.Mount(sess, bus)
	defer nav.Unmount()

	app := &app{
		in:           bufio.NewScanner(os.Stdin),
		logger:       logger,
		auth:         auth,
		posts:        posts,
		interactions: interactions,
		comments:     comments,
		client:       client,
		sess:         sess,
		signals:      signals,
		nav:          nav,
	}
	app.run()
}

type app struct {
	in           *bufio.Scanner
	logger       *slog.Logger
	auth         *service.AuthService
	posts        *service.PostService
	interactions *service.InteractionService
	comments     *service.CommentService
	client       *api.Client
	sess         *session.Session
	signals      *notify.Signals
	nav          *view.Nav
}

func (a *app) run() {
	fmt.Println("blogkit — type 'help' for commands")
	ctx := context.Background()

	for {
		fmt.Printf("%s> ", a.prompt())
		if !a.in.Scan() {
			return
		}
		line := strings.TrimSpace(a.in.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")

		switch cmd {
		case "help":
			a.help()
		case "register":
			a.register(ctx)
		case "login":
			a.login(ctx)
		case "logout":
			a.auth.Logout()
			fmt.Println("logged out")
		case "nav":
			fmt.Println(strings.Join(a.nav.Links(), " | "))
		case "posts":
			a.listAll(ctx)
		case "read":
			a.read(ctx, arg)
		case "write":
			a.write(ctx)
		case "mine":
			a.listMine(ctx)
		case "browse":
			a.browse(ctx)
		case "dashboard":
			a.dashboard(ctx)
		case "feed":
			a.listFeed(ctx)
		case "admin":
			a.admin(ctx)
		case "delete":
			a.delete(ctx, arg)
		case "quit", "exit":
			return
		default:
			fmt.Printf("unknown command %q — type 'help'\n", cmd)
		}
	}
}

func (a *app) prompt() string {
	if a.sess.IsAuthenticated() {
		return a.sess.Username()
	}
	return "guest"
}

func (a *app) help() {
	fmt.Println(`commands:
  register          create an account
  login             sign in
  logout            sign out
  nav               show the navigation for the current state
  posts             list all posts
  read <id>         open a post (records your view, shows comments)
  write             publish a post
  mine              list your posts
  browse            page through the collection with filters
  dashboard         your posts with aggregate stats
  feed              posts from people you follow
  admin             platform management (admin accounts only)
  delete <id>       delete one of your posts
  quit              leave`)
}

func (a *app) ask(label string) string {
	fmt.Printf("%s: ", label)
	if !a.in.Scan() {
		return ""
	}
	return strings.TrimSpace(a.in.Text())
}

func (a *app) confirm(prompt string) bool {
	answer := a.ask(prompt + " [y/N]")
	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
}

func (a *app) register(ctx context.Context) {
	req := model.RegisterRequest{
		Username: a.ask("username"),
		Email:    a.ask("email"),
		Password: a.ask("password"),
	}
	res, err := a.auth.Register(ctx, req)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("welcome, %s — now log in\n", res.Username)
}

func (a *app) login(ctx context.Context) {
	req := model.LoginRequest{
		Email:    a.ask("email"),
		Password: a.ask("password"),
	}
	route, err := a.auth.Login(ctx, req)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if _, err := a.auth.RefreshProfile(ctx); err != nil {
		fmt.Println("warning: could not load profile:", err)
	}
	fmt.Printf("signed in as %s (landing on %s)\n", a.sess.Username(), route)
}

func (a *app) listAll(ctx context.Context) {
	posts, err := a.posts.All(ctx)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	printPosts(posts)
}

func (a *app) listMine(ctx context.Context) {
	posts, err := a.posts.Mine(ctx)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	printPosts(posts)
}

func (a *app) listFeed(ctx context.Context) {
	feed := view.NewFollowingFeed(a.posts, a.signals)
	if err := feed.Mount(ctx); err != nil {
		fmt.Println("error:", err)
		return
	}
	defer feed.Unmount()

	posts := feed.Posts()
	if len(posts) == 0 {
		fmt.Println("nothing here yet — follow some authors first")
		return
	}
	printPosts(posts)
}

func (a *app) read(ctx context.Context, id string) {
	if id == "" {
		fmt.Println("usage: read <id>")
		return
	}

	detail := view.NewPostDetail(a.posts, a.interactions, a.comments, a.sess, a.logger)
	if err := detail.Mount(ctx, id); err != nil {
		fmt.Println("error:", err)
		return
	}
	defer detail.Unmount()

	post := detail.Post()
	fmt.Printf("\n%s — by %s [%s]\n", post.Title, post.Username, post.Category)
	fmt.Println(post.Content)
	fmt.Printf("likes %d · views %d · liked by you: %v · following author: %v\n",
		len(post.Likes), len(post.Views), detail.HasLiked(), detail.IsFollowing())
	for _, c := range detail.Comments() {
		fmt.Printf("  %s: %s\n", c.Author, c.Text)
	}

	switch a.ask("action (like/follow/comment/enter to skip)") {
	case "like":
		detail.ToggleLike(ctx)
		fmt.Println("liked:", detail.HasLiked())
	case "follow":
		if err := detail.ToggleFollow(ctx); err != nil {
			fmt.Println("error:", err)
		}
	case "comment":
		if err := detail.AddComment(ctx, a.ask("text")); err != nil {
			fmt.Println("error:", err)
		}
	}
}

// browse drives the collection view model: category sidebar, search and
// page-window pagination, with stale-signal refetch between renders.
func (a *app) browse(ctx context.Context) {
	c := view.NewCollection(a.posts, a.signals)
	if err := c.Mount(ctx); err != nil {
		fmt.Println("error:", err)
		return
	}
	defer c.Unmount()

	for {
		if err := c.RefreshIfStale(ctx); err != nil {
			fmt.Println("error:", err)
			return
		}
		for _, cat := range c.Categories() {
			fmt.Printf("[%s %d] ", cat.Category, cat.Count)
		}
		fmt.Printf("\npage %d/%d\n", c.Page()+1, c.TotalPages())
		printPosts(c.Visible())

		switch cmd, arg, _ := strings.Cut(a.ask("n/p/cat <name>/find <text>/read <id>/back"), " "); cmd {
		case "n":
			c.NextPage()
		case "p":
			c.PrevPage()
		case "cat":
			c.SetCategory(arg)
		case "find":
			c.SetSearch(arg)
		case "read":
			a.read(ctx, arg)
		case "back", "":
			return
		}
	}
}

func (a *app) dashboard(ctx context.Context) {
	d := view.NewDashboard(a.posts, a.signals)
	if err := d.Mount(ctx); err != nil {
		fmt.Println("error:", err)
		return
	}
	defer d.Unmount()

	stats := d.Stats()
	fmt.Printf("posts %d · likes %d · views %d · comments %d\n",
		stats.Posts, stats.Likes, stats.Views, stats.Comments)
	printPosts(d.Posts())
}

func (a *app) admin(ctx context.Context) {
	adm := view.NewAdmin(a.client)
	if err := adm.Mount(ctx); err != nil {
		fmt.Println("error:", err)
		return
	}
	defer adm.Unmount()

	stats := adm.Stats()
	fmt.Printf("users %d · posts %d · comments %d\n", stats.Users, stats.Posts, stats.Comments)
	for _, u := range adm.Users() {
		fmt.Printf("  %-22s %-16s %s\n", u.ID, u.Username, u.Role)
	}

	switch cmd, arg, _ := strings.Cut(a.ask("rmuser <id>/rmpost <id>/enter to skip"), " "); cmd {
	case "rmuser":
		if err := adm.DeleteUser(ctx, arg, a.confirm); err != nil {
			fmt.Println("error:", err)
		}
	case "rmpost":
		if err := adm.DeletePost(ctx, arg, a.confirm); err != nil {
			fmt.Println("error:", err)
		}
	}
}

func (a *app) write(ctx context.Context) {
	input := model.PostInput{
		Title:    a.ask("title"),
		Content:  a.ask("content"),
		Category: a.ask("category " + fmt.Sprint(model.KnownCategories[1:])),
	}
	post, err := a.posts.Create(ctx, input)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("published", post.ID)
}

func (a *app) delete(ctx context.Context, id string) {
	if id == "" {
		fmt.Println("usage: delete <id>")
		return
	}
	deleted, err := a.posts.Delete(ctx, id, a.confirm)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if deleted {
		fmt.Println("deleted")
	}
}

func printPosts(posts []model.Post) {
	for _, p := range posts {
		fmt.Printf("%-22s %-30s %-11s likes:%-3d views:%-3d by %s\n",
			p.ID, truncate(p.Title, 30), p.Category, len(p.Likes), len(p.Views), p.Username)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
