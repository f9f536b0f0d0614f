// Command inkwell is a terminal client for an inkwell blogging deployment:
// sign in, browse posts, publish, comment, manage your profile.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/calebmoss/inkwell/internal/api"
	"github.com/calebmoss/inkwell/internal/config"
	"github.com/calebmoss/inkwell/internal/session"
	"github.com/calebmoss/inkwell/internal/storage"
)

func main() {
	// slog is configured in slog.go via init()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	persist, err := storage.NewFileStore(cfg.StatePath())
	if err != nil {
		slog.Error("failed to open state file", "error", err, "path", cfg.StatePath())
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	sessions := session.NewStore(cfg.APIBaseURL, httpClient, persist, slog.Default())
	client := api.NewClient(cfg.APIBaseURL, httpClient, sessions, slog.Default())

	ctx := context.Background()
	sessions.Initialize(ctx)

	app := &app{cfg: cfg, http: httpClient, sessions: sessions, client: client}

	args := os.Args[1:]
	if len(args) == 0 {
		app.usage()
		os.Exit(2)
	}

	if err := app.run(ctx, args[0], args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "inkwell:", err)
		os.Exit(1)
	}
}

type app struct {
	cfg      *config.Config
	http     *http.Client
	sessions *session.Store
	client   *api.Client
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.runLogin(ctx, args)
	case "register":
		return a.runRegister(ctx, args)
	case "logout":
		return a.runLogout(args)
	case "whoami":
		return a.runWhoami(args)
	case "posts":
		return a.runPosts(ctx, args)
	case "comments":
		return a.runComments(ctx, args)
	case "profile":
		return a.runProfile(ctx, args)
	case "featured":
		return a.runFeatured(ctx, args)
	case "recent":
		return a.runRecent(ctx, args)
	case "search":
		return a.runSearch(ctx, args)
	case "help", "-h", "--help":
		a.usage()
		return nil
	default:
		a.usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) usage() {
	fmt.Fprint(os.Stderr, `usage: inkwell <command> [arguments]

Commands:
  login       sign in with email and password
  register    create an account and sign in
  logout      sign out and forget the stored session
  whoami      show the current session
  posts       list | show | create | update | delete
  comments    list | add | edit | delete
  profile     update
  featured    show the featured post
  recent      show the newest posts
  search      find posts by title or content

Environment:
  INKWELL_API_URL    API base URL (default http://localhost:8080)
  INKWELL_STATE_DIR  where session state is kept
  INKWELL_TIMEOUT    per-request timeout (default 30s)
  LOG_LEVEL          debug enables verbose colored logging
`)
}
