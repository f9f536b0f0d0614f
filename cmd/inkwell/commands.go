package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/calebmoss/inkwell/internal/api"
	"github.com/calebmoss/inkwell/internal/fetch"
	"github.com/calebmoss/inkwell/internal/guard"
	"github.com/calebmoss/inkwell/internal/session"
)

// requireAuth refuses mutating commands up front instead of letting the
// server bounce them with a 401.
func (a *app) requireAuth() error {
	switch guard.Evaluate(a.sessions.Current()) {
	case guard.DecisionAllow:
		return nil
	case guard.DecisionWait:
		return errors.New("session is still loading, try again")
	default:
		return errors.New("not signed in; run `inkwell login` first")
	}
}

func (a *app) runLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	if *email == "" || *password == "" {
		return errors.New("login requires -email and -password")
	}

	sess, err := a.sessions.Login(ctx, session.Credentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}

	fmt.Printf("signed in as %s <%s>\n", sess.Profile.FullName, sess.Profile.Email)
	return nil
}

func (a *app) runRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	imageURL := fs.String("image-url", "", "profile image URL (optional)")
	fs.Parse(args)

	if *name == "" || *email == "" || *password == "" {
		return errors.New("register requires -name, -email and -password")
	}

	sess, err := a.sessions.Register(ctx, session.Registration{
		FullName:        *name,
		Email:           *email,
		Password:        *password,
		ProfileImageURL: *imageURL,
	})
	if err != nil {
		return err
	}

	fmt.Printf("welcome, %s: you are signed in\n", sess.Profile.FullName)
	return nil
}

func (a *app) runLogout(args []string) error {
	if len(args) != 0 {
		return errors.New("logout takes no arguments")
	}
	a.sessions.Logout()
	fmt.Println("signed out")
	return nil
}

func (a *app) runWhoami(args []string) error {
	if len(args) != 0 {
		return errors.New("whoami takes no arguments")
	}

	sess := a.sessions.Current()
	switch sess.Status {
	case session.StatusAuthenticated:
		fmt.Printf("%s <%s>\n", sess.Profile.FullName, sess.Profile.Email)
		if sess.IsAdmin() {
			fmt.Println("role: admin")
		} else if sess.Profile.Role != "" {
			fmt.Printf("role: %s\n", sess.Profile.Role)
		}
	case session.StatusLoading:
		fmt.Println("session loading")
	default:
		fmt.Println("not signed in")
	}
	return nil
}

func (a *app) runPosts(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("posts requires a subcommand: list | show | create | update | delete")
	}

	switch args[0] {
	case "list":
		posts, err := a.client.ListPosts(ctx)
		if err != nil {
			return err
		}
		printPostList(posts)
		return nil

	case "show":
		if len(args) < 2 {
			return errors.New("posts show requires a post id")
		}
		return a.showPost(ctx, args[1])

	case "create":
		input, err := parsePostFlags("posts create", args[1:])
		if err != nil {
			return err
		}
		if err := a.requireAuth(); err != nil {
			return err
		}
		post, err := a.client.CreatePost(ctx, input)
		if err != nil {
			return err
		}
		fmt.Printf("published %q (%s)\n", post.Title, post.ID)
		return nil

	case "update":
		if len(args) < 2 {
			return errors.New("posts update requires a post id")
		}
		input, err := parsePostFlags("posts update", args[2:])
		if err != nil {
			return err
		}
		if err := a.requireAuth(); err != nil {
			return err
		}
		post, err := a.client.UpdatePost(ctx, args[1], input)
		if err != nil {
			return err
		}
		fmt.Printf("updated %q (%s)\n", post.Title, post.ID)
		return nil

	case "delete":
		if len(args) < 2 {
			return errors.New("posts delete requires a post id")
		}
		if err := a.requireAuth(); err != nil {
			return err
		}
		if err := a.client.DeletePost(ctx, args[1]); err != nil {
			return err
		}
		fmt.Println("deleted", args[1])
		return nil

	default:
		return fmt.Errorf("unknown posts subcommand %q", args[0])
	}
}

// showPost fetches the post and its comments concurrently.
func (a *app) showPost(ctx context.Context, id string) error {
	var (
		post     api.Post
		comments []api.Comment
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		post, err = a.client.GetPost(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = a.client.ListComments(ctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("%s\nby %s on %s\n\n%s\n", post.Title, post.Author.FullName,
		post.CreatedAt.Format("Jan 2, 2006"), post.Content)
	if len(comments) > 0 {
		fmt.Printf("\n%d comment(s):\n", len(comments))
		for _, cm := range comments {
			fmt.Printf("  [%s] %s: %s\n", cm.ID, cm.Author.FullName, cm.Content)
		}
	}
	return nil
}

func parsePostFlags(name string, args []string) (api.PostInput, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	title := fs.String("title", "", "post title")
	content := fs.String("content", "", "post body")
	featured := fs.Bool("featured", false, "feature this post")
	thumbnail := fs.String("thumbnail", "", "thumbnail image file (optional)")
	fs.Parse(args)

	if *title == "" || *content == "" {
		return api.PostInput{}, errors.New(name + " requires -title and -content")
	}

	input := api.PostInput{Title: *title, Content: *content, IsFeatured: *featured}
	if *thumbnail != "" {
		data, err := os.ReadFile(*thumbnail)
		if err != nil {
			return api.PostInput{}, fmt.Errorf("read thumbnail: %w", err)
		}
		input.Thumbnail = data
		input.ThumbnailName = filepath.Base(*thumbnail)
	}
	return input, nil
}

func (a *app) runComments(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("comments requires a subcommand: list | add | edit | delete")
	}

	switch args[0] {
	case "list":
		if len(args) < 2 {
			return errors.New("comments list requires a post id")
		}
		comments, err := a.client.ListComments(ctx, args[1])
		if err != nil {
			return err
		}
		if len(comments) == 0 {
			fmt.Println("no comments")
			return nil
		}
		for _, cm := range comments {
			fmt.Printf("[%s] %s: %s\n", cm.ID, cm.Author.FullName, cm.Content)
		}
		return nil

	case "add":
		if len(args) < 2 {
			return errors.New("comments add requires a post id")
		}
		content, err := commentContent("comments add", args[2:])
		if err != nil {
			return err
		}
		if err := a.requireAuth(); err != nil {
			return err
		}
		cm, err := a.client.CreateComment(ctx, args[1], content)
		if err != nil {
			return err
		}
		fmt.Println("added comment", cm.ID)
		return nil

	case "edit":
		if len(args) < 2 {
			return errors.New("comments edit requires a comment id")
		}
		content, err := commentContent("comments edit", args[2:])
		if err != nil {
			return err
		}
		if err := a.requireAuth(); err != nil {
			return err
		}
		cm, err := a.client.UpdateComment(ctx, args[1], content)
		if err != nil {
			return err
		}
		fmt.Println("updated comment", cm.ID)
		return nil

	case "delete":
		if len(args) < 2 {
			return errors.New("comments delete requires a comment id")
		}
		if err := a.requireAuth(); err != nil {
			return err
		}
		if err := a.client.DeleteComment(ctx, args[1]); err != nil {
			return err
		}
		fmt.Println("deleted comment", args[1])
		return nil

	default:
		return fmt.Errorf("unknown comments subcommand %q", args[0])
	}
}

func commentContent(name string, args []string) (string, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	content := fs.String("content", "", "comment text")
	fs.Parse(args)
	if *content == "" {
		return "", errors.New(name + " requires -content")
	}
	return *content, nil
}

func (a *app) runProfile(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] != "update" {
		return errors.New("profile requires the update subcommand")
	}

	fs := flag.NewFlagSet("profile update", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	image := fs.String("image", "", "profile image file (optional)")
	fs.Parse(args[1:])

	if *name == "" {
		return errors.New("profile update requires -name")
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	input := api.ProfileInput{FullName: *name}
	if *image != "" {
		data, err := os.ReadFile(*image)
		if err != nil {
			return fmt.Errorf("read profile image: %w", err)
		}
		input.Image = data
		input.ImageName = filepath.Base(*image)
	}

	user, err := a.client.UpdateProfile(ctx, input)
	if err != nil {
		return err
	}
	if err := a.sessions.RefreshProfile(user.FullName, user.ProfileImageURL); err != nil {
		return fmt.Errorf("profile updated but storing it locally failed: %w", err)
	}

	fmt.Printf("profile updated: %s\n", user.FullName)
	return nil
}

// postsURL is the endpoint the resource-backed commands poll.
func (a *app) postsURL() string {
	return a.cfg.APIBaseURL + "/api/v1/posts"
}

func (a *app) runFeatured(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.New("featured takes no arguments")
	}

	resource := fetch.NewResource[[]api.Post](a.http, nil)
	posts, err := resource.Fetch(ctx, a.postsURL())
	if err != nil {
		return err
	}

	featured, ok := api.FeaturedPost(posts)
	if !ok {
		fmt.Println("no featured post")
		return nil
	}
	printPostList([]api.Post{featured})
	return nil
}

func (a *app) runRecent(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("recent", flag.ExitOnError)
	n := fs.Int("n", 3, "how many posts to show")
	fs.Parse(args)

	resource := fetch.NewResource[[]api.Post](a.http, nil)
	posts, err := resource.Fetch(ctx, a.postsURL())
	if err != nil {
		return err
	}

	printPostList(api.RecentPosts(posts, *n))
	return nil
}

func (a *app) runSearch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("search requires a query")
	}

	resource := fetch.NewResource[[]api.Post](a.http, nil)
	posts, err := resource.Fetch(ctx, a.postsURL())
	if err != nil {
		return err
	}

	matched := api.SearchPosts(posts, args[0])
	if len(matched) == 0 {
		fmt.Println("no posts matched")
		return nil
	}
	printPostList(matched)
	return nil
}

func printPostList(posts []api.Post) {
	if len(posts) == 0 {
		fmt.Println("no posts")
		return
	}
	for _, p := range posts {
		marker := " "
		if p.IsFeatured {
			marker = "*"
		}
		fmt.Printf("%s [%s] %s by %s (%s)\n", marker, p.ID, p.Title,
			p.Author.FullName, p.CreatedAt.Format("2006-01-02"))
	}
}
