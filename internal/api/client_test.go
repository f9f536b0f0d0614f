package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticHeaders http.Header

func (h staticHeaders) AuthHeaders() http.Header { return http.Header(h) }

func bearerHeaders(token string) staticHeaders {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Authorization", "Bearer "+token)
	return staticHeaders(h)
}

// newAPIServer runs a fake inkwell API over one post and its comments.
// Mutations require the bearer token "tok-1".
func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	author := Author{ID: "u-1", FullName: "Alice Rivera"}
	posts := map[string]Post{
		"p1": {ID: "p1", Title: "Hello", Content: "First post", IsFeatured: true, Author: author, CreatedAt: now},
	}

	requireAuth := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") != "Bearer tok-1" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": "authentication required"})
			}
			return next(c)
		}
	}

	e := echo.New()
	e.GET("/api/v1/posts", func(c echo.Context) error {
		list := make([]Post, 0, len(posts))
		for _, p := range posts {
			list = append(list, p)
		}
		return c.JSON(http.StatusOK, list)
	})
	e.GET("/api/v1/posts/:id", func(c echo.Context) error {
		p, ok := posts[c.Param("id")]
		if !ok {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "post not found"})
		}
		return c.JSON(http.StatusOK, p)
	})
	e.POST("/api/v1/posts", requireAuth(func(c echo.Context) error {
		title := c.FormValue("title")
		if title == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "title is required"})
		}
		p := Post{
			ID:         "p2",
			Title:      title,
			Content:    c.FormValue("content"),
			IsFeatured: c.FormValue("isFeatured") == "true",
			Author:     author,
			CreatedAt:  now.Add(time.Hour),
		}
		if file, err := c.FormFile("thumbnailImage"); err == nil {
			p.ThumbnailURL = "https://cdn.example.com/" + file.Filename
		}
		posts[p.ID] = p
		return c.JSON(http.StatusCreated, p)
	}))
	e.PUT("/api/v1/posts/:id", requireAuth(func(c echo.Context) error {
		p, ok := posts[c.Param("id")]
		if !ok {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "post not found"})
		}
		p.Title = c.FormValue("title")
		p.Content = c.FormValue("content")
		p.IsFeatured = c.FormValue("isFeatured") == "true"
		posts[p.ID] = p
		return c.JSON(http.StatusOK, p)
	}))
	e.DELETE("/api/v1/posts/:id", requireAuth(func(c echo.Context) error {
		if _, ok := posts[c.Param("id")]; !ok {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "post not found"})
		}
		delete(posts, c.Param("id"))
		return c.NoContent(http.StatusNoContent)
	}))

	comments := map[string]Comment{
		"c1": {ID: "c1", PostID: "p1", Content: "Nice one", Author: author, CreatedAt: now},
	}
	e.GET("/api/v1/comments/post/:postId", func(c echo.Context) error {
		list := []Comment{}
		for _, cm := range comments {
			if cm.PostID == c.Param("postId") {
				list = append(list, cm)
			}
		}
		return c.JSON(http.StatusOK, list)
	})
	e.POST("/api/v1/comments/post/:postId", requireAuth(func(c echo.Context) error {
		var body struct {
			Content string `json:"content"`
		}
		if err := c.Bind(&body); err != nil || body.Content == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "content is required"})
		}
		cm := Comment{ID: "c2", PostID: c.Param("postId"), Content: body.Content, Author: author, CreatedAt: now}
		comments[cm.ID] = cm
		return c.JSON(http.StatusCreated, cm)
	}))
	e.PUT("/api/v1/comments/:id", requireAuth(func(c echo.Context) error {
		cm, ok := comments[c.Param("id")]
		if !ok {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "comment not found"})
		}
		var body struct {
			Content string `json:"content"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "bad request"})
		}
		cm.Content = body.Content
		comments[cm.ID] = cm
		return c.JSON(http.StatusOK, cm)
	}))
	e.DELETE("/api/v1/comments/:id", requireAuth(func(c echo.Context) error {
		delete(comments, c.Param("id"))
		return c.NoContent(http.StatusNoContent)
	}))

	e.PUT("/api/v1/users/profile", requireAuth(func(c echo.Context) error {
		u := User{ID: "u-1", FullName: c.FormValue("fullName"), Email: "alice@example.com", Role: "admin"}
		if file, err := c.FormFile("profileImage"); err == nil {
			src, err := file.Open()
			if err != nil {
				return c.NoContent(http.StatusInternalServerError)
			}
			defer src.Close()
			if _, err := io.ReadAll(src); err != nil {
				return c.NoContent(http.StatusInternalServerError)
			}
			u.ProfileImageURL = "https://cdn.example.com/" + file.Filename
		}
		return c.JSON(http.StatusOK, u)
	}))

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func TestListAndGetPosts(t *testing.T) {
	srv := newAPIServer(t)
	client := NewClient(srv.URL, nil, nil, nil)

	posts, err := client.ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Hello", posts[0].Title)
	assert.Equal(t, "Alice Rivera", posts[0].Author.FullName)

	post, err := client.GetPost(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, post.IsFeatured)

	_, err = client.GetPost(context.Background(), "nope")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "post not found", apiErr.Message)
}

func TestCreateUpdateDeletePost(t *testing.T) {
	srv := newAPIServer(t)
	client := NewClient(srv.URL, nil, bearerHeaders("tok-1"), nil)

	created, err := client.CreatePost(context.Background(), PostInput{
		Title:         "Second",
		Content:       "Body",
		IsFeatured:    false,
		Thumbnail:     []byte("fake-png-bytes"),
		ThumbnailName: "cover.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "Second", created.Title)
	assert.Equal(t, "https://cdn.example.com/cover.png", created.ThumbnailURL)

	updated, err := client.UpdatePost(context.Background(), created.ID, PostInput{
		Title:      "Second, revised",
		Content:    "Body v2",
		IsFeatured: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Second, revised", updated.Title)
	assert.True(t, updated.IsFeatured)

	require.NoError(t, client.DeletePost(context.Background(), created.ID))

	_, err = client.GetPost(context.Background(), created.ID)
	require.Error(t, err)
}

func TestMutationsRequireAuth(t *testing.T) {
	srv := newAPIServer(t)
	client := NewClient(srv.URL, nil, bearerHeaders(""), nil)

	err := client.DeletePost(context.Background(), "p1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "authentication required", apiErr.Message)

	_, err = client.CreateComment(context.Background(), "p1", "hi")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestCommentLifecycle(t *testing.T) {
	srv := newAPIServer(t)
	client := NewClient(srv.URL, nil, bearerHeaders("tok-1"), nil)

	comments, err := client.ListComments(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, comments, 1)

	created, err := client.CreateComment(context.Background(), "p1", "Great read")
	require.NoError(t, err)
	assert.Equal(t, "Great read", created.Content)
	assert.Equal(t, "p1", created.PostID)

	updated, err := client.UpdateComment(context.Background(), created.ID, "Great read, edited")
	require.NoError(t, err)
	assert.Equal(t, "Great read, edited", updated.Content)

	require.NoError(t, client.DeleteComment(context.Background(), created.ID))

	comments, err = client.ListComments(context.Background(), "p1")
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestUpdateProfile(t *testing.T) {
	srv := newAPIServer(t)
	client := NewClient(srv.URL, nil, bearerHeaders("tok-1"), nil)

	user, err := client.UpdateProfile(context.Background(), ProfileInput{
		FullName:  "Alice R.",
		Image:     []byte("fake-jpg-bytes"),
		ImageName: "me.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice R.", user.FullName)
	assert.Equal(t, "https://cdn.example.com/me.jpg", user.ProfileImageURL)
}

func TestPostHelpers(t *testing.T) {
	now := time.Now()
	posts := []Post{
		{ID: "a", Title: "Go tips", Content: "channels and contexts", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "b", Title: "Travel notes", Content: "trains", IsFeatured: true, CreatedAt: now.Add(-time.Hour)},
		{ID: "c", Title: "More Go", Content: "generics", CreatedAt: now},
	}

	featured, ok := FeaturedPost(posts)
	assert.True(t, ok)
	assert.Equal(t, "b", featured.ID)

	_, ok = FeaturedPost(nil)
	assert.False(t, ok)

	recent := RecentPosts(posts, 2)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].ID)
	assert.Equal(t, "b", recent[1].ID)
	assert.Equal(t, "a", posts[0].ID, "input order untouched")

	matched := SearchPosts(posts, "go")
	require.Len(t, matched, 2)
	assert.Equal(t, "a", matched[0].ID)
	assert.Equal(t, "c", matched[1].ID)

	assert.Len(t, SearchPosts(posts, ""), 3)
	assert.Empty(t, SearchPosts(posts, "kubernetes"))
}
