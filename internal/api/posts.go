package api

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// ListPosts returns all posts.
func (c *Client) ListPosts(ctx context.Context) ([]Post, error) {
	var posts []Post
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/posts", false, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost returns one post, including its nested author.
func (c *Client) GetPost(ctx context.Context, id string) (Post, error) {
	var post Post
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/posts/"+url.PathEscape(id), false, nil, &post); err != nil {
		return Post{}, err
	}
	return post, nil
}

// CreatePost publishes a new post. The thumbnail, when present, is uploaded
// in the same multipart form as the text fields.
func (c *Client) CreatePost(ctx context.Context, input PostInput) (Post, error) {
	var post Post
	err := c.doMultipart(ctx, http.MethodPost, "/api/v1/posts",
		postFields(input), "thumbnailImage", input.ThumbnailName, input.Thumbnail, &post)
	if err != nil {
		return Post{}, err
	}
	return post, nil
}

// UpdatePost replaces the editable fields of an existing post.
func (c *Client) UpdatePost(ctx context.Context, id string, input PostInput) (Post, error) {
	var post Post
	err := c.doMultipart(ctx, http.MethodPut, "/api/v1/posts/"+url.PathEscape(id),
		postFields(input), "thumbnailImage", input.ThumbnailName, input.Thumbnail, &post)
	if err != nil {
		return Post{}, err
	}
	return post, nil
}

// DeletePost removes a post.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/v1/posts/"+url.PathEscape(id), true, nil, nil)
}

func postFields(input PostInput) map[string]string {
	return map[string]string{
		"title":      input.Title,
		"content":    input.Content,
		"isFeatured": strconv.FormatBool(input.IsFeatured),
	}
}

// FeaturedPost returns the first post flagged as featured, if any.
func FeaturedPost(posts []Post) (Post, bool) {
	for _, p := range posts {
		if p.IsFeatured {
			return p, true
		}
	}
	return Post{}, false
}

// RecentPosts returns up to n posts, newest first. The input is not
// modified.
func RecentPosts(posts []Post, n int) []Post {
	sorted := make([]Post, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// SearchPosts filters posts whose title or content contains query,
// case-insensitively. An empty query matches everything.
func SearchPosts(posts []Post, query string) []Post {
	if query == "" {
		return posts
	}
	q := strings.ToLower(query)
	var matched []Post
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Content), q) {
			matched = append(matched, p)
		}
	}
	return matched
}
