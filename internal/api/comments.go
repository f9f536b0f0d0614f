package api

import (
	"context"
	"net/http"
	"net/url"
)

type commentBody struct {
	Content string `json:"content"`
}

// ListComments returns the comments on a post.
func (c *Client) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	var comments []Comment
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/comments/post/"+url.PathEscape(postID), false, nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CreateComment adds a comment to a post.
func (c *Client) CreateComment(ctx context.Context, postID, content string) (Comment, error) {
	var comment Comment
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/comments/post/"+url.PathEscape(postID), true,
		commentBody{Content: content}, &comment)
	if err != nil {
		return Comment{}, err
	}
	return comment, nil
}

// UpdateComment replaces a comment's content.
func (c *Client) UpdateComment(ctx context.Context, id, content string) (Comment, error) {
	var comment Comment
	err := c.doJSON(ctx, http.MethodPut, "/api/v1/comments/"+url.PathEscape(id), true,
		commentBody{Content: content}, &comment)
	if err != nil {
		return Comment{}, err
	}
	return comment, nil
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/v1/comments/"+url.PathEscape(id), true, nil, nil)
}
