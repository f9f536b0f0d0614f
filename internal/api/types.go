package api

import "time"

// Author is the nested author shape returned inside posts and comments.
type Author struct {
	ID              string `json:"id"`
	FullName        string `json:"fullName"`
	ProfileImageURL string `json:"profileImageUrl"`
}

// Post is a blog post as returned by the posts endpoints.
type Post struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	IsFeatured   bool      `json:"isFeatured"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Author       Author    `json:"author"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Comment is a reader comment on a post.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	Content   string    `json:"content"`
	Author    Author    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// User is the profile shape returned by the users endpoints.
type User struct {
	ID              string `json:"id"`
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	ProfileImageURL string `json:"profileImageUrl"`
	Role            string `json:"role"`
}

// PostInput carries the editable fields of a post. Thumbnail is optional;
// when set it is uploaded alongside the text fields.
type PostInput struct {
	Title      string
	Content    string
	IsFeatured bool
	// Thumbnail image bytes and the filename to upload them under.
	Thumbnail     []byte
	ThumbnailName string
}

// ProfileInput carries the editable profile fields. Image is optional.
type ProfileInput struct {
	FullName  string
	Image     []byte
	ImageName string
}
