package api

import (
	"context"
	"net/http"
)

// UpdateProfile updates the signed-in user's display name and, optionally,
// their profile image. The server returns the updated profile; callers
// holding a session should refresh its stored copy with the result.
func (c *Client) UpdateProfile(ctx context.Context, input ProfileInput) (User, error) {
	var user User
	fields := map[string]string{"fullName": input.FullName}
	err := c.doMultipart(ctx, http.MethodPut, "/api/v1/users/profile",
		fields, "profileImage", input.ImageName, input.Image, &user)
	if err != nil {
		return User{}, err
	}
	return user, nil
}
