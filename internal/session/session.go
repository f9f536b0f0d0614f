// Package session owns the signed-in user state for an inkwell client: who
// is authenticated, the bearer token proving it, and the persisted copy that
// survives restarts.
package session

import "strings"

// Status is the authentication phase of a session. Loading is a distinct
// third state: consumers must treat it as "unknown", never as anonymous.
type Status int

const (
	// StatusLoading means session restore or a login/register call is in
	// flight and no navigation or privilege decision should be made yet.
	StatusLoading Status = iota
	// StatusAnonymous means no user is signed in.
	StatusAnonymous
	// StatusAuthenticated means a user and token are held.
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Profile is the display identity of a signed-in user, as returned by the
// auth endpoints and as persisted between runs.
type Profile struct {
	ID              string `json:"id"`
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	ProfileImageURL string `json:"profileImageUrl"`
	Role            string `json:"role"`
}

// Session is a snapshot of the client's authentication state.
type Session struct {
	Status  Status
	Profile Profile
	Token   string
}

// Anonymous is the signed-out session value.
func Anonymous() Session {
	return Session{Status: StatusAnonymous}
}

// IsAuthenticated reports whether the session holds a usable identity: an
// authenticated status with both a token and a user ID present.
func (s Session) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated && s.Token != "" && s.Profile.ID != ""
}

// IsAdmin reports whether the signed-in user carries the admin role. Always
// false for loading or anonymous sessions.
func (s Session) IsAdmin() bool {
	return s.IsAuthenticated() && strings.EqualFold(s.Profile.Role, "admin")
}

// Credentials are the login inputs.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration are the sign-up inputs. ProfileImageURL is optional.
type Registration struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

// AuthError is a failed login or registration: the server said no, and this
// carries its message.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return e.Message
}
