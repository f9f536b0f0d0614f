// Package guard gates access to protected routes based on the session. The
// rule that makes it worth a package: while the session is still loading,
// no navigation decision is made at all, so a slow restore never causes a
// flash-redirect to sign-in.
package guard

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/calebmoss/inkwell/internal/session"
)

// Decision is the outcome of evaluating a session against a protected
// route.
type Decision int

const (
	// DecisionWait means the session is still loading: show something
	// neutral and decide nothing.
	DecisionWait Decision = iota
	// DecisionRedirect means the visitor is anonymous and should be sent
	// to sign-in, carrying where they were headed.
	DecisionRedirect
	// DecisionAllow means the guarded content may render.
	DecisionAllow
)

func (d Decision) String() string {
	switch d {
	case DecisionWait:
		return "wait"
	case DecisionRedirect:
		return "redirect"
	case DecisionAllow:
		return "allow"
	default:
		return "unknown"
	}
}

// Evaluate is the pure guarding rule.
func Evaluate(s session.Session) Decision {
	switch {
	case s.Status == session.StatusLoading:
		return DecisionWait
	case !s.IsAuthenticated():
		return DecisionRedirect
	default:
		return DecisionAllow
	}
}

// SessionSource yields the current session snapshot. *session.Store
// satisfies it.
type SessionSource interface {
	Current() session.Session
}

// Middleware guards an echo route subtree. Loading sessions get a 503 with
// Retry-After so the client retries instead of being bounced; anonymous
// visitors are redirected to signinPath with the originally requested
// location in a "from" query parameter; authenticated requests pass
// through.
func Middleware(source SessionSource, signinPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch Evaluate(source.Current()) {
			case DecisionWait:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"message": "session loading"})
			case DecisionRedirect:
				return c.Redirect(http.StatusFound, signinPath+"?from="+url.QueryEscape(c.Request().RequestURI))
			default:
				return next(c)
			}
		}
	}
}

// AdminMiddleware is Middleware plus an admin-role requirement: signed-in
// non-admins get 403 rather than a redirect.
func AdminMiddleware(source SessionSource, signinPath string) echo.MiddlewareFunc {
	base := Middleware(source, signinPath)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return base(func(c echo.Context) error {
			if !source.Current().IsAdmin() {
				return c.JSON(http.StatusForbidden, map[string]string{"message": "admin access required"})
			}
			return next(c)
		})
	}
}
