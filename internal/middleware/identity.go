package middleware

// identity.go holds the context keys shared by the middleware in this
// package and the handlers that read what the session guard stored.

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/venue-ops/internal/session"
)

const sessionKey = "session"

// CurrentSession returns the session attached by RequireSession, or nil on
// routes that are not guarded.
func CurrentSession(c echo.Context) *session.Session {
    s, _ := c.Get(sessionKey).(*session.Session)
    return s
}

// userID identifies the caller for rate limiting.  It returns "anon" before
// a session is attached.
func userID(c echo.Context) string {
    if s := CurrentSession(c); s != nil && s.UserID != "" {
        return s.UserID
    }
    return "anon"
}
