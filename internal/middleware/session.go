package middleware

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/venue-ops/internal/apperror"
    "github.com/iliyamo/venue-ops/internal/session"
)

// RequireSession rejects requests without a logged-in session before any
// parsing or store access happens, and attaches the session otherwise.  A
// session already attached by LoadSession is reused.
func RequireSession(svc session.Service) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if CurrentSession(c) != nil {
                return next(c)
            }
            s, ok := svc.Load(c.Request())
            if !ok {
                return apperror.Unauthenticated("")
            }
            c.Set(sessionKey, s)
            return next(c)
        }
    }
}

// LoadSession attaches the session when one is present but never rejects.
// It runs ahead of the rate limiter so buckets can be keyed per user.
func LoadSession(svc session.Service) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if s, ok := svc.Load(c.Request()); ok {
                c.Set(sessionKey, s)
            }
            return next(c)
        }
    }
}
