package handler

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-ops/internal/apperror"
	"github.com/iliyamo/venue-ops/internal/middleware"
	"github.com/iliyamo/venue-ops/internal/model"
	"github.com/iliyamo/venue-ops/internal/repository"
	"github.com/iliyamo/venue-ops/internal/session"
	"github.com/iliyamo/venue-ops/internal/validation"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Users    *repository.UserRepo
	Sessions session.Service
	Log      *zap.Logger
}

func NewAuthHandler(u *repository.UserRepo, s session.Service, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{Users: u, Sessions: s, Log: log}
}

type authResp struct {
	User      model.UserView `json:"user"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

// Login verifies the credentials and issues the session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req validation.Login
	if err := bindBody(c, &req); err != nil {
		return err
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	u, err := h.Users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Unauthenticated("invalid credentials")
		}
		return err
	}

	s := &session.Session{UserID: u.ID, Name: u.Name, Role: u.Role, IsLoggedIn: true}
	if err := h.Sessions.Persist(c.Response(), c.Request(), s); err != nil {
		return err
	}
	h.Log.Info("staff login", zap.String("user_id", u.ID))
	return ok(c, authResp{User: u.View(), ExpiresAt: s.ExpiresAt})
}

// Logout destroys the current session.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.Sessions.Destroy(c.Response(), c.Request()); err != nil {
		// The cookie is already cleared; only the early revocation failed.
		h.Log.Warn("session revocation failed", zap.Error(err))
	}
	return ok(c, echo.Map{"loggedOut": true})
}

// Me returns the session attached by the guard.
func (h *AuthHandler) Me(c echo.Context) error {
	s := middleware.CurrentSession(c)
	if s == nil {
		return apperror.Unauthenticated("")
	}
	return ok(c, s)
}
