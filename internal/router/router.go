package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-ops/internal/config"
	"github.com/iliyamo/venue-ops/internal/handler"
	"github.com/iliyamo/venue-ops/internal/middleware"
	"github.com/iliyamo/venue-ops/internal/queue"
	"github.com/iliyamo/venue-ops/internal/repository"
	"github.com/iliyamo/venue-ops/internal/session"
)

// Deps is everything the HTTP surface needs.  Redis and Events may be nil.
type Deps struct {
	DB        *sql.DB
	Sessions  session.Service
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Events    queue.Publisher
	Log       *zap.Logger
}

// New builds the echo instance with the middleware chain, the envelope
// error handler and every route.
func New(d Deps) *echo.Echo {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(d.Log)

	e.Use(middleware.RequestID())
	e.Use(middleware.AccessLog(d.Log))
	e.Use(echomw.Recover())
	e.Use(middleware.LoadSession(d.Sessions))
	e.Use(middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log))

	RegisterRoutes(e, d.DB)
	RegisterAuth(e, handler.NewAuthHandler(repository.NewUserRepo(d.DB), d.Sessions, d.Log), d.Sessions)

	api := e.Group("/api", middleware.RequireSession(d.Sessions))
	res := handler.NewResourceHandler(d.DB, d.Events, d.Log)
	RegisterVenue(api, res)
	RegisterOperations(api, res)
	return e
}

// RegisterRoutes registers routes that do not require a session.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers the login, logout and current-session endpoints.
// Login is the only /api route reachable without a session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, sessions session.Service) {
	e.POST("/api/auth/login", a.Login)

	g := e.Group("/api/auth", middleware.RequireSession(sessions))
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me)
}
