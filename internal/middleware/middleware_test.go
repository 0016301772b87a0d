package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/venue-ops/internal/apperror"
	"github.com/iliyamo/venue-ops/internal/config"
	"github.com/iliyamo/venue-ops/internal/session"
)

type stubSessions struct {
	s     *session.Session
	loads *int
}

func (f stubSessions) Load(*http.Request) (*session.Session, bool) {
	if f.loads != nil {
		*f.loads++
	}
	return f.s, f.s != nil
}
func (stubSessions) Persist(http.ResponseWriter, *http.Request, *session.Session) error {
	return nil
}
func (stubSessions) Destroy(http.ResponseWriter, *http.Request) error { return nil }

func ok(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func TestRequireSessionRejectsAnonymous(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/floorplans", nil), httptest.NewRecorder())

	called := false
	err := RequireSession(stubSessions{})(func(c echo.Context) error { called = true; return nil })(c)
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))
	assert.False(t, called)
}

func TestRequireSessionAttaches(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	s := &session.Session{UserID: "u1", IsLoggedIn: true}

	require.NoError(t, RequireSession(stubSessions{s: s})(ok)(c))
	assert.Same(t, s, CurrentSession(c))
	assert.Equal(t, "u1", userID(c))
}

func TestLoadSessionNeverRejects(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	require.NoError(t, LoadSession(stubSessions{})(ok)(c))
	assert.Nil(t, CurrentSession(c))
	assert.Equal(t, "anon", userID(c))
}

func TestGuardReusesLoadedSession(t *testing.T) {
	e := echo.New()
	loads := 0
	svc := stubSessions{s: &session.Session{UserID: "u1", IsLoggedIn: true}, loads: &loads}
	e.Use(LoadSession(svc))
	e.GET("/api/floorplans", ok, RequireSession(svc))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/floorplans", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, loads)
}

func TestTokenBucketDisabledPassesThrough(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, nil)
	require.NoError(t, mw(ok)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenBucketBlocksWhenEmpty(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
	mw := NewTokenBucket(cfg, rdb, zap.NewNop())
	e := echo.New()
	call := func() (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest(http.MethodGet, "/api/vinyl-slots", nil)
		req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/api/vinyl-slots")
		return rec, mw(ok)(c)
	}

	rec, err := call()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec, err = call()
	assert.Equal(t, apperror.KindRateLimited, apperror.KindOf(err))
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.True(t, mr.Exists("rl:ip:10.0.0.7:route:GET /api/vinyl-slots"))
}

func TestTokenBucketFailsOpenWhenRedisDies(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	mw := NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1,
		RefillInterval: time.Second, TTL: time.Minute}, rdb, nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, mw(ok)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/vinyl-slots", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/vinyl-slots")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_route"}
	assert.Equal(t, "rl:ip:10.0.0.7:route:POST /api/vinyl-slots", buildRateKey(cfg, c))

	cfg.KeyStrategy = "user"
	c.Set(sessionKey, &session.Session{UserID: "u9"})
	assert.Equal(t, "rl:user:u9", buildRateKey(cfg, c))

	cfg.KeyStrategy = "ip"
	assert.Equal(t, "rl:ip:10.0.0.7", buildRateKey(cfg, c))
}

func TestAccessLogRecordsStatusAndRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := echo.New()
	e.Use(RequestID(), AccessLog(zap.New(core)))
	e.GET("/healthz", ok)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0].ContextMap()
	assert.EqualValues(t, http.StatusOK, entry["status"])
	assert.NotEmpty(t, entry["request_id"])
	assert.Equal(t, rec.Header().Get(echo.HeaderXRequestID), entry["request_id"])
}
