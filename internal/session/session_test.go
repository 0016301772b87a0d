package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

type memRevocations struct {
	mu   sync.Mutex
	ids  map[string]time.Duration
	fail bool
}

func (m *memRevocations) Revoke(_ context.Context, sid string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ids == nil {
		m.ids = map[string]time.Duration{}
	}
	m.ids[sid] = ttl
	return nil
}

func (m *memRevocations) IsRevoked(_ context.Context, sid string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return false, errors.New("redis down")
	}
	_, ok := m.ids[sid]
	return ok, nil
}

// issue persists sess and returns a request carrying the resulting cookie.
func issue(t *testing.T, svc *CookieService, sess *Session) (*http.Request, *http.Cookie) {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, svc.Persist(rec, httptest.NewRequest(http.MethodPost, "/", nil), sess))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	return req, cookies[0]
}

func TestRoundTrip(t *testing.T) {
	svc := NewCookieService(secret, time.Hour)
	req, c := issue(t, svc, &Session{UserID: "u1", Name: "Ann", Role: "MANAGER", IsLoggedIn: true})

	assert.Equal(t, CookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.NotContains(t, c.Value, "Ann")

	got, ok := svc.Load(req)
	require.True(t, ok)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "Ann", got.Name)
	assert.Equal(t, "MANAGER", got.Role)
	assert.NotEmpty(t, got.ID)
}

func TestSecureCookieInProduction(t *testing.T) {
	svc := NewCookieService(secret, time.Hour, WithSecure(true))
	_, c := issue(t, svc, &Session{UserID: "u1", IsLoggedIn: true})
	assert.True(t, c.Secure)
}

func TestMissingAndTamperedCookies(t *testing.T) {
	svc := NewCookieService(secret, time.Hour)
	_, ok := svc.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)

	_, c := issue(t, svc, &Session{UserID: "u1", IsLoggedIn: true})
	b := []byte(c.Value)
	b[len(b)/2] ^= 'x' ^ 'y'
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: string(b)})
	_, ok = svc.Load(req)
	assert.False(t, ok)

	other := NewCookieService("another-secret-another-secret-xx", time.Hour)
	req, _ = issue(t, svc, &Session{UserID: "u1", IsLoggedIn: true})
	_, ok = other.Load(req)
	assert.False(t, ok)
}

func TestExpiredSessionRejected(t *testing.T) {
	clock := time.Now()
	svc := NewCookieService(secret, time.Minute, WithClock(func() time.Time { return clock }))
	req, _ := issue(t, svc, &Session{UserID: "u1", IsLoggedIn: true})

	clock = clock.Add(2 * time.Minute)
	_, ok := svc.Load(req)
	assert.False(t, ok)
}

func TestLoggedOutFlagRejected(t *testing.T) {
	svc := NewCookieService(secret, time.Hour)
	req, _ := issue(t, svc, &Session{UserID: "u1", IsLoggedIn: false})
	_, ok := svc.Load(req)
	assert.False(t, ok)
}

func TestDestroyClearsAndRevokes(t *testing.T) {
	rv := &memRevocations{}
	svc := NewCookieService(secret, time.Hour, WithRevocations(rv))
	req, _ := issue(t, svc, &Session{UserID: "u1", IsLoggedIn: true})

	rec := httptest.NewRecorder()
	require.NoError(t, svc.Destroy(rec, req))
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, "", cleared[0].Value)
	assert.Less(t, cleared[0].MaxAge, 0)
	require.Len(t, rv.ids, 1)

	// The old cookie value no longer authenticates.
	_, ok := svc.Load(req)
	assert.False(t, ok)
}

func TestRevocationStoreFailureFailsOpen(t *testing.T) {
	rv := &memRevocations{fail: true}
	svc := NewCookieService(secret, time.Hour, WithRevocations(rv))
	req, _ := issue(t, svc, &Session{UserID: "u1", IsLoggedIn: true})
	_, ok := svc.Load(req)
	assert.True(t, ok)
}
