// Package session manages the staff session carried in the encrypted
// "user" cookie.  The cookie holds an HS256 JWT sealed with NaCl
// secretbox, so clients can neither read nor forge it.  Nothing about a
// session is stored server side except, optionally, the ids of sessions
// that were logged out before they expired.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/nacl/secretbox"
)

// CookieName is the name of the session cookie.
const CookieName = "user"

const nonceSize = 24

// Session is the authenticated staff identity attached to a request.
type Session struct {
	ID         string    `json:"-"`
	UserID     string    `json:"id"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	IsLoggedIn bool      `json:"isLoggedIn"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// Service loads, persists and destroys sessions on HTTP exchanges.
type Service interface {
	// Load returns the request's session.  ok is false when there is no
	// cookie or it is invalid, expired, revoked or not logged in.
	Load(r *http.Request) (s *Session, ok bool)
	Persist(w http.ResponseWriter, r *http.Request, s *Session) error
	Destroy(w http.ResponseWriter, r *http.Request) error
}

// Revocations remembers sessions that were logged out early.
type Revocations interface {
	Revoke(ctx context.Context, sid string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sid string) (bool, error)
}

type claims struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	LoggedIn bool   `json:"logged_in"`
	jwt.RegisteredClaims
}

// Option configures a CookieService.
type Option func(*CookieService)

// WithRevocations enables early logout of still-valid cookies.
func WithRevocations(rv Revocations) Option {
	return func(s *CookieService) { s.revocations = rv }
}

// WithSecure sets the Secure attribute on issued cookies.
func WithSecure(secure bool) Option {
	return func(s *CookieService) { s.secure = secure }
}

// WithLogger reports revocation store failures.
func WithLogger(log *zap.Logger) Option {
	return func(s *CookieService) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *CookieService) { s.now = now }
}

// CookieService is the cookie-backed Service.
type CookieService struct {
	signKey     []byte
	boxKey      [32]byte
	ttl         time.Duration
	secure      bool
	revocations Revocations
	log         *zap.Logger
	now         func() time.Time
}

var _ Service = (*CookieService)(nil)

// NewCookieService derives the signing and sealing keys from secret.
func NewCookieService(secret string, ttl time.Duration, opts ...Option) *CookieService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	s := &CookieService{
		signKey: []byte(secret),
		boxKey:  sha256.Sum256([]byte(secret)),
		ttl:     ttl,
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *CookieService) Load(r *http.Request) (*Session, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil, false
	}
	sess, err := s.open(c.Value)
	if err != nil || !sess.IsLoggedIn {
		return nil, false
	}
	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(r.Context(), sess.ID)
		if err != nil {
			s.log.Warn("session revocation lookup failed", zap.Error(err))
		} else if revoked {
			return nil, false
		}
	}
	return sess, true
}

// Persist issues a fresh cookie for sess, assigning an id and expiry.
func (s *CookieService) Persist(w http.ResponseWriter, r *http.Request, sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	sess.ExpiresAt = s.now().Add(s.ttl).UTC().Truncate(time.Second)
	value, err := s.seal(sess)
	if err != nil {
		return err
	}
	http.SetCookie(w, s.cookie(value, sess.ExpiresAt))
	return nil
}

// Destroy clears the cookie and revokes the session it carried.
func (s *CookieService) Destroy(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, s.cookie("", time.Unix(0, 0)))
	sess, ok := s.Load(r)
	if !ok || s.revocations == nil {
		return nil
	}
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revocations.Revoke(r.Context(), sess.ID, ttl); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *CookieService) cookie(value string, expires time.Time) *http.Cookie {
	maxAge := int(expires.Sub(s.now()).Seconds())
	if value == "" || maxAge <= 0 {
		maxAge = -1
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires.UTC(),
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *CookieService) seal(sess *Session) (string, error) {
	c := claims{
		Name:     sess.Name,
		Role:     sess.Role,
		LoggedIn: sess.IsLoggedIn,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   sess.UserID,
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.signKey)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("session nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(token), &nonce, &s.boxKey)
	return base64.RawURLEncoding.EncodeToString(box), nil
}

var errInvalidCookie = errors.New("invalid session cookie")

func (s *CookieService) open(value string) (*Session, error) {
	box, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil || len(box) < nonceSize+secretbox.Overhead {
		return nil, errInvalidCookie
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	token, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.boxKey)
	if !ok {
		return nil, errInvalidCookie
	}

	var c claims
	_, err = jwt.ParseWithClaims(string(token), &c, func(*jwt.Token) (any, error) {
		return s.signKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidCookie, err)
	}
	return &Session{
		ID:         c.ID,
		UserID:     c.Subject,
		Name:       c.Name,
		Role:       c.Role,
		IsLoggedIn: c.LoggedIn,
		ExpiresAt:  c.ExpiresAt.Time.UTC(),
	}, nil
}
