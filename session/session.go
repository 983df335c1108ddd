// Package session issues and reads the signed session tokens carried in the
// "token" cookie.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/adri-yano/social-media-app/pkg/jwt"
)

// CookieName is the cookie that carries the session token.
const CookieName = "token"

// Denylist records revoked token ids until they would have expired anyway.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Config struct {
	Secret       string
	TTL          time.Duration
	CookieSecure bool
}

type Manager struct {
	tokens       *jwt.Manager
	denylist     Denylist
	ttl          time.Duration
	cookieSecure bool
	logger       logrus.FieldLogger
}

// NewManager builds a session manager. A nil denylist disables revocation.
func NewManager(cfg Config, denylist Denylist, logger logrus.FieldLogger) *Manager {
	if denylist == nil {
		denylist = NoopDenylist{}
	}
	return &Manager{
		tokens:       jwt.NewManager(cfg.Secret),
		denylist:     denylist,
		ttl:          cfg.TTL,
		cookieSecure: cfg.CookieSecure,
		logger:       logger,
	}
}

// Issue returns a signed token for userID and its expiry.
func (m *Manager) Issue(userID uuid.UUID) (string, time.Time, error) {
	token, claims, err := m.tokens.Generate(userID, m.ttl)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, claims.ExpiresAt.Time, nil
}

// Read returns the user id carried by token. Any failure, including an
// unreachable denylist, yields no identity.
func (m *Manager) Read(ctx context.Context, token string) (uuid.UUID, bool) {
	if token == "" {
		return uuid.Nil, false
	}

	claims, err := m.tokens.Verify(token)
	if err != nil {
		return uuid.Nil, false
	}

	revoked, err := m.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		m.logger.WithError(err).Warn("session denylist lookup failed")
		return uuid.Nil, false
	}
	if revoked {
		return uuid.Nil, false
	}

	userID, err := claims.UserID()
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

// Revoke denylists token until its expiry. Invalid tokens are ignored.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	claims, err := m.tokens.Verify(token)
	if err != nil {
		return nil
	}
	return m.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// SetCookie stores token in an HTTP-only, site-wide cookie.
func (m *Manager) SetCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromRequest returns the session cookie value, if any.
func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
