package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
}

func (d *mapDenylist) Revoke(_ context.Context, id string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.revoked == nil {
		d.revoked = map[string]time.Time{}
	}
	d.revoked[id] = until
	return nil
}

func (d *mapDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	_, ok := d.revoked[id]
	return ok, nil
}

func newTestManager(denylist Denylist) *Manager {
	logger, _ := test.NewNullLogger()
	return NewManager(Config{Secret: "secret", TTL: 7 * 24 * time.Hour}, denylist, logger)
}

func TestIssueAndRead(t *testing.T) {
	m := newTestManager(nil)
	userID := uuid.New()

	token, expires, err := m.Issue(userID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expires, 5*time.Second)

	got, ok := m.Read(context.Background(), token)
	require.True(t, ok)
	assert.Equal(t, userID, got)
}

func TestRead_InvalidTokens(t *testing.T) {
	m := newTestManager(nil)
	other := NewManager(Config{Secret: "other", TTL: time.Hour}, nil, logrus.New())
	foreign, _, err := other.Issue(uuid.New())
	require.NoError(t, err)

	for _, token := range []string{"", "garbage", foreign} {
		_, ok := m.Read(context.Background(), token)
		assert.False(t, ok, "token %q", token)
	}
}

func TestRevoke(t *testing.T) {
	denylist := &mapDenylist{}
	m := newTestManager(denylist)

	token, _, err := m.Issue(uuid.New())
	require.NoError(t, err)
	require.NoError(t, m.Revoke(context.Background(), token))

	_, ok := m.Read(context.Background(), token)
	assert.False(t, ok)

	assert.NoError(t, m.Revoke(context.Background(), "garbage"))
}

func TestRead_DenylistFailureYieldsNoIdentity(t *testing.T) {
	m := newTestManager(&mapDenylist{err: errors.New("redis down")})
	token, _, err := m.Issue(uuid.New())
	require.NoError(t, err)

	_, ok := m.Read(context.Background(), token)
	assert.False(t, ok)
}

func TestCookies(t *testing.T) {
	m := newTestManager(nil)
	rec := httptest.NewRecorder()
	expires := time.Now().Add(time.Hour)
	m.SetCookie(rec, "abc", expires)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, CookieName, c.Name)
	assert.Equal(t, "abc", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 7*24*3600, c.MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	assert.Equal(t, "abc", TokenFromRequest(req))

	rec = httptest.NewRecorder()
	m.ClearCookie(rec)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Empty(t, cleared[0].Value)
	assert.Less(t, cleared[0].MaxAge, 0)
}

func TestRedisDenylist(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	require.NoError(t, client.Ping(context.Background()).Err())

	d := NewRedisDenylist(client)
	id := uuid.NewString()
	ctx := context.Background()

	revoked, err := d.IsRevoked(ctx, id)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, d.Revoke(ctx, id, time.Now().Add(time.Minute)))
	revoked, err = d.IsRevoked(ctx, id)
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := client.TTL(ctx, revokedKeyPrefix+id).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	// Already expired tokens are not stored.
	expired := uuid.NewString()
	require.NoError(t, d.Revoke(ctx, expired, time.Now().Add(-time.Minute)))
	revoked, err = d.IsRevoked(ctx, expired)
	require.NoError(t, err)
	assert.False(t, revoked)
}
