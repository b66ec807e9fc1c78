package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Maharab2134/deshishop/internal/domain/user"
)

var testSecret = []byte("test-secret-not-for-production")

func newTestService(ttl time.Duration, now time.Time) *TokenService {
	s := NewTokenService(testSecret, ttl)
	s.now = func() time.Time { return now }
	return s
}

func TestIssueAndVerify(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := newTestService(time.Hour, now)

	token, err := s.Issue(&user.User{ID: "u1", Role: user.RoleUser})
	require.NoError(t, err)

	id, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UserID)
	assert.Equal(t, user.RoleUser, id.Role)
	assert.False(t, id.IsAdmin())
}

func TestVerify_AdminRole(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := newTestService(time.Hour, now)

	token, err := s.Issue(&user.User{ID: "a1", Role: user.RoleAdmin})
	require.NoError(t, err)

	id, err := s.Verify(token)
	require.NoError(t, err)
	assert.True(t, id.IsAdmin())
}

func TestVerify_UnknownRoleCoercedToUser(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := newTestService(time.Hour, now)

	token, err := s.Issue(&user.User{ID: "u1", Role: user.Role("superuser")})
	require.NoError(t, err)

	id, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.RoleUser, id.Role)
}

func TestVerify_Expired(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := newTestService(time.Hour, issuedAt)

	token, err := s.Issue(&user.User{ID: "u1", Role: user.RoleUser})
	require.NoError(t, err)

	s.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	_, err = s.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := newTestService(time.Hour, now)

	token, err := s.Issue(&user.User{ID: "u1", Role: user.RoleUser})
	require.NoError(t, err)

	other := NewTokenService([]byte("different-secret"), time.Hour)
	_, err = other.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Garbage(t *testing.T) {
	s := newTestService(time.Hour, time.Now())

	_, err := s.Verify("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong-pass"))
}
