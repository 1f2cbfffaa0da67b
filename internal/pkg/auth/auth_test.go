package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-api/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "storefront-test"},
		JWT: config.JWTConfig{
			AccessSecret:       "access-secret",
			RefreshSecret:      "refresh-secret",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 7 * 24 * time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
}

func TestIssueTokens(t *testing.T) {
	t.Parallel()
	m := NewJWTManager(testConfig())

	pair, err := m.IssueTokens(42)
	require.NoError(t, err)

	access, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), access.ID)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), access.ExpiresAt.Time, 5*time.Second)

	refresh, err := m.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), refresh.ID)
	assert.NotEmpty(t, refresh.RegisteredClaims.ID)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), refresh.ExpiresAt.Time, 5*time.Second)
}

func TestSigningContextsAreIndependent(t *testing.T) {
	t.Parallel()
	m := NewJWTManager(testConfig())
	pair, err := m.IssueTokens(1)
	require.NoError(t, err)

	_, err = m.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = m.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestExpiredTokens(t *testing.T) {
	t.Parallel()
	m := NewJWTManager(testConfig())
	m.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }

	pair, err := m.IssueTokens(7)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = m.ValidateRefreshToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateAccessTokenGarbage(t *testing.T) {
	t.Parallel()
	m := NewJWTManager(testConfig())

	tests := []string{"", "not-a-jwt", "a.b.c"}
	for _, tok := range tests {
		_, err := m.ValidateAccessToken(tok)
		assert.ErrorIs(t, err, ErrTokenInvalid, tok)
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("Basic abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("Bearer "))
}

func TestPasswordManager(t *testing.T) {
	t.Parallel()
	p := NewPasswordManager(testConfig())

	_, err := p.HashPassword("12345")
	assert.ErrorIs(t, err, ErrWeakPassword)

	hash, err := p.HashPassword("secret1")
	require.NoError(t, err)
	assert.NoError(t, p.VerifyPassword("secret1", hash))
	assert.Error(t, p.VerifyPassword("secret2", hash))
}

func TestRefreshCookie(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	SetRefreshCookie(c, "tok", 7*24*time.Hour, true)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, RefreshCookieName, cookie.Name)
	assert.Equal(t, "tok", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, 7*24*60*60, cookie.MaxAge)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	ClearRefreshCookie(c, false)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
	assert.False(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
}

func TestMemoryRevocationStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryRevocationStore()

	revoked, err := s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.Revoke(ctx, "jti-1", time.Hour))
	revoked, err = s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, s.Revoke(ctx, "jti-2", -time.Second))
	revoked, err = s.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}
