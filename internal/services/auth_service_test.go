package services

import (
	"context"
	"testing"
	"time"

	"github.com/GabKongroo/NothingSpecial/internal/config"
	jwtpkg "github.com/GabKongroo/NothingSpecial/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthConfig() *config.Config {
	return &config.Config{
		AdminPassword:          "s3cret",
		JWTSecret:              "test-secret",
		JWTAccessTokenDuration: time.Hour,
	}
}

func TestAuthLoginAndValidate(t *testing.T) {
	svc, err := NewAuthService(newFakeRedis(), testAuthConfig())
	require.NoError(t, err)

	_, _, err = svc.Login("wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	token, expiresAt, err := svc.Login("s3cret")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := svc.ValidateAccessToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, OperatorSubject, claims.Subject)
}

func TestAuthLogoutBlacklists(t *testing.T) {
	rdb := newFakeRedis()
	svc, err := NewAuthService(rdb, testAuthConfig())
	require.NoError(t, err)
	ctx := context.Background()

	token, _, err := svc.Login("s3cret")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, token))

	ttl := rdb.ttl["blacklist:token:"+token]
	assert.True(t, ttl > 50*time.Minute && ttl <= time.Hour)

	_, err = svc.ValidateAccessToken(ctx, token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	assert.Error(t, svc.Logout(ctx, "garbage"))
}

func TestAuthRejectsOtherTokenTypes(t *testing.T) {
	cfg := testAuthConfig()
	svc, err := NewAuthService(newFakeRedis(), cfg)
	require.NoError(t, err)

	token, err := jwtpkg.GenerateToken(OperatorSubject, "refresh", cfg.JWTSecret, time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestAuthSkipsBlacklistWhenRedisDown(t *testing.T) {
	rdb := newFakeRedis()
	svc, err := NewAuthService(rdb, testAuthConfig())
	require.NoError(t, err)

	token, _, err := svc.Login("s3cret")
	require.NoError(t, err)

	rdb.err = errBoom
	_, err = svc.ValidateAccessToken(context.Background(), token)
	assert.NoError(t, err)
}

func TestAuthRequiresPassword(t *testing.T) {
	_, err := NewAuthService(newFakeRedis(), &config.Config{})
	assert.Error(t, err)
}
