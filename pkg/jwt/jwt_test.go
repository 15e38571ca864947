package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	token, err := GenerateToken("operator", AccessToken, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Subject)
	assert.Equal(t, AccessToken, claims.TokenType)
	assert.True(t, IsTokenValid(token, "secret", AccessToken))
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("operator", AccessToken, "secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, "other")
	assert.Error(t, err)
	assert.False(t, IsTokenValid(token, "other", AccessToken))
}

func TestValidateRejectsExpired(t *testing.T) {
	token, err := GenerateToken("operator", AccessToken, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, "secret")
	assert.Error(t, err)
}
