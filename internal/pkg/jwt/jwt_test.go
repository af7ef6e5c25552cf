package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloud-deploy/internal/pkg/config"
	"cloud-deploy/pkg/constants"
)

func init() {
	config.GlobalConfig = &config.Config{
		Auth: config.AuthConfig{
			JWT: config.JWTConfig{
				Secret:            "test-secret",
				AccessTokenExpire: 3600,
			},
		},
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateAccessToken(42, "alice", "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, constants.JWTTypeAccess, claims.Type)
}

func TestValidateToken_Invalid(t *testing.T) {
	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(42, "alice", "alice@example.com")
	require.NoError(t, err)

	config.GlobalConfig.Auth.JWT.Secret = "other-secret"
	defer func() { config.GlobalConfig.Auth.JWT.Secret = "test-secret" }()

	_, err = ValidateToken(token)
	assert.Error(t, err)
}
