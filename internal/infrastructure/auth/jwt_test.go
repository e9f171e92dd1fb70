package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopcart/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	cfg := config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        2,
	}
	return NewJWTService(cfg)
}

func newTestInput() GenerateTokenInput {
	return GenerateTokenInput{
		UserID:      uuid.New(),
		Username:    "shopper",
		IsStaff:     true,
		Permissions: []string{"catalog:manage"},
	}
}

func TestNewJWTService_UsesSecretForRefreshIfNotProvided(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "test-secret"})

	assert.Equal(t, []byte("test-secret"), svc.refreshSecret)
}

func TestGenerateTokenPair(t *testing.T) {
	svc := newTestJWTService()

	pair, err := svc.GenerateTokenPair(newTestInput())

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))
}

func TestValidateAccessToken(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()
	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	t.Run("returns claims", func(t *testing.T) {
		claims, err := svc.ValidateAccessToken(pair.AccessToken)

		require.NoError(t, err)
		assert.Equal(t, input.UserID.String(), claims.UserID)
		assert.Equal(t, "shopper", claims.Username)
		assert.True(t, claims.IsStaff)
		assert.True(t, claims.HasPermission("catalog:manage"))
		assert.Equal(t, TokenTypeAccess, claims.TokenType)
		assert.NotEmpty(t, claims.ID)

		userID, err := claims.GetUserUUID()
		require.NoError(t, err)
		assert.Equal(t, input.UserID, userID)
	})

	t.Run("rejects refresh token", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(pair.RefreshToken)
		assert.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:                "a-completely-different-secret-key",
			AccessTokenExpiration: time.Minute,
			Issuer:                "test-issuer",
		})
		foreign, err := other.GenerateTokenPair(input)
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(foreign.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
			UserID:    input.UserID.String(),
			TokenType: TokenTypeAccess,
		}
		expired, err := sign(claims, svc.accessSecret)
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(expired)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestRefreshTokenPair(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()
	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	t.Run("issues a new pair with reloaded rights", func(t *testing.T) {
		refreshed, err := svc.RefreshTokenPair(pair.RefreshToken, false, nil)
		require.NoError(t, err)

		claims, err := svc.ValidateAccessToken(refreshed.AccessToken)
		require.NoError(t, err)
		assert.False(t, claims.IsStaff)
		assert.False(t, claims.HasPermission("catalog:manage"))
		assert.Equal(t, "shopper", claims.Username)

		refreshClaims, err := svc.ValidateRefreshToken(refreshed.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, 1, refreshClaims.RefreshCount)
	})

	t.Run("stops after the maximum refresh count", func(t *testing.T) {
		token := pair.RefreshToken
		for i := 0; i < 2; i++ {
			next, err := svc.RefreshTokenPair(token, true, input.Permissions)
			require.NoError(t, err)
			token = next.RefreshToken
		}

		_, err := svc.RefreshTokenPair(token, true, input.Permissions)
		assert.ErrorIs(t, err, ErrMaxRefreshExceeded)
	})

	t.Run("rejects access token", func(t *testing.T) {
		_, err := svc.RefreshTokenPair(pair.AccessToken, true, nil)
		assert.Error(t, err)
	})
}

func TestClaims_Permissions(t *testing.T) {
	claims := &Claims{Permissions: []string{"catalog:manage", "cart:read"}}

	assert.True(t, claims.HasPermission("catalog:manage"))
	assert.False(t, claims.HasPermission("catalog:delete"))
	assert.True(t, claims.HasAnyPermission("x", "cart:read"))
	assert.False(t, claims.HasAnyPermission())
	assert.False(t, (&Claims{}).HasAnyPermission("catalog:manage"))
}

func TestClaims_Times(t *testing.T) {
	assert.True(t, (&Claims{}).GetIssuedAtTime().IsZero())
	assert.True(t, (&Claims{}).GetExpiresAtTime().IsZero())

	svc := newTestJWTService()
	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), claims.GetIssuedAtTime(), 5*time.Second)
	assert.WithinDuration(t, pair.AccessTokenExpiresAt, claims.GetExpiresAtTime(), time.Second)
}

func TestGenerateTokenPair_UniqueTokenIDs(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)

	access, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	refresh, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)

	assert.NotEmpty(t, access.ID)
	assert.NotEqual(t, access.ID, refresh.ID)
	assert.Empty(t, refresh.Permissions)
	assert.False(t, refresh.IsStaff)
}
