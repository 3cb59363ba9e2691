package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dmitriy839/foodgram-project-react/domain"
)

func TestUserTokenRoundTrip(t *testing.T) {
	s := NewJWTService()

	token := s.GenerateTokenUser(42, domain.RoleAdmin)
	require.NotEmpty(t, token)

	userID, role, err := s.GetUserIDByToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, userID)
	assert.Equal(t, domain.RoleAdmin, role)
}

func TestUserTokenInvalid(t *testing.T) {
	s := NewJWTService()

	_, _, err := s.GetUserIDByToken("not-a-token")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestResetPasswordToken(t *testing.T) {
	s := NewJWTService()

	token, err := s.GenerateTokenResetPassword(map[string]any{"user_id": uint(7)}, time.Minute)
	require.NoError(t, err)

	claims, err := s.ValidateTokenResetPassword(token)
	require.NoError(t, err)

	rawID, ok := claims["user_id"].(float64)
	require.True(t, ok)
	assert.EqualValues(t, 7, rawID)
}

func TestResetPasswordTokenExpired(t *testing.T) {
	s := NewJWTService()

	token, err := s.GenerateTokenResetPassword(map[string]any{"user_id": uint(7)}, -time.Minute)
	require.NoError(t, err)

	_, err = s.ValidateTokenResetPassword(token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}
