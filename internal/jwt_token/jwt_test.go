package jwttoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
)

var jwtService = NewJWTService("test-signing-key", "test-issuer", "test-audience")

func Test_GenerateAccessToken(t *testing.T) {
	userID := id.UserID(uuid.New())
	token, err := jwtService.GenerateAccessToken(userID, time.Hour)
	require.NoError(t, err)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(id.UserID(uuid.New()), -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	de, ok := dErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "token has expired", de.Message)
}

func Test_ValidateToken_WrongAudience(t *testing.T) {
	other := NewJWTService("test-signing-key", "test-issuer", "someone-else")
	token, err := other.GenerateAccessToken(id.UserID(uuid.New()), time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateActor(t *testing.T) {
	userID := id.UserID(uuid.New())
	token, err := jwtService.GenerateAccessToken(userID, time.Hour)
	require.NoError(t, err)

	actor, err := jwtService.ValidateActor(token)
	require.NoError(t, err)
	assert.Equal(t, userID, actor)
}
