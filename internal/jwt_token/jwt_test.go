package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "clearance/pkg/domain-errors"
)

var jwtService = NewJWTService(
	"test-signing-key",
	"test-issuer",
	"test-audience",
)

func Test_GenerateOfficerToken(t *testing.T) {
	token, err := jwtService.GenerateOfficerToken("OFF-114", "NHAVA-SHEVA", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "OFF-114", claims.OfficerID())
	assert.Equal(t, "NHAVA-SHEVA", claims.Station)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func Test_GenerateOfficerToken_RequiresOfficer(t *testing.T) {
	_, err := jwtService.GenerateOfficerToken("  ", "", time.Hour)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, err := jwtService.GenerateOfficerToken("OFF-114", "", -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
	de, ok := dErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "token has expired", de.Message)
}

func Test_ValidateToken_WrongKey(t *testing.T) {
	other := NewJWTService("another-key", "test-issuer", "test-audience")
	token, err := other.GenerateOfficerToken("OFF-114", "", time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_WrongAudience(t *testing.T) {
	other := NewJWTService("test-signing-key", "test-issuer", "someone-else")
	token, err := other.GenerateOfficerToken("OFF-114", "", time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
