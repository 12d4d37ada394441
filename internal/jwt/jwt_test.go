package jwt

import (
	"context"
	"net/http"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_GenerateAndParse(t *testing.T) {
	j := New("test-secret", time.Hour)
	ctx := context.Background()

	token, err := j.Generate(ctx, 42)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	userID, err := j.GetUserID(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestJWT_ClaimsShape(t *testing.T) {
	issued := time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)
	j := New("test-secret", time.Hour)
	j.now = func() time.Time { return issued }

	token, err := j.Generate(context.Background(), 7)
	require.NoError(t, err)

	var claims gojwt.RegisteredClaims
	_, _, err = gojwt.NewParser().ParseUnverified(token, &claims)
	require.NoError(t, err)

	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, issued.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, issued.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestJWT_ExpiredToken(t *testing.T) {
	j := New("test-secret", -time.Minute)
	ctx := context.Background()

	token, err := j.Generate(ctx, 1)
	require.NoError(t, err)

	userID, err := j.GetUserID(ctx, token)
	assert.Error(t, err)
	assert.Zero(t, userID)
}

func TestJWT_WrongSecret(t *testing.T) {
	ctx := context.Background()
	token, err := New("secret-a", time.Hour).Generate(ctx, 1)
	require.NoError(t, err)

	_, err = New("secret-b", time.Hour).GetUserID(ctx, token)
	assert.Error(t, err)
}

func TestJWT_InvalidToken(t *testing.T) {
	j := New("secret", time.Hour)
	_, err := j.GetUserID(context.Background(), "invalid.token.string")
	assert.Error(t, err)
}

func TestJWT_GetTokenFromRequest(t *testing.T) {
	j := New("secret", time.Hour)
	ctx := context.Background()

	tests := []struct {
		name          string
		header        string
		expectedToken string
		expectError   bool
	}{
		{"ValidBearer", "Bearer mytoken123", "mytoken123", false},
		{"LowercaseBearer", "bearer mytoken123", "mytoken123", false},
		{"NoHeader", "", "", true},
		{"InvalidFormat", "Token mytoken123", "", true},
		{"TooManyParts", "Bearer a b", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			token, err := j.GetTokenFromRequest(ctx, req)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedToken, token)
		})
	}
}
