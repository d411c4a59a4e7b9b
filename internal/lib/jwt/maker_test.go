package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test_secret_key_1234567890"

func TestJWTMaker_GenerateAndParse(t *testing.T) {
	maker := NewJWTMaker(secret, "cloudslims", 15*time.Minute)

	tests := []struct {
		name   string
		userID string
		email  string
	}{
		{"арендатор", "8b0c4d57-6f0a-4f7e-9d0c-0c5b7c1d2e3f", "perpus@sma1.sch.id"},
		{"администратор", "admin-1", "admin@eslims.my.id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, issued, err := maker.GenerateToken(tt.userID, tt.email)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, claims.UserID())
			assert.Equal(t, tt.email, claims.Email)
			assert.Equal(t, issued.ID, claims.ID)
			assert.NotEmpty(t, claims.ID)
			assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestJWTMaker_UniqueJTI(t *testing.T) {
	maker := NewJWTMaker(secret, "", time.Minute)
	_, a, err := maker.GenerateToken("u1", "a@b.c")
	require.NoError(t, err)
	_, b, err := maker.GenerateToken("u1", "a@b.c")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestJWTMaker_ParseToken_Invalid(t *testing.T) {
	maker := NewJWTMaker(secret, "cloudslims", 15*time.Minute)
	valid, _, err := maker.GenerateToken("u1", "a@b.c")
	require.NoError(t, err)

	expired, _, err := NewJWTMaker(secret, "cloudslims", -time.Hour).GenerateToken("u1", "a@b.c")
	require.NoError(t, err)
	wrongSecret, _, err := NewJWTMaker("other", "cloudslims", time.Hour).GenerateToken("u1", "a@b.c")
	require.NoError(t, err)
	wrongIssuer, _, err := NewJWTMaker(secret, "someone-else", time.Hour).GenerateToken("u1", "a@b.c")
	require.NoError(t, err)

	tests := map[string]string{
		"empty":        "",
		"malformed":    "invalid.token.here",
		"expired":      expired,
		"wrong secret": wrongSecret,
		"wrong issuer": wrongIssuer,
		"tampered":     valid + "x",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			claims, err := maker.ParseToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}
