package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestValidateToken_RoundTrip(t *testing.T) {
	tok, err := CreateToken(testSecret, "u1", "owner@example.com", "user", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(testSecret, tok)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.UserID())
	require.Equal(t, "owner@example.com", claims.Email)
	require.Equal(t, "user", claims.Role)
}

func TestValidateToken_Failures(t *testing.T) {
	valid, err := CreateToken(testSecret, "u1", "", "user", time.Hour)
	require.NoError(t, err)
	expired, err := CreateToken(testSecret, "u1", "", "user", -time.Minute)
	require.NoError(t, err)
	noSubject, err := CreateToken(testSecret, "", "", "user", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{name: "wrong secret", secret: "another-secret-another-secret-xx", token: valid},
		{name: "expired", secret: testSecret, token: expired},
		{name: "malformed", secret: testSecret, token: "not.a.jwt"},
		{name: "empty", secret: testSecret, token: ""},
		{name: "missing subject", secret: testSecret, token: noSubject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateToken(tt.secret, tt.token)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
