package session_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	session "github.com/aarothfresh/go-session"
)

func TestTokenExpired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		token   string
		expired bool
	}{
		{"future expiry", signedToken(t, now.Add(time.Hour)), false},
		{"past expiry", signedToken(t, now.Add(-time.Minute)), true},
		{"opaque token treated as live", "not-a-jwt", false},
		{"empty token treated as live", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expired, session.TokenExpired(tc.token, now))
		})
	}
}

func TestTokenWithoutExpClaimIsLive(t *testing.T) {
	// The backend owns validity; absent exp means we cannot rule locally.
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "v-1",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	assert.False(t, session.TokenExpired(raw, time.Now()))
}
