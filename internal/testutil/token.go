// Package testutil mints credentials for tests. Production tokens come from
// the identity service.
package testutil

import (
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/stayhaven/internal/auth"
)

// GenerateToken signs an HS256 token for userID that expires in an hour.
func GenerateToken(t testing.TB, secret string, userID int64, username string) string {
	t.Helper()
	return SignClaims(t, secret, auth.Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
}

func SignClaims(t testing.TB, secret string, claims auth.Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}
