package testhelpers

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/krishnaproperties/estate-service/shared/go-middleware"
)

// NewSigningKey generates a throwaway RSA key for unit tests.
func NewSigningKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

// SignJWT mints a 15 minute RS256 token for sub with the given role.
func SignJWT(t *testing.T, key *rsa.PrivateKey, issuer, sub string, role middleware.Role) string {
	t.Helper()
	now := time.Now().Unix()
	claims := jwt.MapClaims{
		"sub":   sub,
		"iat":   now,
		"exp":   now + 15*60,
		"role":  string(role),
		"email": sub + "@example.test",
		"name":  "Test " + sub,
	}
	if issuer != "" {
		claims["iss"] = issuer
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err, "Failed to sign test JWT")
	return signed
}

// CreateJWT signs with the helper's key, as the identity provider would.
func (h *TestHelper) CreateJWT(userID string, role middleware.Role) string {
	return SignJWT(h.T, h.PrivateKey, h.Issuer, userID, role)
}
