package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

const testIssuer = "https://identity.test"

func newTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	if _, ok := claims["iss"]; !ok {
		claims["iss"] = testIssuer
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

// echoIdentity replies with the identity the middleware attached.
var echoIdentity = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"user_id": ""})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"user_id": id.UserID,
		"role":    string(id.Role),
	})
})

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/blogs", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) utils.ErrorResponse {
	t.Helper()
	var body utils.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware(t *testing.T) {
	key := newTestKey(t)
	h := AuthMiddleware(&key.PublicKey, testIssuer)(echoIdentity)

	t.Run("missing header", func(t *testing.T) {
		rr := serve(h, "")
		require.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Missing Authorization header", decodeError(t, rr).Message)
	})

	t.Run("garbage token", func(t *testing.T) {
		rr := serve(h, "not-a-jwt")
		require.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, utils.ErrCodeUnauthorized, decodeError(t, rr).Code)
	})

	t.Run("expired token", func(t *testing.T) {
		tok := signToken(t, key, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Minute).Unix()})
		rr := serve(h, tok)
		require.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, utils.ErrCodeTokenExpired, decodeError(t, rr).Code)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		tok := signToken(t, key, jwt.MapClaims{"sub": "u1", "iss": "https://elsewhere"})
		rr := serve(h, tok)
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("signed by another key", func(t *testing.T) {
		tok := signToken(t, newTestKey(t), jwt.MapClaims{"sub": "u1"})
		rr := serve(h, tok)
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("missing subject", func(t *testing.T) {
		tok := signToken(t, key, jwt.MapClaims{"email": "a@b.c"})
		rr := serve(h, tok)
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		tok := signToken(t, key, jwt.MapClaims{"sub": "u1"})
		rr := serve(h, tok)
		require.Equal(t, http.StatusOK, rr.Code)
		var got map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "u1", got["user_id"])
		assert.Equal(t, string(RoleUser), got["role"])
	})
}

func TestAdminAuthMiddleware(t *testing.T) {
	key := newTestKey(t)
	h := AdminAuthMiddleware(&key.PublicKey, testIssuer)(echoIdentity)

	rr := serve(h, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = serve(h, signToken(t, key, jwt.MapClaims{"sub": "buyer"}))
	require.Equal(t, http.StatusForbidden, rr.Code)
	body := decodeError(t, rr)
	assert.Equal(t, utils.ErrCodeForbidden, body.Code)
	assert.Equal(t, "Insufficient permissions", body.Message)

	rr = serve(h, signToken(t, key, jwt.MapClaims{"sub": "staff", "role": "admin"}))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = serve(h, signToken(t, key, jwt.MapClaims{"sub": "owner", "role": "superadmin"}))
	require.Equal(t, http.StatusOK, rr.Code)

	// Legacy tokens carry a boolean admin claim.
	rr = serve(h, signToken(t, key, jwt.MapClaims{"sub": "legacy", "admin": true}))
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestResolveRole(t *testing.T) {
	assert.Equal(t, RoleUser, ResolveRole(jwt.MapClaims{}))
	assert.Equal(t, RoleUser, ResolveRole(jwt.MapClaims{"role": "wizard"}))
	assert.Equal(t, RoleAdmin, ResolveRole(jwt.MapClaims{"role": "wizard", "admin": true}))
	assert.Equal(t, RoleSuperAdmin, ResolveRole(jwt.MapClaims{"role": "superadmin", "admin": false}))
	assert.Equal(t, RoleUser, ResolveRole(jwt.MapClaims{"admin": "true"}))
}

func TestOptionalAuthMiddleware(t *testing.T) {
	key := newTestKey(t)
	h := OptionalAuthMiddleware(&key.PublicKey, testIssuer)(echoIdentity)

	rr := serve(h, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var anon map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &anon))
	assert.Empty(t, anon["user_id"])

	rr = serve(h, signToken(t, key, jwt.MapClaims{"sub": "u9"}))
	require.Equal(t, http.StatusOK, rr.Code)
	var authed map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &authed))
	assert.Equal(t, "u9", authed["user_id"])

	for name, tok := range map[string]string{
		"tampered": "tampered",
		"expired":  signToken(t, key, jwt.MapClaims{"sub": "u9", "exp": time.Now().Add(-time.Minute).Unix()}),
		"foreign":  signToken(t, newTestKey(t), jwt.MapClaims{"sub": "u9"}),
	} {
		rr = serve(h, tok)
		require.Equal(t, http.StatusOK, rr.Code, name)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Empty(t, body["user_id"], name)
	}
}

func TestRequireSelfOrAdmin(t *testing.T) {
	key := newTestKey(t)
	var allowed bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed = RequireSelfOrAdmin(w, r, "owner")
		if allowed {
			w.WriteHeader(http.StatusNoContent)
		}
	})
	h := AuthMiddleware(&key.PublicKey, testIssuer)(inner)

	rr := serve(h, signToken(t, key, jwt.MapClaims{"sub": "owner"}))
	assert.True(t, allowed)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = serve(h, signToken(t, key, jwt.MapClaims{"sub": "intruder"}))
	assert.False(t, allowed)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = serve(h, signToken(t, key, jwt.MapClaims{"sub": "staff", "role": "admin"}))
	assert.True(t, allowed)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	rr := httptest.NewRecorder()
	SecurityHeadersMiddleware(false)(ok).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "default-src 'self'", rr.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, rr.Header().Get("Strict-Transport-Security"))

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "http://estate.test/api/properties?page=2", nil)
	req.Header.Set("X-Forwarded-Proto", "http")
	SecurityHeadersMiddleware(true)(ok).ServeHTTP(rr, req)
	require.Equal(t, http.StatusPermanentRedirect, rr.Code)
	assert.Equal(t, "https://estate.test/api/properties?page=2", rr.Header().Get("Location"))

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "http://estate.test/health", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	SecurityHeadersMiddleware(true)(ok).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Strict-Transport-Security"))
}

func TestRecoverMiddleware(t *testing.T) {
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	rr := httptest.NewRecorder()
	RecoverMiddleware(boom).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, utils.ErrCodeInternal, decodeError(t, rr).Code)
}
