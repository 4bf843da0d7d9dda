package middleware

import (
	"crypto/rsa"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

var errMissingAuthHeader = errors.New("Missing Authorization header")

// AuthMiddleware – for normal-protected endpoints. If the bearer token is
// missing or invalid, returns 401.
func AuthMiddleware(pub *rsa.PublicKey, issuer string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := authenticate(w, r, pub, issuer)
			if !ok {
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
		})
	}
}

// authenticate writes the 401 itself and reports false when the request
// carries no usable token.
func authenticate(w http.ResponseWriter, r *http.Request, pub *rsa.PublicKey, issuer string) (*Identity, bool) {
	tokenStr, err := extractBearerToken(r)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), nil,
		)
		return nil, false
	}
	return verify(w, r, tokenStr, pub, issuer)
}

func verify(w http.ResponseWriter, r *http.Request, tokenStr string, pub *rsa.PublicKey, issuer string) (*Identity, bool) {
	id, vErr := ValidateToken(r.Context(), tokenStr, pub, issuer)
	if vErr != nil {
		if errors.Is(vErr, jwt.ErrTokenExpired) {
			utils.RespondErrorWithCode(
				w, http.StatusUnauthorized, utils.ErrCodeTokenExpired, "Token expired", nil, vErr,
			)
			return nil, false
		}
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid token", nil, vErr,
		)
		return nil, false
	}
	return id, true
}

// helper: read the token from Authorization: Bearer ...
func extractBearerToken(r *http.Request) (string, error) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return "", errMissingAuthHeader
	}
	tok := strings.TrimSpace(h[7:])
	if tok == "" {
		return "", errMissingAuthHeader
	}
	return tok, nil
}
