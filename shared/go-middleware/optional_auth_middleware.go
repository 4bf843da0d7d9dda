package middleware

import (
	"crypto/rsa"
	"net/http"

	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

// OptionalAuthMiddleware attaches the caller identity when the request
// carries a valid bearer token. A missing, expired or otherwise invalid
// token never rejects the request; it is served anonymously.
func OptionalAuthMiddleware(pub *rsa.PublicKey, issuer string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := extractBearerToken(r)
			if err != nil {
				next.ServeHTTP(w, r) // unauthenticated – allowed
				return
			}
			id, vErr := ValidateToken(r.Context(), tokenStr, pub, issuer)
			if vErr != nil {
				utils.Logger.WithError(vErr).Debug("Ignoring unusable token on optional-auth route")
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
		})
	}
}
