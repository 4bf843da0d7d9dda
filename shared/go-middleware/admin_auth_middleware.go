package middleware

import (
	"crypto/rsa"
	"net/http"

	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

// AdminAuthMiddleware validates the bearer token and ensures the resolved
// role is admin or superadmin. Unauthenticated callers get 401, authenticated
// non-admins get 403.
func AdminAuthMiddleware(pub *rsa.PublicKey, issuer string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := authenticate(w, r, pub, issuer)
			if !ok {
				return
			}

			if !id.IsAdmin() {
				utils.Logger.WithField("user_id", id.UserID).Warn("Non-admin attempted admin route")
				utils.RespondErrorWithCode(
					w, http.StatusForbidden, utils.ErrCodeForbidden, "Insufficient permissions", nil,
				)
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
		})
	}
}
