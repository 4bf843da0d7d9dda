package middleware

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

type contextKey string

const (
	ContextKeyUserID   = contextKey("userID")
	ContextKeyIdentity = contextKey("identity")
)

// Role is the single capability enumeration carried by an authenticated
// caller. It is resolved once, when the token is verified.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// ParseRole maps a claim value onto a known Role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return Role(s), true
	}
	return "", false
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Identity is the verified caller attached to the request context.
type Identity struct {
	UserID  string
	Email   string
	Name    string
	Picture string
	Role    Role
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role.IsAdmin()
}

// ResolveRole reads the explicit "role" claim; tokens minted before roles
// existed carry a boolean "admin" claim instead.
func ResolveRole(claims jwt.MapClaims) Role {
	if s, ok := claims["role"].(string); ok {
		if r, ok := ParseRole(s); ok {
			return r
		}
	}
	if admin, ok := claims["admin"].(bool); ok && admin {
		return RoleAdmin
	}
	return RoleUser
}

// IdentityFromContext returns the caller attached by one of the auth
// middlewares.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(ContextKeyIdentity).(*Identity)
	return id, ok && id != nil
}

// CanActFor reports whether the caller may read or mutate data owned by
// userID: owners always can, admins can act for anyone.
func CanActFor(ctx context.Context, userID string) bool {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return false
	}
	return id.UserID == userID || id.IsAdmin()
}

func withIdentity(ctx context.Context, id *Identity) context.Context {
	ctx = context.WithValue(ctx, ContextKeyUserID, id.UserID)
	return context.WithValue(ctx, ContextKeyIdentity, id)
}

// RequireSelfOrAdmin writes a 403 and returns false unless the caller owns
// userID or is an admin.
func RequireSelfOrAdmin(w http.ResponseWriter, r *http.Request, userID string) bool {
	if CanActFor(r.Context(), userID) {
		return true
	}
	utils.RespondErrorWithCode(
		w, http.StatusForbidden, utils.ErrCodeForbidden, "Insufficient permissions", nil,
	)
	return false
}
