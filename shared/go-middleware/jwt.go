package middleware

import (
	"context"
	"crypto/rsa"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var errMissingSubject = errors.New("missing subject claim")

// ValidateToken checks the token's RSA signature, requires an unexpired
// "exp", matches "iss" when an issuer is configured and returns the caller
// identity with its role resolved.
func ValidateToken(
	_ context.Context,
	tokenString string,
	publicKey *rsa.PublicKey,
	issuer string,
) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return publicKey, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errMissingSubject
	}

	id := &Identity{
		UserID: sub,
		Role:   ResolveRole(claims),
	}
	id.Email, _ = claims["email"].(string)
	id.Name, _ = claims["name"].(string)
	id.Picture, _ = claims["picture"].(string)
	return id, nil
}
