// Package identity turns an inbound request into the identity key it claims.
//
// HeaderResolver trusts the header value as-is: any caller that sends a
// customer's key acts as that customer. BearerResolver only accepts keys
// carried in an HS256 token signed with the shared secret.
package identity

import (
	"errors"
	"net/http"
	"strings"

	"github.com/boddenberg/statement-ledger-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// HeaderResolver reads the identity key from a request header.
type HeaderResolver struct {
	Header string
}

// NewHeaderResolver creates a resolver for the given header name.
func NewHeaderResolver(header string) *HeaderResolver {
	return &HeaderResolver{Header: header}
}

func (h *HeaderResolver) ResolveIdentity(r *http.Request) (string, error) {
	key := r.Header.Get(h.Header)
	if key == "" {
		return "", &domain.ErrNotFound{Resource: "customer", ID: ""}
	}
	return key, nil
}

// BearerResolver reads the identity key from the "sub" claim of a bearer token.
type BearerResolver struct {
	secret []byte
}

// NewBearerResolver creates a resolver that verifies tokens with secret.
func NewBearerResolver(secret string) *BearerResolver {
	return &BearerResolver{secret: []byte(secret)}
}

func (b *BearerResolver) ResolveIdentity(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", &domain.ErrUnauthorized{Message: "missing bearer token"}
	}

	scheme, tokenString, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
		return "", &domain.ErrUnauthorized{Message: "invalid authorization header format"}
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return b.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", &domain.ErrUnauthorized{Message: "token expired"}
		}
		return "", &domain.ErrUnauthorized{Message: "invalid token"}
	}
	if claims.Subject == "" {
		return "", &domain.ErrUnauthorized{Message: "token has no subject"}
	}
	return claims.Subject, nil
}
