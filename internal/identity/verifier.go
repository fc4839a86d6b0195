// Package identity verifies Google identity tokens and talks to the Google
// OAuth token endpoint on behalf of paper setters.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidIdentity     = errors.New("invalid identity token")
	ErrInvalidAuthCode     = errors.New("authorization code rejected")
	ErrInvalidRefreshToken = errors.New("refresh token rejected")
)

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

// Verifier checks identity tokens issued for one OAuth client.
type Verifier struct {
	keys     jwt.Keyfunc
	audience string
}

// NewVerifier creates a Verifier accepting tokens whose audience is clientID,
// resolving signing keys through keys.
func NewVerifier(keys jwt.Keyfunc, clientID string) *Verifier {
	return &Verifier{keys: keys, audience: clientID}
}

// Verify validates signature, expiry, issuer and audience and returns the
// token subject.
func (v *Verifier) Verify(_ context.Context, raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, v.keys,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}

	if !googleIssuers[claims.Issuer] {
		return "", fmt.Errorf("%w: unexpected issuer %q", ErrInvalidIdentity, claims.Issuer)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidIdentity)
	}
	return claims.Subject, nil
}
