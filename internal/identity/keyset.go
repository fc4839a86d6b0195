package identity

import (
	"context"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// GoogleCertsURL publishes the keys that sign Google identity tokens.
const GoogleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"

// NewKeySet loads the JWKS document at url and keeps it refreshed in the
// background until ctx is cancelled. An unknown key id triggers at most one
// refetch every five minutes.
func NewKeySet(ctx context.Context, url string) (jwt.Keyfunc, error) {
	k, err := keyfunc.NewDefaultCtx(ctx, []string{url})
	if err != nil {
		return nil, fmt.Errorf("load jwks %s: %w", url, err)
	}
	return k.Keyfunc, nil
}
