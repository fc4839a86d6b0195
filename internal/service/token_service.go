package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/gscribe-backend/internal/identity"
	"github.com/stemsi/gscribe-backend/internal/model"
)

// TokenService refreshes paper setters' access tokens.
type TokenService struct {
	provider TokenProvider
	verifier IdentityVerifier
	now      func() time.Time
	log      zerolog.Logger
}

// NewTokenService creates a new TokenService. verifier must accept identity
// tokens minted for the paper setter OAuth client.
func NewTokenService(provider TokenProvider, verifier IdentityVerifier, log zerolog.Logger) *TokenService {
	return &TokenService{
		provider: provider,
		verifier: verifier,
		now:      time.Now,
		log:      log.With().Str("component", "token_service").Logger(),
	}
}

// Refresh exchanges user's refresh token for a new access token and returns
// the updated token. It does not persist it.
func (s *TokenService) Refresh(ctx context.Context, user model.UserToken) (model.UserToken, error) {
	tok, err := s.provider.Refresh(ctx, user.RefreshToken)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidRefreshToken) {
			s.log.Warn().
				Err(err).
				Str("user_id", user.UserID).
				Msg("Refresh token rejected by provider")
			return user, fmt.Errorf("%w: refresh token rejected", ErrInvalidStoredCredentials)
		}
		return user, fmt.Errorf("refresh access token: %w", err)
	}

	subject, err := s.verifier.Verify(ctx, tok.IDToken)
	if err != nil || subject != user.UserID {
		s.log.Error().
			Err(err).
			Str("user_id", user.UserID).
			Str("token_subject", subject).
			Msg("Identity mismatch after refresh")
		return user, fmt.Errorf("%w: identity mismatch", ErrInvalidStoredCredentials)
	}

	return user.WithAccessToken(tok.AccessToken, s.now().UTC()), nil
}
