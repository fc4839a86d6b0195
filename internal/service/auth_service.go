package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/gscribe-backend/internal/model"
	"github.com/stemsi/gscribe-backend/internal/repository"
)

// AuthService links a paper setter's identity to offline spreadsheet credentials.
type AuthService struct {
	provider TokenProvider
	verifier IdentityVerifier
	tokens   UserTokenStore
	now      func() time.Time
	log      zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(provider TokenProvider, verifier IdentityVerifier, tokens UserTokenStore, log zerolog.Logger) *AuthService {
	return &AuthService{
		provider: provider,
		verifier: verifier,
		tokens:   tokens,
		now:      time.Now,
		log:      log.With().Str("component", "auth_service").Logger(),
	}
}

// Authenticate exchanges an authorization code and stores the resulting
// credentials for userID. The code must have been issued to the same user.
func (s *AuthService) Authenticate(ctx context.Context, userID, authCode string) error {
	tok, err := s.provider.ExchangeAuthCode(ctx, authCode)
	if err != nil {
		return err
	}

	subject, err := s.verifier.Verify(ctx, tok.IDToken)
	if err != nil {
		return fmt.Errorf("verify exchanged identity: %w", err)
	}
	if subject != userID {
		s.log.Warn().
			Str("user_id", userID).
			Str("code_subject", subject).
			Msg("Authorization code issued to another user")
		return ErrMalformedRequest
	}

	// Google omits the refresh token when consent was granted earlier.
	refresh := tok.RefreshToken
	if refresh == "" {
		if existing, err := s.tokens.Get(ctx, userID); err == nil {
			refresh = existing.RefreshToken
		}
	}

	err = s.tokens.Save(ctx, model.UserToken{
		UserID:       userID,
		AccessToken:  tok.AccessToken,
		RefreshToken: refresh,
		UpdatedAt:    s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("save user token: %w", err)
	}

	s.log.Info().Str("user_id", userID).Msg("User credentials stored")
	return nil
}

// Check reports whether userID has stored credentials.
func (s *AuthService) Check(ctx context.Context, userID string) error {
	_, err := s.tokens.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotAuthorized
	}
	return err
}
