package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/gscribe-backend/internal/model"
	"github.com/stemsi/gscribe-backend/internal/sheets"
)

// TokenRefresher produces a fresh access token for a user.
type TokenRefresher interface {
	Refresh(ctx context.Context, user model.UserToken) (model.UserToken, error)
}

// SheetOp is one spreadsheet call made with the given access token.
type SheetOp[T any] func(ctx context.Context, accessToken string) (T, error)

// SpreadsheetAccess runs spreadsheet calls with a single
// refresh-and-retry on a rejected access token.
type SpreadsheetAccess struct {
	refresher TokenRefresher
	tokens    UserTokenStore
	timeout   time.Duration
	log       zerolog.Logger
}

// NewSpreadsheetAccess creates a SpreadsheetAccess. Each attempt is bounded
// by timeout; zero disables the bound.
func NewSpreadsheetAccess(refresher TokenRefresher, tokens UserTokenStore, timeout time.Duration, log zerolog.Logger) *SpreadsheetAccess {
	return &SpreadsheetAccess{
		refresher: refresher,
		tokens:    tokens,
		timeout:   timeout,
		log:       log.With().Str("component", "spreadsheet_access").Logger(),
	}
}

func (a *SpreadsheetAccess) attempt(ctx context.Context, accessToken string, run func(context.Context, string) error) error {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	return run(ctx, accessToken)
}

// Execute runs op with user's access token. If the provider rejects the
// token, the token is refreshed once, persisted, and op is retried once.
// It returns op's result and the token that should be used for any
// further calls in the same request.
//
// Concurrent requests for the same user may each refresh; the last one
// to persist wins.
func Execute[T any](ctx context.Context, a *SpreadsheetAccess, user model.UserToken, op SheetOp[T]) (T, model.UserToken, error) {
	var result T
	run := func(ctx context.Context, accessToken string) error {
		var err error
		result, err = op(ctx, accessToken)
		return err
	}

	err := a.attempt(ctx, user.AccessToken, run)
	if err == nil {
		return result, user, nil
	}

	var zero T
	if !errors.Is(err, sheets.ErrUnauthorized) {
		a.log.Warn().Err(err).Str("user_id", user.UserID).Msg("Spreadsheet call failed")
		return zero, user, fmt.Errorf("%w: %w", ErrSpreadsheetAccess, err)
	}

	refreshed, err := a.refresher.Refresh(ctx, user)
	if err != nil {
		return zero, user, fmt.Errorf("%w: %w", ErrSpreadsheetAccess, err)
	}

	if err := a.tokens.Save(ctx, refreshed); err != nil {
		return zero, user, fmt.Errorf("persist refreshed token: %w", err)
	}
	a.log.Debug().Str("user_id", user.UserID).Msg("Access token refreshed")

	if err := a.attempt(ctx, refreshed.AccessToken, run); err != nil {
		a.log.Warn().Err(err).Str("user_id", user.UserID).Msg("Spreadsheet call failed after refresh")
		return zero, refreshed, fmt.Errorf("%w: %w", ErrSpreadsheetAccess, err)
	}
	return result, refreshed, nil
}

// Do is Execute for operations that return nothing.
func Do(ctx context.Context, a *SpreadsheetAccess, user model.UserToken, op func(ctx context.Context, accessToken string) error) (model.UserToken, error) {
	_, tok, err := Execute(ctx, a, user, func(ctx context.Context, accessToken string) (struct{}, error) {
		return struct{}{}, op(ctx, accessToken)
	})
	return tok, err
}
