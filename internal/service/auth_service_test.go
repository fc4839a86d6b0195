package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/gscribe-backend/internal/identity"
	"github.com/stemsi/gscribe-backend/internal/repository"
)

func exchangeFor(subject string) *fakeProvider {
	return &fakeProvider{exchangeFn: func(_ context.Context, code string) (identity.Tokens, error) {
		if code == "bad" {
			return identity.Tokens{}, identity.ErrInvalidAuthCode
		}
		return identity.Tokens{AccessToken: "at-" + code, RefreshToken: "rt-" + code, IDToken: subject}, nil
	}}
}

func TestAuthService_Authenticate(t *testing.T) {
	repos := repository.NewMemoryRepositories()
	svc := NewAuthService(exchangeFor("setter-1"), subjectVerifier(), repos.Tokens, zerolog.Nop())
	ctx := context.Background()

	if err := svc.Check(ctx, "setter-1"); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("Check() before authenticate = %v, want ErrNotAuthorized", err)
	}

	if err := svc.Authenticate(ctx, "setter-1", "code1"); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if err := svc.Check(ctx, "setter-1"); err != nil {
		t.Fatalf("Check() after authenticate = %v", err)
	}

	tok, _ := repos.Tokens.Get(ctx, "setter-1")
	if tok.AccessToken != "at-code1" || tok.RefreshToken != "rt-code1" {
		t.Errorf("stored token = %+v", tok)
	}

	// Re-authenticating replaces the stored credentials.
	if err := svc.Authenticate(ctx, "setter-1", "code2"); err != nil {
		t.Fatalf("second Authenticate() error = %v", err)
	}
	tok, _ = repos.Tokens.Get(ctx, "setter-1")
	if tok.RefreshToken != "rt-code2" {
		t.Errorf("refresh token = %q, want rt-code2", tok.RefreshToken)
	}
}

func TestAuthService_AuthenticateKeepsRefreshToken(t *testing.T) {
	repos := repository.NewMemoryRepositories()
	ctx := context.Background()

	first := NewAuthService(exchangeFor("setter-1"), subjectVerifier(), repos.Tokens, zerolog.Nop())
	if err := first.Authenticate(ctx, "setter-1", "code1"); err != nil {
		t.Fatal(err)
	}

	noRefresh := &fakeProvider{exchangeFn: func(context.Context, string) (identity.Tokens, error) {
		return identity.Tokens{AccessToken: "at-again", IDToken: "setter-1"}, nil
	}}
	again := NewAuthService(noRefresh, subjectVerifier(), repos.Tokens, zerolog.Nop())
	if err := again.Authenticate(ctx, "setter-1", "code2"); err != nil {
		t.Fatal(err)
	}

	tok, _ := repos.Tokens.Get(ctx, "setter-1")
	if tok.AccessToken != "at-again" || tok.RefreshToken != "rt-code1" {
		t.Errorf("stored token = %+v", tok)
	}
}

func TestAuthService_AuthenticateErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("code for another user", func(t *testing.T) {
		repos := repository.NewMemoryRepositories()
		svc := NewAuthService(exchangeFor("setter-2"), subjectVerifier(), repos.Tokens, zerolog.Nop())

		if err := svc.Authenticate(ctx, "setter-1", "code1"); !errors.Is(err, ErrMalformedRequest) {
			t.Fatalf("Authenticate() error = %v, want ErrMalformedRequest", err)
		}
		if _, err := repos.Tokens.Get(ctx, "setter-1"); !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("token stored for mismatched code: %v", err)
		}
	})

	t.Run("rejected code", func(t *testing.T) {
		repos := repository.NewMemoryRepositories()
		svc := NewAuthService(exchangeFor("setter-1"), subjectVerifier(), repos.Tokens, zerolog.Nop())

		if err := svc.Authenticate(ctx, "setter-1", "bad"); !errors.Is(err, identity.ErrInvalidAuthCode) {
			t.Fatalf("Authenticate() error = %v, want ErrInvalidAuthCode", err)
		}
	})
}
