package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/gscribe-backend/internal/identity"
	"github.com/stemsi/gscribe-backend/internal/model"
)

func TestTokenService_Refresh(t *testing.T) {
	user := model.UserToken{UserID: "setter-1", AccessToken: "old", RefreshToken: "r1"}

	tests := []struct {
		name       string
		refreshErr error
		subject    string
		verifyErr  error
		wantErr    error
	}{
		{name: "success", subject: "setter-1"},
		{name: "refresh token rejected", refreshErr: identity.ErrInvalidRefreshToken, wantErr: ErrInvalidStoredCredentials},
		{name: "identity mismatch", subject: "someone-else", wantErr: ErrInvalidStoredCredentials},
		{name: "unverifiable identity", verifyErr: identity.ErrInvalidIdentity, wantErr: ErrInvalidStoredCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{refreshFn: func(_ context.Context, rt string) (identity.Tokens, error) {
				if rt != "r1" {
					t.Errorf("refresh token = %q, want r1", rt)
				}
				if tt.refreshErr != nil {
					return identity.Tokens{}, tt.refreshErr
				}
				return identity.Tokens{AccessToken: "new", IDToken: "id"}, nil
			}}
			verifier := &fakeVerifier{verifyFn: func(context.Context, string) (string, error) {
				return tt.subject, tt.verifyErr
			}}

			svc := NewTokenService(provider, verifier, zerolog.Nop())
			got, err := svc.Refresh(context.Background(), user)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Refresh() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Refresh() error = %v", err)
			}
			if got.AccessToken != "new" || got.RefreshToken != "r1" || got.UserID != "setter-1" {
				t.Errorf("Refresh() = %+v", got)
			}
			if got.UpdatedAt.IsZero() {
				t.Error("UpdatedAt not set")
			}
		})
	}
}

func TestTokenService_ProviderOutage(t *testing.T) {
	outage := errors.New("connection refused")
	provider := &fakeProvider{refreshFn: func(context.Context, string) (identity.Tokens, error) {
		return identity.Tokens{}, outage
	}}
	svc := NewTokenService(provider, subjectVerifier(), zerolog.Nop())

	_, err := svc.Refresh(context.Background(), model.UserToken{UserID: "u"})
	if !errors.Is(err, outage) {
		t.Fatalf("Refresh() error = %v, want wrapped outage", err)
	}
	if errors.Is(err, ErrInvalidStoredCredentials) {
		t.Error("provider outage reported as invalid credentials")
	}
}
