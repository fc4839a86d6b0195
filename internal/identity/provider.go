package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// SpreadsheetsScope grants read and write access to the user's spreadsheets.
const SpreadsheetsScope = "https://www.googleapis.com/auth/spreadsheets"

// Tokens is what the provider returns for a code exchange or refresh.
// RefreshToken is empty after a refresh.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
}

// GoogleProvider exchanges authorization codes and refresh tokens with
// Google's OAuth token endpoint.
type GoogleProvider struct {
	conf   *oauth2.Config
	client *http.Client
}

// GoogleProviderConfig configures a GoogleProvider. TokenURL overrides
// Google's token endpoint.
type GoogleProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	TokenURL     string
	HTTPClient   *http.Client
}

func NewGoogleProvider(cfg GoogleProviderConfig) *GoogleProvider {
	endpoint := google.Endpoint
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}
	return &GoogleProvider{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"openid", "email", SpreadsheetsScope},
		},
		client: cfg.HTTPClient,
	}
}

func (p *GoogleProvider) context(ctx context.Context) context.Context {
	if p.client != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, p.client)
	}
	return ctx
}

// ExchangeAuthCode trades a consent-screen code for offline credentials.
func (p *GoogleProvider) ExchangeAuthCode(ctx context.Context, code string) (Tokens, error) {
	tok, err := p.conf.Exchange(p.context(ctx), code, oauth2.AccessTypeOffline)
	if err != nil {
		return Tokens{}, providerErr(ErrInvalidAuthCode, err)
	}

	out := Tokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		IDToken:      idToken(tok),
	}
	if out.IDToken == "" {
		return Tokens{}, fmt.Errorf("%w: response carried no id_token", ErrInvalidAuthCode)
	}
	return out, nil
}

// Refresh obtains a new access token for a stored refresh token.
func (p *GoogleProvider) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	src := p.conf.TokenSource(p.context(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return Tokens{}, providerErr(ErrInvalidRefreshToken, err)
	}

	out := Tokens{
		AccessToken: tok.AccessToken,
		IDToken:     idToken(tok),
	}
	if out.IDToken == "" {
		return Tokens{}, fmt.Errorf("%w: response carried no id_token", ErrInvalidRefreshToken)
	}
	return out, nil
}

func idToken(tok *oauth2.Token) string {
	s, _ := tok.Extra("id_token").(string)
	return s
}

// providerErr keeps transport failures distinct from provider rejections.
func providerErr(rejected, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		return fmt.Errorf("%w: %s", rejected, re.ErrorCode)
	}
	return fmt.Errorf("token endpoint: %w", err)
}
