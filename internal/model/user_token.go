package model

import "time"

// UserToken holds a paper setter's OAuth credentials for the spreadsheet provider.
// It is a value: refreshing produces a new UserToken which the caller persists.
type UserToken struct {
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// WithAccessToken returns a copy of t carrying a new access token.
func (t UserToken) WithAccessToken(accessToken string, at time.Time) UserToken {
	t.AccessToken = accessToken
	t.UpdatedAt = at
	return t
}

// AuthenticateRequest carries the authorization code from the consent screen.
type AuthenticateRequest struct {
	AuthCode string `json:"auth_code" binding:"required"`
}
