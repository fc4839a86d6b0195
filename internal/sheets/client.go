// Package sheets reads and writes spreadsheet ranges on behalf of a paper setter.
package sheets

import (
	"context"
	"errors"
)

var (
	// ErrUnauthorized means the provider rejected the access token.
	ErrUnauthorized = errors.New("spreadsheet access token rejected")
	// ErrNotFound means the spreadsheet, sheet or range does not exist.
	ErrNotFound = errors.New("spreadsheet not found")
)

// Client is a spreadsheet provider. Every call is authenticated with the
// given access token; implementations map a rejected token to ErrUnauthorized.
type Client interface {
	ReadRange(ctx context.Context, spreadsheetID, rng, accessToken string) ([][]string, error)
	WriteRange(ctx context.Context, spreadsheetID, rng string, rows [][]string, accessToken string) error
	AppendRange(ctx context.Context, spreadsheetID, rng string, rows [][]string, accessToken string) error
	ClearRange(ctx context.Context, spreadsheetID, rng, accessToken string) error
	ListSheetTitles(ctx context.Context, spreadsheetID, accessToken string) ([]string, error)
	AddSheet(ctx context.Context, spreadsheetID, title, accessToken string) error
}
