package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// valueInput makes the provider parse written values as if typed by a user.
const valueInput = "USER_ENTERED"

// GoogleClient talks to the Google Sheets v4 API.
type GoogleClient struct {
	opts []option.ClientOption
}

// NewGoogleClient creates a GoogleClient. Extra options (an endpoint for
// tests, for example) are applied after the per-call token source.
func NewGoogleClient(opts ...option.ClientOption) *GoogleClient {
	return &GoogleClient{opts: opts}
}

func (c *GoogleClient) service(ctx context.Context, accessToken string) (*sheetsapi.Service, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, c.opts...)
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

func (c *GoogleClient) ReadRange(ctx context.Context, spreadsheetID, rng, accessToken string) ([][]string, error) {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, classify(err)
	}

	grid := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		grid[i] = make([]string, len(row))
		for j, v := range row {
			grid[i][j] = fmt.Sprint(v)
		}
	}
	return grid, nil
}

func (c *GoogleClient) WriteRange(ctx context.Context, spreadsheetID, rng string, rows [][]string, accessToken string) error {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return err
	}

	_, err = svc.Spreadsheets.Values.Update(spreadsheetID, rng, valueRange(rows)).
		ValueInputOption(valueInput).
		Context(ctx).
		Do()
	return classify(err)
}

func (c *GoogleClient) AppendRange(ctx context.Context, spreadsheetID, rng string, rows [][]string, accessToken string) error {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return err
	}

	_, err = svc.Spreadsheets.Values.Append(spreadsheetID, rng, valueRange(rows)).
		ValueInputOption(valueInput).
		Context(ctx).
		Do()
	return classify(err)
}

func (c *GoogleClient) ClearRange(ctx context.Context, spreadsheetID, rng, accessToken string) error {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return err
	}

	_, err = svc.Spreadsheets.Values.Clear(spreadsheetID, rng, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).
		Do()
	return classify(err)
}

func (c *GoogleClient) ListSheetTitles(ctx context.Context, spreadsheetID, accessToken string) ([]string, error) {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	ss, err := svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify(err)
	}

	titles := make([]string, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

func (c *GoogleClient) AddSheet(ctx context.Context, spreadsheetID, title, accessToken string) error {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return err
	}

	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: title},
			},
		}},
	}
	_, err = svc.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	return classify(err)
}

func valueRange(rows [][]string) *sheetsapi.ValueRange {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = make([]interface{}, len(row))
		for j, v := range row {
			values[i][j] = v
		}
	}
	return &sheetsapi.ValueRange{Values: values}
}

// classify maps provider status codes onto the package errors.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrUnauthorized, gerr.Message)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrNotFound, gerr.Message)
		}
	}
	return fmt.Errorf("sheets api: %w", err)
}

var _ Client = (*GoogleClient)(nil)
