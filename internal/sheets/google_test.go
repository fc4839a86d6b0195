package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"google.golang.org/api/option"
)

// fakeSheetsAPI serves the subset of the Sheets REST API the client uses.
func fakeSheetsAPI(t *testing.T, validToken string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.Header.Get("Authorization") != "Bearer "+validToken {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":401,"message":"Request had invalid authentication credentials.","status":"UNAUTHENTICATED"}}`))
			return
		}

		switch {
		case strings.Contains(r.URL.Path, "/spreadsheets/missing"):
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Requested entity was not found.","status":"NOT_FOUND"}}`))
		case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/values/"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"range":          "Exam!A1:B2",
				"majorDimension": "ROWS",
				"values":         [][]any{{"Duration", "45"}, {"Type"}},
			})
		case r.Method == http.MethodGet:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"sheets": []any{
					map[string]any{"properties": map[string]any{"title": "Exam"}},
					map[string]any{"properties": map[string]any{"title": "Responses_1"}},
				},
			})
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	}))
}

func TestGoogleClient_ReadRange(t *testing.T) {
	srv := fakeSheetsAPI(t, "good")
	defer srv.Close()

	c := NewGoogleClient(option.WithEndpoint(srv.URL + "/"))

	got, err := c.ReadRange(context.Background(), "sheet-1", A1("Exam", "A1:B2"), "good")
	if err != nil {
		t.Fatalf("ReadRange() error = %v", err)
	}
	want := [][]string{{"Duration", "45"}, {"Type"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadRange() = %v, want %v", got, want)
	}
}

func TestGoogleClient_ClassifiesErrors(t *testing.T) {
	srv := fakeSheetsAPI(t, "good")
	defer srv.Close()

	c := NewGoogleClient(option.WithEndpoint(srv.URL + "/"))
	ctx := context.Background()

	if _, err := c.ReadRange(ctx, "sheet-1", "Exam!A:A", "expired"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("ReadRange() with bad token error = %v, want ErrUnauthorized", err)
	}
	if err := c.AppendRange(ctx, "sheet-1", "Exam", [][]string{{"x"}}, "expired"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("AppendRange() with bad token error = %v, want ErrUnauthorized", err)
	}
	if _, err := c.ListSheetTitles(ctx, "missing", "good"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ListSheetTitles() on missing spreadsheet error = %v, want ErrNotFound", err)
	}
}

func TestGoogleClient_ListSheetTitles(t *testing.T) {
	srv := fakeSheetsAPI(t, "good")
	defer srv.Close()

	c := NewGoogleClient(option.WithEndpoint(srv.URL + "/"))

	titles, err := c.ListSheetTitles(context.Background(), "sheet-1", "good")
	if err != nil {
		t.Fatalf("ListSheetTitles() error = %v", err)
	}
	if !reflect.DeepEqual(titles, []string{"Exam", "Responses_1"}) {
		t.Errorf("ListSheetTitles() = %v", titles)
	}
}
