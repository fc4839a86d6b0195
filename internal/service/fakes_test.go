package service

import (
	"context"
	"slices"
	"sync"

	"github.com/stemsi/gscribe-backend/internal/identity"
	"github.com/stemsi/gscribe-backend/internal/model"
	"github.com/stemsi/gscribe-backend/internal/sheets"
)

// fakeSheets is a single in-memory spreadsheet. Tokens other than
// validToken are rejected unless validToken is empty.
type fakeSheets struct {
	mu         sync.Mutex
	tabs       map[string][][]string
	validToken string
	failAppend error
	calls      []string
}

func newFakeSheets(validToken string) *fakeSheets {
	return &fakeSheets{tabs: make(map[string][][]string), validToken: validToken}
}

func (f *fakeSheets) check(op, token string) error {
	f.calls = append(f.calls, op)
	if f.validToken != "" && token != f.validToken {
		return sheets.ErrUnauthorized
	}
	return nil
}

func (f *fakeSheets) tab(name string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.tabs[name])
}

func (f *fakeSheets) ReadRange(_ context.Context, _, rng, token string) ([][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("read", token); err != nil {
		return nil, err
	}
	sheet, cells := sheets.SplitA1(rng)
	rows, ok := f.tabs[sheet]
	if !ok {
		return nil, sheets.ErrNotFound
	}
	if cells == "A:A" {
		out := make([][]string, len(rows))
		for i, r := range rows {
			out[i] = r[:min(1, len(r))]
		}
		return out, nil
	}
	return slices.Clone(rows), nil
}

func (f *fakeSheets) WriteRange(_ context.Context, _, rng string, rows [][]string, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("write", token); err != nil {
		return err
	}
	sheet, _ := sheets.SplitA1(rng)
	existing := f.tabs[sheet]
	for i, r := range rows {
		if i < len(existing) {
			existing[i] = r
		} else {
			existing = append(existing, r)
		}
	}
	f.tabs[sheet] = existing
	return nil
}

func (f *fakeSheets) AppendRange(_ context.Context, _, rng string, rows [][]string, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("append", token); err != nil {
		return err
	}
	if f.failAppend != nil {
		return f.failAppend
	}
	sheet, _ := sheets.SplitA1(rng)
	if _, ok := f.tabs[sheet]; !ok {
		return sheets.ErrNotFound
	}
	f.tabs[sheet] = append(f.tabs[sheet], rows...)
	return nil
}

func (f *fakeSheets) ClearRange(_ context.Context, _, rng, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("clear", token); err != nil {
		return err
	}
	sheet, _ := sheets.SplitA1(rng)
	f.tabs[sheet] = nil
	return nil
}

func (f *fakeSheets) ListSheetTitles(_ context.Context, _, token string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("list", token); err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(f.tabs))
	for t := range f.tabs {
		titles = append(titles, t)
	}
	slices.Sort(titles)
	return titles, nil
}

func (f *fakeSheets) AddSheet(_ context.Context, _, title, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("add", token); err != nil {
		return err
	}
	f.tabs[title] = nil
	return nil
}

type fakeProvider struct {
	exchangeFn func(ctx context.Context, code string) (identity.Tokens, error)
	refreshFn  func(ctx context.Context, refreshToken string) (identity.Tokens, error)
}

func (p *fakeProvider) ExchangeAuthCode(ctx context.Context, code string) (identity.Tokens, error) {
	return p.exchangeFn(ctx, code)
}

func (p *fakeProvider) Refresh(ctx context.Context, refreshToken string) (identity.Tokens, error) {
	return p.refreshFn(ctx, refreshToken)
}

type fakeVerifier struct {
	verifyFn func(ctx context.Context, idToken string) (string, error)
}

func (v *fakeVerifier) Verify(ctx context.Context, idToken string) (string, error) {
	return v.verifyFn(ctx, idToken)
}

// subjectVerifier treats the identity token itself as the subject.
func subjectVerifier() *fakeVerifier {
	return &fakeVerifier{verifyFn: func(_ context.Context, idToken string) (string, error) {
		return idToken, nil
	}}
}

type fakeRefresher struct {
	calls     int
	refreshFn func(ctx context.Context, user model.UserToken) (model.UserToken, error)
}

func (r *fakeRefresher) Refresh(ctx context.Context, user model.UserToken) (model.UserToken, error) {
	r.calls++
	return r.refreshFn(ctx, user)
}

// renewTo is a refresher that always hands out accessToken.
func renewTo(accessToken string) *fakeRefresher {
	return &fakeRefresher{refreshFn: func(_ context.Context, user model.UserToken) (model.UserToken, error) {
		user.AccessToken = accessToken
		return user, nil
	}}
}

func examGrid() [][]string {
	return [][]string{
		{"Duration", "45"},
		{"Type", "Statement", "A", "B", "C", "D", "Points"},
		{"MCQ", "Capital of France?", "Paris", "Rome", "Oslo", "Bern", "2"},
		{"SUBJECTIVE", "Explain gravity.", "", "", "", "", "5"},
	}
}
