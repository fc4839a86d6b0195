package service

import (
	"context"
	"fmt"

	"github.com/stemsi/gscribe-backend/internal/examsheet"
	"github.com/stemsi/gscribe-backend/internal/model"
	"github.com/stemsi/gscribe-backend/internal/sheets"
)

// templateLastColumn is the last column of the exam template (points).
const templateLastColumn = "G"

// ExamSourceReader pulls the raw cell grid of an exam sheet.
type ExamSourceReader struct {
	client sheets.Client
	access *SpreadsheetAccess
}

// NewExamSourceReader creates a new ExamSourceReader.
func NewExamSourceReader(client sheets.Client, access *SpreadsheetAccess) *ExamSourceReader {
	return &ExamSourceReader{client: client, access: access}
}

// Read counts the rows of the sheet from column A, then reads the template
// columns of exactly that many rows.
func (r *ExamSourceReader) Read(ctx context.Context, owner model.UserToken, src examsheet.Source) ([][]string, model.UserToken, error) {
	column, owner, err := Execute(ctx, r.access, owner, func(ctx context.Context, accessToken string) ([][]string, error) {
		return r.client.ReadRange(ctx, src.SpreadsheetID, sheets.A1(src.SheetName, "A:A"), accessToken)
	})
	if err != nil {
		return nil, owner, err
	}
	if len(column) == 0 {
		return [][]string{}, owner, nil
	}

	cells := fmt.Sprintf("A1:%s%d", templateLastColumn, len(column))
	grid, owner, err := Execute(ctx, r.access, owner, func(ctx context.Context, accessToken string) ([][]string, error) {
		return r.client.ReadRange(ctx, src.SpreadsheetID, sheets.A1(src.SheetName, cells), accessToken)
	})
	if err != nil {
		return nil, owner, err
	}
	return grid, owner, nil
}
