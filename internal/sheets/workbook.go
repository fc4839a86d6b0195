package sheets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/xuri/excelize/v2"
)

// WorkbookClient serves spreadsheets from local .xlsx files, one workbook
// per spreadsheet ID. It ignores access tokens and is meant for local runs
// and tests.
type WorkbookClient struct {
	dir string
	mu  sync.Mutex
}

// NewWorkbookClient stores workbooks as <dir>/<spreadsheetID>.xlsx.
func NewWorkbookClient(dir string) *WorkbookClient {
	return &WorkbookClient{dir: dir}
}

func (c *WorkbookClient) path(spreadsheetID string) (string, error) {
	if spreadsheetID == "" || strings.ContainsAny(spreadsheetID, `/\`) || strings.HasPrefix(spreadsheetID, ".") {
		return "", fmt.Errorf("%w: invalid spreadsheet id %q", ErrNotFound, spreadsheetID)
	}
	return filepath.Join(c.dir, spreadsheetID+".xlsx"), nil
}

// open runs fn against the workbook and saves it when save is set.
func (c *WorkbookClient) open(spreadsheetID string, save bool, fn func(f *excelize.File) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.path(spreadsheetID)
	if err != nil {
		return err
	}

	f, err := excelize.OpenFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, spreadsheetID)
		}
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if err := fn(f); err != nil {
		return err
	}
	if save {
		if err := f.Save(); err != nil {
			return fmt.Errorf("save workbook: %w", err)
		}
	}
	return nil
}

func (c *WorkbookClient) ReadRange(ctx context.Context, spreadsheetID, rng, _ string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out [][]string
	err := c.open(spreadsheetID, false, func(f *excelize.File) error {
		sheet, cells := SplitA1(rng)
		if !hasSheet(f, sheet) {
			return fmt.Errorf("%w: sheet %q", ErrNotFound, sheet)
		}
		b, err := parseBounds(cells)
		if err != nil {
			return err
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return fmt.Errorf("read rows: %w", err)
		}
		out = b.slice(rows)
		return nil
	})
	return out, err
}

func (c *WorkbookClient) WriteRange(ctx context.Context, spreadsheetID, rng string, rows [][]string, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.open(spreadsheetID, true, func(f *excelize.File) error {
		sheet, cells := SplitA1(rng)
		if !hasSheet(f, sheet) {
			return fmt.Errorf("%w: sheet %q", ErrNotFound, sheet)
		}
		b, err := parseBounds(cells)
		if err != nil {
			return err
		}
		return writeRows(f, sheet, b.firstCol, b.firstRow, rows)
	})
}

func (c *WorkbookClient) AppendRange(ctx context.Context, spreadsheetID, rng string, rows [][]string, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.open(spreadsheetID, true, func(f *excelize.File) error {
		sheet, cells := SplitA1(rng)
		if !hasSheet(f, sheet) {
			return fmt.Errorf("%w: sheet %q", ErrNotFound, sheet)
		}
		b, err := parseBounds(cells)
		if err != nil {
			return err
		}

		existing, err := f.GetRows(sheet)
		if err != nil {
			return fmt.Errorf("read rows: %w", err)
		}
		next := len(trimRows(existing)) + 1
		if next < b.firstRow {
			next = b.firstRow
		}
		return writeRows(f, sheet, b.firstCol, next, rows)
	})
}

func (c *WorkbookClient) ClearRange(ctx context.Context, spreadsheetID, rng, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.open(spreadsheetID, true, func(f *excelize.File) error {
		sheet, cells := SplitA1(rng)
		if !hasSheet(f, sheet) {
			return fmt.Errorf("%w: sheet %q", ErrNotFound, sheet)
		}
		b, err := parseBounds(cells)
		if err != nil {
			return err
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return fmt.Errorf("read rows: %w", err)
		}
		for r := b.firstRow; r <= len(rows) && (b.lastRow == 0 || r <= b.lastRow); r++ {
			for col := b.firstCol; col <= len(rows[r-1]) && (b.lastCol == 0 || col <= b.lastCol); col++ {
				name, err := excelize.CoordinatesToCellName(col, r)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(sheet, name, nil); err != nil {
					return fmt.Errorf("clear %s: %w", name, err)
				}
			}
		}
		return nil
	})
}

func (c *WorkbookClient) ListSheetTitles(ctx context.Context, spreadsheetID, _ string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var titles []string
	err := c.open(spreadsheetID, false, func(f *excelize.File) error {
		titles = f.GetSheetList()
		return nil
	})
	return titles, err
}

func (c *WorkbookClient) AddSheet(ctx context.Context, spreadsheetID, title, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.open(spreadsheetID, true, func(f *excelize.File) error {
		if hasSheet(f, title) {
			return fmt.Errorf("sheet %q already exists", title)
		}
		if _, err := f.NewSheet(title); err != nil {
			return fmt.Errorf("add sheet: %w", err)
		}
		return nil
	})
}

func hasSheet(f *excelize.File, sheet string) bool {
	return slices.Contains(f.GetSheetList(), sheet)
}

func writeRows(f *excelize.File, sheet string, col, row int, rows [][]string) error {
	for i, r := range rows {
		start, err := excelize.CoordinatesToCellName(col, row+i)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(r))
		for j, v := range r {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			return fmt.Errorf("write row %d: %w", row+i, err)
		}
	}
	return nil
}

// bounds is a parsed A1 cell range. Zero last values mean unbounded.
type bounds struct {
	firstCol, firstRow int
	lastCol, lastRow   int
}

func parseBounds(cells string) (bounds, error) {
	b := bounds{firstCol: 1, firstRow: 1}
	if cells == "" {
		return b, nil
	}

	from, to, isRange := strings.Cut(cells, ":")
	fc, fr, err := parseRef(from)
	if err != nil {
		return b, err
	}
	if fc > 0 {
		b.firstCol = fc
	}
	if fr > 0 {
		b.firstRow = fr
	}

	if !isRange {
		// A single cell anchors a write; reads of it return that cell only.
		b.lastCol, b.lastRow = b.firstCol, b.firstRow
		if fr == 0 {
			b.lastRow = 0
		}
		return b, nil
	}

	b.lastCol, b.lastRow, err = parseRef(to)
	return b, err
}

// parseRef parses "B3", "B" or "3". Missing parts are returned as zero.
func parseRef(ref string) (col, row int, err error) {
	ref = strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(ref, "$", "")))
	split := strings.IndexFunc(ref, unicode.IsDigit)

	switch {
	case split == 0:
		_, err = fmt.Sscanf(ref, "%d", &row)
	case split < 0:
		col, err = excelize.ColumnNameToNumber(ref)
	default:
		col, row, err = excelize.CellNameToCoordinates(ref)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range reference %q: %w", ref, err)
	}
	return col, row, nil
}

// slice cuts rows down to b the way the Sheets API does: trailing empty
// cells and rows are dropped.
func (b bounds) slice(rows [][]string) [][]string {
	var out [][]string
	for r := b.firstRow; r <= len(rows); r++ {
		if b.lastRow > 0 && r > b.lastRow {
			break
		}
		row := rows[r-1]
		var cells []string
		for col := b.firstCol; col <= len(row); col++ {
			if b.lastCol > 0 && col > b.lastCol {
				break
			}
			cells = append(cells, row[col-1])
		}
		out = append(out, trimCells(cells))
	}
	return trimRows(out)
}

func trimCells(row []string) []string {
	n := len(row)
	for n > 0 && row[n-1] == "" {
		n--
	}
	if n == 0 {
		return []string{}
	}
	return row[:n]
}

func trimRows(rows [][]string) [][]string {
	n := len(rows)
	for n > 0 && len(trimCells(rows[n-1])) == 0 {
		n--
	}
	return rows[:n]
}

var _ Client = (*WorkbookClient)(nil)
