package sheets

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

func newWorkbook(t *testing.T, dir, id, sheet string, rows [][]string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	if err := writeRows(f, sheet, 1, 1, rows); err != nil {
		t.Fatalf("write rows: %v", err)
	}
	if err := f.SaveAs(filepath.Join(dir, id+".xlsx")); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
}

func TestWorkbookClient_ReadRange(t *testing.T) {
	dir := t.TempDir()
	newWorkbook(t, dir, "exam-1", "Mid Term", [][]string{
		{"Duration", "30"},
		{"Type", "Statement", "A", "B", "C", "D", "Points"},
		{"SUBJECTIVE", "Why?", "", "", "", "", "4", "ignored"},
	})
	c := NewWorkbookClient(dir)
	ctx := context.Background()

	col, err := c.ReadRange(ctx, "exam-1", A1("Mid Term", "A:A"), "")
	if err != nil {
		t.Fatalf("ReadRange(A:A) error = %v", err)
	}
	if len(col) != 3 {
		t.Fatalf("ReadRange(A:A) returned %d rows, want 3", len(col))
	}

	got, err := c.ReadRange(ctx, "exam-1", A1("Mid Term", "A1:G3"), "")
	if err != nil {
		t.Fatalf("ReadRange(A1:G3) error = %v", err)
	}
	want := [][]string{
		{"Duration", "30"},
		{"Type", "Statement", "A", "B", "C", "D", "Points"},
		{"SUBJECTIVE", "Why?", "", "", "", "", "4"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadRange(A1:G3) = %v, want %v", got, want)
	}
}

func TestWorkbookClient_NotFound(t *testing.T) {
	dir := t.TempDir()
	newWorkbook(t, dir, "exam-1", "Exam", [][]string{{"x"}})
	c := NewWorkbookClient(dir)
	ctx := context.Background()

	if _, err := c.ReadRange(ctx, "missing", A1("Exam", "A:A"), ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing workbook: error = %v, want ErrNotFound", err)
	}
	if _, err := c.ReadRange(ctx, "exam-1", A1("Nope", "A:A"), ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing sheet: error = %v, want ErrNotFound", err)
	}
	if _, err := c.ListSheetTitles(ctx, "../exam-1", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("path traversal: error = %v, want ErrNotFound", err)
	}
}

func TestWorkbookClient_ResponseSheetLifecycle(t *testing.T) {
	dir := t.TempDir()
	newWorkbook(t, dir, "exam-1", "Exam", [][]string{{"Duration", "10"}})
	c := NewWorkbookClient(dir)
	ctx := context.Background()
	sheet := "Responses_7"

	if err := c.AddSheet(ctx, "exam-1", sheet, ""); err != nil {
		t.Fatalf("AddSheet() error = %v", err)
	}
	if err := c.AddSheet(ctx, "exam-1", sheet, ""); err == nil {
		t.Error("AddSheet() on an existing sheet should fail")
	}

	titles, err := c.ListSheetTitles(ctx, "exam-1", "")
	if err != nil {
		t.Fatalf("ListSheetTitles() error = %v", err)
	}
	if !reflect.DeepEqual(titles, []string{"Exam", sheet}) {
		t.Errorf("ListSheetTitles() = %v", titles)
	}

	header := [][]string{{"Start time", "RollNumber", "Q1", "Final Points"}}
	if err := c.WriteRange(ctx, "exam-1", A1(sheet, "A1"), header, ""); err != nil {
		t.Fatalf("WriteRange() error = %v", err)
	}
	for _, row := range [][]string{{"t1", "1", "a", "-"}, {"t2", "2", "b", "-"}} {
		if err := c.AppendRange(ctx, "exam-1", A1(sheet, ""), [][]string{row}, ""); err != nil {
			t.Fatalf("AppendRange() error = %v", err)
		}
	}

	got, err := c.ReadRange(ctx, "exam-1", A1(sheet, ""), "")
	if err != nil {
		t.Fatalf("ReadRange() error = %v", err)
	}
	want := [][]string{header[0], {"t1", "1", "a", "-"}, {"t2", "2", "b", "-"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadRange() = %v, want %v", got, want)
	}

	if err := c.ClearRange(ctx, "exam-1", A1(sheet, ""), ""); err != nil {
		t.Fatalf("ClearRange() error = %v", err)
	}
	got, err = c.ReadRange(ctx, "exam-1", A1(sheet, ""), "")
	if err != nil {
		t.Fatalf("ReadRange() after clear error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ReadRange() after clear = %v, want empty", got)
	}
}
