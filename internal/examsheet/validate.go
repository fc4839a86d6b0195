// Package examsheet turns the raw cell grid of an exam template into a typed exam.
//
// The template layout is fixed:
//
//	row 1   Duration | <minutes>
//	row 2   column headers
//	row 3+  Type | Statement | A | B | C | D | Points
package examsheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stemsi/gscribe-backend/internal/model"
)

const (
	colType      = 0
	colStatement = 1
	colFirstOpt  = 2
	colPoints    = 6

	firstQuestionRow = 2

	minDuration = 1
	maxDuration = 300
	minPoints   = 1
	maxPoints   = 100
)

// FormatError reports the first template violation found in a grid.
type FormatError struct {
	Reason string
	Cell   string
}

func (e *FormatError) Error() string {
	if e.Cell == "" {
		return e.Reason
	}
	return e.Reason + " in " + e.Cell
}

func formatErr(reason, cell string) *FormatError {
	return &FormatError{Reason: reason, Cell: cell}
}

// Validate checks grid against the exam template and returns a *FormatError
// for the first violation, scanning rows top to bottom.
func Validate(grid [][]string) error {
	if len(grid) < 3 {
		return formatErr("Improper exam template used", "")
	}

	if err := validateDuration(grid[0]); err != nil {
		return err
	}

	for i := firstQuestionRow; i < len(grid); i++ {
		row := grid[i]
		sheetRow := i + 1

		switch model.QuestionType(cell(row, colType)) {
		case model.QuestionTypeMultipleChoice:
			if err := checkMultipleChoice(row, sheetRow); err != nil {
				return err
			}
		case model.QuestionTypeSubjective:
			if err := checkSubjective(row, sheetRow); err != nil {
				return err
			}
		default:
			return formatErr("Question type not identified", fmt.Sprintf("A%d", sheetRow))
		}

		if err := validatePoints(cell(row, colPoints), sheetRow); err != nil {
			return err
		}
	}
	return nil
}

func validateDuration(row []string) error {
	if len(row) < 2 {
		return formatErr("duration not present", "B1")
	}
	d, err := strconv.Atoi(cell(row, 1))
	if err != nil {
		return formatErr("duration not in a proper format", "B1")
	}
	if d < minDuration || d > maxDuration {
		return formatErr("duration not in a range of 1-300", "B1")
	}
	return nil
}

func checkMultipleChoice(row []string, sheetRow int) error {
	if cell(row, colStatement) == "" {
		return formatErr("missing question statement", fmt.Sprintf("B%d", sheetRow))
	}
	for c := colFirstOpt; c < colFirstOpt+model.OptionCount; c++ {
		if cell(row, c) == "" {
			return formatErr("missing multiple choice question option", fmt.Sprintf("row %d", sheetRow))
		}
	}
	return nil
}

func checkSubjective(row []string, sheetRow int) error {
	if cell(row, colStatement) == "" {
		return formatErr("missing question statement", fmt.Sprintf("B%d", sheetRow))
	}
	for c := colFirstOpt; c < colFirstOpt+model.OptionCount; c++ {
		if cell(row, c) != "" {
			return formatErr("subjective question does not expect option", fmt.Sprintf("row %d", sheetRow))
		}
	}
	return nil
}

func validatePoints(raw string, sheetRow int) error {
	p, err := strconv.Atoi(raw)
	if err != nil {
		return formatErr("points not in a proper format", fmt.Sprintf("G%d", sheetRow))
	}
	if p < minPoints || p > maxPoints {
		return formatErr("points not in a valid range of 1-100", fmt.Sprintf("G%d", sheetRow))
	}
	return nil
}

// cell returns the trimmed value at col, or "" when the row is shorter.
// Spreadsheet reads drop trailing empty cells.
func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
