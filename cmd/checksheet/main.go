// Command checksheet validates an exam template saved as .xlsx and prints
// the questions it would produce.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/stemsi/gscribe-backend/internal/examsheet"
	"github.com/xuri/excelize/v2"
)

func main() {
	var file, sheet string
	flag.StringVar(&file, "file", "", "Path to the .xlsx workbook")
	flag.StringVar(&sheet, "sheet", "", "Sheet holding the exam (default: first sheet)")
	flag.Parse()

	if file == "" {
		fmt.Fprintln(os.Stderr, "Usage: checksheet -file exam.xlsx [-sheet name]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	os.Exit(run(os.Stdout, os.Stderr, file, sheet))
}

// run returns 0 for a valid template, 1 for a template error and 2 when the
// workbook cannot be read.
func run(stdout, stderr io.Writer, file, sheet string) int {
	grid, sheet, err := readGrid(file, sheet)
	if err != nil {
		fmt.Fprintf(stderr, "read %s: %v\n", file, err)
		return 2
	}

	if err := examsheet.Validate(grid); err != nil {
		var fe *examsheet.FormatError
		if errors.As(err, &fe) {
			fmt.Fprintf(stderr, "%s: %s\n", sheet, fe.Error())
			return 1
		}
		fmt.Fprintf(stderr, "%s: %v\n", sheet, err)
		return 1
	}

	id := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	exam := examsheet.Generate(grid, examsheet.Source{SpreadsheetID: id, SheetName: sheet}, "")

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(exam); err != nil {
		fmt.Fprintf(stderr, "encode: %v\n", err)
		return 2
	}
	return 0
}

func readGrid(file, sheet string) ([][]string, string, error) {
	f, err := excelize.OpenFile(file)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, sheet, err
	}
	return rows, sheet, nil
}
