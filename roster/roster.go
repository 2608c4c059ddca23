/*
Package roster reads uploaded class lists into a practrack.Roster.

SUPPORTED FORMATS:
  .csv   encoding/csv, ragged rows allowed, UTF-8 BOM stripped
  .xlsx  excelize, first worksheet, raw cell values
  .xls   extrame/xls, single worksheet only

IDENTIFIERS AS TEXT:
  Every cell is kept as the string found in the file. Nothing is converted
  to a number, so IDs like "00123" keep their leading zeros. For xlsx the
  raw cell value is read so large numeric IDs are not rendered in
  scientific notation.

ERRORS:
  Any failure to read the file yields *practrack.MalformedInputError.
  Header validation is not done here; see practrack.Roster.CheckSchema.
*/
package roster

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/warp/practrack/practrack"
	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\ufeff"

// maxXLSRows bounds how many rows are read from a legacy workbook.
const maxXLSRows = 100000

// Parse reads a roster file, choosing the format from the filename.
func Parse(r io.Reader, filename string) (practrack.Roster, error) {
	rows, err := readRows(r, filename)
	if err != nil {
		return practrack.Roster{}, &practrack.MalformedInputError{Source: filename, Err: err}
	}
	return fromRows(rows), nil
}

// SupportedExtension reports whether filename has a readable extension.
func SupportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx", ".xls":
		return true
	}
	return false
}

func readRows(r io.Reader, filename string) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return readCSV(r)
	case ".xlsx":
		return readXLSX(r)
	case ".xls":
		return readXLS(r)
	default:
		return nil, fmt.Errorf("unsupported file type %q (use .csv, .xlsx or .xls)", ext)
	}
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("file is empty")
	}
	if len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("no worksheet found")
	}

	rows, err := file.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("worksheet is empty")
	}
	return rows, nil
}

func readXLS(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if workbook.NumSheets() == 0 {
		return nil, errors.New("no worksheet found")
	}
	if workbook.NumSheets() > 1 {
		return nil, errors.New("multiple worksheets found; please upload a file with a single sheet")
	}

	rows := workbook.ReadAllCells(maxXLSRows)
	if len(rows) == 0 {
		return nil, errors.New("worksheet is empty")
	}
	return rows, nil
}

// fromRows splits off the header and drops fully blank records.
func fromRows(rows [][]string) practrack.Roster {
	roster := practrack.Roster{Header: rows[0]}
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		roster.Records = append(roster.Records, row)
	}
	return roster
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
