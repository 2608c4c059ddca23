/*
Package export renders tables into an .xlsx workbook.

LAYOUT:
  One named worksheet per table. Row 1 holds the column headers in the
  source table's column order; data starts at row 2. Hour values are
  written as numbers, identifiers as text.

TABLES:
  RecordsTable   "Records"   hours_log columns
  SummaryTable   "Summary"   Student Name, Student ID, then 3 per site
  StudentsTable  "Students"  students columns

USAGE:
  w.Header().Set("Content-Type", export.ContentType)
  err := export.Write(w, export.SummaryTable(summary))
*/
package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/warp/practrack/practrack"
	"github.com/xuri/excelize/v2"
)

// ContentType is the mime type of the produced workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Table is one worksheet's worth of data.
type Table struct {
	Sheet   string
	Columns []string
	Rows    [][]any
}

// Write encodes the tables as an .xlsx workbook to w.
func Write(w io.Writer, tables ...Table) error {
	if len(tables) == 0 {
		return errors.New("export: no tables to write")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	defaultSheet := f.GetSheetName(0)
	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, t.Sheet); err != nil {
				return fmt.Errorf("export: rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(t.Sheet); err != nil {
			return fmt.Errorf("export: add sheet %q: %w", t.Sheet, err)
		}

		if err := writeTable(f, t); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, t Table) error {
	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(t.Sheet, "A1", &header); err != nil {
		return fmt.Errorf("export: write header of %q: %w", t.Sheet, err)
	}

	for r, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(t.Sheet, cell, &values); err != nil {
			return fmt.Errorf("export: write row %d of %q: %w", r+2, t.Sheet, err)
		}
	}
	return nil
}

// =============================================================================
// TABLE BUILDERS
// =============================================================================

// RecordsColumns matches the hours_log table column order.
var RecordsColumns = []string{
	"id", "lecturer_name", "student_name", "student_id", "site",
	"date", "start_time", "end_time", "total_hours", "notes",
}

// RecordsTable builds the "Records" sheet.
func RecordsTable(entries []practrack.HoursLogEntry) Table {
	t := Table{Sheet: "Records", Columns: RecordsColumns}
	for _, e := range entries {
		t.Rows = append(t.Rows, []any{
			e.ID,
			e.LecturerName,
			e.StudentName,
			e.StudentID,
			e.Site,
			e.Date.Format(practrack.DateLayout),
			e.StartTime.String(),
			e.EndTime.String(),
			e.TotalHours.InexactFloat64(),
			e.Notes,
		})
	}
	return t
}

// SummaryTable builds the "Summary" sheet.
func SummaryTable(s practrack.Summary) Table {
	t := Table{Sheet: "Summary", Columns: s.Columns()}
	for _, row := range s.Rows {
		values := make([]any, 0, 2+3*len(row.Sites))
		values = append(values, row.StudentName, row.StudentID)
		for _, p := range row.Sites {
			values = append(values,
				p.Completed.InexactFloat64(),
				p.Required.InexactFloat64(),
				p.Owed.InexactFloat64(),
			)
		}
		t.Rows = append(t.Rows, values)
	}
	return t
}

// StudentsColumns matches the students table column order.
var StudentsColumns = []string{"id", "student_name", "student_initials", "student_id"}

// StudentsTable builds the "Students" sheet.
func StudentsTable(students []practrack.Student) Table {
	t := Table{Sheet: "Students", Columns: StudentsColumns}
	for _, st := range students {
		t.Rows = append(t.Rows, []any{st.ID, st.Name, st.Initials, st.StudentID})
	}
	return t
}
