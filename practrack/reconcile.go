/*
reconcile.go - Roster import (add-or-skip-duplicate)

PURPOSE:
  Maps uploaded class-list rows to Student records. Parsing the file is the
  roster package's job; this file only sees a header row and string cells.

REQUIRED HEADERS:
  student_name, student_id (matched case-insensitively after trimming),
  optional student_initials. If either required header is missing the
  import is refused with *SchemaMismatchError before any row is touched.

PER-ROW OUTCOME:
  added    - new Student row created
  skipped  - name or ID empty after trimming, or ID already exists

  Rows are best-effort: a skipped row never stops the import. Only a store
  failure other than a duplicate key aborts it.
*/
package practrack

import (
	"context"
	"errors"
	"strings"
)

// Roster column names.
const (
	ColumnStudentName     = "student_name"
	ColumnStudentInitials = "student_initials"
	ColumnStudentID       = "student_id"
)

// MissingValue is the placeholder spreadsheets tools write for empty cells.
// An initials cell holding it is treated as empty.
const MissingValue = "nan"

// Roster is a parsed class list: a header row and its records.
type Roster struct {
	Header  []string
	Records [][]string
}

// NormalizeHeader lowercases and trims a header cell.
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// NormalizedHeader returns the header with every cell normalized.
func (r Roster) NormalizedHeader() []string {
	out := make([]string, len(r.Header))
	for i, h := range r.Header {
		out[i] = NormalizeHeader(h)
	}
	return out
}

// Head returns at most n records, for previews.
func (r Roster) Head(n int) [][]string {
	if n < 0 || n >= len(r.Records) {
		return r.Records
	}
	return r.Records[:n]
}

// columnIndex maps normalized header names to their first position.
func (r Roster) columnIndex() map[string]int {
	idx := make(map[string]int, len(r.Header))
	for i, h := range r.NormalizedHeader() {
		if _, ok := idx[h]; !ok {
			idx[h] = i
		}
	}
	return idx
}

// CheckSchema verifies the required headers are addressable.
func (r Roster) CheckSchema() error {
	idx := r.columnIndex()
	var missing []string
	for _, col := range []string{ColumnStudentName, ColumnStudentID} {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	var found []string
	for _, col := range []string{ColumnStudentName, ColumnStudentInitials, ColumnStudentID} {
		if _, ok := idx[col]; ok {
			found = append(found, col)
		}
	}
	return &SchemaMismatchError{Missing: missing, Found: found}
}

// ImportResult carries the aggregate outcome of a roster import.
type ImportResult struct {
	Added      int
	Skipped    int
	Duplicates int
	Empty      int
}

// Reconcile creates one student per usable roster row.
func Reconcile(ctx context.Context, repo StudentCreator, roster Roster) (ImportResult, error) {
	var result ImportResult
	if err := roster.CheckSchema(); err != nil {
		return result, err
	}

	idx := roster.columnIndex()
	nameIdx := idx[ColumnStudentName]
	idIdx := idx[ColumnStudentID]
	initialsIdx, hasInitials := idx[ColumnStudentInitials]
	if !hasInitials {
		initialsIdx = -1
	}

	for _, record := range roster.Records {
		name := cellValue(record, nameIdx)
		studentID := cellValue(record, idIdx)
		initials := cellValue(record, initialsIdx)
		if strings.EqualFold(initials, MissingValue) {
			initials = ""
		}

		if name == "" || studentID == "" {
			result.Skipped++
			result.Empty++
			continue
		}

		_, err := repo.CreateStudent(ctx, Student{Name: name, Initials: initials, StudentID: studentID})
		switch {
		case err == nil:
			result.Added++
		case errors.Is(err, ErrDuplicateKey):
			result.Skipped++
			result.Duplicates++
		default:
			return result, err
		}
	}
	return result, nil
}

func cellValue(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
