/*
summary.go - Completion summary (completed / required / owed per site)

PURPOSE:
  Answers "how many hours does each student still owe at each site?".
  Always recomputed from current store state; nothing is cached.

ALGORITHM:
  For each student (by name, ties by StudentID), for each site in store
  enumeration order:

    completed = Σ TotalHours of logs with matching StudentID AND Site
    required  = site.RequiredHours
    owed      = required − completed        (negative when over-completed)

  completed and owed are rounded to 2 places, half away from zero. owed is
  computed from the unrounded sum.

SOFT REFERENCES:
  Columns come from the current site list, not from log history. A log
  whose Site matches no requirement contributes to no column. Re-adding a
  requirement with the same name brings those logs back.

EXAMPLE:
  Site A requires 120h, Ann logged 8h + 4.5h there:
    Site A - Completed: 12.5   Required: 120   Owed: 107.5
*/
package practrack

import (
	"sort"

	"github.com/shopspring/decimal"
)

// SiteProgress is one site's three columns in a student's row.
type SiteProgress struct {
	Site      string
	Completed decimal.Decimal
	Required  decimal.Decimal
	Owed      decimal.Decimal
}

// SummaryRow is one student's line of the completion summary.
type SummaryRow struct {
	StudentName string
	StudentID   string
	Sites       []SiteProgress
}

// Summary is the completion matrix. Sites lists the column groups in order.
type Summary struct {
	Sites []string
	Rows  []SummaryRow
}

// IsEmpty reports whether the summary has no rows.
func (s Summary) IsEmpty() bool { return len(s.Rows) == 0 }

// Columns returns the flattened column headers.
func (s Summary) Columns() []string {
	cols := make([]string, 0, 2+3*len(s.Sites))
	cols = append(cols, "Student Name", "Student ID")
	for _, site := range s.Sites {
		cols = append(cols,
			site+" - Completed",
			site+" - Required",
			site+" - Owed",
		)
	}
	return cols
}

type progressKey struct {
	studentID string
	site      string
}

// ComputeSummary builds the completion matrix from already-loaded data.
// It never fails. No students means no rows, whatever the sites and logs.
func ComputeSummary(students []Student, sites []SiteRequirement, logs []HoursLogEntry) Summary {
	summary := Summary{Sites: make([]string, len(sites))}
	for i, site := range sites {
		summary.Sites[i] = site.SiteName
	}
	if len(students) == 0 {
		return summary
	}

	completed := make(map[progressKey]decimal.Decimal)
	for _, e := range logs {
		k := progressKey{studentID: e.StudentID, site: e.Site}
		completed[k] = completed[k].Add(e.TotalHours)
	}

	ordered := make([]Student, len(students))
	copy(ordered, students)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Name != ordered[j].Name {
			return ordered[i].Name < ordered[j].Name
		}
		return ordered[i].StudentID < ordered[j].StudentID
	})

	summary.Rows = make([]SummaryRow, 0, len(ordered))
	for _, s := range ordered {
		row := SummaryRow{
			StudentName: s.Name,
			StudentID:   s.StudentID,
			Sites:       make([]SiteProgress, 0, len(sites)),
		}
		for _, site := range sites {
			done := completed[progressKey{studentID: s.StudentID, site: site.SiteName}]
			row.Sites = append(row.Sites, SiteProgress{
				Site:      site.SiteName,
				Completed: RoundHours(done),
				Required:  site.RequiredHours,
				Owed:      RoundHours(site.RequiredHours.Sub(done)),
			})
		}
		summary.Rows = append(summary.Rows, row)
	}
	return summary
}
