/*
Package practrack provides the core practical-hours tracking engine.

PURPOSE:
  Tracks student clinical/practical hours against per-site requirements.
  Students are imported from class rosters or added by hand, lecturers log
  time-in/time-out entries at practicum sites, and the summary engine
  derives completed/required/owed hours per student per site.

KEY CONCEPTS IN THIS FILE (types.go):
  - Student: roster member, joined to everything else by StudentID
  - SiteRequirement: practicum site with its hour quota
  - HoursLogEntry: one logged shift (immutable once written)

SOFT REFERENCES:
  HoursLogEntry.StudentID and HoursLogEntry.Site are plain strings. Nothing
  in storage enforces that they point at an existing row. The summary engine
  joins them in application code (see summary.go), so a log entry whose site
  was deleted stays visible in the raw records but drops out of summaries.

DENORMALIZED NAME:
  HoursLogEntry.StudentName is a snapshot taken when the entry was logged.
  It only changes through the explicit rename cascade in the Repository.

PRECISION:
  Hour quantities are decimal.Decimal. Storage keeps them as REAL; all
  summing and rounding happens here, in decimal.

SEE ALSO:
  - clock.go: Date/time-of-day parsing and duration computation
  - summary.go: Completion summary
  - reconcile.go: Roster import
  - store.go: Repository contract
*/
package practrack

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENTITIES
// =============================================================================

// Student is a roster member. StudentID is the natural key used for all
// cross-entity joins; ID is the storage surrogate.
type Student struct {
	ID        int64
	Name      string
	Initials  string
	StudentID string
}

// SiteRequirement is the hour quota for one practicum site.
type SiteRequirement struct {
	SiteName      string
	RequiredHours decimal.Decimal
}

// HoursLogEntry is a single logged shift at a site.
type HoursLogEntry struct {
	ID           int64
	LecturerName string
	StudentName  string
	StudentID    string
	Site         string
	Date         time.Time
	StartTime    Clock
	EndTime      Clock
	TotalHours   decimal.Decimal
	Notes        string
}

// =============================================================================
// DEFAULT SITES
// =============================================================================

// DefaultSites are seeded on first run with insert-if-absent semantics.
var DefaultSites = []SiteRequirement{
	{SiteName: "Site A - Hospital A", RequiredHours: decimal.NewFromInt(120)},
	{SiteName: "Site B - Clinic B", RequiredHours: decimal.NewFromInt(80)},
	{SiteName: "Site C - Laboratory C", RequiredHours: decimal.NewFromInt(60)},
	{SiteName: "Site D - Community D", RequiredHours: decimal.NewFromInt(40)},
}

// DefaultSiteNames returns the names of DefaultSites in seed order.
func DefaultSiteNames() []string {
	names := make([]string, len(DefaultSites))
	for i, s := range DefaultSites {
		names[i] = s.SiteName
	}
	return names
}

// =============================================================================
// HOURS
// =============================================================================

// HoursPrecision is the number of decimal places kept for hour values.
const HoursPrecision = 2

// RoundHours rounds to HoursPrecision places, half away from zero.
func RoundHours(d decimal.Decimal) decimal.Decimal {
	return d.Round(HoursPrecision)
}

// SumHours totals the hours of the given entries. The result is not rounded.
func SumHours(entries []HoursLogEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.TotalHours)
	}
	return total
}
