package practrack

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LogRequest is the input of the Log Practical Hours form.
type LogRequest struct {
	LecturerName string
	StudentID    string
	Site         string
	Date         time.Time
	StartTime    Clock
	EndTime      Clock
	Notes        string
}

// Normalize trims the identifying fields and computes the duration.
func (r LogRequest) Normalize() (LogRequest, decimal.Decimal) {
	r.LecturerName = strings.TrimSpace(r.LecturerName)
	r.StudentID = strings.TrimSpace(r.StudentID)
	r.Site = strings.TrimSpace(r.Site)
	return r, ComputeHours(r.Date, r.StartTime, r.EndTime)
}

// ValidateEntry applies the acceptance rules for an hours-log entry.
// Inputs are expected to be trimmed already. The duration rule is checked
// first, then the required fields in form order.
func ValidateEntry(lecturerName, site, studentID string, hours decimal.Decimal) error {
	if !hours.IsPositive() {
		return &ValidationError{Rule: RuleNonPositiveDuration}
	}
	if lecturerName == "" {
		return &ValidationError{Rule: RuleMissingField, Field: "lecturer_name"}
	}
	if site == "" {
		return &ValidationError{Rule: RuleMissingField, Field: "site"}
	}
	if studentID == "" {
		return &ValidationError{Rule: RuleMissingField, Field: "student_id"}
	}
	return nil
}
