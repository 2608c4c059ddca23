/*
service.go - User-facing operations over the Repository

PURPOSE:
  One method per user action (add student, log hours, import roster, ...).
  Each write returns a Result: a short message shown once to whoever made
  the request and then discarded. There is no shared message state.

REQUEST FLOW:
  1. Trim / normalize input
  2. Validate (ValidationError on failure, nothing written)
  3. Write through the Repository
  4. Return Result describing what happened

READS:
  Summary and Overview always reload from the Repository.
*/
package practrack

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RESULT - One-shot feedback for a write operation
// =============================================================================

// Level is the severity of a Result.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Result is the message for the caller of a single operation.
type Result struct {
	Level   Level
	Message string
}

func success(format string, args ...any) Result {
	return Result{Level: LevelSuccess, Message: fmt.Sprintf(format, args...)}
}

func warning(format string, args ...any) Result {
	return Result{Level: LevelWarning, Message: fmt.Sprintf(format, args...)}
}

// ResultFromError turns a failed operation into an error-level Result.
func ResultFromError(err error) Result {
	return Result{Level: LevelError, Message: err.Error()}
}

// =============================================================================
// SERVICE
// =============================================================================

// Service implements the user actions on top of a Repository.
type Service struct {
	repo Repository
}

// NewService creates a service backed by repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// =============================================================================
// STUDENTS
// =============================================================================

// AddStudent creates a student by hand.
func (s *Service) AddStudent(ctx context.Context, name, initials, studentID string) (Student, Result, error) {
	name = strings.TrimSpace(name)
	initials = strings.TrimSpace(initials)
	studentID = strings.TrimSpace(studentID)

	if name == "" {
		return Student{}, Result{}, &ValidationError{Rule: RuleMissingField, Field: "student_name"}
	}
	if studentID == "" {
		return Student{}, Result{}, &ValidationError{Rule: RuleMissingField, Field: "student_id"}
	}

	created, err := s.repo.CreateStudent(ctx, Student{Name: name, Initials: initials, StudentID: studentID})
	if err != nil {
		return Student{}, Result{}, err
	}
	return created, success("Student added"), nil
}

// Students lists all students by name.
func (s *Service) Students(ctx context.Context) ([]Student, error) {
	return s.repo.ListStudents(ctx)
}

// Student returns one student or ErrStudentNotFound.
func (s *Service) Student(ctx context.Context, studentID string) (Student, error) {
	st, err := s.repo.GetStudent(ctx, strings.TrimSpace(studentID))
	if err != nil {
		return Student{}, err
	}
	if st == nil {
		return Student{}, ErrStudentNotFound
	}
	return *st, nil
}

// RenameStudent changes a student's name and rewrites the name snapshot on
// all of the student's log rows.
func (s *Service) RenameStudent(ctx context.Context, studentID, newName string) (Result, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return Result{}, &ValidationError{Rule: RuleMissingField, Field: "student_name"}
	}

	st, err := s.Student(ctx, studentID)
	if err != nil {
		return Result{}, err
	}
	if st.Name == newName {
		return warning("Name for ID %s is already %s.", st.StudentID, newName), nil
	}

	if err := s.repo.RenameStudent(ctx, st.StudentID, newName); err != nil {
		return Result{}, err
	}
	return success("Updated name for ID %s to %s.", st.StudentID, newName), nil
}

// DeleteStudent removes a student together with all of the student's hours.
func (s *Service) DeleteStudent(ctx context.Context, studentID string) (Result, error) {
	st, err := s.Student(ctx, studentID)
	if err != nil {
		return Result{}, err
	}
	if err := s.repo.DeleteStudent(ctx, st.StudentID); err != nil {
		return Result{}, err
	}
	return warning("Deleted student '%s' (ID: %s) and all related hours.", st.Name, st.StudentID), nil
}

// Reset wipes students and logs and every non-default site.
func (s *Service) Reset(ctx context.Context) (Result, error) {
	if err := s.repo.Reset(ctx); err != nil {
		return Result{}, err
	}
	return Result{Level: LevelError, Message: "SYSTEM DATA RESET COMPLETE. Please re-upload your class list."}, nil
}

// ImportRoster adds every usable roster row as a student.
func (s *Service) ImportRoster(ctx context.Context, roster Roster) (ImportResult, Result, error) {
	res, err := Reconcile(ctx, s.repo, roster)
	if err != nil {
		return res, Result{}, err
	}
	return res, success("Added %d students, skipped %d (duplicates or empty data).", res.Added, res.Skipped), nil
}

// =============================================================================
// SITES
// =============================================================================

// Sites lists site requirements in enumeration order.
func (s *Service) Sites(ctx context.Context) ([]SiteRequirement, error) {
	return s.repo.ListSites(ctx)
}

// SetSiteRequirement adds a new site or updates an existing site's quota.
func (s *Service) SetSiteRequirement(ctx context.Context, siteName string, hours decimal.Decimal) (Result, error) {
	siteName = strings.TrimSpace(siteName)
	if siteName == "" {
		return Result{}, &ValidationError{Rule: RuleMissingField, Field: "site_name"}
	}
	if hours.IsNegative() {
		return Result{}, &ValidationError{Rule: RuleNegativeHours, Field: "required_hours"}
	}

	existing, err := s.repo.GetSite(ctx, siteName)
	if err != nil {
		return Result{}, err
	}
	if err := s.repo.UpsertSite(ctx, SiteRequirement{SiteName: siteName, RequiredHours: hours}); err != nil {
		return Result{}, err
	}

	if existing == nil {
		return success("Added new site '%s' with %s hours.", siteName, hours.StringFixed(1)), nil
	}
	return success("Updated '%s' requirement to %s hours.", siteName, hours.StringFixed(1)), nil
}

// DeleteSite removes a site requirement. Logs at that site are kept.
func (s *Service) DeleteSite(ctx context.Context, siteName string) (Result, error) {
	siteName = strings.TrimSpace(siteName)
	if err := s.repo.DeleteSite(ctx, siteName); err != nil {
		return Result{}, err
	}
	return warning("Deleted site '%s'.", siteName), nil
}

// =============================================================================
// HOURS LOG
// =============================================================================

// PreviewHours returns the duration the form would log.
func (s *Service) PreviewHours(req LogRequest) decimal.Decimal {
	_, hours := req.Normalize()
	return hours
}

// LogHours validates and records one shift. On rejection nothing is written.
func (s *Service) LogHours(ctx context.Context, req LogRequest) (HoursLogEntry, Result, error) {
	req, hours := req.Normalize()
	if err := ValidateEntry(req.LecturerName, req.Site, req.StudentID, hours); err != nil {
		return HoursLogEntry{}, Result{}, err
	}

	st, err := s.Student(ctx, req.StudentID)
	if err != nil {
		return HoursLogEntry{}, Result{}, err
	}

	entry, err := s.repo.AppendLog(ctx, HoursLogEntry{
		LecturerName: req.LecturerName,
		StudentName:  st.Name,
		StudentID:    st.StudentID,
		Site:         req.Site,
		Date:         req.Date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		TotalHours:   hours,
		Notes:        req.Notes,
	})
	if err != nil {
		return HoursLogEntry{}, Result{}, err
	}
	return entry, success("Logged %s hours for %s at %s.", hours.String(), st.Name, req.Site), nil
}

// Records lists all log entries, newest date first.
func (s *Service) Records(ctx context.Context) ([]HoursLogEntry, error) {
	return s.repo.ListLogs(ctx)
}

// =============================================================================
// REPORTS
// =============================================================================

// Summary computes the completion matrix from current store state.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		return Summary{}, err
	}
	sites, err := s.repo.ListSites(ctx)
	if err != nil {
		return Summary{}, err
	}
	logs, err := s.repo.ListLogs(ctx)
	if err != nil {
		return Summary{}, err
	}
	return ComputeSummary(students, sites, logs), nil
}

// Overview is the Home view: aggregate metrics plus the site list.
type Overview struct {
	Students   int
	LogEntries int
	TotalHours decimal.Decimal
	Sites      []SiteRequirement
}

// Overview loads the Home view metrics.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		return Overview{}, err
	}
	logs, err := s.repo.ListLogs(ctx)
	if err != nil {
		return Overview{}, err
	}
	sites, err := s.repo.ListSites(ctx)
	if err != nil {
		return Overview{}, err
	}
	return Overview{
		Students:   len(students),
		LogEntries: len(logs),
		TotalHours: SumHours(logs),
		Sites:      sites,
	}, nil
}

// IsDuplicate reports whether err is a duplicate-student rejection and, if
// so, which StudentID conflicted.
func IsDuplicate(err error) (string, bool) {
	var dup *DuplicateKeyError
	if errors.As(err, &dup) {
		return dup.StudentID, true
	}
	return "", false
}
