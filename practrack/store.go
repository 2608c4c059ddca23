/*
store.go - Persistence contract for students, sites and hours logs

PURPOSE:
  Defines the interface between the engine and the relational store.
  Implementations: store/sqlite (production) and store/memory (tests/dev).

CASCADES:
  RenameStudent rewrites the StudentName snapshot on every log row with the
  same StudentID. DeleteStudent removes those log rows. Both run atomically.
  DeleteSite never touches log rows.

ORDERING:
  ListStudents:  by name, then StudentID
  ListSites:     store enumeration order (insertion order; upserts keep
                 their position)
  ListLogs:      date descending, then student name

NOT FOUND:
  Get* return (nil, nil) when the row doesn't exist. Rename/Delete return
  ErrStudentNotFound / ErrSiteNotFound.
*/
package practrack

import "context"

// Repository handles persistence of all three entities.
type Repository interface {
	StudentCreator

	// GetStudent returns the student with the given StudentID, or nil.
	GetStudent(ctx context.Context, studentID string) (*Student, error)

	// ListStudents returns all students ordered by name.
	ListStudents(ctx context.Context) ([]Student, error)

	// RenameStudent updates the name and cascades it to the student's log rows.
	RenameStudent(ctx context.Context, studentID, name string) error

	// DeleteStudent removes the student and all of the student's log rows.
	DeleteStudent(ctx context.Context, studentID string) error

	// GetSite returns the requirement for siteName, or nil.
	GetSite(ctx context.Context, siteName string) (*SiteRequirement, error)

	// ListSites returns all requirements in enumeration order.
	ListSites(ctx context.Context) ([]SiteRequirement, error)

	// UpsertSite inserts or updates a requirement keyed on SiteName.
	UpsertSite(ctx context.Context, site SiteRequirement) error

	// DeleteSite removes the requirement row only.
	DeleteSite(ctx context.Context, siteName string) error

	// AppendLog inserts a log entry and returns it with its ID set.
	AppendLog(ctx context.Context, entry HoursLogEntry) (HoursLogEntry, error)

	// ListLogs returns all log entries.
	ListLogs(ctx context.Context) ([]HoursLogEntry, error)

	// Reset deletes all students and logs, and every site requirement except
	// the default site names.
	Reset(ctx context.Context) error
}

// StudentCreator is the single write the roster reconciler needs.
type StudentCreator interface {
	// CreateStudent inserts a student and returns it with its ID set.
	// Returns *DuplicateKeyError if StudentID already exists.
	CreateStudent(ctx context.Context, student Student) (Student, error)
}
