/*
Package sqlite provides a SQLite-backed implementation of practrack.Repository.

KEY TABLES:
  students:          roster, student_id UNIQUE
  hours_log:         logged shifts (soft references to students and sites)
  site_requirements: hour quota per site, site_name PRIMARY KEY

SEEDING:
  The four default sites are inserted with INSERT OR IGNORE on every open,
  so an existing row with the same name is never overwritten.

CASCADES:
  RenameStudent and DeleteStudent touch both students and hours_log inside a
  single SQL transaction. DeleteSite only touches site_requirements.

ORDERING:
  Sites are listed by rowid (insertion order). Upserts use
  ON CONFLICT DO UPDATE so an updated site keeps its rowid and position.

CONCURRENCY:
  Uses sync.RWMutex and a single open connection. The app is single-user;
  one connection also keeps ":memory:" databases coherent across calls.

MIGRATION:
  Schema is auto-migrated on New(). Databases created before
  student_initials existed get the column added.

USAGE:
  store, err := sqlite.New("practical_hours.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
  svc := practrack.NewService(store)
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/practrack/practrack"
)

// Store implements practrack.Repository using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ practrack.Repository = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := store.seedDefaultSites(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed default sites: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS students (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		student_name TEXT NOT NULL,
		student_initials TEXT,
		student_id TEXT UNIQUE NOT NULL
	);

	CREATE TABLE IF NOT EXISTS hours_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		lecturer_name TEXT,
		student_name TEXT,
		student_id TEXT,
		site TEXT,
		date TEXT,
		start_time TEXT,
		end_time TEXT,
		total_hours REAL,
		notes TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_hours_log_student
		ON hours_log(student_id);

	CREATE TABLE IF NOT EXISTS site_requirements (
		site_name TEXT PRIMARY KEY,
		required_hours REAL NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Older databases predate the initials column.
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM pragma_table_info('students') WHERE name = 'student_initials'",
	).Scan(&n)
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := s.db.Exec("ALTER TABLE students ADD COLUMN student_initials TEXT"); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) seedDefaultSites() error {
	for _, site := range practrack.DefaultSites {
		_, err := s.db.Exec(
			"INSERT OR IGNORE INTO site_requirements (site_name, required_hours) VALUES (?, ?)",
			site.SiteName, site.RequiredHours.InexactFloat64(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// withTx runs fn inside a database transaction, holding the write lock.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// STUDENTS
// =============================================================================

// CreateStudent inserts a student. A taken student_id yields
// *practrack.DuplicateKeyError.
func (s *Store) CreateStudent(ctx context.Context, st practrack.Student) (practrack.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO students (student_name, student_initials, student_id) VALUES (?, ?, ?)",
		st.Name, nullString(st.Initials), st.StudentID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return practrack.Student{}, &practrack.DuplicateKeyError{StudentID: st.StudentID}
		}
		return practrack.Student{}, fmt.Errorf("failed to insert student: %w", err)
	}

	st.ID, err = res.LastInsertId()
	if err != nil {
		return practrack.Student{}, err
	}
	return st, nil
}

// GetStudent retrieves a student by student_id.
func (s *Store) GetStudent(ctx context.Context, studentID string) (*practrack.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st practrack.Student
	var initials sql.NullString

	err := s.db.QueryRowContext(ctx,
		"SELECT id, student_name, student_initials, student_id FROM students WHERE student_id = ?",
		studentID,
	).Scan(&st.ID, &st.Name, &initials, &st.StudentID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	st.Initials = initials.String
	return &st, nil
}

// ListStudents returns all students ordered by name.
func (s *Store) ListStudents(ctx context.Context) ([]practrack.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, student_name, student_initials, student_id FROM students ORDER BY student_name, student_id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	var students []practrack.Student
	for rows.Next() {
		var st practrack.Student
		var initials sql.NullString
		if err := rows.Scan(&st.ID, &st.Name, &initials, &st.StudentID); err != nil {
			return nil, err
		}
		st.Initials = initials.String
		students = append(students, st)
	}
	return students, rows.Err()
}

// RenameStudent updates the name and the snapshot on the student's log rows.
func (s *Store) RenameStudent(ctx context.Context, studentID, name string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "UPDATE students SET student_name = ? WHERE student_id = ?", name, studentID)
		if err != nil {
			return fmt.Errorf("failed to rename student: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return practrack.ErrStudentNotFound
		}

		_, err = tx.ExecContext(ctx, "UPDATE hours_log SET student_name = ? WHERE student_id = ?", name, studentID)
		if err != nil {
			return fmt.Errorf("failed to cascade student name: %w", err)
		}
		return nil
	})
}

// DeleteStudent removes the student and all of the student's log rows.
func (s *Store) DeleteStudent(ctx context.Context, studentID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM students WHERE student_id = ?", studentID)
		if err != nil {
			return fmt.Errorf("failed to delete student: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return practrack.ErrStudentNotFound
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM hours_log WHERE student_id = ?", studentID); err != nil {
			return fmt.Errorf("failed to delete student hours: %w", err)
		}
		return nil
	})
}

// =============================================================================
// SITE REQUIREMENTS
// =============================================================================

// GetSite retrieves a site requirement by name.
func (s *Store) GetSite(ctx context.Context, siteName string) (*practrack.SiteRequirement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var site practrack.SiteRequirement
	var hours float64

	err := s.db.QueryRowContext(ctx,
		"SELECT site_name, required_hours FROM site_requirements WHERE site_name = ?",
		siteName,
	).Scan(&site.SiteName, &hours)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	site.RequiredHours = decimal.NewFromFloat(hours)
	return &site, nil
}

// ListSites returns all site requirements in insertion order.
func (s *Store) ListSites(ctx context.Context) ([]practrack.SiteRequirement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT site_name, required_hours FROM site_requirements ORDER BY rowid",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sites: %w", err)
	}
	defer rows.Close()

	var sites []practrack.SiteRequirement
	for rows.Next() {
		var site practrack.SiteRequirement
		var hours float64
		if err := rows.Scan(&site.SiteName, &hours); err != nil {
			return nil, err
		}
		site.RequiredHours = decimal.NewFromFloat(hours)
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// UpsertSite inserts or updates a site requirement.
func (s *Store) UpsertSite(ctx context.Context, site practrack.SiteRequirement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO site_requirements (site_name, required_hours)
		VALUES (?, ?)
		ON CONFLICT(site_name) DO UPDATE SET
			required_hours = excluded.required_hours
	`

	_, err := s.db.ExecContext(ctx, query, site.SiteName, site.RequiredHours.InexactFloat64())
	if err != nil {
		return fmt.Errorf("failed to save site: %w", err)
	}
	return nil
}

// DeleteSite removes a site requirement. hours_log is left untouched.
func (s *Store) DeleteSite(ctx context.Context, siteName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM site_requirements WHERE site_name = ?", siteName)
	if err != nil {
		return fmt.Errorf("failed to delete site: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return practrack.ErrSiteNotFound
	}
	return nil
}

// =============================================================================
// HOURS LOG
// =============================================================================

// AppendLog inserts a log entry.
func (s *Store) AppendLog(ctx context.Context, e practrack.HoursLogEntry) (practrack.HoursLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO hours_log
		(lecturer_name, student_name, student_id, site, date, start_time, end_time, total_hours, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		e.LecturerName,
		e.StudentName,
		e.StudentID,
		e.Site,
		e.Date.Format(practrack.DateLayout),
		e.StartTime.String(),
		e.EndTime.String(),
		e.TotalHours.InexactFloat64(),
		e.Notes,
	)
	if err != nil {
		return practrack.HoursLogEntry{}, fmt.Errorf("failed to append log entry: %w", err)
	}

	e.ID, err = res.LastInsertId()
	if err != nil {
		return practrack.HoursLogEntry{}, err
	}
	return e, nil
}

// ListLogs returns all log entries, newest date first.
func (s *Store) ListLogs(ctx context.Context) ([]practrack.HoursLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, lecturer_name, student_name, student_id, site, date,
		       start_time, end_time, total_hours, notes
		FROM hours_log
		ORDER BY date DESC, student_name, id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query hours log: %w", err)
	}
	defer rows.Close()

	var entries []practrack.HoursLogEntry
	for rows.Next() {
		e, err := scanLogEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanLogEntry(rows *sql.Rows) (practrack.HoursLogEntry, error) {
	var (
		e                                    practrack.HoursLogEntry
		lecturer, studentName, studentID     sql.NullString
		site, date, startTime, endTime, note sql.NullString
		hours                                sql.NullFloat64
	)

	err := rows.Scan(&e.ID, &lecturer, &studentName, &studentID, &site, &date,
		&startTime, &endTime, &hours, &note)
	if err != nil {
		return e, fmt.Errorf("failed to scan log entry: %w", err)
	}

	e.LecturerName = lecturer.String
	e.StudentName = studentName.String
	e.StudentID = studentID.String
	e.Site = site.String
	e.Notes = note.String
	e.TotalHours = decimal.NewFromFloat(hours.Float64)
	e.Date, _ = practrack.ParseDate(date.String)
	e.StartTime, _ = practrack.ParseClock(startTime.String)
	e.EndTime, _ = practrack.ParseClock(endTime.String)
	return e, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset deletes all students and logs and every non-default site.
func (s *Store) Reset(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"students", "hours_log"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return err
			}
		}

		defaults := practrack.DefaultSiteNames()
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(defaults)), ", ")
		args := make([]any, len(defaults))
		for i, name := range defaults {
			args[i] = name
		}
		_, err := tx.ExecContext(ctx,
			"DELETE FROM site_requirements WHERE site_name NOT IN ("+placeholders+")", args...)
		return err
	})
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
