// Package memory provides an in-memory practrack.Repository (for testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/practrack/practrack"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

// Memory keeps all three tables in slices guarded by one RWMutex. Every
// write happens under the lock, so cascades are atomic.
type Memory struct {
	mu       sync.RWMutex
	students []practrack.Student
	sites    []practrack.SiteRequirement
	logs     []practrack.HoursLogEntry

	nextStudentID int64
	nextLogID     int64
}

var _ practrack.Repository = (*Memory)(nil)

// NewMemory returns a store seeded with the default sites.
func NewMemory() *Memory {
	m := &Memory{}
	m.sites = append(m.sites, practrack.DefaultSites...)
	return m
}

// CreateStudent inserts a student; StudentID must be unique.
func (m *Memory) CreateStudent(_ context.Context, st practrack.Student) (practrack.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.studentIndex(st.StudentID) >= 0 {
		return practrack.Student{}, &practrack.DuplicateKeyError{StudentID: st.StudentID}
	}
	m.nextStudentID++
	st.ID = m.nextStudentID
	m.students = append(m.students, st)
	return st, nil
}

func (m *Memory) GetStudent(_ context.Context, studentID string) (*practrack.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.studentIndex(studentID)
	if i < 0 {
		return nil, nil
	}
	st := m.students[i]
	return &st, nil
}

func (m *Memory) ListStudents(_ context.Context) ([]practrack.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]practrack.Student, len(m.students))
	copy(result, m.students)
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].StudentID < result[j].StudentID
	})
	return result, nil
}

func (m *Memory) RenameStudent(_ context.Context, studentID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.studentIndex(studentID)
	if i < 0 {
		return practrack.ErrStudentNotFound
	}
	m.students[i].Name = name
	for j := range m.logs {
		if m.logs[j].StudentID == studentID {
			m.logs[j].StudentName = name
		}
	}
	return nil
}

func (m *Memory) DeleteStudent(_ context.Context, studentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.studentIndex(studentID)
	if i < 0 {
		return practrack.ErrStudentNotFound
	}
	m.students = append(m.students[:i], m.students[i+1:]...)

	kept := m.logs[:0]
	for _, e := range m.logs {
		if e.StudentID != studentID {
			kept = append(kept, e)
		}
	}
	m.logs = kept
	return nil
}

func (m *Memory) GetSite(_ context.Context, siteName string) (*practrack.SiteRequirement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.siteIndex(siteName)
	if i < 0 {
		return nil, nil
	}
	site := m.sites[i]
	return &site, nil
}

func (m *Memory) ListSites(_ context.Context) ([]practrack.SiteRequirement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]practrack.SiteRequirement, len(m.sites))
	copy(result, m.sites)
	return result, nil
}

// UpsertSite updates in place, so an existing site keeps its position.
func (m *Memory) UpsertSite(_ context.Context, site practrack.SiteRequirement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.siteIndex(site.SiteName); i >= 0 {
		m.sites[i].RequiredHours = site.RequiredHours
		return nil
	}
	m.sites = append(m.sites, site)
	return nil
}

func (m *Memory) DeleteSite(_ context.Context, siteName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.siteIndex(siteName)
	if i < 0 {
		return practrack.ErrSiteNotFound
	}
	m.sites = append(m.sites[:i], m.sites[i+1:]...)
	return nil
}

func (m *Memory) AppendLog(_ context.Context, e practrack.HoursLogEntry) (practrack.HoursLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextLogID++
	e.ID = m.nextLogID
	m.logs = append(m.logs, e)
	return e, nil
}

// ListLogs returns entries by date descending, then student name.
func (m *Memory) ListLogs(_ context.Context) ([]practrack.HoursLogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]practrack.HoursLogEntry, len(m.logs))
	copy(result, m.logs)
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		if result[i].StudentName != result[j].StudentName {
			return result[i].StudentName < result[j].StudentName
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.students = nil
	m.logs = nil

	defaults := make(map[string]bool)
	for _, name := range practrack.DefaultSiteNames() {
		defaults[name] = true
	}
	kept := m.sites[:0]
	for _, site := range m.sites {
		if defaults[site.SiteName] {
			kept = append(kept, site)
		}
	}
	m.sites = kept
	return nil
}

func (m *Memory) studentIndex(studentID string) int {
	for i, st := range m.students {
		if st.StudentID == studentID {
			return i
		}
	}
	return -1
}

func (m *Memory) siteIndex(siteName string) int {
	for i, site := range m.sites {
		if site.SiteName == siteName {
			return i
		}
	}
	return -1
}
