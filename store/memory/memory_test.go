package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/practrack/practrack"
)

func entry(studentID, name, date string) practrack.HoursLogEntry {
	d, _ := practrack.ParseDate(date)
	return practrack.HoursLogEntry{
		LecturerName: "Dr. Smith",
		StudentID:    studentID,
		StudentName:  name,
		Site:         "Site A - Hospital A",
		Date:         d,
		TotalHours:   decimal.NewFromInt(1),
	}
}

func TestNewMemory_SeedsDefaults(t *testing.T) {
	m := NewMemory()

	sites, err := m.ListSites(context.Background())
	require.NoError(t, err)

	assert.Len(t, sites, len(practrack.DefaultSites))

	// Mutating the copy must not touch the package defaults
	require.NoError(t, m.UpsertSite(context.Background(), practrack.SiteRequirement{
		SiteName: "Site A - Hospital A", RequiredHours: decimal.NewFromInt(1),
	}))
	assert.Equal(t, "120", practrack.DefaultSites[0].RequiredHours.String())
}

func TestStudents_UniqueAndSorted(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for _, st := range []practrack.Student{
		{Name: "Zoe", StudentID: "S3"},
		{Name: "Ann", StudentID: "S2"},
		{Name: "Ann", StudentID: "S1"},
	} {
		_, err := m.CreateStudent(ctx, st)
		require.NoError(t, err)
	}
	_, err := m.CreateStudent(ctx, practrack.Student{Name: "Dup", StudentID: "S1"})
	assert.ErrorIs(t, err, practrack.ErrDuplicateKey)

	students, err := m.ListStudents(ctx)
	require.NoError(t, err)
	require.Len(t, students, 3)
	assert.Equal(t, "S1", students[0].StudentID)
	assert.Equal(t, "S2", students[1].StudentID)
	assert.Equal(t, "S3", students[2].StudentID)
}

func TestRenameDelete_Cascade(t *testing.T) {
	// GIVEN: Two students with one log each
	m := NewMemory()
	ctx := context.Background()
	_, _ = m.CreateStudent(ctx, practrack.Student{Name: "Ann", StudentID: "S1"})
	_, _ = m.CreateStudent(ctx, practrack.Student{Name: "Ben", StudentID: "S2"})
	_, _ = m.AppendLog(ctx, entry("S1", "Ann", "2025-03-01"))
	_, _ = m.AppendLog(ctx, entry("S2", "Ben", "2025-03-01"))

	// WHEN: Renaming one and deleting the other
	require.NoError(t, m.RenameStudent(ctx, "S1", "Anna"))
	require.NoError(t, m.DeleteStudent(ctx, "S2"))

	// THEN: Logs follow
	logs, err := m.ListLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Anna", logs[0].StudentName)

	assert.ErrorIs(t, m.RenameStudent(ctx, "S2", "x"), practrack.ErrStudentNotFound)
	assert.ErrorIs(t, m.DeleteStudent(ctx, "S2"), practrack.ErrStudentNotFound)
}

func TestListLogs_Ordering(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_, _ = m.AppendLog(ctx, entry("S2", "Ben", "2025-03-01"))
	_, _ = m.AppendLog(ctx, entry("S1", "Ann", "2025-03-01"))
	_, _ = m.AppendLog(ctx, entry("S2", "Ben", "2025-03-09"))

	logs, err := m.ListLogs(ctx)
	require.NoError(t, err)

	require.Len(t, logs, 3)
	assert.Equal(t, int64(3), logs[0].ID)
	assert.Equal(t, int64(2), logs[1].ID)
	assert.Equal(t, int64(1), logs[2].ID)
}

func TestSites_UpsertDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.UpsertSite(ctx, practrack.SiteRequirement{SiteName: "Rural", RequiredHours: decimal.NewFromInt(5)}))
	require.NoError(t, m.UpsertSite(ctx, practrack.SiteRequirement{SiteName: "Site B - Clinic B", RequiredHours: decimal.NewFromInt(90)}))

	sites, _ := m.ListSites(ctx)
	require.Len(t, sites, 5)
	assert.Equal(t, "Site B - Clinic B", sites[1].SiteName)
	assert.Equal(t, "90", sites[1].RequiredHours.String())

	require.NoError(t, m.DeleteSite(ctx, "Rural"))
	assert.ErrorIs(t, m.DeleteSite(ctx, "Rural"), practrack.ErrSiteNotFound)

	site, err := m.GetSite(ctx, "Rural")
	require.NoError(t, err)
	assert.Nil(t, site)
}

func TestReset_KeepsDefaultSites(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_, _ = m.CreateStudent(ctx, practrack.Student{Name: "Ann", StudentID: "S1"})
	_, _ = m.AppendLog(ctx, entry("S1", "Ann", "2025-03-01"))
	_ = m.UpsertSite(ctx, practrack.SiteRequirement{SiteName: "Rural", RequiredHours: decimal.NewFromInt(5)})

	require.NoError(t, m.Reset(ctx))

	students, _ := m.ListStudents(ctx)
	logs, _ := m.ListLogs(ctx)
	sites, _ := m.ListSites(ctx)
	assert.Empty(t, students)
	assert.Empty(t, logs)
	assert.Len(t, sites, 4)
}
