package practrack_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/practrack/practrack"
)

func entry(studentID, site string, hours string) practrack.HoursLogEntry {
	return practrack.HoursLogEntry{
		StudentID:  studentID,
		Site:       site,
		Date:       time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		TotalHours: decimal.RequireFromString(hours),
	}
}

func site(name string, hours int64) practrack.SiteRequirement {
	return practrack.SiteRequirement{SiteName: name, RequiredHours: decimal.NewFromInt(hours)}
}

func TestComputeSummary_NoStudentsNoRows(t *testing.T) {
	// GIVEN: Sites and logs but no students
	sites := []practrack.SiteRequirement{site("A", 10)}
	logs := []practrack.HoursLogEntry{entry("S1", "A", "3")}

	// WHEN: Summarizing
	s := practrack.ComputeSummary(nil, sites, logs)

	// THEN: Zero rows
	assert.True(t, s.IsEmpty())
	assert.Equal(t, []string{"A"}, s.Sites)
}

func TestComputeSummary_Matrix(t *testing.T) {
	// GIVEN: Two students, three sites, logs including an orphaned site
	students := []practrack.Student{
		{Name: "Zoe", StudentID: "S2"},
		{Name: "Ann", StudentID: "S1"},
	}
	sites := []practrack.SiteRequirement{site("A", 10), site("B", 0), site("C", 5)}
	logs := []practrack.HoursLogEntry{
		entry("S1", "A", "3.3325"),
		entry("S1", "A", "3.3325"),
		entry("S1", "B", "2"),
		entry("S1", "Gone", "50"),
		entry("S2", "C", "7"),
	}

	// WHEN: Summarizing
	s := practrack.ComputeSummary(students, sites, logs)

	// THEN: Rows are by name, three triples per student
	require.Len(t, s.Rows, 2)
	assert.Equal(t, "Ann", s.Rows[0].StudentName)
	assert.Len(t, s.Columns(), 2+3*3)
	for _, row := range s.Rows {
		assert.Len(t, row.Sites, 3)
	}

	ann := s.Rows[0].Sites
	assert.Equal(t, "6.67", ann[0].Completed.String())
	assert.Equal(t, "3.34", ann[0].Owed.String(), "owed comes from the unrounded sum")
	assert.Equal(t, "-2", ann[1].Owed.String(), "zero requirement gives negative owed")
	assert.True(t, ann[2].Completed.IsZero())
	assert.Equal(t, "5", ann[2].Owed.String())

	zoe := s.Rows[1].Sites
	assert.Equal(t, "-2", zoe[2].Owed.String(), "over-completion goes negative")
}

func TestComputeSummary_TieBreaksOnStudentID(t *testing.T) {
	students := []practrack.Student{
		{Name: "Sam", StudentID: "B"},
		{Name: "Sam", StudentID: "A"},
	}

	s := practrack.ComputeSummary(students, nil, nil)

	require.Len(t, s.Rows, 2)
	assert.Equal(t, "A", s.Rows[0].StudentID)
	assert.Empty(t, s.Rows[0].Sites)
}
