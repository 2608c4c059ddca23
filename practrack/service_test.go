package practrack_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/practrack/practrack"
	"github.com/warp/practrack/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService(t *testing.T) (*practrack.Service, context.Context) {
	t.Helper()
	return practrack.NewService(memory.NewMemory()), context.Background()
}

func logRequest(t *testing.T, studentID, site, start, end string) practrack.LogRequest {
	t.Helper()
	date, err := practrack.ParseDate("2025-03-01")
	require.NoError(t, err)
	return practrack.LogRequest{
		LecturerName: "Dr. Smith",
		StudentID:    studentID,
		Site:         site,
		Date:         date,
		StartTime:    mustClock(t, start),
		EndTime:      mustClock(t, end),
	}
}

// =============================================================================
// ROSTER RECONCILIATION
// =============================================================================

func TestImportRoster_SkipsEmptyAndDuplicates(t *testing.T) {
	// GIVEN: S100 already exists
	svc, ctx := newTestService(t)
	_, _, err := svc.AddStudent(ctx, "Existing", "", "S100")
	require.NoError(t, err)

	roster := practrack.Roster{
		Header: []string{" Student_Name ", "STUDENT_INITIALS", "Student_ID"},
		Records: [][]string{
			{"Ann", "nan", "A1"},
			{"Bob", "", ""},
			{"Dup", "D", "S100"},
			{"", "X", "X1"},
			{"Cara", "CC"}, // short row: no ID
		},
	}

	// WHEN: Importing
	res, msg, err := svc.ImportRoster(ctx, roster)

	// THEN: Only Ann is added; initials "nan" become empty
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 4, res.Skipped)
	assert.Equal(t, 1, res.Duplicates)
	assert.Equal(t, 3, res.Empty)
	assert.Equal(t, practrack.LevelSuccess, msg.Level)

	ann, err := svc.Student(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, "", ann.Initials)

	existing, err := svc.Student(ctx, "S100")
	require.NoError(t, err)
	assert.Equal(t, "Existing", existing.Name, "duplicate rows never overwrite")
}

func TestImportRoster_SchemaMismatch(t *testing.T) {
	// GIVEN: A roster with only the name column
	svc, ctx := newTestService(t)
	roster := practrack.Roster{
		Header:  []string{"Student_Name", "Initials"},
		Records: [][]string{{"Ann", "A"}},
	}

	// WHEN: Importing
	_, _, err := svc.ImportRoster(ctx, roster)

	// THEN: Nothing is written
	require.ErrorIs(t, err, practrack.ErrSchemaMismatch)
	var schema *practrack.SchemaMismatchError
	require.True(t, errors.As(err, &schema))
	assert.Equal(t, []string{"student_id"}, schema.Missing)

	students, err := svc.Students(ctx)
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestImportRoster_DuplicateHeaderFirstWins(t *testing.T) {
	svc, ctx := newTestService(t)
	roster := practrack.Roster{
		Header:  []string{"student_id", "student_name", "Student_ID"},
		Records: [][]string{{"FIRST", "Ann", "SECOND"}},
	}

	_, _, err := svc.ImportRoster(ctx, roster)
	require.NoError(t, err)

	_, err = svc.Student(ctx, "FIRST")
	assert.NoError(t, err)
}

// =============================================================================
// STUDENTS
// =============================================================================

func TestAddStudent_Duplicate(t *testing.T) {
	svc, ctx := newTestService(t)
	_, _, err := svc.AddStudent(ctx, "Ann", "AL", "S100")
	require.NoError(t, err)

	_, _, err = svc.AddStudent(ctx, "Other", "", " S100 ")

	require.ErrorIs(t, err, practrack.ErrDuplicateKey)
	id, ok := practrack.IsDuplicate(err)
	assert.True(t, ok)
	assert.Equal(t, "S100", id)
	assert.Equal(t, "Student ID S100 already exists", err.Error())
}

func TestRenameStudent(t *testing.T) {
	// GIVEN: Ann with one log row
	svc, ctx := newTestService(t)
	_, _, err := svc.AddStudent(ctx, "Ann", "", "S1")
	require.NoError(t, err)
	_, _, err = svc.LogHours(ctx, logRequest(t, "S1", "Site A - Hospital A", "09:00", "10:00"))
	require.NoError(t, err)

	// WHEN: Renaming to the same name
	res, err := svc.RenameStudent(ctx, "S1", "Ann")
	require.NoError(t, err)
	assert.Equal(t, practrack.LevelWarning, res.Level)

	// WHEN: Renaming to an empty name
	_, err = svc.RenameStudent(ctx, "S1", "   ")
	assert.ErrorIs(t, err, practrack.ErrValidation)

	// WHEN: Renaming for real
	res, err = svc.RenameStudent(ctx, "S1", "Anna")
	require.NoError(t, err)
	assert.Equal(t, "Updated name for ID S1 to Anna.", res.Message)

	// THEN: The log snapshot follows
	records, err := svc.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Anna", records[0].StudentName)

	_, err = svc.RenameStudent(ctx, "NOPE", "X")
	assert.ErrorIs(t, err, practrack.ErrStudentNotFound)
}

func TestDeleteStudent_Cascades(t *testing.T) {
	svc, ctx := newTestService(t)
	for _, id := range []string{"S1", "S2"} {
		_, _, err := svc.AddStudent(ctx, "Student "+id, "", id)
		require.NoError(t, err)
		_, _, err = svc.LogHours(ctx, logRequest(t, id, "Site A - Hospital A", "09:00", "10:00"))
		require.NoError(t, err)
	}

	res, err := svc.DeleteStudent(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, "Deleted student 'Student S1' (ID: S1) and all related hours.", res.Message)

	records, err := svc.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "S2", records[0].StudentID)

	_, err = svc.DeleteStudent(ctx, "S1")
	assert.True(t, practrack.IsNotFound(err))
}

// =============================================================================
// HOURS LOG
// =============================================================================

func TestLogHours_AcceptanceRules(t *testing.T) {
	svc, ctx := newTestService(t)
	_, _, err := svc.AddStudent(ctx, "Ann", "", "S1")
	require.NoError(t, err)

	cases := []struct {
		name  string
		mod   func(*practrack.LogRequest)
		rule  practrack.Rule
		field string
	}{
		{"zero duration", func(r *practrack.LogRequest) { r.EndTime = r.StartTime }, practrack.RuleNonPositiveDuration, ""},
		{"duration checked first", func(r *practrack.LogRequest) { r.EndTime = r.StartTime; r.LecturerName = "" }, practrack.RuleNonPositiveDuration, ""},
		{"blank lecturer", func(r *practrack.LogRequest) { r.LecturerName = "  " }, practrack.RuleMissingField, "lecturer_name"},
		{"blank site", func(r *practrack.LogRequest) { r.Site = "\t" }, practrack.RuleMissingField, "site"},
		{"blank student", func(r *practrack.LogRequest) { r.StudentID = "" }, practrack.RuleMissingField, "student_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := logRequest(t, "S1", "Site B - Clinic B", "09:00", "12:00")
			tc.mod(&req)

			_, _, err := svc.LogHours(ctx, req)

			var verr *practrack.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tc.rule, verr.Rule)
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	records, err := svc.Records(ctx)
	require.NoError(t, err)
	assert.Empty(t, records, "rejected entries are never written")
}

func TestLogHours_TrimsAndSnapshots(t *testing.T) {
	svc, ctx := newTestService(t)
	_, _, err := svc.AddStudent(ctx, "Ann", "", "S1")
	require.NoError(t, err)

	req := logRequest(t, " S1 ", "  Site B - Clinic B ", "22:00", "02:00")
	req.LecturerName = " Dr. Smith "
	entry, res, err := svc.LogHours(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, "Dr. Smith", entry.LecturerName)
	assert.Equal(t, "Site B - Clinic B", entry.Site)
	assert.Equal(t, "Ann", entry.StudentName)
	assert.Equal(t, "4", entry.TotalHours.String())
	assert.Equal(t, "Logged 4 hours for Ann at Site B - Clinic B.", res.Message)
}

func TestLogHours_UnknownStudent(t *testing.T) {
	svc, ctx := newTestService(t)

	_, _, err := svc.LogHours(ctx, logRequest(t, "GHOST", "Site B - Clinic B", "09:00", "10:00"))

	assert.ErrorIs(t, err, practrack.ErrStudentNotFound)
}

// =============================================================================
// SITES + RESET
// =============================================================================

func TestSetSiteRequirement(t *testing.T) {
	svc, ctx := newTestService(t)

	res, err := svc.SetSiteRequirement(ctx, "Rural", decimal.NewFromInt(30))
	require.NoError(t, err)
	assert.Equal(t, "Added new site 'Rural' with 30.0 hours.", res.Message)

	res, err = svc.SetSiteRequirement(ctx, "Rural", decimal.RequireFromString("12.5"))
	require.NoError(t, err)
	assert.Equal(t, "Updated 'Rural' requirement to 12.5 hours.", res.Message)

	_, err = svc.SetSiteRequirement(ctx, "Rural", decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, practrack.ErrValidation)

	_, err = svc.SetSiteRequirement(ctx, " ", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, practrack.ErrValidation)
}

func TestDeleteSite_KeepsLogsAndReAddRestores(t *testing.T) {
	// GIVEN: Hours at a custom site
	svc, ctx := newTestService(t)
	_, _, err := svc.AddStudent(ctx, "Ann", "", "S1")
	require.NoError(t, err)
	_, err = svc.SetSiteRequirement(ctx, "Rural", decimal.NewFromInt(10))
	require.NoError(t, err)
	_, _, err = svc.LogHours(ctx, logRequest(t, "S1", "Rural", "09:00", "12:00"))
	require.NoError(t, err)

	// WHEN: Deleting the site
	_, err = svc.DeleteSite(ctx, "Rural")
	require.NoError(t, err)

	// THEN: The log row remains but the summary drops the column
	records, err := svc.Records(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Len(t, summary.Rows[0].Sites, 4)

	// AND: Re-adding restores the contribution
	_, err = svc.SetSiteRequirement(ctx, "Rural", decimal.NewFromInt(10))
	require.NoError(t, err)
	summary, err = svc.Summary(ctx)
	require.NoError(t, err)
	require.Len(t, summary.Rows[0].Sites, 5)
	assert.Equal(t, "3", summary.Rows[0].Sites[4].Completed.String())

	_, err = svc.DeleteSite(ctx, "Nowhere")
	assert.ErrorIs(t, err, practrack.ErrSiteNotFound)
}

func TestReset(t *testing.T) {
	svc, ctx := newTestService(t)
	_, _, err := svc.AddStudent(ctx, "Ann", "", "S1")
	require.NoError(t, err)
	_, _, err = svc.LogHours(ctx, logRequest(t, "S1", "Site A - Hospital A", "09:00", "10:00"))
	require.NoError(t, err)
	_, err = svc.SetSiteRequirement(ctx, "Rural", decimal.NewFromInt(10))
	require.NoError(t, err)

	res, err := svc.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, practrack.LevelError, res.Level)

	o, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Zero(t, o.Students)
	assert.Zero(t, o.LogEntries)
	assert.Equal(t, practrack.DefaultSiteNames(), siteNames(o.Sites))
}

func siteNames(sites []practrack.SiteRequirement) []string {
	names := make([]string, len(sites))
	for i, s := range sites {
		names[i] = s.SiteName
	}
	return names
}
