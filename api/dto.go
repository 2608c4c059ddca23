/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON shapes of the HTTP API, kept apart from the practrack domain types.
  Hours are serialized as decimal strings ("8.25"), dates as YYYY-MM-DD and
  clock times as HH:MM:SS.

NAMING CONVENTION:
  - *DTO:      Response types returned to clients
  - *Request:  Request body types from clients
  - *Response: Wrappers that add a one-shot ResultDTO

VALIDATION:
  Done in handlers and the practrack service, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/practrack/practrack"
)

// =============================================================================
// RESULT
// =============================================================================

// ResultDTO is the feedback message of a write operation.
type ResultDTO struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func toResultDTO(r practrack.Result) ResultDTO {
	return ResultDTO{Level: string(r.Level), Message: r.Message}
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error   string    `json:"error"`
	Details string    `json:"details,omitempty"`
	Result  ResultDTO `json:"result"`
}

// =============================================================================
// STUDENTS
// =============================================================================

// StudentDTO represents a student in API responses.
type StudentDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"student_name"`
	Initials  string `json:"student_initials"`
	StudentID string `json:"student_id"`
}

func toStudentDTO(st practrack.Student) StudentDTO {
	return StudentDTO{ID: st.ID, Name: st.Name, Initials: st.Initials, StudentID: st.StudentID}
}

// CreateStudentRequest adds a student by hand.
type CreateStudentRequest struct {
	Name      string `json:"student_name"`
	Initials  string `json:"student_initials"`
	StudentID string `json:"student_id"`
}

// RenameStudentRequest changes a student's name.
type RenameStudentRequest struct {
	Name string `json:"student_name"`
}

// StudentResponse wraps a created student.
type StudentResponse struct {
	Student StudentDTO `json:"student"`
	Result  ResultDTO  `json:"result"`
}

// ImportResponse reports a roster upload.
type ImportResponse struct {
	Added      int       `json:"added"`
	Skipped    int       `json:"skipped"`
	Duplicates int       `json:"duplicates"`
	Empty      int       `json:"empty"`
	Result     ResultDTO `json:"result"`
}

// ImportPreviewDTO shows what an upload would import, without writing.
type ImportPreviewDTO struct {
	Filename    string     `json:"filename"`
	Columns     []string   `json:"columns"`
	Rows        [][]string `json:"rows"`
	TotalRows   int        `json:"total_rows"`
	SchemaValid bool       `json:"schema_valid"`
	SchemaError string     `json:"schema_error,omitempty"`
}

// =============================================================================
// SITES
// =============================================================================

// SiteDTO represents a site requirement.
type SiteDTO struct {
	SiteName      string          `json:"site_name"`
	RequiredHours decimal.Decimal `json:"required_hours"`
}

func toSiteDTOs(sites []practrack.SiteRequirement) []SiteDTO {
	dtos := make([]SiteDTO, len(sites))
	for i, s := range sites {
		dtos[i] = SiteDTO{SiteName: s.SiteName, RequiredHours: s.RequiredHours}
	}
	return dtos
}

// UpsertSiteRequest adds or updates a site quota.
type UpsertSiteRequest struct {
	SiteName      string          `json:"site_name"`
	RequiredHours decimal.Decimal `json:"required_hours"`
}

// =============================================================================
// HOURS LOG
// =============================================================================

// LogHoursRequest is the body of the Log Practical Hours form. Date defaults
// to today; times accept HH:MM or HH:MM:SS.
type LogHoursRequest struct {
	LecturerName string `json:"lecturer_name"`
	StudentID    string `json:"student_id"`
	Site         string `json:"site"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Notes        string `json:"notes"`
}

// RecordDTO is one hours-log row.
type RecordDTO struct {
	ID           int64           `json:"id"`
	LecturerName string          `json:"lecturer_name"`
	StudentName  string          `json:"student_name"`
	StudentID    string          `json:"student_id"`
	Site         string          `json:"site"`
	Date         string          `json:"date"`
	StartTime    string          `json:"start_time"`
	EndTime      string          `json:"end_time"`
	TotalHours   decimal.Decimal `json:"total_hours"`
	Notes        string          `json:"notes"`
}

func toRecordDTO(e practrack.HoursLogEntry) RecordDTO {
	return RecordDTO{
		ID:           e.ID,
		LecturerName: e.LecturerName,
		StudentName:  e.StudentName,
		StudentID:    e.StudentID,
		Site:         e.Site,
		Date:         e.Date.Format(practrack.DateLayout),
		StartTime:    e.StartTime.String(),
		EndTime:      e.EndTime.String(),
		TotalHours:   e.TotalHours,
		Notes:        e.Notes,
	}
}

// RecordResponse wraps a logged entry.
type RecordResponse struct {
	Record RecordDTO `json:"record"`
	Result ResultDTO `json:"result"`
}

// PreviewHoursDTO is the calculated duration shown before submitting.
type PreviewHoursDTO struct {
	TotalHours decimal.Decimal `json:"total_hours"`
	Valid      bool            `json:"valid"`
}

// =============================================================================
// REPORTS
// =============================================================================

// SiteProgressDTO is one site's triple in a summary row.
type SiteProgressDTO struct {
	Site      string          `json:"site"`
	Completed decimal.Decimal `json:"completed"`
	Required  decimal.Decimal `json:"required"`
	Owed      decimal.Decimal `json:"owed"`
}

// SummaryRowDTO is one student's row of the completion matrix.
type SummaryRowDTO struct {
	StudentName string            `json:"student_name"`
	StudentID   string            `json:"student_id"`
	Sites       []SiteProgressDTO `json:"sites"`
}

// SummaryDTO is the completion matrix. Columns lists the flat headers used
// by the spreadsheet export.
type SummaryDTO struct {
	Sites   []string        `json:"sites"`
	Columns []string        `json:"columns"`
	Rows    []SummaryRowDTO `json:"rows"`
}

func toSummaryDTO(s practrack.Summary) SummaryDTO {
	dto := SummaryDTO{
		Sites:   s.Sites,
		Columns: s.Columns(),
		Rows:    make([]SummaryRowDTO, len(s.Rows)),
	}
	if dto.Sites == nil {
		dto.Sites = []string{}
	}
	for i, row := range s.Rows {
		r := SummaryRowDTO{
			StudentName: row.StudentName,
			StudentID:   row.StudentID,
			Sites:       make([]SiteProgressDTO, len(row.Sites)),
		}
		for j, p := range row.Sites {
			r.Sites[j] = SiteProgressDTO{Site: p.Site, Completed: p.Completed, Required: p.Required, Owed: p.Owed}
		}
		dto.Rows[i] = r
	}
	return dto
}

// OverviewDTO backs the Home view.
type OverviewDTO struct {
	Students   int             `json:"students"`
	LogEntries int             `json:"log_entries"`
	TotalHours decimal.Decimal `json:"total_hours"`
	Sites      []SiteDTO       `json:"sites"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo data set.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}
