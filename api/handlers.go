/*
handlers.go - HTTP API handlers for the practical-hours tracker

PURPOSE:
  Exposes the practrack service via REST API. Handles HTTP request/response,
  JSON serialization and file upload/download, and delegates every decision
  to practrack.Service.

ENDPOINTS:
  Home:
    GET    /api/overview                   Student count, log count, total hours, sites

  Students:
    GET    /api/students                   List students by name
    POST   /api/students                   Add a student by hand
    PUT    /api/students/{studentID}       Rename (rewrites log snapshots)
    DELETE /api/students/{studentID}       Delete student and their hours
    POST   /api/students/import            Upload roster (multipart "file")
    POST   /api/students/import/preview    Parse roster, check headers, no writes
    GET    /api/students/export            Students as .xlsx
    POST   /api/reset                      Wipe students, logs, custom sites

  Sites:
    GET    /api/sites                      List site requirements
    PUT    /api/sites                      Add or update a site quota
    DELETE /api/sites?site_name=...        Delete a site requirement

  Hours:
    POST   /api/records                    Log one shift
    POST   /api/records/preview            Calculated duration for the form
    GET    /api/records                    All rows, newest date first
    GET    /api/records/export             Records as .xlsx

  Summary:
    GET    /api/summary                    Completion matrix
    GET    /api/summary/export             Completion matrix as .xlsx

RESULTS:
  Every write returns {"result": {"level", "message"}} alongside its payload.
  The message belongs to that response only; nothing is kept server side.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, bad roster headers, unreadable files
  - 404: Student or site not found
  - 409: Duplicate student ID
  - 500: Internal errors

SECURITY NOTE:
  No authentication. Deploy behind something that provides it.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/warp/practrack/export"
	"github.com/warp/practrack/practrack"
	"github.com/warp/practrack/roster"
)

// DefaultMaxUploadBytes bounds roster uploads when Handler.MaxUploadBytes is 0.
const DefaultMaxUploadBytes = 10 << 20

// previewRows is how many roster rows the import preview returns.
const previewRows = 50

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service        *practrack.Service
	Logger         *slog.Logger
	MaxUploadBytes int64

	// Store is optional; when set, /healthz pings it.
	Store Pinger

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler for svc. A nil logger falls back to slog.Default.
func NewHandler(svc *practrack.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Service:        svc,
		Logger:         logger,
		MaxUploadBytes: DefaultMaxUploadBytes,
	}
}

// =============================================================================
// HOME
// =============================================================================

// GetOverview returns the Home view metrics.
// GET /api/overview
func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	o, err := h.Service.Overview(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to load overview", err)
		return
	}
	observeOverview(o)

	writeJSON(w, http.StatusOK, OverviewDTO{
		Students:   o.Students,
		LogEntries: o.LogEntries,
		TotalHours: o.TotalHours,
		Sites:      toSiteDTOs(o.Sites),
	})
}

// Healthz reports liveness, and store reachability when a Store is set.
// GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.Store != nil {
		if err := h.Store.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Database unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// STUDENT HANDLERS
// =============================================================================

// ListStudents returns all students ordered by name.
// GET /api/students
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.Service.Students(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list students", err)
		return
	}

	dtos := make([]StudentDTO, len(students))
	for i, st := range students {
		dtos[i] = toStudentDTO(st)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateStudent adds one student.
// POST /api/students
func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req CreateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	st, res, err := h.Service.AddStudent(r.Context(), req.Name, req.Initials, req.StudentID)
	if err != nil {
		h.fail(w, r, "Failed to add student", err)
		return
	}

	h.Logger.Info("student added", "student_id", st.StudentID)
	writeJSON(w, http.StatusCreated, StudentResponse{Student: toStudentDTO(st), Result: toResultDTO(res)})
}

// RenameStudent changes a student's name.
// PUT /api/students/{studentID}
func (h *Handler) RenameStudent(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	var req RenameStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, err := h.Service.RenameStudent(r.Context(), studentID, req.Name)
	if err != nil {
		h.fail(w, r, "Failed to rename student", err)
		return
	}

	h.Logger.Info("student renamed", "student_id", studentID, "level", res.Level)
	writeJSON(w, http.StatusOK, map[string]any{"result": toResultDTO(res)})
}

// DeleteStudent removes a student and every hours-log row for them.
// DELETE /api/students/{studentID}
func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	res, err := h.Service.DeleteStudent(r.Context(), studentID)
	if err != nil {
		h.fail(w, r, "Failed to delete student", err)
		return
	}

	h.Logger.Warn("student deleted", "student_id", studentID)
	writeJSON(w, http.StatusOK, map[string]any{"result": toResultDTO(res)})
}

// ImportStudents uploads a roster file and adds its students.
// POST /api/students/import
func (h *Handler) ImportStudents(w http.ResponseWriter, r *http.Request) {
	rs, _, ok := h.readRoster(w, r)
	if !ok {
		return
	}

	res, msg, err := h.Service.ImportRoster(r.Context(), rs)
	if err != nil {
		h.fail(w, r, "Failed to import class list", err)
		return
	}
	observeImport(res)

	h.Logger.Info("roster imported", "added", res.Added, "duplicates", res.Duplicates, "empty", res.Empty)
	writeJSON(w, http.StatusOK, ImportResponse{
		Added:      res.Added,
		Skipped:    res.Skipped,
		Duplicates: res.Duplicates,
		Empty:      res.Empty,
		Result:     toResultDTO(msg),
	})
}

// PreviewImport parses a roster and reports what an import would see.
// POST /api/students/import/preview
func (h *Handler) PreviewImport(w http.ResponseWriter, r *http.Request) {
	rs, filename, ok := h.readRoster(w, r)
	if !ok {
		return
	}

	preview := ImportPreviewDTO{
		Filename:    filename,
		Columns:     rs.NormalizedHeader(),
		Rows:        rs.Head(previewRows),
		TotalRows:   len(rs.Records),
		SchemaValid: true,
	}
	if preview.Rows == nil {
		preview.Rows = [][]string{}
	}
	if err := rs.CheckSchema(); err != nil {
		preview.SchemaValid = false
		preview.SchemaError = err.Error()
	}
	writeJSON(w, http.StatusOK, preview)
}

// ExportStudents downloads the roster as a spreadsheet.
// GET /api/students/export
func (h *Handler) ExportStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.Service.Students(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list students", err)
		return
	}
	h.writeWorkbook(w, r, "students.xlsx", export.StudentsTable(students))
}

// ResetDatabase wipes students, logs and non-default sites.
// POST /api/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.Reset(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to reset database", err)
		return
	}

	h.setScenario("")
	h.Logger.Warn("system data reset")
	writeJSON(w, http.StatusOK, map[string]any{"result": toResultDTO(res)})
}

// readRoster pulls the "file" part from a multipart upload and parses it.
// It writes the error response itself and returns ok=false on failure.
func (h *Handler) readRoster(w http.ResponseWriter, r *http.Request) (practrack.Roster, string, bool) {
	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid upload", err)
		return practrack.Roster{}, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file field", err)
		return practrack.Roster{}, "", false
	}
	defer file.Close()

	rs, err := roster.Parse(file, header.Filename)
	if err != nil {
		h.fail(w, r, "Could not read class list", err)
		return practrack.Roster{}, "", false
	}
	return rs, header.Filename, true
}

// =============================================================================
// SITE HANDLERS
// =============================================================================

// ListSites returns site requirements in enumeration order.
// GET /api/sites
func (h *Handler) ListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := h.Service.Sites(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list sites", err)
		return
	}
	writeJSON(w, http.StatusOK, toSiteDTOs(sites))
}

// UpsertSite adds a site or updates its required hours.
// PUT /api/sites
func (h *Handler) UpsertSite(w http.ResponseWriter, r *http.Request) {
	var req UpsertSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, err := h.Service.SetSiteRequirement(r.Context(), req.SiteName, req.RequiredHours)
	if err != nil {
		h.fail(w, r, "Failed to save site requirement", err)
		return
	}

	h.Logger.Info("site requirement saved", "site", req.SiteName, "required_hours", req.RequiredHours.String())
	writeJSON(w, http.StatusOK, map[string]any{"result": toResultDTO(res)})
}

// DeleteSite removes a site requirement. Logged hours at the site are kept.
// DELETE /api/sites?site_name=...
func (h *Handler) DeleteSite(w http.ResponseWriter, r *http.Request) {
	siteName := r.URL.Query().Get("site_name")
	if strings.TrimSpace(siteName) == "" {
		writeError(w, http.StatusBadRequest, "site_name is required", nil)
		return
	}

	res, err := h.Service.DeleteSite(r.Context(), siteName)
	if err != nil {
		h.fail(w, r, "Failed to delete site", err)
		return
	}

	h.Logger.Warn("site deleted", "site", siteName)
	writeJSON(w, http.StatusOK, map[string]any{"result": toResultDTO(res)})
}

// =============================================================================
// HOURS LOG HANDLERS
// =============================================================================

// LogHours records one practical shift.
// POST /api/records
func (h *Handler) LogHours(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLogRequest(w, r)
	if !ok {
		return
	}

	entry, res, err := h.Service.LogHours(r.Context(), req)
	if err != nil {
		observeRejection(err)
		h.fail(w, r, "Hours not logged", err)
		return
	}
	hoursLogged.Add(entry.TotalHours.InexactFloat64())

	h.Logger.Info("hours logged",
		"student_id", entry.StudentID,
		"site", entry.Site,
		"hours", entry.TotalHours.String(),
	)
	writeJSON(w, http.StatusCreated, RecordResponse{Record: toRecordDTO(entry), Result: toResultDTO(res)})
}

// PreviewHours returns the duration the form would log.
// POST /api/records/preview
func (h *Handler) PreviewHours(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLogRequest(w, r)
	if !ok {
		return
	}

	hours := h.Service.PreviewHours(req)
	writeJSON(w, http.StatusOK, PreviewHoursDTO{TotalHours: hours, Valid: hours.IsPositive()})
}

// ListRecords returns every hours-log row, newest date first.
// GET /api/records
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.Records(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list records", err)
		return
	}

	dtos := make([]RecordDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toRecordDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ExportRecords downloads the hours log as a spreadsheet.
// GET /api/records/export
func (h *Handler) ExportRecords(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.Records(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list records", err)
		return
	}
	h.writeWorkbook(w, r, "records.xlsx", export.RecordsTable(entries))
}

func decodeLogRequest(w http.ResponseWriter, r *http.Request) (practrack.LogRequest, bool) {
	var body LogHoursRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return practrack.LogRequest{}, false
	}

	req, err := body.toLogRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date or time", err)
		return practrack.LogRequest{}, false
	}
	return req, true
}

func (b LogHoursRequest) toLogRequest() (practrack.LogRequest, error) {
	req := practrack.LogRequest{
		LecturerName: b.LecturerName,
		StudentID:    b.StudentID,
		Site:         b.Site,
		Notes:        b.Notes,
		Date:         practrack.Today(),
	}

	var err error
	if strings.TrimSpace(b.Date) != "" {
		if req.Date, err = practrack.ParseDate(b.Date); err != nil {
			return practrack.LogRequest{}, fmt.Errorf("date: %w", err)
		}
	}
	if req.StartTime, err = practrack.ParseClock(b.StartTime); err != nil {
		return practrack.LogRequest{}, fmt.Errorf("start_time: %w", err)
	}
	if req.EndTime, err = practrack.ParseClock(b.EndTime); err != nil {
		return practrack.LogRequest{}, fmt.Errorf("end_time: %w", err)
	}
	return req, nil
}

// =============================================================================
// SUMMARY HANDLERS
// =============================================================================

// GetSummary returns the completion matrix.
// GET /api/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to compute summary", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

// ExportSummary downloads the completion matrix as a spreadsheet.
// GET /api/summary/export
func (h *Handler) ExportSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to compute summary", err)
		return
	}
	if summary.IsEmpty() {
		writeError(w, http.StatusNotFound, "No students to summarize", nil)
		return
	}
	h.writeWorkbook(w, r, "summary.xlsx", export.SummaryTable(summary))
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) writeWorkbook(w http.ResponseWriter, r *http.Request, filename string, table export.Table) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := export.Write(w, table); err != nil {
		// Headers may already be out; all we can do is log.
		h.Logger.Error("export failed", "table", table.Sheet, "error", err, "path", r.URL.Path)
		return
	}
	exportsTotal.WithLabelValues(strings.ToLower(table.Sheet)).Inc()
}

// fail maps a service error to its HTTP status and writes it.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error(message, "error", err, "path", r.URL.Path)
	} else {
		h.Logger.Debug(message, "error", err, "path", r.URL.Path)
	}
	writeError(w, status, message, err)
}

func statusFor(err error) int {
	switch {
	case practrack.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, practrack.ErrDuplicateKey):
		return http.StatusConflict
	case practrack.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) setScenario(id string) {
	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
}

func (h *Handler) scenario() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentScenario
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	resp.Result = ResultDTO{Level: string(practrack.LevelError), Message: message}
	if err != nil {
		resp.Details = err.Error()
		resp.Result.Message = err.Error()
	}
	writeJSON(w, status, resp)
}
