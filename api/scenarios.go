/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
	Provides pre-built data sets for demos. Each scenario resets the system
	and then drives the same practrack.Service operations a user would, so
	the data passes every validation rule.

AVAILABLE SCENARIOS:
	sample-cohort:  Four students with shifts across the default sites,
	                including one overnight shift
	orphaned-site:  A custom site is created, used, then deleted; its logs
	                stay in Records but drop out of the Summary

USAGE VIA API:
	POST /api/scenarios/load
	{"scenario_id": "sample-cohort"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxx(ctx, svc)
 3. Register it in scenarioLoaders

NOTE:
	Scenarios reset the database. Only use in development/demo environments.
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/warp/practrack/practrack"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "sample-cohort",
		Name:        "Sample Cohort",
		Description: "Four students with logged shifts across the default sites",
	},
	{
		ID:          "orphaned-site",
		Name:        "Orphaned Site",
		Description: "Hours logged at a site whose requirement was later deleted",
	},
}

var scenarioLoaders = map[string]func(context.Context, *practrack.Service) error{
	"sample-cohort": loadSampleCohort,
	"orphaned-site": loadOrphanedSite,
}

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	current := h.scenario()
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the system and loads a predefined scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := LoadScenario(r.Context(), h.Service, req.ScenarioID); err != nil {
		if _, known := scenarioLoaders[req.ScenarioID]; !known {
			writeError(w, http.StatusBadRequest, "Unknown scenario", err)
			return
		}
		h.fail(w, r, fmt.Sprintf("Failed to load scenario %s", req.ScenarioID), err)
		return
	}

	h.setScenario(req.ScenarioID)
	h.Logger.Info("scenario loaded", "scenario", req.ScenarioID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// LoadScenario resets svc's store and loads the named scenario into it.
func LoadScenario(ctx context.Context, svc *practrack.Service, id string) error {
	load, ok := scenarioLoaders[id]
	if !ok {
		return fmt.Errorf("unknown scenario %q", id)
	}
	if _, err := svc.Reset(ctx); err != nil {
		return err
	}
	return load(ctx, svc)
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

type shift struct {
	studentID string
	site      string
	date      string
	start     string
	end       string
	notes     string
}

func loadSampleCohort(ctx context.Context, svc *practrack.Service) error {
	students := []practrack.Student{
		{Name: "Ann Lee", Initials: "AL", StudentID: "S100"},
		{Name: "Ben Osei", Initials: "BO", StudentID: "S101"},
		{Name: "Chloe Park", Initials: "", StudentID: "S102"},
		{Name: "Dev Rao", Initials: "DR", StudentID: "S103"},
	}
	if err := addStudents(ctx, svc, students); err != nil {
		return err
	}

	return logShifts(ctx, svc, "Dr. Mensah", []shift{
		{"S100", "Site A - Hospital A", "2025-03-03", "09:00", "17:00", "orientation"},
		{"S100", "Site A - Hospital A", "2025-03-04", "08:30", "16:45", ""},
		{"S100", "Site B - Clinic B", "2025-03-10", "13:00", "18:00", ""},
		{"S101", "Site A - Hospital A", "2025-03-03", "09:00", "17:00", "orientation"},
		{"S101", "Site A - Hospital A", "2025-03-07", "22:00", "02:00", "night shift"},
		{"S102", "Site D - Community D", "2025-03-05", "10:00", "14:30", ""},
		{"S103", "Site C - Laboratory C", "2025-03-06", "07:15", "15:15", ""},
	})
}

func loadOrphanedSite(ctx context.Context, svc *practrack.Service) error {
	if err := addStudents(ctx, svc, []practrack.Student{
		{Name: "Ann Lee", Initials: "AL", StudentID: "S100"},
	}); err != nil {
		return err
	}
	if _, err := svc.SetSiteRequirement(ctx, "Rural Outreach", decimal.NewFromInt(30)); err != nil {
		return err
	}

	if err := logShifts(ctx, svc, "Dr. Mensah", []shift{
		{"S100", "Site A - Hospital A", "2025-04-01", "09:00", "15:00", ""},
		{"S100", "Rural Outreach", "2025-04-02", "08:00", "14:00", "mobile clinic"},
	}); err != nil {
		return err
	}

	_, err := svc.DeleteSite(ctx, "Rural Outreach")
	return err
}

func addStudents(ctx context.Context, svc *practrack.Service, students []practrack.Student) error {
	for _, st := range students {
		if _, _, err := svc.AddStudent(ctx, st.Name, st.Initials, st.StudentID); err != nil {
			return fmt.Errorf("add %s: %w", st.StudentID, err)
		}
	}
	return nil
}

func logShifts(ctx context.Context, svc *practrack.Service, lecturer string, shifts []shift) error {
	for _, s := range shifts {
		req, err := LogHoursRequest{
			LecturerName: lecturer,
			StudentID:    s.studentID,
			Site:         s.site,
			Date:         s.date,
			StartTime:    s.start,
			EndTime:      s.end,
			Notes:        s.notes,
		}.toLogRequest()
		if err != nil {
			return err
		}
		if _, _, err := svc.LogHours(ctx, req); err != nil {
			return fmt.Errorf("log %s at %s on %s: %w", s.studentID, s.site, s.date, err)
		}
	}
	return nil
}
