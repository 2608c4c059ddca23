package api

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/warp/practrack/practrack"
)

// Counters are registered once per process on the default registry, which
// /metrics exposes through promhttp.
var (
	hoursLogged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "practrack_hours_logged_total",
		Help: "Total practical hours accepted into the log.",
	})

	hoursRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "practrack_hours_rejected_total",
		Help: "Hours-log submissions rejected, by failed rule.",
	}, []string{"rule"})

	rosterRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "practrack_roster_rows_total",
		Help: "Roster rows processed on import, by outcome.",
	}, []string{"outcome"})

	exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "practrack_exports_total",
		Help: "Spreadsheet exports served, by table.",
	}, []string{"table"})

	studentsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "practrack_students",
		Help: "Students currently on the roster.",
	})

	logEntriesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "practrack_log_entries",
		Help: "Rows currently in the hours log.",
	})

	hoursTotalGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "practrack_hours_total",
		Help: "Sum of all logged hours.",
	})
)

func observeRejection(err error) {
	var verr *practrack.ValidationError
	if errors.As(err, &verr) {
		hoursRejected.WithLabelValues(string(verr.Rule)).Inc()
		return
	}
	if errors.Is(err, practrack.ErrStudentNotFound) {
		hoursRejected.WithLabelValues("unknown_student").Inc()
	}
}

func observeImport(res practrack.ImportResult) {
	rosterRows.WithLabelValues("added").Add(float64(res.Added))
	rosterRows.WithLabelValues("duplicate").Add(float64(res.Duplicates))
	rosterRows.WithLabelValues("empty").Add(float64(res.Empty))
}

func observeOverview(o practrack.Overview) {
	studentsGauge.Set(float64(o.Students))
	logEntriesGauge.Set(float64(o.LogEntries))
	hoursTotalGauge.Set(o.TotalHours.InexactFloat64())
}
