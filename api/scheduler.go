/*
scheduler.go - Background refresh of the inventory gauges

PURPOSE:
  Keeps the practrack_students, practrack_log_entries and
  practrack_hours_total gauges current without waiting for someone to open
  the Home view. Counters are updated inline by the handlers; gauges need
  a periodic read of the store.

DESIGN:
  - Runs a background goroutine with a configurable interval
  - Refreshes once immediately on Start
  - Start and Stop are safe to call more than once
  - Stop waits for the goroutine to exit

USAGE:
  refresher := NewStatsRefresher(svc, logger, time.Minute)
  refresher.Start()
  // ... later
  refresher.Stop()
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/practrack/practrack"
)

// StatsRefresher periodically publishes Overview numbers as gauges.
type StatsRefresher struct {
	Service  *practrack.Service
	Logger   *slog.Logger
	Interval time.Duration

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewStatsRefresher creates a refresher. A non-positive interval disables it.
func NewStatsRefresher(svc *practrack.Service, logger *slog.Logger, interval time.Duration) *StatsRefresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsRefresher{
		Service:  svc,
		Logger:   logger,
		Interval: interval,
	}
}

// Start begins refreshing in the background.
func (sr *StatsRefresher) Start() {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	if sr.Interval <= 0 {
		sr.Logger.Info("stats refresher disabled")
		return
	}
	if sr.ticker != nil {
		return
	}

	sr.ticker = time.NewTicker(sr.Interval)
	sr.stop = make(chan struct{})
	sr.wg.Add(1)

	go sr.run(sr.ticker, sr.stop)

	sr.Logger.Info("stats refresher started", "interval", sr.Interval)
}

// Stop halts the refresher and waits for it to finish.
func (sr *StatsRefresher) Stop() {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	if sr.ticker == nil {
		return
	}
	sr.ticker.Stop()
	close(sr.stop)
	sr.wg.Wait()
	sr.ticker = nil
	sr.Logger.Info("stats refresher stopped")
}

func (sr *StatsRefresher) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer sr.wg.Done()

	sr.Refresh(context.Background())

	for {
		select {
		case <-ticker.C:
			sr.Refresh(context.Background())
		case <-stop:
			return
		}
	}
}

// Refresh reads the overview once and updates the gauges.
func (sr *StatsRefresher) Refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	o, err := sr.Service.Overview(ctx)
	if err != nil {
		sr.Logger.Error("stats refresh failed", "error", err)
		return
	}
	observeOverview(o)
}
