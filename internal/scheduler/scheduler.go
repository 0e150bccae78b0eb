// Package scheduler runs the end-of-day screening scan on a cron cadence
// and fans the resulting reports out to storage, subscribers and alerts.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"trend-systemv1/internal/calendar"
	"trend-systemv1/internal/engine"
	"trend-systemv1/internal/metrics"
	"trend-systemv1/internal/model"
	"trend-systemv1/internal/notification"

	"github.com/robfig/cron/v3"
)

// Scheduler manages the daily scan task.
type Scheduler struct {
	Cron      *cron.Cron
	Batch     *engine.Batch
	Writers   []model.ReportWriter
	Notifiers []notification.Notifier
	Metrics   *metrics.Metrics
	Health    *metrics.HealthStatus
	Ctx       context.Context

	log *slog.Logger
}

// New creates a Scheduler. Metrics, Health and notifiers are optional.
func New(ctx context.Context, batch *engine.Batch, writers []model.ReportWriter, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Batch:   batch,
		Writers: writers,
		Ctx:     ctx,
		log:     log,
	}
}

// Register adds the daily scan at the given cron spec (seconds field
// included, e.g. "0 30 15 * * 1-5" for 15:30 Mon-Fri).
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyScan); err != nil {
		return fmt.Errorf("register daily scan: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started", "next_scan", calendar.NextScanTime(time.Now()).Format(time.RFC3339))
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	s.log.Info("scheduler stopped")
}

// RunNow executes the scan immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.dailyScan()
}

func (s *Scheduler) dailyScan() {
	now := time.Now()
	if !calendar.IsTradingDay(now) {
		s.log.Info("skipping scan on non-trading day", "date", now.In(calendar.CST).Format("2006-01-02"))
		return
	}

	started := time.Now()
	res, err := s.Batch.Run(s.Ctx, now)
	if err != nil {
		s.log.Error("daily scan failed", "err", err)
		notification.Fanout(s.Ctx, s.Notifiers, []notification.Alert{{
			Level:   notification.AlertCritical,
			Title:   "daily scan failed",
			Message: err.Error(),
		}})
		return
	}
	s.observe(res, time.Since(started))

	for _, w := range s.Writers {
		if err := w.WriteReports(s.Ctx, res.Reports); err != nil {
			s.log.Error("report write failed", "err", err)
		}
	}

	notification.Fanout(s.Ctx, s.Notifiers, notification.ReportAlerts(res))
}

func (s *Scheduler) observe(res model.BatchResult, elapsed time.Duration) {
	if s.Health != nil {
		s.Health.SetLastScan(res.AsOf, len(res.Reports))
	}
	if s.Metrics == nil {
		return
	}
	s.Metrics.BatchDuration.Observe(elapsed.Seconds())
	s.Metrics.SymbolsEvaluated.Add(float64(len(res.Reports)))
	s.Metrics.EvalErrors.Add(float64(len(res.Errors)))
	for _, rep := range res.Reports {
		s.Metrics.TrendStates.WithLabelValues(string(rep.Trend)).Inc()
		s.Metrics.SignalsTotal.WithLabelValues(string(rep.Signal)).Inc()
		if rep.Conflict {
			s.Metrics.Conflicts.Inc()
		}
		if rep.LimitUp {
			s.Metrics.LimitUps.Inc()
		}
	}
}
