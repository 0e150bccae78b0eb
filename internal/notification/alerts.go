package notification

import (
	"context"
	"fmt"
	"log"

	"trend-systemv1/internal/model"
)

// ReportAlerts turns a batch result into alerts worth delivering: Accumulate
// signals, trend/score conflicts, and limit-up closes. Everything else stays
// in storage without making noise.
func ReportAlerts(res model.BatchResult) []Alert {
	var alerts []Alert
	day := res.AsOf.Format("2006-01-02")

	for _, rep := range res.Reports {
		if rep.Signal == model.SignalAccumulate {
			alerts = append(alerts, Alert{
				Level: AlertInfo,
				Title: fmt.Sprintf("%s ACCUMULATE", rep.Symbol),
				Message: fmt.Sprintf("%s scored %d on %s (trend %s)",
					rep.Symbol, rep.Score.Value, day, rep.Trend),
			})
		}
		if rep.Conflict {
			alerts = append(alerts, Alert{
				Level: AlertWarning,
				Title: fmt.Sprintf("%s signal conflict", rep.Symbol),
				Message: fmt.Sprintf("trend %s disagrees with signal %s (score %d) on %s",
					rep.Trend, rep.Signal, rep.Score.Value, day),
			})
		}
		if rep.LimitUp {
			alerts = append(alerts, Alert{
				Level:   AlertInfo,
				Title:   fmt.Sprintf("%s limit-up", rep.Symbol),
				Message: fmt.Sprintf("%s closed limit-up on %s", rep.Symbol, day),
			})
		}
	}

	if len(res.Errors) > 0 {
		alerts = append(alerts, Alert{
			Level:   AlertWarning,
			Title:   "scan completed with errors",
			Message: fmt.Sprintf("%d of %d symbols failed on %s", len(res.Errors), len(res.Errors)+len(res.Reports), day),
		})
	}
	return alerts
}

// Fanout delivers each alert through every notifier. Delivery failures are
// logged, never fatal.
func Fanout(ctx context.Context, notifiers []Notifier, alerts []Alert) {
	for _, alert := range alerts {
		for _, n := range notifiers {
			if err := n.Send(ctx, alert); err != nil {
				log.Printf("[notify] delivery failed for %q: %v", alert.Title, err)
			}
		}
	}
}
