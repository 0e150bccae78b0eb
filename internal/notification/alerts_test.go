package notification

import (
	"testing"
	"time"

	"trend-systemv1/internal/model"
)

func TestReportAlerts(t *testing.T) {
	res := model.BatchResult{
		AsOf: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Reports: []model.Report{
			{
				Symbol: "000001",
				Trend:  model.Uptrend,
				Score:  model.Score{Value: 93, Valid: true},
				Signal: model.SignalAccumulate,
			},
			{
				Symbol:   "600000",
				Trend:    model.Downtrend,
				Score:    model.Score{Value: 72, Valid: true},
				Signal:   model.SignalHold,
				Conflict: true,
			},
			{
				Symbol:  "300750",
				Trend:   model.Neutral,
				Score:   model.Score{Value: 55, Valid: true},
				Signal:  model.SignalWatch,
				LimitUp: true,
			},
			{
				Symbol: "688111",
				Trend:  model.Neutral,
				Score:  model.Score{Value: 50, Valid: true},
				Signal: model.SignalWatch,
			},
		},
		Errors: []model.SymbolError{{Symbol: "BADSEQ"}},
	}

	alerts := ReportAlerts(res)
	// Accumulate + conflict + limit-up + scan-error summary; the quiet Watch
	// report produces nothing.
	if len(alerts) != 4 {
		t.Fatalf("alerts=%d, want 4: %+v", len(alerts), alerts)
	}
	if alerts[0].Level != AlertInfo || alerts[0].Title != "000001 ACCUMULATE" {
		t.Errorf("first alert wrong: %+v", alerts[0])
	}
	if alerts[1].Level != AlertWarning {
		t.Errorf("conflict alert should be a warning: %+v", alerts[1])
	}
	if alerts[3].Title != "scan completed with errors" {
		t.Errorf("last alert should summarize scan errors: %+v", alerts[3])
	}
}

func TestReportAlerts_QuietBatch(t *testing.T) {
	res := model.BatchResult{
		AsOf: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Reports: []model.Report{
			{Symbol: "600000", Trend: model.Neutral, Score: model.Score{Value: 55, Valid: true}, Signal: model.SignalWatch},
		},
	}
	if alerts := ReportAlerts(res); len(alerts) != 0 {
		t.Fatalf("quiet batch produced %d alerts: %+v", len(alerts), alerts)
	}
}
