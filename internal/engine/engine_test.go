package engine

import (
	"reflect"
	"testing"
	"time"

	"trend-systemv1/internal/model"
	"trend-systemv1/internal/series"
)

func genBars(closes, volumes []float64) []model.Bar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, len(closes))
	for i := range closes {
		bars[i] = model.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   closes[i] * 0.995,
			High:   closes[i] * 1.01,
			Low:    closes[i] * 0.99,
			Close:  closes[i],
			Volume: volumes[i],
		}
	}
	return bars
}

// linearClimb is the canonical accumulation scenario: 130 bars climbing
// linearly from 10 to 15, steady volume with a surge over the final 3 days.
func linearClimb() *series.Store {
	n := 130
	closes := make([]float64, n)
	vols := make([]float64, n)
	for i := range closes {
		closes[i] = 10 + 5*float64(i)/float64(n-1)
		vols[i] = 1e6
	}
	for i := n - 3; i < n; i++ {
		vols[i] = 2e6
	}
	st, err := series.Ingest("000001", genBars(closes, vols))
	if err != nil {
		panic(err)
	}
	return st
}

func TestEvaluate_LinearClimbAccumulates(t *testing.T) {
	st := linearClimb()
	rep, err := Evaluate(st, st.LastDate(), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	if rep.Trend != model.Uptrend {
		t.Fatalf("trend=%s, want UPTREND (checks: %+v)", rep.Trend, rep.Checks)
	}
	if !rep.Score.Valid {
		t.Fatal("score unavailable on a 130-bar series")
	}
	if rep.Score.Value < 85 || rep.Score.Value > 100 {
		t.Errorf("score=%d, want within [85,100] (subs: %+v)", rep.Score.Value, rep.SubScores)
	}
	if rep.Signal != model.SignalAccumulate {
		t.Errorf("signal=%s, want ACCUMULATE", rep.Signal)
	}
	if rep.Conflict {
		t.Error("uptrend in the accumulate band must not be flagged as a conflict")
	}
	if rep.Symbol != "000001" {
		t.Errorf("symbol=%q, want 000001", rep.Symbol)
	}
	if rep.KMJ == nil {
		t.Error("KMJ breakdown missing on a 130-bar series")
	}
}

func TestEvaluate_RisingSeriesScoresAtLeastHold(t *testing.T) {
	n := 124
	closes := make([]float64, n)
	vols := make([]float64, n)
	for i := range closes {
		closes[i] = 10 + 0.03*float64(i)
		vols[i] = 1e6 * (1 + 0.002*float64(i))
	}
	st, err := series.Ingest("600519", genBars(closes, vols))
	if err != nil {
		t.Fatal(err)
	}

	rep, err := Evaluate(st, st.LastDate(), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if rep.Trend != model.Uptrend {
		t.Fatalf("trend=%s, want UPTREND (checks: %+v)", rep.Trend, rep.Checks)
	}
	if rep.Score.Value < 70 {
		t.Errorf("score=%d, want >= 70 on a monotone rise", rep.Score.Value)
	}
}

func TestEvaluate_MABreakFlipsStateOnTheBreakDay(t *testing.T) {
	st := linearClimb()
	bars := make([]model.Bar, st.Len()+1)
	for i := 0; i < st.Len(); i++ {
		bars[i] = st.At(i)
	}
	last := bars[st.Len()-1]
	bars[st.Len()] = model.Bar{
		Date: last.Date.AddDate(0, 0, 1),
		Open: last.Close, High: last.Close, Low: 8.9, Close: 9.0, Volume: 2e6,
	}
	crashed, err := series.Ingest("000001", bars)
	if err != nil {
		t.Fatal(err)
	}

	before, err := Evaluate(crashed, last.Date, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if before.Trend != model.Uptrend {
		t.Fatalf("pre-crash trend=%s, want UPTREND", before.Trend)
	}

	after, err := Evaluate(crashed, crashed.LastDate(), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if after.Trend != model.Downtrend {
		t.Fatalf("crash-day trend=%s, want DOWNTREND", after.Trend)
	}
	if !after.Checks.Passed(model.DimMABreak) {
		t.Error("ma_break check should have passed on the crash day")
	}
}

func TestEvaluate_ShortHistoryIsInsufficient(t *testing.T) {
	closes := []float64{10, 10.1, 10.2, 10.3, 10.4, 10.5, 10.6, 10.7, 10.8, 10.9}
	vols := make([]float64, len(closes))
	for i := range vols {
		vols[i] = 1e6
	}
	st, err := series.Ingest("000002", genBars(closes, vols))
	if err != nil {
		t.Fatal(err)
	}

	rep, err := Evaluate(st, st.LastDate(), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if rep.Trend != model.Insufficient {
		t.Errorf("trend=%s, want INSUFFICIENT", rep.Trend)
	}
	if rep.Score.Valid {
		t.Errorf("score=%+v, want unavailable", rep.Score)
	}
	if rep.Signal != model.SignalNone {
		t.Errorf("signal=%s, want NONE", rep.Signal)
	}
	if rep.Conflict {
		t.Error("insufficient state can never conflict")
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	st := linearClimb()
	a, err := Evaluate(st, st.LastDate(), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Evaluate(st, st.LastDate(), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same inputs, different reports:\n%+v\n%+v", a, b)
	}
}

func TestEvaluate_LimitUpFlag(t *testing.T) {
	closes := []float64{10, 11} // +10%, past the 9.85% threshold
	vols := []float64{1e6, 2e6}
	st, err := series.Ingest("300750", genBars(closes, vols))
	if err != nil {
		t.Fatal(err)
	}
	rep, err := Evaluate(st, st.LastDate(), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !rep.LimitUp {
		t.Error("a +10% close should carry the limit-up flag")
	}

	flat := []float64{10, 10.9} // +9%, under the threshold
	st2, err := series.Ingest("300750", genBars(flat, vols))
	if err != nil {
		t.Fatal(err)
	}
	rep2, err := Evaluate(st2, st2.LastDate(), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if rep2.LimitUp {
		t.Error("a +9% close must not carry the limit-up flag")
	}
}

func TestEvaluate_MoreVolumeNeverLowersTheScore(t *testing.T) {
	st := linearClimb()
	base, err := Evaluate(st, st.LastDate(), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	bars := make([]model.Bar, st.Len())
	for i := range bars {
		bars[i] = st.At(i)
	}
	bars[len(bars)-1].Volume = 3e6
	boosted, err := series.Ingest("000001", bars)
	if err != nil {
		t.Fatal(err)
	}
	rep, err := Evaluate(boosted, boosted.LastDate(), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if rep.Score.Value < base.Score.Value {
		t.Fatalf("score fell from %d to %d when final volume rose", base.Score.Value, rep.Score.Value)
	}
}
