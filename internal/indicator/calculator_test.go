package indicator

import (
	"testing"
	"time"

	"trend-systemv1/internal/model"
)

func dailyBars(closes []float64, volumes []float64) []model.Bar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, len(closes))
	for i := range closes {
		bars[i] = model.Bar{
			Symbol: "600000",
			Date:   start.AddDate(0, 0, i),
			Open:   closes[i] * 0.99,
			High:   closes[i] * 1.01,
			Low:    closes[i] * 0.98,
			Close:  closes[i],
			Volume: volumes[i],
		}
	}
	return bars
}

func TestCalculator_ShortHistory_NoNumericMA(t *testing.T) {
	closes := make([]float64, 19)
	vols := make([]float64, 19)
	for i := range closes {
		closes[i] = 10 + float64(i)*0.1
		vols[i] = 1e6
	}

	snaps := NewCalculator(DefaultConfig()).Compute(dailyBars(closes, vols))
	for i, s := range snaps {
		if s.MA20.Valid {
			t.Fatalf("bar %d: MA20 reported a numeric value with only %d bars", i, i+1)
		}
		if s.PriceAboveMA != model.Unknown {
			t.Fatalf("bar %d: PriceAboveMA=%v, want Unknown", i, s.PriceAboveMA)
		}
	}
}

func TestCalculator_MA20_AvailableAtExactly20Bars(t *testing.T) {
	closes := make([]float64, 25)
	vols := make([]float64, 25)
	for i := range closes {
		closes[i] = 10 + float64(i)*0.1
		vols[i] = 1e6
	}

	snaps := NewCalculator(DefaultConfig()).Compute(dailyBars(closes, vols))
	if snaps[18].MA20.Valid {
		t.Error("MA20 valid at bar 19")
	}
	if !snaps[19].MA20.Valid {
		t.Fatal("MA20 absent at bar 20")
	}

	// Direct check of the first available mean: closes 0..19.
	sum := 0.0
	for i := 0; i < 20; i++ {
		sum += closes[i]
	}
	assertClose(t, "first MA20", snaps[19].MA20.Value, sum/20, 1e-9)

	// Rising series: close above its own 20-day mean.
	if snaps[19].PriceAboveMA != model.Yes {
		t.Errorf("PriceAboveMA=%v, want Yes", snaps[19].PriceAboveMA)
	}
}

func TestCalculator_VolumeFlag_NeedsFullVolumeWindow(t *testing.T) {
	n := 125
	closes := make([]float64, n)
	vols := make([]float64, n)
	for i := range closes {
		closes[i] = 10
		vols[i] = 1e6 * (1 + 0.01*float64(i)) // rising volume
	}

	snaps := NewCalculator(DefaultConfig()).Compute(dailyBars(closes, vols))
	if snaps[118].VolumeAboveAvg != model.Unknown {
		t.Errorf("bar 119: VolumeAboveAvg=%v, want Unknown (window not full)", snaps[118].VolumeAboveAvg)
	}
	if snaps[119].VolumeAboveAvg != model.Yes {
		t.Errorf("bar 120: VolumeAboveAvg=%v, want Yes (rising volume)", snaps[119].VolumeAboveAvg)
	}
}

func TestCalculator_ZeroVolumeAverage_IsUnknownNotBelow(t *testing.T) {
	// 120 zero-volume bars: the average is zero and the comparison undefined.
	n := 121
	closes := make([]float64, n)
	vols := make([]float64, n)
	for i := range closes {
		closes[i] = 10
	}
	vols[n-1] = 5000 // one real print at the end

	snaps := NewCalculator(DefaultConfig()).Compute(dailyBars(closes, vols))
	last := snaps[119]
	if !last.Vol120Avg.Valid {
		t.Fatal("Vol120Avg should be populated after 120 bars")
	}
	if last.Vol120Avg.Value != 0 {
		t.Fatalf("Vol120Avg=%v, want 0", last.Vol120Avg.Value)
	}
	if last.VolumeAboveAvg != model.Unknown {
		t.Errorf("VolumeAboveAvg=%v, want Unknown under zero average", last.VolumeAboveAvg)
	}
}

func TestCalculator_KMJ1_Definition(t *testing.T) {
	bars := []model.Bar{{
		Symbol: "600000",
		Date:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Open:   10, High: 12, Low: 9, Close: 11, Volume: 1e6,
	}}
	snaps := NewCalculator(DefaultConfig()).Compute(bars)
	// (low + high + open + 3·close)/6 = (9+12+10+33)/6
	assertClose(t, "KMJ1", snaps[0].KMJ1, 64.0/6.0, 1e-12)
	if snaps[0].KMJ2.Valid || snaps[0].KMJ3.Valid {
		t.Error("KMJ2/KMJ3 should be absent on the first bar")
	}
}

func TestCalculator_KMJ3_WindowStacksOnKMJ2(t *testing.T) {
	n := 30
	closes := make([]float64, n)
	vols := make([]float64, n)
	for i := range closes {
		closes[i] = 10 + 0.05*float64(i)
		vols[i] = 1e6
	}

	snaps := NewCalculator(DefaultConfig()).Compute(dailyBars(closes, vols))
	// KMJ2 ready at bar 21 (index 20); KMJ3 needs 5 KMJ2 values → index 24.
	if snaps[19].KMJ2.Valid {
		t.Error("KMJ2 valid before its 21-bar window filled")
	}
	if !snaps[20].KMJ2.Valid {
		t.Error("KMJ2 absent at bar 21")
	}
	if snaps[23].KMJ3.Valid {
		t.Error("KMJ3 valid before 5 KMJ2 values exist")
	}
	if !snaps[24].KMJ3.Valid {
		t.Error("KMJ3 absent at bar 25")
	}
}

func TestKMJTrend_AndCross(t *testing.T) {
	up := model.IndicatorSnapshot{KMJ2: model.Some(10.2), KMJ3: model.Some(10.0)}
	if got := KMJTrend(up); got != 1 {
		t.Errorf("KMJTrend(up)=%d, want 1", got)
	}
	down := model.IndicatorSnapshot{KMJ2: model.Some(9.8), KMJ3: model.Some(10.0)}
	if got := KMJTrend(down); got != -1 {
		t.Errorf("KMJTrend(down)=%d, want -1", got)
	}
	flat := model.IndicatorSnapshot{KMJ2: model.Some(10.0005), KMJ3: model.Some(10.0)}
	if got := KMJTrend(flat); got != 0 {
		t.Errorf("KMJTrend(flat)=%d, want 0 within 0.1%% band", got)
	}
	undefined := model.IndicatorSnapshot{KMJ2: model.Some(10)}
	if got := KMJTrend(undefined); got != 0 {
		t.Errorf("KMJTrend(undefined)=%d, want 0", got)
	}

	golden, dead := KMJCross(down, up)
	if !golden || dead {
		t.Errorf("KMJCross(down→up)=(%v,%v), want golden only", golden, dead)
	}
	golden, dead = KMJCross(up, down)
	if golden || !dead {
		t.Errorf("KMJCross(up→down)=(%v,%v), want dead only", golden, dead)
	}
	golden, dead = KMJCross(model.IndicatorSnapshot{}, up)
	if golden || dead {
		t.Error("KMJCross with unavailable values must report no cross")
	}
}
