package indicator

import "trend-systemv1/internal/model"

// Calculator derives per-bar indicator snapshots for a full series in one
// O(n) pass. It holds no cross-series state: a fresh set of rolling windows
// is built per Compute call, so evaluations stay pure and deterministic.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a calculator with the given window configuration.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Compute returns one IndicatorSnapshot per bar, aligned with the input
// slice. Bars must be in ascending date order (the series store guarantees
// this). Optional values stay absent until their window fills; comparison
// flags are Unknown until both operands exist.
func (c *Calculator) Compute(bars []model.Bar) []model.IndicatorSnapshot {
	priceMA := NewRollingMean(c.cfg.PriceMAWindow)
	volMA := NewRollingMean(c.cfg.VolumeMAWindow)
	kmjWMA := NewLinearWMA(c.cfg.KMJWeightWindow)
	kmjSmooth := NewRollingMean(c.cfg.KMJSmoothWindow)

	snaps := make([]model.IndicatorSnapshot, len(bars))
	for i, bar := range bars {
		priceMA.Update(bar.Close)
		volMA.Update(bar.Volume)

		snap := model.IndicatorSnapshot{
			MA20:      priceMA.Opt(),
			Vol120Avg: volMA.Opt(),
		}

		// KMJ1 is a plain weighted price mean, defined from the first bar.
		snap.KMJ1 = (bar.Low + bar.High + bar.Open + 3*bar.Close) / 6
		kmjWMA.Update(snap.KMJ1)
		snap.KMJ2 = kmjWMA.Opt()
		if snap.KMJ2.Valid {
			// KMJ3 smooths KMJ2, so its window only starts filling once
			// KMJ2 exists.
			kmjSmooth.Update(snap.KMJ2.Value)
			snap.KMJ3 = kmjSmooth.Opt()
		}

		snap.PriceAboveMA = model.Unknown
		if snap.MA20.Valid {
			snap.PriceAboveMA = model.TriFromCompare(bar.Close > snap.MA20.Value)
		}

		// Division guard: a zero volume average means the comparison is
		// undefined, not "below average".
		snap.VolumeAboveAvg = model.Unknown
		if snap.Vol120Avg.Valid && snap.Vol120Avg.Value > 0 {
			snap.VolumeAboveAvg = model.TriFromCompare(bar.Volume > snap.Vol120Avg.Value)
		}

		snaps[i] = snap
	}
	return snaps
}
