// Package scoring turns indicator snapshots into the composite 0–100 strength
// score and the secondary KMJ 100-point technical score.
package scoring

import (
	"fmt"
	"math"

	"trend-systemv1/internal/indicator"
	"trend-systemv1/internal/model"
)

// Weights are the non-negative composite weights. They must sum to 1.
type Weights struct {
	TrendPersistence float64 `yaml:"trend_persistence"`
	VolumeStrength   float64 `yaml:"volume_strength"`
	Momentum         float64 `yaml:"momentum"`
}

// Config holds the scoring windows and weights.
type Config struct {
	PersistenceWindow int     `yaml:"persistence_window"` // bars counted for trend persistence, default 20
	MomentumLookback  int     `yaml:"momentum_lookback"`  // return lookback in bars, default 20
	KMJVolumeWindow   int     `yaml:"kmj_volume_window"`  // avg-volume window for KMJ confirmation, default 20
	KMJMomentumDays   int     `yaml:"kmj_momentum_days"`  // short-return lookback for KMJ, default 5
	Weights           Weights `yaml:"weights"`
}

// DefaultConfig returns the standard windows and the 70/15/15 weight split.
func DefaultConfig() Config {
	return Config{
		PersistenceWindow: 20,
		MomentumLookback:  20,
		KMJVolumeWindow:   20,
		KMJMomentumDays:   5,
		Weights: Weights{
			TrendPersistence: 0.70,
			VolumeStrength:   0.15,
			Momentum:         0.15,
		},
	}
}

// Validate rejects negative weights, weights that do not sum to 1, and
// non-positive windows.
func (c Config) Validate() error {
	w := c.Weights
	if w.TrendPersistence < 0 || w.VolumeStrength < 0 || w.Momentum < 0 {
		return fmt.Errorf("scoring: negative weight in %+v", w)
	}
	sum := w.TrendPersistence + w.VolumeStrength + w.Momentum
	if math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("scoring: weights sum to %v, want 1", sum)
	}
	if c.PersistenceWindow <= 0 || c.MomentumLookback <= 0 ||
		c.KMJVolumeWindow <= 0 || c.KMJMomentumDays <= 0 {
		return fmt.Errorf("scoring: non-positive window in %+v", c)
	}
	return nil
}

// Compute derives the sub-scores and the composite score at bar index t.
// When the price MA is not yet populated the score is explicitly unavailable
// (Valid=false), never a numeric zero.
func Compute(bars []model.Bar, snaps []model.IndicatorSnapshot, t int, cfg Config) (model.Score, model.SubScores) {
	if !snaps[t].MA20.Valid {
		return model.Score{}, model.SubScores{}
	}

	subs := model.SubScores{
		TrendPersistence: trendPersistence(snaps, t, cfg.PersistenceWindow),
		VolumeStrength:   volumeStrength(bars, snaps, t),
		Momentum:         momentum(bars, t, cfg.MomentumLookback),
	}

	w := cfg.Weights
	raw := w.TrendPersistence*subs.TrendPersistence +
		w.VolumeStrength*subs.VolumeStrength +
		w.Momentum*subs.Momentum
	val := int(math.Round(100 * raw))
	if val < 0 {
		val = 0
	}
	if val > 100 {
		val = 100
	}
	return model.Score{Value: val, Valid: true}, subs
}

// trendPersistence is the fraction of the trailing window with the close above
// the price MA. A short prefix shrinks the window rather than padding with
// misses.
func trendPersistence(snaps []model.IndicatorSnapshot, t, window int) float64 {
	if t+1 < window {
		window = t + 1
	}
	hits := 0
	for i := t - window + 1; i <= t; i++ {
		if snaps[i].PriceAboveMA == model.Yes {
			hits++
		}
	}
	return float64(hits) / float64(window)
}

// volumeStrength maps today's volume-to-average ratio onto [0,1], saturating
// at twice the average. Zero when the long average is unavailable or zero.
func volumeStrength(bars []model.Bar, snaps []model.IndicatorSnapshot, t int) float64 {
	avg := snaps[t].Vol120Avg
	if !avg.Valid || avg.Value <= 0 {
		return 0
	}
	ratio := bars[t].Volume / avg.Value
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 2 {
		ratio = 2
	}
	return ratio / 2
}

// momentum rescales the clamped lookback return from [-20%,+20%] onto [0,1].
// Zero when the lookback bar does not exist yet.
func momentum(bars []model.Bar, t, lookback int) float64 {
	if t < lookback {
		return 0
	}
	base := bars[t-lookback].Close
	if base <= 0 {
		return 0
	}
	ret := bars[t].Close/base - 1
	if ret < -0.2 {
		ret = -0.2
	}
	if ret > 0.2 {
		ret = 0.2
	}
	return (ret + 0.2) / 0.4
}

// KMJScore computes the 100-point KMJ technical score at bar index t:
// trend direction 30, golden cross 40, volume confirmation up to 15, and
// short-horizon momentum up to 15. Returns nil while the KMJ chain is still
// warming up.
func KMJScore(bars []model.Bar, snaps []model.IndicatorSnapshot, t int, cfg Config) *model.KMJBreakdown {
	cur := snaps[t]
	if t == 0 || !cur.KMJ2.Valid || !cur.KMJ3.Valid {
		return nil
	}

	golden, dead := indicator.KMJCross(snaps[t-1], cur)
	b := &model.KMJBreakdown{
		Trend:       indicator.KMJTrend(cur),
		GoldenCross: golden,
		DeadCross:   dead,
	}
	if b.Trend == 1 {
		b.TrendPts = 30
	}
	if b.GoldenCross {
		b.CrossPts = 40
	}
	b.VolumePts = kmjVolumePoints(bars, t, cfg.KMJVolumeWindow)
	b.MomentumPts = kmjMomentumPoints(bars, t, cfg.KMJMomentumDays)
	b.Total = b.TrendPts + b.CrossPts + b.VolumePts + b.MomentumPts
	return b
}

func kmjVolumePoints(bars []model.Bar, t, window int) float64 {
	if t+1 < window {
		return 0
	}
	sum := 0.0
	for i := t - window + 1; i <= t; i++ {
		sum += bars[i].Volume
	}
	avg := sum / float64(window)
	if avg <= 0 {
		return 0
	}
	switch ratio := bars[t].Volume / avg; {
	case ratio > 1.5:
		return 15
	case ratio > 1.2:
		return 10
	default:
		return 0
	}
}

func kmjMomentumPoints(bars []model.Bar, t, days int) float64 {
	if t < days || bars[t-days].Close <= 0 {
		return 0
	}
	switch ret := bars[t].Close/bars[t-days].Close - 1; {
	case ret > 0.08:
		return 15
	case ret > 0.05:
		return 10
	case ret > 0.03:
		return 5
	default:
		return 0
	}
}
