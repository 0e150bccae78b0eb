// Package rules applies the Yang Kai four-dimension trend rule (space, time,
// volume, structure) to classify a symbol's trend state at one date.
package rules

import (
	"fmt"

	"trend-systemv1/internal/model"
)

// Config holds the rule thresholds. All of these are part of the external
// configuration surface — never baked into the evaluation itself.
type Config struct {
	PriceStreakDays  int `yaml:"price_streak_days"`  // consecutive closes above MA, default 4
	VolumeStreakDays int `yaml:"volume_streak_days"` // consecutive volumes above average, default 3
	MASlopeWindow    int `yaml:"ma_slope_window"`    // strictly-rising MA deltas, default 3
}

// DefaultConfig returns the canonical Yang Kai thresholds.
func DefaultConfig() Config {
	return Config{
		PriceStreakDays:  4,
		VolumeStreakDays: 3,
		MASlopeWindow:    3,
	}
}

// Result carries the classified state plus every named dimension check, so
// downstream consumers can explain which rule passed or failed.
type Result struct {
	State  model.TrendState
	Checks model.DimensionChecks
}

// Evaluate classifies the trend at bar index t. bars and snaps are aligned
// slices covering history up to and including t (the caller enforces the
// no-lookahead prefix).
//
// Uptrend requires all four dimensions; Downtrend requires the single-day MA
// break or sustained volume weakness. A single day's break is deliberately
// enough for Downtrend. Downtrend takes precedence if both ever held.
func Evaluate(bars []model.Bar, snaps []model.IndicatorSnapshot, t int, cfg Config) Result {
	cur := snaps[t]

	// Without a populated price MA neither side's preconditions exist.
	if !cur.MA20.Valid {
		return Result{State: model.Insufficient}
	}

	checks := model.DimensionChecks{
		checkSpace(snaps, t, cfg),
		checkTime(snaps, t, cfg),
		checkVolume(snaps, t, cfg),
		checkStructure(bars, t, cfg),
		checkMABreak(bars, snaps, t),
		checkVolumeWeakness(snaps, t, cfg),
	}

	up := checks.Passed(model.DimSpace) &&
		checks.Passed(model.DimTime) &&
		checks.Passed(model.DimVolume) &&
		checks.Passed(model.DimStructure)
	down := checks.Passed(model.DimMABreak) || checks.Passed(model.DimVolumeWeakness)

	state := model.Neutral
	switch {
	case down:
		// Explicit precedence: a down condition wins even if the up set
		// somehow held on the same bar.
		state = model.Downtrend
	case up:
		state = model.Uptrend
	}
	return Result{State: state, Checks: checks}
}

// checkSpace: close above the price MA on every bar of the price streak.
func checkSpace(snaps []model.IndicatorSnapshot, t int, cfg Config) model.DimensionCheck {
	c := model.DimensionCheck{Name: model.DimSpace}
	if t+1 < cfg.PriceStreakDays {
		c.Detail = fmt.Sprintf("need %d bars", cfg.PriceStreakDays)
		return c
	}
	streak := 0
	for i := t - cfg.PriceStreakDays + 1; i <= t; i++ {
		if snaps[i].PriceAboveMA != model.Yes {
			c.Detail = fmt.Sprintf("above-MA streak %d/%d", streak, cfg.PriceStreakDays)
			return c
		}
		streak++
	}
	c.Passed = true
	c.Detail = fmt.Sprintf("above MA %d days", cfg.PriceStreakDays)
	return c
}

// checkTime: price MA strictly rising across the slope window.
func checkTime(snaps []model.IndicatorSnapshot, t int, cfg Config) model.DimensionCheck {
	c := model.DimensionCheck{Name: model.DimTime}
	if t < cfg.MASlopeWindow {
		c.Detail = fmt.Sprintf("need %d bars of MA", cfg.MASlopeWindow+1)
		return c
	}
	for i := t - cfg.MASlopeWindow + 1; i <= t; i++ {
		prev, cur := snaps[i-1].MA20, snaps[i].MA20
		if !prev.Valid || !cur.Valid || cur.Value <= prev.Value {
			c.Detail = "MA not strictly rising"
			return c
		}
	}
	c.Passed = true
	c.Detail = fmt.Sprintf("MA rising %d days", cfg.MASlopeWindow)
	return c
}

// checkVolume: volume above its long average on every bar of the volume streak.
func checkVolume(snaps []model.IndicatorSnapshot, t int, cfg Config) model.DimensionCheck {
	c := model.DimensionCheck{Name: model.DimVolume}
	if t+1 < cfg.VolumeStreakDays {
		c.Detail = fmt.Sprintf("need %d bars", cfg.VolumeStreakDays)
		return c
	}
	streak := 0
	for i := t - cfg.VolumeStreakDays + 1; i <= t; i++ {
		// Unknown propagates as not satisfied, never as true.
		if snaps[i].VolumeAboveAvg != model.Yes {
			c.Detail = fmt.Sprintf("above-average streak %d/%d", streak, cfg.VolumeStreakDays)
			return c
		}
		streak++
	}
	c.Passed = true
	c.Detail = fmt.Sprintf("volume above average %d days", cfg.VolumeStreakDays)
	return c
}

// checkStructure: price and volume co-rising across the price streak span.
func checkStructure(bars []model.Bar, t int, cfg Config) model.DimensionCheck {
	c := model.DimensionCheck{Name: model.DimStructure}
	span := cfg.PriceStreakDays - 1
	if t < span {
		c.Detail = fmt.Sprintf("need %d bars", span+1)
		return c
	}
	priceUp := bars[t].Close > bars[t-span].Close
	volumeHeld := bars[t].Volume >= bars[t-span].Volume
	switch {
	case priceUp && volumeHeld:
		c.Passed = true
		c.Detail = "price and volume co-rising"
	case !priceUp:
		c.Detail = fmt.Sprintf("close %.2f not above %.2f", bars[t].Close, bars[t-span].Close)
	default:
		c.Detail = "volume trend falling"
	}
	return c
}

// checkMABreak: close at or below the price MA on the evaluation day.
func checkMABreak(bars []model.Bar, snaps []model.IndicatorSnapshot, t int) model.DimensionCheck {
	c := model.DimensionCheck{Name: model.DimMABreak}
	ma := snaps[t].MA20
	if bars[t].Close <= ma.Value {
		c.Passed = true
		c.Detail = fmt.Sprintf("close %.2f at/below MA %.2f", bars[t].Close, ma.Value)
	} else {
		c.Detail = fmt.Sprintf("close %.2f holds above MA %.2f", bars[t].Close, ma.Value)
	}
	return c
}

// checkVolumeWeakness: volume explicitly below average across the trailing
// volume streak. Unknown flags do not count as weakness (division guard).
func checkVolumeWeakness(snaps []model.IndicatorSnapshot, t int, cfg Config) model.DimensionCheck {
	c := model.DimensionCheck{Name: model.DimVolumeWeakness}
	if t+1 < cfg.VolumeStreakDays {
		c.Detail = fmt.Sprintf("need %d bars", cfg.VolumeStreakDays)
		return c
	}
	for i := t - cfg.VolumeStreakDays + 1; i <= t; i++ {
		if snaps[i].VolumeAboveAvg != model.No {
			c.Detail = "no sustained weakness"
			return c
		}
	}
	c.Passed = true
	c.Detail = fmt.Sprintf("volume below average %d days", cfg.VolumeStreakDays)
	return c
}
