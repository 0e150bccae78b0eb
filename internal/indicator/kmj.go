package indicator

import "trend-systemv1/internal/model"

// kmjFlatThreshold is the relative KMJ2/KMJ3 gap below which the trend is
// considered flat (0.1%).
const kmjFlatThreshold = 0.001

// KMJTrend classifies the KMJ trend at one snapshot:
// +1 when KMJ2 sits above KMJ3, -1 when below, 0 when flat or undefined.
func KMJTrend(snap model.IndicatorSnapshot) int {
	if !snap.KMJ2.Valid || !snap.KMJ3.Valid || snap.KMJ3.Value == 0 {
		return 0
	}
	rel := snap.KMJ2.Value/snap.KMJ3.Value - 1
	switch {
	case rel > kmjFlatThreshold:
		return 1
	case rel < -kmjFlatThreshold:
		return -1
	default:
		return 0
	}
}

// KMJCross detects a KMJ2/KMJ3 crossover between two consecutive snapshots.
// golden: KMJ2 crosses above KMJ3 (buy-side), dead: KMJ2 crosses below.
// Both are false when any of the four values is still unavailable.
func KMJCross(prev, cur model.IndicatorSnapshot) (golden, dead bool) {
	if !prev.KMJ2.Valid || !prev.KMJ3.Valid || !cur.KMJ2.Valid || !cur.KMJ3.Valid {
		return false, false
	}
	golden = prev.KMJ2.Value < prev.KMJ3.Value && cur.KMJ2.Value > cur.KMJ3.Value
	dead = prev.KMJ2.Value > prev.KMJ3.Value && cur.KMJ2.Value < cur.KMJ3.Value
	return golden, dead
}
