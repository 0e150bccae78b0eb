package model

// OptFloat is a float64 that may be absent. Rolling indicators report absent
// values until their window is fully populated — never a numeric placeholder.
type OptFloat struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// Some wraps a present value.
func Some(v float64) OptFloat { return OptFloat{Value: v, Valid: true} }

// None is the absent value.
func None() OptFloat { return OptFloat{} }

// Tristate is a boolean whose operands may be unavailable. Unknown must be
// treated as "condition not satisfied" by every consumer — it never defaults
// to Yes, and it never counts as an explicit No either.
type Tristate int8

const (
	Unknown Tristate = iota
	No
	Yes
)

func (t Tristate) String() string {
	switch t {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "unknown"
	}
}

// TriFromCompare builds a Tristate from a comparison whose operands are known.
func TriFromCompare(ok bool) Tristate {
	if ok {
		return Yes
	}
	return No
}

// IndicatorSnapshot holds the derived per-bar values the rule evaluator and
// scoring engine consume. One snapshot per bar, aligned with the series index.
type IndicatorSnapshot struct {
	MA20      OptFloat `json:"ma20"`       // price moving average (window = cfg.PriceMAWindow)
	Vol120Avg OptFloat `json:"vol120_avg"` // volume moving average (window = cfg.VolumeMAWindow)

	PriceAboveMA   Tristate `json:"price_above_ma"`
	VolumeAboveAvg Tristate `json:"volume_above_avg"`

	// KMJ indicator chain (see internal/indicator/kmj.go).
	KMJ1 float64  `json:"kmj1"`
	KMJ2 OptFloat `json:"kmj2"`
	KMJ3 OptFloat `json:"kmj3"`
}
