package model

// TrendState classifies a symbol's price/volume behavior at an evaluation date.
// It is a closed set: every evaluation produces exactly one of these.
type TrendState string

const (
	Uptrend      TrendState = "UPTREND"
	Downtrend    TrendState = "DOWNTREND"
	Neutral      TrendState = "NEUTRAL"
	Insufficient TrendState = "INSUFFICIENT" // not enough history to evaluate
)

// DimensionCheck is one named rule dimension with its outcome and a short
// human-readable detail, kept for explainability and conflict reporting.
type DimensionCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// Dimension names emitted by the rule evaluator. The four uptrend dimensions
// follow the Yang Kai methodology; the two downtrend checks are the
// single-day MA break and the sustained volume weakness.
const (
	DimSpace     = "space"     // price above MA for the full price streak
	DimTime      = "time"      // MA strictly rising over the slope window
	DimVolume    = "volume"    // volume above its long average for the volume streak
	DimStructure = "structure" // price and volume co-rising across the streak span

	DimMABreak        = "ma_break"        // close at/below MA on the evaluation day
	DimVolumeWeakness = "volume_weakness" // volume below average for the trailing window
)

// DimensionChecks is the full set of named checks for one evaluation.
type DimensionChecks []DimensionCheck

// Get returns the check with the given name, if present.
func (dc DimensionChecks) Get(name string) (DimensionCheck, bool) {
	for _, c := range dc {
		if c.Name == name {
			return c, true
		}
	}
	return DimensionCheck{}, false
}

// Passed reports whether the named check exists and passed.
func (dc DimensionChecks) Passed(name string) bool {
	c, ok := dc.Get(name)
	return ok && c.Passed
}
